package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/client/migrations"
	"github.com/dmitrijs2005/vidtube/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenSessionStore opens (creating if needed) the local database at dsn and
// returns a SessionStore backed by it. The caller closes the *sql.DB.
func OpenSessionStore(ctx context.Context, dsn string) (*sql.DB, *MetadataSessionStore, error) {
	if dsn != ":memory:" {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate session db: %w", err)
	}

	return db, NewMetadataSessionStore(metadata.NewSQLiteRepository(db)), nil
}
