// Package repomanager hands out repositories for the configured storage
// backend and runs its schema migrations.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	// WithTx runs fn against repositories that share one transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, users users.Repository) error) error
	Close() error
}
