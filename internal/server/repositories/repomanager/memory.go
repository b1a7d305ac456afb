package repomanager

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. There is nothing to
// migrate, and WithTx only scopes the call: each repository method is atomic
// on its own.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, users users.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, m.users)
}

func (m *MemoryRepositoryManager) Close() error { return nil }
