// Package users stores subjects and their session fingerprint.
package users

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// Repository is the subject store boundary. Lookups of a missing user return
// common.ErrorNotFound; a unique username or email clash returns
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByLogin matches a normalized username or email.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	Exists(ctx context.Context, userName, email string) (bool, error)

	// SetRefreshToken overwrites the fingerprint unconditionally; nil clears it.
	SetRefreshToken(ctx context.Context, id string, token *string) error
	// SwapRefreshToken replaces the fingerprint only while it still equals
	// expected, and reports whether it did.
	SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAccount(ctx context.Context, id, fullName, email string) (*models.User, error)
}
