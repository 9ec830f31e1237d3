package repository

import (
	"context"

	"github.com/vidora/vidora/internal/domain/entity"
)

// UserRepository defines the persistence contract for user records.
// Implementations must map duplicate username/email on Create to
// apperr.Conflict and missing rows to apperr.NotFound.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// GetByUsernameOrEmail resolves a login identifier; either argument
	// may be empty.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)
	// Update persists profile fields (full name, email, avatar, cover).
	Update(ctx context.Context, u *entity.User) error
	// UpdatePassword replaces only the stored hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// SetRefreshToken rotates (non-nil) or clears (nil) the single
	// active refresh token. It touches no other column.
	SetRefreshToken(ctx context.Context, id string, token *string) error
}
