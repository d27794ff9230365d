package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/prep-api/internal/domain"
)

// UserStore persists users.
type UserStore interface {
	// Create hashes a plaintext password if present and saves the user.
	// Returns ErrEmailExists or ErrGoogleIDExists on conflicts.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail matches case-insensitively.
	// Returns ErrUserNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByGoogleID returns ErrUserNotFound if no user is linked to googleID.
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// Update saves profile and identity fields. A plaintext Password, if
	// set, replaces the stored hash.
	Update(ctx context.Context, user *domain.User) error

	WithTx(tx *sqlx.Tx) UserStore
}
