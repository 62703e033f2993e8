package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/palace-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user, hashing its plaintext password.
	// Returns ErrEmailExists or ErrUsernameExists on conflicts.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies email, username and, when Password is set, the
	// password hash of an existing user.
	// Returns ErrUserNotFound, ErrEmailExists or ErrUsernameExists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and, by cascade, everything they own.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
