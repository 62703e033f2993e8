package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/palace-api/internal/domain"
)

// PalaceStore defines the interface for memory palace persistence.
type PalaceStore interface {
	// Create saves a new palace.
	Create(ctx context.Context, palace *domain.Palace) error

	// GetByID retrieves a palace. Returns ErrPalaceNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Palace, error)

	// ListByUser returns the palaces of a user, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Palace, error)

	// CountByUser returns the number of palaces a user owns.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// Update saves the title and description of a palace.
	// Returns ErrPalaceNotFound if it does not exist.
	Update(ctx context.Context, palace *domain.Palace) error

	// Delete removes a palace with its rooms and items.
	// Returns ErrPalaceNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a PalaceStore bound to tx.
	WithTx(tx *sql.Tx) PalaceStore
}

// RoomStore defines the interface for room persistence.
type RoomStore interface {
	// Create saves a new room.
	Create(ctx context.Context, room *domain.Room) error

	// GetByID retrieves a room. Returns ErrRoomNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)

	// ListByPalace returns the rooms of a palace ordered by position.
	ListByPalace(ctx context.Context, palaceID uuid.UUID) ([]*domain.Room, error)

	// NextPosition returns the position after the last room of a palace.
	NextPosition(ctx context.Context, palaceID uuid.UUID) (int, error)

	// WithTx returns a RoomStore bound to tx.
	WithTx(tx *sql.Tx) RoomStore
}

// ItemStore defines the interface for item persistence.
type ItemStore interface {
	// Create saves a new item.
	Create(ctx context.Context, item *domain.Item) error

	// ListByRoom returns the items of a room ordered by position.
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Item, error)

	// NextPosition returns the position after the last item of a room.
	NextPosition(ctx context.Context, roomID uuid.UUID) (int, error)

	// WithTx returns an ItemStore bound to tx.
	WithTx(tx *sql.Tx) ItemStore
}
