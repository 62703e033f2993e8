package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/store"
	"github.com/phrazzld/palace-api/internal/task"
)

// PalaceDetail is a palace with its rooms in walking order.
type PalaceDetail struct {
	*domain.Palace
	Rooms []*domain.Room `json:"rooms"`
}

// PalaceService manages memory palaces, their rooms and items, and queues
// the background jobs that work on them. Every operation takes the acting
// user and returns ErrNotOwned for palaces owned by someone else.
type PalaceService interface {
	ListPalaces(ctx context.Context, userID uuid.UUID) ([]*domain.Palace, error)
	CreatePalace(ctx context.Context, userID uuid.UUID, title, description string) (*domain.Palace, error)
	GetPalace(ctx context.Context, userID, palaceID uuid.UUID) (*PalaceDetail, error)
	UpdatePalace(ctx context.Context, userID, palaceID uuid.UUID, title, description string) (*domain.Palace, error)
	DeletePalace(ctx context.Context, userID, palaceID uuid.UUID) error

	ListRooms(ctx context.Context, userID, palaceID uuid.UUID) ([]*domain.Room, error)
	CreateRoom(ctx context.Context, userID, palaceID uuid.UUID, name, description string) (*domain.Room, error)

	ListItems(ctx context.Context, userID, roomID uuid.UUID) ([]*domain.Item, error)
	CreateItem(ctx context.Context, userID, roomID uuid.UUID, title, content string) (*domain.Item, error)

	// RequestSuggestions queues suggestion generation for content in a
	// palace and returns the job id.
	RequestSuggestions(ctx context.Context, userID, palaceID uuid.UUID, content string) (string, error)

	// RequestLayoutOptimization queues layout scoring for a palace and
	// returns the job id.
	RequestLayoutOptimization(ctx context.Context, userID, palaceID uuid.UUID) (string, error)
}

// PalaceServiceImpl implements the PalaceService interface
type PalaceServiceImpl struct {
	palaces store.PalaceStore
	rooms   store.RoomStore
	items   store.ItemStore
	tasks   task.Enqueuer
	db      *sql.DB
	logger  *slog.Logger
}

var _ PalaceService = (*PalaceServiceImpl)(nil)

// NewPalaceService creates a new PalaceService
func NewPalaceService(
	palaces store.PalaceStore,
	rooms store.RoomStore,
	items store.ItemStore,
	tasks task.Enqueuer,
	db *sql.DB,
	logger *slog.Logger,
) *PalaceServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &PalaceServiceImpl{
		palaces: palaces,
		rooms:   rooms,
		items:   items,
		tasks:   tasks,
		db:      db,
		logger:  logger.With("component", "palace_service"),
	}
}

// ListPalaces returns the palaces of userID, oldest first.
func (s *PalaceServiceImpl) ListPalaces(ctx context.Context, userID uuid.UUID) ([]*domain.Palace, error) {
	palaces, err := s.palaces.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list palaces: %w", err)
	}
	return palaces, nil
}

// CreatePalace saves a palace and queues the palace-created notification.
// A failure to queue the notification is logged and does not fail the call.
func (s *PalaceServiceImpl) CreatePalace(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
) (*domain.Palace, error) {
	palace, err := domain.NewPalace(userID, title, description)
	if err != nil {
		return nil, err
	}

	if err := s.palaces.Create(ctx, palace); err != nil {
		s.logger.Error("failed to create palace", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to create palace: %w", err)
	}

	s.logger.Info("palace created", "palace_id", palace.ID, "user_id", userID)

	if s.tasks != nil {
		if _, err := s.tasks.Enqueue(ctx, task.SendPalaceCreatedNotification,
			userID, palace.ID, palace.Title); err != nil {
			s.logger.Error("failed to enqueue palace notification",
				"error", err,
				"palace_id", palace.ID)
		}
	}

	return palace, nil
}

// GetPalace returns an owned palace with its rooms.
func (s *PalaceServiceImpl) GetPalace(ctx context.Context, userID, palaceID uuid.UUID) (*PalaceDetail, error) {
	palace, err := s.ownedPalace(ctx, s.palaces, userID, palaceID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListByPalace(ctx, palaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return &PalaceDetail{Palace: palace, Rooms: rooms}, nil
}

// UpdatePalace changes the title and description of an owned palace.
func (s *PalaceServiceImpl) UpdatePalace(
	ctx context.Context,
	userID, palaceID uuid.UUID,
	title, description string,
) (*domain.Palace, error) {
	var updated *domain.Palace

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPalaces := s.palaces.WithTx(tx)

		palace, err := s.ownedPalace(ctx, txPalaces, userID, palaceID)
		if err != nil {
			return err
		}
		if err := palace.Update(title, description); err != nil {
			return err
		}
		if err := txPalaces.Update(ctx, palace); err != nil {
			return fmt.Errorf("failed to update palace: %w", err)
		}

		updated = palace
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("palace updated", "palace_id", palaceID)
	return updated, nil
}

// DeletePalace removes an owned palace with its rooms and items.
func (s *PalaceServiceImpl) DeletePalace(ctx context.Context, userID, palaceID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPalaces := s.palaces.WithTx(tx)

		if _, err := s.ownedPalace(ctx, txPalaces, userID, palaceID); err != nil {
			return err
		}
		if err := txPalaces.Delete(ctx, palaceID); err != nil {
			return fmt.Errorf("failed to delete palace: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("palace deleted", "palace_id", palaceID)
	return nil
}

// ListRooms returns the rooms of an owned palace.
func (s *PalaceServiceImpl) ListRooms(ctx context.Context, userID, palaceID uuid.UUID) ([]*domain.Room, error) {
	if _, err := s.ownedPalace(ctx, s.palaces, userID, palaceID); err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListByPalace(ctx, palaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// CreateRoom appends a room to an owned palace.
func (s *PalaceServiceImpl) CreateRoom(
	ctx context.Context,
	userID, palaceID uuid.UUID,
	name, description string,
) (*domain.Room, error) {
	var created *domain.Room

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.ownedPalace(ctx, s.palaces.WithTx(tx), userID, palaceID); err != nil {
			return err
		}

		txRooms := s.rooms.WithTx(tx)
		position, err := txRooms.NextPosition(ctx, palaceID)
		if err != nil {
			return fmt.Errorf("failed to determine room position: %w", err)
		}

		room, err := domain.NewRoom(palaceID, name, description, position)
		if err != nil {
			return err
		}
		if err := txRooms.Create(ctx, room); err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}

		created = room
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("room created", "room_id", created.ID, "palace_id", palaceID)
	return created, nil
}

// ListItems returns the items of a room in an owned palace.
func (s *PalaceServiceImpl) ListItems(ctx context.Context, userID, roomID uuid.UUID) ([]*domain.Item, error) {
	if _, err := s.ownedRoom(ctx, s.palaces, s.rooms, userID, roomID); err != nil {
		return nil, err
	}

	items, err := s.items.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// CreateItem appends an item to a room in an owned palace.
func (s *PalaceServiceImpl) CreateItem(
	ctx context.Context,
	userID, roomID uuid.UUID,
	title, content string,
) (*domain.Item, error) {
	var created *domain.Item

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.ownedRoom(ctx, s.palaces.WithTx(tx), s.rooms.WithTx(tx), userID, roomID); err != nil {
			return err
		}

		txItems := s.items.WithTx(tx)
		position, err := txItems.NextPosition(ctx, roomID)
		if err != nil {
			return fmt.Errorf("failed to determine item position: %w", err)
		}

		item, err := domain.NewItem(roomID, title, content, position)
		if err != nil {
			return err
		}
		if err := txItems.Create(ctx, item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}

		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item created", "item_id", created.ID, "room_id", roomID)
	return created, nil
}

// RequestSuggestions queues tasks.ai.generate_memory_suggestions.
func (s *PalaceServiceImpl) RequestSuggestions(
	ctx context.Context,
	userID, palaceID uuid.UUID,
	content string,
) (string, error) {
	if _, err := s.ownedPalace(ctx, s.palaces, userID, palaceID); err != nil {
		return "", err
	}
	return s.submit(ctx, task.GenerateMemorySuggestions, userID, palaceID, content)
}

// RequestLayoutOptimization queues tasks.ai.optimize_palace_layout.
func (s *PalaceServiceImpl) RequestLayoutOptimization(
	ctx context.Context,
	userID, palaceID uuid.UUID,
) (string, error) {
	if _, err := s.ownedPalace(ctx, s.palaces, userID, palaceID); err != nil {
		return "", err
	}
	return s.submit(ctx, task.OptimizePalaceLayout, palaceID)
}

func (s *PalaceServiceImpl) submit(ctx context.Context, name task.Name, args ...any) (string, error) {
	if s.tasks == nil {
		return "", fmt.Errorf("no task queue configured for %s", name)
	}
	jobID, err := s.tasks.Enqueue(ctx, name, args...)
	if err != nil {
		s.logger.Error("failed to enqueue job", "task", name, "error", err)
		return "", fmt.Errorf("failed to enqueue %s: %w", name, err)
	}
	s.logger.Info("job enqueued", "task", name, "job_id", jobID)
	return jobID, nil
}

func (s *PalaceServiceImpl) ownedPalace(
	ctx context.Context,
	palaces store.PalaceStore,
	userID, palaceID uuid.UUID,
) (*domain.Palace, error) {
	palace, err := palaces.GetByID(ctx, palaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve palace: %w", err)
	}
	if !palace.IsOwnedBy(userID) {
		s.logger.Debug("palace access denied",
			"palace_id", palaceID,
			"user_id", userID)
		return nil, ErrNotOwned
	}
	return palace, nil
}

func (s *PalaceServiceImpl) ownedRoom(
	ctx context.Context,
	palaces store.PalaceStore,
	rooms store.RoomStore,
	userID, roomID uuid.UUID,
) (*domain.Room, error) {
	room, err := rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve room: %w", err)
	}
	if _, err := s.ownedPalace(ctx, palaces, userID, room.PalaceID); err != nil {
		return nil, err
	}
	return room, nil
}
