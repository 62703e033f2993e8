package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/platform/logger"
	"github.com/phrazzld/palace-api/internal/store"
)

// PostgresRoomStore implements the store.RoomStore interface.
type PostgresRoomStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRoomStore creates a new PostgreSQL implementation of the RoomStore interface.
func NewPostgresRoomStore(db store.DBTX, logger *slog.Logger) *PostgresRoomStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRoomStore{
		db:     db,
		logger: logger.With(slog.String("component", "room_store")),
	}
}

var _ store.RoomStore = (*PostgresRoomStore)(nil)

// Create implements store.RoomStore.Create.
// Returns store.ErrInvalidEntity if the palace does not exist.
func (s *PostgresRoomStore) Create(ctx context.Context, room *domain.Room) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := room.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO rooms (id, palace_id, name, description, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		room.ID,
		room.PalaceID,
		room.Name,
		room.Description,
		room.Position,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: palace with ID %s not found",
				store.ErrInvalidEntity, room.PalaceID)
		}
		log.Error("failed to create room",
			slog.String("error", err.Error()),
			slog.String("room_id", room.ID.String()))
		return MapError(err)
	}

	log.Info("room created successfully",
		slog.String("room_id", room.ID.String()),
		slog.String("palace_id", room.PalaceID.String()))
	return nil
}

// GetByID implements store.RoomStore.GetByID.
func (s *PostgresRoomStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	query := `
		SELECT id, palace_id, name, description, position, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`
	room, err := scanRoom(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRoomNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get room",
			slog.String("error", err.Error()),
			slog.String("room_id", id.String()))
		return nil, MapError(err)
	}
	return room, nil
}

// ListByPalace implements store.RoomStore.ListByPalace.
func (s *PostgresRoomStore) ListByPalace(ctx context.Context, palaceID uuid.UUID) ([]*domain.Room, error) {
	query := `
		SELECT id, palace_id, name, description, position, created_at, updated_at
		FROM rooms
		WHERE palace_id = $1
		ORDER BY position, created_at
	`
	rows, err := s.db.QueryContext(ctx, query, palaceID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list rooms",
			slog.String("error", err.Error()),
			slog.String("palace_id", palaceID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	rooms := []*domain.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, MapError(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return rooms, nil
}

// NextPosition implements store.RoomStore.NextPosition.
func (s *PostgresRoomStore) NextPosition(ctx context.Context, palaceID uuid.UUID) (int, error) {
	return nextPosition(ctx, s.db,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM rooms WHERE palace_id = $1`, palaceID)
}

// WithTx implements store.RoomStore.WithTx.
func (s *PostgresRoomStore) WithTx(tx *sql.Tx) store.RoomStore {
	return &PostgresRoomStore{db: tx, logger: s.logger}
}

// PostgresItemStore implements the store.ItemStore interface.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the ItemStore interface.
func NewPostgresItemStore(db store.DBTX, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

var _ store.ItemStore = (*PostgresItemStore)(nil)

// Create implements store.ItemStore.Create.
// Returns store.ErrInvalidEntity if the room does not exist.
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO items (id, room_id, title, content, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.RoomID,
		item.Title,
		item.Content,
		item.Position,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: room with ID %s not found",
				store.ErrInvalidEntity, item.RoomID)
		}
		log.Error("failed to create item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	log.Info("item created successfully",
		slog.String("item_id", item.ID.String()),
		slog.String("room_id", item.RoomID.String()))
	return nil
}

// ListByRoom implements store.ItemStore.ListByRoom.
func (s *PostgresItemStore) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Item, error) {
	query := `
		SELECT id, room_id, title, content, position, created_at, updated_at
		FROM items
		WHERE room_id = $1
		ORDER BY position, created_at
	`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list items",
			slog.String("error", err.Error()),
			slog.String("room_id", roomID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []*domain.Item{}
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.RoomID, &it.Title, &it.Content,
			&it.Position, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// NextPosition implements store.ItemStore.NextPosition.
func (s *PostgresItemStore) NextPosition(ctx context.Context, roomID uuid.UUID) (int, error) {
	return nextPosition(ctx, s.db,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM items WHERE room_id = $1`, roomID)
}

// WithTx implements store.ItemStore.WithTx.
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{db: tx, logger: s.logger}
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	var r domain.Room
	if err := row.Scan(&r.ID, &r.PalaceID, &r.Name, &r.Description,
		&r.Position, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func nextPosition(ctx context.Context, db store.DBTX, query string, parentID uuid.UUID) (int, error) {
	var next int
	if err := db.QueryRowContext(ctx, query, parentID).Scan(&next); err != nil {
		return 0, MapError(err)
	}
	return next, nil
}
