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

// PostgresPalaceStore implements the store.PalaceStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPalaceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPalaceStore creates a new PostgreSQL implementation of the PalaceStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresPalaceStore(db store.DBTX, logger *slog.Logger) *PostgresPalaceStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPalaceStore{
		db:     db,
		logger: logger.With(slog.String("component", "palace_store")),
	}
}

// Ensure PostgresPalaceStore implements store.PalaceStore interface
var _ store.PalaceStore = (*PostgresPalaceStore)(nil)

// Create implements store.PalaceStore.Create.
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresPalaceStore) Create(ctx context.Context, palace *domain.Palace) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := palace.Validate(); err != nil {
		log.Warn("palace validation failed during create",
			slog.String("error", err.Error()),
			slog.String("palace_id", palace.ID.String()))
		return err
	}

	query := `
		INSERT INTO memory_palaces (id, user_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		palace.ID,
		palace.UserID,
		palace.Title,
		palace.Description,
		palace.CreatedAt,
		palace.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during palace creation",
				slog.String("palace_id", palace.ID.String()),
				slog.String("user_id", palace.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, palace.UserID)
		}
		log.Error("failed to create palace",
			slog.String("error", err.Error()),
			slog.String("palace_id", palace.ID.String()))
		return MapError(err)
	}

	log.Info("palace created successfully",
		slog.String("palace_id", palace.ID.String()),
		slog.String("user_id", palace.UserID.String()))
	return nil
}

// GetByID implements store.PalaceStore.GetByID.
func (s *PostgresPalaceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Palace, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM memory_palaces
		WHERE id = $1
	`
	palace, err := scanPalace(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("palace not found", slog.String("palace_id", id.String()))
			return nil, store.ErrPalaceNotFound
		}
		log.Error("failed to get palace",
			slog.String("error", err.Error()),
			slog.String("palace_id", id.String()))
		return nil, MapError(err)
	}

	return palace, nil
}

// ListByUser implements store.PalaceStore.ListByUser.
func (s *PostgresPalaceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Palace, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, description, created_at, updated_at
		FROM memory_palaces
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list palaces",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	palaces := []*domain.Palace{}
	for rows.Next() {
		palace, err := scanPalace(rows)
		if err != nil {
			return nil, MapError(err)
		}
		palaces = append(palaces, palace)
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate palaces",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return palaces, nil
}

// CountByUser implements store.PalaceStore.CountByUser.
func (s *PostgresPalaceStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_palaces WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count palaces",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}
	return count, nil
}

// Update implements store.PalaceStore.Update.
func (s *PostgresPalaceStore) Update(ctx context.Context, palace *domain.Palace) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := palace.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE memory_palaces
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		palace.Title,
		palace.Description,
		palace.UpdatedAt,
		palace.ID,
	)
	if err != nil {
		log.Error("failed to update palace",
			slog.String("error", err.Error()),
			slog.String("palace_id", palace.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrPalaceNotFound); err != nil {
		return err
	}

	log.Info("palace updated successfully", slog.String("palace_id", palace.ID.String()))
	return nil
}

// Delete implements store.PalaceStore.Delete.
// Rooms and items go with it through ON DELETE CASCADE.
func (s *PostgresPalaceStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM memory_palaces WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete palace",
			slog.String("error", err.Error()),
			slog.String("palace_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrPalaceNotFound); err != nil {
		return err
	}

	log.Info("palace deleted successfully", slog.String("palace_id", id.String()))
	return nil
}

// WithTx implements store.PalaceStore.WithTx.
func (s *PostgresPalaceStore) WithTx(tx *sql.Tx) store.PalaceStore {
	return &PostgresPalaceStore{db: tx, logger: s.logger}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPalace(row rowScanner) (*domain.Palace, error) {
	var p domain.Palace
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
