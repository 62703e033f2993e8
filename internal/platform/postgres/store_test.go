package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/store"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestNewPostgresUserStore_BcryptCost(t *testing.T) {
	t.Parallel()

	db, _ := newMock(t)
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"valid cost", 12, 12},
		{"zero uses default", 0, bcrypt.DefaultCost},
		{"too low uses default", 3, bcrypt.DefaultCost},
		{"too high uses default", 32, bcrypt.DefaultCost},
	}
	for _, tt := range tests {
		s := NewPostgresUserStore(db, tt.cost, nil)
		assert.Equal(t, tt.want, s.bcryptCost, tt.name)
	}

	assert.Panics(t, func() { NewPostgresUserStore(nil, 10, nil) })
}

func TestUserStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("hashes the password", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		user, err := domain.NewUser("ada@example.com", "ada", "correct horse battery")
		require.NoError(t, err)

		mock.ExpectExec(q("INSERT INTO users")).
			WithArgs(user.ID, "ada@example.com", "ada", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
		assert.Empty(t, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(user.HashedPassword), []byte("correct horse battery")))
	})

	t.Run("maps unique violations by constraint", func(t *testing.T) {
		tests := []struct {
			constraint string
			want       error
		}{
			{usersEmailConstraint, store.ErrEmailExists},
			{usersUsernameConstraint, store.ErrUsernameExists},
			{"users_pkey", store.ErrDuplicate},
		}
		for _, tt := range tests {
			db, mock := newMock(t)
			s := NewPostgresUserStore(db, bcrypt.MinCost, nil)
			user, err := domain.NewUser("ada@example.com", "ada", "correct horse battery")
			require.NoError(t, err)

			mock.ExpectExec(q("INSERT INTO users")).
				WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: tt.constraint})

			err = s.Create(context.Background(), user)
			assert.ErrorIs(t, err, tt.want, tt.constraint)
			assert.True(t, store.IsDuplicateError(err))
		}
	})

	t.Run("rejects invalid users before touching the database", func(t *testing.T) {
		db, _ := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		err := s.Create(context.Background(), &domain.User{ID: uuid.New(), Email: "nope"})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestUserStore_Get(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	id := uuid.New()
	columns := []string{"id", "email", "username", "hashed_password", "created_at", "updated_at"}

	t.Run("by email", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(q("FROM users")).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id.String(), "ada@example.com", "ada", "hash", now, now))

		user, err := s.GetByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "ada", user.Username)
		assert.Equal(t, "hash", user.HashedPassword)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(q("FROM users")).WithArgs(id).WillReturnError(sql.ErrNoRows)

		_, err := s.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestUserStore_UpdateDelete(t *testing.T) {
	t.Parallel()

	existing := func() *domain.User {
		return &domain.User{
			ID:             uuid.New(),
			Email:          "ada@example.com",
			Username:       "ada",
			HashedPassword: "hash",
		}
	}

	t.Run("update keeps the hash without a new password", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)
		user := existing()

		mock.ExpectExec(q("UPDATE users")).
			WithArgs("ada@example.com", "ada", "hash", sqlmock.AnyArg(), user.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Update(context.Background(), user))
	})

	t.Run("update of a missing user", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectExec(q("UPDATE users")).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(context.Background(), existing()), store.ErrUserNotFound)
	})

	t.Run("update conflict", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectExec(q("UPDATE users")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersUsernameConstraint})

		assert.ErrorIs(t, s.Update(context.Background(), existing()), store.ErrUsernameExists)
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)
		id := uuid.New()

		mock.ExpectExec(q("DELETE FROM users")).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(q("DELETE FROM users")).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, s.Delete(context.Background(), id))
		assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrUserNotFound)
	})
}

func TestPalaceStore(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Now().UTC()
	columns := []string{"id", "user_id", "title", "description", "created_at", "updated_at"}

	t.Run("create with unknown owner", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresPalaceStore(db, nil)
		palace, err := domain.NewPalace(userID, "Childhood home", "")
		require.NoError(t, err)

		mock.ExpectExec(q("INSERT INTO memory_palaces")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		assert.ErrorIs(t, s.Create(context.Background(), palace), store.ErrInvalidEntity)
	})

	t.Run("list and count by user", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresPalaceStore(db, nil)
		a, b := uuid.New(), uuid.New()

		mock.ExpectQuery(q("FROM memory_palaces")).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(a.String(), userID.String(), "First", "", now, now).
				AddRow(b.String(), userID.String(), "Second", "desc", now, now))
		mock.ExpectQuery(q("SELECT COUNT(*) FROM memory_palaces")).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		palaces, err := s.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, palaces, 2)
		assert.Equal(t, a, palaces[0].ID)
		assert.Equal(t, "desc", palaces[1].Description)

		count, err := s.CountByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresPalaceStore(db, nil)

		mock.ExpectQuery(q("FROM memory_palaces")).WillReturnRows(sqlmock.NewRows(columns))

		palaces, err := s.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.NotNil(t, palaces)
		assert.Empty(t, palaces)
	})

	t.Run("get, update and delete of a missing palace", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresPalaceStore(db, nil)
		palace, err := domain.NewPalace(userID, "Gone", "")
		require.NoError(t, err)

		mock.ExpectQuery(q("FROM memory_palaces")).WillReturnError(sql.ErrNoRows)
		mock.ExpectExec(q("UPDATE memory_palaces")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(q("DELETE FROM memory_palaces")).WillReturnResult(sqlmock.NewResult(0, 0))

		_, err = s.GetByID(context.Background(), palace.ID)
		assert.ErrorIs(t, err, store.ErrPalaceNotFound)
		assert.ErrorIs(t, s.Update(context.Background(), palace), store.ErrPalaceNotFound)
		assert.ErrorIs(t, s.Delete(context.Background(), palace.ID), store.ErrPalaceNotFound)
	})

	t.Run("works inside a transaction", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresPalaceStore(db, nil)
		palace, err := domain.NewPalace(userID, "Office", "")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(q("INSERT INTO memory_palaces")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).Create(ctx, palace)
		})
		require.NoError(t, err)
	})
}

func TestRoomAndItemStores(t *testing.T) {
	t.Parallel()

	palaceID := uuid.New()
	now := time.Now().UTC()

	t.Run("next position", func(t *testing.T) {
		db, mock := newMock(t)
		rooms := NewPostgresRoomStore(db, nil)
		items := NewPostgresItemStore(db, nil)
		roomID := uuid.New()

		mock.ExpectQuery(q("FROM rooms WHERE palace_id")).
			WithArgs(palaceID).
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(0))
		mock.ExpectQuery(q("FROM items WHERE room_id")).
			WithArgs(roomID).
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

		next, err := rooms.NextPosition(context.Background(), palaceID)
		require.NoError(t, err)
		assert.Equal(t, 0, next)

		next, err = items.NextPosition(context.Background(), roomID)
		require.NoError(t, err)
		assert.Equal(t, 3, next)
	})

	t.Run("room lifecycle", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresRoomStore(db, nil)
		room, err := domain.NewRoom(palaceID, "Hallway", "", 0)
		require.NoError(t, err)

		mock.ExpectExec(q("INSERT INTO rooms")).
			WithArgs(room.ID, palaceID, "Hallway", "", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(q("FROM rooms")).
			WithArgs(palaceID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "palace_id", "name", "description", "position", "created_at", "updated_at"}).
				AddRow(room.ID.String(), palaceID.String(), "Hallway", "", 0, now, now))
		mock.ExpectQuery(q("FROM rooms")).WillReturnError(sql.ErrNoRows)

		require.NoError(t, s.Create(context.Background(), room))

		listed, err := s.ListByPalace(context.Background(), palaceID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "Hallway", listed[0].Name)

		_, err = s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrRoomNotFound)
	})

	t.Run("item in a missing room", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresItemStore(db, nil)
		item, err := domain.NewItem(uuid.New(), "Key", "under the mat", 0)
		require.NoError(t, err)

		mock.ExpectExec(q("INSERT INTO items")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		assert.ErrorIs(t, s.Create(context.Background(), item), store.ErrInvalidEntity)
	})
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode}, store.ErrInvalidEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, MapError(tt.err), tt.want)
		})
	}

	assert.NoError(t, MapError(nil))
	other := errors.New("boom")
	assert.Equal(t, other, MapError(other))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrRoomNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrRoomNotFound), store.ErrRoomNotFound)
	assert.Error(t, CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), nil))
	assert.Error(t, CheckRowsAffected(nil, nil))
}
