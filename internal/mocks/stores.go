package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/store"
)

// UserStore is a testify mock of store.UserStore.
type UserStore struct {
	mock.Mock
}

var _ store.UserStore = (*UserStore)(nil)

func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// WithTx returns the mock itself unless a different store was configured.
func (m *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	if ret, ok := m.Called(tx).Get(0).(store.UserStore); ok {
		return ret
	}
	return m
}

// PalaceStore is a testify mock of store.PalaceStore.
type PalaceStore struct {
	mock.Mock
}

var _ store.PalaceStore = (*PalaceStore)(nil)

func (m *PalaceStore) Create(ctx context.Context, palace *domain.Palace) error {
	return m.Called(ctx, palace).Error(0)
}

func (m *PalaceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Palace, error) {
	args := m.Called(ctx, id)
	palace, _ := args.Get(0).(*domain.Palace)
	return palace, args.Error(1)
}

func (m *PalaceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Palace, error) {
	args := m.Called(ctx, userID)
	palaces, _ := args.Get(0).([]*domain.Palace)
	return palaces, args.Error(1)
}

func (m *PalaceStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *PalaceStore) Update(ctx context.Context, palace *domain.Palace) error {
	return m.Called(ctx, palace).Error(0)
}

func (m *PalaceStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// WithTx returns the mock itself unless a different store was configured.
func (m *PalaceStore) WithTx(tx *sql.Tx) store.PalaceStore {
	if ret, ok := m.Called(tx).Get(0).(store.PalaceStore); ok {
		return ret
	}
	return m
}

// RoomStore is a testify mock of store.RoomStore.
type RoomStore struct {
	mock.Mock
}

var _ store.RoomStore = (*RoomStore)(nil)

func (m *RoomStore) Create(ctx context.Context, room *domain.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *RoomStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	args := m.Called(ctx, id)
	room, _ := args.Get(0).(*domain.Room)
	return room, args.Error(1)
}

func (m *RoomStore) ListByPalace(ctx context.Context, palaceID uuid.UUID) ([]*domain.Room, error) {
	args := m.Called(ctx, palaceID)
	rooms, _ := args.Get(0).([]*domain.Room)
	return rooms, args.Error(1)
}

func (m *RoomStore) NextPosition(ctx context.Context, palaceID uuid.UUID) (int, error) {
	args := m.Called(ctx, palaceID)
	return args.Int(0), args.Error(1)
}

// WithTx returns the mock itself unless a different store was configured.
func (m *RoomStore) WithTx(tx *sql.Tx) store.RoomStore {
	if ret, ok := m.Called(tx).Get(0).(store.RoomStore); ok {
		return ret
	}
	return m
}

// ItemStore is a testify mock of store.ItemStore.
type ItemStore struct {
	mock.Mock
}

var _ store.ItemStore = (*ItemStore)(nil)

func (m *ItemStore) Create(ctx context.Context, item *domain.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *ItemStore) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Item, error) {
	args := m.Called(ctx, roomID)
	items, _ := args.Get(0).([]*domain.Item)
	return items, args.Error(1)
}

func (m *ItemStore) NextPosition(ctx context.Context, roomID uuid.UUID) (int, error) {
	args := m.Called(ctx, roomID)
	return args.Int(0), args.Error(1)
}

// WithTx returns the mock itself unless a different store was configured.
func (m *ItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	if ret, ok := m.Called(tx).Get(0).(store.ItemStore); ok {
		return ret
	}
	return m
}
