package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/service"
)

// UserService is a testify mock of service.UserService.
type UserService struct {
	mock.Mock
}

var _ service.UserService = (*UserService)(nil)

func (m *UserService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	args := m.Called(ctx, email, username, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*service.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*service.Profile)
	return profile, args.Error(1)
}

func (m *UserService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	update service.ProfileUpdate,
) (*domain.User, error) {
	args := m.Called(ctx, userID, update)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) UpdateUserPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	return m.Called(ctx, userID, newPassword).Error(0)
}

func (m *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// PalaceService is a testify mock of service.PalaceService.
type PalaceService struct {
	mock.Mock
}

var _ service.PalaceService = (*PalaceService)(nil)

func (m *PalaceService) ListPalaces(ctx context.Context, userID uuid.UUID) ([]*domain.Palace, error) {
	args := m.Called(ctx, userID)
	palaces, _ := args.Get(0).([]*domain.Palace)
	return palaces, args.Error(1)
}

func (m *PalaceService) CreatePalace(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
) (*domain.Palace, error) {
	args := m.Called(ctx, userID, title, description)
	palace, _ := args.Get(0).(*domain.Palace)
	return palace, args.Error(1)
}

func (m *PalaceService) GetPalace(ctx context.Context, userID, palaceID uuid.UUID) (*service.PalaceDetail, error) {
	args := m.Called(ctx, userID, palaceID)
	detail, _ := args.Get(0).(*service.PalaceDetail)
	return detail, args.Error(1)
}

func (m *PalaceService) UpdatePalace(
	ctx context.Context,
	userID, palaceID uuid.UUID,
	title, description string,
) (*domain.Palace, error) {
	args := m.Called(ctx, userID, palaceID, title, description)
	palace, _ := args.Get(0).(*domain.Palace)
	return palace, args.Error(1)
}

func (m *PalaceService) DeletePalace(ctx context.Context, userID, palaceID uuid.UUID) error {
	return m.Called(ctx, userID, palaceID).Error(0)
}

func (m *PalaceService) ListRooms(ctx context.Context, userID, palaceID uuid.UUID) ([]*domain.Room, error) {
	args := m.Called(ctx, userID, palaceID)
	rooms, _ := args.Get(0).([]*domain.Room)
	return rooms, args.Error(1)
}

func (m *PalaceService) CreateRoom(
	ctx context.Context,
	userID, palaceID uuid.UUID,
	name, description string,
) (*domain.Room, error) {
	args := m.Called(ctx, userID, palaceID, name, description)
	room, _ := args.Get(0).(*domain.Room)
	return room, args.Error(1)
}

func (m *PalaceService) ListItems(ctx context.Context, userID, roomID uuid.UUID) ([]*domain.Item, error) {
	args := m.Called(ctx, userID, roomID)
	items, _ := args.Get(0).([]*domain.Item)
	return items, args.Error(1)
}

func (m *PalaceService) CreateItem(
	ctx context.Context,
	userID, roomID uuid.UUID,
	title, content string,
) (*domain.Item, error) {
	args := m.Called(ctx, userID, roomID, title, content)
	item, _ := args.Get(0).(*domain.Item)
	return item, args.Error(1)
}

func (m *PalaceService) RequestSuggestions(
	ctx context.Context,
	userID, palaceID uuid.UUID,
	content string,
) (string, error) {
	args := m.Called(ctx, userID, palaceID, content)
	return args.String(0), args.Error(1)
}

func (m *PalaceService) RequestLayoutOptimization(ctx context.Context, userID, palaceID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID, palaceID)
	return args.String(0), args.Error(1)
}
