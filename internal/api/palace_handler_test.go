package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/mocks"
	"github.com/phrazzld/palace-api/internal/service"
	"github.com/phrazzld/palace-api/internal/store"
	"github.com/phrazzld/palace-api/internal/task"
)

func newPalaceRouter(palaces *mocks.PalaceService, users *mocks.UserService) http.Handler {
	ph := NewPalaceHandler(palaces)
	uh := NewUserHandler(users, palaces)

	r := chi.NewRouter()
	r.Get("/api/users/profile", uh.GetProfile)
	r.Put("/api/users/profile", uh.UpdateProfile)
	r.Get("/api/users/memory-palaces", uh.ListPalaces)
	r.Post("/api/users/memory-palaces", uh.CreatePalace)
	r.Route("/api/palaces/{id}", func(r chi.Router) {
		r.Get("/", ph.GetPalace)
		r.Put("/", ph.UpdatePalace)
		r.Delete("/", ph.DeletePalace)
		r.Get("/rooms", ph.ListRooms)
		r.Post("/rooms", ph.CreateRoom)
		r.Post("/suggestions", ph.RequestSuggestions)
		r.Post("/optimize", ph.OptimizeLayout)
	})
	r.Get("/api/rooms/{id}/items", ph.ListItems)
	r.Post("/api/rooms/{id}/items", ph.CreateItem)
	return r
}

func testPalace(t *testing.T, owner uuid.UUID) *domain.Palace {
	t.Helper()
	palace, err := domain.NewPalace(owner, "Childhood home", "front door first")
	require.NoError(t, err)
	return palace
}

func TestUserHandler_Profile(t *testing.T) {
	t.Parallel()

	user := testUser()
	users := new(mocks.UserService)
	users.On("GetProfile", mock.Anything, user.ID).
		Return(&service.Profile{User: user, MemoryPalacesCount: 2}, nil)
	router := newPalaceRouter(new(mocks.PalaceService), users)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, "/api/users/profile", nil, user.ID))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		User struct {
			Username           string `json:"username"`
			MemoryPalacesCount int    `json:"memory_palaces_count"`
		} `json:"user"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "ada", resp.User.Username)
	assert.Equal(t, 2, resp.User.MemoryPalacesCount)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	t.Parallel()

	user := testUser()

	t.Run("success", func(t *testing.T) {
		users := new(mocks.UserService)
		updated := *user
		updated.Username = "lovelace"
		users.On("UpdateProfile", mock.Anything, user.ID, mock.MatchedBy(func(u service.ProfileUpdate) bool {
			return u.Username != nil && *u.Username == "lovelace" && u.Email == nil
		})).Return(&updated, nil)
		router := newPalaceRouter(new(mocks.PalaceService), users)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newJSONRequest(t, http.MethodPut, "/api/users/profile",
			map[string]string{"username": "lovelace"}, user.ID))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Message string      `json:"message"`
			User    domain.User `json:"user"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Profile updated successfully", resp.Message)
		assert.Equal(t, "lovelace", resp.User.Username)
	})

	t.Run("username taken", func(t *testing.T) {
		users := new(mocks.UserService)
		users.On("UpdateProfile", mock.Anything, user.ID, mock.Anything).Return(nil, store.ErrUsernameExists)
		router := newPalaceRouter(new(mocks.PalaceService), users)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newJSONRequest(t, http.MethodPut, "/api/users/profile",
			map[string]string{"username": "grace"}, user.ID))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Username already taken", errorMessage(t, rec))
	})

	t.Run("unknown field", func(t *testing.T) {
		router := newPalaceRouter(new(mocks.PalaceService), new(mocks.UserService))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, newJSONRequest(t, http.MethodPut, "/api/users/profile",
			map[string]string{"password": "sneaky"}, user.ID))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUserHandler_MemoryPalaces(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	palace := testPalace(t, owner)
	palaces := new(mocks.PalaceService)
	palaces.On("ListPalaces", mock.Anything, owner).Return([]*domain.Palace{palace}, nil)
	palaces.On("CreatePalace", mock.Anything, owner, "Childhood home", "front door first").Return(palace, nil)
	router := newPalaceRouter(palaces, new(mocks.UserService))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, "/api/users/memory-palaces", nil, owner))
	require.Equal(t, http.StatusOK, rec.Code)
	var list PalaceListResponse
	decodeBody(t, rec, &list)
	require.Len(t, list.MemoryPalaces, 1)
	assert.Equal(t, palace.ID, list.MemoryPalaces[0].ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/users/memory-palaces",
		PalaceRequest{Title: "Childhood home", Description: "front door first"}, owner))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created PalaceCreatedResponse
	decodeBody(t, rec, &created)
	assert.Equal(t, "Memory palace created successfully", created.Message)
	assert.Equal(t, palace.ID, created.Palace.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/users/memory-palaces",
		PalaceRequest{Title: ""}, owner))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Title: required field", errorMessage(t, rec))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, "/api/users/memory-palaces", nil, uuid.Nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPalaceHandler_GetPalace(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	palace := testPalace(t, owner)
	room, err := domain.NewRoom(palace.ID, "Hallway", "", 0)
	require.NoError(t, err)

	stranger := uuid.New()
	missing := uuid.New()
	palaces := new(mocks.PalaceService)
	palaces.On("GetPalace", mock.Anything, owner, palace.ID).
		Return(&service.PalaceDetail{Palace: palace, Rooms: []*domain.Room{room}}, nil)
	palaces.On("GetPalace", mock.Anything, stranger, palace.ID).Return(nil, service.ErrNotOwned)
	palaces.On("GetPalace", mock.Anything, owner, missing).
		Return(nil, fmt.Errorf("failed to retrieve palace: %w", store.ErrPalaceNotFound))
	router := newPalaceRouter(palaces, new(mocks.UserService))

	tests := []struct {
		name   string
		user   uuid.UUID
		path   string
		status int
	}{
		{"owner", owner, "/api/palaces/" + palace.ID.String(), http.StatusOK},
		{"stranger", stranger, "/api/palaces/" + palace.ID.String(), http.StatusForbidden},
		{"missing", owner, "/api/palaces/" + missing.String(), http.StatusNotFound},
		{"malformed id", owner, "/api/palaces/not-a-uuid", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, tc.path, nil, tc.user))
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, "/api/palaces/"+palace.ID.String(), nil, owner))
	var detail struct {
		ID    uuid.UUID     `json:"id"`
		Title string        `json:"title"`
		Rooms []domain.Room `json:"rooms"`
	}
	decodeBody(t, rec, &detail)
	assert.Equal(t, palace.ID, detail.ID)
	require.Len(t, detail.Rooms, 1)
	assert.Equal(t, "Hallway", detail.Rooms[0].Name)
}

func TestPalaceHandler_UpdateDelete(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	palace := testPalace(t, owner)
	palaces := new(mocks.PalaceService)
	palaces.On("UpdatePalace", mock.Anything, owner, palace.ID, "Office", "desk").Return(palace, nil)
	palaces.On("DeletePalace", mock.Anything, owner, palace.ID).Return(nil)
	router := newPalaceRouter(palaces, new(mocks.UserService))
	path := "/api/palaces/" + palace.ID.String()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPut, path, PalaceRequest{Title: "Office", Description: "desk"}, owner))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodDelete, path, nil, owner))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	palaces.AssertExpectations(t)
}

func TestPalaceHandler_RoomsAndItems(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	palace := testPalace(t, owner)
	room, err := domain.NewRoom(palace.ID, "Kitchen", "", 1)
	require.NoError(t, err)
	item, err := domain.NewItem(room.ID, "Kettle", "whistles at 7", 0)
	require.NoError(t, err)

	palaces := new(mocks.PalaceService)
	palaces.On("ListRooms", mock.Anything, owner, palace.ID).Return([]*domain.Room{room}, nil)
	palaces.On("CreateRoom", mock.Anything, owner, palace.ID, "Kitchen", "").Return(room, nil)
	palaces.On("ListItems", mock.Anything, owner, room.ID).Return([]*domain.Item{item}, nil)
	palaces.On("CreateItem", mock.Anything, owner, room.ID, "Kettle", "whistles at 7").Return(item, nil)
	router := newPalaceRouter(palaces, new(mocks.UserService))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, "/api/palaces/"+palace.ID.String()+"/rooms", nil, owner))
	require.Equal(t, http.StatusOK, rec.Code)
	var rooms RoomListResponse
	decodeBody(t, rec, &rooms)
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, 1, rooms.Rooms[0].Position)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/palaces/"+palace.ID.String()+"/rooms",
		RoomRequest{Name: "Kitchen"}, owner))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, "/api/rooms/"+room.ID.String()+"/items", nil, owner))
	require.Equal(t, http.StatusOK, rec.Code)
	var items ItemListResponse
	decodeBody(t, rec, &items)
	require.Len(t, items.Items, 1)
	assert.Equal(t, "Kettle", items.Items[0].Title)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/rooms/"+room.ID.String()+"/items",
		ItemRequest{Title: "Kettle", Content: "whistles at 7"}, owner))
	assert.Equal(t, http.StatusCreated, rec.Code)

	palaces.AssertExpectations(t)
}

func TestPalaceHandler_Jobs(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	palaceID := uuid.New()
	busy := uuid.New()
	palaces := new(mocks.PalaceService)
	palaces.On("RequestSuggestions", mock.Anything, owner, palaceID, "a red door").Return("job-1", nil)
	palaces.On("RequestLayoutOptimization", mock.Anything, owner, palaceID).Return("job-2", nil)
	palaces.On("RequestLayoutOptimization", mock.Anything, owner, busy).
		Return("", fmt.Errorf("failed to enqueue: %w", task.ErrQueueFull))
	router := newPalaceRouter(palaces, new(mocks.UserService))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/palaces/"+palaceID.String()+"/suggestions",
		SuggestionsRequest{Content: "a red door"}, owner))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted JobAcceptedResponse
	decodeBody(t, rec, &accepted)
	assert.Equal(t, "job-1", accepted.JobID)
	assert.Equal(t, task.StatePending, accepted.State)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/palaces/"+palaceID.String()+"/optimize", nil, owner))
	require.Equal(t, http.StatusAccepted, rec.Code)
	decodeBody(t, rec, &accepted)
	assert.Equal(t, "job-2", accepted.JobID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/palaces/"+busy.String()+"/optimize", nil, owner))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Task queue unavailable", errorMessage(t, rec))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/palaces/"+palaceID.String()+"/suggestions",
		SuggestionsRequest{}, owner))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
