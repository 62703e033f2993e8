package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/palace-api/internal/config"
	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/mocks"
	"github.com/phrazzld/palace-api/internal/platform/transport"
	"github.com/phrazzld/palace-api/internal/service"
	"github.com/phrazzld/palace-api/internal/service/auth"
	"github.com/phrazzld/palace-api/internal/task"
)

type testApp struct {
	*application
	sqlMock sqlmock.Sqlmock
	users   *mocks.UserService
	palaces *mocks.PalaceService
	router  http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Auth: config.AuthConfig{
			JWTSecret:                   strings.Repeat("k", 32),
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 120,
			BCryptCost:                  4,
		},
		Task: config.TaskConfig{
			BrokerURL:      "memory://",
			ResultStoreURL: "memory://",
			ResultTTL:      time.Hour,
			HardTimeLimit:  time.Minute,
			SoftTimeLimit:  30 * time.Second,
		},
	}

	db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	registry, err := transport.NewRegistry(cfg.Task, logger)
	require.NoError(t, err)
	broker := task.NewMemoryBroker(0, logger)
	t.Cleanup(broker.Close)

	ta := &testApp{
		sqlMock: sqlMock,
		users:   new(mocks.UserService),
		palaces: new(mocks.PalaceService),
	}
	ta.application = &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		userService:      ta.users,
		palaceService:    ta.palaces,
		taskClient:       task.NewClient(registry, broker, task.NewMemoryResultStore(time.Hour), logger),
	}
	ta.router = ta.setupRouter()
	return ta
}

func (ta *testApp) do(t *testing.T, method, path string, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		token, err := ta.jwtService.GenerateToken(context.Background(), userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.sqlMock.ExpectPing()

	rec := ta.do(t, http.MethodGet, "/health", uuid.Nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"ai-memory-palace-backend"`)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/verify"},
		{http.MethodGet, "/api/users/profile"},
		{http.MethodGet, "/api/users/memory-palaces"},
		{http.MethodGet, "/api/palaces/" + uuid.NewString()},
		{http.MethodPost, "/api/palaces/" + uuid.NewString() + "/optimize"},
		{http.MethodGet, "/api/rooms/" + uuid.NewString() + "/items"},
		{http.MethodGet, "/api/tasks/" + uuid.NewString()},
	}

	for _, p := range paths {
		rec := ta.do(t, p.method, p.path, uuid.Nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestRouter_RefreshTokenRejectedAsAccessToken(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	refresh, err := ta.jwtService.GenerateRefreshToken(context.Background(), uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AuthenticatedProfile(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	user := &domain.User{ID: uuid.New(), Email: "ada@example.com", Username: "ada"}
	ta.users.On("GetProfile", mock.Anything, user.ID).Return(&service.Profile{User: user, MemoryPalacesCount: 1}, nil)

	rec := ta.do(t, http.MethodGet, "/api/users/profile", user.ID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"memory_palaces_count":1`)
}

func TestRouter_JobLifecycle(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	userID := uuid.New()
	palaceID := uuid.New()

	jobID, err := ta.taskClient.Enqueue(context.Background(), task.OptimizePalaceLayout, palaceID)
	require.NoError(t, err)

	rec := ta.do(t, http.MethodGet, "/api/tasks/"+jobID, userID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state task.JobState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, jobID, state.ID)
	assert.Equal(t, task.StatePending, state.State)
	assert.Equal(t, task.QueueAI, state.Queue)

	rec = ta.do(t, http.MethodGet, "/api/tasks/"+uuid.NewString(), userID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
