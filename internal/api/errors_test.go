package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/palace-api/internal/api/shared"
	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/service"
	"github.com/phrazzld/palace-api/internal/service/auth"
	"github.com/phrazzld/palace-api/internal/store"
	"github.com/phrazzld/palace-api/internal/task"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", fmt.Errorf("refresh: %w", auth.ErrWrongTokenType), http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not owned", fmt.Errorf("get palace: %w", service.ErrNotOwned), http.StatusForbidden},
		{"palace not found", fmt.Errorf("failed to retrieve palace: %w", store.ErrPalaceNotFound), http.StatusNotFound},
		{"job not found", task.ErrJobNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"username exists", store.ErrUsernameExists, http.StatusConflict},
		{"domain validation", domain.ErrEmptyTitle, http.StatusBadRequest},
		{"invalid id", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown task", task.ErrUnknownTask, http.StatusBadRequest},
		{"queue full", fmt.Errorf("failed to enqueue: %w", task.ErrQueueFull), http.StatusServiceUnavailable},
		{"queue closed", task.ErrQueueClosed, http.StatusServiceUnavailable},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"email exists", fmt.Errorf("failed to create user: %w", store.ErrEmailExists), "Email already in use"},
		{"username exists", store.ErrUsernameExists, "Username already taken"},
		{"not owned", service.ErrNotOwned, "Access denied"},
		{"palace not found", store.ErrPalaceNotFound, "Memory palace not found"},
		{"job not found", task.ErrJobNotFound, "Job not found"},
		{"domain validation", fmt.Errorf("create: %w", domain.ErrEmptyTitle), "title cannot be empty"},
		{"field validation", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), "Invalid id: has invalid format"},
		{"queue full", task.ErrQueueFull, "Task queue unavailable"},
		{"internal details hidden", errors.New("pq: password authentication failed for user admin"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := validator.New().Struct(RegisterRequest{Email: "ada@example.com", Username: "ab", Password: "correct horse battery"})
	require.Error(t, err)

	assert.Equal(t, "Invalid Username: too short", SanitizeValidationError(err))
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
