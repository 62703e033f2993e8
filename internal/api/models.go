package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/task"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// VerifyResponse is returned by the token verification endpoint.
type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  *domain.User `json:"user"`
}

// UpdateProfileRequest changes the username and/or email of the caller.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=80"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email"`
}

// ProfileResponse wraps the caller's profile.
type ProfileResponse struct {
	Message string `json:"message,omitempty"`
	User    any    `json:"user"`
}

// PalaceRequest is the payload for creating or updating a palace.
type PalaceRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description"`
}

// PalaceListResponse lists the caller's palaces.
type PalaceListResponse struct {
	MemoryPalaces []*domain.Palace `json:"memory_palaces"`
}

// PalaceCreatedResponse is returned when a palace is created.
type PalaceCreatedResponse struct {
	Message string         `json:"message"`
	Palace  *domain.Palace `json:"palace"`
}

// RoomRequest is the payload for adding a room to a palace.
type RoomRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description"`
}

// RoomListResponse lists the rooms of a palace.
type RoomListResponse struct {
	Rooms []*domain.Room `json:"rooms"`
}

// ItemRequest is the payload for adding an item to a room.
type ItemRequest struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content"`
}

// ItemListResponse lists the items of a room.
type ItemListResponse struct {
	Items []*domain.Item `json:"items"`
}

// SuggestionsRequest is the content to generate memory suggestions for.
type SuggestionsRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// JobAcceptedResponse acknowledges a queued job.
type JobAcceptedResponse struct {
	JobID string     `json:"job_id"`
	State task.State `json:"state"`
}

// HealthResponse reports the state of the API and its dependencies.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Broker    string    `json:"broker"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}
