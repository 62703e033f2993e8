package api

import (
	"net/http"

	"github.com/phrazzld/palace-api/internal/api/shared"
	"github.com/phrazzld/palace-api/internal/service"
)

// UserHandler serves the caller's profile and palace collection.
type UserHandler struct {
	users   service.UserService
	palaces service.PalaceService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, palaces service.PalaceService) *UserHandler {
	return &UserHandler{users: users, palaces: palaces}
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{User: profile})
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{
		Message: "Profile updated successfully",
		User:    user,
	})
}

// ListPalaces handles GET /api/users/memory-palaces.
func (h *UserHandler) ListPalaces(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	palaces, err := h.palaces.ListPalaces(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get memory palaces")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PalaceListResponse{MemoryPalaces: palaces})
}

// CreatePalace handles POST /api/users/memory-palaces.
func (h *UserHandler) CreatePalace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req PalaceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	palace, err := h.palaces.CreatePalace(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create memory palace")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, PalaceCreatedResponse{
		Message: "Memory palace created successfully",
		Palace:  palace,
	})
}
