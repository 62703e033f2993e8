package api

import (
	"net/http"

	"github.com/phrazzld/palace-api/internal/api/shared"
	"github.com/phrazzld/palace-api/internal/service"
	"github.com/phrazzld/palace-api/internal/task"
)

// PalaceHandler serves a single palace, its rooms and items, and the jobs
// that analyse it.
type PalaceHandler struct {
	palaces service.PalaceService
}

// NewPalaceHandler creates a new PalaceHandler.
func NewPalaceHandler(palaces service.PalaceService) *PalaceHandler {
	return &PalaceHandler{palaces: palaces}
}

// GetPalace handles GET /api/palaces/{id}.
func (h *PalaceHandler) GetPalace(w http.ResponseWriter, r *http.Request) {
	userID, palaceID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.palaces.GetPalace(r.Context(), userID, palaceID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get memory palace")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// UpdatePalace handles PUT /api/palaces/{id}.
func (h *PalaceHandler) UpdatePalace(w http.ResponseWriter, r *http.Request) {
	userID, palaceID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req PalaceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	palace, err := h.palaces.UpdatePalace(r.Context(), userID, palaceID, req.Title, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update memory palace")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, palace)
}

// DeletePalace handles DELETE /api/palaces/{id}.
func (h *PalaceHandler) DeletePalace(w http.ResponseWriter, r *http.Request) {
	userID, palaceID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.palaces.DeletePalace(r.Context(), userID, palaceID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete memory palace")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRooms handles GET /api/palaces/{id}/rooms.
func (h *PalaceHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	userID, palaceID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	rooms, err := h.palaces.ListRooms(r.Context(), userID, palaceID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list rooms")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RoomListResponse{Rooms: rooms})
}

// CreateRoom handles POST /api/palaces/{id}/rooms.
func (h *PalaceHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, palaceID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req RoomRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	room, err := h.palaces.CreateRoom(r.Context(), userID, palaceID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create room")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, room)
}

// ListItems handles GET /api/rooms/{id}/items.
func (h *PalaceHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	items, err := h.palaces.ListItems(r.Context(), userID, roomID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ItemListResponse{Items: items})
}

// CreateItem handles POST /api/rooms/{id}/items.
func (h *PalaceHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.palaces.CreateItem(r.Context(), userID, roomID, req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, item)
}

// RequestSuggestions handles POST /api/palaces/{id}/suggestions.
func (h *PalaceHandler) RequestSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, palaceID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SuggestionsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	jobID, err := h.palaces.RequestSuggestions(r.Context(), userID, palaceID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to queue suggestions")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, JobAcceptedResponse{JobID: jobID, State: task.StatePending})
}

// OptimizeLayout handles POST /api/palaces/{id}/optimize.
func (h *PalaceHandler) OptimizeLayout(w http.ResponseWriter, r *http.Request) {
	userID, palaceID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	jobID, err := h.palaces.RequestLayoutOptimization(r.Context(), userID, palaceID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to queue layout optimization")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, JobAcceptedResponse{JobID: jobID, State: task.StatePending})
}
