package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/palace-api/internal/api/shared"
	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/task"
)

// JobStateReader looks up the state of a queued job.
type JobStateReader interface {
	GetState(ctx context.Context, id string) (*task.JobState, error)
}

// TaskHandler answers job-state polls.
type TaskHandler struct {
	jobs JobStateReader
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(jobs JobStateReader) *TaskHandler {
	return &TaskHandler{jobs: jobs}
}

// GetJob handles GET /api/tasks/{id}.
func (h *TaskHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	jobID := strings.TrimSpace(chi.URLParam(r, "id"))
	if jobID == "" {
		HandleAPIError(w, r, domain.NewValidationError("id", "is required", domain.ErrValidation), "")
		return
	}

	state, err := h.jobs.GetState(r.Context(), jobID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get job state")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}
