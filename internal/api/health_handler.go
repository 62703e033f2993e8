package api

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/palace-api/internal/api/shared"
	"github.com/phrazzld/palace-api/internal/platform/logger"
)

// ServiceName identifies this API in health responses.
const ServiceName = "ai-memory-palace-backend"

const healthCheckTimeout = 2 * time.Second

// DBPinger is satisfied by *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// BrokerPinger is satisfied by *task.Client.
type BrokerPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the API can reach its dependencies.
type HealthHandler struct {
	db     DBPinger
	broker BrokerPinger
	now    func() time.Time
}

// NewHealthHandler creates a new HealthHandler. A nil broker is reported as
// "disabled".
func NewHealthHandler(db DBPinger, broker BrokerPinger) *HealthHandler {
	return &HealthHandler{db: db, broker: broker, now: time.Now}
}

// Health handles GET /health. It answers 503 when the database or broker is
// unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	log := logger.FromContext(ctx)
	resp := HealthResponse{
		Status:    "healthy",
		Database:  "connected",
		Broker:    "connected",
		Service:   ServiceName,
		Timestamp: h.now().UTC(),
	}

	if err := h.db.PingContext(ctx); err != nil {
		log.Error("database health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
	}

	if h.broker == nil {
		resp.Broker = "disabled"
	} else if err := h.broker.Ping(ctx); err != nil {
		log.Error("broker health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Broker = "disconnected"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	shared.RespondWithJSON(w, r, status, resp)
}
