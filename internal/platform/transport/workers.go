package transport

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/palace-api/internal/config"
	"github.com/phrazzld/palace-api/internal/task"
	"github.com/phrazzld/palace-api/internal/task/handlers"
)

// NewRegistry builds the task registry with every handler registered and
// the configured default time limits.
func NewRegistry(cfg config.TaskConfig, logger *slog.Logger) (*task.Registry, error) {
	reg := task.NewRegistry(task.Limits{Hard: cfg.HardTimeLimit, Soft: cfg.SoftTimeLimit})
	if err := handlers.Register(reg, handlers.Options{
		Logger: logger,
		Delays: handlers.DefaultDelays(),
	}); err != nil {
		return nil, fmt.Errorf("failed to register task handlers: %w", err)
	}
	return reg, nil
}

// WorkerPoolConfig maps the task configuration onto a pool named name.
func WorkerPoolConfig(cfg config.TaskConfig, name string) task.WorkerPoolConfig {
	return task.WorkerPoolConfig{
		Name: name,
		WorkerCounts: map[task.Queue]int{
			task.QueueAI:           cfg.AIQueueWorkers,
			task.QueueNotification: cfg.NotificationQueueWorkers,
		},
		MaxJobsPerWorker: cfg.MaxJobsPerWorker,
		RateLimits: map[task.Queue]float64{
			task.QueueAI:           cfg.AIQueueRateLimit,
			task.QueueNotification: cfg.NotificationQueueRateLimit,
		},
	}
}
