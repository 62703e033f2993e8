package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Enqueuer submits jobs by task name.
type Enqueuer interface {
	Enqueue(ctx context.Context, name Name, args ...any) (string, error)
}

// JobState is the externally visible state of a job.
type JobState struct {
	ID          string          `json:"job_id"`
	Task        Name            `json:"task"`
	Queue       Queue           `json:"queue"`
	State       State           `json:"state"`
	Progress    *Progress       `json:"progress,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *JobError       `json:"error,omitempty"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Client is the producer side of the task queue.
type Client struct {
	registry *Registry
	broker   Broker
	results  ResultStore
	logger   *slog.Logger
	now      func() time.Time
}

var _ Enqueuer = (*Client)(nil)

// NewClient creates a Client that routes jobs through registry.
func NewClient(registry *Registry, broker Broker, results ResultStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		registry: registry,
		broker:   broker,
		results:  results,
		logger:   logger.With("component", "task_client"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue submits a job and returns its id. The job is recorded as PENDING
// before it is pushed; an unregistered name fails with ErrUnknownTask and
// leaves no trace.
func (c *Client) Enqueue(ctx context.Context, name Name, args ...any) (string, error) {
	queue, err := c.registry.Route(name)
	if err != nil {
		return "", err
	}

	encoded, err := NewArgs(args...)
	if err != nil {
		return "", fmt.Errorf("failed to encode arguments for %s: %w", name, err)
	}

	now := c.now()
	job := &Job{
		ID:         uuid.NewString(),
		Task:       name,
		Queue:      queue,
		Args:       encoded,
		State:      StatePending,
		EnqueuedAt: now,
		UpdatedAt:  now,
	}

	if err := c.results.Create(ctx, job); err != nil {
		return "", fmt.Errorf("failed to save job: %w", err)
	}

	msg := Message{ID: job.ID, Task: name, Args: encoded, EnqueuedAt: now}
	if err := c.broker.Push(ctx, queue, msg); err != nil {
		if delErr := c.results.Delete(context.WithoutCancel(ctx), job.ID); delErr != nil {
			c.logger.Error("failed to delete job record after push failure",
				"job_id", job.ID,
				"error", delErr)
		}
		return "", fmt.Errorf("failed to push job: %w", err)
	}

	c.logger.Debug("job enqueued",
		"job_id", job.ID,
		"task", name,
		"queue", queue)
	return job.ID, nil
}

// GetState returns the current state of a job or ErrJobNotFound.
func (c *Client) GetState(ctx context.Context, id string) (*JobState, error) {
	j, err := c.results.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &JobState{
		ID:          j.ID,
		Task:        j.Task,
		Queue:       j.Queue,
		State:       j.State,
		Progress:    j.Progress,
		Result:      j.Result,
		Error:       j.Error,
		EnqueuedAt:  j.EnqueuedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}, nil
}

// Ping checks the broker and the result store.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.broker.Ping(ctx); err != nil {
		return fmt.Errorf("broker: %w", err)
	}
	if err := c.results.Ping(ctx); err != nil {
		return fmt.Errorf("result store: %w", err)
	}
	return nil
}
