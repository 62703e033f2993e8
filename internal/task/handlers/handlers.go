package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/phrazzld/palace-api/internal/task"
)

// Delays used by the operations to simulate external work.
type Delays struct {
	Analyze         time.Duration
	Generate        time.Duration
	AnalyzeLayout   time.Duration
	CalculateLayout time.Duration
	WelcomeEmail    time.Duration
	PalaceNotice    time.Duration
}

// DefaultDelays returns the simulated processing delays.
func DefaultDelays() Delays {
	return Delays{
		Analyze:         2 * time.Second,
		Generate:        3 * time.Second,
		AnalyzeLayout:   3 * time.Second,
		CalculateLayout: 2 * time.Second,
		WelcomeEmail:    time.Second,
		PalaceNotice:    500 * time.Millisecond,
	}
}

// Options configures the handlers. Zero fields take defaults.
type Options struct {
	Logger *slog.Logger

	// Delays is used as is; pass DefaultDelays() for production timings.
	Delays Delays

	// Float64 returns a pseudo-random number in [0,1).
	Float64 func() float64

	// Now returns the timestamps embedded in results.
	Now func() time.Time

	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Handlers holds the dependencies shared by all operations.
type Handlers struct {
	logger  *slog.Logger
	delays  Delays
	float64 func() float64
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates Handlers from opts.
func New(opts Options) *Handlers {
	h := &Handlers{
		logger:  opts.Logger,
		delays:  opts.Delays,
		float64: opts.Float64,
		now:     opts.Now,
		sleep:   opts.Sleep,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With("component", "task_handlers")
	if h.float64 == nil {
		h.float64 = rand.Float64
	}
	if h.now == nil {
		h.now = func() time.Time { return time.Now().UTC() }
	}
	if h.sleep == nil {
		h.sleep = sleepContext
	}
	return h
}

// Definitions returns the task definitions of every operation.
func (h *Handlers) Definitions() []task.Definition {
	return []task.Definition{
		{Name: task.GenerateMemorySuggestions, Handler: h.GenerateMemorySuggestions},
		{Name: task.OptimizePalaceLayout, Handler: h.OptimizePalaceLayout},
		{Name: task.SendWelcomeEmail, Handler: h.SendWelcomeEmail},
		{Name: task.SendPalaceCreatedNotification, Handler: h.SendPalaceCreatedNotification},
		{Name: task.CleanupOldSessions, Handler: h.CleanupOldSessions},
	}
}

// Register adds every operation to reg.
func Register(reg *task.Registry, opts Options) error {
	for _, def := range New(opts).Definitions() {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("failed to register %s: %w", def.Name, err)
		}
	}
	return nil
}

// uniform returns a value in [lo, hi).
func (h *Handlers) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*h.float64()
}

// sleepContext waits for d. When ctx ends first it returns the context's cause.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return context.Cause(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
