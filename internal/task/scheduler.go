package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	cronlib "github.com/robfig/cron/v3"
)

// cronParser supports standard 5-field cron and descriptors like "@every 1h".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	return cronParser.Parse(expr)
}

// Entry is one periodic job.
type Entry struct {
	Spec string
	Name Name
	Args []any
}

// Scheduler enqueues jobs on cron schedules. It only produces jobs; workers
// execute them like any other.
type Scheduler struct {
	enqueuer Enqueuer
	cron     *cronlib.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	entries []Entry
	running bool
}

// NewScheduler creates a Scheduler that submits jobs through enqueuer.
func NewScheduler(enqueuer Enqueuer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		enqueuer: enqueuer,
		cron:     cronlib.New(cronlib.WithParser(cronParser)),
		logger:   logger.With("component", "scheduler"),
	}
}

// Add schedules name to be enqueued with args on every tick of spec.
func (s *Scheduler) Add(spec string, name Name, args ...any) error {
	entry := Entry{Spec: spec, Name: name, Args: args}
	if _, err := s.cron.AddFunc(spec, func() { s.fire(context.Background(), entry) }); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

// Entries returns the scheduled entries in registration order.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Start begins firing entries in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.entries))
}

// Stop stops firing and waits for running enqueues until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) fire(ctx context.Context, entry Entry) {
	jobID, err := s.enqueuer.Enqueue(ctx, entry.Name, entry.Args...)
	if err != nil {
		s.logger.Error("failed to enqueue scheduled job",
			"task", entry.Name,
			"schedule", entry.Spec,
			"error", err)
		return
	}
	s.logger.Info("scheduled job enqueued",
		"task", entry.Name,
		"schedule", entry.Spec,
		"job_id", jobID)
}
