package task

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// jobReporter writes progress reports of one running job to the result store.
// Once detached it refuses further writes.
type jobReporter struct {
	mu       sync.Mutex
	detached bool
	jobID    string
	results  ResultStore
	now      func() time.Time
}

var _ Reporter = (*jobReporter)(nil)

func newJobReporter(results ResultStore, jobID string, now func() time.Time) *jobReporter {
	return &jobReporter{
		jobID:   jobID,
		results: results,
		now:     now,
	}
}

// Report overwrites the job's progress.
func (r *jobReporter) Report(ctx context.Context, current, total int, status string) error {
	if current < 0 || total < 0 {
		return fmt.Errorf("invalid progress %d/%d", current, total)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.detached {
		return ErrHardTimeLimit
	}

	p := Progress{Current: current, Total: total, Status: status}
	_, err := r.results.Update(context.WithoutCancel(ctx), r.jobID, func(j *Job) error {
		return j.MarkProgress(p, r.now())
	})
	if err != nil {
		return fmt.Errorf("failed to report progress: %w", err)
	}
	return nil
}

// detach blocks until any in-flight report completes and disables the reporter.
func (r *jobReporter) detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detached = true
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, current, total int, status string) error

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, current, total int, status string) error {
	return f(ctx, current, total, status)
}

// NopReporter discards every report.
var NopReporter Reporter = ReporterFunc(func(context.Context, int, int, string) error { return nil })
