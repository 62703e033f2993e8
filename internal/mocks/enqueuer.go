package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/palace-api/internal/task"
)

// EnqueueCall records one call to MockEnqueuer.Enqueue.
type EnqueueCall struct {
	Name task.Name
	Args []any
}

// MockEnqueuer implements task.Enqueuer for testing. Without EnqueueFn it
// returns sequential job ids, or Err when set.
type MockEnqueuer struct {
	EnqueueFn func(ctx context.Context, name task.Name, args ...any) (string, error)
	Err       error

	mu    sync.Mutex
	calls []EnqueueCall
}

var _ task.Enqueuer = (*MockEnqueuer)(nil)

// Enqueue implements the task.Enqueuer interface
func (m *MockEnqueuer) Enqueue(ctx context.Context, name task.Name, args ...any) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, EnqueueCall{Name: name, Args: args})
	n := len(m.calls)
	m.mu.Unlock()

	if m.EnqueueFn != nil {
		return m.EnqueueFn(ctx, name, args...)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("job-%d", n), nil
}

// Calls returns a copy of the recorded calls.
func (m *MockEnqueuer) Calls() []EnqueueCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EnqueueCall(nil), m.calls...)
}
