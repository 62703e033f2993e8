package task

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setupTestLogger creates a logger that discards output
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires a registry, in-memory transport, client and executor.
type testEnv struct {
	registry *Registry
	broker   *MemoryBroker
	results  *MemoryResultStore
	client   *Client
	executor *Executor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := setupTestLogger()
	registry := NewRegistry(Limits{})
	broker := NewMemoryBroker(16, logger)
	results := NewMemoryResultStore(time.Hour)
	return &testEnv{
		registry: registry,
		broker:   broker,
		results:  results,
		client:   NewClient(registry, broker, results, logger),
		executor: NewExecutor(registry, broker, results, logger),
	}
}

func (e *testEnv) register(t *testing.T, def Definition) {
	t.Helper()
	require.NoError(t, e.registry.Register(def))
}

func (e *testEnv) claim(t *testing.T, queue Queue) *Delivery {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d, err := e.broker.Claim(ctx, queue)
	require.NoError(t, err)
	return d
}

// stateRecorder is a ResultStore decorator capturing every written state.
type stateRecorder struct {
	ResultStore
	mu     sync.Mutex
	states map[string][]State
}

func newStateRecorder(inner ResultStore) *stateRecorder {
	return &stateRecorder{ResultStore: inner, states: make(map[string][]State)}
}

func (r *stateRecorder) Create(ctx context.Context, j *Job) error {
	if err := r.ResultStore.Create(ctx, j); err != nil {
		return err
	}
	r.record(j.ID, j.State)
	return nil
}

func (r *stateRecorder) Update(ctx context.Context, id string, fn func(j *Job) error) (*Job, error) {
	j, err := r.ResultStore.Update(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	r.record(id, j.State)
	return j, nil
}

func (r *stateRecorder) record(id string, s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := r.states[id]
	if len(history) > 0 && history[len(history)-1] == s && s != StateProgress {
		return
	}
	r.states[id] = append(history, s)
}

func (r *stateRecorder) history(id string) []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states[id]...)
}

func echoHandler(ctx context.Context, args Args, progress Reporter) (any, error) {
	return map[string]any{"args": args}, nil
}
