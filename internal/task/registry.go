package task

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Default time limits applied when a definition leaves them unset.
const (
	DefaultHardTimeLimit = 30 * time.Minute
	DefaultSoftTimeLimit = 25 * time.Minute
)

// Reporter publishes intermediate progress of a running job.
type Reporter interface {
	// Report overwrites the job's progress with current/total and a status message.
	Report(ctx context.Context, current, total int, status string) error
}

// HandlerFunc executes one job. The returned value must be JSON serializable
// and becomes the job result; a non-nil error marks the job as failed.
type HandlerFunc func(ctx context.Context, args Args, progress Reporter) (any, error)

// Definition binds a task name to its handler, queue and time limits.
type Definition struct {
	Name    Name
	Handler HandlerFunc

	// Queue is derived from the routing table when empty.
	Queue Queue

	// HardLimit and SoftLimit take the registry defaults when zero.
	HardLimit time.Duration
	SoftLimit time.Duration
}

// Limits holds the default time limits of a registry.
type Limits struct {
	Hard time.Duration
	Soft time.Duration
}

// Registry maps task names to their definitions. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	defs     map[Name]Definition
	defaults Limits
}

// NewRegistry creates an empty registry with the given default limits.
// Zero values fall back to DefaultHardTimeLimit and DefaultSoftTimeLimit.
func NewRegistry(defaults Limits) *Registry {
	if defaults.Hard <= 0 {
		defaults.Hard = DefaultHardTimeLimit
	}
	if defaults.Soft <= 0 || defaults.Soft >= defaults.Hard {
		defaults.Soft = defaults.Hard * 5 / 6
	}
	return &Registry{
		defs:     make(map[Name]Definition),
		defaults: defaults,
	}
}

// Register adds a task definition. Registering the same name twice with the
// same handler is a no-op; a different handler yields ErrDuplicateTask.
//
// Handler identity is the function code, not its receiver or closure state.
// Method values taken from two differently configured receivers count as the
// same handler, so the second registration is ignored and the first
// definition stays in place.
func (r *Registry) Register(def Definition) error {
	if def.Handler == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, def.Name)
	}

	routed, err := QueueFor(def.Name)
	if err != nil {
		return err
	}
	if def.Queue == "" {
		def.Queue = routed
	} else if def.Queue != routed {
		return fmt.Errorf("%w: %s declared on %s, routes to %s", ErrRouteMismatch, def.Name, def.Queue, routed)
	}

	if def.HardLimit <= 0 {
		def.HardLimit = r.defaults.Hard
	}
	if def.SoftLimit <= 0 {
		def.SoftLimit = r.defaults.Soft
		if def.SoftLimit >= def.HardLimit {
			def.SoftLimit = def.HardLimit * 5 / 6
		}
	}
	if def.SoftLimit >= def.HardLimit {
		return fmt.Errorf("%w: %s soft=%s hard=%s", ErrInvalidLimits, def.Name, def.SoftLimit, def.HardLimit)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.defs[def.Name]; ok {
		if sameHandler(existing.Handler, def.Handler) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateTask, def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name Name) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return def, nil
}

// Route returns the queue a registered task is bound to.
func (r *Registry) Route(name Name) (Queue, error) {
	def, err := r.Lookup(name)
	if err != nil {
		return "", err
	}
	return def.Queue, nil
}

// Names returns the registered task names in sorted order.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]Name, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Queues returns the distinct queues that have at least one task bound.
func (r *Registry) Queues() []Queue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Queue]bool)
	var queues []Queue
	for _, q := range AllQueues {
		for _, def := range r.defs {
			if def.Queue == q && !seen[q] {
				seen[q] = true
				queues = append(queues, q)
			}
		}
	}
	return queues
}

// sameHandler compares code pointers. Bound receivers are not compared.
func sameHandler(a, b HandlerFunc) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
