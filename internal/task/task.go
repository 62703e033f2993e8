package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Name identifies a task. The set of names is closed; AllNames lists every
// variant and each one must have a registered handler.
type Name string

// Task names. The second dot-separated segment selects the queue.
const (
	GenerateMemorySuggestions     Name = "tasks.ai.generate_memory_suggestions"
	OptimizePalaceLayout          Name = "tasks.ai.optimize_palace_layout"
	SendWelcomeEmail              Name = "tasks.notification.send_welcome_email"
	SendPalaceCreatedNotification Name = "tasks.notification.send_palace_created_notification"
	CleanupOldSessions            Name = "tasks.notification.cleanup_old_sessions"
)

// AllNames lists every task variant known to the application.
var AllNames = []Name{
	GenerateMemorySuggestions,
	OptimizePalaceLayout,
	SendWelcomeEmail,
	SendPalaceCreatedNotification,
	CleanupOldSessions,
}

// Queue is the name of a logical job queue.
type Queue string

// Queues served by the workers.
const (
	QueueAI           Queue = "ai_queue"
	QueueNotification Queue = "notification_queue"
)

// AllQueues lists every queue in routing order.
var AllQueues = []Queue{QueueAI, QueueNotification}

// State represents the lifecycle state of a job.
type State string

// Possible job states.
const (
	StatePending  State = "PENDING"
	StateProgress State = "PROGRESS"
	StateSuccess  State = "SUCCESS"
	StateFailure  State = "FAILURE"
)

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// CanTransition reports whether a job may move from one state to another.
// Progress may be reported any number of times; terminal states are final.
func CanTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateProgress || to == StateSuccess || to == StateFailure
	case StateProgress:
		return to == StateProgress || to == StateSuccess || to == StateFailure
	default:
		return false
	}
}

// Progress is the latest intermediate report of a running job.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Status  string `json:"status"`
}

// Job is the stored record of one unit of asynchronous work.
type Job struct {
	ID          string          `json:"id"`
	Task        Name            `json:"task"`
	Queue       Queue           `json:"queue"`
	Args        Args            `json:"args"`
	State       State           `json:"state"`
	Progress    *Progress       `json:"progress,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *JobError       `json:"error,omitempty"`
	WorkerID    string          `json:"worker_id,omitempty"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (j *Job) transition(to State, now time.Time) error {
	if !CanTransition(j.State, to) {
		return fmt.Errorf("%w: job %s %s -> %s", ErrInvalidTransition, j.ID, j.State, to)
	}
	j.State = to
	j.UpdatedAt = now
	return nil
}

// MarkProgress records an intermediate progress report, replacing the previous one.
func (j *Job) MarkProgress(p Progress, now time.Time) error {
	if err := j.transition(StateProgress, now); err != nil {
		return err
	}
	j.Progress = &p
	j.Result = nil
	j.Error = nil
	return nil
}

// MarkSuccess moves the job to SUCCESS with the given result payload.
func (j *Job) MarkSuccess(result json.RawMessage, now time.Time) error {
	if err := j.transition(StateSuccess, now); err != nil {
		return err
	}
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	j.Progress = nil
	j.Result = result
	j.Error = nil
	j.CompletedAt = &now
	return nil
}

// MarkFailure moves the job to FAILURE with the given error.
func (j *Job) MarkFailure(jobErr *JobError, now time.Time) error {
	if err := j.transition(StateFailure, now); err != nil {
		return err
	}
	j.Progress = nil
	j.Result = nil
	j.Error = jobErr
	j.CompletedAt = &now
	return nil
}

// Message is the wire form of a job travelling through a Broker.
type Message struct {
	ID         string    `json:"id"`
	Task       Name      `json:"task"`
	Args       Args      `json:"args"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Delivery is a message claimed from a queue and awaiting Ack or Reject.
type Delivery struct {
	Queue   Queue
	Message Message

	// Token is the transport's handle for the claimed message.
	Token string
}

// Broker is the job transport. It maps queue names to ordered messages.
type Broker interface {
	// Push appends msg to the tail of queue.
	Push(ctx context.Context, queue Queue, msg Message) error

	// Claim blocks until a message is available on queue or ctx is done.
	// Exactly one message is claimed per call.
	Claim(ctx context.Context, queue Queue) (*Delivery, error)

	// Ack confirms successful processing of a delivery.
	Ack(ctx context.Context, d *Delivery) error

	// Reject hands a failed delivery back to the transport's dead-letter policy.
	Reject(ctx context.Context, d *Delivery, cause error) error

	// Ping checks connectivity with the transport.
	Ping(ctx context.Context) error
}

// ResultStore keeps job records keyed by job id.
type ResultStore interface {
	// Create stores a new job record.
	Create(ctx context.Context, j *Job) error

	// Get returns the job with the given id or ErrJobNotFound.
	Get(ctx context.Context, id string) (*Job, error)

	// Update applies fn to the current record and persists the result
	// atomically with respect to other updates of the same job. When fn
	// returns an error nothing is written and that error is returned.
	Update(ctx context.Context, id string, fn func(j *Job) error) (*Job, error)

	// Delete removes a job record.
	Delete(ctx context.Context, id string) error

	// Ping checks connectivity with the store.
	Ping(ctx context.Context) error
}
