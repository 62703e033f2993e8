package task

import (
	"errors"
	"fmt"
	"time"
)

// Common errors returned by the task subsystem
var (
	ErrUnknownTask       = errors.New("unknown task")
	ErrJobNotFound       = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid job state transition")
	ErrDuplicateTask     = errors.New("task already registered with a different handler")
	ErrRouteMismatch     = errors.New("task queue does not match routing table")
	ErrInvalidLimits     = errors.New("soft time limit must be below hard time limit")
	ErrNilHandler        = errors.New("task handler cannot be nil")
	ErrQueueClosed       = errors.New("task queue is closed")
	ErrQueueFull         = errors.New("task queue is full")

	// ErrSoftTimeLimit is the cancellation cause seen by a handler whose soft
	// time limit elapsed.
	ErrSoftTimeLimit = errors.New("soft time limit exceeded")

	// ErrHardTimeLimit is returned to a handler that keeps running after its
	// hard time limit elapsed.
	ErrHardTimeLimit = errors.New("hard time limit exceeded")
)

// ErrorKind classifies a recorded job failure.
type ErrorKind string

// Failure kinds recorded on FAILURE jobs.
const (
	KindHandlerError ErrorKind = "handler_error"
	KindTimeout      ErrorKind = "timeout"
)

// JobError is the failure recorded on a job in FAILURE state.
type JobError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HandlerError wraps a failure raised by a task handler. It is what the
// executor hands back to the transport on Reject.
type HandlerError struct {
	Task  Name
	JobID string
	Err   error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("task %s (job %s) failed: %v", e.Task, e.JobID, e.Err)
}

// Unwrap returns the handler's error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a job stopped by its hard time limit.
type TimeoutError struct {
	Task  Name
	JobID string
	Limit time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s (job %s) exceeded hard time limit of %s", e.Task, e.JobID, e.Limit)
}

// Unwrap allows errors.Is(err, ErrHardTimeLimit).
func (e *TimeoutError) Unwrap() error {
	return ErrHardTimeLimit
}
