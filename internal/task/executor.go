package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Outcome describes how the executor disposed of a delivery.
type Outcome int

const (
	// OutcomeSucceeded means the job reached SUCCESS and was acknowledged.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed means the job was rejected, normally after reaching FAILURE.
	OutcomeFailed
	// OutcomeSkipped means the job was already terminal and was acknowledged.
	OutcomeSkipped
	// OutcomeAbandoned means the hard time limit elapsed. The handler is
	// detached and the worker slot that ran it must retire.
	OutcomeAbandoned
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var errAlreadyTerminal = errors.New("job already terminal")

// Executor runs one claimed delivery through its registered handler and
// drives the job's state machine in the result store.
type Executor struct {
	registry *Registry
	broker   Broker
	results  ResultStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewExecutor creates an Executor.
func NewExecutor(registry *Registry, broker Broker, results ResultStore, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		registry: registry,
		broker:   broker,
		results:  results,
		logger:   logger.With("component", "task_executor"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type handlerResult struct {
	value any
	err   error
}

// Execute processes d on behalf of workerID. The returned error is nil for
// OutcomeSucceeded and OutcomeSkipped and a *TimeoutError for
// OutcomeAbandoned. OutcomeFailed carries a *HandlerError, or the store error
// when the SUCCESS record could not be written; the message is rejected
// rather than acknowledged in both cases.
//
// Cancelling ctx does not interrupt a running handler; only the time limits
// do. Handlers must honour the ctx they are given: Go cannot stop a
// goroutine, so a handler that ignores the hard limit keeps running in the
// worker process after Execute returns OutcomeAbandoned. Its reporter is
// inert from then on and its return value is discarded.
func (e *Executor) Execute(ctx context.Context, d *Delivery, workerID string) (Outcome, error) {
	ctx = context.WithoutCancel(ctx)
	msg := d.Message
	log := e.logger.With(
		"job_id", msg.ID,
		"task", msg.Task,
		"queue", d.Queue,
		"worker_id", workerID,
	)

	def, err := e.registry.Lookup(msg.Task)
	if err != nil {
		log.Error("no handler registered for task", "error", err)
		return e.fail(ctx, log, d, err)
	}

	if err := e.start(ctx, msg, d.Queue, workerID); err != nil {
		if errors.Is(err, errAlreadyTerminal) {
			log.Info("skipping redelivered job in terminal state")
			if ackErr := e.broker.Ack(ctx, d); ackErr != nil {
				log.Error("failed to acknowledge skipped job", "error", ackErr)
			}
			return OutcomeSkipped, nil
		}
		log.Error("failed to record job start", "error", err)
		return e.fail(ctx, log, d, err)
	}

	log.Info("processing job",
		"soft_limit", def.SoftLimit,
		"hard_limit", def.HardLimit)
	start := time.Now()

	reporter := newJobReporter(e.results, msg.ID, e.now)
	hardCtx, cancelHard := context.WithCancelCause(ctx)
	softCtx, cancelSoft := context.WithTimeoutCause(hardCtx, def.SoftLimit, ErrSoftTimeLimit)
	defer cancelSoft()

	done := make(chan handlerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("task handler panicked",
					"panic", r,
					"stack", string(debug.Stack()))
				done <- handlerResult{err: fmt.Errorf("panic in task %s: %v", msg.Task, r)}
			}
		}()
		value, err := def.Handler(softCtx, msg.Args, reporter)
		done <- handlerResult{value: value, err: err}
	}()

	hard := time.NewTimer(def.HardLimit)
	defer hard.Stop()

	select {
	case res := <-done:
		cancelHard(nil)
		elapsed := time.Since(start)
		if res.err != nil {
			log.Error("task execution failed", "error", res.err, "elapsed", elapsed)
			return e.fail(ctx, log, d, res.err)
		}
		return e.succeed(ctx, log, d, res.value, elapsed)

	case <-hard.C:
		reporter.detach()
		cancelHard(ErrHardTimeLimit)
		timeoutErr := &TimeoutError{Task: msg.Task, JobID: msg.ID, Limit: def.HardLimit}
		log.Error("task exceeded hard time limit, abandoning handler", "limit", def.HardLimit)

		jobErr := &JobError{Kind: KindTimeout, Message: timeoutErr.Error()}
		if err := e.finish(ctx, msg.ID, func(j *Job) error { return j.MarkFailure(jobErr, e.now()) }); err != nil {
			log.Error("failed to record job timeout", "error", err)
		}
		if err := e.broker.Reject(ctx, d, timeoutErr); err != nil {
			log.Error("failed to reject timed out job", "error", err)
		}
		return OutcomeAbandoned, timeoutErr
	}
}

// start marks the job as picked up. A missing record (expired or never
// written) is recreated from the message.
func (e *Executor) start(ctx context.Context, msg Message, queue Queue, workerID string) error {
	now := e.now()
	_, err := e.results.Update(ctx, msg.ID, func(j *Job) error {
		if j.State.Terminal() {
			return errAlreadyTerminal
		}
		if j.StartedAt == nil {
			j.StartedAt = &now
		}
		j.WorkerID = workerID
		j.UpdatedAt = now
		return nil
	})
	if !errors.Is(err, ErrJobNotFound) {
		return err
	}

	return e.results.Create(ctx, &Job{
		ID:         msg.ID,
		Task:       msg.Task,
		Queue:      queue,
		Args:       msg.Args,
		State:      StatePending,
		WorkerID:   workerID,
		EnqueuedAt: msg.EnqueuedAt,
		StartedAt:  &now,
		UpdatedAt:  now,
	})
}

// finish applies a terminal transition. A job that is already terminal is
// left untouched.
func (e *Executor) finish(ctx context.Context, id string, mark func(j *Job) error) error {
	_, err := e.results.Update(ctx, id, func(j *Job) error {
		if j.State.Terminal() {
			return errAlreadyTerminal
		}
		return mark(j)
	})
	if errors.Is(err, errAlreadyTerminal) {
		return nil
	}
	return err
}

func (e *Executor) succeed(ctx context.Context, log *slog.Logger, d *Delivery, value any, elapsed time.Duration) (Outcome, error) {
	result, err := json.Marshal(value)
	if err != nil {
		err = fmt.Errorf("failed to encode task result: %w", err)
		log.Error("task result is not serializable", "error", err)
		return e.fail(ctx, log, d, err)
	}

	if err := e.finish(ctx, d.Message.ID, func(j *Job) error { return j.MarkSuccess(result, e.now()) }); err != nil {
		err = fmt.Errorf("failed to record job success: %w", err)
		log.Error("result store rejected terminal state, dead-lettering job", "error", err)
		if rejErr := e.broker.Reject(ctx, d, err); rejErr != nil {
			log.Error("failed to reject job", "error", rejErr)
		}
		return OutcomeFailed, err
	}
	if err := e.broker.Ack(ctx, d); err != nil {
		log.Error("failed to acknowledge job", "error", err)
	}

	log.Info("task completed successfully", "elapsed", elapsed)
	return OutcomeSucceeded, nil
}

func (e *Executor) fail(ctx context.Context, log *slog.Logger, d *Delivery, cause error) (Outcome, error) {
	herr := &HandlerError{Task: d.Message.Task, JobID: d.Message.ID, Err: cause}
	jobErr := &JobError{Kind: KindHandlerError, Message: cause.Error()}

	err := e.finish(ctx, d.Message.ID, func(j *Job) error { return j.MarkFailure(jobErr, e.now()) })
	if err != nil {
		log.Error("failed to record job failure", "error", err)
	}
	if err := e.broker.Reject(ctx, d, herr); err != nil {
		log.Error("failed to reject job", "error", err)
	}
	return OutcomeFailed, herr
}
