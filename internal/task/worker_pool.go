package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultMaxJobsPerWorker is the number of jobs a worker slot processes
// before it is retired and replaced.
const DefaultMaxJobsPerWorker = 1000

// claimRetryDelay is the pause after a transport error before claiming again.
const claimRetryDelay = time.Second

// WorkerPool runs worker slots that claim jobs from a Broker, one in-flight
// job per slot, and execute them through an Executor. Each slot is supervised:
// when it retires a fresh slot takes its place until the pool stops.
type WorkerPool struct {
	// broker provides the jobs to be processed
	broker Broker

	// executor runs each claimed job
	executor *Executor

	// config holds the per-queue slot counts and lifecycle limits
	config WorkerPoolConfig

	// limiters throttle claims on rate-limited queues
	limiters map[Queue]*rate.Limiter

	// ctx is cancelled when the pool stops claiming new jobs
	ctx    context.Context
	cancel context.CancelFunc

	// group tracks slot supervisors for clean shutdown
	group *errgroup.Group

	mu      sync.Mutex
	started bool

	logger *slog.Logger

	// errorHandler is called when a job fails or times out.
	// If nil, errors are only logged
	errorHandler func(d *Delivery, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// Name prefixes worker ids. Defaults to the hostname.
	Name string

	// WorkerCounts is the number of concurrent slots per queue.
	// Queues with zero slots are not served by this pool.
	WorkerCounts map[Queue]int

	// MaxJobsPerWorker retires a slot after that many jobs.
	// If zero or negative, defaults to DefaultMaxJobsPerWorker
	MaxJobsPerWorker int

	// RateLimits caps the jobs per second claimed from a queue across all of
	// its slots. Zero or missing means unlimited.
	RateLimits map[Queue]float64
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCounts: map[Queue]int{
			QueueAI:           2,
			QueueNotification: 2,
		},
		MaxJobsPerWorker: DefaultMaxJobsPerWorker,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(broker Broker, executor *Executor, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_pool")

	if config.MaxJobsPerWorker <= 0 {
		logger.Warn("invalid max jobs per worker specified, using default",
			"specified", config.MaxJobsPerWorker,
			"default", DefaultMaxJobsPerWorker)
		config.MaxJobsPerWorker = DefaultMaxJobsPerWorker
	}
	if config.Name == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "worker"
		}
		config.Name = fmt.Sprintf("%s-%d", host, os.Getpid())
	}

	limiters := make(map[Queue]*rate.Limiter)
	for queue, limit := range config.RateLimits {
		if limit > 0 {
			limiters[queue] = rate.NewLimiter(rate.Limit(limit), 1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		broker:   broker,
		executor: executor,
		config:   config,
		limiters: limiters,
		ctx:      ctx,
		cancel:   cancel,
		group:    new(errgroup.Group),
		logger:   logger,
	}
}

// SetErrorHandler allows setting a custom error handler for job failures
func (p *WorkerPool) SetErrorHandler(handler func(d *Delivery, err error)) {
	p.errorHandler = handler
}

// Start launches the worker slots. It returns an error when called twice or
// when no queue has a positive slot count.
func (p *WorkerPool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return errors.New("worker pool already started")
	}

	total := 0
	for _, queue := range AllQueues {
		count := p.config.WorkerCounts[queue]
		for slot := 0; slot < count; slot++ {
			p.group.Go(func() error {
				p.supervise(queue, slot)
				return nil
			})
			total++
		}
	}
	if total == 0 {
		return errors.New("worker pool has no slots configured")
	}

	p.started = true
	p.logger.Info("worker pool started",
		"slots", total,
		"max_jobs_per_worker", p.config.MaxJobsPerWorker)
	return nil
}

// Stop stops claiming new jobs and waits for in-flight jobs to finish. If ctx
// expires first, Stop returns ctx.Err() and the remaining jobs keep running.
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.cancel()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool stop deadline exceeded with jobs in flight")
		return ctx.Err()
	}
}

// supervise keeps one slot of queue occupied until the pool stops.
func (p *WorkerPool) supervise(queue Queue, slot int) {
	for generation := 1; ; generation++ {
		workerID := fmt.Sprintf("%s/%s/%d.%d", p.config.Name, queue, slot, generation)
		if !p.runWorker(queue, workerID) {
			return
		}
		p.logger.Info("worker retired, starting replacement",
			"queue", queue,
			"worker_id", workerID)
	}
}

// runWorker claims and executes jobs until the worker must retire. It reports
// whether a replacement should be started.
func (p *WorkerPool) runWorker(queue Queue, workerID string) bool {
	log := p.logger.With("queue", queue, "worker_id", workerID)
	log.Debug("starting worker")

	limiter := p.limiters[queue]
	for processed := 0; processed < p.config.MaxJobsPerWorker; {
		if limiter != nil {
			if err := limiter.Wait(p.ctx); err != nil {
				log.Debug("stopping worker")
				return false
			}
		}

		d, err := p.broker.Claim(p.ctx, queue)
		if err != nil {
			if p.ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				log.Debug("stopping worker")
				return false
			}
			log.Error("failed to claim job", "error", err)
			select {
			case <-p.ctx.Done():
				return false
			case <-time.After(claimRetryDelay):
			}
			continue
		}

		processed++
		outcome, err := p.executor.Execute(p.ctx, d, workerID)
		if err != nil && p.errorHandler != nil {
			p.errorHandler(d, err)
		}
		if outcome == OutcomeAbandoned {
			log.Warn("worker abandoned a job past its hard time limit", "job_id", d.Message.ID)
			return p.ctx.Err() == nil
		}
	}

	log.Info("worker reached max jobs", "max_jobs", p.config.MaxJobsPerWorker)
	return p.ctx.Err() == nil
}
