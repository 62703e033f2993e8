package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/palace-api/internal/config"
	"github.com/phrazzld/palace-api/internal/platform/transport"
	"github.com/phrazzld/palace-api/internal/task"
)

// options are the command line switches of the worker.
type options struct {
	beat    bool
	requeue bool
	name    string
}

// worker owns the transport, pool and optional scheduler of one process.
type worker struct {
	cfg       *config.Config
	opts      options
	logger    *slog.Logger
	registry  *task.Registry
	transport *transport.Transport
	client    *task.Client
	pool      *task.WorkerPool
	scheduler *task.Scheduler
}

func newWorker(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) (*worker, error) {
	if opts.name == "" {
		opts.name = defaultName()
	}
	logger = logger.With("worker", opts.name)

	registry, err := transport.NewRegistry(cfg.Task, logger)
	if err != nil {
		return nil, err
	}

	tr, err := transport.Open(ctx, cfg.Task, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open task transport: %w", err)
	}
	if tr.InProcess {
		logger.Warn("memory task broker in use; only jobs enqueued by this process will be consumed")
	}

	w := &worker{
		cfg:       cfg,
		opts:      opts,
		logger:    logger,
		registry:  registry,
		transport: tr,
		client:    task.NewClient(registry, tr.Broker, tr.Results, logger),
	}

	executor := task.NewExecutor(registry, tr.Broker, tr.Results, logger)
	w.pool = task.NewWorkerPool(tr.Broker, executor, transport.WorkerPoolConfig(cfg.Task, opts.name), logger)

	if opts.beat {
		w.scheduler = task.NewScheduler(w.client, logger)
		if err := w.scheduler.Add(cfg.Task.CleanupSchedule, task.CleanupOldSessions); err != nil {
			_ = tr.Close()
			return nil, err
		}
	}

	return w, nil
}

// start recovers orphaned messages when asked to, then launches the pool and
// the scheduler.
func (w *worker) start(ctx context.Context) error {
	if w.opts.requeue {
		n, err := w.transport.RequeueOrphans(ctx, w.registry.Queues())
		if err != nil {
			return err
		}
		w.logger.Info("orphan recovery finished", "requeued", n)
	}

	if err := w.pool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	if w.scheduler != nil {
		w.scheduler.Start()
	}

	w.logger.Info("worker started",
		"ai_queue_workers", w.cfg.Task.AIQueueWorkers,
		"notification_queue_workers", w.cfg.Task.NotificationQueueWorkers,
		"beat", w.scheduler != nil)
	return nil
}

// shutdown stops the scheduler and the pool within the configured shutdown
// timeout and closes the transport.
func (w *worker) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Task.ShutdownTimeout)
	defer cancel()

	var g errgroup.Group
	if w.scheduler != nil {
		g.Go(func() error { return w.scheduler.Stop(ctx) })
	}
	g.Go(func() error { return w.pool.Stop(ctx) })
	stopErr := g.Wait()
	if stopErr != nil {
		w.logger.Error("worker did not stop cleanly", "error", stopErr)
	}

	closeErr := w.transport.Close()
	w.logger.Info("worker stopped")
	return errors.Join(stopErr, closeErr)
}

func defaultName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%s", host, ksuid.New().String())
}
