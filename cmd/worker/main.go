// Package main implements the Memory Palace task worker. It consumes the
// AI and notification queues and, with -beat, runs the periodic trigger.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/phrazzld/palace-api/internal/config"
	"github.com/phrazzld/palace-api/internal/platform/logger"
)

func main() {
	var opts options
	flag.BoolVar(&opts.beat, "beat", false, "also run the periodic trigger that enqueues cleanup jobs")
	flag.BoolVar(&opts.requeue, "requeue", false, "move messages left in processing lists back onto their queues before starting")
	flag.StringVar(&opts.name, "name", "", "worker name used as prefix of worker ids (default: hostname plus a ksuid)")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := newWorker(ctx, cfg, opts, log)
	if err != nil {
		return err
	}
	if err := w.start(ctx); err != nil {
		_ = w.shutdown()
		return err
	}

	<-ctx.Done()
	log.Info("shutdown signal received")
	return w.shutdown()
}
