// Package main implements the Memory Palace API server: the HTTP API for
// users, palaces, rooms and items, and the producer side of the background
// task queue.
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
	"github.com/phrazzld/palace-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a database migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either executes a
// migration command or serves the API until SIGINT or SIGTERM.
func run(migrateCmd string) error {
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
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrateCmd, log)
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
