package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/palace-api/internal/config"
	"github.com/phrazzld/palace-api/internal/platform/postgres"
	"github.com/phrazzld/palace-api/internal/platform/transport"
	"github.com/phrazzld/palace-api/internal/service"
	"github.com/phrazzld/palace-api/internal/service/auth"
	"github.com/phrazzld/palace-api/internal/store"
	"github.com/phrazzld/palace-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore   store.UserStore
	palaceStore store.PalaceStore
	roomStore   store.RoomStore
	itemStore   store.ItemStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	userService      service.UserService
	palaceService    service.PalaceService

	// Task queue
	transport  *transport.Transport
	taskClient *task.Client

	// inlinePool consumes a memory broker inside the server process.
	inlinePool *task.WorkerPool
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	app.palaceStore = postgres.NewPostgresPalaceStore(db, logger)
	app.roomStore = postgres.NewPostgresRoomStore(db, logger)
	app.itemStore = postgres.NewPostgresItemStore(db, logger)

	if err := app.setupTasks(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	app.userService = service.NewUserService(app.userStore, app.palaceStore, app.taskClient, db, logger)
	app.palaceService = service.NewPalaceService(
		app.palaceStore,
		app.roomStore,
		app.itemStore,
		app.taskClient,
		db,
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// setupTasks connects the task transport and creates the producer client.
// With a memory broker an inline worker pool is started as well, since no
// separate worker process can reach it.
func (app *application) setupTasks(ctx context.Context) error {
	registry, err := transport.NewRegistry(app.config.Task, app.logger)
	if err != nil {
		return err
	}

	app.transport, err = transport.Open(ctx, app.config.Task, app.logger)
	if err != nil {
		return fmt.Errorf("failed to open task transport: %w", err)
	}

	app.taskClient = task.NewClient(registry, app.transport.Broker, app.transport.Results, app.logger)

	if app.transport.InProcess {
		executor := task.NewExecutor(registry, app.transport.Broker, app.transport.Results, app.logger)
		app.inlinePool = task.NewWorkerPool(
			app.transport.Broker,
			executor,
			transport.WorkerPoolConfig(app.config.Task, "inline"),
			app.logger,
		)
		if err := app.inlinePool.Start(); err != nil {
			return fmt.Errorf("failed to start inline worker pool: %w", err)
		}
		app.logger.Warn("memory task broker in use; jobs run inside the API process")
	}

	return nil
}

// Run serves HTTP until ctx is cancelled, then releases all resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.inlinePool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.config.Task.ShutdownTimeout)
		if err := app.inlinePool.Stop(ctx); err != nil {
			app.logger.Error("inline worker pool did not stop cleanly", "error", err)
		}
		cancel()
		app.inlinePool = nil
	}

	if app.transport != nil {
		if err := app.transport.Close(); err != nil {
			app.logger.Error("error closing task transport", "error", err)
		}
		app.transport = nil
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
		app.db = nil
	}
}
