package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

// MigrationTableName is the goose version table.
const MigrationTableName = "schema_migrations"

// Migrations holds the goose SQL migrations under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of the migrations inside Migrations.
const MigrationsDir = "migrations"

// ErrUnknownMigrationCommand is returned for a command Migrate does not support.
var ErrUnknownMigrationCommand = errors.New("unknown migration command")

// slogGooseLogger adapts slog to goose.Logger.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.Info
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. It does not exit; failures are returned to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate executes a goose command (up, down, reset, status or version)
// against the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	migrationLogger := logger.With("component", "migrations", "command", command)

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(Migrations)
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, MigrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, db, MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, MigrationsDir)
	case "version":
		err = goose.VersionContext(ctx, db, MigrationsDir)
	default:
		return fmt.Errorf("%w: %q (expected up, down, reset, status or version)", ErrUnknownMigrationCommand, command)
	}

	if err != nil {
		migrationLogger.Error("migration command failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	migrationLogger.Info("migration command executed successfully",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}
