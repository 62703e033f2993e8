// Package testdb connects tests to a real PostgreSQL database. Tests that use
// it are skipped unless PALACE_TEST_DB_URL or DATABASE_URL is set.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/palace-api/internal/platform/logger"
	"github.com/phrazzld/palace-api/internal/platform/postgres"
)

// EnvTestDatabaseURL names the preferred test database variable.
const EnvTestDatabaseURL = "PALACE_TEST_DB_URL"

// TestTimeout bounds connection checks and migrations.
const TestTimeout = 30 * time.Second

// DatabaseURL returns PALACE_TEST_DB_URL, falling back to DATABASE_URL.
func DatabaseURL() string {
	if url := os.Getenv(EnvTestDatabaseURL); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// Open connects to the test database and migrates it to the latest version.
// The test is skipped when no database is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skipf("%s not set, skipping database test", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	require.NoError(t, db.PingContext(ctx), "failed to reach test database")

	log, _ := logger.NewTestLogger()
	require.NoError(t, postgres.Migrate(ctx, db, "up", log), "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// leave no rows behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
