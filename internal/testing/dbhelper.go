package testing

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/sparkify/internal/shared"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// EnvTestPostgresDSN points integration tests at an existing Postgres instead of a container.
const EnvTestPostgresDSN = "SPARKIFY_TEST_POSTGRES_DSN"

var (
	postgresOnce sync.Once
	postgresDSN  string
	postgresErr  error
)

// NewSQLiteDB creates a migrated sqlite database in a temp dir, closed at test cleanup.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.SQLite, filepath.Join(t.TempDir(), "sparkify.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db, shared.SQLite); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

func startPostgres() (string, error) {
	postgresOnce.Do(func() {
		ctx := context.Background()
		ctr, err := postgres.Run(ctx,
			"postgres:17-alpine",
			postgres.WithUsername("student"),
			postgres.WithPassword("student"),
			postgres.WithDatabase("sparkifydb"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			postgresErr = err
			return
		}
		postgresDSN, postgresErr = ctr.ConnectionString(ctx, "sslmode=disable")
	})
	return postgresDSN, postgresErr
}

// RequirePostgres returns a Postgres DSN for integration tests.
// Priority: SPARKIFY_TEST_POSTGRES_DSN > auto-started testcontainer > skip test.
func RequirePostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	if dsn := os.Getenv(EnvTestPostgresDSN); dsn != "" {
		return dsn
	}

	dsn, err := startPostgres()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", EnvTestPostgresDSN, err)
	}
	return dsn
}
