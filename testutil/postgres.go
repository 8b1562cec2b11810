package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/onnwee/slot-tender/db"
)

// SetupTestDB opens the database at TEST_PG_DSN and applies db.Migrate.
// It skips the test if TEST_PG_DSN environment variable is not set.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	if err := db.Migrate(context.Background(), database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}
