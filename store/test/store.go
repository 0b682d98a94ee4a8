// Package test provides a database-backed testing store.
//
// Tests run against sqlite on a temporary file by default. Set
// MELODIC_TEST_DRIVER=postgres and MELODIC_TEST_DSN to run the same suite
// against a real PostgreSQL instance.
package test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/melodic-ai/melodic/internal/profile"
	"github.com/melodic-ai/melodic/store"
	"github.com/melodic-ai/melodic/store/db"
)

func getDriverFromEnv() string {
	driver := os.Getenv("MELODIC_TEST_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	return driver
}

func getTestingProfile(t *testing.T) *profile.Profile {
	driver := getDriverFromEnv()
	dsn := os.Getenv("MELODIC_TEST_DSN")
	dataDir := t.TempDir()
	if driver == "sqlite" {
		dsn = filepath.Join(dataDir, fmt.Sprintf("melodic_%s.db", t.Name()))
	} else if dsn == "" {
		t.Skipf("MELODIC_TEST_DSN is required for driver %q", driver)
	}

	return &profile.Profile{
		Mode:   "prod",
		Data:   dataDir,
		Driver: driver,
		DSN:    dsn,
	}
}

// NewTestingStore creates a migrated store backed by a fresh database.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	testProfile := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(testProfile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	t.Cleanup(func() {
		dbDriver.Close()
	})

	testStore := store.New(dbDriver, testProfile)
	if err := testStore.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return testStore
}
