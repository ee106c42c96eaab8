// Package testutil provides shared fixtures for tests that need a report
// history database or realistic snapshots.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/storage"
)

// TestDB is a migrated in-memory report history.
type TestDB struct {
	Storage *storage.SQLiteStorage
	// IDs holds the IDs of the seeded reports in seeding order.
	IDs []string
}

// TestDBOptions configures SetupTestDBWithOptions.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	Reports        []model.StoredReport
	SkipMigrations bool
}

// SetupTestDB creates a new in-memory history database. It automatically
// handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a history database seeded with opts.Reports.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	db := &TestDB{Storage: store}
	for i := range opts.Reports {
		report := opts.Reports[i]
		if err := store.SaveReport(ctx, &report); err != nil {
			t.Fatalf("failed to seed report %d: %v", i, err)
		}
		db.IDs = append(db.IDs, report.ID)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}
