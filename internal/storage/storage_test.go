package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlas-conseil/tenderflow/internal/model"
)

// newTestStorage creates a migrated storage backed by a temp-dir database.
func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tenderflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	require.NoError(t, storage.Migrate(context.Background()))
	return storage
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func testFloatPtr(v float64) *float64 { return &v }

func testIntPtr(v int) *int { return &v }

// testTender builds a complete record with a unique reference.
func testTender(reference string) *model.TenderRecord {
	return &model.TenderRecord{
		Reference:       reference,
		Organization:    "Ministère de la Santé",
		Object:          "Assistance à maîtrise d'ouvrage",
		Region:          "Rabat",
		Sector:          "Services IT",
		Decision:        model.DecisionGo,
		Status:          model.StatusPending,
		MissionType:     model.MissionService,
		Owner:           "M. Benali",
		Complexity:      3,
		EstimatedAmount: testFloatPtr(1500000),
		PublicationDate: datePtr(2025, 3, 1),
		SubmissionDate:  datePtr(2025, 3, 15),
		ProcessingDays:  testIntPtr(14),
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)
	ctx := context.Background()

	// A second run must be a no-op, not a failure.
	require.NoError(t, storage.Migrate(ctx))

	version, err := storage.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, ExpectedSchemaVersion, version)
}

func TestMigrateFreshDatabaseReachesLatestVersion(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)

	version, err := storage.SchemaVersion(context.Background())
	require.NoError(t, err)
	require.Equal(t, ExpectedSchemaVersion, version)
}

func TestNewSQLiteStorageCreatesParentDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "tenderflow.db")
	storage, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, storage.Close())
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewSQLiteStorage("")
	require.Error(t, err)
}
