package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/normalize"
)

func validRawFields() normalize.RawFields {
	return normalize.RawFields{
		normalize.FieldReference:       "AO-2025-001",
		normalize.FieldObject:          "Refonte du système d'information",
		normalize.FieldOrganization:    "Ministère de la Santé",
		normalize.FieldRegion:          "Casablanca",
		normalize.FieldSector:          "Services IT",
		normalize.FieldEstimatedAmount: "1 000 000",
		normalize.FieldPublicationDate: "01/03/2025",
		normalize.FieldSubmissionDate:  "15/03/2025",
		normalize.FieldDecision:        "GO",
		normalize.FieldStatus:          "Gagné",
		normalize.FieldComplexity:      "3",
		normalize.FieldOwner:           "M. Benali",
	}
}

func validRecord() model.TenderRecord {
	return normalize.Record(validRawFields())
}

func TestSaveInsertsWhenKeyIsAbsent(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	eng := New(storage)

	rec := validRecord()
	result, err := eng.Save(context.Background(), &rec)
	require.NoError(t, err)

	assert.True(t, result.IsNew)
	assert.Equal(t, rec.Key(), result.Key)
	assert.Equal(t, 1, storage.InsertCalls)
	assert.Equal(t, 0, storage.UpdateCalls)
}

func TestSaveUpdatesWhenKeyExists(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	existing := validRecord()
	existing.ID = 42
	existing.CreatedAt = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	storage.Seed(existing)

	eng := New(storage)

	rec := validRecord()
	amount := 1200000.0
	rec.OfferedAmount = &amount

	result, err := eng.Save(context.Background(), &rec)
	require.NoError(t, err)

	assert.False(t, result.IsNew)
	assert.Equal(t, 0, storage.InsertCalls)
	assert.Equal(t, 1, storage.UpdateCalls)

	// Identity of the existing row is preserved across the update.
	assert.Equal(t, int64(42), rec.ID)
	assert.Equal(t, existing.CreatedAt, rec.CreatedAt)
}

func TestSaveSurfacesLookupFailure(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	storage.FindErr = errors.New("disk I/O error")
	eng := New(storage)

	rec := validRecord()
	_, err := eng.Save(context.Background(), &rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")

	// A lookup failure must not be mistaken for absence.
	assert.Equal(t, 0, storage.InsertCalls)
	assert.Equal(t, 0, storage.UpdateCalls)
}

func TestSaveSurfacesInsertFailure(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	storage.InsertErr = common.ErrDuplicateEntry
	eng := New(storage)

	rec := validRecord()
	_, err := eng.Save(context.Background(), &rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDuplicateEntry))
}

func TestSaveAttachesClientHistory(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	won := validRecord()
	won.Reference = "AO-2024-007"
	won.Status = model.StatusWon
	storage.Seed(won)
	lost := validRecord()
	lost.Reference = "AO-2024-012"
	lost.Status = model.StatusLost
	storage.Seed(lost)

	eng := New(storage)

	rec := validRecord()
	_, err := eng.Save(context.Background(), &rec)
	require.NoError(t, err)
	assert.Equal(t, "1 gagné(s) / 1 perdu(s)", rec.ClientHistory)
}

func TestSaveMarksNewClient(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	eng := New(storage)

	rec := validRecord()
	_, err := eng.Save(context.Background(), &rec)
	require.NoError(t, err)
	assert.Equal(t, "Nouveau client", rec.ClientHistory)
}

func TestProcessStopsOnViolations(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	eng := New(storage)

	raw := validRawFields()
	delete(raw, normalize.FieldOwner)
	raw[normalize.FieldComplexity] = "6"

	result, err := eng.Process(context.Background(), raw)
	require.NoError(t, err)

	assert.Nil(t, result.Saved)
	assert.Len(t, result.Violations, 2)
	assert.Equal(t, 0, storage.InsertCalls)
	assert.Equal(t, 0, storage.UpdateCalls)
}

func TestProcessEndToEnd(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	eng := New(storage)

	result, err := eng.Process(context.Background(), validRawFields())
	require.NoError(t, err)
	require.Empty(t, result.Violations)
	require.NotNil(t, result.Saved)
	assert.True(t, result.Saved.IsNew)
	assert.Equal(t, 1, storage.InsertCalls)

	rec := result.Record
	require.NotNil(t, rec.ProcessingDays)
	assert.Equal(t, 14, *rec.ProcessingDays)
	require.NotNil(t, rec.EstimatedAmount)
	assert.Equal(t, 1000000.0, *rec.EstimatedAmount)
	require.NotNil(t, rec.StrategicScore)
	assert.InDelta(t, 333333.33, *rec.StrategicScore, 0.01)
}

func TestPrepareDoesNotPersist(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	eng := New(storage)

	rec, violations := eng.Prepare(validRawFields())
	assert.Empty(t, violations)
	require.NotNil(t, rec.ProcessingDays)
	assert.Equal(t, 0, storage.InsertCalls)
	assert.Equal(t, 0, storage.UpdateCalls)
	assert.Equal(t, 0, storage.FindCalls)
}

func TestNewReferenceSequences(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	eng := New(storage)

	ref, err := eng.NewReference(context.Background(), "Ministère de la Santé", 2025)
	require.NoError(t, err)
	assert.Equal(t, "AO-MDL-2025-001", ref)

	seeded := validRecord()
	seeded.Reference = ref
	storage.Seed(seeded)

	next, err := eng.NewReference(context.Background(), "Ministère de la Santé", 2025)
	require.NoError(t, err)
	assert.Equal(t, "AO-MDL-2025-002", next)
}

func TestNewReferenceRequiresOrganization(t *testing.T) {
	t.Parallel()

	eng := New(NewMockStorage())
	_, err := eng.NewReference(context.Background(), "   ", 2025)
	assert.Error(t, err)
}

func TestDuplicateClearsOutcome(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	source := validRecord()
	source.ID = 7
	score := 85
	source.TechnicalScore = &score
	source.RejectionReason = "Prix trop élevé"
	storage.Seed(source)

	eng := New(storage)

	clone, err := eng.Duplicate(context.Background(), source.Key(), "AO-2026-001")
	require.NoError(t, err)

	assert.Equal(t, "AO-2026-001", clone.Reference)
	assert.Equal(t, source.Organization, clone.Organization)
	assert.Equal(t, model.StatusUnset, clone.Status)
	assert.Nil(t, clone.SubmissionDate)
	assert.Nil(t, clone.DecisionDate)
	assert.Nil(t, clone.TechnicalScore)
	assert.Empty(t, clone.RejectionReason)
	assert.NotEqual(t, source.ID, clone.ID)

	// Derived fields are recomputed for the cleared copy: no submission
	// date means no processing days, no status means no strategic score.
	assert.Nil(t, clone.ProcessingDays)
	assert.Nil(t, clone.StrategicScore)
}

func TestDuplicateCollisionSurfacesAsDuplicate(t *testing.T) {
	t.Parallel()

	storage := NewMockStorage()
	source := validRecord()
	storage.Seed(source)
	other := validRecord()
	other.Reference = "AO-2026-001"
	storage.Seed(other)

	eng := New(storage)

	_, err := eng.Duplicate(context.Background(), source.Key(), "AO-2026-001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDuplicateEntry))
}

func TestDuplicateMissingSource(t *testing.T) {
	t.Parallel()

	eng := New(NewMockStorage())
	key := model.NaturalKey{Reference: "AO-0000", Organization: "Inconnu"}
	_, err := eng.Duplicate(context.Background(), key, "AO-2026-001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestOrganizationInitials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		organization string
		want         string
	}{
		{"Ministère de la Santé", "MDL"},
		{"ONEE", "O"},
		{"Office National des Chemins de Fer", "OND"},
		{"agence urbaine", "AU"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, organizationInitials(tt.organization), "organization %q", tt.organization)
	}
}
