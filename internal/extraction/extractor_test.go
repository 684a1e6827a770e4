package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/engine"
	"github.com/atlas-conseil/tenderflow/internal/normalize"
)

func TestExtractorRun(t *testing.T) {
	t.Parallel()

	client := &MockClient{Answers: map[string]string{
		"Référence":            "AO-2025-042",
		"Objet":                "Acquisition de matériel informatique",
		"Maître d'Ouvrage":     "Ministère de l'Éducation",
		"Estimation des coûts": "Le budget alloué est de 2 500 000 MAD",
		"Date":                 "12/04/2025",
	}}
	storage := engine.NewMockStorage()

	extractor := NewExtractor(client, storage)
	result, err := extractor.Run(context.Background(), "avis.pdf", "AVIS D'APPEL D'OFFRES OUVERT ...")
	require.NoError(t, err)

	assert.Equal(t, "AO-2025-042", result.Fields[normalize.FieldReference])
	assert.Equal(t, "Le budget alloué est de 2 500 000 MAD", result.Fields[normalize.FieldEstimatedAmount])
	// The unfound field carries the sentinel verbatim.
	assert.Equal(t, "Non spécifié", result.Fields[normalize.FieldDepositAmount])

	// Every configured question was asked, in order.
	labels := make([]string, 0, len(FieldPrompts()))
	for _, fp := range FieldPrompts() {
		labels = append(labels, fp.Label)
	}
	assert.Equal(t, labels, client.Calls())

	// The run is persisted to the audit trail.
	require.NotNil(t, result.Run)
	assert.NotZero(t, result.Run.ID)
	assert.NotEmpty(t, result.Run.SessionID)
	assert.Equal(t, "avis.pdf", result.Run.Source)
	assert.Equal(t, "AO-2025-042", result.Run.Fields["Référence"])
}

func TestExtractorFeedsNormalizer(t *testing.T) {
	t.Parallel()

	client := &MockClient{Answers: map[string]string{
		"Référence":            "AO-2025-042",
		"Objet":                "Acquisition de matériel informatique",
		"Maître d'Ouvrage":     "Ministère de l'Éducation",
		"Estimation des coûts": "Le budget alloué est de 2 500 000 MAD",
		"Date":                 "12/04/2025",
	}}
	storage := engine.NewMockStorage()

	extractor := NewExtractor(client, storage)
	result, err := extractor.Run(context.Background(), "avis.pdf", "AVIS ...")
	require.NoError(t, err)

	rec := normalize.Record(result.Fields)
	assert.Equal(t, "AO-2025-042", rec.Reference)
	require.NotNil(t, rec.EstimatedAmount)
	assert.Equal(t, 2500000.0, *rec.EstimatedAmount)
	require.NotNil(t, rec.PublicationDate)
	// The sentinel became absent, not a zero.
	assert.Nil(t, rec.DepositAmount)
}

func TestExtractorRejectsEmptyDocument(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(&MockClient{}, engine.NewMockStorage())

	_, err := extractor.Run(context.Background(), "avis.pdf", "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoDocumentText))
}

func TestExtractorSurfacesClientFailure(t *testing.T) {
	t.Parallel()

	client := &MockClient{Err: &common.RetryableError{
		Err:       errors.New("invalid api key"),
		Retryable: false,
	}}
	extractor := NewExtractor(client, engine.NewMockStorage())

	_, err := extractor.Run(context.Background(), "avis.pdf", "AVIS ...")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExtractionFailed))
	// The non-retryable failure was not retried.
	assert.Len(t, client.Calls(), 1)
}

func TestExtractorReportsProgress(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(&MockClient{}, engine.NewMockStorage())

	var steps []int
	extractor.Progress = func(done, total int) {
		assert.Equal(t, len(FieldPrompts()), total)
		steps = append(steps, done)
	}

	_, err := extractor.Run(context.Background(), "avis.pdf", "AVIS ...")
	require.NoError(t, err)
	assert.Len(t, steps, len(FieldPrompts()))
	assert.Equal(t, 1, steps[0])
	assert.Equal(t, len(FieldPrompts()), steps[len(steps)-1])
}
