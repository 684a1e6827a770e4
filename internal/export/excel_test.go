package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/atlas-conseil/tenderflow/internal/engine"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

func TestExcelWrite(t *testing.T) {
	t.Parallel()

	storage := engine.NewMockStorage()
	amount := 1500000.0
	pub := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	storage.Seed(model.TenderRecord{
		Reference:       "AO-2025-001",
		Organization:    "Ministère de la Santé",
		Object:          "Assistance à maîtrise d'ouvrage",
		Region:          "Rabat",
		Decision:        model.DecisionGo,
		Status:          model.StatusWon,
		Owner:           "M. Benali",
		Complexity:      3,
		EstimatedAmount: &amount,
		PublicationDate: &pub,
	})

	var buf bytes.Buffer
	exporter := NewExcel(storage)
	require.NoError(t, exporter.Write(context.Background(), &buf, service.TenderFilter{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{tendersSheet, statsSheet}, f.GetSheetList())

	rows, err := f.GetRows(tendersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Référence AO", rows[0][0])
	assert.Equal(t, "AO-2025-001", rows[1][0])
	assert.Equal(t, "Ministère de la Santé", rows[1][1])
	assert.Equal(t, "01/03/2025", rows[1][8])

	stats, err := f.GetRows(statsSheet)
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	assert.Equal(t, "Total appels d'offres", stats[0][0])
	assert.Equal(t, "1", stats[0][1])
}

func TestExcelWriteEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	exporter := NewExcel(engine.NewMockStorage())
	require.NoError(t, exporter.Write(context.Background(), &buf, service.TenderFilter{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(tendersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
