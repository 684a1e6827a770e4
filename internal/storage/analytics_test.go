package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-conseil/tenderflow/internal/model"
)

func seedAnalyticsFixture(t *testing.T, storage *SQLiteStorage) {
	t.Helper()
	ctx := context.Background()

	won := testTender("AO-2025-001")
	won.Status = model.StatusWon
	won.EstimatedAmount = testFloatPtr(2000000)
	require.NoError(t, storage.InsertTender(ctx, won))

	lost := testTender("AO-2025-002")
	lost.Status = model.StatusLost
	lost.RejectionReason = "Prix trop élevé"
	lost.Owner = "S. Alaoui"
	lost.EstimatedAmount = testFloatPtr(1000000)
	require.NoError(t, storage.InsertTender(ctx, lost))

	open := testTender("AO-2025-003")
	open.Status = model.StatusUnset
	open.Decision = model.DecisionUnset
	open.Organization = "Office National de l'Eau"
	open.Region = "Casablanca"
	open.Sector = "BTP"
	open.EstimatedAmount = testFloatPtr(500000)
	open.PublicationDate = datePtr(2025, 4, 10)
	require.NoError(t, storage.InsertTender(ctx, open))
}

func TestDashboardStats(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)
	seedAnalyticsFixture(t, storage)

	stats, err := storage.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalTenders)
	assert.Equal(t, 2, stats.GoCount)
	assert.Equal(t, 1, stats.WonCount)
	assert.Equal(t, 0, stats.PendingCount)
	assert.InDelta(t, 3500000.0, stats.PipelineValue, 1e-9)

	// Rates are percentages over all tenders.
	assert.InDelta(t, 66.67, stats.GoRate, 0.01)
	assert.InDelta(t, 66.67, stats.ResponseRate, 0.01)
	assert.InDelta(t, 33.33, stats.SuccessRate, 0.01)
	assert.InDelta(t, 14.0, stats.AvgProcessingDays, 1e-9)
}

func TestDashboardStatsEmptyDatabase(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)

	stats, err := storage.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalTenders)
	assert.Zero(t, stats.GoRate)
	assert.Zero(t, stats.PipelineValue)
}

func TestStatusDistribution(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)
	seedAnalyticsFixture(t, storage)

	counts, err := storage.StatusDistribution(context.Background())
	require.NoError(t, err)

	// Unset status rows are excluded.
	assert.Equal(t, map[string]int{
		string(model.StatusWon):  1,
		string(model.StatusLost): 1,
	}, counts)
}

func TestRegionAndSectorDistribution(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)
	seedAnalyticsFixture(t, storage)
	ctx := context.Background()

	regions, err := storage.RegionDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Rabat": 2, "Casablanca": 1}, regions)

	sectors, err := storage.SectorDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Services IT": 2, "BTP": 1}, sectors)
}

func TestRejectionReasons(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)
	seedAnalyticsFixture(t, storage)

	reasons, err := storage.RejectionReasons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Prix trop élevé": 1}, reasons)
}

func TestMonthlyCounts(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)
	seedAnalyticsFixture(t, storage)

	counts, err := storage.MonthlyCounts(context.Background())
	require.NoError(t, err)

	require.Len(t, counts, 2)
	assert.Equal(t, 2025, counts[0].Year)
	assert.Equal(t, time.March, counts[0].Month)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, time.April, counts[1].Month)
	assert.Equal(t, 1, counts[1].Count)
}

func TestAmountByOrganization(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)
	seedAnalyticsFixture(t, storage)

	amounts, err := storage.AmountByOrganization(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, amounts, 2)
	assert.Equal(t, "Ministère de la Santé", amounts[0].Organization)
	assert.InDelta(t, 3000000.0, amounts[0].TotalEstimated, 1e-9)
	assert.Equal(t, "Office National de l'Eau", amounts[1].Organization)
	assert.InDelta(t, 500000.0, amounts[1].TotalEstimated, 1e-9)
}

func TestOwnerPerformance(t *testing.T) {
	t.Parallel()

	storage := newTestStorage(t)
	seedAnalyticsFixture(t, storage)

	stats, err := storage.OwnerPerformance(context.Background())
	require.NoError(t, err)

	require.Len(t, stats, 2)

	// Ordered by owner name.
	benali := stats[0]
	assert.Equal(t, "M. Benali", benali.Owner)
	assert.Equal(t, 2, benali.Total)
	assert.Equal(t, 1, benali.Wins)
	// One of M. Benali's two tenders has no outcome yet; the win rate only
	// counts the one with a known status.
	assert.InDelta(t, 100.0, benali.WinRate, 1e-9)

	alaoui := stats[1]
	assert.Equal(t, "S. Alaoui", alaoui.Owner)
	assert.Equal(t, 1, alaoui.Total)
	assert.Equal(t, 0, alaoui.Wins)
	assert.Zero(t, alaoui.WinRate)
}
