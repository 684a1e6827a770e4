package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

// DashboardStats computes the headline KPIs in a single pass over the table.
// Rates are percentages over all tenders; the pipeline value is the sum of
// estimated amounts.
func (s *SQLiteStorage) DashboardStats(ctx context.Context) (service.DashboardStats, error) {
	var stats service.DashboardStats

	if err := validateContext(ctx); err != nil {
		return stats, err
	}

	var responded int
	var pipeline, avgDays sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN decision = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status != '' THEN 1 END),
			COALESCE(SUM(estimated_amount), 0),
			AVG(processing_days)
		FROM tenders`,
		string(model.DecisionGo), string(model.StatusWon), string(model.StatusPending),
	).Scan(&stats.TotalTenders, &stats.GoCount, &stats.WonCount, &stats.PendingCount,
		&responded, &pipeline, &avgDays)
	if err != nil {
		return stats, fmt.Errorf("failed to query dashboard stats: %w", err)
	}

	stats.PipelineValue = pipeline.Float64
	if avgDays.Valid {
		stats.AvgProcessingDays = avgDays.Float64
	}
	if stats.TotalTenders > 0 {
		total := float64(stats.TotalTenders)
		stats.GoRate = float64(stats.GoCount) / total * 100
		stats.ResponseRate = float64(responded) / total * 100
		stats.SuccessRate = float64(stats.WonCount) / total * 100
	}

	return stats, nil
}

// StatusDistribution counts tenders per status, ignoring unset.
func (s *SQLiteStorage) StatusDistribution(ctx context.Context) (map[string]int, error) {
	return s.countByColumn(ctx, "status")
}

// SectorDistribution counts tenders per sector, ignoring unset.
func (s *SQLiteStorage) SectorDistribution(ctx context.Context) (map[string]int, error) {
	return s.countByColumn(ctx, "sector")
}

// RegionDistribution counts tenders per region, ignoring unset.
func (s *SQLiteStorage) RegionDistribution(ctx context.Context) (map[string]int, error) {
	return s.countByColumn(ctx, "region")
}

// RejectionReasons counts lost tenders per rejection reason.
func (s *SQLiteStorage) RejectionReasons(ctx context.Context) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rejection_reason, COUNT(*)
		FROM tenders
		WHERE status = ? AND rejection_reason != ''
		GROUP BY rejection_reason`,
		string(model.StatusLost))
	if err != nil {
		return nil, fmt.Errorf("failed to query rejection reasons: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanCounts(rows)
}

// MonthlyCounts returns the number of tenders published per calendar month,
// oldest first.
func (s *SQLiteStorage) MonthlyCounts(ctx context.Context) ([]service.MonthlyCount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', publication_date) AS INTEGER),
		       CAST(strftime('%m', publication_date) AS INTEGER),
		       COUNT(*)
		FROM tenders
		WHERE publication_date IS NOT NULL
		GROUP BY 1, 2
		ORDER BY 1, 2`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []service.MonthlyCount
	for rows.Next() {
		var year, month, count int
		if err := rows.Scan(&year, &month, &count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly count: %w", err)
		}
		counts = append(counts, service.MonthlyCount{
			Year:  year,
			Month: time.Month(month),
			Count: count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly counts: %w", err)
	}

	return counts, nil
}

// AmountByOrganization sums estimated amounts per issuing organization,
// largest first, limited to the top N.
func (s *SQLiteStorage) AmountByOrganization(ctx context.Context, limit int) ([]service.OrganizationAmount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT organization, SUM(estimated_amount)
		FROM tenders
		WHERE estimated_amount IS NOT NULL
		GROUP BY organization
		ORDER BY 2 DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query amounts by organization: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var amounts []service.OrganizationAmount
	for rows.Next() {
		var entry service.OrganizationAmount
		if err := rows.Scan(&entry.Organization, &entry.TotalEstimated); err != nil {
			return nil, fmt.Errorf("failed to scan organization amount: %w", err)
		}
		amounts = append(amounts, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organization amounts: %w", err)
	}

	return amounts, nil
}

// OwnerPerformance aggregates per-team-member totals. The win rate counts
// only tenders with a known outcome status, matching how the team reads it.
func (s *SQLiteStorage) OwnerPerformance(ctx context.Context) ([]service.OwnerStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT owner,
		       COUNT(*),
		       COUNT(CASE WHEN status != '' THEN 1 END),
		       COUNT(CASE WHEN status = ? THEN 1 END),
		       AVG(processing_days)
		FROM tenders
		WHERE owner != ''
		GROUP BY owner
		ORDER BY owner`,
		string(model.StatusWon))
	if err != nil {
		return nil, fmt.Errorf("failed to query owner performance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []service.OwnerStats
	for rows.Next() {
		var entry service.OwnerStats
		var responded int
		var avgDays sql.NullFloat64
		if err := rows.Scan(&entry.Owner, &entry.Total, &responded, &entry.Wins, &avgDays); err != nil {
			return nil, fmt.Errorf("failed to scan owner performance: %w", err)
		}
		if responded > 0 {
			entry.WinRate = float64(entry.Wins) / float64(responded) * 100
		}
		if avgDays.Valid {
			entry.AvgProcessingDays = avgDays.Float64
		}
		stats = append(stats, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owner performance: %w", err)
	}

	return stats, nil
}

func (s *SQLiteStorage) countByColumn(ctx context.Context, column string) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	// column is one of a fixed set of identifiers chosen by the callers
	// above, never user input.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM tenders WHERE %s != '' GROUP BY %s`,
		column, column, column))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s distribution: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	return scanCounts(rows)
}

func scanCounts(rows *sql.Rows) (map[string]int, error) {
	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}
