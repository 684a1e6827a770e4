package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

// MockStorage is an in-memory Storage implementation for tests. Call counts
// let tests assert that the coordinator issues exactly one write per save.
type MockStorage struct {
	tenders     map[string]*model.TenderRecord
	extractions []model.ExtractionRun

	// Error injection.
	FindErr   error
	InsertErr error
	UpdateErr error

	// Call counters.
	FindCalls   int
	InsertCalls int
	UpdateCalls int

	mu sync.Mutex
}

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{tenders: make(map[string]*model.TenderRecord)}
}

// Seed stores a record directly, bypassing counters.
func (m *MockStorage) Seed(rec model.TenderRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := rec
	m.tenders[rec.Key().String()] = &stored
}

// FindByKey implements service.Storage.
func (m *MockStorage) FindByKey(_ context.Context, reference, organization string) (*model.TenderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls++

	if m.FindErr != nil {
		return nil, m.FindErr
	}

	key := model.NaturalKey{Reference: reference, Organization: organization}
	if rec, ok := m.tenders[key.String()]; ok {
		found := *rec
		return &found, nil
	}
	return nil, fmt.Errorf("%w: tender %s", common.ErrNotFound, key)
}

// InsertTender implements service.Storage.
func (m *MockStorage) InsertTender(_ context.Context, rec *model.TenderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++

	if m.InsertErr != nil {
		return m.InsertErr
	}

	key := rec.Key().String()
	if _, exists := m.tenders[key]; exists {
		return fmt.Errorf("%w: tender %s", common.ErrDuplicateEntry, rec.Key())
	}

	rec.ID = int64(len(m.tenders) + 1)
	stored := *rec
	m.tenders[key] = &stored
	return nil
}

// UpdateTender implements service.Storage.
func (m *MockStorage) UpdateTender(_ context.Context, key model.NaturalKey, rec *model.TenderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++

	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	if _, exists := m.tenders[key.String()]; !exists {
		return fmt.Errorf("%w: tender %s", common.ErrNotFound, key)
	}

	stored := *rec
	m.tenders[key.String()] = &stored
	return nil
}

// GetTender implements service.Storage.
func (m *MockStorage) GetTender(_ context.Context, id int64) (*model.TenderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.tenders {
		if rec.ID == id {
			found := *rec
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: tender id %d", common.ErrNotFound, id)
}

// ListTenders implements service.Storage.
func (m *MockStorage) ListTenders(_ context.Context, filter service.TenderFilter) ([]model.TenderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []model.TenderRecord
	for _, rec := range m.tenders {
		if filter.Status != "" && string(rec.Status) != filter.Status {
			continue
		}
		if filter.Owner != "" && rec.Owner != filter.Owner {
			continue
		}
		if filter.Sector != "" && rec.Sector != filter.Sector {
			continue
		}
		if filter.Region != "" && rec.Region != filter.Region {
			continue
		}
		records = append(records, *rec)
	}
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

// SearchTenders implements service.Storage.
func (m *MockStorage) SearchTenders(_ context.Context, term string) ([]model.TenderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []model.TenderRecord
	for _, rec := range m.tenders {
		if containsFold(rec.Reference, term) ||
			containsFold(rec.Organization, term) ||
			containsFold(rec.Object, term) {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// RecentTenders implements service.Storage.
func (m *MockStorage) RecentTenders(ctx context.Context, limit int) ([]model.TenderRecord, error) {
	return m.ListTenders(ctx, service.TenderFilter{Limit: limit})
}

// ClientHistory implements service.Storage.
func (m *MockStorage) ClientHistory(_ context.Context, organization string) (service.ClientHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := service.ClientHistory{Organization: organization}
	for _, rec := range m.tenders {
		if rec.Organization != organization || rec.Status == model.StatusUnset {
			continue
		}
		history.Total++
		switch rec.Status {
		case model.StatusWon:
			history.Won++
		case model.StatusLost:
			history.Lost++
		}
	}
	return history, nil
}

// CountReferencesWithPrefix implements service.Storage.
func (m *MockStorage) CountReferencesWithPrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, rec := range m.tenders {
		if len(rec.Reference) >= len(prefix) && rec.Reference[:len(prefix)] == prefix {
			count++
		}
	}
	return count, nil
}

// SaveExtraction implements service.Storage.
func (m *MockStorage) SaveExtraction(_ context.Context, run *model.ExtractionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.ID = int64(len(m.extractions) + 1)
	m.extractions = append(m.extractions, *run)
	return nil
}

// RecentExtractions implements service.Storage.
func (m *MockStorage) RecentExtractions(_ context.Context, limit int) ([]model.ExtractionRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs := make([]model.ExtractionRun, 0, limit)
	for i := len(m.extractions) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, m.extractions[i])
	}
	return runs, nil
}

// DashboardStats implements service.Storage.
func (m *MockStorage) DashboardStats(_ context.Context) (service.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stats service.DashboardStats
	responded := 0
	for _, rec := range m.tenders {
		stats.TotalTenders++
		if rec.Decision == model.DecisionGo {
			stats.GoCount++
		}
		switch rec.Status {
		case model.StatusWon:
			stats.WonCount++
		case model.StatusPending:
			stats.PendingCount++
		}
		if rec.Status != model.StatusUnset {
			responded++
		}
		if rec.EstimatedAmount != nil {
			stats.PipelineValue += *rec.EstimatedAmount
		}
	}
	if stats.TotalTenders > 0 {
		total := float64(stats.TotalTenders)
		stats.GoRate = float64(stats.GoCount) / total * 100
		stats.ResponseRate = float64(responded) / total * 100
		stats.SuccessRate = float64(stats.WonCount) / total * 100
	}
	return stats, nil
}

// StatusDistribution implements service.Storage.
func (m *MockStorage) StatusDistribution(_ context.Context) (map[string]int, error) {
	return m.distribution(func(rec *model.TenderRecord) string { return string(rec.Status) }), nil
}

// SectorDistribution implements service.Storage.
func (m *MockStorage) SectorDistribution(_ context.Context) (map[string]int, error) {
	return m.distribution(func(rec *model.TenderRecord) string { return rec.Sector }), nil
}

// RegionDistribution implements service.Storage.
func (m *MockStorage) RegionDistribution(_ context.Context) (map[string]int, error) {
	return m.distribution(func(rec *model.TenderRecord) string { return rec.Region }), nil
}

// RejectionReasons implements service.Storage.
func (m *MockStorage) RejectionReasons(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	for _, rec := range m.tenders {
		if rec.Status == model.StatusLost && rec.RejectionReason != "" {
			counts[rec.RejectionReason]++
		}
	}
	return counts, nil
}

// MonthlyCounts implements service.Storage.
func (m *MockStorage) MonthlyCounts(_ context.Context) ([]service.MonthlyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byMonth := make(map[[2]int]int)
	for _, rec := range m.tenders {
		if rec.PublicationDate == nil {
			continue
		}
		byMonth[[2]int{rec.PublicationDate.Year(), int(rec.PublicationDate.Month())}]++
	}

	var counts []service.MonthlyCount
	for key, count := range byMonth {
		counts = append(counts, service.MonthlyCount{
			Year:  key[0],
			Month: time.Month(key[1]),
			Count: count,
		})
	}
	return counts, nil
}

// AmountByOrganization implements service.Storage.
func (m *MockStorage) AmountByOrganization(_ context.Context, limit int) ([]service.OrganizationAmount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byOrg := make(map[string]float64)
	for _, rec := range m.tenders {
		if rec.EstimatedAmount != nil {
			byOrg[rec.Organization] += *rec.EstimatedAmount
		}
	}

	amounts := make([]service.OrganizationAmount, 0, len(byOrg))
	for org, total := range byOrg {
		amounts = append(amounts, service.OrganizationAmount{Organization: org, TotalEstimated: total})
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].TotalEstimated > amounts[j].TotalEstimated })
	if limit > 0 && len(amounts) > limit {
		amounts = amounts[:limit]
	}
	return amounts, nil
}

// OwnerPerformance implements service.Storage.
func (m *MockStorage) OwnerPerformance(_ context.Context) ([]service.OwnerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byOwner := make(map[string]*service.OwnerStats)
	responded := make(map[string]int)
	for _, rec := range m.tenders {
		if rec.Owner == "" {
			continue
		}
		entry, ok := byOwner[rec.Owner]
		if !ok {
			entry = &service.OwnerStats{Owner: rec.Owner}
			byOwner[rec.Owner] = entry
		}
		entry.Total++
		if rec.Status != model.StatusUnset {
			responded[rec.Owner]++
		}
		if rec.IsWon() {
			entry.Wins++
		}
	}

	stats := make([]service.OwnerStats, 0, len(byOwner))
	for owner, entry := range byOwner {
		if responded[owner] > 0 {
			entry.WinRate = float64(entry.Wins) / float64(responded[owner]) * 100
		}
		stats = append(stats, *entry)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Owner < stats[j].Owner })
	return stats, nil
}

// Migrate implements service.Storage.
func (m *MockStorage) Migrate(_ context.Context) error { return nil }

// Close implements service.Storage.
func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) distribution(key func(*model.TenderRecord) string) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int)
	for _, rec := range m.tenders {
		if k := key(rec); k != "" {
			counts[k]++
		}
	}
	return counts
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
