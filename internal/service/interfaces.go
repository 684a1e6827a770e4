// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/atlas-conseil/tenderflow/internal/model"
)

// TenderFilter defines filtering options for tender list queries.
type TenderFilter struct {
	Status string
	Owner  string
	Sector string
	Region string
	Limit  int
	Offset int
}

// Storage defines the contract for the persistence layer.
//
// FindByKey distinguishes the three outcomes the callers care about: a
// record, absence (an error wrapping common.ErrNotFound), or a storage
// failure (any other error).
type Storage interface {
	// Natural-key operations used by the upsert coordinator.
	FindByKey(ctx context.Context, reference, organization string) (*model.TenderRecord, error)
	InsertTender(ctx context.Context, rec *model.TenderRecord) error
	UpdateTender(ctx context.Context, key model.NaturalKey, rec *model.TenderRecord) error

	// Queries.
	GetTender(ctx context.Context, id int64) (*model.TenderRecord, error)
	ListTenders(ctx context.Context, filter TenderFilter) ([]model.TenderRecord, error)
	SearchTenders(ctx context.Context, term string) ([]model.TenderRecord, error)
	RecentTenders(ctx context.Context, limit int) ([]model.TenderRecord, error)
	ClientHistory(ctx context.Context, organization string) (ClientHistory, error)
	CountReferencesWithPrefix(ctx context.Context, prefix string) (int, error)

	// Extraction audit trail.
	SaveExtraction(ctx context.Context, run *model.ExtractionRun) error
	RecentExtractions(ctx context.Context, limit int) ([]model.ExtractionRun, error)

	// Dashboard aggregates.
	DashboardStats(ctx context.Context) (DashboardStats, error)
	StatusDistribution(ctx context.Context) (map[string]int, error)
	SectorDistribution(ctx context.Context) (map[string]int, error)
	RegionDistribution(ctx context.Context) (map[string]int, error)
	RejectionReasons(ctx context.Context) (map[string]int, error)
	MonthlyCounts(ctx context.Context) ([]MonthlyCount, error)
	AmountByOrganization(ctx context.Context, limit int) ([]OrganizationAmount, error)
	OwnerPerformance(ctx context.Context) ([]OwnerStats, error)

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}

// ClientHistory summarizes past outcomes with one issuing organization.
type ClientHistory struct {
	Organization string
	Won          int
	Lost         int
	Total        int
}

// Summary renders the history the way the form displays it.
func (h ClientHistory) Summary() string {
	if h.Total == 0 {
		return "Nouveau client"
	}
	return fmt.Sprintf("%d gagné(s) / %d perdu(s)", h.Won, h.Lost)
}

// DashboardStats carries the headline KPIs of the dashboard.
type DashboardStats struct {
	TotalTenders      int
	GoCount           int
	WonCount          int
	PendingCount      int
	PipelineValue     float64
	GoRate            float64
	ResponseRate      float64
	SuccessRate       float64
	AvgProcessingDays float64
}

// MonthlyCount is the number of tenders published in one calendar month.
type MonthlyCount struct {
	Year  int
	Month time.Month
	Count int
}

// OrganizationAmount aggregates estimated amounts per issuing organization.
type OrganizationAmount struct {
	Organization   string
	TotalEstimated float64
}

// OwnerStats aggregates per-team-member performance.
type OwnerStats struct {
	Owner             string
	Total             int
	Wins              int
	WinRate           float64
	AvgProcessingDays float64
}

// RetryOptions configures retry behavior for collaborator calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
