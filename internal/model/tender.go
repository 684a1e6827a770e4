// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"
)

// Decision is the internal go/no-go call on whether to pursue a tender.
type Decision string

// Decision values.
const (
	DecisionUnset Decision = ""
	DecisionGo    Decision = "GO"
	DecisionNoGo  Decision = "NO GO"
)

// Status tracks the outcome of a submitted tender.
type Status string

// Status values. The French labels match what the team actually types and
// what historical rows in the database contain.
const (
	StatusUnset     Status = ""
	StatusPending   Status = "En attente"
	StatusWon       Status = "Gagné"
	StatusLost      Status = "Perdu"
	StatusAbandoned Status = "Abandonné"
	StatusRejected  Status = "Rejeté"
)

// MissionType categorizes the nature of the contracted work.
type MissionType string

// Mission type values.
const (
	MissionService MissionType = "Service"
	MissionSupply  MissionType = "Fourniture"
	MissionWorks   MissionType = "Travaux"
)

// NaturalKey identifies a tender record uniquely: the same reference can be
// reused by different issuing organizations, so both parts are required.
type NaturalKey struct {
	Reference    string
	Organization string
}

func (k NaturalKey) String() string {
	return fmt.Sprintf("%s_%s", k.Reference, k.Organization)
}

// TenderRecord is the canonical tender entity. Optional fields use pointers:
// nil means "absent", which is distinct from a literal zero value entered by
// the user or extracted from a document.
type TenderRecord struct {
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	SubmissionDate  *time.Time `json:"submission_date,omitempty"`
	DecisionDate    *time.Time `json:"decision_date,omitempty"`

	EstimatedAmount *float64 `json:"estimated_amount,omitempty"`
	OfferedAmount   *float64 `json:"offered_amount,omitempty"`
	DepositAmount   *float64 `json:"deposit_amount,omitempty"`

	ContractMonths  *int `json:"contract_months,omitempty"`
	CompetitorCount *int `json:"competitor_count,omitempty"`
	TechnicalScore  *int `json:"technical_score,omitempty"`

	// Derived fields, computed from the above. Never set by hand.
	ProcessingDays    *int     `json:"processing_days,omitempty"`
	AmountVariancePct *float64 `json:"amount_variance_pct,omitempty"`
	StrategicScore    *float64 `json:"strategic_score,omitempty"`

	Reference       string      `json:"reference"`
	Organization    string      `json:"issuing_organization"`
	Object          string      `json:"object_description"`
	Region          string      `json:"region"`
	Sector          string      `json:"sector"`
	Decision        Decision    `json:"decision"`
	Status          Status      `json:"status"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
	MissionType     MissionType `json:"mission_type"`
	Owner           string      `json:"owner"`
	FolderLink      string      `json:"folder_link,omitempty"`
	ClientHistory   string      `json:"client_history,omitempty"`

	Complexity int `json:"complexity"`

	ID        int64     `json:"id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Key returns the natural key for this record.
func (t *TenderRecord) Key() NaturalKey {
	return NaturalKey{Reference: t.Reference, Organization: t.Organization}
}

// IsWon reports whether the tender was won. Used by the strategic score and
// the dashboard success-rate aggregates.
func (t *TenderRecord) IsWon() bool {
	return t.Status == StatusWon
}
