// Package normalize coerces loosely typed input into canonical tender records.
//
// Input arrives from two places: form submissions and the extraction
// collaborator, which answers in free text and frequently embeds currency
// symbols, thousands separators or explanatory prose around the value it
// found. Every parser here is total: unusable input becomes "absent" (nil),
// never an error and never a placeholder zero.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/atlas-conseil/tenderflow/internal/model"
)

// NotSpecified is the sentinel the extraction collaborator returns when a
// field is not found in the document. It is treated as absent everywhere.
const NotSpecified = "Non spécifié"

// Field names for raw input maps. Form handlers and the extraction adapter
// both use these keys.
const (
	FieldReference       = "reference"
	FieldObject          = "object_description"
	FieldOrganization    = "issuing_organization"
	FieldRegion          = "region"
	FieldSector          = "sector"
	FieldEstimatedAmount = "estimated_amount"
	FieldOfferedAmount   = "offered_amount"
	FieldDepositAmount   = "deposit_amount"
	FieldPublicationDate = "publication_date"
	FieldSubmissionDate  = "submission_date"
	FieldDecisionDate    = "decision_date"
	FieldDecision        = "decision"
	FieldStatus          = "status"
	FieldRejectionReason = "rejection_reason"
	FieldComplexity      = "complexity"
	FieldMissionType     = "mission_type"
	FieldOwner           = "owner"
	FieldContractMonths  = "contract_months"
	FieldCompetitorCount = "competitor_count"
	FieldTechnicalScore  = "technical_score"
	FieldFolderLink      = "folder_link"
)

// RawFields is a loosely typed field map, as produced by a form post or the
// extraction collaborator.
type RawFields map[string]string

// digit runs, optionally interleaved with thousands separators.
var amountRunPattern = regexp.MustCompile(`[0-9][0-9 \x{00a0},.]*`)

// Clean trims whitespace and maps the not-found sentinel to the empty string.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, NotSpecified) {
		return ""
	}
	return s
}

// stripSeparators removes spaces (including non-breaking) and commas from a
// digit run, leaving digits and at most a decimal point.
func stripSeparators(run string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', ',':
			return -1
		}
		return r
	}, run)
}

// ParseAmount extracts a monetary amount from free text. All digit runs in
// the string are collected (separator characters inside a run are stripped,
// anything after a decimal point is dropped) and the longest run wins; ties
// go to the first occurrence. Returns nil when no digits are present.
//
//	"Budget: 12 000 000 MAD (env. 500)" -> 12000000
func ParseAmount(s string) *float64 {
	s = Clean(s)
	if s == "" {
		return nil
	}

	var best string
	for _, run := range amountRunPattern.FindAllString(s, -1) {
		cleaned := stripSeparators(run)
		if dot := strings.IndexByte(cleaned, '.'); dot >= 0 {
			cleaned = cleaned[:dot]
		}
		if cleaned == "" {
			continue
		}
		if len(cleaned) > len(best) {
			best = cleaned
		}
	}

	if best == "" {
		return nil
	}

	value, err := strconv.ParseFloat(best, 64)
	if err != nil {
		return nil
	}
	return &value
}

// dateFormats are tried in order; the first match wins.
var dateFormats = []string{"02/01/2006", "02-01-2006", "2006-01-02"}

// ParseDate parses DD/MM/YYYY, DD-MM-YYYY or YYYY-MM-DD. Any other shape is
// absent, not an error.
func ParseDate(s string) *time.Time {
	s = Clean(s)
	if s == "" {
		return nil
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseInt parses a plain integer, accepting a trailing decimal part
// ("3.0" -> 3). Returns nil for anything else.
func ParseInt(s string) *int {
	s = Clean(s)
	if s == "" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

// Record maps a raw field bag to a typed TenderRecord. Enum-ish fields pass
// through as free text; the validation gate owns the option sets.
func Record(raw RawFields) model.TenderRecord {
	rec := model.TenderRecord{
		Reference:       Clean(raw[FieldReference]),
		Object:          Clean(raw[FieldObject]),
		Organization:    Clean(raw[FieldOrganization]),
		Region:          Clean(raw[FieldRegion]),
		Sector:          Clean(raw[FieldSector]),
		Decision:        model.Decision(Clean(raw[FieldDecision])),
		Status:          model.Status(Clean(raw[FieldStatus])),
		RejectionReason: Clean(raw[FieldRejectionReason]),
		MissionType:     model.MissionType(Clean(raw[FieldMissionType])),
		Owner:           Clean(raw[FieldOwner]),
		FolderLink:      Clean(raw[FieldFolderLink]),

		EstimatedAmount: ParseAmount(raw[FieldEstimatedAmount]),
		OfferedAmount:   ParseAmount(raw[FieldOfferedAmount]),
		DepositAmount:   ParseAmount(raw[FieldDepositAmount]),

		PublicationDate: ParseDate(raw[FieldPublicationDate]),
		SubmissionDate:  ParseDate(raw[FieldSubmissionDate]),
		DecisionDate:    ParseDate(raw[FieldDecisionDate]),

		ContractMonths:  ParseInt(raw[FieldContractMonths]),
		CompetitorCount: ParseInt(raw[FieldCompetitorCount]),
		TechnicalScore:  ParseInt(raw[FieldTechnicalScore]),
	}

	if c := ParseInt(raw[FieldComplexity]); c != nil {
		rec.Complexity = *c
	}

	return rec
}
