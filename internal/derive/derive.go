// Package derive computes the derived business metrics of a tender record.
package derive

import (
	"github.com/atlas-conseil/tenderflow/internal/model"
)

// Fields holds the three derived metrics. A nil field means its inputs were
// not all present, which is an expected state, not an error.
type Fields struct {
	ProcessingDays    *int
	AmountVariancePct *float64
	StrategicScore    *float64
}

// Compute calculates the derived fields from a normalized record.
//
// Processing days requires both dates with submission strictly after
// publication; it is never negative. Variance requires a positive estimate
// and an offered amount. The strategic score requires an estimate, a status
// and a positive complexity; a present-but-not-won status yields 0, not
// absent.
func Compute(rec model.TenderRecord) Fields {
	var out Fields

	if rec.PublicationDate != nil && rec.SubmissionDate != nil &&
		rec.SubmissionDate.After(*rec.PublicationDate) {
		days := int(rec.SubmissionDate.Sub(*rec.PublicationDate).Hours() / 24)
		out.ProcessingDays = &days
	}

	if rec.EstimatedAmount != nil && *rec.EstimatedAmount > 0 && rec.OfferedAmount != nil {
		pct := (*rec.OfferedAmount - *rec.EstimatedAmount) / *rec.EstimatedAmount * 100
		out.AmountVariancePct = &pct
	}

	if rec.EstimatedAmount != nil && rec.Status != model.StatusUnset && rec.Complexity > 0 {
		won := 0.0
		if rec.IsWon() {
			won = 1.0
		}
		score := *rec.EstimatedAmount * won / float64(rec.Complexity)
		out.StrategicScore = &score
	}

	return out
}

// Apply computes the derived fields and writes them onto the record,
// clearing any stale values first.
func Apply(rec *model.TenderRecord) {
	fields := Compute(*rec)
	rec.ProcessingDays = fields.ProcessingDays
	rec.AmountVariancePct = fields.AmountVariancePct
	rec.StrategicScore = fields.StrategicScore
}
