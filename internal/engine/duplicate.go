package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlas-conseil/tenderflow/internal/derive"
	"github.com/atlas-conseil/tenderflow/internal/model"
)

// Duplicate copies an existing tender under a new reference, clearing the
// outcome fields (status, submission and decision dates, rejection reason,
// technical score) so the copy starts its lifecycle fresh. The copy is
// always an insert; a colliding key surfaces as the storage's duplicate
// error.
func (e *Engine) Duplicate(ctx context.Context, key model.NaturalKey, newReference string) (*model.TenderRecord, error) {
	if newReference == "" {
		return nil, fmt.Errorf("new reference is required")
	}

	source, err := e.storage.FindByKey(ctx, key.Reference, key.Organization)
	if err != nil {
		return nil, fmt.Errorf("failed to load source tender %s: %w", key, err)
	}

	clone := *source
	clone.ID = 0
	clone.Reference = newReference
	clone.Status = model.StatusUnset
	clone.SubmissionDate = nil
	clone.DecisionDate = nil
	clone.RejectionReason = ""
	clone.TechnicalScore = nil
	derive.Apply(&clone)

	if err := e.storage.InsertTender(ctx, &clone); err != nil {
		return nil, fmt.Errorf("failed to insert duplicated tender %s: %w", clone.Key(), err)
	}

	slog.Info("Tender duplicated",
		"source", key.String(),
		"copy", clone.Key().String())
	return &clone, nil
}
