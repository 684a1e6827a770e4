// Package engine orchestrates the save pipeline for tender records:
// normalize, derive, validate, then upsert through the persistence
// collaborator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/derive"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/normalize"
	"github.com/atlas-conseil/tenderflow/internal/service"
	"github.com/atlas-conseil/tenderflow/internal/validate"
)

// Engine coordinates the tender save pipeline against a storage backend.
type Engine struct {
	storage service.Storage
}

// New creates a new engine with the given storage.
func New(storage service.Storage) *Engine {
	return &Engine{storage: storage}
}

// SaveResult reports a completed upsert.
type SaveResult struct {
	Key   model.NaturalKey
	IsNew bool
}

// ProcessResult is the outcome of one pass through the pipeline. When
// Violations is non-empty the record was not persisted and Saved is nil.
type ProcessResult struct {
	Saved      *SaveResult
	Violations []string
	Record     model.TenderRecord
}

// Prepare normalizes a raw field bag and computes the derived fields,
// returning the candidate record and its validation violations. Nothing is
// persisted; this backs the extraction preview.
func (e *Engine) Prepare(raw normalize.RawFields) (model.TenderRecord, []string) {
	rec := normalize.Record(raw)
	derive.Apply(&rec)
	return rec, validate.Record(rec)
}

// Process runs the full pipeline on a raw field bag. Validation violations
// stop the pipeline before any write; a persistence failure is returned as
// an error, exactly as the collaborator reported it.
func (e *Engine) Process(ctx context.Context, raw normalize.RawFields) (ProcessResult, error) {
	rec, violations := e.Prepare(raw)
	result := ProcessResult{Record: rec, Violations: violations}

	if len(violations) > 0 {
		return result, nil
	}

	saved, err := e.Save(ctx, &result.Record)
	if err != nil {
		return result, err
	}

	result.Saved = &saved
	return result, nil
}

// Save upserts a validated record by its natural key: exactly one insert or
// update call per invocation, decided by a fresh lookup. Failures are
// surfaced verbatim; the engine never retries a write.
func (e *Engine) Save(ctx context.Context, rec *model.TenderRecord) (SaveResult, error) {
	if rec == nil {
		return SaveResult{}, errors.New("record cannot be nil")
	}

	key := rec.Key()

	e.attachClientHistory(ctx, rec)

	existing, err := e.storage.FindByKey(ctx, key.Reference, key.Organization)
	switch {
	case err == nil:
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		if err := e.storage.UpdateTender(ctx, key, rec); err != nil {
			return SaveResult{}, fmt.Errorf("failed to update tender %s: %w", key, err)
		}
		slog.Info("Tender updated", "key", key.String())
		return SaveResult{Key: key, IsNew: false}, nil

	case errors.Is(err, common.ErrNotFound):
		if err := e.storage.InsertTender(ctx, rec); err != nil {
			return SaveResult{}, fmt.Errorf("failed to insert tender %s: %w", key, err)
		}
		slog.Info("Tender created", "key", key.String())
		return SaveResult{Key: key, IsNew: true}, nil

	default:
		return SaveResult{}, fmt.Errorf("failed to look up tender %s: %w", key, err)
	}
}

// attachClientHistory decorates the record with the win/loss summary for its
// issuing organization. The summary is informational; a lookup failure is
// logged and the save continues without it.
func (e *Engine) attachClientHistory(ctx context.Context, rec *model.TenderRecord) {
	if rec.Organization == "" {
		return
	}

	history, err := e.storage.ClientHistory(ctx, rec.Organization)
	if err != nil {
		slog.Warn("Could not compute client history",
			"organization", rec.Organization,
			"error", err)
		return
	}
	rec.ClientHistory = history.Summary()
}
