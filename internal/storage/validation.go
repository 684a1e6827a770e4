// Package storage provides the data persistence layer for tender records.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atlas-conseil/tenderflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidTender   = errors.New("invalid tender record")
	ErrInvalidLimit    = errors.New("limit must be positive")
	ErrNilExtraction   = errors.New("extraction run cannot be nil")
	ErrEmptyExtraction = errors.New("extraction run has no fields")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateLimit ensures a result limit is positive.
func validateLimit(limit int) error {
	if limit <= 0 {
		return ErrInvalidLimit
	}
	return nil
}

// validateTender ensures a record carries the minimum the schema requires.
// Business validation lives in the validate package; this only guards
// against writing rows the natural key cannot address.
func validateTender(rec *model.TenderRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: tender", ErrNilParameter)
	}
	if strings.TrimSpace(rec.Reference) == "" {
		return fmt.Errorf("%w: missing reference", ErrInvalidTender)
	}
	if strings.TrimSpace(rec.Organization) == "" {
		return fmt.Errorf("%w: missing issuing organization", ErrInvalidTender)
	}
	return nil
}

// validateExtraction ensures an extraction run can be persisted.
func validateExtraction(run *model.ExtractionRun) error {
	if run == nil {
		return ErrNilExtraction
	}
	if len(run.Fields) == 0 {
		return ErrEmptyExtraction
	}
	return nil
}
