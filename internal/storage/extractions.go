package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atlas-conseil/tenderflow/internal/model"
)

// SaveExtraction appends one extraction run to the audit trail. The raw
// field answers are stored as JSON, verbatim.
func (s *SQLiteStorage) SaveExtraction(ctx context.Context, run *model.ExtractionRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExtraction(run); err != nil {
		return err
	}

	fields, err := json.Marshal(run.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode extraction fields: %w", err)
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO extractions (session_id, source, fields, created_at)
		VALUES (?, ?, ?, ?)`,
		run.SessionID, run.Source, string(fields), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert extraction: %w", err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		run.ID = id
	}
	return nil
}

// RecentExtractions returns the latest extraction runs, newest first.
func (s *SQLiteStorage) RecentExtractions(ctx context.Context, limit int) ([]model.ExtractionRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, source, fields, created_at
		FROM extractions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.ExtractionRun
	for rows.Next() {
		var run model.ExtractionRun
		var fields string
		if err := rows.Scan(&run.ID, &run.SessionID, &run.Source, &fields, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &run.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode extraction fields: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extractions: %w", err)
	}

	return runs, nil
}
