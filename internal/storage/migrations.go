package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial tender schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS tenders (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					reference TEXT NOT NULL,
					organization TEXT NOT NULL,
					object TEXT NOT NULL DEFAULT '',
					region TEXT NOT NULL DEFAULT '',
					sector TEXT NOT NULL DEFAULT '',
					estimated_amount REAL,
					offered_amount REAL,
					deposit_amount REAL,
					publication_date DATETIME,
					submission_date DATETIME,
					decision_date DATETIME,
					decision TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT '',
					rejection_reason TEXT NOT NULL DEFAULT '',
					complexity INTEGER NOT NULL DEFAULT 0,
					mission_type TEXT NOT NULL DEFAULT '',
					owner TEXT NOT NULL DEFAULT '',
					contract_months INTEGER,
					competitor_count INTEGER,
					technical_score INTEGER,
					processing_days INTEGER,
					amount_variance_pct REAL,
					strategic_score REAL,
					folder_link TEXT NOT NULL DEFAULT '',
					client_history TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				// The unique index backs the coordinator's check-then-write:
				// a race between two saves of the same key surfaces as a
				// constraint violation instead of a duplicate row.
				`CREATE UNIQUE INDEX idx_tenders_natural_key ON tenders(reference, organization)`,
				`CREATE INDEX idx_tenders_publication ON tenders(publication_date)`,
				`CREATE INDEX idx_tenders_status ON tenders(status)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add extraction audit trail",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS extractions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					session_id TEXT NOT NULL,
					source TEXT NOT NULL DEFAULT '',
					fields TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Indexes for dashboard aggregates",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_tenders_owner ON tenders(owner)`,
				`CREATE INDEX IF NOT EXISTS idx_tenders_sector ON tenders(sector)`,
				`CREATE INDEX IF NOT EXISTS idx_tenders_organization ON tenders(organization)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version of the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
