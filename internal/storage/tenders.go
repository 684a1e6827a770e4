package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

const tenderColumns = `id, reference, organization, object, region, sector,
	estimated_amount, offered_amount, deposit_amount,
	publication_date, submission_date, decision_date,
	decision, status, rejection_reason, complexity, mission_type, owner,
	contract_months, competitor_count, technical_score,
	processing_days, amount_variance_pct, strategic_score,
	folder_link, client_history, created_at, updated_at`

// FindByKey looks up a tender by its natural key. Absence is reported as an
// error wrapping common.ErrNotFound so callers can tell it apart from a
// storage failure.
func (s *SQLiteStorage) FindByKey(ctx context.Context, reference, organization string) (*model.TenderRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(reference, "reference"); err != nil {
		return nil, err
	}
	if err := validateString(organization, "organization"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+tenderColumns+` FROM tenders WHERE reference = ? AND organization = ?`,
		reference, organization)

	rec, err := scanTender(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tender %s / %s", common.ErrNotFound, reference, organization)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tender: %w", err)
	}
	return rec, nil
}

// GetTender looks up a tender by its row ID.
func (s *SQLiteStorage) GetTender(ctx context.Context, id int64) (*model.TenderRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+tenderColumns+` FROM tenders WHERE id = ?`, id)

	rec, err := scanTender(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: tender id %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tender: %w", err)
	}
	return rec, nil
}

// InsertTender inserts a new tender row. A natural-key collision surfaces as
// an error wrapping common.ErrDuplicateEntry; the UNIQUE index closes the
// window between the coordinator's lookup and this write.
func (s *SQLiteStorage) InsertTender(ctx context.Context, rec *model.TenderRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTender(rec); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tenders (
			reference, organization, object, region, sector,
			estimated_amount, offered_amount, deposit_amount,
			publication_date, submission_date, decision_date,
			decision, status, rejection_reason, complexity, mission_type, owner,
			contract_months, competitor_count, technical_score,
			processing_days, amount_variance_pct, strategic_score,
			folder_link, client_history, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Reference, rec.Organization, rec.Object, rec.Region, rec.Sector,
		nullFloat(rec.EstimatedAmount), nullFloat(rec.OfferedAmount), nullFloat(rec.DepositAmount),
		nullTime(rec.PublicationDate), nullTime(rec.SubmissionDate), nullTime(rec.DecisionDate),
		string(rec.Decision), string(rec.Status), rec.RejectionReason, rec.Complexity,
		string(rec.MissionType), rec.Owner,
		nullInt(rec.ContractMonths), nullInt(rec.CompetitorCount), nullInt(rec.TechnicalScore),
		nullInt(rec.ProcessingDays), nullFloat(rec.AmountVariancePct), nullFloat(rec.StrategicScore),
		rec.FolderLink, rec.ClientHistory, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tender %s", common.ErrDuplicateEntry, rec.Key())
		}
		return fmt.Errorf("failed to insert tender: %w", err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		rec.ID = id
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

// UpdateTender replaces the stored record addressed by the natural key. The
// key columns themselves are not changed.
func (s *SQLiteStorage) UpdateTender(ctx context.Context, key model.NaturalKey, rec *model.TenderRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTender(rec); err != nil {
		return err
	}
	if err := validateString(key.Reference, "key.Reference"); err != nil {
		return err
	}
	if err := validateString(key.Organization, "key.Organization"); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE tenders SET
			object = ?, region = ?, sector = ?,
			estimated_amount = ?, offered_amount = ?, deposit_amount = ?,
			publication_date = ?, submission_date = ?, decision_date = ?,
			decision = ?, status = ?, rejection_reason = ?, complexity = ?,
			mission_type = ?, owner = ?,
			contract_months = ?, competitor_count = ?, technical_score = ?,
			processing_days = ?, amount_variance_pct = ?, strategic_score = ?,
			folder_link = ?, client_history = ?, updated_at = ?
		WHERE reference = ? AND organization = ?`,
		rec.Object, rec.Region, rec.Sector,
		nullFloat(rec.EstimatedAmount), nullFloat(rec.OfferedAmount), nullFloat(rec.DepositAmount),
		nullTime(rec.PublicationDate), nullTime(rec.SubmissionDate), nullTime(rec.DecisionDate),
		string(rec.Decision), string(rec.Status), rec.RejectionReason, rec.Complexity,
		string(rec.MissionType), rec.Owner,
		nullInt(rec.ContractMonths), nullInt(rec.CompetitorCount), nullInt(rec.TechnicalScore),
		nullInt(rec.ProcessingDays), nullFloat(rec.AmountVariancePct), nullFloat(rec.StrategicScore),
		rec.FolderLink, rec.ClientHistory, now,
		key.Reference, key.Organization,
	)
	if err != nil {
		return fmt.Errorf("failed to update tender: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: tender %s", common.ErrNotFound, key)
	}

	rec.UpdatedAt = now
	return nil
}

// ListTenders returns tenders matching the filter, pending go/no-go
// decisions first, then most recently published.
func (s *SQLiteStorage) ListTenders(ctx context.Context, filter service.TenderFilter) ([]model.TenderRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + tenderColumns + ` FROM tenders`
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Owner != "" {
		conditions = append(conditions, "owner = ?")
		args = append(args, filter.Owner)
	}
	if filter.Sector != "" {
		conditions = append(conditions, "sector = ?")
		args = append(args, filter.Sector)
	}
	if filter.Region != "" {
		conditions = append(conditions, "region = ?")
		args = append(args, filter.Region)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += ` ORDER BY CASE WHEN decision = '' THEN 0 ELSE 1 END, publication_date DESC`

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	return s.queryTenders(ctx, query, args...)
}

// SearchTenders matches the term against reference, organization and object.
func (s *SQLiteStorage) SearchTenders(ctx context.Context, term string) ([]model.TenderRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(term, "term"); err != nil {
		return nil, err
	}

	pattern := "%" + term + "%"
	return s.queryTenders(ctx,
		`SELECT `+tenderColumns+` FROM tenders
		 WHERE reference LIKE ? OR organization LIKE ? OR object LIKE ?
		 ORDER BY publication_date DESC`,
		pattern, pattern, pattern)
}

// RecentTenders returns the most recently created tenders.
func (s *SQLiteStorage) RecentTenders(ctx context.Context, limit int) ([]model.TenderRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	return s.queryTenders(ctx,
		`SELECT `+tenderColumns+` FROM tenders ORDER BY created_at DESC LIMIT ?`, limit)
}

// ClientHistory counts past outcomes with one issuing organization.
func (s *SQLiteStorage) ClientHistory(ctx context.Context, organization string) (service.ClientHistory, error) {
	history := service.ClientHistory{Organization: organization}

	if err := validateContext(ctx); err != nil {
		return history, err
	}
	if err := validateString(organization, "organization"); err != nil {
		return history, err
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN status != '' THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END)
		FROM tenders WHERE organization = ?`,
		string(model.StatusWon), string(model.StatusLost), organization,
	).Scan(&history.Total, &history.Won, &history.Lost)
	if err != nil {
		return history, fmt.Errorf("failed to query client history: %w", err)
	}

	return history, nil
}

// CountReferencesWithPrefix counts tenders whose reference starts with the
// prefix. Used by the reference generator.
func (s *SQLiteStorage) CountReferencesWithPrefix(ctx context.Context, prefix string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(prefix, "prefix"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tenders WHERE reference LIKE ?`, prefix+"%",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count references: %w", err)
	}
	return count, nil
}

func (s *SQLiteStorage) queryTenders(ctx context.Context, query string, args ...any) ([]model.TenderRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.TenderRecord
	for rows.Next() {
		rec, scanErr := scanTender(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tender: %w", scanErr)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenders: %w", err)
	}

	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTender(row rowScanner) (*model.TenderRecord, error) {
	var rec model.TenderRecord
	var (
		estimated, offered, deposit sql.NullFloat64
		variance, score             sql.NullFloat64
		pubDate, subDate, decDate   sql.NullTime
		contractMonths, competitors sql.NullInt64
		techScore, processingDays   sql.NullInt64
		decision, status, mission   string
		createdAt, updatedAt        sql.NullTime
	)

	err := row.Scan(
		&rec.ID, &rec.Reference, &rec.Organization, &rec.Object, &rec.Region, &rec.Sector,
		&estimated, &offered, &deposit,
		&pubDate, &subDate, &decDate,
		&decision, &status, &rec.RejectionReason, &rec.Complexity, &mission, &rec.Owner,
		&contractMonths, &competitors, &techScore,
		&processingDays, &variance, &score,
		&rec.FolderLink, &rec.ClientHistory, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Decision = model.Decision(decision)
	rec.Status = model.Status(status)
	rec.MissionType = model.MissionType(mission)

	rec.EstimatedAmount = floatPtr(estimated)
	rec.OfferedAmount = floatPtr(offered)
	rec.DepositAmount = floatPtr(deposit)
	rec.AmountVariancePct = floatPtr(variance)
	rec.StrategicScore = floatPtr(score)

	rec.PublicationDate = timePtr(pubDate)
	rec.SubmissionDate = timePtr(subDate)
	rec.DecisionDate = timePtr(decDate)

	rec.ContractMonths = intPtr(contractMonths)
	rec.CompetitorCount = intPtr(competitors)
	rec.TechnicalScore = intPtr(techScore)
	rec.ProcessingDays = intPtr(processingDays)

	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}

	return &rec, nil
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
