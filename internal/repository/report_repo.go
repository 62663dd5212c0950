package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/reviewlens/reviewlens-api/internal/models"
)

// SQLiteReportRepository implements ReportRepository for SQLite/libsql.
type SQLiteReportRepository struct {
	db *sql.DB
}

// NewSQLiteReportRepository creates a new SQLite report repository.
func NewSQLiteReportRepository(db *sql.DB) *SQLiteReportRepository {
	return &SQLiteReportRepository{db: db}
}

// Create persists a pipeline result.
func (r *SQLiteReportRepository) Create(ctx context.Context, report *models.StoredReport) error {
	if report.ID == "" {
		report.ID = ulid.Make().String()
	}
	report.CreatedAt = time.Now().UTC()

	reportJSON, err := json.Marshal(report.Report)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reports (id, source_kind, source_url, report_json, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		string(report.SourceKind),
		report.SourceURL,
		string(reportJSON),
		report.DurationMs,
		report.CreatedAt.Format(time.RFC3339),
	)

	return err
}

// GetByID retrieves a stored report, or nil if not found.
func (r *SQLiteReportRepository) GetByID(ctx context.Context, id string) (*models.StoredReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source_kind, source_url, report_json, duration_ms, created_at, archived_at
		FROM reports
		WHERE id = ?
	`, id)

	return scanReport(row)
}

// ListUnarchived returns reports not yet uploaded to object storage, oldest
// first.
func (r *SQLiteReportRepository) ListUnarchived(ctx context.Context, limit int) ([]*models.StoredReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_kind, source_url, report_json, duration_ms, created_at, archived_at
		FROM reports
		WHERE archived_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.StoredReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// MarkArchived records that a report has been uploaded to object storage.
func (r *SQLiteReportRepository) MarkArchived(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reports SET archived_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.StoredReport, error) {
	var report models.StoredReport
	var kind string
	var sourceURL, archivedAt sql.NullString
	var reportJSON, createdAt string

	err := row.Scan(
		&report.ID,
		&kind,
		&sourceURL,
		&reportJSON,
		&report.DurationMs,
		&createdAt,
		&archivedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	report.SourceKind = models.SourceKind(kind)
	if sourceURL.Valid {
		report.SourceURL = sourceURL.String
	}
	if reportJSON != "" {
		var agg models.AggregateReport
		if err := json.Unmarshal([]byte(reportJSON), &agg); err == nil {
			report.Report = &agg
		}
	}
	report.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if archivedAt.Valid {
		if t, err := time.Parse(time.RFC3339, archivedAt.String); err == nil {
			report.ArchivedAt = &t
		}
	}

	return &report, nil
}
