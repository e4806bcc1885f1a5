package hazard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL hazard repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `
	id, lat, lng, category, severity, priority_score,
	description, reporter_ref, status,
	created_at, updated_at, resolved_at
`

// Get retrieves a report by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Report, error) {
	query := `SELECT ` + reportColumns + ` FROM hazard_reports WHERE id = $1`

	var report Report
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.Point.Lat,
		&report.Point.Lng,
		&report.Category,
		&report.Severity,
		&report.PriorityScore,
		&report.Description,
		&report.ReporterRef,
		&report.Status,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	return &report, nil
}

// ListActive retrieves all active reports, newest first.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM hazard_reports
		WHERE status = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

// List retrieves reports with filtering and pagination.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + reportColumns + `
		FROM hazard_reports
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, string(opts.Status), fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports, err := scanReports(rows)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: reports,
	}

	if len(reports) > limit {
		result.Items = reports[:limit]
		result.NextCursor = reports[limit-1].ID
	}

	return result, nil
}

// Create inserts a new report.
func (r *PostgresRepository) Create(ctx context.Context, report *Report) error {
	query := `
		INSERT INTO hazard_reports (
			id, lat, lng, category, severity, priority_score,
			description, reporter_ref, status,
			created_at, updated_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.Point.Lat,
		report.Point.Lng,
		report.Category,
		report.Severity,
		report.PriorityScore,
		report.Description,
		report.ReporterRef,
		report.Status,
		report.CreatedAt,
		report.UpdatedAt,
		report.ResolvedAt,
	)
	return err
}

// Update updates an existing report.
func (r *PostgresRepository) Update(ctx context.Context, report *Report) error {
	query := `
		UPDATE hazard_reports SET
			lat = $2,
			lng = $3,
			category = $4,
			severity = $5,
			priority_score = $6,
			description = $7,
			reporter_ref = $8,
			status = $9,
			updated_at = $10,
			resolved_at = $11
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		report.ID,
		report.Point.Lat,
		report.Point.Lng,
		report.Category,
		report.Severity,
		report.PriorityScore,
		report.Description,
		report.ReporterRef,
		report.Status,
		report.UpdatedAt,
		report.ResolvedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrReportNotFound
	}

	return nil
}

// scanReports scans query rows into reports.
func scanReports(rows pgx.Rows) ([]*Report, error) {
	var reports []*Report
	for rows.Next() {
		var report Report
		err := rows.Scan(
			&report.ID,
			&report.Point.Lat,
			&report.Point.Lng,
			&report.Category,
			&report.Severity,
			&report.PriorityScore,
			&report.Description,
			&report.ReporterRef,
			&report.Status,
			&report.CreatedAt,
			&report.UpdatedAt,
			&report.ResolvedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, &report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
