package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"monitormate/internal/domain/models"
)

// ReportRepository handles user-submitted app report persistence
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create inserts a new app report
func (r *ReportRepository) Create(ctx context.Context, report *models.AppReport) (*models.AppReport, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO app_reports (id, device_id, package_name, app_name, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		report.ID, report.DeviceID, report.PackageName, report.AppName,
		report.Reason, report.CreatedAt,
	).Scan(&report.ID, &report.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create app report: %w", err)
	}

	return report, nil
}

// ListByPackage retrieves reports for a package, newest first
func (r *ReportRepository) ListByPackage(ctx context.Context, packageName string, limit int) ([]*models.AppReport, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, device_id, package_name, app_name, reason, created_at
		FROM app_reports
		WHERE package_name = $1
		ORDER BY created_at DESC
		LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, packageName)
	if err != nil {
		return nil, fmt.Errorf("failed to list app reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.AppReport
	for rows.Next() {
		report := &models.AppReport{}
		if err := rows.Scan(
			&report.ID, &report.DeviceID, &report.PackageName,
			&report.AppName, &report.Reason, &report.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan app report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// CountByPackage returns the number of reports filed against a package
func (r *ReportRepository) CountByPackage(ctx context.Context, packageName string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM app_reports WHERE package_name = $1", packageName,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count app reports: %w", err)
	}
	return count, nil
}
