package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"monitormate/internal/domain/models"
)

// SnapshotRepository handles device snapshot persistence
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Create inserts a new device snapshot
func (r *SnapshotRepository) Create(ctx context.Context, s *models.DeviceSnapshot) (*models.DeviceSnapshot, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	apps, err := json.Marshal(s.Apps)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot apps: %w", err)
	}

	query := `
		INSERT INTO device_snapshots (
			id, device_id, app_count, high_risk_count, medium_risk_count,
			low_risk_count, safe_count, apps, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at`

	err = r.pool.QueryRow(ctx, query,
		s.ID, s.DeviceID, s.AppCount, s.HighRiskCount, s.MediumRiskCount,
		s.LowRiskCount, s.SafeCount, apps, s.CreatedAt,
	).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}

	return s, nil
}

// GetLatest retrieves the most recent snapshot for a device, or nil when
// the device has none.
func (r *SnapshotRepository) GetLatest(ctx context.Context, deviceID string) (*models.DeviceSnapshot, error) {
	query := `
		SELECT id, device_id, app_count, high_risk_count, medium_risk_count,
			   low_risk_count, safe_count, apps, created_at
		FROM device_snapshots
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return r.scanSnapshot(r.pool.QueryRow(ctx, query, deviceID))
}

// GetByID retrieves a snapshot by ID
func (r *SnapshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DeviceSnapshot, error) {
	query := `
		SELECT id, device_id, app_count, high_risk_count, medium_risk_count,
			   low_risk_count, safe_count, apps, created_at
		FROM device_snapshots
		WHERE id = $1`

	return r.scanSnapshot(r.pool.QueryRow(ctx, query, id))
}

// ListByDevice retrieves snapshots for a device, newest first
func (r *SnapshotRepository) ListByDevice(ctx context.Context, deviceID string, limit, offset int) ([]*models.DeviceSnapshot, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM device_snapshots WHERE device_id = $1", deviceID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, device_id, app_count, high_risk_count, medium_risk_count,
			   low_risk_count, safe_count, apps, created_at
		FROM device_snapshots
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.pool.Query(ctx, query, deviceID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.DeviceSnapshot
	for rows.Next() {
		s, err := r.scanSnapshotFromRows(rows)
		if err != nil {
			return nil, 0, err
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, total, nil
}

// PruneOlderThan deletes snapshots created before the cutoff, keeping the
// newest snapshot per device regardless of age.
func (r *SnapshotRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM device_snapshots
		WHERE created_at < $1
		AND id NOT IN (
			SELECT DISTINCT ON (device_id) id
			FROM device_snapshots
			ORDER BY device_id, created_at DESC
		)`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetStats returns aggregate snapshot statistics
func (r *SnapshotRepository) GetStats(ctx context.Context) (*SnapshotStats, error) {
	stats := &SnapshotStats{}

	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT device_id),
			COALESCE(SUM(app_count), 0),
			COALESCE(SUM(high_risk_count), 0)
		FROM device_snapshots
	`).Scan(&stats.TotalSnapshots, &stats.DeviceCount, &stats.TotalApps, &stats.HighRiskApps)

	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot stats: %w", err)
	}

	return stats, nil
}

// Helper functions

func (r *SnapshotRepository) scanSnapshot(row pgx.Row) (*models.DeviceSnapshot, error) {
	s := &models.DeviceSnapshot{}
	var apps []byte

	err := row.Scan(
		&s.ID, &s.DeviceID, &s.AppCount, &s.HighRiskCount, &s.MediumRiskCount,
		&s.LowRiskCount, &s.SafeCount, &apps, &s.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if err := json.Unmarshal(apps, &s.Apps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot apps: %w", err)
	}
	return s, nil
}

func (r *SnapshotRepository) scanSnapshotFromRows(rows pgx.Rows) (*models.DeviceSnapshot, error) {
	s := &models.DeviceSnapshot{}
	var apps []byte

	err := rows.Scan(
		&s.ID, &s.DeviceID, &s.AppCount, &s.HighRiskCount, &s.MediumRiskCount,
		&s.LowRiskCount, &s.SafeCount, &apps, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
	}

	if err := json.Unmarshal(apps, &s.Apps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot apps: %w", err)
	}
	return s, nil
}

// SnapshotStats holds aggregate snapshot statistics
type SnapshotStats struct {
	TotalSnapshots int64 `json:"total_snapshots"`
	DeviceCount    int64 `json:"device_count"`
	TotalApps      int64 `json:"total_apps"`
	HighRiskApps   int64 `json:"high_risk_apps"`
}
