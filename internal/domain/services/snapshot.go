package services

import (
	"context"
	"fmt"
	"time"

	"monitormate/internal/config"
	"monitormate/internal/domain/models"
	"monitormate/internal/infrastructure/cache"
	"monitormate/internal/infrastructure/database/repository"
	"monitormate/pkg/logger"
)

// EventPublisher publishes real-time events for ingested snapshots.
type EventPublisher interface {
	PublishSnapshotIngested(ctx context.Context, snapshot *models.DeviceSnapshot) error
	PublishHighRisk(ctx context.Context, deviceID string, snapshotID string, app *models.NormalizedApp) error
}

// SnapshotService runs the full ingest pipeline: raw records are
// validated, categorized, risk-analyzed and stored as a device
// snapshot. Persistence, caching and event publishing are all
// optional; the service degrades to pure analysis when they are nil.
type SnapshotService struct {
	validator    *Validator
	categorizer  *Categorizer
	riskAnalyzer *RiskAnalyzer
	insights     *InsightService

	repos     *repository.Repositories
	cache     *cache.RedisCache
	publisher EventPublisher

	snapshotTTL  time.Duration
	maxBatchSize int

	logger *logger.Logger
}

// NewSnapshotService creates the ingest pipeline service.
func NewSnapshotService(
	validator *Validator,
	categorizer *Categorizer,
	riskAnalyzer *RiskAnalyzer,
	insights *InsightService,
	repos *repository.Repositories,
	redisCache *cache.RedisCache,
	publisher EventPublisher,
	cfg config.InsightsConfig,
	log *logger.Logger,
) *SnapshotService {
	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	maxBatch := cfg.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = 500
	}

	return &SnapshotService{
		validator:    validator,
		categorizer:  categorizer,
		riskAnalyzer: riskAnalyzer,
		insights:     insights,
		repos:        repos,
		cache:        redisCache,
		publisher:    publisher,
		snapshotTTL:  ttl,
		maxBatchSize: maxBatch,
		logger:       log.WithComponent("snapshot-service"),
	}
}

// MaxBatchSize reports the largest app batch a single request may carry.
func (s *SnapshotService) MaxBatchSize() int {
	return s.maxBatchSize
}

// AnalyzeApp validates one raw record and enriches it with a category,
// a risk analysis and derived data usage. Returns nil for records that
// fail validation.
func (s *SnapshotService) AnalyzeApp(raw models.RawAppRecord) *models.NormalizedApp {
	app := s.validator.ValidateAppData(raw)
	if app == nil {
		return nil
	}

	if app.Category == "" || app.Category == models.CategoryOther {
		app.Category = s.categorizer.Categorize(app.PackageName, app.Name)
	}

	analysis := s.riskAnalyzer.AnalyzeAppRisk(app.Permissions)
	app.RiskAnalysis = &analysis

	if usage := extractDataUsage(raw); usage != nil {
		app.DataUsage = usage
	}

	return app
}

// AnalyzeApps runs AnalyzeApp over a batch, dropping invalid records
// and preserving input order.
func (s *SnapshotService) AnalyzeApps(raw []models.RawAppRecord) []models.NormalizedApp {
	apps := make([]models.NormalizedApp, 0, len(raw))
	for _, record := range raw {
		if app := s.AnalyzeApp(record); app != nil {
			apps = append(apps, *app)
		}
	}
	return apps
}

// IngestSnapshot analyzes a batch of raw app records from a device,
// persists the resulting snapshot and publishes real-time events.
func (s *SnapshotService) IngestSnapshot(ctx context.Context, deviceID string, raw []models.RawAppRecord) (*models.DeviceSnapshot, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device ID is required")
	}
	if len(raw) > s.maxBatchSize {
		return nil, fmt.Errorf("batch of %d apps exceeds limit of %d", len(raw), s.maxBatchSize)
	}

	// Serialize concurrent ingests from the same device
	if s.cache != nil {
		acquired, err := s.cache.AcquireIngestLock(ctx, deviceID, 30*time.Second)
		if err != nil {
			s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("ingest lock unavailable, continuing")
		} else if !acquired {
			return nil, fmt.Errorf("ingest already in progress for device %s", deviceID)
		} else {
			defer func() {
				if err := s.cache.ReleaseIngestLock(ctx, deviceID); err != nil {
					s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to release ingest lock")
				}
			}()
		}
	}

	apps := s.AnalyzeApps(raw)
	buckets := s.insights.CategorizeAppsByRisk(apps)

	snapshot := &models.DeviceSnapshot{
		DeviceID:        deviceID,
		AppCount:        len(apps),
		HighRiskCount:   len(buckets.HighRisk),
		MediumRiskCount: len(buckets.MediumRisk),
		LowRiskCount:    len(buckets.LowRisk),
		SafeCount:       len(buckets.NoRisk),
		Apps:            apps,
		CreatedAt:       time.Now().UTC(),
	}

	if s.repos != nil {
		stored, err := s.repos.Snapshots.Create(ctx, snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to store snapshot: %w", err)
		}
		snapshot = stored
	}

	if s.cache != nil {
		if err := s.cache.CacheSnapshot(ctx, deviceID, snapshot, s.snapshotTTL); err != nil {
			s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to cache snapshot")
		}
		if _, err := s.cache.IncrementCounter(ctx, cache.KeyStatsIngested, 1); err == nil {
			s.cache.IncrementCounter(ctx, cache.KeyStatsAnalyzed, int64(len(apps)))
			s.cache.IncrementCounter(ctx, cache.KeyStatsHighRisk, int64(len(buckets.HighRisk)))
		}
	}

	s.publishEvents(ctx, snapshot, buckets.HighRisk)

	s.logger.Info().
		Str("device_id", deviceID).
		Int("apps", snapshot.AppCount).
		Int("high_risk", snapshot.HighRiskCount).
		Msg("snapshot ingested")

	return snapshot, nil
}

// LatestSnapshot returns the most recent snapshot for a device,
// checking the cache before the database.
func (s *SnapshotService) LatestSnapshot(ctx context.Context, deviceID string) (*models.DeviceSnapshot, error) {
	if s.cache != nil {
		var cached models.DeviceSnapshot
		if err := s.cache.GetCachedSnapshot(ctx, deviceID, &cached); err == nil && cached.DeviceID == deviceID {
			return &cached, nil
		}
	}

	if s.repos == nil {
		return nil, nil
	}

	snapshot, err := s.repos.Snapshots.GetLatest(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil && s.cache != nil {
		if err := s.cache.CacheSnapshot(ctx, deviceID, snapshot, s.snapshotTTL); err != nil {
			s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to cache snapshot")
		}
	}
	return snapshot, nil
}

// RecentForDevice returns the recently used apps from a device's
// latest snapshot.
func (s *SnapshotService) RecentForDevice(ctx context.Context, deviceID string, limit int) ([]models.NormalizedApp, error) {
	snapshot, err := s.LatestSnapshot(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return []models.NormalizedApp{}, nil
	}
	return s.insights.RecentApps(snapshot.Apps, limit), nil
}

func (s *SnapshotService) publishEvents(ctx context.Context, snapshot *models.DeviceSnapshot, highRisk []models.NormalizedApp) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishSnapshotIngested(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish snapshot event")
	}

	for i := range highRisk {
		app := &highRisk[i]
		if err := s.publisher.PublishHighRisk(ctx, snapshot.DeviceID, snapshot.ID.String(), app); err != nil {
			s.logger.Warn().Err(err).Str("package", app.PackageName).Msg("failed to publish high-risk event")
		}
	}
}

// extractDataUsage derives a per-app DataUsage summary from the raw
// network counters, when the record carries them.
func extractDataUsage(raw models.RawAppRecord) *models.DataUsage {
	value, ok := raw["networkUsage"]
	if !ok {
		value, ok = raw["dataUsage"]
	}
	if !ok {
		return nil
	}

	counters, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	read := func(key string) int64 {
		n, ok := asNumber(counters[key])
		if !ok || n < 0 {
			return 0
		}
		return int64(n)
	}

	usage := &models.DataUsage{
		Mobile:   read("mobileRx") + read("mobileTx"),
		Wifi:     read("wifiRx") + read("wifiTx"),
		Sent:     read("mobileTx") + read("wifiTx"),
		Received: read("mobileRx") + read("wifiRx"),
	}
	usage.Total = read("totalRx") + read("totalTx")
	if usage.Total == 0 {
		usage.Total = usage.Mobile + usage.Wifi
	}

	if usage.Total == 0 && usage.Sent == 0 && usage.Received == 0 {
		return nil
	}
	return usage
}
