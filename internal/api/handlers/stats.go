package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"monitormate/internal/infrastructure/cache"
	"monitormate/internal/infrastructure/database/repository"
	"monitormate/pkg/logger"
)

// StatsHandler handles service-level statistics endpoints
type StatsHandler struct {
	repos  *repository.Repositories
	cache  *cache.RedisCache
	logger *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(repos *repository.Repositories, c *cache.RedisCache, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		repos:  repos,
		cache:  c,
		logger: log.WithComponent("stats"),
	}
}

// ServiceStats aggregates service-wide counters and storage totals
type ServiceStats struct {
	SnapshotsIngested int64     `json:"snapshotsIngested"`
	AppsAnalyzed      int64     `json:"appsAnalyzed"`
	HighRiskDetected  int64     `json:"highRiskDetected"`
	StoredSnapshots   int64     `json:"storedSnapshots"`
	KnownDevices      int64     `json:"knownDevices"`
	StoredApps        int64     `json:"storedApps"`
	StoredHighRisk    int64     `json:"storedHighRisk"`
	LastUpdate        time.Time `json:"lastUpdate"`
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats := ServiceStats{LastUpdate: time.Now().UTC()}

	if h.cache != nil {
		ctx := r.Context()
		if n, err := h.cache.GetCounter(ctx, cache.KeyStatsIngested); err == nil {
			stats.SnapshotsIngested = n
		}
		if n, err := h.cache.GetCounter(ctx, cache.KeyStatsAnalyzed); err == nil {
			stats.AppsAnalyzed = n
		}
		if n, err := h.cache.GetCounter(ctx, cache.KeyStatsHighRisk); err == nil {
			stats.HighRiskDetected = n
		}
	}

	if h.repos != nil {
		if dbStats, err := h.repos.Snapshots.GetStats(r.Context()); err == nil {
			stats.StoredSnapshots = dbStats.TotalSnapshots
			stats.KnownDevices = dbStats.DeviceCount
			stats.StoredApps = dbStats.TotalApps
			stats.StoredHighRisk = dbStats.HighRiskApps
		} else {
			h.logger.Warn().Err(err).Msg("failed to fetch snapshot stats")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	json.NewEncoder(w).Encode(stats)
}
