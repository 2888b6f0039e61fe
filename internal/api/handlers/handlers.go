package handlers

import (
	"monitormate/internal/domain/services"
	"monitormate/internal/infrastructure/cache"
	"monitormate/internal/infrastructure/database/repository"
	"monitormate/internal/streaming"
	"monitormate/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health      *HealthHandler
	Apps        *AppsHandler
	Permissions *PermissionsHandler
	Devices     *DevicesHandler
	Stats       *StatsHandler
	Streaming   *StreamingHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Snapshots    *services.SnapshotService
	Categorizer  *services.Categorizer
	RiskAnalyzer *services.RiskAnalyzer
	Insights     *services.InsightService
	Cache        *cache.RedisCache
	Repos        *repository.Repositories
	WSHub        *streaming.WebSocketHub
	EventBus     *streaming.EventBus
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(deps.Cache, deps.Repos, deps.Logger),
		Apps:        NewAppsHandler(deps.Snapshots, deps.Categorizer, deps.Insights, deps.Logger),
		Permissions: NewPermissionsHandler(deps.RiskAnalyzer, deps.Cache, deps.Logger),
		Devices:     NewDevicesHandler(deps.Snapshots, deps.Repos, deps.Logger),
		Stats:       NewStatsHandler(deps.Repos, deps.Cache, deps.Logger),
		Streaming:   NewStreamingHandler(deps.WSHub, deps.EventBus, deps.Logger),
	}
}
