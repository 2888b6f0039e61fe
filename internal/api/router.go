package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"monitormate/internal/api/handlers"
	apimiddleware "monitormate/internal/api/middleware"
	"monitormate/internal/config"
	"monitormate/internal/infrastructure/cache"
	"monitormate/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Public routes
	router.Group(func(pub chi.Router) {
		// Health check
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)

		// Public stats
		pub.Get("/api/v1/stats", r.handlers.Stats.Get)
	})

	// API v1 routes (authenticated)
	router.Route("/api/v1", func(api chi.Router) {
		// Auth middleware for protected routes
		if r.config.Auth.APIKey != "" {
			api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKey))
		}

		// Rate limiting runs after auth so authenticated clients are
		// limited per key rather than per source address.
		if r.config.RateLimit.Enabled && r.cache != nil {
			api.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
		}

		// App analysis endpoints
		api.Route("/apps", func(apps chi.Router) {
			// Single and batch analysis
			apps.Post("/analyze", r.handlers.Apps.Analyze)
			apps.Post("/analyze/batch", r.handlers.Apps.AnalyzeBatch)

			// Permission risk
			apps.Post("/permissions/analyze", r.handlers.Permissions.Analyze)
			apps.Get("/permissions/risks", r.handlers.Permissions.ListRisks)

			// Categorization
			apps.Post("/categorize", r.handlers.Apps.Categorize)
			apps.Get("/categories", r.handlers.Apps.ListCategories)

			// Collection aggregations
			apps.Post("/risk-buckets", r.handlers.Apps.RiskBuckets)
			apps.Post("/recent", r.handlers.Apps.Recent)
			apps.Post("/stats", r.handlers.Apps.Stats)
			apps.Post("/search", r.handlers.Apps.Search)
		})

		// Per-device snapshot endpoints
		api.Route("/devices/{device_id}", func(dev chi.Router) {
			dev.Post("/snapshot", r.handlers.Devices.IngestSnapshot)
			dev.Get("/snapshot", r.handlers.Devices.GetSnapshot)
			dev.Get("/snapshots", r.handlers.Devices.ListSnapshots)
			dev.Get("/snapshots/{snapshot_id}", r.handlers.Devices.GetSnapshotByID)
			dev.Get("/recent", r.handlers.Devices.Recent)
			dev.Post("/reports", r.handlers.Devices.ReportApp)
		})
	})

	// WebSocket streaming endpoint (real-time app insight updates for mobile apps)
	router.Get("/ws/apps", r.handlers.Streaming.HandleWebSocket)
	router.Get("/api/v1/streaming/stats", r.handlers.Streaming.GetStats)

	return router
}
