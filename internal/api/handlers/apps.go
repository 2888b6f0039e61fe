package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"monitormate/internal/domain/models"
	"monitormate/internal/domain/services"
	"monitormate/pkg/logger"
)

// AppsHandler handles app analysis API requests
type AppsHandler struct {
	snapshots   *services.SnapshotService
	categorizer *services.Categorizer
	insights    *services.InsightService
	logger      *logger.Logger
}

// NewAppsHandler creates a new apps handler
func NewAppsHandler(snapshots *services.SnapshotService, categorizer *services.Categorizer, insights *services.InsightService, log *logger.Logger) *AppsHandler {
	return &AppsHandler{
		snapshots:   snapshots,
		categorizer: categorizer,
		insights:    insights,
		logger:      log.WithComponent("apps-handler"),
	}
}

// Analyze handles POST /api/v1/apps/analyze
func (h *AppsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var raw models.RawAppRecord
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app := h.snapshots.AnalyzeApp(raw)
	if app == nil {
		h.respondError(w, http.StatusUnprocessableEntity, "app record failed validation")
		return
	}

	h.respondJSON(w, http.StatusOK, app)
}

// AnalyzeBatchRequest is the request body for batch analysis
type AnalyzeBatchRequest struct {
	Apps []models.RawAppRecord `json:"apps"`
}

// AnalyzeBatchResponse is the response body for batch analysis
type AnalyzeBatchResponse struct {
	Apps    []models.NormalizedApp `json:"apps"`
	Total   int                    `json:"total"`
	Dropped int                    `json:"dropped"`
}

// AnalyzeBatch handles POST /api/v1/apps/analyze/batch
func (h *AppsHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Apps) == 0 {
		h.respondError(w, http.StatusBadRequest, "apps array is required")
		return
	}
	if limit := h.snapshots.MaxBatchSize(); len(req.Apps) > limit {
		h.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d apps exceeds limit of %d", len(req.Apps), limit))
		return
	}

	apps := h.snapshots.AnalyzeApps(req.Apps)

	h.respondJSON(w, http.StatusOK, AnalyzeBatchResponse{
		Apps:    apps,
		Total:   len(apps),
		Dropped: len(req.Apps) - len(apps),
	})
}

// CategorizeRequest is the request body for app categorization
type CategorizeRequest struct {
	PackageName string `json:"packageName"`
	AppName     string `json:"appName"`
}

// CategorizeResponse is the response body for app categorization
type CategorizeResponse struct {
	Category models.Category `json:"category"`
	Color    string          `json:"color"`
	HighRisk bool            `json:"highRisk"`
}

// Categorize handles POST /api/v1/apps/categorize
func (h *AppsHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req CategorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := h.categorizer.Categorize(req.PackageName, req.AppName)

	h.respondJSON(w, http.StatusOK, CategorizeResponse{
		Category: category,
		Color:    category.Color(),
		HighRisk: category.IsHighRisk(),
	})
}

// CategoryInfo describes one app category
type CategoryInfo struct {
	Name     models.Category `json:"name"`
	Color    string          `json:"color"`
	HighRisk bool            `json:"highRisk"`
}

// ListCategories handles GET /api/v1/apps/categories
func (h *AppsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := make([]CategoryInfo, 0, len(models.AllCategories))
	for _, category := range models.AllCategories {
		categories = append(categories, CategoryInfo{
			Name:     category,
			Color:    category.Color(),
			HighRisk: category.IsHighRisk(),
		})
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// AppCollectionRequest carries a set of already-analyzed apps for
// aggregation endpoints.
type AppCollectionRequest struct {
	Apps  []models.NormalizedApp `json:"apps"`
	Limit int                    `json:"limit,omitempty"`
}

// RiskBuckets handles POST /api/v1/apps/risk-buckets
func (h *AppsHandler) RiskBuckets(w http.ResponseWriter, r *http.Request) {
	var req AppCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.respondJSON(w, http.StatusOK, h.insights.CategorizeAppsByRisk(req.Apps))
}

// Recent handles POST /api/v1/apps/recent
func (h *AppsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	var req AppCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	apps := h.insights.RecentApps(req.Apps, req.Limit)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"apps":  apps,
		"total": len(apps),
	})
}

// StatsResponse aggregates system and category statistics over an app
// collection.
type StatsResponse struct {
	System     models.SystemStats                         `json:"system"`
	Categories map[models.Category]models.CategoryStat    `json:"categories"`
	Grouped    map[models.Category][]models.NormalizedApp `json:"grouped,omitempty"`
}

// Stats handles POST /api/v1/apps/stats
func (h *AppsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var req AppCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response := StatsResponse{
		System:     h.insights.SystemStats(req.Apps),
		Categories: h.categorizer.CategoryStats(req.Apps),
	}
	if strings.EqualFold(r.URL.Query().Get("grouped"), "true") {
		response.Grouped = h.categorizer.GroupByCategory(req.Apps)
	}

	h.respondJSON(w, http.StatusOK, response)
}

// Search handles POST /api/v1/apps/search
func (h *AppsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req AppCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	query := r.URL.Query().Get("q")
	apps := req.Apps

	if query != "" {
		apps = h.insights.SearchApps(apps, query)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		apps = h.insights.FilterByCategory(apps, models.Category(category))
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"apps":  apps,
		"total": len(apps),
	})
}

func (h *AppsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *AppsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
