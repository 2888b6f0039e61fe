package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"monitormate/internal/domain/models"
	"monitormate/internal/domain/services"
	"monitormate/internal/infrastructure/cache"
	"monitormate/pkg/logger"
)

// PermissionsHandler handles permission risk API requests
type PermissionsHandler struct {
	analyzer *services.RiskAnalyzer
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewPermissionsHandler creates a new permissions handler
func NewPermissionsHandler(analyzer *services.RiskAnalyzer, redisCache *cache.RedisCache, log *logger.Logger) *PermissionsHandler {
	return &PermissionsHandler{
		analyzer: analyzer,
		cache:    redisCache,
		logger:   log.WithComponent("permissions-handler"),
	}
}

// AnalyzeRequest is the request body for permission analysis
type AnalyzeRequest struct {
	Permissions []string `json:"permissions"`
}

const analysisCacheTTL = time.Hour

// Analyze handles POST /api/v1/apps/permissions/analyze
func (h *PermissionsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hash := permissionListHash(req.Permissions)
	if h.cache != nil {
		var cached models.PermissionAnalysis
		if err := h.cache.GetCachedAnalysis(r.Context(), hash, &cached); err == nil {
			h.respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	analysis := h.analyzer.PermissionAnalysis(req.Permissions)

	if h.cache != nil {
		if err := h.cache.CacheAnalysis(r.Context(), hash, analysis, analysisCacheTTL); err != nil {
			h.logger.Warn().Err(err).Msg("failed to cache permission analysis")
		}
	}

	h.respondJSON(w, http.StatusOK, analysis)
}

// permissionListHash produces a cache key for a permission list. The
// analysis result depends on ordering and duplicates, so the hash must
// too. Length-prefixing keeps adjacent entries unambiguous.
func permissionListHash(permissions []string) string {
	h := sha256.New()
	for _, p := range permissions {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// PermissionRiskEntry describes the risk profile of one permission
type PermissionRiskEntry struct {
	Permission  string                 `json:"permission"`
	Level       models.PermissionLevel `json:"level"`
	Weight      int                    `json:"weight"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
}

// ListRisks handles GET /api/v1/apps/permissions/risks
func (h *PermissionsHandler) ListRisks(w http.ResponseWriter, r *http.Request) {
	entries := make([]PermissionRiskEntry, 0, len(models.PermissionRisks))
	for _, permission := range models.KnownPermissions {
		risk := models.PermissionRisks[permission]
		entries = append(entries, PermissionRiskEntry{
			Permission:  permission,
			Level:       risk.Level,
			Weight:      risk.Level.Weight(),
			Description: risk.Description,
			Category:    risk.Category,
		})
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.respondJSON(w, http.StatusOK, map[string]any{"permissions": entries})
}

func (h *PermissionsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PermissionsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
