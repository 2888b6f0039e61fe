package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"monitormate/internal/domain/models"
	"monitormate/internal/domain/services"
	"monitormate/internal/infrastructure/database/repository"
	"monitormate/pkg/logger"
)

// DevicesHandler handles per-device snapshot API requests
type DevicesHandler struct {
	snapshots *services.SnapshotService
	repos     *repository.Repositories
	logger    *logger.Logger
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(snapshots *services.SnapshotService, repos *repository.Repositories, log *logger.Logger) *DevicesHandler {
	return &DevicesHandler{
		snapshots: snapshots,
		repos:     repos,
		logger:    log.WithComponent("devices-handler"),
	}
}

// IngestRequest is the request body for snapshot ingestion
type IngestRequest struct {
	Apps []models.RawAppRecord `json:"apps"`
}

// IngestSnapshot handles POST /api/v1/devices/{device_id}/snapshot
func (h *DevicesHandler) IngestSnapshot(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	if deviceID == "" {
		h.respondError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := h.snapshots.IngestSnapshot(r.Context(), deviceID, req.Apps)
	if err != nil {
		if strings.Contains(err.Error(), "already in progress") {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		if strings.Contains(err.Error(), "exceeds limit") {
			h.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("device_id", deviceID).Msg("snapshot ingest failed")
		h.respondError(w, http.StatusInternalServerError, "failed to ingest snapshot")
		return
	}

	h.respondJSON(w, http.StatusCreated, snapshot)
}

// GetSnapshot handles GET /api/v1/devices/{device_id}/snapshot
func (h *DevicesHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	if deviceID == "" {
		h.respondError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	snapshot, err := h.snapshots.LatestSnapshot(r.Context(), deviceID)
	if err != nil {
		h.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to fetch snapshot")
		h.respondError(w, http.StatusInternalServerError, "failed to fetch snapshot")
		return
	}
	if snapshot == nil {
		h.respondError(w, http.StatusNotFound, "no snapshot for device")
		return
	}

	h.respondJSON(w, http.StatusOK, snapshot)
}

// ListSnapshots handles GET /api/v1/devices/{device_id}/snapshots
func (h *DevicesHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	if deviceID == "" {
		h.respondError(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if h.repos == nil {
		h.respondError(w, http.StatusServiceUnavailable, "snapshot history not available")
		return
	}

	limit, offset := paginationParams(r, 20)

	snapshots, total, err := h.repos.Snapshots.ListByDevice(r.Context(), deviceID, limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to list snapshots")
		h.respondError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"snapshots": snapshots,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetSnapshotByID handles GET /api/v1/devices/{device_id}/snapshots/{snapshot_id}
func (h *DevicesHandler) GetSnapshotByID(w http.ResponseWriter, r *http.Request) {
	if h.repos == nil {
		h.respondError(w, http.StatusServiceUnavailable, "snapshot history not available")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "snapshot_id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid snapshot ID")
		return
	}

	snapshot, err := h.repos.Snapshots.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("snapshot_id", id.String()).Msg("failed to fetch snapshot")
		h.respondError(w, http.StatusInternalServerError, "failed to fetch snapshot")
		return
	}
	if snapshot == nil || snapshot.DeviceID != chi.URLParam(r, "device_id") {
		h.respondError(w, http.StatusNotFound, "snapshot not found")
		return
	}

	h.respondJSON(w, http.StatusOK, snapshot)
}

// Recent handles GET /api/v1/devices/{device_id}/recent
func (h *DevicesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "device_id")
	if deviceID == "" {
		h.respondError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	apps, err := h.snapshots.RecentForDevice(r.Context(), deviceID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to compute recent apps")
		h.respondError(w, http.StatusInternalServerError, "failed to compute recent apps")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"apps":  apps,
		"total": len(apps),
	})
}

// ReportRequest is the request body for reporting a suspicious app
type ReportRequest struct {
	PackageName string `json:"packageName"`
	AppName     string `json:"appName"`
	Reason      string `json:"reason"`
}

// ReportApp handles POST /api/v1/devices/{device_id}/reports
func (h *DevicesHandler) ReportApp(w http.ResponseWriter, r *http.Request) {
	if h.repos == nil {
		h.respondError(w, http.StatusServiceUnavailable, "reporting not available")
		return
	}

	deviceID := chi.URLParam(r, "device_id")

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PackageName == "" {
		h.respondError(w, http.StatusBadRequest, "packageName is required")
		return
	}

	report, err := h.repos.Reports.Create(r.Context(), &models.AppReport{
		DeviceID:    deviceID,
		PackageName: req.PackageName,
		AppName:     req.AppName,
		Reason:      req.Reason,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("package", req.PackageName).Msg("failed to store report")
		h.respondError(w, http.StatusInternalServerError, "failed to store report")
		return
	}

	h.respondJSON(w, http.StatusCreated, report)
}

func paginationParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func (h *DevicesHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *DevicesHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
