package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
	"github.com/merxlabs/merx/internal/services/catalog"
	"github.com/merxlabs/merx/internal/services/jobs"
)

// StatusHandler serves service status, version and health endpoints
type StatusHandler struct {
	storage    interfaces.StorageManager
	jobService *jobs.Service
	schemas    *catalog.Registry
	provider   string
	startTime  time.Time
	logger     arbor.ILogger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(storage interfaces.StorageManager, jobService *jobs.Service, schemas *catalog.Registry, provider string, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		storage:    storage,
		jobService: jobService,
		schemas:    schemas,
		provider:   provider,
		startTime:  time.Now(),
		logger:     logger,
	}
}

// StatusAPIHandler returns operational counters
// GET /api/status
func (h *StatusHandler) StatusAPIHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx := r.Context()
	jobStore := h.storage.JobStorage()
	itemStore := h.storage.ItemStorage()

	totalJobs, _ := jobStore.CountJobs(ctx)
	runningJobs, _ := jobStore.CountJobsByStatus(ctx, models.JobStatusRunning)
	completedJobs, _ := jobStore.CountJobsByStatus(ctx, models.JobStatusCompleted)
	failedJobs, _ := jobStore.CountJobsByStatus(ctx, models.JobStatusFailed)
	cancelledJobs, _ := jobStore.CountJobsByStatus(ctx, models.JobStatusCancelled)

	totalItems, _ := itemStore.CountItems(ctx)
	pendingItems, _ := itemStore.CountItemsByStatus(ctx, models.ItemStatusPending)
	succeededItems, _ := itemStore.CountItemsByStatus(ctx, models.ItemStatusSucceeded)
	failedItems, _ := itemStore.CountItemsByStatus(ctx, models.ItemStatusFailed)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
		"provider":       h.provider,
		"active_jobs":    h.jobService.ActiveCount(),
		"categories":     h.schemas.Categories(),
		"jobs": map[string]int{
			"total":     totalJobs,
			"running":   runningJobs,
			"completed": completedJobs,
			"failed":    failedJobs,
			"cancelled": cancelledJobs,
		},
		"items": map[string]int{
			"total":     totalItems,
			"pending":   pendingItems,
			"succeeded": succeededItems,
			"failed":    failedItems,
		},
	})
}

// VersionHandler returns build information
// GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// HealthHandler is the liveness probe
// GET /api/health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
