package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/ruthenian8/dream/services/convert"
	"github.com/ruthenian8/dream/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// StatusResponse describes what the service is serving
type StatusResponse struct {
	Version     string        `json:"version"`
	Environment string        `json:"environment"`
	Resources   convert.Stats `json:"resources"`
}

// StatsProvider reports the loaded resources
type StatsProvider interface {
	Stats() convert.Stats
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db          *sql.DB
	stats       StatsProvider
	version     string
	environment string
	logger      *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db may be nil when resources
// are not read from postgres.
func NewHealthHandler(db *sql.DB, stats StatsProvider, version, environment string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		stats:       stats,
		version:     version,
		environment: environment,
		logger:      logger,
	}
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// Ready once resources are loaded and, if configured, the database answers.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.stats == nil || h.stats.Stats().IndexSize == 0 {
		checks["resources"] = "not_loaded"
		allHealthy = false
	} else {
		checks["resources"] = "loaded"
	}

	if h.db != nil {
		if err := h.checkDatabase(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			allHealthy = false
		} else {
			checks["database"] = "healthy"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleStatus handles GET /api/v1/status
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		_ = utils.WriteServiceUnavailable(w, "resources not loaded")
		return
	}

	response := StatusResponse{
		Version:     h.version,
		Environment: h.environment,
		Resources:   h.stats.Stats(),
	}
	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write status response", zap.Error(err))
	}
}

// checkDatabase checks database connectivity
func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if err := h.db.PingContext(ctx); err != nil {
		return err
	}

	var result int
	if err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return err
	}

	return nil
}
