// Package handler provides HTTP handlers for all API endpoints.
// Handlers query Postgres via the store package and the prepared
// statements registered in internal/db — no service layer.
package handler

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartaid/medtrack/internal/api/respond"
	"github.com/smartaid/medtrack/internal/cache"
	"github.com/smartaid/medtrack/internal/config"
	"github.com/smartaid/medtrack/internal/notify"
	"github.com/smartaid/medtrack/internal/pill"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool       *pgxpool.Pool
	cache      *cache.Cache
	cfg        *config.Config
	registry   *notify.Registry
	dispatcher *notify.Dispatcher
	identifier *pill.Identifier
}

// New creates a Handler with shared dependencies.
func New(pool *pgxpool.Pool, c *cache.Cache, cfg *config.Config, registry *notify.Registry, dispatcher *notify.Dispatcher, identifier *pill.Identifier) *Handler {
	return &Handler{
		pool:       pool,
		cache:      c,
		cfg:        cfg,
		registry:   registry,
		dispatcher: dispatcher,
		identifier: identifier,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "MedTrack API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckPush reports push delivery configuration and registry size.
// @Summary Push health check
// @Description Reports whether web push is configured and how many subscriptions are live.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/push [get]
func (h *Handler) HealthCheckPush(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":        "healthy",
		"configured":    h.cfg.PushConfigured(),
		"subscriptions": h.registry.Count(),
		"cache":         h.cache.Stats(),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
