package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db    HealthChecker
	cache HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Healthz is the liveness probe: the process is up.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz is the readiness probe: returns 503 when a dependency is down.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "down"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := h.cache.Ping(ctx); err != nil {
		checks["redis"] = "down"
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	body := map[string]any{"status": "ready", "checks": checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "not ready"
	}
	writeJSON(w, status, body)
}
