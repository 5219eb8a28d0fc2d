package handler

import (
	"fmt"
	"net/http"

	"github.com/almagid/almagid/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "almagid_list_cache_hits_total %d\n", snap.ListCacheHits)
	writeMetric(w, "almagid_list_cache_misses_total %d\n", snap.ListCacheMisses)

	writeMetric(w, "almagid_listings_created_total %d\n", snap.ListingsCreated)
	writeMetric(w, "almagid_listings_updated_total %d\n", snap.ListingsUpdated)
	writeMetric(w, "almagid_listings_deleted_total %d\n", snap.ListingsDeleted)

	writeMetric(w, "almagid_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "almagid_logins_failed_total %d\n", snap.LoginsFailed)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
