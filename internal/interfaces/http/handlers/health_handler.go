package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/prometheus"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	ready   func() bool
	checks  map[string]CheckFunc
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	timeout time.Duration
}

// NewHealthHandler constructs the handler.  ready reports whether a
// projection has been published; checks probe infrastructure dependencies
// (postgres, redis) by name.
func NewHealthHandler(ready func() bool, checks map[string]CheckFunc, metrics *prometheus.AppMetrics, logger logging.Logger) *HealthHandler {
	return &HealthHandler{
		ready:   ready,
		checks:  checks,
		metrics: metrics,
		logger:  logger.Named("health"),
		timeout: 5 * time.Second,
	}
}

type healthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Liveness handles GET /healthz.  It only confirms the process is serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok"})
}

// Readiness handles GET /readyz.  The service is ready when every dependency
// check passes and a projection has been published.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := healthStatus{Status: "ready", Components: map[string]string{}}
	healthy := true

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			healthy = false
			status.Components[name] = "down"
			h.logger.Warn("dependency check failed",
				logging.String("component", name), logging.Err(err))
			h.setHealthGauge(name, 0)
			continue
		}
		status.Components[name] = "up"
		h.setHealthGauge(name, 1)
	}

	if h.ready != nil {
		if h.ready() {
			status.Components["projection"] = "published"
		} else {
			healthy = false
			status.Components["projection"] = "not_ready"
		}
	}

	if !healthy {
		status.Status = "not_ready"
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *HealthHandler) setHealthGauge(component string, value float64) {
	if h.metrics == nil || h.metrics.HealthCheckStatus == nil {
		return
	}
	h.metrics.HealthCheckStatus.WithLabelValues(component).Set(value)
}
