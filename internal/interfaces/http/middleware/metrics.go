package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/prometheus"
)

// Metrics returns middleware that records request counts, durations and
// in-flight gauge against the application metrics. The route pattern
// (e.g. /api/v1/points/{id}) is used as the path label to keep
// cardinality bounded.
func Metrics(metrics *prometheus.AppMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			if metrics.HTTPActiveRequests != nil {
				active := metrics.HTTPActiveRequests.WithLabelValues()
				active.Inc()
				defer active.Dec()
			}

			start := time.Now()
			wrapped := newWrappedResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					pattern = p
				}
			}

			status := strconv.Itoa(wrapped.statusCode)
			duration := time.Since(start)
			if metrics.HTTPRequestsTotal != nil {
				metrics.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
			}
			if metrics.HTTPRequestDuration != nil {
				metrics.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(duration.Seconds())
			}
		})
	}
}
