// Package http wires the HTTP API: router, middleware and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/prometheus"
	"github.com/quadrantlab/quadrant/internal/interfaces/http/handlers"
	"github.com/quadrantlab/quadrant/internal/interfaces/http/middleware"
	"github.com/quadrantlab/quadrant/pkg/errors"
	"github.com/quadrantlab/quadrant/pkg/types/common"
)

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	Health  *handlers.HealthHandler
	Entries *handlers.EntryHandler
	Points  *handlers.PointHandler
	Space   *handlers.SpaceHandler

	Logging middleware.LoggingConfig
	CORS    middleware.CORSConfig
}

// NewRouter assembles the full route tree.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))

	// Probes and metrics bypass the API envelope conventions.
	r.Get("/healthz", cfg.Health.Liveness)
	r.Get("/readyz", cfg.Health.Readiness)
	if cfg.Collector != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Collector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/entries", func(e chi.Router) {
			e.Get("/", cfg.Entries.List)
			e.Put("/", cfg.Entries.Replace)
			e.Get("/{id}", cfg.Entries.Get)
		})

		api.Route("/points", func(p chi.Router) {
			p.Get("/", cfg.Points.List)
			p.Post("/", cfg.Points.Create)
			p.Get("/{id}", cfg.Points.Get)
			p.Put("/{id}", cfg.Points.Update)
			p.Delete("/{id}", cfg.Points.Delete)
		})

		api.Route("/space", func(s chi.Router) {
			s.Post("/reload", cfg.Space.Reload)
			s.Get("/projection", cfg.Space.Projection)
			s.Post("/recommend", cfg.Space.Recommend)
			s.Post("/denormalize", cfg.Space.Denormalize)
			s.Post("/contour", cfg.Space.Contour)
		})
	})

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	return r
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusNotFound,
		common.Fail[any](string(errors.ErrCodeNotFound), "route not found", r.URL.Path))
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusMethodNotAllowed,
		common.Fail[any](string(errors.ErrCodeBadRequest), "method not allowed", r.Method))
}
