// Package app wires the full service graph (config, logging, postgres, redis,
// metrics, application service, HTTP interface) and runs the API server.  It
// is shared by cmd/apiserver and the CLI serve command.
package app

import (
	"context"
	"fmt"

	"github.com/quadrantlab/quadrant/internal/application/space"
	"github.com/quadrantlab/quadrant/internal/config"
	"github.com/quadrantlab/quadrant/internal/domain/designspace"
	"github.com/quadrantlab/quadrant/internal/infrastructure/database/postgres"
	"github.com/quadrantlab/quadrant/internal/infrastructure/database/postgres/repositories"
	"github.com/quadrantlab/quadrant/internal/infrastructure/database/redis"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/quadrantlab/quadrant/internal/interfaces/http"
	"github.com/quadrantlab/quadrant/internal/interfaces/http/handlers"
	"github.com/quadrantlab/quadrant/internal/interfaces/http/middleware"
)

const metricsNamespace = "quadrant"

// Options tunes server startup.
type Options struct {
	// Migrate runs pending database migrations before serving.
	Migrate bool
}

// Run builds the service graph and serves HTTP until ctx is cancelled.
// Infrastructure handles are closed on return.
func Run(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) error {
	if opts.Migrate {
		if err := postgres.RunMigrations(cfg.Database, cfg.Database.MigrationPath, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewRedisCache(redisClient, logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Redis.DefaultTTL),
	)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            metricsNamespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	svc := space.NewService(space.Deps{
		Entries: repositories.NewEntryRepository(conn.Pool(), repoLogger{logger}),
		Points:  repositories.NewPointRepository(conn.Pool(), repoLogger{logger}),
		Cache:   cache,
		Metrics: metrics,
		Logger:  logger,
		Policy: designspace.Policy{
			Sentinel:         cfg.Engine.Sentinel,
			MagnitudeFloor:   cfg.Engine.MagnitudeFloor,
			DistanceDecimals: cfg.Engine.DistanceDecimals,
			ContourSegments:  cfg.Engine.ContourSegments,
		},
		DefaultMaxRank: cfg.Engine.DefaultMaxRank,
		CacheTTL:       cfg.Engine.RecommendCacheTTL,
	})

	// Derive an initial projection so readiness does not depend on a manual
	// reload.  An empty catalog is fine; the projection is just empty.
	if _, err := svc.Reload(ctx, designspace.ProfileA); err != nil {
		logger.Warn("initial projection derivation failed; service starts not ready",
			logging.Err(err))
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:    logger,
		Metrics:   metrics,
		Collector: collector,
		Health: handlers.NewHealthHandler(svc.Ready, map[string]handlers.CheckFunc{
			"postgres": conn.HealthCheck,
			"redis":    redisClient.Ping,
		}, metrics, logger),
		Entries: handlers.NewEntryHandler(svc, logger),
		Points:  handlers.NewPointHandler(svc, logger),
		Space:   handlers.NewSpaceHandler(svc, logger),
		Logging: middleware.DefaultLoggingConfig(),
		CORS:    middleware.DefaultCORSConfig(),
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if err := server.Stop(context.Background()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// NewLogger builds the service logger from config.
func NewLogger(cfg *config.Config) (logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
}

// LoadConfig loads configuration from the given file, or entirely from
// QUADRANT_* environment variables when path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
