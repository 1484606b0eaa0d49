package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Projection layer
	ProjectionRebuildsTotal   CounterVec
	ProjectionRebuildDuration HistogramVec
	ProjectionEntries         GaugeVec
	ProjectionVersion         GaugeVec

	// Recommendation layer
	RecommendRequestsTotal CounterVec
	RecommendDuration      HistogramVec
	RecommendGroupCount    HistogramVec

	// Point layer
	PointWritesTotal    CounterVec
	PointDuplicateTotal CounterVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultGroupCountBuckets   = []float64{0, 1, 2, 3, 5, 10, 20}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests")

	// Projection
	m.ProjectionRebuildsTotal = collector.RegisterCounter("projection_rebuilds_total", "Projection rebuild count", "profile", "status")
	m.ProjectionRebuildDuration = collector.RegisterHistogram("projection_rebuild_duration_seconds", "Projection rebuild duration", DefaultDBDurationBuckets, "profile")
	m.ProjectionEntries = collector.RegisterGauge("projection_entries", "Entries in the published projection", "profile")
	m.ProjectionVersion = collector.RegisterGauge("projection_version", "Version of the published projection", "profile")

	// Recommendation
	m.RecommendRequestsTotal = collector.RegisterCounter("recommend_requests_total", "Recommendation requests", "profile", "status")
	m.RecommendDuration = collector.RegisterHistogram("recommend_duration_seconds", "Recommendation duration", DefaultHTTPDurationBuckets, "profile")
	m.RecommendGroupCount = collector.RegisterHistogram("recommend_group_count", "Rank groups per recommendation", DefaultGroupCountBuckets, "profile")

	// Points
	m.PointWritesTotal = collector.RegisterCounter("point_writes_total", "Attraction point writes", "operation", "status")
	m.PointDuplicateTotal = collector.RegisterCounter("point_duplicates_total", "Attraction point writes rejected as duplicate key")

	// Infrastructure
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordProjectionRebuild(metrics *AppMetrics, profile string, entries int, version uint64, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.ProjectionRebuildsTotal.WithLabelValues(profile, status).Inc()
	metrics.ProjectionRebuildDuration.WithLabelValues(profile).Observe(duration.Seconds())
	if err == nil {
		metrics.ProjectionEntries.WithLabelValues(profile).Set(float64(entries))
		metrics.ProjectionVersion.WithLabelValues(profile).Set(float64(version))
	}
}

func RecordRecommend(metrics *AppMetrics, profile string, groups int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.RecommendRequestsTotal.WithLabelValues(profile, status).Inc()
	metrics.RecommendDuration.WithLabelValues(profile).Observe(duration.Seconds())
	if err == nil {
		metrics.RecommendGroupCount.WithLabelValues(profile).Observe(float64(groups))
	}
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
