package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visulab_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "visulab_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	recordsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visulab_shortage_records_created_total",
		Help: "Count of shortage records registered, by lens index",
	}, []string{"lens_index"})

	reportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "visulab_report_generation_duration_seconds",
		Help:    "Duration of shortage report generation",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	dashboardCacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visulab_dashboard_cache_operations_total",
		Help: "Dashboard cache lookups by result (hit, miss, bypass, error)",
	}, []string{"result"})

	shortagePieces = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "visulab_shortage_pieces",
		Help: "Total missing lens pieces currently registered, per company",
	}, []string{"company_id"})

	feedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "visulab_feed_clients",
		Help: "Number of connected live feed websocket clients",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRecordCreated increments the created-records counter.
func ObserveRecordCreated(lensIndex string) {
	recordsCreated.WithLabelValues(lensIndex).Inc()
}

// ObserveReport records the duration of a report generation attempt.
func ObserveReport(result string, duration time.Duration) {
	reportDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveDashboardCache increments the dashboard cache counter.
func ObserveDashboardCache(result string) {
	dashboardCacheOps.WithLabelValues(result).Inc()
}

// SetShortagePieces sets the per-company missing pieces gauge.
func SetShortagePieces(companyID string, pieces int) {
	if pieces < 0 {
		pieces = 0
	}
	shortagePieces.WithLabelValues(companyID).Set(float64(pieces))
}

// IncrementFeedClients increments the connected feed client gauge.
func IncrementFeedClients() {
	feedClients.Inc()
}

// DecrementFeedClients decrements the connected feed client gauge.
func DecrementFeedClients() {
	feedClients.Dec()
}
