// Package metrics provides Prometheus metrics for the fairway ranking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the ranking engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Cache metrics
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter

	// Integrity metrics
	integrityChecks  prometheus.Counter
	integrityRepairs prometheus.Counter
	repairsSkipped   prometheus.Counter
	breakerTrips     prometheus.Counter
	verifyViolations prometheus.Counter

	// Ranking operation metrics
	redistributions        prometheus.Counter
	redistributionDuration prometheus.Histogram
	comparisonsResolved    *prometheus.CounterVec
	recordsCreated         prometheus.Counter
	recordsReconciled      prometheus.Counter

	// Store metrics
	storeOpLatency *prometheus.HistogramVec
	storeErrors    prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fairway",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Ranking cache hits",
	})
	m.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Ranking cache misses (including TTL expiries)",
	})
	m.cacheEvictions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Cached lists evicted because a corruption signature was detected on read",
	})

	m.integrityChecks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "integrity_checks_total",
		Help:      "Integrity checks run over ranking lists",
	})
	m.integrityRepairs = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "integrity_repairs_total",
		Help:      "Integrity repairs attempted",
	})
	m.repairsSkipped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "integrity_repairs_skipped_total",
		Help:      "Integrity checks skipped because the per-key breaker is open",
	})
	m.breakerTrips = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "integrity_breaker_trips_total",
		Help:      "Repair circuit breakers tripped open",
	})
	m.verifyViolations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "verify_violations_total",
		Help:      "Post-redistribution verification failures",
	})

	m.redistributions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "redistributions_total",
		Help:      "Score redistributions performed",
	})
	m.redistributionDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "redistribution_duration_ms",
		Help:      "Score redistribution duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.comparisonsResolved = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_resolved_total",
		Help:      "Pairwise comparisons resolved, labeled by outcome (moved|confirmed)",
	}, []string{"outcome"})
	m.recordsCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_created_total",
		Help:      "Ranking records created",
	})
	m.recordsReconciled = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_reconciled_total",
		Help:      "Placeholder records created by reconciliation",
	})

	m.storeOpLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_op_latency_ms",
		Help:      "Record store operation latency in milliseconds, labeled by operation",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})
	m.storeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Record store operations that returned an error",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method", "status_code"})
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheEviction increments the corruption-eviction counter.
func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

// RecordIntegrityCheck increments the integrity check counter.
func RecordIntegrityCheck() {
	globalManager.integrityChecks.Inc()
}

// RecordIntegrityRepair increments the repair counter.
func RecordIntegrityRepair() {
	globalManager.integrityRepairs.Inc()
}

// RecordRepairSkipped increments the breaker-open skip counter.
func RecordRepairSkipped() {
	globalManager.repairsSkipped.Inc()
}

// RecordBreakerTrip increments the breaker trip counter.
func RecordBreakerTrip() {
	globalManager.breakerTrips.Inc()
}

// RecordVerifyViolation increments the verification failure counter.
func RecordVerifyViolation() {
	globalManager.verifyViolations.Inc()
}

// RecordRedistribution increments the redistribution counter.
func RecordRedistribution() {
	globalManager.redistributions.Inc()
}

// RecordRedistributionDuration records redistribution duration in milliseconds.
func RecordRedistributionDuration(latencyMs float64) {
	globalManager.redistributionDuration.Observe(latencyMs)
}

// RecordComparisonResolved records a resolved comparison by outcome.
func RecordComparisonResolved(outcome string) {
	globalManager.comparisonsResolved.WithLabelValues(outcome).Inc()
}

// RecordRecordCreated increments the records created counter.
func RecordRecordCreated() {
	globalManager.recordsCreated.Inc()
}

// RecordRecordsReconciled adds to the reconciled records counter.
func RecordRecordsReconciled(n int) {
	globalManager.recordsReconciled.Add(float64(n))
}

// RecordStoreOpLatency records a store operation's latency in milliseconds.
func RecordStoreOpLatency(op string, latencyMs float64) {
	globalManager.storeOpLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError increments the store error counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
