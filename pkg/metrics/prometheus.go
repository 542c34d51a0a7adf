// Package metrics provides Prometheus metrics for the salestrack service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Domain
	repsTotal          prometheus.Gauge
	dealsRecorded      prometheus.Counter
	revenueRecorded    prometheus.Counter
	repsAdded          prometheus.Counter
	repsRemoved        prometheus.Counter
	validationRejected *prometheus.CounterVec
	amountsCoerced     prometheus.Counter
	filterChanges      *prometheus.CounterVec

	// Persistence
	persistenceErrors   *prometheus.CounterVec
	persistenceDuration *prometheus.HistogramVec
	recordsMigrated     prometheus.Counter

	// Exports and idempotency
	exportsTotal      *prometheus.CounterVec
	duplicateRequests prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "salestrack",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.repsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "representatives",
		Help:      "Number of tracked sales representatives",
	})

	m.dealsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deals_recorded_total",
		Help:      "Total number of deals recorded",
	})

	m.revenueRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "revenue_recorded_total",
		Help:      "Sum of recorded deal amounts",
	})

	m.repsAdded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "representatives_added_total",
		Help:      "Total number of representatives added",
	})

	m.repsRemoved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "representatives_removed_total",
		Help:      "Total number of representatives removed",
	})

	m.validationRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_rejections_total",
		Help:      "Mutations rejected by validation, by reason",
	}, []string{"reason"})

	m.amountsCoerced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "amounts_coerced_total",
		Help:      "Deal amounts coerced to zero because the input was invalid",
	})

	m.filterChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "filter_changes_total",
		Help:      "Accepted time filter changes, by selector",
	}, []string{"selector"})

	m.persistenceErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_errors_total",
		Help:      "Persistence failures, by operation",
	}, []string{"op"})

	m.persistenceDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persistence_duration_milliseconds",
		Help:      "Persistence latency in milliseconds, by operation",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250},
	}, []string{"op"})

	m.recordsMigrated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_migrated_total",
		Help:      "Legacy representative records upgraded on load",
	})

	m.exportsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exports_total",
		Help:      "Generated exports, by format",
	}, []string{"format"})

	m.duplicateRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_requests_total",
		Help:      "Deal submissions skipped because their idempotency key was already seen",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// UpdateRepresentatives sets the tracked representatives gauge.
func UpdateRepresentatives(count int) {
	globalManager.repsTotal.Set(float64(count))
}

// RecordDeal counts a recorded deal and its amount.
func RecordDeal(amount float64) {
	globalManager.dealsRecorded.Inc()
	if amount > 0 {
		globalManager.revenueRecorded.Add(amount)
	}
}

// RecordRepAdded increments the added representatives counter.
func RecordRepAdded() {
	globalManager.repsAdded.Inc()
}

// RecordRepRemoved increments the removed representatives counter.
func RecordRepRemoved() {
	globalManager.repsRemoved.Inc()
}

// RecordValidationRejected counts a rejected mutation.
func RecordValidationRejected(reason string) {
	globalManager.validationRejected.WithLabelValues(reason).Inc()
}

// RecordAmountCoerced counts a deal amount replaced by zero.
func RecordAmountCoerced() {
	globalManager.amountsCoerced.Inc()
}

// RecordFilterChange counts an accepted filter change.
func RecordFilterChange(selector string) {
	globalManager.filterChanges.WithLabelValues(selector).Inc()
}

// RecordPersistenceError counts a failed load or save.
func RecordPersistenceError(op string) {
	globalManager.persistenceErrors.WithLabelValues(op).Inc()
}

// RecordPersistenceDuration observes a load or save latency in milliseconds.
func RecordPersistenceDuration(op string, durationMs float64) {
	globalManager.persistenceDuration.WithLabelValues(op).Observe(durationMs)
}

// RecordMigrated counts legacy records upgraded on load.
func RecordMigrated(count int) {
	if count > 0 {
		globalManager.recordsMigrated.Add(float64(count))
	}
}

// RecordExport counts a generated export.
func RecordExport(format string) {
	globalManager.exportsTotal.WithLabelValues(format).Inc()
}

// RecordDuplicateRequest counts a request skipped by idempotency tracking.
func RecordDuplicateRequest() {
	globalManager.duplicateRequests.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry backing the package-level collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
