// Package metrics provides Prometheus metrics for the launch dashboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	DefaultNamespace       = "launchdash"
	subsystem              = "dashboard"
	defaultRefreshInterval = 10 * time.Second
)

// latencyBuckets spans 0.25ms to about 2s for millisecond histograms.
var latencyBuckets = prometheus.ExponentialBuckets(0.25, 2, 14) //nolint:gochecknoglobals // shared bucket layout

// Manager manages all Prometheus metrics for the dashboard service.
type Manager struct {
	namespace       string
	enabled         bool
	refreshInterval time.Duration
	registry        prometheus.Registerer

	// Dataset
	datasetRecords      prometheus.Gauge
	datasetSites        prometheus.Gauge
	datasetLoadDuration prometheus.Gauge
	datasetLoadErrors   prometheus.Counter

	// Aggregations
	aggregateRequests   *prometheus.CounterVec
	aggregateResultSize *prometheus.HistogramVec
	unknownSiteRequests prometheus.Counter

	// Chart rendering
	chartRenderLatency *prometheus.HistogramVec
	chartRenderErrors  *prometheus.CounterVec
	renderCacheHits    prometheus.Counter
	renderCacheMisses  prometheus.Counter
	renderCacheSize    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager and its registry with one built from
// opts. It must run before handlers capture GetRegistry and before any
// recorder is called concurrently.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	opts = append(opts, WithPrometheusRegistry(registry))
	customRegistry = registry
	globalManager = NewManager(opts...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       DefaultNamespace,
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) opts(name, help string) (string, string, string, string, prometheus.Labels) {
	return m.namespace, subsystem, name, help, nil
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	ns, ss, n, h, cl := m.opts(name, help)
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: ns, Subsystem: ss, Name: n, Help: h, ConstLabels: cl,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	ns, ss, n, h, cl := m.opts(name, help)
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: ss, Name: n, Help: h, ConstLabels: cl,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	ns, ss, n, h, cl := m.opts(name, help)
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: ss, Name: n, Help: h, ConstLabels: cl,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	ns, ss, n, h, cl := m.opts(name, help)
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: ss, Name: n, Help: h, ConstLabels: cl, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	ns, ss, n, h, cl := m.opts(name, help)
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Subsystem: ss, Name: n, Help: h, ConstLabels: cl, Buckets: buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.datasetRecords = m.gauge("dataset_records", "Number of launch records loaded")
	m.datasetSites = m.gauge("dataset_sites", "Number of distinct launch sites in the dataset")
	m.datasetLoadDuration = m.gauge("dataset_load_duration_milliseconds", "Duration of the last dataset load in milliseconds")
	m.datasetLoadErrors = m.counter("dataset_load_errors_total", "Total number of failed dataset loads")

	m.aggregateRequests = m.counterVec("aggregate_requests_total",
		"Total number of aggregate computations by kind and scope", "kind", "scope")
	m.aggregateResultSize = m.histogramVec("aggregate_result_size",
		"Number of rows produced by an aggregate computation",
		prometheus.ExponentialBuckets(1, 2, 10), "kind")
	m.unknownSiteRequests = m.counter("unknown_site_requests_total",
		"Total number of requests naming a site absent from the dataset")

	m.chartRenderLatency = m.histogramVec("chart_render_latency_milliseconds",
		"Chart render latency in milliseconds", latencyBuckets, "chart")
	m.chartRenderErrors = m.counterVec("chart_render_errors_total", "Total number of chart render failures", "chart")
	m.renderCacheHits = m.counter("render_cache_hits_total", "Total number of rendered charts served from cache")
	m.renderCacheMisses = m.counter("render_cache_misses_total", "Total number of charts rendered on demand")
	m.renderCacheSize = m.gauge("render_cache_entries", "Current number of cached charts")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", latencyBuckets, "endpoint", "method", "status_code")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Total number of errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Current heap allocation in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Current number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause time in milliseconds", latencyBuckets)
}

// UpdateDataset records the shape of a freshly loaded dataset.
func (m *Manager) UpdateDataset(records, sites int, loadDuration time.Duration) {
	if !m.enabled {
		return
	}
	m.datasetRecords.Set(float64(records))
	m.datasetSites.Set(float64(sites))
	m.datasetLoadDuration.Set(float64(loadDuration.Milliseconds()))
}

// RecordDatasetLoadError counts a failed dataset load.
func (m *Manager) RecordDatasetLoadError() {
	if m.enabled {
		m.datasetLoadErrors.Inc()
	}
}

// RecordAggregate counts one aggregate computation and its result size.
// scope is "all" or "site".
func (m *Manager) RecordAggregate(kind, scope string, rows int) {
	if !m.enabled {
		return
	}
	m.aggregateRequests.WithLabelValues(kind, scope).Inc()
	m.aggregateResultSize.WithLabelValues(kind).Observe(float64(rows))
}

// RecordUnknownSite counts a request for a site absent from the dataset.
func (m *Manager) RecordUnknownSite() {
	if m.enabled {
		m.unknownSiteRequests.Inc()
	}
}

// RecordChartRender observes a render latency for the given chart.
func (m *Manager) RecordChartRender(chart string, latencyMs float64) {
	if m.enabled {
		m.chartRenderLatency.WithLabelValues(chart).Observe(latencyMs)
	}
}

// RecordChartRenderError counts a failed render for the given chart.
func (m *Manager) RecordChartRenderError(chart string) {
	if m.enabled {
		m.chartRenderErrors.WithLabelValues(chart).Inc()
	}
}

// RecordRenderCache counts a cache lookup outcome.
func (m *Manager) RecordRenderCache(hit bool) {
	if !m.enabled {
		return
	}
	if hit {
		m.renderCacheHits.Inc()
		return
	}
	m.renderCacheMisses.Inc()
}

// UpdateRenderCacheSize sets the current number of cached charts.
func (m *Manager) UpdateRenderCacheSize(n int) {
	if m.enabled {
		m.renderCacheSize.Set(float64(n))
	}
}

// RecordHTTPRequest records one served request with its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an error response.
func (m *Manager) RecordHTTPError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystem records process-level runtime statistics.
func (m *Manager) UpdateSystem(allocBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(allocBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers operate on the global manager.

func UpdateDataset(records, sites int, loadDuration time.Duration) {
	globalManager.UpdateDataset(records, sites, loadDuration)
}

func RecordDatasetLoadError() { globalManager.RecordDatasetLoadError() }

func RecordAggregate(kind, scope string, rows int) { globalManager.RecordAggregate(kind, scope, rows) }

func RecordUnknownSite() { globalManager.RecordUnknownSite() }

func RecordChartRender(chart string, latencyMs float64) {
	globalManager.RecordChartRender(chart, latencyMs)
}

func RecordChartRenderError(chart string) { globalManager.RecordChartRenderError(chart) }

func RecordRenderCache(hit bool) { globalManager.RecordRenderCache(hit) }

func UpdateRenderCacheSize(n int) { globalManager.UpdateRenderCacheSize(n) }

func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

func RecordHTTPError(endpoint, method, errorType, severity string) {
	globalManager.RecordHTTPError(endpoint, method, errorType, severity)
}

func UpdateSystem(allocBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(allocBytes, goroutines, avgGCPauseMs)
}

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
