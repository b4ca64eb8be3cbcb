// Package metrics provides Prometheus metrics for the clipscore contest service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Provider metrics - every external platform call by operation and outcome
	providerCalls *prometheus.CounterVec

	// Verification metrics
	verificationTransitions *prometheus.CounterVec

	// Sync pipeline metrics
	syncRuns         prometheus.Counter
	syncRunFailures  prometheus.Counter
	syncItemsUpdated prometheus.Counter
	syncItemsFailed  prometheus.Counter
	syncBatchLatency prometheus.Histogram
	syncPacingDelay  prometheus.Histogram
	syncLastRunUnix  prometheus.Gauge

	// Ranking metrics
	rankingsRequests    *prometheus.CounterVec
	rankingsCacheHits   prometheus.Counter
	rankingsCacheMisses prometheus.Counter

	// Submission lifecycle metrics
	submissionsCreated  prometheus.Counter
	pendingSubmissions  prometheus.Gauge
	approvedSubmissions prometheus.Gauge

	// Store metrics
	storeErrors prometheus.Counter

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
		namespace:        "clipscore",
		subsystem:        "contest",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.providerCalls = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "provider_calls_total",
			Help:      "Total provider API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.verificationTransitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "verification_transitions_total",
			Help:      "Total verification outcomes by resulting state",
		},
		[]string{"result"},
	)

	m.syncRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_runs_total",
		Help:      "Total synchronization runs triggered",
	})

	m.syncRunFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_run_failures_total",
		Help:      "Total synchronization runs that ended in a run-level fatal condition",
	})

	m.syncItemsUpdated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_items_updated_total",
		Help:      "Total metrics records refreshed successfully",
	})

	m.syncItemsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_items_failed_total",
		Help:      "Total per-item refresh failures (isolated, never fatal)",
	})

	m.syncBatchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_batch_latency_milliseconds",
		Help:      "Histogram of per-batch refresh latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.syncPacingDelay = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_pacing_delay_milliseconds",
		Help:      "Histogram of inter-batch pacing delays in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.syncLastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_last_run_unix",
		Help:      "Unix timestamp of the last completed synchronization run",
	})

	m.rankingsRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "rankings_requests_total",
			Help:      "Total ranking queries by window",
		},
		[]string{"window"},
	)

	m.rankingsCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rankings_cache_hits_total",
		Help:      "Total ranking queries served from cache",
	})

	m.rankingsCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rankings_cache_misses_total",
		Help:      "Total ranking queries computed from the store",
	})

	m.submissionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_created_total",
		Help:      "Total submissions accepted into the contest",
	})

	m.pendingSubmissions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_submissions",
		Help:      "Submissions currently awaiting verification",
	})

	m.approvedSubmissions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "approved_submissions",
		Help:      "Submissions currently approved and eligible for ranking",
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total persistence layer errors",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Package-level helpers against the global manager.

// RecordProviderCall records one provider API call.
func RecordProviderCall(operation, outcome string) {
	globalManager.providerCalls.WithLabelValues(operation, outcome).Inc()
}

// RecordVerificationTransition records a verification outcome
// (approved, rejected or retained).
func RecordVerificationTransition(result string) {
	globalManager.verificationTransitions.WithLabelValues(result).Inc()
}

// RecordSyncRun increments the synchronization run counter.
func RecordSyncRun() {
	globalManager.syncRuns.Inc()
}

// RecordSyncRunFailure increments the run-level fatal counter.
func RecordSyncRunFailure() {
	globalManager.syncRunFailures.Inc()
}

// RecordSyncItemUpdated increments the refreshed items counter.
func RecordSyncItemUpdated() {
	globalManager.syncItemsUpdated.Inc()
}

// RecordSyncItemFailed increments the per-item failure counter.
func RecordSyncItemFailed() {
	globalManager.syncItemsFailed.Inc()
}

// RecordSyncBatchLatency records one batch's refresh latency.
func RecordSyncBatchLatency(latencyMs float64) {
	globalManager.syncBatchLatency.Observe(latencyMs)
}

// RecordSyncPacingDelay records one inter-batch pacing delay.
func RecordSyncPacingDelay(delayMs float64) {
	globalManager.syncPacingDelay.Observe(delayMs)
}

// UpdateSyncLastRun sets the timestamp of the last completed run.
func UpdateSyncLastRun(unix int64) {
	globalManager.syncLastRunUnix.Set(float64(unix))
}

// RecordRankingsRequest records a ranking query for a window.
func RecordRankingsRequest(window string) {
	globalManager.rankingsRequests.WithLabelValues(window).Inc()
}

// RecordRankingsCacheHit increments the cache hit counter.
func RecordRankingsCacheHit() {
	globalManager.rankingsCacheHits.Inc()
}

// RecordRankingsCacheMiss increments the cache miss counter.
func RecordRankingsCacheMiss() {
	globalManager.rankingsCacheMisses.Inc()
}

// RecordSubmissionCreated increments the accepted submission counter.
func RecordSubmissionCreated() {
	globalManager.submissionsCreated.Inc()
}

// UpdatePendingSubmissions sets the pending submission gauge.
func UpdatePendingSubmissions(count int) {
	globalManager.pendingSubmissions.Set(float64(count))
}

// UpdateApprovedSubmissions sets the approved submission gauge.
func UpdateApprovedSubmissions(count int) {
	globalManager.approvedSubmissions.Set(float64(count))
}

// RecordStoreError increments the persistence error counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
