package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// scoreBuckets cover the 0-100 readiness range in steps of 10.
var scoreBuckets = prometheus.LinearBuckets(0, 10, 11) //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the skillnav service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Analysis metrics
	analyses        *prometheus.CounterVec
	scores          prometheus.Histogram
	scoringLatency  prometheus.Histogram
	scoringErrors   prometheus.Counter
	aiFallbacks     *prometheus.CounterVec
	aiLatency       prometheus.Histogram
	githubFetches   *prometheus.CounterVec
	githubCacheHits prometheus.Counter
	authFailures    *prometheus.CounterVec

	// Async job metrics
	jobsSubmitted  prometheus.Counter
	jobsDuplicate  prometheus.Counter
	jobsFinished   *prometheus.CounterVec
	jobsStored     prometheus.Gauge
	jobsPruned     prometheus.Counter
	repoShardCount prometheus.Gauge
	repoPerShard   *prometheus.GaugeVec
	repoUpdateLat  prometheus.Histogram
	repoQueryLat   prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	queueLatency     prometheus.Histogram

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skillnav",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often callers should refresh gauges.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.analyses = auto.NewCounterVec(
		m.counterOpts("analyses_total", "Total number of completed analyses by result source"),
		[]string{"source"},
	)
	m.scores = auto.NewHistogram(m.histogramOpts("score", "Distribution of readiness scores", scoreBuckets))
	m.scoringLatency = auto.NewHistogram(m.histogramOpts("scoring_latency_milliseconds",
		"Engine scoring latency in milliseconds", m.histogramBuckets))
	m.scoringErrors = auto.NewCounter(m.counterOpts("scoring_errors_total", "Total number of rejected analysis inputs"))
	m.aiFallbacks = auto.NewCounterVec(
		m.counterOpts("ai_fallbacks_total", "Total number of AI analyses replaced by the engine result"),
		[]string{"reason"},
	)
	m.aiLatency = auto.NewHistogram(m.histogramOpts("ai_latency_milliseconds",
		"AI generation latency in milliseconds", m.histogramBuckets))
	m.githubFetches = auto.NewCounterVec(
		m.counterOpts("github_fetches_total", "Total number of GitHub repository fetches by outcome"),
		[]string{"outcome"},
	)
	m.githubCacheHits = auto.NewCounter(m.counterOpts("github_cache_hits_total", "Total number of GitHub lookups served from cache"))
	m.authFailures = auto.NewCounterVec(
		m.counterOpts("auth_failures_total", "Total number of rejected sessions by reason"),
		[]string{"reason"},
	)

	m.jobsSubmitted = auto.NewCounter(m.counterOpts("jobs_submitted_total", "Total number of accepted analysis jobs"))
	m.jobsDuplicate = auto.NewCounter(m.counterOpts("jobs_duplicate_total", "Total number of resubmitted request ids"))
	m.jobsFinished = auto.NewCounterVec(
		m.counterOpts("jobs_finished_total", "Total number of finished analysis jobs by status"),
		[]string{"status"},
	)
	m.jobsStored = auto.NewGauge(m.gaugeOpts("jobs_stored", "Number of jobs held in the job store"))
	m.jobsPruned = auto.NewCounter(m.counterOpts("jobs_pruned_total", "Total number of jobs removed after retention"))
	m.repoShardCount = auto.NewGauge(m.gaugeOpts("repository_shard_count", "Number of job store shards"))
	m.repoPerShard = auto.NewGaugeVec(
		m.gaugeOpts("repository_records_per_shard", "Number of jobs per shard"),
		[]string{"shard_id"},
	)
	m.repoUpdateLat = auto.NewHistogram(m.histogramOpts("repository_update_latency_milliseconds",
		"Job store write latency in milliseconds", m.histogramBuckets))
	m.repoQueryLat = auto.NewHistogram(m.histogramOpts("repository_query_latency_milliseconds",
		"Job store read latency in milliseconds", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current number of queued analysis jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (size / capacity)"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of jobs dequeued"))
	m.queueEnqueueErrs = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of rejected enqueues"))
	m.queueLatency = auto.NewHistogram(m.histogramOpts("queue_processing_latency_milliseconds",
		"Enqueue latency in milliseconds", m.histogramBuckets))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of analysis workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of workers processing a job"))
	m.workerIdleCount = auto.NewGauge(m.gaugeOpts("worker_idle_count", "Number of idle workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds",
		"Job processing latency in milliseconds", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of failed jobs"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Analysis Metrics Functions.

// RecordAnalysis counts a finished analysis and observes its score.
func RecordAnalysis(source string, score int) {
	if !globalManager.enabled {
		return
	}
	globalManager.analyses.WithLabelValues(source).Inc()
	globalManager.scores.Observe(float64(score))
}

// RecordScoringLatency records engine latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.scoringLatency.Observe(latencyMs)
	}
}

// RecordScoringError increments the rejected input counter.
func RecordScoringError() {
	if globalManager.enabled {
		globalManager.scoringErrors.Inc()
	}
}

// RecordAIFallback counts an AI result replaced by the engine.
func RecordAIFallback(reason string) {
	if globalManager.enabled {
		globalManager.aiFallbacks.WithLabelValues(reason).Inc()
	}
}

// RecordAILatency records AI generation latency in milliseconds.
func RecordAILatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.aiLatency.Observe(latencyMs)
	}
}

// RecordGitHubFetch counts an upstream GitHub request by outcome.
func RecordGitHubFetch(outcome string) {
	if globalManager.enabled {
		globalManager.githubFetches.WithLabelValues(outcome).Inc()
	}
}

// RecordGitHubCacheHit counts a cached repository lookup.
func RecordGitHubCacheHit() {
	if globalManager.enabled {
		globalManager.githubCacheHits.Inc()
	}
}

// RecordAuthFailure counts a rejected session.
func RecordAuthFailure(reason string) {
	if globalManager.enabled {
		globalManager.authFailures.WithLabelValues(reason).Inc()
	}
}

// Job Metrics Functions.

// RecordJobSubmitted increments the accepted jobs counter.
func RecordJobSubmitted() {
	if globalManager.enabled {
		globalManager.jobsSubmitted.Inc()
	}
}

// RecordJobDuplicate increments the duplicate submissions counter.
func RecordJobDuplicate() {
	if globalManager.enabled {
		globalManager.jobsDuplicate.Inc()
	}
}

// RecordJobFinished counts a job reaching a terminal status.
func RecordJobFinished(status string) {
	if globalManager.enabled {
		globalManager.jobsFinished.WithLabelValues(status).Inc()
	}
}

// UpdateJobsStored sets the number of jobs held in the store.
func UpdateJobsStored(count int) {
	if globalManager.enabled {
		globalManager.jobsStored.Set(float64(count))
	}
}

// RecordJobsPruned adds n to the pruned jobs counter.
func RecordJobsPruned(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.jobsPruned.Add(float64(n))
	}
}

// UpdateRepositoryShardCount sets the number of job store shards.
func UpdateRepositoryShardCount(count int) {
	if globalManager.enabled {
		globalManager.repoShardCount.Set(float64(count))
	}
}

// UpdateRepositoryRecordsPerShard sets the number of jobs in shard.
func UpdateRepositoryRecordsPerShard(shard int, count int) {
	if globalManager.enabled {
		globalManager.repoPerShard.WithLabelValues(strconv.Itoa(shard)).Set(float64(count))
	}
}

// RecordRepositoryUpdateLatency records job store write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.repoUpdateLat.Observe(latencyMs)
	}
}

// RecordRepositoryQueryLatency records job store read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.repoQueryLat.Observe(latencyMs)
	}
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if globalManager.enabled {
		globalManager.queueUtilization.Set(utilization)
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueEnqueueErrs.Inc()
	}
}

// RecordQueueProcessingLatency records enqueue latency in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.queueLatency.Observe(latencyMs)
	}
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	if globalManager.enabled {
		globalManager.workerActiveCount.Set(float64(count))
	}
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	if globalManager.enabled {
		globalManager.workerIdleCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records job processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the failed job counter.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the heap memory in use in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// RefreshInterval returns how often gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
