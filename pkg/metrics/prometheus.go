// Package metrics provides Prometheus metrics for the rating engine and the draft manager.
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
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Rating engine
	engineRuns        *prometheus.CounterVec
	engineRunDuration prometheus.Histogram
	athletesRated     prometheus.Gauge
	puntVariants      prometheus.Gauge
	scheduleWeeks     prometheus.Gauge
	feedRowsLoaded    *prometheus.CounterVec
	dataQuality       *prometheus.CounterVec

	// Draft order manager
	draftOps        *prometheus.CounterVec
	draftOpDuration *prometheus.HistogramVec

	// Worker pool
	workerJobs    prometheus.Counter
	workerLatency prometheus.Histogram
	queueDepth    prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // service registry, no default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hoopsrank",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // collector declarations
	auto := promauto.With(m.registry)

	m.engineRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "engine_runs_total",
		Help:        "Rating engine runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.engineRunDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "engine_run_duration_milliseconds",
		Help:        "Wall time of a full rating engine run",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.athletesRated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "athletes_rated",
		Help:        "Athletes in the latest ranked snapshot",
		ConstLabels: m.constLabels,
	})

	m.puntVariants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "punt_variants",
		Help:        "Punt variants computed in the latest snapshot",
		ConstLabels: m.constLabels,
	})

	m.scheduleWeeks = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "schedule_weeks",
		Help:        "Distinct calendar weeks in the loaded schedule",
		ConstLabels: m.constLabels,
	})

	m.feedRowsLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "feed_rows_loaded_total",
		Help:        "Rows accepted from the external feed by source",
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.dataQuality = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "data_quality_warnings_total",
		Help:        "Recovered data-quality issues by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.draftOps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "draft_operations_total",
		Help:        "Draft order operations by operation and result",
		ConstLabels: m.constLabels,
	}, []string{"op", "result"})

	m.draftOpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "draft_operation_duration_milliseconds",
		Help:        "Draft order operation latency including the store transaction",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.workerJobs = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_jobs_total",
		Help:        "Punt variant jobs completed by the worker pool",
		ConstLabels: m.constLabels,
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_job_latency_milliseconds",
		Help:        "Latency of a single punt variant computation",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "job_queue_depth",
		Help:        "Jobs waiting in the worker queue",
		ConstLabels: m.constLabels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "job_queue_capacity",
		Help:        "Configured capacity of the worker queue",
		ConstLabels: m.constLabels,
	})

	m.queueRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "job_queue_rejected_total",
		Help:        "Jobs refused by the worker queue by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})
}

// RecordEngineRun counts a finished engine run and observes its duration.
func (m *Manager) RecordEngineRun(result string, durationMs float64) {
	m.engineRuns.WithLabelValues(result).Inc()
	m.engineRunDuration.Observe(durationMs)
}

// UpdateSnapshotSize publishes the size of the latest snapshot.
func (m *Manager) UpdateSnapshotSize(athletes, puntVariants, weeks int) {
	m.athletesRated.Set(float64(athletes))
	m.puntVariants.Set(float64(puntVariants))
	m.scheduleWeeks.Set(float64(weeks))
}

// RecordFeedRows adds accepted feed rows for a source.
func (m *Manager) RecordFeedRows(source string, n int) {
	m.feedRowsLoaded.WithLabelValues(source).Add(float64(n))
}

// RecordDataQuality counts one recovered data-quality issue.
func (m *Manager) RecordDataQuality(kind string) {
	m.dataQuality.WithLabelValues(kind).Inc()
}

// RecordDraftOperation counts a draft operation and observes its latency.
func (m *Manager) RecordDraftOperation(op, result string, durationMs float64) {
	m.draftOps.WithLabelValues(op, result).Inc()
	m.draftOpDuration.WithLabelValues(op).Observe(durationMs)
}

// RecordWorkerJob counts a completed worker job.
func (m *Manager) RecordWorkerJob(latencyMs float64) {
	m.workerJobs.Inc()
	m.workerLatency.Observe(latencyMs)
}

// UpdateQueueDepth publishes the worker queue depth and capacity.
func (m *Manager) UpdateQueueDepth(size, capacity int) {
	m.queueDepth.Set(float64(size))
	m.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts a job the queue refused.
func (m *Manager) RecordQueueRejected(reason string) {
	m.queueRejected.WithLabelValues(reason).Inc()
}

// Package-level helpers delegate to the global manager.

// RecordEngineRun counts a finished engine run on the global manager.
func RecordEngineRun(result string, durationMs float64) {
	globalManager.RecordEngineRun(result, durationMs)
}

// UpdateSnapshotSize publishes snapshot sizes on the global manager.
func UpdateSnapshotSize(athletes, puntVariants, weeks int) {
	globalManager.UpdateSnapshotSize(athletes, puntVariants, weeks)
}

// RecordFeedRows adds accepted feed rows on the global manager.
func RecordFeedRows(source string, n int) {
	globalManager.RecordFeedRows(source, n)
}

// RecordDataQuality counts a data-quality issue on the global manager.
func RecordDataQuality(kind string) {
	globalManager.RecordDataQuality(kind)
}

// RecordDraftOperation counts a draft operation on the global manager.
func RecordDraftOperation(op, result string, durationMs float64) {
	globalManager.RecordDraftOperation(op, result, durationMs)
}

// RecordWorkerJob counts a worker job on the global manager.
func RecordWorkerJob(latencyMs float64) {
	globalManager.RecordWorkerJob(latencyMs)
}

// UpdateQueueDepth publishes queue depth on the global manager.
func UpdateQueueDepth(size, capacity int) {
	globalManager.UpdateQueueDepth(size, capacity)
}

// RecordQueueRejected counts a refused job on the global manager.
func RecordQueueRejected(reason string) {
	globalManager.RecordQueueRejected(reason)
}

// GetRegistry returns the registry holding the service collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
