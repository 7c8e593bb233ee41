package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Junction metrics
	JunctionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_junction_events_total",
			Help: "Total number of events published on a stream junction",
		},
		[]string{"stream", "mode"},
	)

	JunctionSubscribersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "corestream_junction_subscribers",
			Help: "Current number of subscribers on a stream junction",
		},
		[]string{"stream"},
	)

	JunctionFaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_junction_faults_total",
			Help: "Total number of subscriber faults routed by on_error action",
		},
		[]string{"stream", "action"},
	)

	// Back-pressure / pool metrics
	PoolBackpressureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_pool_backpressure_total",
			Help: "Total number of back-pressure events by pool and strategy",
		},
		[]string{"pool", "strategy"},
	)

	PoolDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_pool_dropped_total",
			Help: "Total number of events dropped under back-pressure",
		},
		[]string{"pool"},
	)

	PoolTimeoutTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_pool_timeout_total",
			Help: "Total number of enqueue attempts that timed out waiting for capacity",
		},
		[]string{"pool"},
	)

	PoolCircuitBreaksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_pool_circuit_breaks_total",
			Help: "Total number of times a pool's circuit breaker tripped open",
		},
		[]string{"pool"},
	)

	PoolHealthScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "corestream_pool_health_score",
			Help: "Current health score (0-100) of an object pool",
		},
		[]string{"pool"},
	)

	// Aggregation metrics
	AggregationFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_aggregation_flushes_total",
			Help: "Total number of bucket flushes by aggregation period",
		},
		[]string{"query", "period"},
	)

	AggregationQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corestream_aggregation_query_duration_seconds",
			Help:    "Time taken to answer an aggregation query",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// Window metrics
	WindowExpiredEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_window_expired_events_total",
			Help: "Total number of events expired out of a window",
		},
		[]string{"window"},
	)

	// Table metrics
	TableOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corestream_table_operations_total",
			Help: "Total number of table operations by kind",
		},
		[]string{"table", "op"},
	)

	// App runtime metrics
	AppsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corestream_apps_running",
			Help: "Current number of running applications",
		},
	)

	AppProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corestream_app_processing_duration_seconds",
			Help:    "Time taken for an application to process one input event",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"app"},
	)

	// Snapshot metrics
	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "corestream_snapshot_duration_seconds",
			Help:    "Time taken to snapshot an application's state",
			Buckets: prometheus.DefBuckets,
		},
	)

	RestoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "corestream_restore_duration_seconds",
			Help:    "Time taken to restore an application's state",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		JunctionEventsTotal,
		JunctionSubscribersTotal,
		JunctionFaultsTotal,
		PoolBackpressureTotal,
		PoolDroppedTotal,
		PoolTimeoutTotal,
		PoolCircuitBreaksTotal,
		PoolHealthScore,
		AggregationFlushesTotal,
		AggregationQueryDuration,
		WindowExpiredEventsTotal,
		TableOperationsTotal,
		AppsRunning,
		AppProcessingDuration,
		SnapshotDuration,
		RestoreDuration,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
