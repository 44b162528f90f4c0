package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Indexing metrics
	FilesIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_files_indexed_total",
			Help: "Total number of files indexed",
		},
	)

	FilesPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_files_purged_total",
			Help: "Total number of files purged from the index",
		},
	)

	TokensIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_tokens_indexed_total",
			Help: "Total number of tokens read while indexing",
		},
	)

	IndexTerms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_index_terms",
			Help: "Number of distinct terms currently in the index",
		},
	)

	// Live maintenance metrics
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_indexing_queue_depth",
			Help: "Number of actions waiting in the indexing queue",
		},
	)

	WatchedRoots = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quill_watched_roots",
			Help: "Number of roots currently watched for changes",
		},
	)

	WatcherEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_watcher_events_total",
			Help: "Total number of debounced watcher events by kind",
		},
		[]string{"kind"},
	)

	// Operation latency metrics
	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quill_query_duration_seconds",
			Help:    "Time taken to answer a query in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	IndexFileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quill_index_file_duration_seconds",
			Help:    "Time taken to index a single file in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(FilesIndexed)
	prometheus.MustRegister(FilesPurged)
	prometheus.MustRegister(TokensIndexed)
	prometheus.MustRegister(IndexTerms)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(WatchedRoots)
	prometheus.MustRegister(WatcherEvents)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(IndexFileDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
