package metrics

import "github.com/prometheus/client_golang/prometheus"

// Aggregation and dispatch Prometheus metrics.
var (
	MergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shardagg",
			Name:      "merges_total",
			Help:      "Total number of aggregation joins by method",
		},
		[]string{"method", "status"},
	)

	WorkersPerMerge = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shardagg",
			Name:      "workers_per_merge",
			Help:      "Number of worker results that took part in a primary merge",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
	)

	EarlyStopsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shardagg",
			Name:      "merge_early_stops_total",
			Help:      "Merges that ran out of worker documents before filling the page",
		},
	)

	UnmatchedSlotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shardagg",
			Name:      "unmatched_slots_total",
			Help:      "Page slots left empty because no worker returned data for them",
		},
		[]string{"method"},
	)

	WorkerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shardagg",
			Name:      "worker_requests_total",
			Help:      "Total number of worker calls",
		},
		[]string{"worker", "phase", "status"},
	)

	WorkerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shardagg",
			Name:      "worker_request_duration_seconds",
			Help:      "Worker call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"phase"},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shardagg",
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses by tier",
		},
		[]string{"tier", "result"}, // "local"/"store", "hit"/"miss"
	)
)

var aggMetricsRegistered bool

// RegisterAggregationMetrics registers aggregation, dispatch and cache metrics.
// Must be called once from main.
func RegisterAggregationMetrics() {
	if aggMetricsRegistered {
		return
	}
	prometheus.MustRegister(MergesTotal)
	prometheus.MustRegister(WorkersPerMerge)
	prometheus.MustRegister(EarlyStopsTotal)
	prometheus.MustRegister(UnmatchedSlotsTotal)
	prometheus.MustRegister(WorkerRequestsTotal)
	prometheus.MustRegister(WorkerRequestDuration)
	prometheus.MustRegister(ResultCacheTotal)
	aggMetricsRegistered = true
}
