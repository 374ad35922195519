// Package metrics provides Prometheus metrics for counting operations.
//
// # Basic Usage
//
//	timer := metrics.NewTimer()
//	count := scan(reader)
//	metrics.ObserveCount("stream", count, timer.Stop())
//
//	// after the command finishes
//	_ = metrics.WriteTextfile("/var/lib/node_exporter/csvcount.prom")
//
// Collectors are registered on the default registry, so any HTTP handler
// serving prometheus.DefaultGatherer exposes them too.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StrategySelections counts which strategy satisfied each operation.
	// Labels: strategy (index, stream, accelerated)
	StrategySelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvcount_strategy_total",
			Help: "Number of counting operations by the strategy that produced the result",
		},
		[]string{"strategy"},
	)

	// Fallbacks counts accelerated runs that were redone by the streaming reader.
	// Labels: reason (empty_result, non_integer)
	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvcount_fallbacks_total",
			Help: "Number of accelerated counts that fell back to the streaming reader",
		},
		[]string{"reason"},
	)

	// IndexProbes counts index probe outcomes.
	// Labels: outcome (hit, absent, unavailable)
	IndexProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvcount_index_probes_total",
			Help: "Number of index probes by outcome",
		},
		[]string{"outcome"},
	)

	// RecordsCounted sums the records reported per strategy.
	RecordsCounted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csvcount_records_total",
			Help: "Total number of records reported",
		},
		[]string{"strategy"},
	)

	// Duration tracks how long each strategy took.
	Duration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "csvcount_duration_seconds",
			Help: "Counting duration in seconds by strategy",
			Buckets: []float64{
				0.001, // index lookups
				0.01,
				0.1,
				1,
				10,
				60,
				600, // multi-gigabyte streaming scans
			},
		},
		[]string{"strategy"},
	)

	// TempFileCleanupFailures counts materialized files that could not be removed.
	TempFileCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "csvcount_tempfile_cleanup_failures_total",
			Help: "Number of materialized standard input files that could not be removed",
		},
	)
)

// ObserveCount records one finished counting operation
func ObserveCount(strategy string, count uint64, elapsed time.Duration) {
	StrategySelections.WithLabelValues(strategy).Inc()
	RecordsCounted.WithLabelValues(strategy).Add(float64(count))
	Duration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric of the default registry to path in
// the Prometheus text format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed time since the timer started.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
