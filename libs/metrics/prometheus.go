// Package metrics provides Prometheus metrics for routegen batch runs
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_runs_total",
			Help: "Total number of batch runs",
		},
		[]string{"source", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routegen_run_duration_seconds",
			Help:    "Duration of batch runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
		},
		[]string{"source"},
	)

	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "routegen_phase_duration_seconds",
			Help:    "Time spent in each phase of a batch run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "phase"},
	)

	// Input metrics
	TableRowsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_table_rows_read_total",
			Help: "Total number of rows read from input tables",
		},
		[]string{"source", "table"},
	)

	// Expansion metrics
	ItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_items_processed_total",
			Help: "Total number of catalog items run through the expansion pipeline",
		},
		[]string{"source"},
	)

	ResultsProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_results_total",
			Help: "Total number of per-parent results produced",
		},
		[]string{"source"},
	)

	WarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_warnings_total",
			Help: "Total number of per-item warnings",
		},
		[]string{"source"},
	)

	DuplicateKeys = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_duplicate_keys_total",
			Help: "Total number of discarded catalog rows with an already seen part number",
		},
		[]string{"source"},
	)

	OrphanRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_orphan_records_total",
			Help: "Total number of consumption records whose parent key has no catalog item",
		},
		[]string{"source"},
	)

	// Output metrics
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routegen_rows_written_total",
			Help: "Total number of rows written to output tables",
		},
		[]string{"source", "table"},
	)
)

// RunMetrics provides a convenient interface for recording batch metrics
type RunMetrics struct {
	source string
}

// NewRunMetrics creates a new metrics recorder for runs reading from source
func NewRunMetrics(source string) *RunMetrics {
	return &RunMetrics{source: source}
}

// RecordRun records the outcome of a whole batch run
func (m *RunMetrics) RecordRun(status string, duration time.Duration) {
	RunsTotal.WithLabelValues(m.source, status).Inc()
	RunDuration.WithLabelValues(m.source).Observe(duration.Seconds())
}

// RecordPhase records how long a phase took
func (m *RunMetrics) RecordPhase(phase string, duration time.Duration) {
	PhaseDuration.WithLabelValues(m.source, phase).Observe(duration.Seconds())
}

// RecordTableRead records rows read from an input table
func (m *RunMetrics) RecordTableRead(table string, rows int) {
	TableRowsRead.WithLabelValues(m.source, table).Add(float64(rows))
}

// RecordAggregation records the counters of one aggregation pass
func (m *RunMetrics) RecordAggregation(items, results, warnings, duplicates, orphans int) {
	ItemsProcessed.WithLabelValues(m.source).Add(float64(items))
	ResultsProduced.WithLabelValues(m.source).Add(float64(results))
	WarningsTotal.WithLabelValues(m.source).Add(float64(warnings))
	DuplicateKeys.WithLabelValues(m.source).Add(float64(duplicates))
	OrphanRecords.WithLabelValues(m.source).Add(float64(orphans))
}

// RecordRowsWritten records rows persisted to an output table
func (m *RunMetrics) RecordRowsWritten(table string, rows int64) {
	RowsWritten.WithLabelValues(m.source, table).Add(float64(rows))
}

// WriteTextfile dumps the default registry in the node_exporter textfile format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Stop returns the elapsed time and can be used to stop timing
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
