package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// IngestRunsTotal counts bulk ingestion runs by source scheme and outcome.
	IngestRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_ingest_runs_total",
		Help: "Total number of bulk product ingestion runs",
	}, []string{"source", "outcome"})

	// IngestRowsTotal counts rows handed to the bulk loader.
	IngestRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_ingest_rows_total",
		Help: "Total number of product rows loaded by bulk ingestion",
	})

	// IngestDuration records end-to-end ingestion latency.
	IngestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_ingest_duration_seconds",
		Help:    "Bulk ingestion duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	}, []string{"source"})

	// TempFileCleanupFailures counts ingestion temp files that could not be removed.
	TempFileCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_ingest_temp_cleanup_failures_total",
		Help: "Total number of ingestion temp files that could not be removed",
	})

	// ProductMutationsTotal counts product writes by operation.
	ProductMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_product_mutations_total",
		Help: "Total number of product create/update/delete operations",
	}, []string{"operation"})

	// DatabaseQueryLatency records repository latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordIngest records the outcome of one ingestion run.
func RecordIngest(source string, rows int64, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	IngestRunsTotal.WithLabelValues(source, outcome).Inc()
	IngestDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	if err == nil && rows > 0 {
		IngestRowsTotal.Add(float64(rows))
	}
}
