package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry *prometheus.Registry

	// Citypage document fetches by outcome. Watch for: not_found after a site layout change.
	FetchTotal *prometheus.CounterVec

	// Citypage fetch latency. Watch for: p95 growth on the datamart.
	FetchDuration *prometheus.HistogramVec

	// Size of fetched documents. Watch for: sudden drops (truncated or placeholder documents).
	FetchBytes prometheus.Histogram

	// Document mapping outcomes (success, malformed, invalid_timestamp).
	MappingTotal *prometheus.CounterVec

	// Queries by output mode (json, temperature, relative_humidity) and result.
	QueriesTotal *prometheus.CounterVec

	// Failed runs by error category. Watch for: not_found spikes (station retired) or malformed (schema change).
	RunErrorsTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citypageFetchTotal",
			Help: "Total number of citypage document fetches",
		},
		[]string{"status"},
	)
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "citypageFetchDurationSeconds",
			Help:    "Citypage fetch latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)
	FetchBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "citypageFetchBytes",
			Help:    "Size in bytes of fetched citypage documents",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 8),
		},
	)
	MappingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documentMappingTotal",
			Help: "Total number of documents mapped, by result",
		},
		[]string{"result"},
	)
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conditionsQueriesTotal",
			Help: "Total number of current-conditions queries, by mode and result",
		},
		[]string{"mode", "result"},
	)

	RunErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runErrorsTotal",
			Help: "Total number of failed runs, by error category",
		},
		[]string{"category"},
	)

	registry.MustRegister(FetchTotal, FetchDuration, FetchBytes, MappingTotal, QueriesTotal, RunErrorsTotal)
}

// RecordQuery counts one query for mode; result is "success" when err is nil.
func RecordQuery(mode string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	QueriesTotal.WithLabelValues(mode, result).Inc()
}

// Gatherer exposes the registry for tests and exporters.
func Gatherer() prometheus.Gatherer {
	return registry
}

// WriteTextfile writes all metrics in text exposition format to path, for a
// node_exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
