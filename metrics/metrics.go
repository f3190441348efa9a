// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HttpRequestsTotal counts requests by method, route pattern and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scfiles_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scfiles_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// CatalogOperations counts engine calls by slot, operation and outcome
	// ("ok", "not_found", "invalid", "error").
	CatalogOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scfiles_catalog_operations_total",
			Help: "Total number of catalog operations by slot, operation and outcome",
		},
		[]string{"slot", "op", "outcome"},
	)

	// SlotRecords tracks the record count of each slot after its last write.
	SlotRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scfiles_slot_records",
			Help: "Number of records in each slot after the last successful write",
		},
		[]string{"slot"},
	)

	LockWaitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scfiles_lock_wait_seconds",
			Help:    "Time spent waiting for a slot's exclusive section",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"slot"},
	)
)
