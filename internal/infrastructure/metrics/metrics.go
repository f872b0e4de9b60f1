// Package metrics exposes Prometheus instrumentation for the HTTP
// surface and the document pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all registered collectors.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TransactionsFinalized *prometheus.CounterVec
	TransactionsVoided    *prometheus.CounterVec
	ReturnsProcessed      *prometheus.CounterVec

	StockAdjustments  prometheus.Counter
	InsufficientStock prometheus.Counter

	DBOperationDuration *prometheus.HistogramVec
	DBPoolAcquired      prometheus.Gauge
	DBPoolIdle          prometheus.Gauge
}

// New registers collectors with the given name prefix on the default
// registry.
func New(prefix string) *Metrics {
	if prefix == "" {
		prefix = "comercio"
	}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		TransactionsFinalized: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_transactions_finalized_total",
				Help: "Total number of finalized transactions",
			},
			[]string{"kind"},
		),
		TransactionsVoided: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_transactions_voided_total",
				Help: "Total number of voided transactions",
			},
			[]string{"kind"},
		),
		ReturnsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_returns_processed_total",
				Help: "Total number of processed returns",
			},
			[]string{"reason"},
		),
		StockAdjustments: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_stock_adjustments_total",
				Help: "Total number of stock adjustments",
			},
		),
		InsufficientStock: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_insufficient_stock_total",
				Help: "Total number of rejected stock movements",
			},
		),
		DBOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		DBPoolAcquired: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_db_pool_acquired_conns",
				Help: "Acquired connections in the database pool",
			},
		),
		DBPoolIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_db_pool_idle_conns",
				Help: "Idle connections in the database pool",
			},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a
// database operation when called.
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		m.DBOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}
