package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Posting metrics
	TransactionsPosted prometheus.Counter
	TransactionsVoided prometheus.Counter
	PostingDuration    prometheus.Histogram
	PostingErrors      *prometheus.CounterVec
	EntriesPerPosting  prometheus.Histogram

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Balance metrics
	BalanceReads              prometheus.Counter
	ReconciliationRuns        prometheus.Counter
	ReconciliationDivergences prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TransactionsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeper_transactions_posted_total",
			Help: "Total number of transactions posted",
		}),
		TransactionsVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeper_transactions_voided_total",
			Help: "Total number of transactions voided",
		}),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookkeeper_posting_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		PostingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_posting_errors_total",
				Help: "Total number of posting errors by type",
			},
			[]string{"error_type"},
		),
		EntriesPerPosting: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bookkeeper_entries_per_posting",
			Help:    "Number of entries per posted transaction",
			Buckets: []float64{2, 4, 8, 16, 32, 64},
		}),
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeper_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_account_operations_total",
				Help: "Total number of account operations by type",
			},
			[]string{"operation"},
		),
		BalanceReads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeper_balance_reads_total",
			Help: "Total number of balance queries",
		}),
		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeper_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		}),
		ReconciliationDivergences: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bookkeeper_reconciliation_divergences",
			Help: "Balance divergences found by the last reconciliation run",
		}),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookkeeper_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookkeeper_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "bookkeeper_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
	}
}
