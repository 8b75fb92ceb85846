package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/iho/bookkeeper/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP request metrics.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with metrics collection.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.metrics.HTTPInFlight.Inc()
		defer m.metrics.HTTPInFlight.Dec()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		m.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath collapses resource IDs to keep label cardinality bounded.
// /api/v1/accounts/01ABC123/balance -> /api/v1/accounts/:id/balance
func normalizePath(path string) string {
	const (
		accountsPrefix     = "/api/v1/accounts/"
		transactionsPrefix = "/api/v1/transactions/"
	)

	switch {
	case len(path) > len(accountsPrefix) && path[:len(accountsPrefix)] == accountsPrefix:
		return accountsPrefix[:len(accountsPrefix)-1] + "/:id" + pathSuffix(path, len(accountsPrefix))

	case len(path) > len(transactionsPrefix) && path[:len(transactionsPrefix)] == transactionsPrefix:
		return transactionsPrefix[:len(transactionsPrefix)-1] + "/:id" + pathSuffix(path, len(transactionsPrefix))
	}

	return path
}

func pathSuffix(path string, from int) string {
	for i := from; i < len(path); i++ {
		if path[i] == '/' {
			return path[i:]
		}
	}

	return ""
}
