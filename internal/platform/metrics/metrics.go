package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the transport-level Prometheus metrics. Module-specific
// counters live in each module's own metrics package.
type Metrics struct {
	HTTPLatency *prometheus.HistogramVec
}

// New creates and registers the transport metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiverbook_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// ObserveHTTPRequest records one request's latency. Nil-safe so handlers can
// run without metrics in tests.
func (m *Metrics) ObserveHTTPRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPLatency.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
