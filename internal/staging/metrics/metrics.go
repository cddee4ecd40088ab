package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the staging/approval pipeline.
type Metrics struct {
	// Submissions accepted into the review queue.
	Submissions prometheus.Counter
	// Resolutions by outcome: "approved", "rejected", "deleted".
	Resolutions *prometheus.CounterVec
	// Approve latency, covering the full transactional materialization.
	ApproveLatency prometheus.Histogram
}

// New creates and registers all staging pipeline metrics.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quiverbook_staging_submissions_total",
			Help: "Total staging score submissions accepted",
		}),
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "quiverbook_staging_resolutions_total",
			Help: "Total staging score resolutions by outcome",
		}, []string{"outcome"}),
		ApproveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiverbook_staging_approve_duration_seconds",
			Help:    "Duration of the approve transaction including score materialization",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementSubmissions records an accepted submission.
func (m *Metrics) IncrementSubmissions() {
	if m != nil {
		m.Submissions.Inc()
	}
}

// IncrementResolution records a resolution outcome.
func (m *Metrics) IncrementResolution(outcome string) {
	if m != nil {
		m.Resolutions.WithLabelValues(outcome).Inc()
	}
}

// ObserveApprove records the duration of an approve transaction.
// Call with time.Now() captured at the start.
func (m *Metrics) ObserveApprove(start time.Time) {
	if m != nil {
		m.ApproveLatency.Observe(time.Since(start).Seconds())
	}
}
