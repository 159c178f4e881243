package ranking

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRequestsTotal        = "ranking_requests_total"
	MetricCandidatesConsidered = "ranking_candidates_considered"
	MetricDuration             = "ranking_duration_seconds"
)

// Metrics contains Prometheus metrics for the ranking orchestrator.
type Metrics struct {
	requestsTotal        *prometheus.CounterVec
	candidatesConsidered *prometheus.HistogramVec
	duration             *prometheus.HistogramVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRequestsTotal,
			Help: "Total ranking passes, labeled by target kind and severity",
		}, []string{"kind", "severity"}),
		candidatesConsidered: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricCandidatesConsidered,
			Help:    "Candidate pool size per ranking pass",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricDuration,
			Help:    "Ranking pass duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.requestsTotal,
		m.candidatesConsidered,
		m.duration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObservePass records one completed ranking pass.
func (m *Metrics) ObservePass(kind, severity string, candidates int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(kind, severity).Inc()
	m.candidatesConsidered.WithLabelValues(kind).Observe(float64(candidates))
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
