package feedback

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricOutcomesTotal   = "feedback_outcomes_total"
	MetricSnapshotAppends = "feedback_snapshot_appends_total"
	MetricSnapshotErrors  = "feedback_snapshot_errors_total"
	MetricAdjustmentLevel = "feedback_adjustment_multiplier"
)

// Branch labels for the outcomes counter.
const (
	BranchPositive = "positive"
	BranchNegative = "negative"
	BranchNeutral  = "neutral"
)

// Metrics contains Prometheus metrics for the feedback loop.
type Metrics struct {
	outcomesTotal   *prometheus.CounterVec
	snapshotAppends prometheus.Counter
	snapshotErrors  prometheus.Counter
	adjustmentLevel *prometheus.GaugeVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricOutcomesTotal,
			Help: "Total feedback outcomes processed, labeled by branch",
		}, []string{"branch"}),
		snapshotAppends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSnapshotAppends,
			Help: "Total adjustment snapshots appended to the log",
		}),
		snapshotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSnapshotErrors,
			Help: "Total failures reading or appending adjustment snapshots",
		}),
		adjustmentLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricAdjustmentLevel,
			Help: "Current adjustment multiplier per ranking factor",
		}, []string{"factor"}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.outcomesTotal,
		m.snapshotAppends,
		m.snapshotErrors,
		m.adjustmentLevel,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveOutcome records one processed outcome on the given branch.
func (m *Metrics) ObserveOutcome(branch string) {
	m.outcomesTotal.WithLabelValues(branch).Inc()
}

// ObserveSnapshotAppend records a successful snapshot append and exports
// the resulting multipliers.
func (m *Metrics) ObserveSnapshotAppend(adj Adjustments) {
	m.snapshotAppends.Inc()
	for factor, mult := range adj {
		m.adjustmentLevel.WithLabelValues(factor).Set(mult)
	}
}

// ObserveSnapshotError records a snapshot read/append failure.
func (m *Metrics) ObserveSnapshotError() {
	m.snapshotErrors.Inc()
}
