package production

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/comalice/statematch"
)

const namespace = "statematch"

// Metrics exports engine activity to Prometheus.
type Metrics struct {
	transitions   *prometheus.CounterVec
	suppressed    *prometheus.CounterVec
	phaseFailures *prometheus.CounterVec
	tickDuration  prometheus.Histogram
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Applied state transitions, including initial entries.",
		}, []string{"state_type", "initial"}),
		suppressed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_suppressed_total",
			Help:      "Pending transitions to the current value that were consumed without running phases.",
		}, []string{"state_type"}),
		phaseFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_failures_total",
			Help:      "Lifecycle phases in which at least one system returned an error.",
		}, []string{"state_type", "phase"}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one realtime tick.",
			Buckets:   []float64{.0001, .0005, .001, .0025, .005, .01, .0167, .025, .05, .1},
		}),
	}
}

// TransitionApplied counts applied transitions by state type and initial flag.
func (m *Metrics) TransitionApplied(_ context.Context, rec statematch.TransitionRecord) {
	m.transitions.WithLabelValues(rec.StateType, strconv.FormatBool(rec.Initial)).Inc()
}

// TransitionSuppressed counts pending requests consumed without a change.
func (m *Metrics) TransitionSuppressed(_ context.Context, stateType string) {
	m.suppressed.WithLabelValues(stateType).Inc()
}

// PhaseFailed counts failed phases by state type and phase.
func (m *Metrics) PhaseFailed(_ context.Context, phase statematch.Phase, stateType string, _ error) {
	m.phaseFailures.WithLabelValues(stateType, string(phase)).Inc()
}

// ObserveTick records one tick. Its signature matches realtime.Config.OnTick.
func (m *Metrics) ObserveTick(_ uint64, d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}
