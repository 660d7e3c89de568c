package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the program rule engine collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	issues         *prometheus.CounterVec
	effectsApplied *prometheus.CounterVec
	effectsSkipped *prometheus.CounterVec
	batchDur       *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		issues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "programrule_issues_total",
				Help: "Program rule issues emitted",
			},
			[]string{"entity", "code", "type"},
		),
		effectsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "programrule_effects_applied_total",
				Help: "Rule effects routed to an implementer",
			},
			[]string{"entity", "action"},
		),
		effectsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "programrule_effects_skipped_total",
				Help: "Rule effects not routed to any implementer",
			},
			[]string{"entity", "reason"},
		),
		batchDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "programrule_batch_duration_seconds",
				Help:    "Time spent applying rule effects to one batch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
	}
	for _, c := range []prometheus.Collector{m.issues, m.effectsApplied, m.effectsSkipped, m.batchDur} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Issue counts one emitted issue.
func (m *Metrics) Issue(entity, code, issueType string) {
	if m == nil {
		return
	}
	m.issues.WithLabelValues(entity, code, issueType).Inc()
}

// EffectApplied counts one effect handed to an implementer.
func (m *Metrics) EffectApplied(entity, action string) {
	if m == nil {
		return
	}
	m.effectsApplied.WithLabelValues(entity, action).Inc()
}

// EffectSkipped counts one effect dropped before reaching an implementer.
func (m *Metrics) EffectSkipped(entity, reason string) {
	if m == nil {
		return
	}
	m.effectsSkipped.WithLabelValues(entity, reason).Inc()
}

// ObserveBatch records how long a batch took.
func (m *Metrics) ObserveBatch(entity string, d time.Duration) {
	if m == nil {
		return
	}
	m.batchDur.WithLabelValues(entity).Observe(d.Seconds())
}
