package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EvaluationsTotal    *prometheus.CounterVec
	AppliesTotal        prometheus.Counter
	ConflictRetriesTotal prometheus.Counter
	RowsCreatedTotal    prometheus.Counter
	OverridesTotal      prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "masterfile_reconcile_evaluations_total",
			Help: "Total candidate evaluations, by resulting action",
		}, []string{"action"}),
		AppliesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "masterfile_reconcile_applies_total",
			Help: "Total field writes applied",
		}),
		ConflictRetriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "masterfile_reconcile_conflict_retries_total",
			Help: "Total optimistic-concurrency retries during apply",
		}),
		RowsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "masterfile_reconcile_rows_created_total",
			Help: "Total repeating rows created",
		}),
		OverridesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "masterfile_reconcile_manual_overrides_total",
			Help: "Total manual overrides applied",
		}),
	}
}

// The increment methods tolerate a nil receiver so services constructed
// without WithMetrics skip recording entirely. Collectors register on the
// default registry, so New must run at most once per process.

func (m *Metrics) IncrementEvaluation(action string) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementApplies() {
	if m == nil {
		return
	}
	m.AppliesTotal.Inc()
}

func (m *Metrics) IncrementConflictRetries() {
	if m == nil {
		return
	}
	m.ConflictRetriesTotal.Inc()
}

func (m *Metrics) IncrementRowsCreated() {
	if m == nil {
		return
	}
	m.RowsCreatedTotal.Inc()
}

func (m *Metrics) IncrementOverrides() {
	if m == nil {
		return
	}
	m.OverridesTotal.Inc()
}
