package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EvidenceIngestedTotal *prometheus.CounterVec
	PayloadCacheHits      prometheus.Counter
	PayloadCacheMisses    prometheus.Counter
	FetchFailuresTotal    *prometheus.CounterVec
	ReplayRunsTotal       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EvidenceIngestedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "masterfile_evidence_ingested_total",
			Help: "Total evidence records ingested, by provider",
		}, []string{"provider"}),
		PayloadCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "masterfile_evidence_payload_cache_hits_total",
			Help: "Total payload cache hits during registry fetches",
		}),
		PayloadCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "masterfile_evidence_payload_cache_misses_total",
			Help: "Total payload cache misses during registry fetches",
		}),
		FetchFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "masterfile_evidence_fetch_failures_total",
			Help: "Total registry fetch failures, by provider and category",
		}, []string{"provider", "category"}),
		ReplayRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "masterfile_evidence_replay_runs_total",
			Help: "Total evidence replay runs",
		}),
	}
}

// The increment methods tolerate a nil receiver so services constructed
// without WithMetrics skip recording entirely. Collectors register on the
// default registry, so New must run at most once per process.

func (m *Metrics) IncrementIngested(provider string) {
	if m == nil {
		return
	}
	m.EvidenceIngestedTotal.WithLabelValues(provider).Inc()
}

func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.PayloadCacheHits.Inc()
}

func (m *Metrics) IncrementCacheMiss() {
	if m == nil {
		return
	}
	m.PayloadCacheMisses.Inc()
}

func (m *Metrics) IncrementFetchFailure(provider, category string) {
	if m == nil {
		return
	}
	m.FetchFailuresTotal.WithLabelValues(provider, category).Inc()
}

func (m *Metrics) IncrementReplayRuns() {
	if m == nil {
		return
	}
	m.ReplayRunsTotal.Inc()
}
