package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server-wide Prometheus metrics. Module-specific metrics
// live next to their module (see internal/policy/metrics).
type Metrics struct {
	CheckIns        prometheus.Counter
	FactsIngested   prometheus.Counter
	ScopeDenials    prometheus.Counter
	RolloutCacheHit *prometheus.CounterVec
}

// New creates and registers all server-wide Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CheckIns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "muster_checkins_total",
			Help: "Total machine check-in requests processed",
		}),
		FactsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "muster_facts_ingested_total",
			Help: "Total facts created from client submissions",
		}),
		ScopeDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "muster_scope_denials_total",
			Help: "Total visibility assertions rejected",
		}),
		RolloutCacheHit: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "muster_rollout_cache_total",
			Help: "Rollout timeline cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "bypass"
	}
}
