package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the policy resolution module.
type Metrics struct {
	// Fact gathering latency by source (facts, project).
	GatherLatency *prometheus.HistogramVec

	// Resolutions by outcome ("assigned", "empty", "error").
	Resolutions *prometheus.CounterVec

	// Overall resolution latency including derivation.
	ResolveLatency prometheus.Histogram
}

// New creates a Metrics instance with all policy module metrics registered.
func New() *Metrics {
	return &Metrics{
		GatherLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "muster_policy_gather_duration_seconds",
			Help:    "Duration of machine state gathering by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"source"}),

		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "muster_policy_resolutions_total",
			Help: "Total policy resolutions by outcome",
		}, []string{"outcome"}),

		ResolveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "muster_policy_resolve_duration_seconds",
			Help:    "Duration of full policy resolution including derivation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveGatherLatency records the duration of one gather source.
func (m *Metrics) ObserveGatherLatency(source string, d time.Duration) {
	if m != nil {
		m.GatherLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementResolutions records a resolution outcome.
func (m *Metrics) IncrementResolutions(outcome string) {
	if m != nil {
		m.Resolutions.WithLabelValues(outcome).Inc()
	}
}

// ObserveResolveLatency records the total resolution duration.
func (m *Metrics) ObserveResolveLatency(d time.Duration) {
	if m != nil {
		m.ResolveLatency.Observe(d.Seconds())
	}
}
