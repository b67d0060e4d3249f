// Package metrics provides observability for the lookup module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks resolution outcomes and latency.
type Metrics struct {
	// Resolutions by method and whether a ticker was found
	Resolutions *prometheus.CounterVec

	// Full pipeline latency
	Latency prometheus.Histogram

	// Multi-result searches served
	Searches prometheus.Counter
}

// New creates a Metrics instance with all lookup metrics registered.
func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sectracker_lookup_resolutions_total",
			Help: "Total resolutions by method and outcome",
		}, []string{"method", "outcome"}), // outcome: "resolved", "unresolved"

		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sectracker_lookup_duration_seconds",
			Help:    "Duration of a full resolution pipeline",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		Searches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sectracker_lookup_searches_total",
			Help: "Total multi-result search calls",
		}),
	}
}

// IncrementResolution records one finished resolution.
func (m *Metrics) IncrementResolution(method string, resolved bool) {
	if m != nil {
		outcome := "resolved"
		if !resolved {
			outcome = "unresolved"
		}
		m.Resolutions.WithLabelValues(method, outcome).Inc()
	}
}

// ObserveLatency records the duration of a full pipeline run.
func (m *Metrics) ObserveLatency(d time.Duration) {
	if m != nil {
		m.Latency.Observe(d.Seconds())
	}
}

// IncrementSearch records one search call.
func (m *Metrics) IncrementSearch() {
	if m != nil {
		m.Searches.Inc()
	}
}
