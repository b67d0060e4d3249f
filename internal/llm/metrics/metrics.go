// Package metrics provides observability for the generative-model client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for LLM usage and spend.
type Metrics struct {
	Requests *prometheus.CounterVec
	Tokens   *prometheus.CounterVec
	CostUSD  *prometheus.CounterVec
	Latency  prometheus.Histogram
}

// New creates and registers all LLM client metrics.
func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sectracker_llm_requests_total",
			Help: "Total completion requests by model and outcome",
		}, []string{"model", "status"}),

		Tokens: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sectracker_llm_tokens_total",
			Help: "Total tokens consumed by model and direction",
		}, []string{"model", "direction"}), // direction: "input", "output"

		CostUSD: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sectracker_llm_cost_usd_total",
			Help: "Estimated spend in USD by model",
		}, []string{"model"}),

		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sectracker_llm_request_duration_seconds",
			Help:    "Duration of completion requests",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveRequest records one completion round trip.
func (m *Metrics) ObserveRequest(model, status string, inputTokens, outputTokens int, cost float64, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(model, status).Inc()
	m.Tokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	m.Tokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	m.CostUSD.WithLabelValues(model).Add(cost)
	m.Latency.Observe(d.Seconds())
}
