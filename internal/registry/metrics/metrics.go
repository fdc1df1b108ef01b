package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry client.
type Metrics struct {
	// Attempt outcomes by provider and result
	Attempts *prometheus.CounterVec

	// Per-attempt latency by provider
	AttemptLatency *prometheus.HistogramVec

	// Circuit breaker openings by provider
	CircuitOpens *prometheus.CounterVec

	// Time spent blocked on the per-provider rate limiter
	RateLimitWait *prometheus.HistogramVec
}

// New creates a Metrics instance with all registry client metrics registered.
func New() *Metrics {
	return &Metrics{
		Attempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetgate_registry_attempts_total",
			Help: "Provider fetch attempts by provider and result",
		}, []string{"provider", "result"}), // result: "success", "failure", "circuit_open"

		AttemptLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetgate_registry_attempt_duration_seconds",
			Help:    "Duration of individual provider fetch attempts",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),

		CircuitOpens: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetgate_registry_circuit_opens_total",
			Help: "Circuit breaker open transitions by provider",
		}, []string{"provider"}),

		RateLimitWait: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleetgate_registry_ratelimit_wait_seconds",
			Help:    "Time callers spent blocked on the per-provider request budget",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 5, 15, 60},
		}, []string{"provider"}),
	}
}

// IncAttempt records an attempt outcome.
func (m *Metrics) IncAttempt(provider, result string) {
	if m != nil {
		m.Attempts.WithLabelValues(provider, result).Inc()
	}
}

// ObserveAttempt records one attempt's duration.
func (m *Metrics) ObserveAttempt(provider string, d time.Duration) {
	if m != nil {
		m.AttemptLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// IncCircuitOpen records a breaker opening.
func (m *Metrics) IncCircuitOpen(provider string) {
	if m != nil {
		m.CircuitOpens.WithLabelValues(provider).Inc()
	}
}

// ObserveRateLimitWait records time spent waiting for budget.
func (m *Metrics) ObserveRateLimitWait(provider string, d time.Duration) {
	if m != nil {
		m.RateLimitWait.WithLabelValues(provider).Observe(d.Seconds())
	}
}
