package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance engine.
type Metrics struct {
	// Decisions by status
	Decisions *prometheus.CounterVec

	// Block reasons by code prefix
	BlockReasons *prometheus.CounterVec

	// Full check latency including persistence
	CheckLatency prometheus.Histogram
}

// New creates a Metrics instance with all compliance metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetgate_compliance_decisions_total",
			Help: "Compliance decisions by status",
		}, []string{"status"}),

		BlockReasons: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetgate_compliance_block_reasons_total",
			Help: "Block reason occurrences by reason code",
		}, []string{"reason"}),

		CheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetgate_compliance_check_duration_seconds",
			Help:    "Duration of a full compliance check including cache upsert",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncDecision records a decision outcome.
func (m *Metrics) IncDecision(status string) {
	if m != nil {
		m.Decisions.WithLabelValues(status).Inc()
	}
}

// IncBlockReason records one block reason occurrence. Reason codes embed
// vehicle-specific values, so only the stable prefix becomes a label.
func (m *Metrics) IncBlockReason(reason string) {
	if m != nil {
		m.BlockReasons.WithLabelValues(reasonLabel(reason)).Inc()
	}
}

func reasonLabel(reason string) string {
	tokens := strings.Split(reason, "_")
	for i, token := range tokens {
		if strings.ContainsAny(token, "0123456789") {
			tokens = tokens[:i]
			break
		}
	}
	if len(tokens) == 0 {
		return "OTHER"
	}
	return strings.Join(tokens, "_")
}

// ObserveCheck records the duration of a full check.
func (m *Metrics) ObserveCheck(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}
