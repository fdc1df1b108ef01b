package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for batch verification runs.
type Metrics struct {
	Runs        prometheus.Counter
	Vehicles    *prometheus.CounterVec
	Tickets     prometheus.Counter
	RunDuration prometheus.Histogram
}

// New creates a Metrics instance with all batch metrics registered.
func New() *Metrics {
	return &Metrics{
		Runs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetgate_batch_runs_total",
			Help: "Completed batch verification runs",
		}),
		Vehicles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetgate_batch_vehicles_total",
			Help: "Vehicles processed by batch runs, by outcome",
		}, []string{"outcome"}),
		Tickets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetgate_batch_tickets_created_total",
			Help: "Tickets opened by batch runs",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetgate_batch_run_duration_seconds",
			Help:    "Wall-clock duration of a batch run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// IncRun records one completed run.
func (m *Metrics) IncRun() {
	if m != nil {
		m.Runs.Inc()
	}
}

// IncVehicle records one processed vehicle by outcome.
func (m *Metrics) IncVehicle(outcome string) {
	if m != nil {
		m.Vehicles.WithLabelValues(outcome).Inc()
	}
}

// AddTickets records tickets opened during a run.
func (m *Metrics) AddTickets(n int) {
	if m != nil && n > 0 {
		m.Tickets.Add(float64(n))
	}
}

// ObserveRun records a run's duration.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m != nil {
		m.RunDuration.Observe(d.Seconds())
	}
}
