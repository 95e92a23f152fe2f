package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the ledger's Prometheus collectors. A nil *Registry is a
// valid no-op so embedders can run without metrics.
type Registry struct {
	Operations   *prometheus.CounterVec
	OpDuration   *prometheus.HistogramVec
	ActiveQueues prometheus.Gauge
	PublishFails prometheus.Counter
}

// NewRegistry creates the collectors. Call MustRegister to attach them to a
// Prometheus registerer.
func NewRegistry() *Registry {
	return &Registry{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shadoweconomy_operations_total",
				Help: "Ledger operations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		OpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shadoweconomy_operation_duration_seconds",
				Help:    "Time from dequeue to resolution per operation kind",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"kind"},
		),
		ActiveQueues: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shadoweconomy_active_account_queues",
				Help: "Account queues currently holding pending operations",
			},
		),
		PublishFails: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shadoweconomy_publish_failures_total",
				Help: "Commit events that could not be published",
			},
		),
	}
}

// MustRegister attaches all collectors to reg.
func (r *Registry) MustRegister(reg prometheus.Registerer) {
	if r == nil {
		return
	}
	reg.MustRegister(r.Operations, r.OpDuration, r.ActiveQueues, r.PublishFails)
}

func (r *Registry) ObserveOperation(kind, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.Operations.WithLabelValues(kind, outcome).Inc()
	r.OpDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (r *Registry) QueueStarted() {
	if r == nil {
		return
	}
	r.ActiveQueues.Inc()
}

func (r *Registry) QueueStopped() {
	if r == nil {
		return
	}
	r.ActiveQueues.Dec()
}

func (r *Registry) PublishFailed() {
	if r == nil {
		return
	}
	r.PublishFails.Inc()
}
