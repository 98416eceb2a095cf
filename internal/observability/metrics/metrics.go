package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the service counters scraped via /metrics.
type Metrics struct {
	ReconcileTotal    *prometheus.CounterVec
	ReconciledSensors prometheus.Counter
	DevicePollTotal   *prometheus.CounterVec
}

// New registers the counters on the given registerer. Pass
// prometheus.DefaultRegisterer in production wiring.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ReconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hogar",
			Name:      "sensor_reconcile_total",
			Help:      "Snapshot reconciliation runs by outcome.",
		}, []string{"outcome"}),
		ReconciledSensors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hogar",
			Name:      "sensor_reconciled_sensors_total",
			Help:      "Sensors upserted into snapshots by the reconciler.",
		}),
		DevicePollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hogar",
			Name:      "device_poll_total",
			Help:      "Device state polls by outcome.",
		}, []string{"outcome"}),
	}

	collectors := []prometheus.Collector{
		m.ReconcileTotal,
		m.ReconciledSensors,
		m.DevicePollTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = are
				continue
			}
			return nil, err
		}
	}

	return m, nil
}

// NewUnregistered builds counters without touching any registry, for tests.
func NewUnregistered() *Metrics {
	m, _ := New(prometheus.NewRegistry())
	return m
}

func (m *Metrics) ObserveReconcile(outcome string, sensors int) {
	if m == nil {
		return
	}
	m.ReconcileTotal.WithLabelValues(outcome).Inc()
	if sensors > 0 {
		m.ReconciledSensors.Add(float64(sensors))
	}
}

func (m *Metrics) ObserveDevicePoll(outcome string) {
	if m == nil {
		return
	}
	m.DevicePollTotal.WithLabelValues(outcome).Inc()
}
