package pool

import "github.com/prometheus/client_golang/prometheus"

// metricsSet holds the pool saturation gauges exposed to an operator's
// Prometheus registry, grounded in the joaobrasildev reference pool's
// ConnectionsActive/ConnectionsIdle/QueueLength instrumentation. Nil-safe:
// a pool built without WithMetrics carries a nil *metricsSet and every
// method below is a no-op on a nil receiver.
type metricsSet struct {
	size    prometheus.Gauge
	idle    prometheus.Gauge
	maxSize prometheus.Gauge
}

func newMetricsSet(poolName string) *metricsSet {
	labels := prometheus.Labels{"pool": poolName}
	return &metricsSet{
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sqlxpool",
			Name:        "connections_total",
			Help:        "Total live connections owned by the pool (idle + checked out).",
			ConstLabels: labels,
		}),
		idle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sqlxpool",
			Name:        "connections_idle",
			Help:        "Idle connections currently available for acquisition.",
			ConstLabels: labels,
		}),
		maxSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "sqlxpool",
			Name:        "max_size",
			Help:        "Configured maximum pool size.",
			ConstLabels: labels,
		}),
	}
}

func (m *metricsSet) register(reg prometheus.Registerer) error {
	if m == nil {
		return nil
	}
	for _, c := range []prometheus.Collector{m.size, m.idle, m.maxSize} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// update must be called with the pool's lock held (or from inside the
// loop scheduler's actor), since its callers pass it p.size and
// p.idle.Len() read at that point.
func (m *metricsSet) update(size, idleLen, maxSize int) {
	if m == nil {
		return
	}
	m.size.Set(float64(size))
	m.idle.Set(float64(idleLen))
	m.maxSize.Set(float64(maxSize))
}
