package catalog

import (
	"github.com/prometheus/client_golang/prometheus"

	"MiniPOS/pkg/kit"
)

type Metrics struct {
	Products        prometheus.Gauge
	PersistFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: kit.Namespace,
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Products currently in the catalog",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: kit.Namespace,
			Subsystem: "catalog",
			Name:      "persist_failures_total",
			Help:      "Catalog snapshot writes that failed",
		}),
	}
	reg.MustRegister(m.Products, m.PersistFailures)
	return m
}

func (m *Metrics) setProducts(n int) {
	if m != nil {
		m.Products.Set(float64(n))
	}
}

func (m *Metrics) persistFailed() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}
