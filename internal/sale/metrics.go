package sale

import (
	"github.com/prometheus/client_golang/prometheus"

	"MiniPOS/pkg/kit"
)

type Metrics struct {
	Completed    prometheus.Counter
	Abandoned    prometheus.Counter
	ItemsSold    prometheus.Counter
	LowStock     prometheus.Counter
	Revenue      prometheus.Counter
	OpenSessions prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: kit.Namespace,
			Subsystem: "sale",
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		Completed:    counter("completed_total", "Sales completed with a bill"),
		Abandoned:    counter("abandoned_total", "Sales discarded without a bill"),
		ItemsSold:    counter("items_sold_total", "Units taken from stock by sales"),
		LowStock:     counter("low_stock_warnings_total", "Low-stock warnings raised"),
		Revenue:      counter("revenue_total", "Sum of completed bill totals"),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: kit.Namespace, Subsystem: "sale", Name: "open_sessions", Help: "Sales currently open"}),
	}
	reg.MustRegister(m.Completed, m.Abandoned, m.ItemsSold, m.LowStock, m.Revenue, m.OpenSessions)
	return m
}

func (m *Metrics) itemAdded(qty int) {
	if m != nil {
		m.ItemsSold.Add(float64(qty))
	}
}

func (m *Metrics) lowStock() {
	if m != nil {
		m.LowStock.Inc()
	}
}

func (m *Metrics) completed(total float64) {
	if m != nil {
		m.Completed.Inc()
		if total > 0 {
			m.Revenue.Add(total)
		}
	}
}

func (m *Metrics) abandoned() {
	if m != nil {
		m.Abandoned.Inc()
	}
}

func (m *Metrics) setOpen(n int) {
	if m != nil {
		m.OpenSessions.Set(float64(n))
	}
}
