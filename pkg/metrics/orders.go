package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics tracks checkout outcomes.
type OrderMetrics struct {
	created  prometheus.Counter
	paid     prometheus.Counter
	rejected *prometheus.CounterVec
	value    prometheus.Histogram
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders persisted.",
	})
	paid := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_paid_total",
		Help:      "Payment confirmations recorded.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_rejected_total",
		Help:      "Order submissions rejected, by reason.",
	}, []string{"reason"})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_total_price",
		Help:      "Total price of created orders.",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})
	reg.MustRegister(created, paid, rejected, value)
	return &OrderMetrics{created: created, paid: paid, rejected: rejected, value: value}
}

func (m *OrderMetrics) OrderCreated(totalPrice float64) {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
	m.value.Observe(totalPrice)
}

func (m *OrderMetrics) OrderPaid() {
	if m == nil || m.paid == nil {
		return
	}
	m.paid.Inc()
}

func (m *OrderMetrics) OrderRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
