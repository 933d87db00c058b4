package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records counters for the order payment funnel.
type OrderMetrics struct {
	created             prometheus.Counter
	slipsUploaded       prometheus.Counter
	verified            prometheus.Counter
	completed           prometheus.Counter
	cancelled           prometheus.Counter
	notificationFailure *prometheus.CounterVec
}

// NewOrderMetrics registers the order funnel metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created at checkout.",
	})
	slipsUploaded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slips_uploaded_total",
		Help: "Payment slips uploaded by customers.",
	})
	verified := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_verified_total",
		Help: "Orders whose payment was verified by an admin.",
	})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Orders completed after PDF delivery.",
	})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled or rejected.",
	})
	notificationFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failure_total",
		Help: "Outbound notification failures by channel.",
	}, []string{"channel"})
	reg.MustRegister(created, slipsUploaded, verified, completed, cancelled, notificationFailure)
	return &OrderMetrics{
		created:             created,
		slipsUploaded:       slipsUploaded,
		verified:            verified,
		completed:           completed,
		cancelled:           cancelled,
		notificationFailure: notificationFailure,
	}
}

// IncCreated increments the created counter.
func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

// IncSlipUploaded increments the slip upload counter.
func (m *OrderMetrics) IncSlipUploaded() {
	if m == nil || m.slipsUploaded == nil {
		return
	}
	m.slipsUploaded.Inc()
}

// IncVerified increments the verified counter.
func (m *OrderMetrics) IncVerified() {
	if m == nil || m.verified == nil {
		return
	}
	m.verified.Inc()
}

// IncCompleted increments the completed counter.
func (m *OrderMetrics) IncCompleted() {
	if m == nil || m.completed == nil {
		return
	}
	m.completed.Inc()
}

// IncCancelled increments the cancelled counter.
func (m *OrderMetrics) IncCancelled() {
	if m == nil || m.cancelled == nil {
		return
	}
	m.cancelled.Inc()
}

// IncNotificationFailure increments the failure counter for the named channel.
func (m *OrderMetrics) IncNotificationFailure(channel string) {
	if m == nil || m.notificationFailure == nil {
		return
	}
	if channel == "" {
		channel = "unknown"
	}
	m.notificationFailure.WithLabelValues(channel).Inc()
}
