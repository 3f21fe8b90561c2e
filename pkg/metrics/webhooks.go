package metrics

import "github.com/prometheus/client_golang/prometheus"

// CallbackMetrics counts gateway callback outcomes per provider.
type CallbackMetrics struct {
	received *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewCallbackMetrics registers callback counters on the provided registerer.
func NewCallbackMetrics(reg prometheus.Registerer) *CallbackMetrics {
	if reg == nil {
		return &CallbackMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callback_received",
		Help: "Gateway payment callbacks received, by gateway and payment state.",
	}, []string{"gateway", "state"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callback_rejected",
		Help: "Gateway payment callbacks rejected before processing.",
	}, []string{"gateway", "reason"})
	reg.MustRegister(received, rejected)
	return &CallbackMetrics{received: received, rejected: rejected}
}

// IncReceived records an accepted callback for the gateway/state pair.
func (c *CallbackMetrics) IncReceived(gateway, state string) {
	if c == nil || c.received == nil {
		return
	}
	c.received.WithLabelValues(normalizeLabel(gateway), normalizeLabel(state)).Inc()
}

// IncRejected records a callback rejected during verification.
func (c *CallbackMetrics) IncRejected(gateway, reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(normalizeLabel(gateway), normalizeLabel(reason)).Inc()
}
