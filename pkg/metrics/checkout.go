package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics records checkout attempts and order-number allocation
// collisions. Collisions are expected to be rare; a sustained rate points at
// either very high concurrency or an allocator bug.
type CheckoutMetrics struct {
	attempts   *prometheus.CounterVec
	collisions prometheus.Counter
	exhausted  prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout executions by outcome.",
	}, []string{"outcome"})
	collisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_number_collisions_total",
		Help: "Order creations rejected by the order_number unique constraint.",
	})
	exhausted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_number_retries_exhausted_total",
		Help: "Checkouts that failed after exhausting the allocation retry budget.",
	})
	reg.MustRegister(attempts, collisions, exhausted)
	return &CheckoutMetrics{
		attempts:   attempts,
		collisions: collisions,
		exhausted:  exhausted,
	}
}

// IncAttempt increments the attempt counter for the given outcome.
func (c *CheckoutMetrics) IncAttempt(outcome string) {
	if c == nil || c.attempts == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	c.attempts.WithLabelValues(outcome).Inc()
}

// IncCollision increments the order-number collision counter.
func (c *CheckoutMetrics) IncCollision() {
	if c == nil || c.collisions == nil {
		return
	}
	c.collisions.Inc()
}

// IncExhausted increments the retry-budget-exhausted counter.
func (c *CheckoutMetrics) IncExhausted() {
	if c == nil || c.exhausted == nil {
		return
	}
	c.exhausted.Inc()
}
