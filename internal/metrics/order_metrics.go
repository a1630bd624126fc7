package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы подтверждения оплаты для метки result.
const (
	ConfirmResultPaid     = "paid"
	ConfirmResultPending  = "pending"
	ConfirmResultNoop     = "noop"
	ConfirmResultMismatch = "mismatch"
	ConfirmResultRejected = "rejected"
	ConfirmResultError    = "error"
)

// OrderMetrics: метрики checkout и подтверждения оплаты.
type OrderMetrics struct {
	checkouts        *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	checkoutAmount   *prometheus.CounterVec
	confirmations    *prometheus.CounterVec
	cartCache        *prometheus.CounterVec
}

// NewOrderMetrics регистрирует метрики в DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в переданном registerer (удобно для тестов).
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	return &OrderMetrics{
		checkouts: register(registerer, "storefront_checkouts_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Checkout attempts grouped by result.",
		}, []string{"result"})),
		checkoutDuration: register(registerer, "storefront_checkout_duration_seconds", prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Checkout latency including the payment authority call.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})),
		checkoutAmount: register(registerer, "storefront_checkout_amount_minor_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkout_amount_minor_total",
			Help: "Sum of created order totals in minor units.",
		}, []string{"currency"})),
		confirmations: register(registerer, "storefront_payment_confirmations_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_payment_confirmations_total",
			Help: "Payment confirmations grouped by result.",
		}, []string{"result"})),
		cartCache: register(registerer, "storefront_cart_cache_requests_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_cache_requests_total",
			Help: "Cart cache lookups grouped by result.",
		}, []string{"result"})),
	}
}

// RecordCheckout фиксирует успешный checkout.
func (m *OrderMetrics) RecordCheckout(currency string, amountMinor int64, duration time.Duration) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues("created").Inc()
	m.checkoutAmount.WithLabelValues(currency).Add(float64(amountMinor))
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordCheckoutFailure фиксирует неудачный checkout с классом ошибки.
func (m *OrderMetrics) RecordCheckoutFailure(kind string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(kind).Inc()
}

// RecordConfirmation фиксирует исход подтверждения оплаты.
func (m *OrderMetrics) RecordConfirmation(result string) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(result).Inc()
}

// RecordCartCache фиксирует hit/miss/error кэша корзин.
func (m *OrderMetrics) RecordCartCache(result string) {
	if m == nil {
		return
	}
	m.cartCache.WithLabelValues(result).Inc()
}
