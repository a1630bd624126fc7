package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()

	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)

	var total float64
	for metric := range ch {
		var m dto.Metric
		if err := metric.Write(&m); err != nil {
			t.Fatalf("write metric: %v", err)
		}
		total += m.GetCounter().GetValue()
	}
	return total
}

func TestOrderMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetricsWithRegisterer(reg)

	m.RecordCheckout("usd", 2500, 30*time.Millisecond)
	m.RecordCheckoutFailure("invalid")
	m.RecordConfirmation(ConfirmResultPaid)
	m.RecordConfirmation(ConfirmResultNoop)
	m.RecordCartCache("hit")

	if got := counterValue(t, m.checkouts.WithLabelValues("created")); got != 1 {
		t.Fatalf("expected 1 created checkout, got %v", got)
	}
	if got := counterValue(t, m.checkoutAmount.WithLabelValues("usd")); got != 2500 {
		t.Fatalf("expected amount 2500, got %v", got)
	}
	if got := counterValue(t, m.confirmations.WithLabelValues(ConfirmResultPaid)); got != 1 {
		t.Fatalf("expected 1 paid confirmation, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}

func TestOrderMetrics_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewOrderMetricsWithRegisterer(reg)
	second := NewOrderMetricsWithRegisterer(reg)

	first.RecordConfirmation(ConfirmResultPaid)
	if got := counterValue(t, second.confirmations.WithLabelValues(ConfirmResultPaid)); got != 1 {
		t.Fatalf("expected shared collector, got %v", got)
	}
}

func TestOrderMetrics_NilSafe(t *testing.T) {
	var m *OrderMetrics
	m.RecordCheckout("usd", 1, time.Millisecond)
	m.RecordConfirmation(ConfirmResultError)
	m.RecordCartCache("miss")

	var h *HTTPMetrics
	h.Started()
	h.Observe("GET", "/cart", 200, time.Millisecond)
}

func TestHTTPMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Started()
	m.Observe("POST", "/orders/checkout", 201, 10*time.Millisecond)
	m.Started()
	m.Observe("GET", "", 404, time.Millisecond)

	if got := counterValue(t, m.requests.WithLabelValues("POST", "/orders/checkout", "201")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
	if got := counterValue(t, m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Fatalf("expected unmatched route label, got %v", got)
	}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestOutboxMetrics(t *testing.T) {
	m := NewOutboxMetrics(prometheus.NewRegistry())

	m.RecordAttempt("sent")
	m.RecordAttempt("sent")
	m.SetBacklog(3, -time.Second)

	if got := counterValue(t, m.attempts.WithLabelValues("sent")); got != 2 {
		t.Fatalf("expected 2 sent attempts, got %v", got)
	}
	if got := gaugeValue(t, m.pending); got != 3 {
		t.Fatalf("expected pending 3, got %v", got)
	}
	if got := gaugeValue(t, m.oldestPending); got != 0 {
		t.Fatalf("negative age must clamp to 0, got %v", got)
	}
}

func TestCleanupMetrics(t *testing.T) {
	m := NewCleanupMetrics(prometheus.NewRegistry())

	m.AddDeleted(5)
	m.AddDeleted(0)
	m.RecordRun(nil, 5)

	if got := counterValue(t, m.deleted); got != 5 {
		t.Fatalf("expected 5 deleted, got %v", got)
	}
	if got := gaugeValue(t, m.lastDeleted); got != 5 {
		t.Fatalf("expected last deleted 5, got %v", got)
	}
	if got := counterValue(t, m.runs.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected 1 ok run, got %v", got)
	}

	var nilMetrics *CleanupMetrics
	nilMetrics.RecordRun(nil, 1)
	nilMetrics.AddDeleted(1)
}
