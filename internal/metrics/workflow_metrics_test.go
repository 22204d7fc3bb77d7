package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewWorkflowMetrics(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newWorkflowMetricsWithRegisterer should not return nil")
	}
	if metrics.ordersPlaced == nil {
		t.Error("ordersPlaced counter should not be nil")
	}
	if metrics.customersRegistered == nil {
		t.Error("customersRegistered counter should not be nil")
	}
	if metrics.requestsRejected == nil {
		t.Error("requestsRejected counter vec should not be nil")
	}
	if metrics.stockUnitsDecremented == nil {
		t.Error("stockUnitsDecremented counter should not be nil")
	}
	if metrics.placeOrderDuration == nil {
		t.Error("placeOrderDuration histogram should not be nil")
	}
	if metrics.outboxEvents == nil {
		t.Error("outboxEvents counter should not be nil")
	}
}

func TestNewWorkflowMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newWorkflowMetricsWithRegisterer(reg)
	second := newWorkflowMetricsWithRegisterer(reg)

	first.RecordOrderPlaced()
	second.RecordOrderPlaced()

	if got := counterValue(t, second.ordersPlaced); got != 2.0 {
		t.Fatalf("expected shared counter value 2.0, got %f", got)
	}
}

func TestRecordOrderPlaced(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderPlaced()
	metrics.RecordOrderPlaced()

	if got := counterValue(t, metrics.ordersPlaced); got != 2.0 {
		t.Fatalf("expected counter value 2.0, got %f", got)
	}
}

func TestRecordRejected(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordRejected(RejectReasonInsufficientStock)
	metrics.RecordRejected(RejectReasonInsufficientStock)
	metrics.RecordRejected(RejectReasonDuplicateEmail)

	stock := metrics.requestsRejected.WithLabelValues(RejectReasonInsufficientStock)
	if got := counterValue(t, stock); got != 2.0 {
		t.Fatalf("expected insufficient_stock counter 2.0, got %f", got)
	}

	email := metrics.requestsRejected.WithLabelValues(RejectReasonDuplicateEmail)
	if got := counterValue(t, email); got != 1.0 {
		t.Fatalf("expected duplicate_email counter 1.0, got %f", got)
	}
}

func TestRecordStockDecremented(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordStockDecremented(3)
	metrics.RecordStockDecremented(2)
	// Неположительные значения игнорируются.
	metrics.RecordStockDecremented(0)
	metrics.RecordStockDecremented(-5)

	if got := counterValue(t, metrics.stockUnitsDecremented); got != 5.0 {
		t.Fatalf("expected counter value 5.0, got %f", got)
	}
}

func TestRecordPlaceOrderDuration(t *testing.T) {
	metrics := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordPlaceOrderDuration(150 * time.Millisecond)

	metric := &dto.Metric{}
	if err := metrics.placeOrderDuration.Write(metric); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 1 {
		t.Fatalf("expected 1 observation, got %d", metric.Histogram.GetSampleCount())
	}
}

func counterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()

	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}
