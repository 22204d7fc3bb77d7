package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndSucceed()

	event := NewOrderPlacedEvent("order-123", "customer-1", 3000, []OrderEventItem{
		{ProductID: "product-1", Qty: 3, PriceMinor: 1000},
	})

	err := producer.PublishEvent(TopicOrderEvents, "order-123", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderPlacedEvent("order-123", "customer-1", 0, nil)

	err := producer.PublishEvent(TopicOrderEvents, "order-123", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderPlacedEvent(t *testing.T) {
	event := NewOrderPlacedEvent("order-123", "customer-1", 3250, []OrderEventItem{
		{ProductID: "product-1", Qty: 3, PriceMinor: 1000},
		{ProductID: "product-2", Qty: 1, PriceMinor: 250},
	})

	if event.EventType != EventTypeOrderPlaced {
		t.Errorf("expected event type %s, got %s", EventTypeOrderPlaced, event.EventType)
	}
	if event.OrderID != "order-123" {
		t.Errorf("expected order id order-123, got %s", event.OrderID)
	}
	if event.CustomerID != "customer-1" {
		t.Errorf("expected customer id customer-1, got %s", event.CustomerID)
	}
	if event.TotalMinor != 3250 {
		t.Errorf("expected total 3250, got %d", event.TotalMinor)
	}
	if len(event.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(event.Items))
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestNewCustomerRegisteredEvent(t *testing.T) {
	event := NewCustomerRegisteredEvent("customer-1", "ivan@example.com")

	if event.EventType != EventTypeCustomerRegistered {
		t.Errorf("expected event type %s, got %s", EventTypeCustomerRegistered, event.EventType)
	}
	if event.CustomerID != "customer-1" {
		t.Errorf("expected customer id customer-1, got %s", event.CustomerID)
	}
	if event.Email != "ivan@example.com" {
		t.Errorf("expected email ivan@example.com, got %s", event.Email)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}
