package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitKafkaProducer_NoBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka-init")

	producer, err := initKafkaProducer(nil, logger)
	if err != nil {
		t.Fatalf("expected no error without brokers, got %v", err)
	}
	if producer != nil {
		t.Error("expected nil producer without brokers")
	}

	producer, err = initKafkaProducer([]string{}, logger)
	if err != nil {
		t.Fatalf("expected no error for empty broker list, got %v", err)
	}
	if producer != nil {
		t.Error("expected nil producer for empty broker list")
	}
}

func TestInitKafkaProducer_UnreachableBroker(t *testing.T) {
	logger := log.WithField("test", "kafka-init")

	producer, err := initKafkaProducer([]string{"127.0.0.1:1"}, logger)
	if err == nil {
		closeKafka(producer, logger)
		t.Fatal("expected error for unreachable broker")
	}
	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestCloseKafka_Nil(_ *testing.T) {
	// Не должно паниковать
	closeKafka(nil, log.WithField("test", "kafka-close"))
}
