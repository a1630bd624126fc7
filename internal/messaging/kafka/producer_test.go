package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestProducer_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndSucceed()

	producer := newProducer(mockProducer, nil)
	err := producer.Publish(context.Background(), TopicOrderEvents, "1", map[string]any{"order_id": 1}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Publish_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := newProducer(mockProducer, nil)
	if err := producer.Publish(context.Background(), TopicOrderEvents, "1", map[string]any{}, nil); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Publish_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := producer.Publish(ctx, TopicOrderEvents, "1", map[string]any{}, nil); err == nil {
		t.Fatal("expected context error")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	if !cfg.Producer.Idempotent || cfg.Net.MaxOpenRequests != 1 {
		t.Fatal("expected idempotent producer config")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config must be valid: %v", err)
	}
}

func TestNewProducer_InvalidBroker(t *testing.T) {
	if _, err := NewProducer([]string{"127.0.0.1:1"}, nil); err == nil {
		t.Fatal("expected connection error")
	}
}
