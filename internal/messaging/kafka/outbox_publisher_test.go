package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func paidEvent() domain.OutboxMessage {
	return domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: domain.AggregateOrder,
		AggregateID:   "42",
		EventType:     domain.EventOrderPaid,
		Payload:       []byte(`{"order_id":42,"status":"paid"}`),
	}
}

func TestOutboxPublisher_Publish(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEvents {
			return fmt.Errorf("unexpected topic %s", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "42" {
			return fmt.Errorf("unexpected key %s", key)
		}
		value, _ := msg.Value.Encode()
		var env Envelope
		if err := json.Unmarshal(value, &env); err != nil {
			return err
		}
		if env.EventType != domain.EventOrderPaid || string(env.Payload) != `{"order_id":42,"status":"paid"}` {
			return fmt.Errorf("unexpected envelope %+v", env)
		}
		for _, h := range msg.Headers {
			if string(h.Key) == HeaderEventType && string(h.Value) == domain.EventOrderPaid {
				return nil
			}
		}
		return fmt.Errorf("event type header is missing")
	})

	publisher := NewOutboxPublisher(newProducer(mockProducer, nil))
	if err := publisher.Publish(context.Background(), paidEvent()); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewDLQPublisher(newProducer(mockProducer, nil))
	if publisher.Topic() != TopicDeadLetterQueue {
		t.Fatalf("unexpected topic %s", publisher.Topic())
	}
	if err := publisher.Publish(context.Background(), paidEvent()); err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil)
	if err := publisher.Publish(context.Background(), domain.OutboxMessage{ID: "outbox-3"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}
