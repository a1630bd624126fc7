package domain

import "time"

// Агрегаты и типы событий, которые ядро пишет в outbox.
const (
	AggregateOrder = "order"

	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
)

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
