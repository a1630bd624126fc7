package domain

import "context"

// PaymentIntent: ответ платёжного провайдера: непрозрачные идентификаторы для клиентского flow.
type PaymentIntent struct {
	Handle       string
	ClientSecret string
}

// PaymentAuthority описывает внешний платёжный провайдер.
type PaymentAuthority interface {
	// CreatePaymentIntent создаёт платёжную сессию; ошибки конфигурации и сети
	// оборачиваются в ErrPaymentAuthorityUnavailable.
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (PaymentIntent, error)
}

// Geocoder превращает адрес в координаты.
type Geocoder interface {
	// Geocode возвращает ErrGeocoderUnavailable или ErrLocationNotFound при неудаче.
	Geocode(ctx context.Context, address string) (Coordinates, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}
