package app

import (
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/locator"
	"github.com/vladislavdragonenkov/storefront/internal/service/payment"
)

// newPaymentAuthority выбирает платёжного провайдера: Stripe, mock для разработки или заглушку.
// Stripe оборачивается circuit breaker: пока он открыт, checkout отказывает сразу.
func newPaymentAuthority(cfg Config, logger *log.Entry) domain.PaymentAuthority {
	key := strings.TrimSpace(cfg.StripeSecretKey)
	switch {
	case key != "":
		logger.Info("payments are processed by stripe")
		authority := payment.NewStripe(key, cfg.ExternalTimeout)
		if cfg.PaymentBreakerFailures <= 0 {
			return authority
		}
		breaker := payment.NewCircuitBreaker(cfg.PaymentBreakerFailures, cfg.PaymentBreakerReset, logger.WithField("layer", "payment-breaker"))
		return payment.NewGuarded(authority, breaker)
	case cfg.AllowMockPayments:
		logger.Warn("payments are processed by the in-process mock")
		return payment.NewMock()
	default:
		logger.Warn("payment authority is not configured, checkout is unavailable")
		return payment.Unconfigured{}
	}
}

// newGeocoder возвращает геокодер Google Maps или nil, если ключ не задан.
func newGeocoder(cfg Config, logger *log.Entry) domain.Geocoder {
	key := strings.TrimSpace(cfg.GoogleMapsAPIKey)
	if key == "" {
		logger.Info("geocoder is not configured, address search is unavailable")
		return nil
	}

	geocoder, err := locator.NewGoogleGeocoder(key, cfg.ExternalTimeout)
	if err != nil {
		logger.WithError(err).Warn("failed to create google geocoder, address search is unavailable")
		return nil
	}
	return geocoder
}

// jwtSecret возвращает секрет подписи токенов. Без настройки генерируется
// одноразовый секрет, и выданные токены перестают работать после рестарта.
func jwtSecret(cfg Config, logger *log.Entry) string {
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		return secret
	}
	logger.Warn("STOREFRONT_JWT_SECRET is not set, using an ephemeral secret")
	return uuid.NewString() + uuid.NewString()
}
