package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/app"
)

const (
	envHTTPAddr                    = "STOREFRONT_HTTP_ADDR"
	envGRPCAddr                    = "STOREFRONT_GRPC_ADDR"
	envMetricsAddr                 = "STOREFRONT_METRICS_ADDR"
	envStorageDriver               = "STOREFRONT_STORAGE_DRIVER"
	envPostgresDSN                 = "STOREFRONT_POSTGRES_DSN"
	envPostgresAutoMigrate         = "STOREFRONT_POSTGRES_AUTO_MIGRATE"
	envSeedDemoData                = "STOREFRONT_SEED_DEMO_DATA"
	envRedisAddr                   = "STOREFRONT_REDIS_ADDR"
	envCartCacheTTL                = "STOREFRONT_CART_CACHE_TTL"
	envJWTSecret                   = "STOREFRONT_JWT_SECRET"
	envJWTTTL                      = "STOREFRONT_JWT_TTL"
	envStripeSecretKey             = "STRIPE_SECRET_KEY"
	envGoogleMapsAPIKey            = "GOOGLE_MAPS_API_KEY"
	envAllowMockPayments           = "STOREFRONT_ALLOW_MOCK_PAYMENTS"
	envExternalTimeout             = "STOREFRONT_EXTERNAL_TIMEOUT"
	envPaymentBreakerFailures      = "STOREFRONT_PAYMENT_BREAKER_FAILURES"
	envPaymentBreakerReset         = "STOREFRONT_PAYMENT_BREAKER_RESET"
	envKafkaBrokers                = "KAFKA_BROKERS"
	envOutboxPollInterval          = "STOREFRONT_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize             = "STOREFRONT_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts           = "STOREFRONT_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay            = "STOREFRONT_OUTBOX_RETRY_DELAY"
	envOutboxMaxPending            = "STOREFRONT_OUTBOX_MAX_PENDING"
	envIdempotencyTTL              = "STOREFRONT_IDEMPOTENCY_TTL"
	envIdempotencyCleanupInterval  = "STOREFRONT_IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "STOREFRONT_IDEMPOTENCY_CLEANUP_BATCH_SIZE"
	envLogLevel                    = "STOREFRONT_LOG_LEVEL"
	envLogFormat                   = "STOREFRONT_LOG_FORMAT"
)

// envLookup совместим с os.LookupEnv и подменяется в тестах.
type envLookup func(string) (string, bool)

func readConfig() (app.Config, []string) {
	return readConfigFromEnv(os.LookupEnv)
}

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректное значение не останавливает запуск: поле остаётся по умолчанию, а в ответ добавляется предупреждение.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, raw, err))
	}
	positive := func(v int) bool { return v > 0 }
	nonNegative := func(v int) bool { return v >= 0 }
	positiveDuration := func(v time.Duration) bool { return v > 0 }
	nonNegativeDuration := func(v time.Duration) bool { return v >= 0 }

	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setBool := func(key string, dst *bool) {
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		value, err := parseBool(raw)
		if err != nil {
			warn(key, raw, err)
			return
		}
		*dst = value
	}
	setInt := func(key string, dst *int, valid func(int) bool, msg string) {
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		value, err := parseInt(raw, valid, msg)
		if err != nil {
			warn(key, raw, err)
			return
		}
		*dst = value
	}
	setDuration := func(key string, dst *time.Duration, valid func(time.Duration) bool, msg string) {
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		value, err := parseDuration(raw, valid, msg)
		if err != nil {
			warn(key, raw, err)
			return
		}
		*dst = value
	}

	setString(envHTTPAddr, &cfg.HTTPAddr)
	setString(envGRPCAddr, &cfg.GRPCAddr)
	setString(envMetricsAddr, &cfg.MetricsAddr)
	setString(envStorageDriver, &cfg.StorageDriver)
	cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)
	setString(envPostgresDSN, &cfg.PostgresDSN)
	setBool(envPostgresAutoMigrate, &cfg.PostgresAutoMigrate)
	setBool(envSeedDemoData, &cfg.SeedDemoData)

	setString(envRedisAddr, &cfg.RedisAddr)
	setDuration(envCartCacheTTL, &cfg.CartCacheTTL, positiveDuration, "must be > 0")

	setString(envJWTSecret, &cfg.JWTSecret)
	setDuration(envJWTTTL, &cfg.JWTTTL, positiveDuration, "must be > 0")

	setString(envStripeSecretKey, &cfg.StripeSecretKey)
	setString(envGoogleMapsAPIKey, &cfg.GoogleMapsAPIKey)
	setBool(envAllowMockPayments, &cfg.AllowMockPayments)
	setDuration(envExternalTimeout, &cfg.ExternalTimeout, positiveDuration, "must be > 0")
	setInt(envPaymentBreakerFailures, &cfg.PaymentBreakerFailures, nonNegative, "must be >= 0")
	setDuration(envPaymentBreakerReset, &cfg.PaymentBreakerReset, positiveDuration, "must be > 0")

	setString(envKafkaBrokers, &cfg.KafkaBrokers)
	setDuration(envOutboxPollInterval, &cfg.OutboxPollInterval, positiveDuration, "must be > 0")
	setInt(envOutboxBatchSize, &cfg.OutboxBatchSize, positive, "must be > 0")
	setInt(envOutboxMaxAttempts, &cfg.OutboxMaxAttempts, positive, "must be > 0")
	setDuration(envOutboxRetryDelay, &cfg.OutboxRetryDelay, nonNegativeDuration, "must be >= 0")
	setInt(envOutboxMaxPending, &cfg.OutboxMaxPending, nonNegative, "must be >= 0")

	setDuration(envIdempotencyTTL, &cfg.IdempotencyTTL, positiveDuration, "must be > 0")
	setDuration(envIdempotencyCleanupInterval, &cfg.IdempotencyCleanupInterval, positiveDuration, "must be > 0")
	setInt(envIdempotencyCleanupBatchSize, &cfg.IdempotencyCleanupBatchSize, positive, "must be > 0")

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, msg string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("%s", msg)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, msg string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("%s", msg)
	}
	return value, nil
}
