package app

import "time"

// Поддерживаемые драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения. Структура сравнимая: все поля, значения.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool
	SeedDemoData        bool

	RedisAddr    string
	CartCacheTTL time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	StripeSecretKey   string
	GoogleMapsAPIKey  string
	AllowMockPayments bool
	ExternalTimeout   time.Duration

	PaymentBreakerFailures int
	PaymentBreakerReset    time.Duration

	KafkaBrokers       string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// OutboxMaxPending: размер backlog, после которого /healthz показывает degraded; 0 отключает проверку.
	OutboxMaxPending int

	IdempotencyTTL              time.Duration
	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int
}

// DefaultConfig возвращает настройки для локального запуска: память, демо-каталог, без внешних провайдеров.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		GRPCAddr:    ":50051",
		MetricsAddr: ":9090",

		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		SeedDemoData:        true,

		CartCacheTTL: 15 * time.Minute,
		JWTTTL:       time.Hour,

		ExternalTimeout:        10 * time.Second,
		PaymentBreakerFailures: 5,
		PaymentBreakerReset:    30 * time.Second,

		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   50 * time.Millisecond,
		OutboxMaxPending:   1000,

		IdempotencyTTL:              24 * time.Hour,
		IdempotencyCleanupInterval:  10 * time.Minute,
		IdempotencyCleanupBatchSize: 500,
	}
}
