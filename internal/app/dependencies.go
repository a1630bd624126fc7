package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cache"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

const redisPingTimeout = 2 * time.Second

// storage: общий набор репозиториев памяти и PostgreSQL.
type storage interface {
	domain.Transactor
	Cart() domain.CartRepository
	Catalog() domain.CatalogRepository
	Orders() domain.OrderRepository
	Users() domain.UserRepository
	Locations() domain.LocationRepository
	Outbox() domain.OutboxRepository
	Idempotency() domain.IdempotencyRepository
	SeedCatalog(ctx context.Context, data domain.CatalogSeed) error
}

// runtimeDependencies: хранилище, проверка его здоровья и функция закрытия.
type runtimeDependencies struct {
	store          storage
	storageChecker healthcheck.Checker
	closeFn        func() error
}

// initRuntimeDependencies открывает хранилище выбранного драйвера и при необходимости
// применяет миграции и заполняет демо-каталог.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if driver == "" {
		driver = StorageDriverMemory
	}

	var deps *runtimeDependencies
	switch driver {
	case StorageDriverMemory:
		deps = &runtimeDependencies{
			store: memory.NewStore(),
			storageChecker: healthcheck.NewCriticalChecker("storage", func(context.Context) error {
				return nil
			}),
		}
		logger.Info("using in-memory storage")
	case StorageDriverPostgres:
		pg, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		deps = &runtimeDependencies{
			store:          pg,
			storageChecker: healthcheck.NewCriticalChecker("postgres", pg.Ping),
			closeFn:        pg.Close,
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.SeedDemoData {
		if err := deps.store.SeedCatalog(ctx, demoCatalog()); err != nil {
			if deps.closeFn != nil {
				_ = deps.closeFn()
			}
			return nil, fmt.Errorf("seed demo catalog: %w", err)
		}
		logger.Info("demo catalog is available")
	}

	return deps, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *log.Entry) (*postgres.Store, error) {
	dsn := strings.TrimSpace(cfg.PostgresDSN)
	if dsn == "" {
		return nil, fmt.Errorf("postgres storage requires STOREFRONT_POSTGRES_DSN")
	}

	pg, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.PostgresAutoMigrate {
		if err := pg.MigrateUp(ctx, 0); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		version, applied, err := pg.MigrationStatus(ctx)
		if err == nil {
			logger.WithFields(log.Fields{"version": version, "applied": applied}).Info("postgres migrations applied")
		}
	}

	logger.Info("using postgres storage")
	return pg, nil
}

// cartCacheDeps: кэш корзин и его проверка здоровья; без Redis кэш ничего не хранит.
type cartCacheDeps struct {
	cache   cache.CartCache
	checker healthcheck.Checker
	closeFn func() error
}

// initCartCache подключает Redis. Недоступный Redis не мешает старту: корзина читается из хранилища.
func initCartCache(ctx context.Context, cfg Config, logger *log.Entry) cartCacheDeps {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return cartCacheDeps{cache: cache.Noop{}}
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	redisCache := cache.NewRedisCache(client, cfg.CartCacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		logger.WithError(err).WithField("addr", addr).Warn("redis is unavailable, cart cache will fall back to storage")
	} else {
		logger.WithField("addr", addr).Info("cart cache connected to redis")
	}

	return cartCacheDeps{
		cache:   redisCache,
		checker: healthcheck.NewOptionalChecker("redis", redisCache.Ping),
		closeFn: client.Close,
	}
}

// outboxBacklogChecker показывает degraded, если backlog outbox превысил порог.
func outboxBacklogChecker(repo domain.OutboxRepository, maxPending int) healthcheck.Checker {
	return healthcheck.NewOptionalChecker("outbox", func(ctx context.Context) error {
		stats, err := repo.Stats(ctx)
		if err != nil {
			return fmt.Errorf("outbox stats: %w", err)
		}
		if stats.PendingCount > maxPending {
			return fmt.Errorf("outbox backlog %d exceeds %d", stats.PendingCount, maxPending)
		}
		return nil
	})
}
