package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/cache"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = " Memory "

	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "memory-init"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.store == nil {
		t.Fatal("memory store must be initialized")
	}
	if deps.closeFn != nil {
		t.Fatal("memory storage has nothing to close")
	}
	if check := deps.storageChecker.Check(context.Background()); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy memory storage, got %+v", check)
	}

	products, err := deps.store.Catalog().ListProducts(context.Background(), domain.ProductFilter{PageSize: 100})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != len(demoCatalog().Products) {
		t.Fatalf("expected %d seeded products, got %d", len(demoCatalog().Products), len(products))
	}

	stores, err := deps.store.Locations().List(context.Background())
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if len(stores) != len(demoCatalog().Locations) {
		t.Fatalf("expected %d seeded stores, got %d", len(demoCatalog().Locations), len(stores))
	}
}

func TestInitRuntimeDependencies_WithoutSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedDemoData = false

	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "memory-empty"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	categories, err := deps.store.Catalog().ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 0 {
		t.Fatalf("expected empty catalog, got %d categories", len(categories))
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverPostgres
	cfg.PostgresDSN = "  "

	_, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "postgres-dsn"))
	if err == nil || !strings.Contains(err.Error(), "STOREFRONT_POSTGRES_DSN") {
		t.Fatalf("expected missing dsn error, got %v", err)
	}
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "sqlite"

	_, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "driver"))
	if err == nil || !strings.Contains(err.Error(), `unsupported storage driver "sqlite"`) {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
}

func TestDemoCatalog_Consistent(t *testing.T) {
	seed := demoCatalog()

	slugs := make(map[string]bool, len(seed.Categories))
	for _, category := range seed.Categories {
		slugs[category.Slug] = true
	}
	for _, product := range seed.Products {
		if !slugs[product.CategorySlug] {
			t.Errorf("product %q references unknown category %q", product.Name, product.CategorySlug)
		}
		if product.PriceMinor <= 0 {
			t.Errorf("product %q must have a positive price", product.Name)
		}
		if product.Stock < 0 {
			t.Errorf("product %q must have non-negative stock", product.Name)
		}
	}
}

func TestInitCartCache_NoRedis(t *testing.T) {
	cfg := DefaultConfig()

	deps := initCartCache(context.Background(), cfg, log.WithField("test", "cache-noop"))
	if _, ok := deps.cache.(cache.Noop); !ok {
		t.Fatalf("expected noop cache, got %T", deps.cache)
	}
	if deps.checker != nil || deps.closeFn != nil {
		t.Fatal("noop cache must not register checker or close func")
	}
}

func TestInitCartCache_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.RedisAddr = mr.Addr()

	deps := initCartCache(context.Background(), cfg, log.WithField("test", "cache-redis"))
	if _, ok := deps.cache.(*cache.RedisCache); !ok {
		t.Fatalf("expected redis cache, got %T", deps.cache)
	}
	defer func() { _ = deps.closeFn() }()

	if check := deps.checker.Check(context.Background()); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy redis, got %+v", check)
	}

	mr.Close()
	if check := deps.checker.Check(context.Background()); check.Status != healthcheck.StatusDegraded {
		t.Fatalf("expected degraded redis after shutdown, got %+v", check)
	}
}

func TestOutboxBacklogChecker(t *testing.T) {
	store := memory.NewStore()
	checker := outboxBacklogChecker(store.Outbox(), 2)

	if check := checker.Check(context.Background()); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy outbox, got %+v", check)
	}

	for i := 0; i < 3; i++ {
		_, err := store.Outbox().Enqueue(context.Background(), domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   fmt.Sprintf("%d", i+1),
			EventType:     "order.created",
			Payload:       []byte(`{}`),
		})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	check := checker.Check(context.Background())
	if check.Status != healthcheck.StatusDegraded {
		t.Fatalf("expected degraded outbox, got %+v", check)
	}
	if !strings.Contains(check.Message, "exceeds 2") {
		t.Fatalf("unexpected message %q", check.Message)
	}
}
