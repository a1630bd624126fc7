// Package app собирает зависимости storefront и управляет жизненным циклом серверов.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/auth"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/locator"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// Run поднимает HTTP API, сервер метрик, служебный gRPC и фоновые воркеры
// и блокируется до отмены ctx или падения HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	v, c, d := version.Info()
	logger.WithFields(log.Fields{"version": v, "commit": c, "date": d}).Info("starting storefront")

	deps, err := initRuntimeDependencies(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		return err
	}
	defer closeDependency("storage", deps.closeFn, logger)
	store := deps.store

	cartCache := initCartCache(ctx, cfg, logger.WithField("layer", "cache"))
	defer closeDependency("redis", cartCache.closeFn, logger)

	registerer := prometheus.DefaultRegisterer
	orderMetrics := metrics.NewOrderMetricsWithRegisterer(registerer)
	httpMetrics := metrics.NewHTTPMetrics(registerer)
	outboxMetrics := metrics.NewOutboxMetrics(registerer)
	cleanupMetrics := metrics.NewCleanupMetrics(registerer)

	tokens, err := auth.NewTokens(jwtSecret(cfg, logger), cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("init tokens: %w", err)
	}

	authSvc := auth.NewService(store.Users(), tokens, logger.WithField("layer", "auth"))
	catalogSvc := catalog.NewService(store.Catalog())
	cartSvc := cart.NewService(store.Cart(), store.Catalog(), cartCache.cache, orderMetrics, logger.WithField("layer", "cart"))
	checkoutSvc := checkout.NewService(checkout.Deps{
		Carts:       store.Cart(),
		Orders:      store.Orders(),
		Catalog:     store.Catalog(),
		Payments:    newPaymentAuthority(cfg, logger.WithField("layer", "payment")),
		Transactor:  store,
		Invalidator: cartSvc,
		Metrics:     orderMetrics,
		Logger:      logger.WithField("layer", "checkout"),
	})
	locatorSvc := locator.NewService(store.Locations(), newGeocoder(cfg, logger.WithField("layer", "locator")))
	guard := idempotency.NewGuard(store.Idempotency(), cfg.IdempotencyTTL, logger.WithField("layer", "idempotency"))

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:        authSvc,
		Catalog:     catalogSvc,
		Cart:        cartSvc,
		Checkout:    checkoutSvc,
		Locator:     locatorSvc,
		Idempotency: guard,
		Metrics:     httpMetrics,
		Logger:      logger.WithField("layer", "http"),
	})

	healthHandler := healthcheck.NewHandler(v)
	healthHandler.RegisterChecker("storage", deps.storageChecker)
	if cartCache.checker != nil {
		healthHandler.RegisterChecker("redis", cartCache.checker)
	}
	if cfg.OutboxMaxPending > 0 {
		healthHandler.RegisterChecker("outbox", outboxBacklogChecker(store.Outbox(), cfg.OutboxMaxPending))
	}

	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, outbox events go to the log")
	}
	publisher, dlqPublisher := outboxPublishers(kafkaProducer, logger.WithField("layer", "outbox-log"))

	workerOpts := []outbox.Option{
		outbox.WithLogger(logger.WithField("layer", "outbox")),
		outbox.WithMetrics(outboxMetrics),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	}
	if dlqPublisher != nil {
		workerOpts = append(workerOpts, outbox.WithDLQPublisher(dlqPublisher))
	}
	outboxWorker := outbox.NewWorker(store.Outbox(), publisher, workerOpts...)
	cleanupWorker := idempotency.NewCleanupWorker(
		store.Idempotency(),
		idempotency.WithLogger(logger.WithField("layer", "idempotency-cleanup")),
		idempotency.WithMetrics(cleanupMetrics),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)

	workersCtx, cancelWorkers := context.WithCancel(context.Background())
	workersDone := startWorkers(workersCtx, outboxWorker.Run, cleanupWorker.Run)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	admin, err := startAdminGRPC(cfg.GRPCAddr, logger)
	if err != nil {
		shutdownWorkers(cancelWorkers, workersDone, logger)
		shutdownHTTP(metricsSrv, logger)
		closeKafkaProducer(kafkaProducer, logger)
		return err
	}

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		admin.stop(logger)
		shutdownWorkers(cancelWorkers, workersDone, logger)
		shutdownHTTP(metricsSrv, logger)
		closeKafkaProducer(kafkaProducer, logger)
		return fmt.Errorf("listen http: %w", err)
	}

	httpSrv := newAPIServer(router)
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", lis.Addr())
		errCh <- httpSrv.Serve(lis)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		runErr = ctx.Err()
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	admin.stop(logger)
	shutdownHTTP(httpSrv, logger)
	shutdownWorkers(cancelWorkers, workersDone, logger)
	shutdownHTTP(metricsSrv, logger)
	closeKafkaProducer(kafkaProducer, logger)

	return runErr
}

// startWorkers запускает фоновые циклы; канал закрывается, когда все они завершились.
func startWorkers(ctx context.Context, runs ...func(context.Context)) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	for _, run := range runs {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// shutdownWorkers отменяет контекст воркеров и ждёт их завершения не дольше shutdownTimeout.
func shutdownWorkers(cancel context.CancelFunc, done <-chan struct{}, logger *log.Entry) {
	if cancel != nil {
		cancel()
	}
	if done == nil {
		return
	}

	select {
	case <-done:
		logger.Info("background workers stopped")
	case <-time.After(shutdownTimeout):
		logger.Warn("background workers did not stop in time")
	}
}

func closeDependency(name string, closeFn func() error, logger *log.Entry) {
	if closeFn == nil {
		return
	}
	if err := closeFn(); err != nil {
		logger.WithError(err).WithField("dependency", name).Warn("failed to close dependency")
	}
}

// adminGRPC: служебный gRPC-сервер: health и reflection.
type adminGRPC struct {
	server *grpc.Server
	health *health.Server
}

// startAdminGRPC поднимает служебный gRPC, если адрес задан.
func startAdminGRPC(addr string, logger *log.Entry) (*adminGRPC, error) {
	if addr == "" {
		return nil, nil
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen grpc: %w", err)
	}

	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)
	grpcMetrics.InitializeMetrics(server)

	go func() {
		logger.Infof("служебный gRPC слушает %s", lis.Addr())
		if err := server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.WithError(err).Warn("admin grpc server failed")
		}
	}()

	return &adminGRPC{server: server, health: healthServer}, nil
}

func (a *adminGRPC) stop(logger *log.Entry) {
	if a == nil {
		return
	}
	a.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		a.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		a.server.Stop()
	}
}

// newAPIServer собирает сервер публичного API с ограничениями на чтение, запись и простой keep-alive.
func newAPIServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// startMetricsServer запускает /metrics для Prometheus и health-эндпоинты.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
