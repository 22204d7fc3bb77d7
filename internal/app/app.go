package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/antonvlasov/shop/internal/health"
	"github.com/antonvlasov/shop/internal/httpx"
	"github.com/antonvlasov/shop/internal/messaging/kafka"
	"github.com/antonvlasov/shop/internal/service/customers"
	"github.com/antonvlasov/shop/internal/service/idempotency"
	"github.com/antonvlasov/shop/internal/service/orders"
	"github.com/antonvlasov/shop/internal/service/outbox"
	"github.com/antonvlasov/shop/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает и запускает приложение: API-сервер, ops-сервер с метриками
// и health-чеками, outbox worker и воркер очистки idempotency-ключей.
// Блокируется до отмены ctx или фатальной ошибки сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	logger.WithFields(log.Fields{
		"version": version.GetVersion(),
		"commit":  version.GetCommit(),
		"date":    version.GetDate(),
	}).Info("запуск сервиса")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	customersService := customers.NewService(deps.Customers, deps.Outbox, logger.WithField("component", "customers"))
	ordersService := orders.NewService(deps.Customers, deps.Products, deps.Orders, deps.Outbox, logger.WithField("component", "orders"))

	// Outbox worker публикует события только при настроенном Kafka.
	if kafkaProducer != nil {
		worker := outbox.NewWorker(
			deps.Outbox,
			kafka.NewOutboxPublisher(kafkaProducer, ""),
			outbox.Config{
				Logger:       logger.WithField("component", "outbox-worker"),
				DLQPublisher: kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue),
				PollInterval: cfg.OutboxPollInterval,
			},
		)
		go worker.Run(ctx)
	} else {
		logger.Info("kafka не настроен, события остаются в outbox")
	}

	cleanup := idempotency.NewCleanupWorker(deps.Idempotency, idempotency.CleanupConfig{
		Logger: logger.WithField("component", "idempotency-cleanup-worker"),
	})
	go cleanup.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		store := deps.Store
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
	}

	opsSrv := startOpsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	api := httpx.NewServer(
		customersService,
		ordersService,
		deps.Products,
		deps.Idempotency,
		logger.WithField("component", "httpx"),
	)
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Router()}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startOpsServer запускает служебный HTTP-сервер: /metrics, /healthz, /readyz, /livez.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
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
