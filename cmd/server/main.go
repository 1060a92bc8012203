package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"francoggm/vnpay-go-redis/internal/app/notify"
	"francoggm/vnpay-go-redis/internal/app/server"
	"francoggm/vnpay-go-redis/internal/app/server/handlers"
	"francoggm/vnpay-go-redis/internal/app/storage"
	"francoggm/vnpay-go-redis/internal/app/workers"
	"francoggm/vnpay-go-redis/internal/app/workers/processors"
	"francoggm/vnpay-go-redis/internal/config"
	"francoggm/vnpay-go-redis/internal/kafka"
	"francoggm/vnpay-go-redis/internal/logging"
	"francoggm/vnpay-go-redis/internal/metrics"
	"francoggm/vnpay-go-redis/internal/vnpay"

	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}

	cfg := config.MustLoadConfig(configPath)

	logger := logging.GetLogger(cfg.Logs)
	slog.SetDefault(logger)

	metrics.Setup(cfg.Metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheOpts := redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Cache.Host, cfg.Cache.Port),
		Password:     cfg.Cache.Password,
		DB:           cfg.Cache.DB,
		PoolSize:     cfg.Cache.PoolSize,
		MinIdleConns: 10,
		PoolTimeout:  5 * time.Second,
	}

	rdb := redis.NewClient(&cacheOpts)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		panic(err)
	}
	defer rdb.Close()

	// Stores
	correlationStore := storage.NewRedisCorrelationStore(rdb)
	responseStore := storage.NewRedisResponseStore(rdb, cfg.VNPay.ResponseTTL)

	queryClient := vnpay.NewQueryClient(nil).WithRateLimit(cfg.VNPay.QueryRPS, cfg.VNPay.QueryBurst)
	service := vnpay.NewService(cfg.VNPay.Options(), correlationStore, queryClient, logger)

	// Worker queue
	reconcileEventsCh := make(chan any, cfg.Workers.ReconcileBufferSize)

	// Notification processors, run in this order
	recorder := notify.NewRecorder(responseStore, logger)
	dispatcher := notify.NewDispatcher(logger,
		recorder,
		notify.NewReconciler(reconcileEventsCh, service.ParseTimestamp, logger),
	)

	if cfg.Webhook.URL != "" {
		dispatcher.Register(notify.NewWebhookForwarder(cfg.Webhook.URL, cfg.Webhook.TimeoutMs, logger))
	}

	if len(cfg.Kafka.BrokerList()) > 0 {
		writer := kafka.NewWriter(cfg.Kafka)
		defer writer.Close()

		dispatcher.Register(notify.NewKafkaPublisher(writer, logger))
	}

	// Worker orchestrator
	reconcileProcessor := processors.NewReconcileProcessor(service, responseStore, cfg.VNPay.QueryIP, logger)
	reconcileOrchestrator := workers.NewOrchestrator(cfg.Workers.ReconcileCount, reconcileEventsCh, reconcileProcessor, logger)
	reconcileOrchestrator.StartWorkers(ctx)

	h := handlers.NewHandlers(cfg, service, dispatcher, recorder, logger)
	srv := server.NewServer(cfg, h, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped", "error", err)
	}

	close(reconcileEventsCh)
	reconcileOrchestrator.Wait()
}
