package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gastos/internal/amqp"
	"gastos/internal/cache"
	"gastos/internal/cli"
	apphttp "gastos/internal/http"
	"gastos/internal/log"
	"gastos/internal/metrics"
	"gastos/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)
	logger.Info("Starting gastos",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"log_level", cfg.LogLevel)

	ctx := context.Background()
	store := cli.InitBackend(ctx, logger, cfg)

	m := metrics.New(prometheus.DefaultRegisterer)

	dash := services.NewDashboardService(store.Store, services.DashboardConfig{
		Policy:    cli.ABCPolicy(cfg),
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	}, m)

	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	for _, c := range dash.Caches() {
		cacheManager.Register(c)
	}
	cacheManager.StartCleanup(cfg.CacheTTL)

	// Change events are optional; without a broker the export worker
	// catches up on its periodic resync.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, change events disabled", log.FieldError, err)
		} else {
			amqpClient = client
			publisher = client
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	txService := services.NewTransactionService(store.Store, publisher, dash, m, logger)
	catService := services.NewCategoryService(store.Store, dash)

	srv := apphttp.NewServer(net.JoinHostPort("", cfg.Port), apphttp.Deps{
		Transactions:       txService,
		Categories:         catService,
		Dashboard:          dash,
		Store:              store.Store,
		Logger:             logger,
		Metrics:            m,
		Gatherer:           prometheus.DefaultGatherer,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 15*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown failed", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close failed", log.FieldError, err)
			}
		}
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", log.FieldError, err)
			}
		}
	})

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(shutdownCtx, done)
}
