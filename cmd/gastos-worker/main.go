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
	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/export/sheets"
	"gastos/internal/log"
	"gastos/internal/metrics"
	"gastos/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker, (*config.Config).ValidateExport)
	logger.Info("Starting gastos-worker",
		"backend", cfg.DataBackend,
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"resync_interval", cfg.ExportResyncInterval)

	ctx := context.Background()
	store := cli.InitBackend(ctx, logger, cfg)

	creds, err := cfg.ServiceAccountJSON()
	if err != nil {
		logger.Error("Failed to load Google credentials", log.FieldError, err)
		os.Exit(1)
	}
	sheetsClient, err := sheets.NewClient(ctx, cfg.GoogleSpreadsheetID, creds)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	exportWorker := worker.NewExportWorker(store.Store, sheets.NewExporter(sheetsClient), m, worker.Config{
		Timeout:        cfg.ExportTimeout,
		ResyncInterval: cfg.ExportResyncInterval,
	})

	var metricsSrv *http.Server
	if cfg.WorkerMetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", metrics.Handler(reg))
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		metricsSrv = &http.Server{
			Addr:              net.JoinHostPort("", cfg.WorkerMetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", log.FieldError, err)
			}
		}()
	}

	runCtx, done := cli.GracefulShutdown(logger, 15*time.Second, func(ctx context.Context) {
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
	})

	// The resync loop exports on startup; without it catch up once here.
	if cfg.ExportResyncInterval == 0 {
		if err := exportWorker.Refresh(runCtx, time.Now().Year()); err != nil {
			logger.Error("Startup export failed", log.FieldError, err)
		}
	}

	runErr := exportWorker.Run(runCtx, amqpClient)

	if err := amqpClient.Close(); err != nil {
		logger.Warn("AMQP close failed", log.FieldError, err)
	}
	if store.Cleanup != nil {
		if err := store.Cleanup(); err != nil {
			logger.Error("Store cleanup failed", log.FieldError, err)
		}
	}

	if runErr != nil {
		logger.Error("Export worker stopped", log.FieldError, runErr)
		os.Exit(1)
	}
	cli.WaitForShutdown(runCtx, done)
}
