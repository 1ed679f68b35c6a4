// Package worker keeps the spreadsheet export in step with the ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/analytics"
	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/metrics"
)

// Exporter publishes one year's cash-flow matrix.
type Exporter interface {
	Export(ctx context.Context, m analytics.CashFlowMatrix) error
}

// Consumer delivers change events until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.MessageHandler) error
}

type Config struct {
	// Timeout bounds one refresh, loading included.
	Timeout time.Duration
	// ResyncInterval re-exports the current year as a backstop for lost
	// events. Zero disables it.
	ResyncInterval time.Duration
}

// ExportWorker rebuilds the cash-flow matrices touched by a change event and
// overwrites their sheets.
type ExportWorker struct {
	store    ledger.Store
	exporter Exporter
	metrics  metrics.Recorder
	config   Config
	now      func() time.Time
}

func NewExportWorker(store ledger.Store, exporter Exporter, rec metrics.Recorder, cfg Config) *ExportWorker {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &ExportWorker{
		store:    store,
		exporter: exporter,
		metrics:  rec,
		config:   cfg,
		now:      time.Now,
	}
}

// HandleMessage refreshes every year the event touched. Its error requeues the event.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionChangedMessage) error {
	slog.InfoContext(ctx, "Processing transaction change",
		log.FieldTransactionID, msg.ID,
		log.FieldOperation, msg.Operation,
		"years", msg.Years())

	if err := w.Refresh(ctx, msg.Years()...); err != nil {
		return fmt.Errorf("refresh after %s of transaction %d: %w", msg.Operation, msg.ID, err)
	}
	return nil
}

// Refresh exports the given years from one snapshot of the store.
func (w *ExportWorker) Refresh(ctx context.Context, years ...int) error {
	years = slices.Compact(slices.Sorted(slices.Values(years)))
	if len(years) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	start := time.Now()
	err := w.refresh(ctx, years)
	status := "ok"
	if err != nil {
		status = "error"
	}
	w.metrics.ExportRun(status, time.Since(start))
	return err
}

func (w *ExportWorker) refresh(ctx context.Context, years []int) error {
	txs, cats, err := w.snapshot(ctx)
	if err != nil {
		return err
	}
	idx := core.NewCategoryIndex(cats)

	g, gctx := errgroup.WithContext(ctx)
	for _, year := range years {
		g.Go(func() error {
			m := analytics.BuildCashFlow(txs, idx, year)
			if err := w.exporter.Export(gctx, m); err != nil {
				return fmt.Errorf("export %d: %w", year, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (w *ExportWorker) snapshot(ctx context.Context) ([]core.Transaction, []core.Category, error) {
	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if txs, err = w.store.ListTransactions(gctx); err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if cats, err = w.store.ListCategories(gctx); err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, cats, nil
}

// Run consumes events and, when configured, periodically re-exports the
// current year. It returns when ctx is done or the consumer fails for good.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(gctx, w.HandleMessage)
	})

	if w.config.ResyncInterval > 0 {
		g.Go(func() error {
			w.resyncLoop(gctx)
			return nil
		})
	}

	slog.InfoContext(ctx, "Export worker started",
		"resync_interval", w.config.ResyncInterval.String(),
		"timeout", w.config.Timeout.String())

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (w *ExportWorker) resyncLoop(ctx context.Context) {
	ticker := time.NewTicker(w.config.ResyncInterval)
	defer ticker.Stop()

	// Resync immediately on startup
	w.resync(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.resync(ctx)
		}
	}
}

func (w *ExportWorker) resync(ctx context.Context) {
	year := w.now().Year()
	if err := w.Refresh(ctx, year); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.ErrorContext(ctx, "Periodic export failed", log.FieldYear, year, log.FieldError, err)
		return
	}
	slog.DebugContext(ctx, "Periodic export completed", log.FieldYear, year)
}
