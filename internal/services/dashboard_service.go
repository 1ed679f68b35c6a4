package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/analytics"
	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/metrics"
)

const (
	viewDashboard = "dashboard"
	viewCashFlow  = "cashflow"
)

type DashboardConfig struct {
	Policy    analytics.ABCPolicy
	CacheSize int
	CacheTTL  time.Duration
}

// DashboardService serves the read-side views. Results are cached per period
// until the next write invalidates them. Cached values are shared; callers
// must not mutate them.
type DashboardService struct {
	store      ledger.Store
	policy     analytics.ABCPolicy
	dashboards *cache.LRUCache[core.Period, analytics.Dashboard]
	cashflows  *cache.LRUCache[int, analytics.CashFlowMatrix]
	metrics    metrics.Recorder
	now        func() time.Time

	// generation is bumped by Invalidate so that a build started before a
	// write never lands in the cache after it. mu makes the bump and purge
	// atomic with respect to the check-and-set in cacheIfCurrent.
	mu         sync.RWMutex
	generation atomic.Uint64
}

var _ Invalidator = (*DashboardService)(nil)

func NewDashboardService(store ledger.Store, cfg DashboardConfig, rec metrics.Recorder) *DashboardService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if cfg.Policy.Validate() != nil {
		cfg.Policy = analytics.DefaultABCPolicy
	}
	return &DashboardService{
		store:      store,
		policy:     cfg.Policy,
		dashboards: cache.NewLRUCache[core.Period, analytics.Dashboard](cfg.CacheSize, cfg.CacheTTL),
		cashflows:  cache.NewLRUCache[int, analytics.CashFlowMatrix](cfg.CacheSize, cfg.CacheTTL),
		metrics:    rec,
		now:        time.Now,
	}
}

// Caches returns the caches to register with a cleanup manager.
func (s *DashboardService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.dashboards, s.cashflows}
}

// Invalidate drops every cached view.
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation.Add(1)
	s.dashboards.Purge()
	s.cashflows.Purge()
}

func (s *DashboardService) Dashboard(ctx context.Context, period core.Period) (analytics.Dashboard, error) {
	if d, ok := s.dashboards.Get(period); ok {
		s.metrics.CacheLookup(viewDashboard, true)
		return d, nil
	}
	s.metrics.CacheLookup(viewDashboard, false)

	gen := s.generation.Load()
	txs, cats, err := s.snapshot(ctx)
	if err != nil {
		return analytics.Dashboard{}, err
	}

	start := time.Now()
	d := analytics.BuildDashboard(txs, cats, period, s.policy)
	s.metrics.ObserveView(viewDashboard, time.Since(start))

	s.cacheIfCurrent(gen, func() { s.dashboards.Set(period, d) })

	slog.DebugContext(ctx, "Dashboard built",
		append(log.NewFields().WithPeriod(period).ToSlice(),
			"transactions", len(txs),
			"categories", len(d.Distribution))...)
	return d, nil
}

func (s *DashboardService) CashFlow(ctx context.Context, year int) (analytics.CashFlowMatrix, error) {
	if m, ok := s.cashflows.Get(year); ok {
		s.metrics.CacheLookup(viewCashFlow, true)
		return m, nil
	}
	s.metrics.CacheLookup(viewCashFlow, false)

	gen := s.generation.Load()
	txs, cats, err := s.snapshot(ctx)
	if err != nil {
		return analytics.CashFlowMatrix{}, err
	}

	start := time.Now()
	m := analytics.BuildCashFlow(txs, core.NewCategoryIndex(cats), year)
	s.metrics.ObserveView(viewCashFlow, time.Since(start))

	s.cacheIfCurrent(gen, func() { s.cashflows.Set(year, m) })
	return m, nil
}

// cacheIfCurrent runs set only when no Invalidate happened since gen was read.
func (s *DashboardService) cacheIfCurrent(gen uint64, set func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation.Load() == gen {
		set()
	}
}

// Years lists the years that have transactions plus the current one, newest first.
func (s *DashboardService) Years(ctx context.Context) ([]int, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.AvailableYears(txs, s.now()), nil
}

// snapshot loads transactions and categories concurrently.
func (s *DashboardService) snapshot(ctx context.Context) ([]core.Transaction, []core.Category, error) {
	var (
		txs  []core.Transaction
		cats []core.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cats, err = s.store.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, cats, nil
}
