package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gastos/internal/analytics"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/metrics"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
)

// Ports the handlers are written against.
type (
	TransactionService interface {
		Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
		Update(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error)
		Delete(ctx context.Context, id int64) error
		Get(ctx context.Context, id int64) (core.Transaction, error)
		List(ctx context.Context, q services.TransactionQuery) (services.TransactionPage, error)
	}

	CategoryService interface {
		List(ctx context.Context) ([]core.Category, error)
		Create(ctx context.Context, in core.CategoryInput) (core.Category, error)
		Update(ctx context.Context, id int64, in core.CategoryInput) (core.Category, error)
		Delete(ctx context.Context, id int64) error
	}

	DashboardService interface {
		Dashboard(ctx context.Context, period core.Period) (analytics.Dashboard, error)
		CashFlow(ctx context.Context, year int) (analytics.CashFlowMatrix, error)
		Years(ctx context.Context) ([]int, error)
	}

	// Pinger reports whether the backing store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Deps are the collaborators of the server. Metrics and Gatherer may be nil.
type Deps struct {
	Transactions TransactionService
	Categories   CategoryService
	Dashboard    DashboardService
	Store        Pinger
	Logger       *log.Logger
	Metrics      metrics.Recorder
	Gatherer     prometheus.Gatherer

	// RateLimitPerMinute bounds /api requests per client IP. Zero uses the default.
	RateLimitPerMinute int
}

// Server wraps http.Server with the limiter that must be stopped on shutdown.
type Server struct {
	*http.Server

	tx        TransactionService
	cats      CategoryService
	dash      DashboardService
	store     Pinger
	logger    *log.Logger
	metrics   metrics.Recorder
	validator *RequestValidator
	limiter   *ratelimit.Limiter
	now       func() time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = log.FromContext(context.Background())
	}

	rlCfg := ratelimit.DefaultConfig()
	if deps.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = deps.RateLimitPerMinute
	}

	s := &Server{
		tx:        deps.Transactions,
		cats:      deps.Categories,
		dash:      deps.Dashboard,
		store:     deps.Store,
		logger:    deps.Logger.WithComponent(log.ComponentHTTP),
		metrics:   deps.Metrics,
		validator: NewRequestValidator(),
		limiter:   ratelimit.NewLimiter(rlCfg),
		now:       time.Now,
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	api.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	api.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	api.HandleFunc("GET /api/years", s.handleYears)
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/cashflow", s.handleCashFlow)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(deps.Gatherer))
	}
	mux.Handle("/api/", s.limiter.Middleware(trace.ClientIP, s.rateLimited)(api))

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(deps.Logger, deps.Metrics).Middleware(handler)

	s.Server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server. It is safe to
// call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited()
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, trace.ClientIP(r),
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
