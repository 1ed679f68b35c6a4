package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/analytics"
	"gastos/internal/ledger"
	"gastos/internal/ledger/memory"
	"gastos/internal/log"
	"gastos/internal/metrics"
	"gastos/internal/services"
)

type testServer struct {
	*Server
	store   *memory.Store
	metrics *metrics.Metrics
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T, rpm int) *testServer {
	t.Helper()
	store := memory.New(ledger.DefaultCategories())
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := log.New(log.Config{Level: slog.LevelError, Output: io.Discard})

	dash := services.NewDashboardService(store, services.DashboardConfig{
		Policy:    analytics.DefaultABCPolicy,
		CacheSize: 16,
		CacheTTL:  time.Minute,
	}, m)
	tx := services.NewTransactionService(store, nil, dash, m, logger)
	cats := services.NewCategoryService(store, dash)

	srv := NewServer(":0", Deps{
		Transactions:       tx,
		Categories:         cats,
		Dashboard:          dash,
		Store:              store,
		Logger:             logger,
		Metrics:            m,
		Gatherer:           reg,
		RateLimitPerMinute: rpm,
	})
	srv.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testServer{Server: srv, store: store, metrics: m, reg: reg}
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.RemoteAddr = "203.0.113.7:4321"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v), rec.Body.String())
	return v
}

const lunchJSON = `{"description":"Almuerzo","amount":"1500,50","currency":"ARS","categoryId":1,"date":"2024-06-10","type":"expense"}`

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = ts.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody[map[string]string](t, rec)["status"])
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("database is locked") }

func TestServer_ReadyReportsStoreFailure(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.Server.store = downPinger{}

	rec := ts.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_TransactionLifecycle(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.do(t, http.MethodPost, "/api/transactions", lunchJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "/api/transactions/1", rec.Header().Get("Location"))
	assert.Equal(t, "1500.5", created["amountInHomeCurrency"])
	assert.Equal(t, "2024-06-10", created["date"])

	rec = ts.do(t, http.MethodGet, "/api/transactions/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	update := `{"description":"Hotel","amount":100,"currency":"USD","exchangeRate":"1000","categoryId":2,"date":"2023-12-31","type":"expense"}`
	rec = ts.do(t, http.MethodPut, "/api/transactions/1", update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "100000", updated["amountInHomeCurrency"])
	assert.Equal(t, "1000", updated["exchangeRate"])

	rec = ts.do(t, http.MethodGet, "/api/transactions?year=2023", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[services.TransactionPage](t, rec)
	assert.Equal(t, 1, page.TotalItems)

	rec = ts.do(t, http.MethodDelete, "/api/transactions/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/transactions/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_TransactionErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "malformed json",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"description":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"description":"x","amountInHomeCurrency":"1"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing description",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"amount":"10","currency":"ARS","categoryId":1,"date":"2024-01-01","type":"expense"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "description",
		},
		{
			name:       "usd without rate",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"description":"x","amount":"10","currency":"USD","categoryId":1,"date":"2024-01-01","type":"expense"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "exchangeRate",
		},
		{
			name:       "usd below one cent",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"description":"x","amount":"0.01","currency":"USD","exchangeRate":"0.1","categoryId":1,"date":"2024-01-01","type":"expense"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "amount",
		},
		{
			name:       "zero amount",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"description":"x","amount":"0","currency":"ARS","categoryId":1,"date":"2024-01-01","type":"expense"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "amount",
		},
		{
			name:       "bad date",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"description":"x","amount":"10","currency":"ARS","categoryId":1,"date":"2024-02-30","type":"expense"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "date",
		},
		{
			name:       "income category on expense",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"description":"x","amount":"10","currency":"ARS","categoryId":10,"date":"2024-01-01","type":"expense"}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown category",
			method:     http.MethodPost,
			target:     "/api/transactions",
			body:       `{"description":"x","amount":"10","currency":"ARS","categoryId":999,"date":"2024-01-01","type":"expense"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "categoryId",
		},
		{
			name:       "bad id",
			method:     http.MethodGet,
			target:     "/api/transactions/abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing transaction",
			method:     http.MethodDelete,
			target:     "/api/transactions/42",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad month",
			method:     http.MethodGet,
			target:     "/api/transactions?month=13",
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "month",
		},
		{
			name:       "bad page",
			method:     http.MethodGet,
			target:     "/api/transactions?page=0",
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, 0)
			rec := ts.do(t, tt.method, tt.target, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decodeBody[ErrorResponse](t, rec)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.wantField, body.Field)
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, 0)
	rec := ts.do(t, http.MethodPatch, "/api/transactions/1", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Categories(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decodeBody[[]map[string]any](t, rec)
	assert.Len(t, cats, len(ledger.DefaultCategories()))

	rec = ts.do(t, http.MethodPost, "/api/categories", `{"name":"Mascotas","type":"expense","icon":"paw","color":"#AA33CC"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "#aa33cc", created["color"])
	assert.Equal(t, false, created["isDefault"])

	rec = ts.do(t, http.MethodPost, "/api/categories", `{"name":"Bad","type":"expense","icon":"paw","color":"red"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "color", decodeBody[ErrorResponse](t, rec).Field)

	rec = ts.do(t, http.MethodPost, "/api/transactions", lunchJSON)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/categories/1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/categories/1", `{"name":"Comida","type":"income","icon":"food","color":"#112233"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/categories/1", `{"name":"Comida","type":"expense","icon":"food","color":"#112233"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Comida", decodeBody[map[string]any](t, rec)["name"])

	rec = ts.do(t, http.MethodDelete, "/api/categories/15", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/categories/15", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_DashboardAndCashFlow(t *testing.T) {
	ts := newTestServer(t, 0)

	for _, body := range []string{
		lunchJSON,
		`{"description":"Colectivo","amount":"500","currency":"ARS","categoryId":2,"date":"2024-06-11","type":"expense"}`,
		`{"description":"Sueldo","amount":"10000","currency":"ARS","categoryId":10,"date":"2024-06-01","type":"income"}`,
	} {
		rec := ts.do(t, http.MethodPost, "/api/transactions", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := ts.do(t, http.MethodGet, "/api/dashboard?year=2024&month=6", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dash struct {
		Period  PeriodResponse `json:"period"`
		Summary struct {
			Income   string `json:"income"`
			Expenses string `json:"expenses"`
		} `json:"summary"`
		Trend        []TrendPointResponse `json:"trend"`
		Distribution []map[string]any     `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, PeriodResponse{Year: 2024, Month: "Jun"}, dash.Period)
	assert.Equal(t, "10000", dash.Summary.Income)
	assert.Equal(t, "2000.5", dash.Summary.Expenses)
	require.Len(t, dash.Trend, 12)
	assert.Equal(t, "Ene", dash.Trend[0].Label)
	assert.Equal(t, "Jun", dash.Trend[5].Label)
	assert.Len(t, dash.Distribution, 2)

	rec = ts.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, PeriodResponse{Year: 2024, Month: "all"}, decodeBody[DashboardResponse](t, rec).Period)

	rec = ts.do(t, http.MethodGet, "/api/cashflow?year=2024", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cf struct {
		Months           []string         `json:"months"`
		IncomeRows       []map[string]any `json:"incomeRows"`
		ExpenseRows      []map[string]any `json:"expenseRows"`
		NetYearTotal     string           `json:"netYearTotal"`
		AccumulatedTotal string           `json:"accumulatedTotal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cf))
	assert.Len(t, cf.Months, 12)
	assert.Len(t, cf.IncomeRows, 1)
	assert.Len(t, cf.ExpenseRows, 2)
	assert.Equal(t, "7999.5", cf.NetYearTotal)
	assert.Equal(t, "7999.5", cf.AccumulatedTotal)

	rec = ts.do(t, http.MethodGet, "/api/cashflow?year=1999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"incomeRows":[]`)

	rec = ts.do(t, http.MethodGet, "/api/years", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody[YearsResponse](t, rec).Years, 2024)
}

func TestServer_RateLimitAppliesToAPIOnly(t *testing.T) {
	ts := newTestServer(t, 2)

	for range 2 {
		assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/categories", "").Code)
	}
	rec := ts.do(t, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decodeBody[ErrorResponse](t, rec).Error)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/healthz", "").Code)

	rec = ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gastos_http_rate_limited_total 1")
	assert.Contains(t, rec.Body.String(), `route="GET /api/categories"`)
}

func TestServer_ShutdownIsIdempotent(t *testing.T) {
	ts := newTestServer(t, 0)
	require.NoError(t, ts.Shutdown(context.Background()))
	require.NoError(t, ts.Shutdown(context.Background()))
}
