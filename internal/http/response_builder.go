package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"gastos/internal/analytics"
	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/services"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain and storage errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, new(*core.ValidationError)):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrCategoryInUse),
		errors.Is(err, services.ErrCategoryTypeLocked),
		errors.Is(err, services.ErrCategoryTypeMismatch):
		return http.StatusConflict
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrMalformedBody), errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Internal errors are logged and hidden from clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	if ve, ok := core.IsValidationError(err); ok {
		resp = ErrorResponse{Error: ve.Err.Error(), Field: ve.Field}
	}
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		resp = ErrorResponse{Error: "internal error"}
	}

	writeJSON(w, status, resp)
}

type (
	PeriodResponse struct {
		Year  int    `json:"year"`
		Month string `json:"month"`
	}

	TrendPointResponse struct {
		analytics.TrendPoint
		Label string `json:"label"`
	}

	DashboardResponse struct {
		Period       PeriodResponse                `json:"period"`
		Summary      analytics.Summary             `json:"summary"`
		Trend        []TrendPointResponse          `json:"trend"`
		Distribution []analytics.DistributionEntry `json:"distribution"`
		Pareto       analytics.ParetoResult        `json:"pareto"`
	}

	CashFlowResponse struct {
		analytics.CashFlowMatrix
		Months           [12]string      `json:"months"`
		IncomeYearTotal  decimal.Decimal `json:"incomeYearTotal"`
		ExpenseYearTotal decimal.Decimal `json:"expenseYearTotal"`
		NetYearTotal     decimal.Decimal `json:"netYearTotal"`
		AccumulatedTotal decimal.Decimal `json:"accumulatedTotal"`
	}

	YearsResponse struct {
		Years []int `json:"years"`
	}
)

func newPeriodResponse(p core.Period) PeriodResponse {
	month := "all"
	if !p.WholeYear() {
		month = core.MonthLabels[p.Month-1]
	}
	return PeriodResponse{Year: p.Year, Month: month}
}

func newDashboardResponse(d analytics.Dashboard) DashboardResponse {
	trend := make([]TrendPointResponse, len(d.Trend))
	for i, pt := range d.Trend {
		trend[i] = TrendPointResponse{TrendPoint: pt, Label: core.MonthLabels[pt.MonthIndex]}
	}
	dist := d.Distribution
	if dist == nil {
		dist = []analytics.DistributionEntry{}
	}
	return DashboardResponse{
		Period:       newPeriodResponse(d.Period),
		Summary:      d.Summary,
		Trend:        trend,
		Distribution: dist,
		Pareto:       d.Pareto,
	}
}

func newCashFlowResponse(m analytics.CashFlowMatrix) CashFlowResponse {
	if m.IncomeRows == nil {
		m.IncomeRows = []analytics.CashFlowRow{}
	}
	if m.ExpenseRows == nil {
		m.ExpenseRows = []analytics.CashFlowRow{}
	}
	return CashFlowResponse{
		CashFlowMatrix:   m,
		Months:           core.MonthLabels,
		IncomeYearTotal:  m.IncomeYearTotal(),
		ExpenseYearTotal: m.ExpenseYearTotal(),
		NetYearTotal:     m.NetYearTotal(),
		AccumulatedTotal: m.AccumulatedTotal(),
	}
}
