package http

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriodQuery(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.dash.Dashboard(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardResponse(d))
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYearQuery(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.dash.CashFlow(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCashFlowResponse(m))
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.dash.Years(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, YearsResponse{Years: years})
}
