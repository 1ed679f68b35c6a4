package http

import (
	"net/http"
	"strings"

	"gastos/internal/services"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriodQuery(r, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := ParsePageQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.tx.List(r.Context(), services.TransactionQuery{
		Period: period,
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Page:   page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := s.tx.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.tx.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/transactions/"+itoa(tx.ID))
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req TransactionRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.tx.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.tx.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeValid decodes the body into req and runs the struct validation.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, req any) error {
	if err := DecodeJSON(w, r, req); err != nil {
		return err
	}
	return s.validator.Struct(req)
}
