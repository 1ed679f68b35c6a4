package http

import (
	"net/http"
	"strconv"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.cats.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.cats.Create(r.Context(), req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/categories/"+itoa(c.ID))
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req CategoryRequest
	if err := s.decodeValid(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.cats.Update(r.Context(), id, req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.cats.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
