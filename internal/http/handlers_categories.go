package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind := core.Kind(strings.TrimSpace(r.URL.Query().Get("type")))
	cats, err := s.svc.Categories.List(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Categories.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCategoryTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.pages.Parse(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := ParseDateRange(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.svc.Ledger.ListByCategory(r.Context(), r.PathValue("id"), rng, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	rng, err := ParseDateRange(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.svc.Ledger.Summarize(r.Context(), r.PathValue("id"), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
