package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.pages.Parse(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := ParseTransactionFilter(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.svc.Ledger.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.NewTransaction
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, "", err)
		return
	}
	v, err := s.svc.Ledger.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Ledger.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var patch core.TransactionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		badRequest(w, r, "", err)
		return
	}
	v, err := s.svc.Ledger.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ledger.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}
