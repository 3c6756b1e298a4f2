package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.Goals.ListGoals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in core.NewGoal
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, "", err)
		return
	}
	g, err := s.svc.Goals.CreateGoal(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.Goals.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var patch core.GoalPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		badRequest(w, r, "", err)
		return
	}
	g, err := s.svc.Goals.UpdateGoal(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Goals.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	page, err := s.pages.Parse(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.svc.Goals.ListContributions(r.Context(), r.PathValue("id"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	var in core.NewContribution
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, "", err)
		return
	}
	c, err := s.svc.Goals.AddContribution(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleRemoveContribution(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Goals.RemoveContribution(r.Context(), r.PathValue("goalId"), r.PathValue("contributionId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleGoalSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := ParseDateRange(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.svc.Goals.SummarizeContributions(r.Context(), r.PathValue("id"), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleReconcileGoal(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Goals.Reconcile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
