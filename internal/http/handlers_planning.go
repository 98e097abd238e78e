package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"saldo/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, ownerID int64) {
	t := core.CategoryType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	if t != "" && !t.IsValid() {
		writeError(w, r, core.NewValidationError("type", fmt.Errorf("invalid category type %q", t)))
		return
	}
	cats, err := s.svc.Categories.List(r.Context(), ownerID, t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cats, newCategoryResponse))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	var p categoryPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.svc.Categories.Create(r.Context(), ownerID, p.toCategory(0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryResponse(created))
}

func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request, ownerID int64) {
	n, err := s.svc.Categories.SeedDefaults(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"inserted": n})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p categoryPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Categories.Update(r.Context(), ownerID, p.toCategory(id)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBudgetGoals(w http.ResponseWriter, r *http.Request, ownerID int64) {
	month := core.Month(strings.TrimSpace(r.URL.Query().Get("month")))
	goals, err := s.svc.Budgets.List(r.Context(), ownerID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(goals, newBudgetGoalResponse))
}

// handleSaveBudgetGoal upserts: a second goal for the same category and
// month replaces the first one's limit.
func (s *Server) handleSaveBudgetGoal(w http.ResponseWriter, r *http.Request, ownerID int64) {
	var p budgetGoalPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := p.toGoal(0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.svc.Budgets.Save(r.Context(), ownerID, g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBudgetGoalResponse(saved))
}

func (s *Server) handleUpdateBudgetGoal(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p budgetGoalPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := p.toGoal(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Budgets.Update(r.Context(), ownerID, g); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBudgetGoal(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Budgets.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSummary defaults to the current month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, ownerID int64) {
	month := core.Month(strings.TrimSpace(r.URL.Query().Get("month")))
	if month == "" {
		month = core.CurrentMonth(time.Now())
	}
	sum, err := s.svc.Summaries.Month(r.Context(), ownerID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(sum))
}
