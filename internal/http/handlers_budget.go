package http

import (
	"net/http"

	"fintrack/internal/log"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Budget.Get(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newBudgetResponse(b))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	b, err := s.svc.Budget.Set(r.Context(), req.MonthlyLimit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Monthly budget set",
		"monthly_limit", newBudgetResponse(b).MonthlyLimit,
		log.FieldOperation, log.OpUpdate)
	respondJSON(w, r, http.StatusCreated, newBudgetResponse(b))
}

// handleBudgetStatus evaluates the current calendar month.
func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Budget.Status(r.Context(), s.now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newBudgetStatusResponse(snap))
}
