package http

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

// handleListExpenses serves both /api/expenses and /api/expenses/filter.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	expenses, err := s.svc.Expenses.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newExpenseResponses(expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	e, err := s.svc.Expenses.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newExpenseResponse(e))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.svc.Expenses.Create(r.Context(), req.toExpense(0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.expensesCreated, 1)

	s.logger.InfoContext(r.Context(), "Expense created",
		log.NewFields().
			WithExpense(created.ID, core.FormatAmount(created.Amount), created.Category).
			WithOperation(log.OpCreate).
			ToSlice()...)
	respondJSON(w, r, http.StatusCreated, newExpenseResponse(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.svc.Expenses.Update(r.Context(), req.toExpense(id))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.svc.Expenses.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondNoContent(w, r)
}

// handleCategorySummary totals the filtered expenses per category.
func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	rows, err := s.svc.Expenses.CategorySummary(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newCategoryAmounts(rows))
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	ov, err := s.svc.Expenses.MonthlySummary(r.Context(), params.Year, params.Month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newMonthlySummaryResponse(ov))
}

// handleExportExpenses renders the filtered expenses as a CSV attachment.
// The CSV is built in memory so a listing failure still yields a JSON error.
func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	expenses, err := s.svc.Expenses.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses); err != nil {
		respondError(w, r, err)
		return
	}

	NewJSONResponse().
		Header("Content-Disposition", contentDisposition(export.Filename(core.DateOf(s.now())))).
		Stream("text/csv; charset=utf-8", func(out io.Writer) error {
			_, err := buf.WriteTo(out)
			return err
		}).
		Write(w, r)
}
