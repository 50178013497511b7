package http

import (
	"net/http"
	"sync/atomic"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const defaultPreviewCount = 5

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	s.listRecurring(w, r, false)
}

func (s *Server) handleListActiveRecurring(w http.ResponseWriter, r *http.Request) {
	s.listRecurring(w, r, true)
}

func (s *Server) listRecurring(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	defs, err := s.svc.Recurring.List(r.Context(), activeOnly)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]recurringResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, newRecurringResponse(d))
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	def, err := s.svc.Recurring.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newRecurringResponse(def))
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := s.svc.Recurring.Create(r.Context(), req.toRecurring(0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Recurring expense created",
		log.NewFields().
			WithRecurring(created.ID, created.Frequency.String(), created.NextOccurrence.String()).
			WithOperation(log.OpCreate).
			ToSlice()...)
	respondJSON(w, r, http.StatusCreated, newRecurringResponse(created))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	updated, err := s.svc.Recurring.Update(r.Context(), req.toRecurring(id))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newRecurringResponse(updated))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.svc.Recurring.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondNoContent(w, r)
}

// handleToggleRecurring sets the active flag from ?active=bool and returns
// the updated series.
func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	active, err := boolParam(r.URL.Query(), "active")
	if err != nil {
		respondError(w, r, err)
		return
	}
	toggled, err := s.svc.Recurring.Toggle(r.Context(), id, active)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newRecurringResponse(toggled))
}

func (s *Server) handlePreviewRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	count, err := intParam(r.URL.Query(), "count", defaultPreviewCount, 1, services.MaxPreviewCount)
	if err != nil {
		respondError(w, r, err)
		return
	}
	dates, err := s.svc.Recurring.Preview(r.Context(), id, count)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if dates == nil {
		dates = []core.Date{}
	}
	respondJSON(w, r, http.StatusOK, previewResponse{ID: id, Dates: dates})
}

// handleProcessRecurring runs one processor tick for today.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	today := core.DateOf(s.now())
	created, err := s.svc.Processor.ProcessDue(r.Context(), today)
	if err != nil {
		respondError(w, r, err)
		return
	}
	atomic.AddInt64(&s.appMetrics.processRuns, 1)
	respondJSON(w, r, http.StatusOK, processResponse{Date: today, Created: created})
}
