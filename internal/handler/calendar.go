package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// SyncResponse is the body returned when an item was placed on the calendar.
type SyncResponse struct {
	Synced bool `json:"synced"`
}

// ListCalendarEvents handles GET /api/calendar.
func (s *Server) ListCalendarEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.Calendar.Events(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(events))
}

// SyncCalendarEvent handles POST /api/calendar/{source}. The body is the raw
// source entity; missing fields take the calendar defaults.
func (s *Server) SyncCalendarEvent(w http.ResponseWriter, r *http.Request) {
	source := domain.CalendarSource(chi.URLParam(r, "source"))
	switch source {
	case domain.SourceTrip, domain.SourceGroup, domain.SourceCollaboration:
	default:
		writeErrorBody(w, http.StatusNotFound, "not_found", "unknown calendar source "+string(source))
		return
	}

	var data map[string]any
	if !readJSON(w, r, &data) {
		return
	}
	if !s.Calendar.SyncEvent(r.Context(), source, data) {
		writeErrorBody(w, http.StatusUnprocessableEntity, "sync_failed", "event could not be added to the calendar")
		return
	}
	writeJSON(w, http.StatusCreated, SyncResponse{Synced: true})
}

// SyncTripCard handles POST /api/calendar/cards/trip. The body is the HTML
// markup of a rendered trip card.
func (s *Server) SyncTripCard(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorBody(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return
		}
		badRequest(w, "could not read request body")
		return
	}
	markup := strings.TrimSpace(string(raw))
	if markup == "" {
		badRequest(w, "request body is required")
		return
	}

	ev, ok := s.Calendar.SyncTripCard(r.Context(), markup)
	if !ok {
		writeErrorBody(w, http.StatusUnprocessableEntity, "sync_failed", "trip card could not be added to the calendar")
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}
