package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// CreateTripRequest is the body of POST /api/trips. Date is parsed strictly
// as YYYY-MM-DD; AvailableSeats defaults to TotalSeats when omitted.
type CreateTripRequest struct {
	Destination    string              `json:"destination"`
	Date           *openapi_types.Date `json:"date,omitempty"`
	Time           string              `json:"time,omitempty"`
	TotalSeats     int                 `json:"total_seats"`
	AvailableSeats *int                `json:"available_seats,omitempty"`
	CostPerPerson  float64             `json:"cost_per_person"`
	TripType       string              `json:"trip_type,omitempty"`
	Description    string              `json:"description,omitempty"`
	CreatorID      string              `json:"creator_id,omitempty"`
}

// MembershipRequest is the body of the join endpoints.
type MembershipRequest struct {
	UserID string `json:"user_id"`
}

// CreateTrip handles POST /api/trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !readJSON(w, r, &body) {
		return
	}
	created, err := s.Trips.Create(r.Context(), requestToTrip(body))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTrips handles GET /api/trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.Trips.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(trips))
}

// GetTrip handles GET /api/trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.Trips.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// JoinTrip handles POST /api/trips/{id}/join.
func (s *Server) JoinTrip(w http.ResponseWriter, r *http.Request) {
	var body MembershipRequest
	if !readJSON(w, r, &body) {
		return
	}
	trip, err := s.Trips.Join(r.Context(), chi.URLParam(r, "id"), body.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// SendTripMessage handles POST /api/trips/{id}/messages.
func (s *Server) SendTripMessage(w http.ResponseWriter, r *http.Request) {
	var msg domain.Message
	if !readJSON(w, r, &msg) {
		return
	}
	sent, err := s.Messages.SendTripMessage(r.Context(), chi.URLParam(r, "id"), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sent)
}

// ListTripMessages handles GET /api/trips/{id}/messages.
// Supports ?limit= and ?offset= (defaults: limit=50, offset=0, max limit=100).
func (s *Server) ListTripMessages(w http.ResponseWriter, r *http.Request) {
	p, ok := pageParams(w, r)
	if !ok {
		return
	}
	msgs, err := s.Messages.ListTripMessages(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(msgs))
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a CreateTripRequest body into a domain.Trip.
func requestToTrip(body CreateTripRequest) domain.Trip {
	t := domain.Trip{
		Destination:    body.Destination,
		Time:           body.Time,
		TotalSeats:     body.TotalSeats,
		AvailableSeats: body.TotalSeats,
		CostPerPerson:  body.CostPerPerson,
		TripType:       body.TripType,
		Description:    body.Description,
		CreatorID:      body.CreatorID,
	}
	if body.AvailableSeats != nil {
		t.AvailableSeats = *body.AvailableSeats
	}
	t.Date = formatDate(body.Date)
	return t
}

func formatDate(d *openapi_types.Date) string {
	if d == nil {
		return ""
	}
	return d.Format(time.DateOnly)
}

// pageParams binds ?limit= and ?offset=. A malformed value is a 400.
func pageParams(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var limit, offset *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		badRequest(w, "invalid limit parameter")
		return domain.PaginationParams{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", q, &offset); err != nil {
		badRequest(w, "invalid offset parameter")
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(limit, offset), true
}
