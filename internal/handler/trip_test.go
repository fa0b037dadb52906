package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/handler"
)

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:             "trip-1",
		Destination:    "Paris",
		Date:           "2025-12-31",
		Time:           "09:00",
		TotalSeats:     4,
		AvailableSeats: 3,
		CostPerPerson:  25,
		TripType:       "airport",
		CreatorID:      "u1",
		Participants:   []string{"u1"},
		CreatedAt:      time.Now().UTC(),
	}
}

func tripHandler(svc handler.TripServicer) http.Handler {
	return newHTTPHandler(handler.Deps{Trips: svc})
}

// ---- POST /api/trips -------------------------------------------------------

func TestCreateTrip_201(t *testing.T) {
	fixture := tripFixture()
	var got domain.Trip
	svc := &mockTripServicer{
		create: func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
			got = trip
			return fixture, nil
		},
	}

	rec := do(tripHandler(svc), http.MethodPost, "/api/trips", jsonBody(t, map[string]any{
		"destination":     "Paris",
		"date":            "2025-12-31",
		"total_seats":     4,
		"cost_per_person": 25,
	}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[domain.Trip](t, rec)
	assert.Equal(t, fixture.ID, resp.ID)

	assert.Equal(t, "2025-12-31", got.Date)
	assert.Equal(t, 4, got.AvailableSeats, "available seats default to total seats")
}

func TestCreateTrip_400_BadDate(t *testing.T) {
	svc := &mockTripServicer{}

	rec := do(tripHandler(svc), http.MethodPost, "/api/trips", jsonBody(t, map[string]any{
		"destination": "Paris",
		"date":        "31/12/2025",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Error.Code)
}

func TestCreateTrip_400_EmptyBody(t *testing.T) {
	rec := do(tripHandler(&mockTripServicer{}), http.MethodPost, "/api/trips", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body is required", decodeError(t, rec).Error.Message)
}

func TestCreateTrip_422_ValidationError(t *testing.T) {
	svc := &mockTripServicer{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w",
				fmt.Errorf("%w: destination is required", domain.ErrValidation))
		},
	}

	rec := do(tripHandler(svc), http.MethodPost, "/api/trips", jsonBody(t, map[string]any{"destination": ""}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.Equal(t, "destination is required", resp.Error.Message)
}

// ---- GET /api/trips --------------------------------------------------------

func TestListTrips_200(t *testing.T) {
	svc := &mockTripServicer{
		list: func(_ context.Context) ([]domain.Trip, error) {
			return []domain.Trip{tripFixture(), tripFixture()}, nil
		},
	}

	rec := do(tripHandler(svc), http.MethodGet, "/api/trips", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listBody[domain.Trip]](t, rec).Data, 2)
}

func TestListTrips_200_Empty(t *testing.T) {
	svc := &mockTripServicer{
		list: func(_ context.Context) ([]domain.Trip, error) { return nil, nil },
	}

	rec := do(tripHandler(svc), http.MethodGet, "/api/trips", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Must be a JSON array, not null.
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestListTrips_503_StoreUnavailable(t *testing.T) {
	svc := &mockTripServicer{
		list: func(_ context.Context) ([]domain.Trip, error) {
			return []domain.Trip{}, fmt.Errorf("repo.TripRepo.List: %w", domain.ErrUnavailable)
		},
	}

	rec := do(tripHandler(svc), http.MethodGet, "/api/trips", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decodeError(t, rec).Error.Code)
}

// ---- GET /api/trips/{id} ---------------------------------------------------

func TestGetTrip_200(t *testing.T) {
	fixture := tripFixture()
	svc := &mockTripServicer{
		getByID: func(_ context.Context, id string) (domain.Trip, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	rec := do(tripHandler(svc), http.MethodGet, "/api/trips/"+fixture.ID, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixture.Destination, decode[domain.Trip](t, rec).Destination)
}

func TestGetTrip_404(t *testing.T) {
	svc := &mockTripServicer{
		getByID: func(_ context.Context, _ string) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := do(tripHandler(svc), http.MethodGet, "/api/trips/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}

func TestGetTrip_500_HidesInternalError(t *testing.T) {
	svc := &mockTripServicer{
		getByID: func(_ context.Context, _ string) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("redis: connection refused")
		},
	}

	rec := do(tripHandler(svc), http.MethodGet, "/api/trips/x", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "internal_error", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "redis")
}

// ---- POST /api/trips/{id}/join ---------------------------------------------

func TestJoinTrip_200(t *testing.T) {
	svc := &mockTripServicer{
		join: func(_ context.Context, tripID, userID string) (domain.Trip, error) {
			trip := tripFixture()
			trip.ID = tripID
			trip.Participants = append(trip.Participants, userID)
			trip.AvailableSeats--
			return trip, nil
		},
	}

	rec := do(tripHandler(svc), http.MethodPost, "/api/trips/trip-1/join", jsonBody(t, map[string]string{"user_id": "u2"}))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[domain.Trip](t, rec)
	assert.Contains(t, resp.Participants, "u2")
	assert.Equal(t, 2, resp.AvailableSeats)
}

func TestJoinTrip_409_Full(t *testing.T) {
	svc := &mockTripServicer{
		join: func(_ context.Context, _, _ string) (domain.Trip, error) {
			return domain.Trip{}, fmt.Errorf("service.TripService.Join: %w: trip is full", domain.ErrConflict)
		},
	}

	rec := do(tripHandler(svc), http.MethodPost, "/api/trips/trip-1/join", jsonBody(t, map[string]string{"user_id": "u2"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "conflict", resp.Error.Code)
	assert.Equal(t, "trip is full", resp.Error.Message)
}

// ---- trip messages ---------------------------------------------------------

func TestTripMessages_SendAndList(t *testing.T) {
	var gotPage domain.PaginationParams
	svc := &mockMessageServicer{
		sendTrip: func(_ context.Context, tripID string, msg domain.Message) (domain.Message, error) {
			msg.ID = "m1"
			msg.ParentID = tripID
			return msg, nil
		},
		listTrip: func(_ context.Context, _ string, p domain.PaginationParams) ([]domain.Message, error) {
			gotPage = p
			return nil, nil
		},
	}
	h := newHTTPHandler(handler.Deps{Messages: svc})

	rec := do(h, http.MethodPost, "/api/trips/trip-1/messages", jsonBody(t, map[string]string{"text": "see you at 9"}))
	require.Equal(t, http.StatusCreated, rec.Code)
	sent := decode[domain.Message](t, rec)
	assert.Equal(t, "trip-1", sent.ParentID)

	rec = do(h, http.MethodGet, "/api/trips/unknown/messages?limit=500&offset=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
	assert.Equal(t, domain.PaginationParams{Limit: 100, Offset: 2}, gotPage)
}

func TestTripMessages_400_BadLimit(t *testing.T) {
	h := newHTTPHandler(handler.Deps{Messages: &mockMessageServicer{}})

	rec := do(h, http.MethodGet, "/api/trips/trip-1/messages?limit=ten", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
