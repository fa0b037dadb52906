package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	deps
	repo repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo, opts ...Option) *TripService {
	return &TripService{deps: newDeps(opts), repo: r}
}

// Create validates, normalizes and persists a new trip.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = normalizeTrip(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.record(ctx, domain.EntityTrip, domain.ActionCreate, result.ID, result)
	return result, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all trips in insertion order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.repo.List(ctx)
	if trips == nil {
		trips = []domain.Trip{}
	}
	if err != nil {
		return trips, fmt.Errorf("service.TripService.List: %w", err)
	}
	return trips, nil
}

// Join takes a seat on the trip for userID and puts the trip on the calendar.
// Joining twice is a no-op. Returns domain.ErrConflict when no seats are left.
func (s *TripService) Join(ctx context.Context, tripID, userID string) (domain.Trip, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Trip{}, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}

	joined := false
	result, err := s.repo.Update(ctx, tripID, func(t domain.Trip) (domain.Trip, error) {
		if t.HasParticipant(userID) {
			return t, nil
		}
		if t.AvailableSeats <= 0 {
			return t, fmt.Errorf("%w: trip is full", domain.ErrConflict)
		}
		t.AvailableSeats--
		t.Participants = append(t.Participants, userID)
		joined = true
		return t, nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Join: %w", err)
	}

	if joined {
		if s.calendar != nil && !s.calendar.SyncTrip(ctx, result) {
			s.log.WarnContext(ctx, "calendar sync failed", "trip_id", result.ID)
		}
		s.record(ctx, domain.EntityTrip, domain.ActionUpdate, result.ID, result)
	}
	return result, nil
}

// normalizeTrip trims free-text fields.
func normalizeTrip(t domain.Trip) domain.Trip {
	t.Destination = strings.TrimSpace(t.Destination)
	t.TripType = strings.ToLower(strings.TrimSpace(t.TripType))
	t.Description = strings.TrimSpace(t.Description)
	t.Date = strings.TrimSpace(t.Date)
	t.Time = strings.TrimSpace(t.Time)
	return t
}

// validateTrip enforces the trip invariants.
//   - Destination must be non-empty.
//   - Seat counts must be non-negative with available <= total.
//   - Cost per person must be non-negative.
//   - Date and time, when set, must be YYYY-MM-DD and HH:MM.
func validateTrip(t domain.Trip) error {
	if t.Destination == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	}
	if t.TotalSeats < 0 || t.AvailableSeats < 0 {
		return fmt.Errorf("%w: seat counts must not be negative", domain.ErrValidation)
	}
	if t.AvailableSeats > t.TotalSeats {
		return fmt.Errorf("%w: available_seats must not exceed total_seats", domain.ErrValidation)
	}
	if t.CostPerPerson < 0 {
		return fmt.Errorf("%w: cost_per_person must not be negative", domain.ErrValidation)
	}
	return validateSchedule(t.Date, t.Time)
}

func validateSchedule(date, clock string) error {
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
		}
	}
	if clock != "" {
		if _, err := time.Parse("15:04", clock); err != nil {
			return fmt.Errorf("%w: time must be HH:MM", domain.ErrValidation)
		}
	}
	return nil
}
