package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the store-backed
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create appends a new trip and returns the stored record (with generated
	// id and created_at populated). Returns domain.ErrConflict on a duplicate id.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Trip, error)

	// List returns all trips in insertion order.
	List(ctx context.Context) ([]domain.Trip, error)

	// Update applies fn to the stored trip atomically and returns the result.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, id string, fn func(domain.Trip) (domain.Trip, error)) (domain.Trip, error)

	// Upsert replaces the trip with the same id or appends it.
	Upsert(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

// storeTripRepo is the store-backed implementation of TripRepo.
type storeTripRepo struct {
	c collection[domain.Trip]
}

// NewTripRepo constructs a TripRepo over the trips collection document.
func NewTripRepo(s *store.Store) TripRepo {
	return &storeTripRepo{c: newCollection(s, domain.KeyTrips,
		func(t *domain.Trip) *string { return &t.ID },
		func(t *domain.Trip, now time.Time) {
			if t.CreatedAt.IsZero() {
				t.CreatedAt = now
			}
		},
	)}
}

func (r *storeTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	result, err := r.c.insert(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *storeTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	result, err := r.c.find(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *storeTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := r.c.all(ctx)
	if err != nil {
		return trips, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	return trips, nil
}

func (r *storeTripRepo) Update(ctx context.Context, id string, fn func(domain.Trip) (domain.Trip, error)) (domain.Trip, error) {
	result, err := r.c.modify(ctx, id, fn)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *storeTripRepo) Upsert(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	result, err := r.c.upsert(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Upsert: %w", err)
	}
	return result, nil
}
