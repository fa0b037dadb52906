package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// CalendarRepo persists the dashboard's calendar events.
type CalendarRepo interface {
	Create(ctx context.Context, ev domain.CalendarEvent) (domain.CalendarEvent, error)
	List(ctx context.Context) ([]domain.CalendarEvent, error)
}

type storeCalendarRepo struct {
	c collection[domain.CalendarEvent]
}

// NewCalendarRepo constructs a CalendarRepo over the calendar events collection.
func NewCalendarRepo(s *store.Store) CalendarRepo {
	return &storeCalendarRepo{c: newCollection(s, domain.KeyCalendarEvents,
		func(e *domain.CalendarEvent) *string { return &e.ID },
		func(e *domain.CalendarEvent, now time.Time) {
			if e.CreatedAt.IsZero() {
				e.CreatedAt = now
			}
		},
	)}
}

func (r *storeCalendarRepo) Create(ctx context.Context, ev domain.CalendarEvent) (domain.CalendarEvent, error) {
	result, err := r.c.insert(ctx, ev)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("repo.CalendarRepo.Create: %w", err)
	}
	return result, nil
}

func (r *storeCalendarRepo) List(ctx context.Context) ([]domain.CalendarEvent, error) {
	events, err := r.c.all(ctx)
	if err != nil {
		return events, fmt.Errorf("repo.CalendarRepo.List: %w", err)
	}
	return events, nil
}
