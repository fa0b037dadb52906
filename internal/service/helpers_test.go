package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/service"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
	"github.com/pkordes/crimsoncollab/backend/testutil"
)

// fakeRecorder is a hand-written test double for service.SyncRecorder that
// remembers every enqueue.
type fakeRecorder struct {
	mu  sync.Mutex
	ops []domain.SyncOperation
	err error
}

func (f *fakeRecorder) Enqueue(_ context.Context, entityType, action, entityID string, _ any) (domain.SyncOperation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.SyncOperation{}, f.err
	}
	op := domain.SyncOperation{EntityType: entityType, Action: action, EntityID: entityID, Status: domain.SyncPending}
	f.ops = append(f.ops, op)
	return op, nil
}

func (f *fakeRecorder) recorded() []domain.SyncOperation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SyncOperation(nil), f.ops...)
}

// fakeCalendar is a hand-written test double for service.CalendarSyncer.
type fakeCalendar struct {
	trips  []domain.Trip
	groups []domain.Group
}

func (f *fakeCalendar) SyncTrip(_ context.Context, t domain.Trip) bool {
	f.trips = append(f.trips, t)
	return true
}

func (f *fakeCalendar) SyncGroup(_ context.Context, g domain.Group) bool {
	f.groups = append(f.groups, g)
	return true
}

var (
	_ service.SyncRecorder   = (*fakeRecorder)(nil)
	_ service.CalendarSyncer = (*fakeCalendar)(nil)
)

// ---- helpers ---------------------------------------------------------------

// frozenClock returns a clock that always reports the same instant, so tests
// can check that LastUpdated still moves forward.
func frozenClock() func() time.Time {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, _ := testutil.NewStore(t)
	return s
}

func quietLogger() service.Option {
	return service.WithLogger(testutil.DiscardLogger())
}

func ptr[T any](v T) *T { return &v }
