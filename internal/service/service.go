// Package service contains the business logic for the shared data service.
// Services validate and normalize inputs, enforce business rules, and
// orchestrate repo calls. No storage details live here: services depend on
// repo interfaces, and on narrow interfaces for the sync queue and calendar.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// SyncRecorder records a local write for later reconciliation with a remote.
// *syncq.Queue satisfies it.
type SyncRecorder interface {
	Enqueue(ctx context.Context, entityType, action, entityID string, payload any) (domain.SyncOperation, error)
}

// CalendarSyncer places trips and groups on the dashboard calendar.
// *calendar.Bridge satisfies it.
type CalendarSyncer interface {
	SyncTrip(ctx context.Context, trip domain.Trip) bool
	SyncGroup(ctx context.Context, group domain.Group) bool
}

// deps is embedded by every service: the optional collaborators and clock.
type deps struct {
	sync     SyncRecorder
	calendar CalendarSyncer
	log      *slog.Logger
	now      func() time.Time
}

// Option configures optional collaborators of a service.
type Option func(*deps)

// WithSync makes the service enqueue a SyncOperation after every write.
func WithSync(r SyncRecorder) Option {
	return func(d *deps) { d.sync = r }
}

// WithCalendar makes the service sync joined trips and groups to the calendar.
func WithCalendar(c CalendarSyncer) Option {
	return func(d *deps) { d.calendar = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *deps) { d.log = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

func newDeps(opts []Option) deps {
	d := deps{log: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// record enqueues a sync operation. The local write has already succeeded, so
// a queue failure is logged rather than returned. A write without an entity
// id cannot be reconciled by the peer and is never queued.
func (d deps) record(ctx context.Context, entityType, action, entityID string, payload any) {
	if d.sync == nil {
		return
	}
	if entityID == "" {
		d.log.WarnContext(ctx, "sync enqueue skipped: no entity id", "entity_type", entityType)
		return
	}
	if _, err := d.sync.Enqueue(ctx, entityType, action, entityID, payload); err != nil {
		d.log.WarnContext(ctx, "sync enqueue failed",
			"entity_type", entityType, "entity_id", entityID, "error", err)
	}
}
