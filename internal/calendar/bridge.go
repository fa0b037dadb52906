// Package calendar turns trips, groups and collaborations into dashboard
// calendar events. Events are snapshots of the source entity at sync time.
package calendar

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
)

// Defaults applied when the source entity leaves a field empty.
const (
	DefaultTripTime       = "09:00"
	DefaultTripDuration   = "1 day"
	DefaultTripLocation   = "TBD"
	DefaultDestination    = "Unknown Destination"
	DefaultGroupTime      = "19:00"
	DefaultGroupDuration  = "2 hours"
	DefaultCollabTime     = "10:00"
	DefaultCollabDuration = "1 hour"
	DefaultOnlineLocation = "Online"
	defaultGroupTitle     = "Group Meeting"
	defaultCollabTitle    = "Collaboration"
)

// Bridge normalizes entities into CalendarEvents and persists them.
// Every Sync method reports success as a bool and never returns an error:
// a failed calendar sync must not fail the action that triggered it.
type Bridge struct {
	repo repo.CalendarRepo
	log  *slog.Logger
	now  func() time.Time
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithClock overrides time.Now, which supplies the default date.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

// NewBridge returns a Bridge that stores events through r.
func NewBridge(r repo.CalendarRepo, log *slog.Logger, opts ...Option) *Bridge {
	b := &Bridge{repo: r, log: log, now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// SyncTrip places a trip on the calendar.
func (b *Bridge) SyncTrip(ctx context.Context, t domain.Trip) bool {
	_, ok := b.save(ctx, b.TripEvent(t))
	return ok
}

// SyncGroup places a group's next meeting on the calendar.
func (b *Bridge) SyncGroup(ctx context.Context, g domain.Group) bool {
	_, ok := b.save(ctx, b.GroupEvent(g))
	return ok
}

// SyncCollaboration places a collaboration session on the calendar.
func (b *Bridge) SyncCollaboration(ctx context.Context, c domain.Collaboration) bool {
	_, ok := b.save(ctx, b.CollaborationEvent(c))
	return ok
}

// SyncEvent is the untyped entry point: data is a JSON-shaped map decoded
// according to source. Unknown sources and undecodable data return false.
func (b *Bridge) SyncEvent(ctx context.Context, source domain.CalendarSource, data map[string]any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		b.log.WarnContext(ctx, "calendar event data not encodable", "source", source, "error", err)
		return false
	}
	switch source {
	case domain.SourceTrip:
		var t domain.Trip
		if !b.decode(ctx, source, raw, &t) {
			return false
		}
		return b.SyncTrip(ctx, t)
	case domain.SourceGroup:
		var g domain.Group
		if !b.decode(ctx, source, raw, &g) {
			return false
		}
		return b.SyncGroup(ctx, g)
	case domain.SourceCollaboration:
		var c domain.Collaboration
		if !b.decode(ctx, source, raw, &c) {
			return false
		}
		return b.SyncCollaboration(ctx, c)
	default:
		b.log.WarnContext(ctx, "unknown calendar event source", "source", source)
		return false
	}
}

// Events returns every calendar event in insertion order.
func (b *Bridge) Events(ctx context.Context) ([]domain.CalendarEvent, error) {
	return b.repo.List(ctx)
}

func (b *Bridge) decode(ctx context.Context, source domain.CalendarSource, raw []byte, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		b.log.WarnContext(ctx, "calendar event data not decodable", "source", source, "error", err)
		return false
	}
	return true
}

func (b *Bridge) save(ctx context.Context, ev domain.CalendarEvent) (domain.CalendarEvent, bool) {
	stored, err := b.repo.Create(ctx, ev)
	if err != nil {
		b.log.WarnContext(ctx, "calendar sync failed",
			"source", ev.Source, "source_id", ev.SourceID, "error", err)
		return ev, false
	}
	return stored, true
}

// ---- normalization ---------------------------------------------------------

// TripEvent builds the calendar event for a trip.
func (b *Bridge) TripEvent(t domain.Trip) domain.CalendarEvent {
	dest := firstNonEmpty(t.Destination, DefaultDestination)
	return domain.CalendarEvent{
		Title:        "Trip to " + dest,
		Date:         b.date(t.Date),
		Time:         clockOr(t.Time, DefaultTripTime),
		Description:  t.Description,
		Duration:     DefaultTripDuration,
		Location:     firstNonEmpty(t.Destination, DefaultTripLocation),
		Participants: t.Participants,
		Source:       domain.SourceTrip,
		SourceID:     t.ID,
	}
}

// GroupEvent builds the calendar event for a group meeting.
func (b *Bridge) GroupEvent(g domain.Group) domain.CalendarEvent {
	return domain.CalendarEvent{
		Title:        firstNonEmpty(g.Name, defaultGroupTitle),
		Date:         b.date(g.Date),
		Time:         clockOr(g.Time, DefaultGroupTime),
		Description:  g.Description,
		Duration:     DefaultGroupDuration,
		Location:     DefaultOnlineLocation,
		Participants: g.Members,
		Source:       domain.SourceGroup,
		SourceID:     g.ID,
	}
}

// CollaborationEvent builds the calendar event for a collaboration session.
func (b *Bridge) CollaborationEvent(c domain.Collaboration) domain.CalendarEvent {
	return domain.CalendarEvent{
		Title:        firstNonEmpty(c.Title, defaultCollabTitle),
		Date:         b.date(c.Date),
		Time:         clockOr(c.Time, DefaultCollabTime),
		Description:  c.Description,
		Duration:     firstNonEmpty(c.Duration, DefaultCollabDuration),
		Location:     firstNonEmpty(c.Location, DefaultOnlineLocation),
		Participants: c.Participants,
		Source:       domain.SourceCollaboration,
		SourceID:     c.ID,
	}
}

// date normalizes s to YYYY-MM-DD, falling back to today (UTC).
func (b *Bridge) date(s string) string {
	if d := NormalizeDate(s); d != "" {
		return d
	}
	return b.now().UTC().Format(time.DateOnly)
}

func clockOr(s, def string) string {
	if c := NormalizeClock(s); c != "" {
		return c
	}
	return def
}
