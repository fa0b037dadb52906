package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// MessageRepo defines the persistence operations for messages attached to a
// parent trip or group. Trip and group messages live in separate collections
// but share this interface.
type MessageRepo interface {
	// Create appends msg under parentID and returns the stored record.
	Create(ctx context.Context, parentID string, msg domain.Message) (domain.Message, error)

	// ListByParent returns one page of the parent's messages in insertion order.
	// An unknown parentID yields an empty slice, not an error.
	ListByParent(ctx context.Context, parentID string, p domain.PaginationParams) ([]domain.Message, error)

	// List returns every message in the collection.
	List(ctx context.Context) ([]domain.Message, error)

	// Upsert replaces the message with the same id or appends it.
	Upsert(ctx context.Context, msg domain.Message) (domain.Message, error)
}

type storeMessageRepo struct {
	name string // for error prefixes
	c    collection[domain.Message]
}

// NewTripMessageRepo constructs a MessageRepo over the trip messages collection.
func NewTripMessageRepo(s *store.Store) MessageRepo {
	return newMessageRepo(s, domain.KeyMessages, "repo.TripMessageRepo")
}

// NewGroupMessageRepo constructs a MessageRepo over the group messages collection.
func NewGroupMessageRepo(s *store.Store) MessageRepo {
	return newMessageRepo(s, domain.KeyGroupMessages, "repo.GroupMessageRepo")
}

func newMessageRepo(s *store.Store, key domain.Key, name string) *storeMessageRepo {
	return &storeMessageRepo{name: name, c: newCollection(s, key,
		func(m *domain.Message) *string { return &m.ID },
		func(m *domain.Message, now time.Time) {
			if m.CreatedAt.IsZero() {
				m.CreatedAt = now
			}
		},
	)}
}

func (r *storeMessageRepo) Create(ctx context.Context, parentID string, msg domain.Message) (domain.Message, error) {
	msg.ParentID = parentID
	result, err := r.c.insert(ctx, msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%s.Create: %w", r.name, err)
	}
	return result, nil
}

func (r *storeMessageRepo) ListByParent(ctx context.Context, parentID string, p domain.PaginationParams) ([]domain.Message, error) {
	msgs, err := r.c.filter(ctx, func(m domain.Message) bool { return m.ParentID == parentID })
	if err != nil {
		return msgs, fmt.Errorf("%s.ListByParent: %w", r.name, err)
	}
	start, end := p.Window(len(msgs))
	return msgs[start:end], nil
}

func (r *storeMessageRepo) List(ctx context.Context) ([]domain.Message, error) {
	msgs, err := r.c.all(ctx)
	if err != nil {
		return msgs, fmt.Errorf("%s.List: %w", r.name, err)
	}
	return msgs, nil
}

func (r *storeMessageRepo) Upsert(ctx context.Context, msg domain.Message) (domain.Message, error) {
	result, err := r.c.upsert(ctx, msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%s.Upsert: %w", r.name, err)
	}
	return result, nil
}
