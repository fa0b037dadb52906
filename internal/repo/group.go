package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// GroupRepo defines the persistence operations for Groups.
type GroupRepo interface {
	// Create appends a new group and returns the stored record.
	// Returns domain.ErrConflict on a duplicate id.
	Create(ctx context.Context, group domain.Group) (domain.Group, error)

	// GetByID returns domain.ErrNotFound if no group with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Group, error)

	// List returns all groups in insertion order.
	List(ctx context.Context) ([]domain.Group, error)

	// ListByMember returns the groups memberID created or belongs to.
	ListByMember(ctx context.Context, memberID string) ([]domain.Group, error)

	// Update applies fn to the stored group atomically.
	Update(ctx context.Context, id string, fn func(domain.Group) (domain.Group, error)) (domain.Group, error)

	// Upsert replaces the group with the same id or appends it.
	Upsert(ctx context.Context, group domain.Group) (domain.Group, error)
}

type storeGroupRepo struct {
	c collection[domain.Group]
}

// NewGroupRepo constructs a GroupRepo over the groups collection document.
func NewGroupRepo(s *store.Store) GroupRepo {
	return &storeGroupRepo{c: newCollection(s, domain.KeyGroups,
		func(g *domain.Group) *string { return &g.ID },
		func(g *domain.Group, now time.Time) {
			if g.CreatedAt.IsZero() {
				g.CreatedAt = now
			}
		},
	)}
}

func (r *storeGroupRepo) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	result, err := r.c.insert(ctx, group)
	if err != nil {
		return domain.Group{}, fmt.Errorf("repo.GroupRepo.Create: %w", err)
	}
	return result, nil
}

func (r *storeGroupRepo) GetByID(ctx context.Context, id string) (domain.Group, error) {
	result, err := r.c.find(ctx, id)
	if err != nil {
		return domain.Group{}, fmt.Errorf("repo.GroupRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *storeGroupRepo) List(ctx context.Context) ([]domain.Group, error) {
	groups, err := r.c.all(ctx)
	if err != nil {
		return groups, fmt.Errorf("repo.GroupRepo.List: %w", err)
	}
	return groups, nil
}

func (r *storeGroupRepo) ListByMember(ctx context.Context, memberID string) ([]domain.Group, error) {
	groups, err := r.c.filter(ctx, func(g domain.Group) bool {
		return g.CreatorID == memberID || g.HasMember(memberID)
	})
	if err != nil {
		return groups, fmt.Errorf("repo.GroupRepo.ListByMember: %w", err)
	}
	return groups, nil
}

func (r *storeGroupRepo) Update(ctx context.Context, id string, fn func(domain.Group) (domain.Group, error)) (domain.Group, error) {
	result, err := r.c.modify(ctx, id, fn)
	if err != nil {
		return domain.Group{}, fmt.Errorf("repo.GroupRepo.Update: %w", err)
	}
	return result, nil
}

func (r *storeGroupRepo) Upsert(ctx context.Context, group domain.Group) (domain.Group, error) {
	result, err := r.c.upsert(ctx, group)
	if err != nil {
		return domain.Group{}, fmt.Errorf("repo.GroupRepo.Upsert: %w", err)
	}
	return result, nil
}
