package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// InviteRepo defines the persistence operations for group Invites.
type InviteRepo interface {
	Create(ctx context.Context, inv domain.Invite) (domain.Invite, error)
	GetByID(ctx context.Context, id string) (domain.Invite, error)
	List(ctx context.Context) ([]domain.Invite, error)
	ListByGroup(ctx context.Context, groupID string) ([]domain.Invite, error)

	// ListByEmail matches the invitee email case-insensitively.
	ListByEmail(ctx context.Context, email string) ([]domain.Invite, error)

	Update(ctx context.Context, id string, fn func(domain.Invite) (domain.Invite, error)) (domain.Invite, error)
	Upsert(ctx context.Context, inv domain.Invite) (domain.Invite, error)
}

type storeInviteRepo struct {
	c collection[domain.Invite]
}

// NewInviteRepo constructs an InviteRepo over the invites collection document.
func NewInviteRepo(s *store.Store) InviteRepo {
	return &storeInviteRepo{c: newCollection(s, domain.KeyInvites,
		func(i *domain.Invite) *string { return &i.ID },
		func(i *domain.Invite, now time.Time) {
			if i.CreatedAt.IsZero() {
				i.CreatedAt = now
			}
			if i.UpdatedAt.IsZero() {
				i.UpdatedAt = i.CreatedAt
			}
		},
	)}
}

func (r *storeInviteRepo) Create(ctx context.Context, inv domain.Invite) (domain.Invite, error) {
	result, err := r.c.insert(ctx, inv)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.Create: %w", err)
	}
	return result, nil
}

func (r *storeInviteRepo) GetByID(ctx context.Context, id string) (domain.Invite, error) {
	result, err := r.c.find(ctx, id)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *storeInviteRepo) List(ctx context.Context) ([]domain.Invite, error) {
	invites, err := r.c.all(ctx)
	if err != nil {
		return invites, fmt.Errorf("repo.InviteRepo.List: %w", err)
	}
	return invites, nil
}

func (r *storeInviteRepo) ListByGroup(ctx context.Context, groupID string) ([]domain.Invite, error) {
	invites, err := r.c.filter(ctx, func(i domain.Invite) bool { return i.GroupID == groupID })
	if err != nil {
		return invites, fmt.Errorf("repo.InviteRepo.ListByGroup: %w", err)
	}
	return invites, nil
}

func (r *storeInviteRepo) ListByEmail(ctx context.Context, email string) ([]domain.Invite, error) {
	invites, err := r.c.filter(ctx, func(i domain.Invite) bool { return strings.EqualFold(i.InviteeEmail, email) })
	if err != nil {
		return invites, fmt.Errorf("repo.InviteRepo.ListByEmail: %w", err)
	}
	return invites, nil
}

func (r *storeInviteRepo) Update(ctx context.Context, id string, fn func(domain.Invite) (domain.Invite, error)) (domain.Invite, error) {
	result, err := r.c.modify(ctx, id, fn)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.Update: %w", err)
	}
	return result, nil
}

func (r *storeInviteRepo) Upsert(ctx context.Context, inv domain.Invite) (domain.Invite, error) {
	result, err := r.c.upsert(ctx, inv)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.Upsert: %w", err)
	}
	return result, nil
}
