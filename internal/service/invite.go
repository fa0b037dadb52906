package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
)

// InviteService implements business logic for group invites.
// It holds the groups repo because an invite must point at an existing group,
// and accepting an invite adds the invitee to that group.
type InviteService struct {
	deps
	invites repo.InviteRepo
	groups  repo.GroupRepo
}

// NewInviteService constructs an InviteService backed by the provided repos.
func NewInviteService(invites repo.InviteRepo, groups repo.GroupRepo, opts ...Option) *InviteService {
	return &InviteService{deps: newDeps(opts), invites: invites, groups: groups}
}

// Create records a pending invite.
// Returns domain.ErrNotFound if the group does not exist and
// domain.ErrConflict if the email already has a pending invite to the group.
func (s *InviteService) Create(ctx context.Context, inv domain.Invite) (domain.Invite, error) {
	inv.InviteeEmail = strings.ToLower(strings.TrimSpace(inv.InviteeEmail))
	if _, err := mail.ParseAddress(inv.InviteeEmail); err != nil {
		return domain.Invite{}, fmt.Errorf("%w: invitee_email is not valid", domain.ErrValidation)
	}
	if _, err := s.groups.GetByID(ctx, inv.GroupID); err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}

	existing, err := s.invites.ListByGroup(ctx, inv.GroupID)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}
	for _, e := range existing {
		if e.Status == domain.InvitePending && strings.EqualFold(e.InviteeEmail, inv.InviteeEmail) {
			return domain.Invite{}, fmt.Errorf("%w: %s already has a pending invite", domain.ErrConflict, inv.InviteeEmail)
		}
	}

	inv.Status = domain.InvitePending
	result, err := s.invites.Create(ctx, inv)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}
	s.record(ctx, domain.EntityInvite, domain.ActionCreate, result.ID, result)
	return result, nil
}

// ListByGroup returns every invite sent for a group.
func (s *InviteService) ListByGroup(ctx context.Context, groupID string) ([]domain.Invite, error) {
	invites, err := s.invites.ListByGroup(ctx, groupID)
	if err != nil {
		return invites, fmt.Errorf("service.InviteService.ListByGroup: %w", err)
	}
	return invites, nil
}

// ListByEmail returns every invite addressed to email.
func (s *InviteService) ListByEmail(ctx context.Context, email string) ([]domain.Invite, error) {
	invites, err := s.invites.ListByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return invites, fmt.Errorf("service.InviteService.ListByEmail: %w", err)
	}
	return invites, nil
}

// Respond moves a pending invite to accepted or declined. Accepting adds the
// invitee email to the group's members.
// Returns domain.ErrConflict if the invite has already been answered.
func (s *InviteService) Respond(ctx context.Context, id string, status domain.InviteStatus) (domain.Invite, error) {
	if status != domain.InviteAccepted && status != domain.InviteDeclined {
		return domain.Invite{}, fmt.Errorf("%w: status must be accepted or declined", domain.ErrValidation)
	}

	result, err := s.invites.Update(ctx, id, func(inv domain.Invite) (domain.Invite, error) {
		if inv.Status != domain.InvitePending {
			return inv, fmt.Errorf("%w: invite is already %s", domain.ErrConflict, inv.Status)
		}
		inv.Status = status
		inv.UpdatedAt = s.now().UTC()
		return inv, nil
	})
	if err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Respond: %w", err)
	}
	s.record(ctx, domain.EntityInvite, domain.ActionUpdate, result.ID, result)

	if status == domain.InviteAccepted {
		g, err := s.groups.Update(ctx, result.GroupID, func(g domain.Group) (domain.Group, error) {
			if !g.HasMember(result.InviteeEmail) {
				g.Members = append(g.Members, result.InviteeEmail)
			}
			return g, nil
		})
		if err != nil {
			return result, fmt.Errorf("service.InviteService.Respond: add member: %w", err)
		}
		s.record(ctx, domain.EntityGroup, domain.ActionUpdate, g.ID, g)
	}
	return result, nil
}
