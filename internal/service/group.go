package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
)

// GroupService implements business logic for Group operations.
type GroupService struct {
	deps
	repo repo.GroupRepo
}

// NewGroupService constructs a GroupService backed by the provided GroupRepo.
func NewGroupService(r repo.GroupRepo, opts ...Option) *GroupService {
	return &GroupService{deps: newDeps(opts), repo: r}
}

// Create validates and persists a new group. The creator becomes its first member.
func (s *GroupService) Create(ctx context.Context, g domain.Group) (domain.Group, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.Description = strings.TrimSpace(g.Description)
	g.FocusArea = strings.TrimSpace(g.FocusArea)
	g.RequiredSkills = cleanList(g.RequiredSkills)
	g.Members = cleanList(g.Members)
	if g.CreatorID != "" && !g.HasMember(g.CreatorID) {
		g.Members = append([]string{g.CreatorID}, g.Members...)
	}

	if g.Name == "" {
		return domain.Group{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := validateSchedule(g.Date, g.Time); err != nil {
		return domain.Group{}, err
	}

	result, err := s.repo.Create(ctx, g)
	if err != nil {
		return domain.Group{}, fmt.Errorf("service.GroupService.Create: %w", err)
	}
	s.record(ctx, domain.EntityGroup, domain.ActionCreate, result.ID, result)
	return result, nil
}

// GetByID returns a single group.
func (s *GroupService) GetByID(ctx context.Context, id string) (domain.Group, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Group{}, fmt.Errorf("service.GroupService.GetByID: %w", err)
	}
	return g, nil
}

// List returns all groups in insertion order.
func (s *GroupService) List(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.repo.List(ctx)
	if groups == nil {
		groups = []domain.Group{}
	}
	if err != nil {
		return groups, fmt.Errorf("service.GroupService.List: %w", err)
	}
	return groups, nil
}

// ListByUser returns the groups userID created or joined.
func (s *GroupService) ListByUser(ctx context.Context, userID string) ([]domain.Group, error) {
	groups, err := s.repo.ListByMember(ctx, userID)
	if groups == nil {
		groups = []domain.Group{}
	}
	if err != nil {
		return groups, fmt.Errorf("service.GroupService.ListByUser: %w", err)
	}
	return groups, nil
}

// Join adds memberID to the group and puts the group on the calendar.
// Joining twice is a no-op.
func (s *GroupService) Join(ctx context.Context, groupID, memberID string) (domain.Group, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return domain.Group{}, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}

	joined := false
	result, err := s.repo.Update(ctx, groupID, func(g domain.Group) (domain.Group, error) {
		if !g.HasMember(memberID) {
			g.Members = append(g.Members, memberID)
			joined = true
		}
		return g, nil
	})
	if err != nil {
		return domain.Group{}, fmt.Errorf("service.GroupService.Join: %w", err)
	}

	if joined {
		if s.calendar != nil && !s.calendar.SyncGroup(ctx, result) {
			s.log.WarnContext(ctx, "calendar sync failed", "group_id", result.ID)
		}
		s.record(ctx, domain.EntityGroup, domain.ActionUpdate, result.ID, result)
	}
	return result, nil
}

// Leave removes memberID from the group.
// Returns domain.ErrNotFound if memberID is not a member.
func (s *GroupService) Leave(ctx context.Context, groupID, memberID string) (domain.Group, error) {
	result, err := s.repo.Update(ctx, groupID, func(g domain.Group) (domain.Group, error) {
		if !g.HasMember(memberID) {
			return g, fmt.Errorf("%w: %q is not a member", domain.ErrNotFound, memberID)
		}
		kept := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			if m != memberID {
				kept = append(kept, m)
			}
		}
		g.Members = kept
		return g, nil
	})
	if err != nil {
		return domain.Group{}, fmt.Errorf("service.GroupService.Leave: %w", err)
	}
	s.record(ctx, domain.EntityGroup, domain.ActionUpdate, result.ID, result)
	return result, nil
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
