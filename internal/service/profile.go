package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
)

// ProfileService implements business logic for the current user's profile and
// the shared profile list.
type ProfileService struct {
	deps
	repo repo.ProfileRepo
}

// NewProfileService constructs a ProfileService backed by the provided ProfileRepo.
func NewProfileService(r repo.ProfileRepo, opts ...Option) *ProfileService {
	return &ProfileService{deps: newDeps(opts), repo: r}
}

// Current returns the current user's profile (the default shape if none is stored).
func (s *ProfileService) Current(ctx context.Context) (domain.UserProfile, error) {
	p, err := s.repo.Current(ctx)
	if err != nil {
		return p, fmt.Errorf("service.ProfileService.Current: %w", err)
	}
	return p, nil
}

// Update merges u into the current profile. The result is the union of the
// previous state and the fields set in u; the first update assigns an id and
// CreatedAt, and LastUpdated strictly increases.
func (s *ProfileService) Update(ctx context.Context, u domain.ProfileUpdate) (domain.UserProfile, error) {
	if err := validateProfileUpdate(u); err != nil {
		return domain.UserProfile{}, err
	}
	result, err := s.repo.UpdateCurrent(ctx, func(prev domain.UserProfile) (domain.UserProfile, error) {
		next := u.Apply(prev)
		if next.ID == "" {
			next.ID = uuid.NewString()
		}
		s.touch(&next, prev.LastUpdated)
		return next, nil
	})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.ProfileService.Update: %w", err)
	}
	s.record(ctx, domain.EntityCurrentProfile, domain.ActionUpdate, result.ID, result)
	return result, nil
}

// SaveProfile stores p in the shared profile list, generating an id if absent.
// An existing profile with the same id keeps its CreatedAt.
func (s *ProfileService) SaveProfile(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	p.Email = strings.TrimSpace(p.Email)
	if err := validateProfile(p); err != nil {
		return domain.UserProfile{}, err
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	// The lookup and the stamp happen under the store lock so concurrent
	// saves of one id agree on CreatedAt.
	action := domain.ActionCreate
	result, err := s.repo.Save(ctx, p.ID, func(prev domain.UserProfile, exists bool) (domain.UserProfile, error) {
		next := p
		var prevUpdated *time.Time
		if exists {
			action = domain.ActionUpdate
			next.CreatedAt = prev.CreatedAt
			prevUpdated = prev.LastUpdated
		}
		s.touch(&next, prevUpdated)
		return next, nil
	})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.ProfileService.SaveProfile: %w", err)
	}
	s.record(ctx, domain.EntityProfile, action, result.ID, result)
	return result, nil
}

// GetProfile returns a shared profile by id.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (domain.UserProfile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("service.ProfileService.GetProfile: %w", err)
	}
	return p, nil
}

// ListProfiles returns every shared profile in insertion order.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return profiles, fmt.Errorf("service.ProfileService.ListProfiles: %w", err)
	}
	return profiles, nil
}

// SaveAuthUser records an OAuth identity: it becomes the current user, and
// its profile is published to the shared list.
func (s *ProfileService) SaveAuthUser(ctx context.Context, u domain.AuthUser) error {
	if err := s.repo.SetAuthUser(ctx, u); err != nil {
		return fmt.Errorf("service.ProfileService.SaveAuthUser: %w", err)
	}

	profile, err := s.repo.UpdateCurrent(ctx, func(prev domain.UserProfile) (domain.UserProfile, error) {
		next := prev
		next.ID = u.ID
		next.FirstName = u.FirstName
		next.LastName = u.LastName
		next.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
		next.Email = u.Email
		next.Picture = u.Picture
		next.Provider = u.Provider
		s.touch(&next, prev.LastUpdated)
		return next, nil
	})
	if err != nil {
		return fmt.Errorf("service.ProfileService.SaveAuthUser: %w", err)
	}
	s.record(ctx, domain.EntityCurrentProfile, domain.ActionUpdate, profile.ID, profile)

	if _, err := s.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("service.ProfileService.SaveAuthUser: %w", err)
	}
	return nil
}

// touch stamps CreatedAt (once) and moves LastUpdated past prev.
func (s *ProfileService) touch(p *domain.UserProfile, prev *time.Time) {
	now := s.now().UTC()
	if prev != nil && !now.After(*prev) {
		now = prev.Add(time.Microsecond)
	}
	if p.CreatedAt == nil {
		created := now
		p.CreatedAt = &created
	}
	p.LastUpdated = &now
}

func validateProfile(p domain.UserProfile) error {
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return fmt.Errorf("%w: email is not valid", domain.ErrValidation)
		}
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", domain.ErrValidation)
	}
	return nil
}

func validateProfileUpdate(u domain.ProfileUpdate) error {
	if u.Email != nil && strings.TrimSpace(*u.Email) != "" {
		if _, err := mail.ParseAddress(strings.TrimSpace(*u.Email)); err != nil {
			return fmt.Errorf("%w: email is not valid", domain.ErrValidation)
		}
	}
	if u.Age != nil && *u.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", domain.ErrValidation)
	}
	return nil
}
