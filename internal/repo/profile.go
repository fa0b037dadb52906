package repo

import (
	"context"
	"fmt"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
)

// ProfileRepo defines the persistence operations for user profiles.
// The current user's profile is a single object document; the profiles other
// pages can see form a separate list document.
type ProfileRepo interface {
	// Current returns the current user's profile, or domain.DefaultProfile when
	// none is stored or the stored document is unreadable.
	Current(ctx context.Context) (domain.UserProfile, error)

	// UpdateCurrent applies fn to the current profile atomically and stores the result.
	UpdateCurrent(ctx context.Context, fn func(domain.UserProfile) (domain.UserProfile, error)) (domain.UserProfile, error)

	// List returns all shared profiles in insertion order.
	List(ctx context.Context) ([]domain.UserProfile, error)

	// GetByID returns domain.ErrNotFound if no shared profile has that ID.
	GetByID(ctx context.Context, id string) (domain.UserProfile, error)

	// Upsert replaces the shared profile with the same id or appends it.
	// The record is stored as given; use Save to merge with the stored one.
	Upsert(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error)

	// Save replaces or appends the shared profile with the given id. fn sees
	// the stored profile, if any, atomically with the write.
	Save(ctx context.Context, id string, fn func(prev domain.UserProfile, exists bool) (domain.UserProfile, error)) (domain.UserProfile, error)

	// AuthUser returns the identity of the last OAuth login, or domain.ErrNotFound.
	AuthUser(ctx context.Context) (domain.AuthUser, error)

	// SetAuthUser records the identity of an OAuth login.
	SetAuthUser(ctx context.Context, u domain.AuthUser) error
}

type storeProfileRepo struct {
	store  *store.Store
	shared collection[domain.UserProfile]
}

// NewProfileRepo constructs a ProfileRepo over the user data and profiles documents.
func NewProfileRepo(s *store.Store) ProfileRepo {
	return &storeProfileRepo{
		store:  s,
		shared: newCollection(s, domain.KeyProfiles, func(p *domain.UserProfile) *string { return &p.ID }, nil),
	}
}

func (r *storeProfileRepo) Current(ctx context.Context) (domain.UserProfile, error) {
	if !r.store.Available() {
		return domain.DefaultProfile(), fmt.Errorf("repo.ProfileRepo.Current: %w", domain.ErrUnavailable)
	}
	return store.Load(ctx, r.store, domain.KeyUserData, domain.DefaultProfile()), nil
}

func (r *storeProfileRepo) UpdateCurrent(ctx context.Context, fn func(domain.UserProfile) (domain.UserProfile, error)) (domain.UserProfile, error) {
	result, err := store.Update(ctx, r.store, domain.KeyUserData, domain.DefaultProfile(), fn)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.UpdateCurrent: %w", err)
	}
	return result, nil
}

func (r *storeProfileRepo) List(ctx context.Context) ([]domain.UserProfile, error) {
	profiles, err := r.shared.all(ctx)
	if err != nil {
		return profiles, fmt.Errorf("repo.ProfileRepo.List: %w", err)
	}
	return profiles, nil
}

func (r *storeProfileRepo) GetByID(ctx context.Context, id string) (domain.UserProfile, error) {
	result, err := r.shared.find(ctx, id)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *storeProfileRepo) Upsert(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	result, err := r.shared.upsert(ctx, p)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *storeProfileRepo) Save(ctx context.Context, id string, fn func(domain.UserProfile, bool) (domain.UserProfile, error)) (domain.UserProfile, error) {
	result, err := r.shared.merge(ctx, id, fn)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Save: %w", err)
	}
	return result, nil
}

func (r *storeProfileRepo) AuthUser(ctx context.Context) (domain.AuthUser, error) {
	if !r.store.Available() {
		return domain.AuthUser{}, fmt.Errorf("repo.ProfileRepo.AuthUser: %w", domain.ErrUnavailable)
	}
	u := store.Load(ctx, r.store, domain.KeyAuthUser, domain.AuthUser{})
	if u.ID == "" {
		return domain.AuthUser{}, fmt.Errorf("repo.ProfileRepo.AuthUser: %w", domain.ErrNotFound)
	}
	return u, nil
}

func (r *storeProfileRepo) SetAuthUser(ctx context.Context, u domain.AuthUser) error {
	if !r.store.Available() {
		return fmt.Errorf("repo.ProfileRepo.SetAuthUser: %w", domain.ErrUnavailable)
	}
	if !store.Save(ctx, r.store, domain.KeyAuthUser, u) {
		return fmt.Errorf("repo.ProfileRepo.SetAuthUser: %w", domain.ErrUnavailable)
	}
	return nil
}
