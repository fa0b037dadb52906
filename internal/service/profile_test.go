package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
	"github.com/pkordes/crimsoncollab/backend/internal/service"
)

func newProfileService(t *testing.T, opts ...service.Option) *service.ProfileService {
	t.Helper()
	return service.NewProfileService(repo.NewProfileRepo(newStore(t)), opts...)
}

func TestProfileService_Current_Default(t *testing.T) {
	svc := newProfileService(t)

	got, err := svc.Current(context.Background())

	require.NoError(t, err)
	assert.True(t, got.Preferences.Notifications)
	assert.Nil(t, got.CreatedAt)
}

func TestProfileService_Update_MergesAndAdvances(t *testing.T) {
	ctx := context.Background()
	svc := newProfileService(t, service.WithClock(frozenClock()))

	first, err := svc.Update(ctx, domain.ProfileUpdate{Name: ptr("Ada"), Major: ptr("CS")})
	require.NoError(t, err)
	require.NotNil(t, first.CreatedAt)
	require.NotNil(t, first.LastUpdated)

	second, err := svc.Update(ctx, domain.ProfileUpdate{
		Year:        ptr("Junior"),
		Preferences: &domain.PreferencesUpdate{DarkMode: ptr(true)},
	})
	require.NoError(t, err)

	got, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "CS", got.Major)
	assert.Equal(t, "Junior", got.Year)
	assert.True(t, got.Preferences.DarkMode)
	assert.True(t, got.Preferences.Notifications, "untouched nested fields survive")
	assert.True(t, got.CreatedAt.Equal(*first.CreatedAt), "created_at is set once")
	assert.True(t, second.LastUpdated.After(*first.LastUpdated), "last_updated strictly increases even with a frozen clock")
}

func TestProfileService_Update_Records(t *testing.T) {
	rec := &fakeRecorder{}
	svc := newProfileService(t, service.WithSync(rec))

	_, err := svc.Update(context.Background(), domain.ProfileUpdate{Name: ptr("Ada")})

	require.NoError(t, err)
	require.Len(t, rec.recorded(), 1)
	assert.Equal(t, domain.EntityCurrentProfile, rec.recorded()[0].EntityType)
}

// The stored current profile starts without an id; the first update must
// assign one so the queued operation can be applied by the peer.
func TestProfileService_Update_AssignsStableID(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecorder{}
	svc := newProfileService(t, service.WithSync(rec))

	first, err := svc.Update(ctx, domain.ProfileUpdate{Name: ptr("Ada")})
	require.NoError(t, err)
	second, err := svc.Update(ctx, domain.ProfileUpdate{Major: ptr("CS")})
	require.NoError(t, err)

	require.NotEmpty(t, first.ID)
	assert.Equal(t, first.ID, second.ID)
	ops := rec.recorded()
	require.Len(t, ops, 2)
	assert.Equal(t, first.ID, ops[0].EntityID)
	assert.Equal(t, first.ID, ops[1].EntityID)
}

func TestProfileService_Update_Invalid(t *testing.T) {
	svc := newProfileService(t)

	_, err := svc.Update(context.Background(), domain.ProfileUpdate{Email: ptr("not-an-email")})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Update(context.Background(), domain.ProfileUpdate{Age: ptr(-3)})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestProfileService_SaveProfile_Listed(t *testing.T) {
	ctx := context.Background()
	svc := newProfileService(t)

	_, err := svc.SaveProfile(ctx, domain.UserProfile{ID: "u1", FirstName: "Test", Email: "test@example.com"})
	require.NoError(t, err)

	profiles, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "u1", profiles[0].ID)
	assert.Equal(t, "Test", profiles[0].FirstName)
	assert.Equal(t, "test@example.com", profiles[0].Email)
}

func TestProfileService_SaveProfile_KeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc := newProfileService(t, service.WithClock(frozenClock()))

	first, err := svc.SaveProfile(ctx, domain.UserProfile{ID: "u1", FirstName: "Test"})
	require.NoError(t, err)
	second, err := svc.SaveProfile(ctx, domain.UserProfile{ID: "u1", FirstName: "Tess"})
	require.NoError(t, err)

	assert.True(t, second.CreatedAt.Equal(*first.CreatedAt))
	assert.True(t, second.LastUpdated.After(*first.LastUpdated))

	profiles, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1, "saving the same id replaces the profile")
	assert.Equal(t, "Tess", profiles[0].FirstName)
}

func TestProfileService_SaveProfile_ConcurrentSavesShareCreatedAt(t *testing.T) {
	var mu sync.Mutex
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ticking := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at = at.Add(time.Second)
		return at
	}
	svc := newProfileService(t, service.WithClock(ticking))

	const n = 8
	results := make([]domain.UserProfile, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.SaveProfile(context.Background(), domain.UserProfile{ID: "u1", FirstName: "Test"})
			assert.NoError(t, err)
			results[i] = p
		}()
	}
	wg.Wait()

	stored, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, stored.CreatedAt)
	for _, p := range results {
		require.NotNil(t, p.CreatedAt)
		assert.True(t, p.CreatedAt.Equal(*stored.CreatedAt), "created_at is set once")
	}
}

func TestProfileService_SaveProfile_GeneratesID(t *testing.T) {
	svc := newProfileService(t)

	got, err := svc.SaveProfile(context.Background(), domain.UserProfile{FirstName: "Anon"})

	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
}

func TestProfileService_SaveAuthUser(t *testing.T) {
	ctx := context.Background()
	svc := newProfileService(t)

	err := svc.SaveAuthUser(ctx, domain.AuthUser{
		ID: "g-42", FirstName: "Grace", LastName: "Hopper",
		Email: "grace@example.com", Provider: "google", Verified: true,
	})
	require.NoError(t, err)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "g-42", cur.ID)
	assert.Equal(t, "Grace Hopper", cur.Name)
	assert.Equal(t, "google", cur.Provider)

	shared, err := svc.GetProfile(ctx, "g-42")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", shared.Email)
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	svc := newProfileService(t)

	_, err := svc.GetProfile(context.Background(), "nobody")

	require.ErrorIs(t, err, domain.ErrNotFound)
}
