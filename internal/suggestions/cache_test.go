package suggestions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/redis"
)

func openCallCandidate(title string) ProjectCandidate {
	locID := uuid.New()
	projectID := uuid.New()
	return ProjectCandidate{
		ProjectID: projectID, Title: title, StudioID: uuid.New(), StudioName: "Castline Studios",
		CastingCalls: []models.CastingCall{{
			ID: uuid.New(), ProjectID: projectID, Title: title,
			Status: models.CastingCallStatusOpen, LocationID: &locID,
			Location: &models.Location{ID: locID, Name: "Harborview Stage"},
		}},
	}
}

func newCacheEnv(t *testing.T) (*Cache, *fakeCatalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redis.NewClient(context.Background(), mr.Addr(), "", 0, zap.NewNop())
	require.NoError(t, err)

	profiles := &fakeProfiles{
		profile:   testTalent(),
		regions:   []models.RegionRef{{ID: uuid.New(), Name: "West Coast"}},
		locations: []uuid.UUID{uuid.New()},
	}
	catalog := &fakeCatalog{withCalls: []ProjectCandidate{openCallCandidate("Harbor Nights")}}
	eng := newTestEngine(profiles, catalog)
	return NewCache(eng, rdb, zap.NewNop()), catalog, mr
}

func TestCache_ServesCachedResult(t *testing.T) {
	cache, catalog, _ := newCacheEnv(t)
	userID := uuid.New()

	first, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)
	require.Len(t, first.SuggestedRoles, 1)

	// New catalog data must not show up while the entry is fresh.
	catalog.withCalls = append(catalog.withCalls, openCallCandidate("Signal Fire"))

	again, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Len(t, again.SuggestedRoles, 1)
	assert.Equal(t, first.SuggestedRoles[0].RoleID, again.SuggestedRoles[0].RoleID)
}

func TestCache_BypassRecomputesAndRefreshes(t *testing.T) {
	cache, catalog, _ := newCacheEnv(t)
	userID := uuid.New()

	_, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)

	catalog.withCalls = append(catalog.withCalls, openCallCandidate("Signal Fire"))

	fresh, err := cache.Suggest(context.Background(), userID, true)
	require.NoError(t, err)
	require.Len(t, fresh.SuggestedRoles, 2)

	// The bypass result replaced the cached entry.
	cached, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Len(t, cached.SuggestedRoles, 2)
}

func TestCache_InvalidateDropsEntry(t *testing.T) {
	cache, catalog, _ := newCacheEnv(t)
	userID := uuid.New()

	_, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)

	catalog.withCalls = append(catalog.withCalls, openCallCandidate("Signal Fire"))
	cache.Invalidate(context.Background(), userID)

	out, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Len(t, out.SuggestedRoles, 2)
}

func TestCache_EntryExpires(t *testing.T) {
	cache, catalog, mr := newCacheEnv(t)
	userID := uuid.New()

	_, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)

	catalog.withCalls = append(catalog.withCalls, openCallCandidate("Signal Fire"))
	mr.FastForward(cacheTTL + time.Second)

	out, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Len(t, out.SuggestedRoles, 2)
}

func TestCache_ScopedPerUser(t *testing.T) {
	cache, catalog, _ := newCacheEnv(t)

	first, err := cache.Suggest(context.Background(), uuid.New(), false)
	require.NoError(t, err)
	require.Len(t, first.SuggestedRoles, 1)

	catalog.withCalls = append(catalog.withCalls, openCallCandidate("Signal Fire"))

	other, err := cache.Suggest(context.Background(), uuid.New(), false)
	require.NoError(t, err)
	assert.Len(t, other.SuggestedRoles, 2, "a different user must not share the cached entry")
}

func TestCache_NilClientPassesThrough(t *testing.T) {
	profiles := &fakeProfiles{
		profile:   testTalent(),
		regions:   []models.RegionRef{{ID: uuid.New(), Name: "West Coast"}},
		locations: []uuid.UUID{uuid.New()},
	}
	catalog := &fakeCatalog{withCalls: []ProjectCandidate{openCallCandidate("Harbor Nights")}}
	cache := NewCache(newTestEngine(profiles, catalog), nil, zap.NewNop())
	userID := uuid.New()

	_, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)

	catalog.withCalls = append(catalog.withCalls, openCallCandidate("Signal Fire"))

	out, err := cache.Suggest(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Len(t, out.SuggestedRoles, 2, "without redis every request recomputes")
}
