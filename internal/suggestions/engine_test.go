package suggestions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/models"
)

type fakeProfiles struct {
	profile    *models.TalentProfile
	profileErr error
	regions    []models.RegionRef
	regionsErr error
	locations  []uuid.UUID
	locsErr    error
}

func (f *fakeProfiles) ProfileByUserID(_ context.Context, _ uuid.UUID) (*models.TalentProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeProfiles) SubscribedRegions(_ context.Context, _ uuid.UUID) ([]models.RegionRef, error) {
	if f.regionsErr != nil {
		return nil, f.regionsErr
	}
	return f.regions, nil
}

func (f *fakeProfiles) LocationIDsForRegions(_ context.Context, _ []uuid.UUID) ([]uuid.UUID, error) {
	if f.locsErr != nil {
		return nil, f.locsErr
	}
	return f.locations, nil
}

type fakeCatalog struct {
	withCalls []ProjectCandidate
	withReqs  []ProjectCandidate
	callsErr  error
	reqsErr   error
	gotLocs   []uuid.UUID
	calls     int
}

func (f *fakeCatalog) ProjectsWithOpenCalls(_ context.Context, locationIDs []uuid.UUID) ([]ProjectCandidate, error) {
	f.gotLocs = locationIDs
	if f.callsErr != nil {
		return nil, f.callsErr
	}
	return f.withCalls, nil
}

func (f *fakeCatalog) ProjectsWithActiveRequirements(_ context.Context) ([]ProjectCandidate, error) {
	f.calls++
	if f.reqsErr != nil {
		return nil, f.reqsErr
	}
	return f.withReqs, nil
}

var testAsOf = time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

func newTestEngine(profiles *fakeProfiles, catalog *fakeCatalog) *Engine {
	eng := NewEngine(profiles, catalog, zap.NewNop())
	eng.now = func() time.Time { return testAsOf }
	return eng
}

// testTalent is 25 years old at testAsOf with three skills on file.
func testTalent() *models.TalentProfile {
	dob := time.Date(2001, time.March, 2, 0, 0, 0, 0, time.UTC)
	return &models.TalentProfile{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		FullName:    "Dana Reyes",
		Gender:      "Female",
		Ethnicity:   "Asian",
		DateOfBirth: &dob,
		Skills:      []string{"dance", "singing", "stunt"},
	}
}

func TestEngine_NoSubscriptionIsMessageNotError(t *testing.T) {
	profiles := &fakeProfiles{profile: testTalent(), regions: []models.RegionRef{}}
	catalog := &fakeCatalog{}
	eng := newTestEngine(profiles, catalog)

	out, err := eng.Suggest(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, out.SuggestedRoles)
	assert.Empty(t, out.SubscribedRegions)
	assert.Equal(t, noSubscriptionMessage, out.Message)
	assert.Zero(t, catalog.calls, "catalog must not be queried without entitlement")
}

func TestEngine_ProfileNotFound(t *testing.T) {
	profiles := &fakeProfiles{profileErr: ErrProfileNotFound}
	eng := newTestEngine(profiles, &fakeCatalog{})

	_, err := eng.Suggest(context.Background(), uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestEngine_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("query failed")
	region := models.RegionRef{ID: uuid.New(), Name: "West Coast"}

	tests := []struct {
		name     string
		profiles *fakeProfiles
		catalog  *fakeCatalog
	}{
		{
			name:     "subscription query fails",
			profiles: &fakeProfiles{profile: testTalent(), regionsErr: boom},
			catalog:  &fakeCatalog{},
		},
		{
			name:     "location query fails",
			profiles: &fakeProfiles{profile: testTalent(), regions: []models.RegionRef{region}, locsErr: boom},
			catalog:  &fakeCatalog{},
		},
		{
			name:     "casting call query fails",
			profiles: &fakeProfiles{profile: testTalent(), regions: []models.RegionRef{region}},
			catalog:  &fakeCatalog{callsErr: boom},
		},
		{
			name:     "requirement query fails",
			profiles: &fakeProfiles{profile: testTalent(), regions: []models.RegionRef{region}},
			catalog:  &fakeCatalog{reqsErr: boom},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newTestEngine(tt.profiles, tt.catalog)
			out, err := eng.Suggest(context.Background(), uuid.New())
			assert.Nil(t, out)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestEngine_CanceledContext(t *testing.T) {
	region := models.RegionRef{ID: uuid.New(), Name: "West Coast"}
	locID := uuid.New()
	loc := &models.Location{ID: locID, Name: "Harborview Stage"}
	projectID := uuid.New()

	profiles := &fakeProfiles{
		profile:   testTalent(),
		regions:   []models.RegionRef{region},
		locations: []uuid.UUID{locID},
	}
	// The fakes never read the context; cancellation must surface from the
	// scoring stage.
	catalog := &fakeCatalog{
		withCalls: []ProjectCandidate{
			{ProjectID: projectID, Title: "Harbor Nights", StudioName: "Castline Studios",
				CastingCalls: []models.CastingCall{{
					ID: uuid.New(), ProjectID: projectID, Title: "Day Player",
					Status: models.CastingCallStatusOpen, LocationID: &locID, Location: loc,
				}}},
		},
	}
	eng := newTestEngine(profiles, catalog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := eng.Suggest(ctx, uuid.New())

	assert.Nil(t, out)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RanksMergedCandidates(t *testing.T) {
	region := models.RegionRef{ID: uuid.New(), Name: "West Coast"}
	locID := uuid.New()
	loc := &models.Location{ID: locID, Name: "Harborview Stage"}

	projectBoth := uuid.New()
	projectWeak := uuid.New()
	projectCall := uuid.New()

	// Scores 45 against testTalent: gender 20 + age range 20 + ethnicity
	// neutral 5.
	strongReq := models.TalentRequirement{
		ID: uuid.New(), ProjectID: projectBoth, RoleName: "Lead",
		Gender: "Female", AgeMin: intp(18), AgeMax: intp(30), IsActive: true,
	}
	// Scores 25: neutral points only, under the threshold.
	weakReq := models.TalentRequirement{
		ID: uuid.New(), ProjectID: projectWeak, RoleName: "Extra", IsActive: true,
	}
	// Scores 40: base only.
	plainCall := models.CastingCall{
		ID: uuid.New(), ProjectID: projectBoth, Title: "Day Player",
		Status: models.CastingCallStatusOpen, LocationID: &locID, Location: loc,
	}
	// Scores 55: base plus three matched skills.
	skillCall := models.CastingCall{
		ID: uuid.New(), ProjectID: projectCall, Title: "Featured Dancer",
		Status: models.CastingCallStatusOpen, LocationID: &locID, Location: loc,
		Skills: []models.Skill{
			{ID: uuid.New(), Name: "Dance"},
			{ID: uuid.New(), Name: "Singing"},
			{ID: uuid.New(), Name: "Stunts"},
		},
	}

	profiles := &fakeProfiles{
		profile:   testTalent(),
		regions:   []models.RegionRef{region},
		locations: []uuid.UUID{locID},
	}
	catalog := &fakeCatalog{
		withCalls: []ProjectCandidate{
			{ProjectID: projectBoth, Title: "Harbor Nights", StudioID: uuid.New(), StudioName: "Castline Studios",
				CastingCalls: []models.CastingCall{plainCall}},
			{ProjectID: projectCall, Title: "Signal Fire", StudioID: uuid.New(), StudioName: "Northlight",
				CastingCalls: []models.CastingCall{skillCall}},
		},
		withReqs: []ProjectCandidate{
			{ProjectID: projectBoth, Title: "Harbor Nights", StudioID: uuid.New(), StudioName: "Castline Studios",
				Requirements: []models.TalentRequirement{strongReq}},
			{ProjectID: projectWeak, Title: "Quiet Hours", StudioID: uuid.New(), StudioName: "Castline Studios",
				Requirements: []models.TalentRequirement{weakReq}},
		},
	}
	eng := newTestEngine(profiles, catalog)

	out, err := eng.Suggest(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, []models.RegionRef{region}, out.SubscribedRegions)
	assert.Empty(t, out.Message)
	assert.Equal(t, []uuid.UUID{locID}, catalog.gotLocs)

	require.Len(t, out.SuggestedRoles, 3)
	assert.Equal(t, skillCall.ID, out.SuggestedRoles[0].RoleID)
	assert.Equal(t, 55, out.SuggestedRoles[0].MatchScore)
	assert.Equal(t, models.RoleTypeCastingCall, out.SuggestedRoles[0].Type)

	assert.Equal(t, strongReq.ID, out.SuggestedRoles[1].RoleID)
	assert.Equal(t, 45, out.SuggestedRoles[1].MatchScore)
	assert.Equal(t, models.RoleTypeRequirement, out.SuggestedRoles[1].Type)
	assert.Equal(t, []string{"Gender match", "Age match"}, out.SuggestedRoles[1].MatchReasons)
	require.NotNil(t, out.SuggestedRoles[1].Requirement)
	assert.Nil(t, out.SuggestedRoles[1].CastingCall)
	// The requirement has no location, so it borrows the project's call
	// locations.
	assert.Equal(t, []models.LocationRef{{ID: locID, Name: loc.Name}}, out.SuggestedRoles[1].Locations)

	assert.Equal(t, plainCall.ID, out.SuggestedRoles[2].RoleID)
	assert.Equal(t, 40, out.SuggestedRoles[2].MatchScore)
	assert.Equal(t, "Harbor Nights", out.SuggestedRoles[2].ProjectTitle)
	assert.Equal(t, []models.LocationRef{{ID: locID, Name: loc.Name}}, out.SuggestedRoles[2].Locations)

	for _, role := range out.SuggestedRoles {
		if role.Type == models.RoleTypeRequirement {
			assert.GreaterOrEqual(t, role.MatchScore, requirementThreshold)
		}
		assert.NotEqual(t, weakReq.ID, role.RoleID, "below-threshold requirement must be excluded")
	}
}

func TestEngine_RequirementsSurfaceWithoutInRegionCalls(t *testing.T) {
	region := models.RegionRef{ID: uuid.New(), Name: "West Coast"}
	locID := uuid.New()

	// Scores 45 against testTalent, well over the threshold.
	req := models.TalentRequirement{
		ID: uuid.New(), ProjectID: uuid.New(), RoleName: "Lead",
		Gender: "Female", AgeMin: intp(18), AgeMax: intp(30), IsActive: true,
	}

	profiles := &fakeProfiles{
		profile:   testTalent(),
		regions:   []models.RegionRef{region},
		locations: []uuid.UUID{locID},
	}
	// No project has an open call in the subscribed regions; requirements are
	// collected without a location filter and must still surface.
	catalog := &fakeCatalog{
		withReqs: []ProjectCandidate{
			{ProjectID: req.ProjectID, Title: "Quiet Hours", StudioID: uuid.New(), StudioName: "Castline Studios",
				Requirements: []models.TalentRequirement{req}},
		},
	}
	eng := newTestEngine(profiles, catalog)

	out, err := eng.Suggest(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, out.SuggestedRoles, 1)
	got := out.SuggestedRoles[0]
	assert.Equal(t, req.ID, got.RoleID)
	assert.Equal(t, models.RoleTypeRequirement, got.Type)
	assert.Equal(t, []models.LocationRef{}, got.Locations)
	assert.Equal(t, []uuid.UUID{locID}, catalog.gotLocs, "open calls are fetched only for entitled locations")
}

func TestEngine_TieBreakOnRoleID(t *testing.T) {
	region := models.RegionRef{ID: uuid.New(), Name: "West Coast"}
	locID := uuid.New()
	loc := &models.Location{ID: locID, Name: "Harborview Stage"}

	// Both score the base 40; output must order by role id ascending.
	first := models.CastingCall{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		ProjectID: uuid.New(), Title: "A", Status: models.CastingCallStatusOpen,
		LocationID: &locID, Location: loc,
	}
	second := models.CastingCall{
		ID:        uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		ProjectID: first.ProjectID, Title: "B", Status: models.CastingCallStatusOpen,
		LocationID: &locID, Location: loc,
	}

	profiles := &fakeProfiles{
		profile:   testTalent(),
		regions:   []models.RegionRef{region},
		locations: []uuid.UUID{locID},
	}
	catalog := &fakeCatalog{
		withCalls: []ProjectCandidate{
			{ProjectID: first.ProjectID, Title: "Harbor Nights", StudioName: "Castline Studios",
				CastingCalls: []models.CastingCall{second, first}},
		},
	}
	eng := newTestEngine(profiles, catalog)

	out, err := eng.Suggest(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, out.SuggestedRoles, 2)
	assert.Equal(t, first.ID, out.SuggestedRoles[0].RoleID)
	assert.Equal(t, second.ID, out.SuggestedRoles[1].RoleID)
}

func TestEngine_DeterministicAcrossRuns(t *testing.T) {
	region := models.RegionRef{ID: uuid.New(), Name: "West Coast"}
	locID := uuid.New()
	loc := &models.Location{ID: locID, Name: "Harborview Stage"}

	projectID := uuid.New()
	candidates := []ProjectCandidate{{
		ProjectID: projectID, Title: "Harbor Nights", StudioName: "Castline Studios",
	}}
	for i := 0; i < 12; i++ {
		candidates[0].CastingCalls = append(candidates[0].CastingCalls, models.CastingCall{
			ID: uuid.New(), ProjectID: projectID, Status: models.CastingCallStatusOpen,
			LocationID: &locID, Location: loc,
		})
	}

	profiles := &fakeProfiles{
		profile:   testTalent(),
		regions:   []models.RegionRef{region},
		locations: []uuid.UUID{locID},
	}
	eng := newTestEngine(profiles, &fakeCatalog{withCalls: candidates})

	first, err := eng.Suggest(context.Background(), uuid.New())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := eng.Suggest(context.Background(), uuid.New())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestEngine_EmptyCatalog(t *testing.T) {
	region := models.RegionRef{ID: uuid.New(), Name: "West Coast"}
	profiles := &fakeProfiles{
		profile:   testTalent(),
		regions:   []models.RegionRef{region},
		locations: []uuid.UUID{uuid.New()},
	}
	eng := newTestEngine(profiles, &fakeCatalog{})

	out, err := eng.Suggest(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, out.SuggestedRoles)
	assert.Empty(t, out.SuggestedRoles)
	assert.Empty(t, out.Message)
	assert.Equal(t, []models.RegionRef{region}, out.SubscribedRegions)
}

func TestMergeProjects(t *testing.T) {
	sharedProject := uuid.New()
	call := models.CastingCall{ID: uuid.New(), ProjectID: sharedProject}
	req := models.TalentRequirement{ID: uuid.New(), ProjectID: sharedProject}
	soloProject := uuid.New()

	a := []ProjectCandidate{
		{ProjectID: sharedProject, Title: "Harbor Nights", CastingCalls: []models.CastingCall{call}},
		{ProjectID: soloProject, Title: "Signal Fire", CastingCalls: []models.CastingCall{{ID: uuid.New()}}},
	}
	// The same call surfacing from both sides must not duplicate.
	b := []ProjectCandidate{
		{ProjectID: sharedProject, Title: "Harbor Nights",
			Requirements: []models.TalentRequirement{req},
			CastingCalls: []models.CastingCall{call}},
	}

	merged := mergeProjects(a, b)

	require.Len(t, merged, 2)
	assert.Equal(t, sharedProject, merged[0].ProjectID)
	assert.Equal(t, soloProject, merged[1].ProjectID)
	assert.Len(t, merged[0].CastingCalls, 1)
	assert.Len(t, merged[0].Requirements, 1)
}
