package suggestions

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/castlane/backend/internal/models"
)

// ErrProfileNotFound is returned by Suggest when the user has no talent
// profile row.
var ErrProfileNotFound = errors.New("talent profile not found")

// noSubscriptionMessage is the advisory returned instead of roles when the
// talent holds no live region subscription. Not an error.
const noSubscriptionMessage = "No active region subscriptions found. Subscribe to a region to see casting calls and roles near you."

// scoreWorkers bounds concurrent candidate scoring per request.
const scoreWorkers = 8

// ProfileStore supplies the talent side of a suggestion request.
type ProfileStore interface {
	ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.TalentProfile, error)
	SubscribedRegions(ctx context.Context, userID uuid.UUID) ([]models.RegionRef, error)
	LocationIDsForRegions(ctx context.Context, regionIDs []uuid.UUID) ([]uuid.UUID, error)
}

// CatalogStore supplies candidate roles grouped by project.
type CatalogStore interface {
	ProjectsWithOpenCalls(ctx context.Context, locationIDs []uuid.UUID) ([]ProjectCandidate, error)
	ProjectsWithActiveRequirements(ctx context.Context) ([]ProjectCandidate, error)
}

// ProjectCandidate is one live project with the subset of its roles relevant
// to the request. Either list may be empty, never both.
type ProjectCandidate struct {
	ProjectID    uuid.UUID
	Title        string
	StudioID     uuid.UUID
	StudioName   string
	Requirements []models.TalentRequirement
	CastingCalls []models.CastingCall
}

// Engine turns a talent's profile and subscriptions into a ranked list of
// open roles. It only reads; results are derived per request and never
// persisted.
type Engine struct {
	profiles ProfileStore
	catalog  CatalogStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewEngine creates a suggestion engine over the given stores.
func NewEngine(profiles ProfileStore, catalog CatalogStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{profiles: profiles, catalog: catalog, now: time.Now, logger: logger}
}

// Suggest builds ranked role suggestions for the given user. A missing
// profile returns ErrProfileNotFound; a talent with no live region
// subscription gets an empty, message-only result rather than an error.
// Store failures propagate unchanged.
func (e *Engine) Suggest(ctx context.Context, userID uuid.UUID) (*models.RoleSuggestions, error) {
	profile, err := e.profiles.ProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	regions, err := e.profiles.SubscribedRegions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return &models.RoleSuggestions{
			SuggestedRoles:    []models.SuggestedRole{},
			SubscribedRegions: []models.RegionRef{},
			Message:           noSubscriptionMessage,
		}, nil
	}

	regionIDs := make([]uuid.UUID, len(regions))
	for i, reg := range regions {
		regionIDs[i] = reg.ID
	}
	locationIDs, err := e.profiles.LocationIDsForRegions(ctx, regionIDs)
	if err != nil {
		return nil, err
	}

	projects, err := e.collect(ctx, locationIDs)
	if err != nil {
		return nil, err
	}

	ranked, err := e.scoreAndRank(ctx, factsFor(profile, e.now()), projects)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("role suggestions ranked",
		zap.String("user_id", userID.String()),
		zap.Int("projects", len(projects)),
		zap.Int("roles", len(ranked)))

	return &models.RoleSuggestions{SuggestedRoles: ranked, SubscribedRegions: regions}, nil
}

// collect runs both candidate queries concurrently and merges the results
// per project. Requirements are not location-filtered: they carry no
// location, so they surface for every subscribed talent.
func (e *Engine) collect(ctx context.Context, locationIDs []uuid.UUID) ([]ProjectCandidate, error) {
	var withCalls, withRequirements []ProjectCandidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		withCalls, err = e.catalog.ProjectsWithOpenCalls(gctx, locationIDs)
		return err
	})
	g.Go(func() error {
		var err error
		withRequirements, err = e.catalog.ProjectsWithActiveRequirements(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeProjects(withCalls, withRequirements), nil
}

// mergeProjects unions two candidate sets by project id, deduplicating roles
// by id. Output order follows first appearance, so the result is stable for
// a given pair of query results.
func mergeProjects(a, b []ProjectCandidate) []ProjectCandidate {
	byID := make(map[uuid.UUID]*ProjectCandidate, len(a)+len(b))
	order := make([]uuid.UUID, 0, len(a)+len(b))

	add := func(list []ProjectCandidate) {
		for _, p := range list {
			got, ok := byID[p.ProjectID]
			if !ok {
				cp := p
				byID[p.ProjectID] = &cp
				order = append(order, p.ProjectID)
				continue
			}
			got.Requirements = appendNewRequirements(got.Requirements, p.Requirements)
			got.CastingCalls = appendNewCalls(got.CastingCalls, p.CastingCalls)
		}
	}
	add(a)
	add(b)

	out := make([]ProjectCandidate, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

func appendNewRequirements(dst, src []models.TalentRequirement) []models.TalentRequirement {
	seen := make(map[uuid.UUID]struct{}, len(dst))
	for _, r := range dst {
		seen[r.ID] = struct{}{}
	}
	for _, r := range src {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		dst = append(dst, r)
	}
	return dst
}

func appendNewCalls(dst, src []models.CastingCall) []models.CastingCall {
	seen := make(map[uuid.UUID]struct{}, len(dst))
	for _, c := range dst {
		seen[c.ID] = struct{}{}
	}
	for _, c := range src {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		dst = append(dst, c)
	}
	return dst
}

// scoreAndRank scores every candidate role concurrently, drops requirements
// under the threshold, and sorts the rest by score descending with role id
// as the tie-break so equal scores order the same on every run.
func (e *Engine) scoreAndRank(ctx context.Context, facts talentFacts, projects []ProjectCandidate) ([]models.SuggestedRole, error) {
	type unit struct {
		project *ProjectCandidate
		req     *models.TalentRequirement
		call    *models.CastingCall
	}
	var units []unit
	for i := range projects {
		p := &projects[i]
		for j := range p.Requirements {
			units = append(units, unit{project: p, req: &p.Requirements[j]})
		}
		for j := range p.CastingCalls {
			units = append(units, unit{project: p, call: &p.CastingCalls[j]})
		}
	}

	// Each goroutine writes only its own slot.
	results := make([]*models.SuggestedRole, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreWorkers)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if u.req != nil {
				score, reasons := scoreRequirement(facts, u.req)
				if score < requirementThreshold {
					return nil
				}
				role := buildRequirementRole(u.project, u.req, score, reasons)
				results[i] = &role
				return nil
			}
			score, reasons := scoreCastingCall(facts, u.call)
			role := buildCastingCallRole(u.project, u.call, score, reasons)
			results[i] = &role
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := make([]models.SuggestedRole, 0, len(results))
	for _, r := range results {
		if r != nil {
			ranked = append(ranked, *r)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].RoleID.String() < ranked[j].RoleID.String()
	})
	return ranked, nil
}

func buildRequirementRole(p *ProjectCandidate, req *models.TalentRequirement, score int, reasons []string) models.SuggestedRole {
	return models.SuggestedRole{
		Type:         models.RoleTypeRequirement,
		RoleID:       req.ID,
		ProjectID:    p.ProjectID,
		ProjectTitle: p.Title,
		StudioID:     p.StudioID,
		StudioName:   p.StudioName,
		MatchScore:   score,
		MatchReasons: reasons,
		Requirement:  req,
		Locations:    projectLocations(p),
	}
}

func buildCastingCallRole(p *ProjectCandidate, call *models.CastingCall, score int, reasons []string) models.SuggestedRole {
	locs := []models.LocationRef{}
	if call.Location != nil {
		locs = append(locs, models.LocationRef{ID: call.Location.ID, Name: call.Location.Name})
	}
	return models.SuggestedRole{
		Type:         models.RoleTypeCastingCall,
		RoleID:       call.ID,
		ProjectID:    p.ProjectID,
		ProjectTitle: p.Title,
		StudioID:     p.StudioID,
		StudioName:   p.StudioName,
		MatchScore:   score,
		MatchReasons: reasons,
		CastingCall:  call,
		Locations:    locs,
	}
}

// projectLocations gathers the distinct locations of a project's in-region
// casting calls. Requirements have no location of their own, so this is the
// closest geography the response can attach to them.
func projectLocations(p *ProjectCandidate) []models.LocationRef {
	refs := []models.LocationRef{}
	seen := make(map[uuid.UUID]struct{})
	for i := range p.CastingCalls {
		loc := p.CastingCalls[i].Location
		if loc == nil {
			continue
		}
		if _, ok := seen[loc.ID]; ok {
			continue
		}
		seen[loc.ID] = struct{}{}
		refs = append(refs, models.LocationRef{ID: loc.ID, Name: loc.Name})
	}
	return refs
}
