package suggestions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository implements ProfileStore and CatalogStore on Postgres. Every
// query is read-only.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a suggestions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ProfileByUserID loads the matching-relevant slice of a talent profile,
// skills included. Maps a missing row to ErrProfileNotFound.
func (r *Repository) ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.TalentProfile, error) {
	const q = `SELECT tp.id, tp.user_id, u.full_name, COALESCE(tp.gender,''),
			COALESCE(tp.ethnicity,''), tp.height_cm, tp.date_of_birth
		FROM talent_profiles tp
		JOIN users u ON u.id = tp.user_id
		WHERE tp.user_id = $1`
	var p models.TalentProfile
	err := r.pool.QueryRow(ctx, q, userID).
		Scan(&p.ID, &p.UserID, &p.FullName, &p.Gender, &p.Ethnicity, &p.HeightCM, &p.DateOfBirth)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT name FROM talent_skills WHERE talent_id = $1 ORDER BY name`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	p.Skills = []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		p.Skills = append(p.Skills, s)
	}
	return &p, rows.Err()
}

// SubscribedRegions returns the distinct regions covered by the user's
// trialing or active subscriptions, ordered by name.
func (r *Repository) SubscribedRegions(ctx context.Context, userID uuid.UUID) ([]models.RegionRef, error) {
	const q = `SELECT DISTINCT r.id, r.name
		FROM region_subscriptions rs
		JOIN region_plans rp ON rp.id = rs.plan_id
		JOIN regions r ON r.id = rp.region_id
		WHERE rs.user_id = $1 AND rs.status IN ('trialing', 'active')
		ORDER BY r.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regions := []models.RegionRef{}
	for rows.Next() {
		var ref models.RegionRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		regions = append(regions, ref)
	}
	return regions, rows.Err()
}

// LocationIDsForRegions returns the ids of every location in the given
// regions.
func (r *Repository) LocationIDsForRegions(ctx context.Context, regionIDs []uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]string, len(regionIDs))
	for i, id := range regionIDs {
		ids[i] = id.String()
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM locations WHERE region_id = ANY($1::uuid[]) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// candidateFilter keeps only projects a talent may be matched into.
const candidateFilter = `p.is_archived = FALSE AND p.status NOT IN ('completed', 'cancelled')`

// ProjectsWithOpenCalls returns live projects that have at least one open
// casting call in the given locations, each call carrying its skills and
// location. One candidate per project, calls ordered by id.
func (r *Repository) ProjectsWithOpenCalls(ctx context.Context, locationIDs []uuid.UUID) ([]ProjectCandidate, error) {
	ids := make([]string, len(locationIDs))
	for i, id := range locationIDs {
		ids[i] = id.String()
	}
	const q = `SELECT p.id, p.title, s.id, s.name,
			cc.id, cc.project_id, cc.title, cc.description, cc.status, cc.location_id,
			cc.compensation, cc.audition_date, cc.views, cc.created_by, cc.created_at, cc.updated_at,
			l.id, l.region_id, l.name, l.city, l.created_at
		FROM casting_calls cc
		JOIN locations l ON l.id = cc.location_id
		JOIN projects p ON p.id = cc.project_id
		JOIN studios s ON s.id = p.studio_id
		WHERE cc.status = 'open' AND l.id = ANY($1::uuid[]) AND ` + candidateFilter + `
		ORDER BY p.id, cc.id`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type callRow struct {
		projectID  uuid.UUID
		title      string
		studioID   uuid.UUID
		studioName string
		call       models.CastingCall
	}
	var flat []callRow
	callIdx := make(map[uuid.UUID]int)
	for rows.Next() {
		var cr callRow
		var loc models.Location
		err := rows.Scan(&cr.projectID, &cr.title, &cr.studioID, &cr.studioName,
			&cr.call.ID, &cr.call.ProjectID, &cr.call.Title, &cr.call.Description,
			&cr.call.Status, &cr.call.LocationID, &cr.call.Compensation,
			&cr.call.AuditionDate, &cr.call.Views, &cr.call.CreatedBy,
			&cr.call.CreatedAt, &cr.call.UpdatedAt,
			&loc.ID, &loc.RegionID, &loc.Name, &loc.City, &loc.CreatedAt)
		if err != nil {
			return nil, err
		}
		cr.call.Location = &loc
		callIdx[cr.call.ID] = len(flat)
		flat = append(flat, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(flat) == 0 {
		return []ProjectCandidate{}, nil
	}

	callIDs := make([]string, len(flat))
	for i := range flat {
		callIDs[i] = flat[i].call.ID.String()
	}
	const sq = `SELECT ccs.casting_call_id, s.id, s.name
		FROM casting_call_skills ccs
		JOIN skills s ON s.id = ccs.skill_id
		WHERE ccs.casting_call_id = ANY($1::uuid[])
		ORDER BY s.name`
	skillRows, err := r.pool.Query(ctx, sq, callIDs)
	if err != nil {
		return nil, err
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var callID uuid.UUID
		var s models.Skill
		if err := skillRows.Scan(&callID, &s.ID, &s.Name); err != nil {
			return nil, err
		}
		if i, ok := callIdx[callID]; ok {
			flat[i].call.Skills = append(flat[i].call.Skills, s)
		}
	}
	if err := skillRows.Err(); err != nil {
		return nil, err
	}

	out := []ProjectCandidate{}
	for _, cr := range flat {
		if len(out) == 0 || out[len(out)-1].ProjectID != cr.projectID {
			out = append(out, ProjectCandidate{
				ProjectID:  cr.projectID,
				Title:      cr.title,
				StudioID:   cr.studioID,
				StudioName: cr.studioName,
			})
		}
		last := &out[len(out)-1]
		last.CastingCalls = append(last.CastingCalls, cr.call)
	}
	return out, nil
}

// ProjectsWithActiveRequirements returns live projects that have at least
// one active talent requirement. Requirements have no location, so there is
// no location filter here.
func (r *Repository) ProjectsWithActiveRequirements(ctx context.Context) ([]ProjectCandidate, error) {
	const q = `SELECT p.id, p.title, s.id, s.name,
			tr.id, tr.project_id, tr.role_name, tr.description, COALESCE(tr.gender,''),
			tr.age_min, tr.age_max, COALESCE(tr.ethnicity,''), COALESCE(tr.height_range,''),
			tr.skills, tr.is_active, tr.created_at, tr.updated_at
		FROM talent_requirements tr
		JOIN projects p ON p.id = tr.project_id
		JOIN studios s ON s.id = p.studio_id
		WHERE tr.is_active = TRUE AND ` + candidateFilter + `
		ORDER BY p.id, tr.id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ProjectCandidate{}
	for rows.Next() {
		var projectID, studioID uuid.UUID
		var title, studioName string
		var req models.TalentRequirement
		err := rows.Scan(&projectID, &title, &studioID, &studioName,
			&req.ID, &req.ProjectID, &req.RoleName, &req.Description, &req.Gender,
			&req.AgeMin, &req.AgeMax, &req.Ethnicity, &req.HeightRange,
			&req.Skills, &req.IsActive, &req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].ProjectID != projectID {
			out = append(out, ProjectCandidate{
				ProjectID:  projectID,
				Title:      title,
				StudioID:   studioID,
				StudioName: studioName,
			})
		}
		last := &out[len(out)-1]
		last.Requirements = append(last.Requirements, req)
	}
	return out, rows.Err()
}
