package castingcalls

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles casting call persistence, including the structured
// skill links.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a casting calls repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a casting call and links its skills in one transaction.
// Skill names are upserted into the catalog case-insensitively.
func (r *Repository) Create(ctx context.Context, cc *models.CastingCall, skillNames []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO casting_calls
			(project_id, title, description, status, location_id, compensation, audition_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, views, created_at, updated_at`
	err = tx.QueryRow(ctx, q, cc.ProjectID, cc.Title, cc.Description, cc.Status,
		cc.LocationID, cc.Compensation, cc.AuditionDate, cc.CreatedBy).
		Scan(&cc.ID, &cc.Views, &cc.CreatedAt, &cc.UpdatedAt)
	if err != nil {
		return err
	}
	cc.Skills, err = replaceSkillsTx(ctx, tx, cc.ID, skillNames)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReplaceSkills swaps a call's skill set for the given names.
func (r *Repository) ReplaceSkills(ctx context.Context, callID uuid.UUID, skillNames []string) ([]models.Skill, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	skills, err := replaceSkillsTx(ctx, tx, callID, skillNames)
	if err != nil {
		return nil, err
	}
	return skills, tx.Commit(ctx)
}

func replaceSkillsTx(ctx context.Context, tx pgx.Tx, callID uuid.UUID, skillNames []string) ([]models.Skill, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM casting_call_skills WHERE casting_call_id = $1`, callID); err != nil {
		return nil, err
	}
	skills := make([]models.Skill, 0, len(skillNames))
	seen := make(map[uuid.UUID]bool)
	for _, name := range skillNames {
		// The no-op update lets RETURNING yield the existing row's id on
		// conflict, keeping the catalog's original casing.
		const upsert = `INSERT INTO skills (name) VALUES ($1)
			ON CONFLICT (LOWER(name)) DO UPDATE SET name = skills.name
			RETURNING id, name`
		var s models.Skill
		if err := tx.QueryRow(ctx, upsert, name).Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		const link = `INSERT INTO casting_call_skills (casting_call_id, skill_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, link, callID, s.ID); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, nil
}

const callColumns = `cc.id, cc.project_id, cc.title, cc.description, cc.status,
	cc.location_id, cc.compensation, cc.audition_date, cc.views, cc.created_by,
	cc.created_at, cc.updated_at`

func scanCall(row pgx.Row) (*models.CastingCall, error) {
	var cc models.CastingCall
	err := row.Scan(&cc.ID, &cc.ProjectID, &cc.Title, &cc.Description, &cc.Status,
		&cc.LocationID, &cc.Compensation, &cc.AuditionDate, &cc.Views, &cc.CreatedBy,
		&cc.CreatedAt, &cc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cc, nil
}

// GetByID returns a casting call with its skills and location attached.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.CastingCall, error) {
	cc, err := scanCall(r.pool.QueryRow(ctx,
		`SELECT `+callColumns+` FROM casting_calls cc WHERE cc.id = $1`, id))
	if err != nil {
		return nil, err
	}
	cc.Skills, err = r.skillsForCall(ctx, cc.ID)
	if err != nil {
		return nil, err
	}
	if cc.LocationID != nil {
		loc, err := r.location(ctx, *cc.LocationID)
		if err == nil {
			cc.Location = loc
		}
	}
	return cc, nil
}

func (r *Repository) skillsForCall(ctx context.Context, callID uuid.UUID) ([]models.Skill, error) {
	const q = `SELECT s.id, s.name
		FROM casting_call_skills ccs
		JOIN skills s ON s.id = ccs.skill_id
		WHERE ccs.casting_call_id = $1
		ORDER BY s.name`
	rows, err := r.pool.Query(ctx, q, callID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var skills []models.Skill
	for rows.Next() {
		var s models.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (r *Repository) location(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var loc models.Location
	err := r.pool.QueryRow(ctx, `SELECT id, region_id, name, city, created_at
		FROM locations WHERE id = $1`, id).
		Scan(&loc.ID, &loc.RegionID, &loc.Name, &loc.City, &loc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListByProject returns a project's casting calls, newest first, with
// skills attached.
func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.CastingCall, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+callColumns+` FROM casting_calls cc WHERE cc.project_id = $1 ORDER BY cc.created_at DESC`,
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.CastingCall
	byID := make(map[uuid.UUID]*models.CastingCall)
	for rows.Next() {
		cc, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, cc)
		byID[cc.ID] = cc
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const sq = `SELECT ccs.casting_call_id, s.id, s.name
		FROM casting_call_skills ccs
		JOIN skills s ON s.id = ccs.skill_id
		JOIN casting_calls cc ON cc.id = ccs.casting_call_id
		WHERE cc.project_id = $1
		ORDER BY s.name`
	skillRows, err := r.pool.Query(ctx, sq, projectID)
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
		if cc, ok := byID[callID]; ok {
			cc.Skills = append(cc.Skills, s)
		}
	}
	return list, skillRows.Err()
}

// Update updates a call's mutable fields. Skills are replaced separately.
func (r *Repository) Update(ctx context.Context, cc *models.CastingCall) error {
	const q = `UPDATE casting_calls SET
			title = $2, description = $3, location_id = $4, compensation = $5,
			audition_date = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, cc.ID, cc.Title, cc.Description, cc.LocationID,
		cc.Compensation, cc.AuditionDate).Scan(&cc.UpdatedAt)
}

// SetStatus moves a call to the given lifecycle state.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.CastingCallStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE casting_calls SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

// IncrementViews bumps the view counter and returns the new value.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (int, error) {
	var views int
	err := r.pool.QueryRow(ctx,
		`UPDATE casting_calls SET views = views + 1 WHERE id = $1 RETURNING views`, id).
		Scan(&views)
	return views, err
}
