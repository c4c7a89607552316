package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles project persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a projects repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new project.
func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	const q = `INSERT INTO projects (studio_id, title, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_archived, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.StudioID, p.Title, p.Description, p.Status, p.CreatedBy).
		Scan(&p.ID, &p.IsArchived, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a project by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	const q = `SELECT id, studio_id, title, description, status, is_archived, created_by, created_at, updated_at
		FROM projects WHERE id = $1`
	var p models.Project
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.StudioID, &p.Title, &p.Description, &p.Status,
		&p.IsArchived, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDetail returns a project with requirement and casting call counts.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.ProjectDetail, error) {
	const q = `SELECT p.id, p.studio_id, p.title, p.description, p.status, p.is_archived, p.created_by,
			p.created_at, p.updated_at,
			(SELECT COUNT(*) FROM talent_requirements tr WHERE tr.project_id = p.id),
			(SELECT COUNT(*) FROM casting_calls cc WHERE cc.project_id = p.id)
		FROM projects p WHERE p.id = $1`
	var d models.ProjectDetail
	err := r.pool.QueryRow(ctx, q, id).Scan(&d.ID, &d.StudioID, &d.Title, &d.Description, &d.Status,
		&d.IsArchived, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt, &d.RequirementCount, &d.CastingCallCount)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByStudio returns a studio's projects with counts, newest first.
// Archived projects are included only when includeArchived.
func (r *Repository) ListByStudio(ctx context.Context, studioID uuid.UUID, includeArchived bool) ([]models.ProjectDetail, error) {
	q := `SELECT p.id, p.studio_id, p.title, p.description, p.status, p.is_archived, p.created_by,
			p.created_at, p.updated_at,
			(SELECT COUNT(*) FROM talent_requirements tr WHERE tr.project_id = p.id),
			(SELECT COUNT(*) FROM casting_calls cc WHERE cc.project_id = p.id)
		FROM projects p WHERE p.studio_id = $1`
	if !includeArchived {
		q += ` AND p.is_archived = FALSE`
	}
	q += ` ORDER BY p.created_at DESC`
	rows, err := r.pool.Query(ctx, q, studioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ProjectDetail
	for rows.Next() {
		var d models.ProjectDetail
		if err := rows.Scan(&d.ID, &d.StudioID, &d.Title, &d.Description, &d.Status, &d.IsArchived,
			&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt, &d.RequirementCount, &d.CastingCallCount); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// Update updates a project's title, description and status.
func (r *Repository) Update(ctx context.Context, p *models.Project) error {
	const q = `UPDATE projects SET title = $2, description = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, p.ID, p.Title, p.Description, p.Status).Scan(&p.UpdatedAt)
}

// SetArchived flips the archive flag. Archived projects never surface in
// talent suggestions.
func (r *Repository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE projects SET is_archived = $2, updated_at = NOW() WHERE id = $1`, id, archived)
	return err
}
