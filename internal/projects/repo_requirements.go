package projects

import (
	"context"

	"github.com/google/uuid"

	"github.com/castlane/backend/internal/models"
)

// CreateRequirement inserts a talent requirement under a project.
func (r *Repository) CreateRequirement(ctx context.Context, tr *models.TalentRequirement) error {
	const q = `INSERT INTO talent_requirements
			(project_id, role_name, description, gender, age_min, age_max, ethnicity, height_range, skills, is_active)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, NULLIF($7,''), NULLIF($8,''), $9, $10)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, tr.ProjectID, tr.RoleName, tr.Description, tr.Gender,
		tr.AgeMin, tr.AgeMax, tr.Ethnicity, tr.HeightRange, tr.Skills, tr.IsActive).
		Scan(&tr.ID, &tr.CreatedAt, &tr.UpdatedAt)
}

// GetRequirement returns a requirement by ID.
func (r *Repository) GetRequirement(ctx context.Context, id uuid.UUID) (*models.TalentRequirement, error) {
	const q = `SELECT id, project_id, role_name, description,
			COALESCE(gender,''), age_min, age_max, COALESCE(ethnicity,''), COALESCE(height_range,''), skills,
			is_active, created_at, updated_at
		FROM talent_requirements WHERE id = $1`
	var tr models.TalentRequirement
	err := r.pool.QueryRow(ctx, q, id).Scan(&tr.ID, &tr.ProjectID, &tr.RoleName, &tr.Description,
		&tr.Gender, &tr.AgeMin, &tr.AgeMax, &tr.Ethnicity, &tr.HeightRange, &tr.Skills,
		&tr.IsActive, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// ListRequirements returns a project's requirements, newest first.
func (r *Repository) ListRequirements(ctx context.Context, projectID uuid.UUID) ([]models.TalentRequirement, error) {
	const q = `SELECT id, project_id, role_name, description,
			COALESCE(gender,''), age_min, age_max, COALESCE(ethnicity,''), COALESCE(height_range,''), skills,
			is_active, created_at, updated_at
		FROM talent_requirements
		WHERE project_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TalentRequirement
	for rows.Next() {
		var tr models.TalentRequirement
		if err := rows.Scan(&tr.ID, &tr.ProjectID, &tr.RoleName, &tr.Description,
			&tr.Gender, &tr.AgeMin, &tr.AgeMax, &tr.Ethnicity, &tr.HeightRange, &tr.Skills,
			&tr.IsActive, &tr.CreatedAt, &tr.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, tr)
	}
	return list, rows.Err()
}

// UpdateRequirement updates all mutable requirement fields.
func (r *Repository) UpdateRequirement(ctx context.Context, tr *models.TalentRequirement) error {
	const q = `UPDATE talent_requirements SET
			role_name = $2, description = $3, gender = NULLIF($4,''), age_min = $5, age_max = $6,
			ethnicity = NULLIF($7,''), height_range = NULLIF($8,''), skills = $9, is_active = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, tr.ID, tr.RoleName, tr.Description, tr.Gender, tr.AgeMin, tr.AgeMax,
		tr.Ethnicity, tr.HeightRange, tr.Skills, tr.IsActive).Scan(&tr.UpdatedAt)
}

// DeleteRequirement removes a requirement.
func (r *Repository) DeleteRequirement(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM talent_requirements WHERE id = $1`, id)
	return err
}
