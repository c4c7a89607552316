package studios

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles studio and studio_member persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a studios repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create creates a studio.
func (r *Repository) Create(ctx context.Context, s *models.Studio) error {
	const q = `INSERT INTO studios (name, slug, description, website)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.Name, s.Slug, s.Description, s.Website).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a studio by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Studio, error) {
	const q = `SELECT id, name, slug, description, website, created_at, updated_at
		FROM studios WHERE id = $1`
	var s models.Studio
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.Website, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update updates a studio's mutable fields. The slug is fixed at creation.
func (r *Repository) Update(ctx context.Context, s *models.Studio) error {
	const q = `UPDATE studios SET name = $2, description = $3, website = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, s.ID, s.Name, s.Description, s.Website).Scan(&s.UpdatedAt)
}

// AddMember adds a user to a studio, updating the role if already a member.
func (r *Repository) AddMember(ctx context.Context, studioID, userID uuid.UUID, role string) error {
	const q = `INSERT INTO studio_members (studio_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (studio_id, user_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := r.pool.Exec(ctx, q, studioID, userID, role)
	return err
}

// MemberRole returns the user's role in the studio, or empty if not a member.
func (r *Repository) MemberRole(ctx context.Context, studioID, userID uuid.UUID) (string, error) {
	const q = `SELECT role FROM studio_members WHERE studio_id = $1 AND user_id = $2`
	var role string
	err := r.pool.QueryRow(ctx, q, studioID, userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

// IsMember returns true if the user belongs to the studio in any role.
func (r *Repository) IsMember(ctx context.Context, studioID, userID uuid.UUID) (bool, error) {
	role, err := r.MemberRole(ctx, studioID, userID)
	if err != nil || role == "" {
		return false, nil
	}
	return true, nil
}

// CanManage returns true if the user is an owner or manager of the studio.
func (r *Repository) CanManage(ctx context.Context, studioID, userID uuid.UUID) (bool, error) {
	role, err := r.MemberRole(ctx, studioID, userID)
	if err != nil || role == "" {
		return false, nil
	}
	return role == models.StudioRoleOwner || role == models.StudioRoleManager, nil
}

// ListForUser returns studios the user is a member of.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Studio, error) {
	const q = `SELECT s.id, s.name, s.slug, s.description, s.website, s.created_at, s.updated_at
		FROM studios s
		INNER JOIN studio_members sm ON sm.studio_id = s.id
		WHERE sm.user_id = $1
		ORDER BY s.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Studio
	for rows.Next() {
		var s models.Studio
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.Website, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// ListMembers returns members of a studio with user identity.
func (r *Repository) ListMembers(ctx context.Context, studioID uuid.UUID) ([]models.StudioMemberDetail, error) {
	const q = `SELECT sm.user_id, u.email, u.full_name, sm.role, sm.added_at
		FROM studio_members sm
		INNER JOIN users u ON u.id = sm.user_id
		WHERE sm.studio_id = $1
		ORDER BY sm.added_at ASC`
	rows, err := r.pool.Query(ctx, q, studioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.StudioMemberDetail
	for rows.Next() {
		var m models.StudioMemberDetail
		if err := rows.Scan(&m.UserID, &m.Email, &m.FullName, &m.Role, &m.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// UserIDByEmail resolves a platform user by email for member invites.
func (r *Repository) UserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	const q = `SELECT id FROM users WHERE email = $1`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, email).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
