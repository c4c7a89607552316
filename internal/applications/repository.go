package applications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// ErrAlreadyApplied means a live application for this call and talent
// already exists. Only withdrawn applications can be re-submitted.
var ErrAlreadyApplied = errors.New("already applied to this casting call")

// Repository handles application persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an applications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Apply inserts an application, or resurrects a withdrawn one for the same
// call and talent. The conditional upsert yields no row when a live
// application blocks the re-apply.
func (r *Repository) Apply(ctx context.Context, a *models.Application) error {
	const q = `INSERT INTO applications (casting_call_id, talent_id, note)
		VALUES ($1, $2, $3)
		ON CONFLICT (casting_call_id, talent_id) DO UPDATE
			SET note = EXCLUDED.note, status = 'submitted', updated_at = NOW()
			WHERE applications.status = 'withdrawn'
		RETURNING id, status, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, a.CastingCallID, a.TalentID, a.Note).
		Scan(&a.ID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyApplied
	}
	return err
}

// GetDetail returns an application with talent identity and the call's
// project/studio context attached.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*models.ApplicationDetail, error) {
	const q = `SELECT a.id, a.casting_call_id, a.talent_id, a.note, a.status, a.created_at, a.updated_at,
			u.id, u.full_name, u.email, tp.headshot_url, cc.project_id, p.studio_id, cc.title
		FROM applications a
		JOIN talent_profiles tp ON tp.id = a.talent_id
		JOIN users u ON u.id = tp.user_id
		JOIN casting_calls cc ON cc.id = a.casting_call_id
		JOIN projects p ON p.id = cc.project_id
		WHERE a.id = $1`
	var d models.ApplicationDetail
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&d.ID, &d.CastingCallID, &d.TalentID, &d.Note, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.TalentUserID, &d.TalentName, &d.TalentEmail, &d.HeadshotURL, &d.ProjectID, &d.StudioID, &d.CallTitle)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListForTalent returns a talent's applications with call and project
// titles, newest first.
func (r *Repository) ListForTalent(ctx context.Context, talentID uuid.UUID) ([]models.ApplicationWithCall, error) {
	const q = `SELECT a.id, a.casting_call_id, a.talent_id, a.note, a.status, a.created_at, a.updated_at,
			cc.title, cc.status, p.title
		FROM applications a
		JOIN casting_calls cc ON cc.id = a.casting_call_id
		JOIN projects p ON p.id = cc.project_id
		WHERE a.talent_id = $1
		ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, q, talentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ApplicationWithCall
	for rows.Next() {
		var a models.ApplicationWithCall
		if err := rows.Scan(&a.ID, &a.CastingCallID, &a.TalentID, &a.Note, &a.Status,
			&a.CreatedAt, &a.UpdatedAt, &a.CallTitle, &a.CallStatus, &a.ProjectTitle); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListForCall returns a call's applications with talent summaries, newest
// first. Withdrawn applications stay visible to the studio.
func (r *Repository) ListForCall(ctx context.Context, callID uuid.UUID) ([]models.ApplicationDetail, error) {
	const q = `SELECT a.id, a.casting_call_id, a.talent_id, a.note, a.status, a.created_at, a.updated_at,
			u.id, u.full_name, tp.headshot_url
		FROM applications a
		JOIN talent_profiles tp ON tp.id = a.talent_id
		JOIN users u ON u.id = tp.user_id
		WHERE a.casting_call_id = $1
		ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, q, callID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ApplicationDetail
	for rows.Next() {
		var d models.ApplicationDetail
		if err := rows.Scan(&d.ID, &d.CastingCallID, &d.TalentID, &d.Note, &d.Status,
			&d.CreatedAt, &d.UpdatedAt, &d.TalentUserID, &d.TalentName, &d.HeadshotURL); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// CallStatus returns a casting call's lifecycle status.
func (r *Repository) CallStatus(ctx context.Context, callID uuid.UUID) (models.CastingCallStatus, error) {
	var status models.CastingCallStatus
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM casting_calls WHERE id = $1`, callID).Scan(&status)
	return status, err
}

// StudioIDForCall resolves the studio that owns a casting call.
func (r *Repository) StudioIDForCall(ctx context.Context, callID uuid.UUID) (uuid.UUID, error) {
	var studioID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT p.studio_id FROM casting_calls cc JOIN projects p ON p.id = cc.project_id WHERE cc.id = $1`,
		callID).Scan(&studioID)
	return studioID, err
}

// SetStatus moves an application to the given status.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	const q = `UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, status)
	return err
}

// CountByStatusForCall returns application counts per status for a call.
func (r *Repository) CountByStatusForCall(ctx context.Context, callID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM applications WHERE casting_call_id = $1 GROUP BY status`, callID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
