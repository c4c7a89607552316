package media

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles portfolio media persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a media repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const mediaColumns = `id, talent_id, kind, s3_key, url, content_type, size_bytes,
	status, source_url, created_at, updated_at`

// Create inserts a media item. Status and storage fields come from the
// caller: direct uploads insert ready rows, ingests insert pending ones.
func (r *Repository) Create(ctx context.Context, m *models.MediaItem) error {
	const q = `INSERT INTO media_items
			(talent_id, kind, s3_key, url, content_type, size_bytes, status, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.TalentID, m.Kind, m.S3Key, m.URL,
		m.ContentType, m.SizeBytes, m.Status, m.SourceURL).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns one media item.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	var m models.MediaItem
	err := r.pool.QueryRow(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE id = $1`, id).
		Scan(&m.ID, &m.TalentID, &m.Kind, &m.S3Key, &m.URL, &m.ContentType,
			&m.SizeBytes, &m.Status, &m.SourceURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListForTalent returns a talent's media, newest first.
func (r *Repository) ListForTalent(ctx context.Context, talentID uuid.UUID) ([]models.MediaItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+mediaColumns+` FROM media_items WHERE talent_id = $1 ORDER BY created_at DESC`,
		talentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.MediaItem{}
	for rows.Next() {
		var m models.MediaItem
		err := rows.Scan(&m.ID, &m.TalentID, &m.Kind, &m.S3Key, &m.URL, &m.ContentType,
			&m.SizeBytes, &m.Status, &m.SourceURL, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// MarkReady records a finished ingest: the object's location and size, and
// the ready status.
func (r *Repository) MarkReady(ctx context.Context, id uuid.UUID, s3Key, url, contentType string, sizeBytes int64) error {
	const q = `UPDATE media_items
		SET status = 'ready', s3_key = $2, url = $3, content_type = $4, size_bytes = $5, updated_at = NOW()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, s3Key, url, contentType, sizeBytes)
	return err
}

// MarkFailed flags an ingest that could not complete.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE media_items SET status = 'failed', updated_at = NOW() WHERE id = $1`, id)
	return err
}

// Delete removes a media item row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM media_items WHERE id = $1`, id)
	return err
}

// ProfileIDByUserID resolves a user's talent profile id.
func (r *Repository) ProfileIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM talent_profiles WHERE user_id = $1`, userID).Scan(&id)
	return id, err
}
