package views

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles profile view persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profile views repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts a view of a talent profile.
func (r *Repository) Record(ctx context.Context, talentID, viewerID uuid.UUID) error {
	const q = `INSERT INTO profile_views (talent_id, viewer_id) VALUES ($1, $2)`
	_, err := r.pool.Exec(ctx, q, talentID, viewerID)
	return err
}

// StatsForTalent returns view totals and the most recent viewers. The studio
// name shown per viewer is their first membership alphabetically.
func (r *Repository) StatsForTalent(ctx context.Context, talentID uuid.UUID) (*models.ProfileViewStats, error) {
	var stats models.ProfileViewStats
	const countQ = `SELECT COUNT(*),
			COUNT(*) FILTER (WHERE viewed_at >= NOW() - INTERVAL '30 days')
		FROM profile_views WHERE talent_id = $1`
	if err := r.pool.QueryRow(ctx, countQ, talentID).Scan(&stats.TotalViews, &stats.Last30Days); err != nil {
		return nil, err
	}

	const recentQ = `SELECT pv.viewer_id, u.full_name,
			COALESCE((SELECT s.name FROM studio_members sm
				JOIN studios s ON s.id = sm.studio_id
				WHERE sm.user_id = pv.viewer_id
				ORDER BY s.name LIMIT 1), ''),
			pv.viewed_at
		FROM profile_views pv
		JOIN users u ON u.id = pv.viewer_id
		WHERE pv.talent_id = $1
		ORDER BY pv.viewed_at DESC
		LIMIT 20`
	rows, err := r.pool.Query(ctx, recentQ, talentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stats.RecentViews = []models.ProfileViewEntry{}
	for rows.Next() {
		var e models.ProfileViewEntry
		if err := rows.Scan(&e.ViewerID, &e.ViewerName, &e.StudioName, &e.ViewedAt); err != nil {
			return nil, err
		}
		stats.RecentViews = append(stats.RecentViews, e)
	}
	return &stats, rows.Err()
}

// ProfileIDByUserID resolves a user's talent profile id.
func (r *Repository) ProfileIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM talent_profiles WHERE user_id = $1`, userID).Scan(&id)
	return id, err
}
