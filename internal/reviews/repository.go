package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles application review persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reviews repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert records a reviewer's rating of an application. One review per
// reviewer per application; re-reviewing overwrites.
func (r *Repository) Upsert(ctx context.Context, rev *models.ApplicationReview) error {
	const q = `INSERT INTO application_reviews (application_id, reviewer_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (application_id, reviewer_id)
			DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, rev.ApplicationID, rev.ReviewerID, rev.Rating, rev.Comment).
		Scan(&rev.ID, &rev.CreatedAt)
}

// ListForApplication returns an application's reviews with reviewer names,
// newest first.
func (r *Repository) ListForApplication(ctx context.Context, applicationID uuid.UUID) ([]models.ApplicationReview, error) {
	const q = `SELECT ar.id, ar.application_id, ar.reviewer_id, u.full_name, ar.rating, ar.comment, ar.created_at
		FROM application_reviews ar
		JOIN users u ON u.id = ar.reviewer_id
		WHERE ar.application_id = $1
		ORDER BY ar.created_at DESC`
	rows, err := r.pool.Query(ctx, q, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ApplicationReview
	for rows.Next() {
		var rev models.ApplicationReview
		if err := rows.Scan(&rev.ID, &rev.ApplicationID, &rev.ReviewerID, &rev.ReviewerName,
			&rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, rev)
	}
	return list, rows.Err()
}

// SummariesForCall returns per-application review summaries for a call's
// applications, including applications not yet reviewed.
func (r *Repository) SummariesForCall(ctx context.Context, callID uuid.UUID) ([]models.ReviewSummary, error) {
	const q = `SELECT a.id, COALESCE(AVG(ar.rating), 0), COUNT(ar.id)
		FROM applications a
		LEFT JOIN application_reviews ar ON ar.application_id = a.id
		WHERE a.casting_call_id = $1
		GROUP BY a.id
		ORDER BY AVG(ar.rating) DESC NULLS LAST, a.id`
	rows, err := r.pool.Query(ctx, q, callID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ReviewSummary
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var s models.ReviewSummary
		if err := rows.Scan(&s.ApplicationID, &s.AverageRating, &s.ReviewCount); err != nil {
			return nil, err
		}
		s.Reviews = []models.ApplicationReview{}
		byID[s.ApplicationID] = len(list)
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const rq = `SELECT ar.id, ar.application_id, ar.reviewer_id, u.full_name, ar.rating, ar.comment, ar.created_at
		FROM application_reviews ar
		JOIN users u ON u.id = ar.reviewer_id
		JOIN applications a ON a.id = ar.application_id
		WHERE a.casting_call_id = $1
		ORDER BY ar.created_at DESC`
	revRows, err := r.pool.Query(ctx, rq, callID)
	if err != nil {
		return nil, err
	}
	defer revRows.Close()
	for revRows.Next() {
		var rev models.ApplicationReview
		if err := revRows.Scan(&rev.ID, &rev.ApplicationID, &rev.ReviewerID, &rev.ReviewerName,
			&rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := byID[rev.ApplicationID]; ok {
			list[i].Reviews = append(list[i].Reviews, rev)
		}
	}
	return list, revRows.Err()
}
