package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notifications repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateLog inserts a queued email log row.
func (r *Repository) CreateLog(ctx context.Context, el *models.EmailLog) error {
	const q = `INSERT INTO email_logs (user_id, email_type, recipient_email, subject, body, status)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, el.UserID, el.EmailType, el.RecipientEmail, el.Subject, el.Body, models.EmailStatusQueued).
		Scan(&el.ID, &el.CreatedAt)
}

// GetByID returns an email log by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.EmailLog, error) {
	const q = `SELECT id, user_id, email_type, recipient_email, subject, body, status, sent_at, error_message, created_at
		FROM email_logs WHERE id = $1`
	var el models.EmailLog
	var subject, body, errMsg *string
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&el.ID, &el.UserID, &el.EmailType, &el.RecipientEmail, &subject, &body, &el.Status, &el.SentAt, &errMsg, &el.CreatedAt)
	if err != nil {
		return nil, err
	}
	if subject != nil {
		el.Subject = *subject
	}
	if body != nil {
		el.Body = *body
	}
	if errMsg != nil {
		el.ErrorMessage = *errMsg
	}
	return &el, nil
}

// ListForUser returns a user's email logs, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.EmailLog, error) {
	const q = `SELECT id, user_id, email_type, recipient_email, subject, status, sent_at, error_message, created_at
		FROM email_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 200`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		var subject, errMsg *string
		if err := rows.Scan(&el.ID, &el.UserID, &el.EmailType, &el.RecipientEmail, &subject, &el.Status, &el.SentAt, &errMsg, &el.CreatedAt); err != nil {
			return nil, err
		}
		if subject != nil {
			el.Subject = *subject
		}
		if errMsg != nil {
			el.ErrorMessage = *errMsg
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}

// MarkSent transitions a log row to sent.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE email_logs SET status = $2, sent_at = NOW(), error_message = NULL WHERE id = $1`,
		id, models.EmailStatusSent)
	return err
}

// MarkFailed transitions a log row to failed with the send error.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx, `UPDATE email_logs SET status = $2, error_message = $3 WHERE id = $1`,
		id, models.EmailStatusFailed, errMsg)
	return err
}

// MarkQueued transitions a log row back to queued for admin resend.
func (r *Repository) MarkQueued(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE email_logs SET status = $2, error_message = NULL WHERE id = $1`,
		id, models.EmailStatusQueued)
	return err
}
