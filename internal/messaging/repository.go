package messaging

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles message thread and message persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a messaging repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const threadColumns = `t.id, t.studio_id, t.talent_user_id, t.casting_call_id, t.subject,
	t.last_message_at, t.created_at, s.name, u.full_name`

func scanThread(row pgx.Row) (*models.MessageThread, error) {
	var t models.MessageThread
	err := row.Scan(&t.ID, &t.StudioID, &t.TalentUserID, &t.CastingCallID, &t.Subject,
		&t.LastMessageAt, &t.CreatedAt, &t.StudioName, &t.TalentName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetOrCreateThread returns the thread for (studio, talent, call), creating
// it if missing. One thread exists per triple; a nil call id matches only
// threads without a call.
func (r *Repository) GetOrCreateThread(ctx context.Context, t *models.MessageThread) (created bool, err error) {
	const zero = `'00000000-0000-0000-0000-000000000000'::uuid`
	const getQ = `SELECT ` + threadColumns + `
		FROM message_threads t
		JOIN studios s ON s.id = t.studio_id
		JOIN users u ON u.id = t.talent_user_id
		WHERE t.studio_id = $1 AND t.talent_user_id = $2
			AND COALESCE(t.casting_call_id, ` + zero + `) = COALESCE($3, ` + zero + `)`
	existing, err := scanThread(r.pool.QueryRow(ctx, getQ, t.StudioID, t.TalentUserID, t.CastingCallID))
	if err == nil {
		*t = *existing
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	const insQ = `INSERT INTO message_threads (studio_id, talent_user_id, casting_call_id, subject)
		VALUES ($1, $2, $3, $4)
		RETURNING id, last_message_at, created_at`
	err = r.pool.QueryRow(ctx, insQ, t.StudioID, t.TalentUserID, t.CastingCallID, t.Subject).
		Scan(&t.ID, &t.LastMessageAt, &t.CreatedAt)
	if err != nil {
		// A concurrent open may have won the unique index race.
		if strings.Contains(err.Error(), "duplicate key") {
			existing, err := scanThread(r.pool.QueryRow(ctx, getQ, t.StudioID, t.TalentUserID, t.CastingCallID))
			if err != nil {
				return false, err
			}
			*t = *existing
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetThread returns a thread by id with studio and talent names attached.
func (r *Repository) GetThread(ctx context.Context, id uuid.UUID) (*models.MessageThread, error) {
	const q = `SELECT ` + threadColumns + `
		FROM message_threads t
		JOIN studios s ON s.id = t.studio_id
		JOIN users u ON u.id = t.talent_user_id
		WHERE t.id = $1`
	return scanThread(r.pool.QueryRow(ctx, q, id))
}

// CanAccess reports whether a user may read a thread: the talent
// participant, or any member of the studio side.
func (r *Repository) CanAccess(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM message_threads t
		WHERE t.id = $1 AND (t.talent_user_id = $2
			OR EXISTS (SELECT 1 FROM studio_members sm
				WHERE sm.studio_id = t.studio_id AND sm.user_id = $2)))`
	var ok bool
	err := r.pool.QueryRow(ctx, q, threadID, userID).Scan(&ok)
	return ok, err
}

// ListForUser returns every thread the user participates in, either as the
// talent or through a studio membership, most recently active first. The
// unread count excludes the user's own messages.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.MessageThread, error) {
	const q = `SELECT ` + threadColumns + `,
			(SELECT COUNT(*) FROM messages m
				WHERE m.thread_id = t.id AND m.read_at IS NULL AND m.sender_id <> $1)
		FROM message_threads t
		JOIN studios s ON s.id = t.studio_id
		JOIN users u ON u.id = t.talent_user_id
		WHERE t.talent_user_id = $1
			OR EXISTS (SELECT 1 FROM studio_members sm
				WHERE sm.studio_id = t.studio_id AND sm.user_id = $1)
		ORDER BY t.last_message_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.MessageThread
	for rows.Next() {
		var t models.MessageThread
		if err := rows.Scan(&t.ID, &t.StudioID, &t.TalentUserID, &t.CastingCallID, &t.Subject,
			&t.LastMessageAt, &t.CreatedAt, &t.StudioName, &t.TalentName, &t.UnreadCount); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// Recipient is a user to notify about thread activity.
type Recipient struct {
	UserID   uuid.UUID
	Email    string
	FullName string
}

// Recipients returns everyone on the other side of the thread from the
// sender: the talent user, or all studio members.
func (r *Repository) Recipients(ctx context.Context, t *models.MessageThread, senderID uuid.UUID) ([]Recipient, error) {
	if senderID != t.TalentUserID {
		var rec Recipient
		err := r.pool.QueryRow(ctx,
			`SELECT id, email, full_name FROM users WHERE id = $1`, t.TalentUserID).
			Scan(&rec.UserID, &rec.Email, &rec.FullName)
		if err != nil {
			return nil, err
		}
		return []Recipient{rec}, nil
	}
	const q = `SELECT u.id, u.email, u.full_name
		FROM studio_members sm
		JOIN users u ON u.id = sm.user_id
		WHERE sm.studio_id = $1 AND sm.user_id <> $2`
	rows, err := r.pool.Query(ctx, q, t.StudioID, senderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Recipient
	for rows.Next() {
		var rec Recipient
		if err := rows.Scan(&rec.UserID, &rec.Email, &rec.FullName); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// SenderName returns a user's display name for notification copy.
func (r *Repository) SenderName(ctx context.Context, userID uuid.UUID) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT full_name FROM users WHERE id = $1`, userID).Scan(&name)
	return name, err
}
