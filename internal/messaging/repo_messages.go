package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/castlane/backend/internal/models"
)

// CreateMessage inserts a message and bumps the thread's activity stamp in
// one transaction.
func (r *Repository) CreateMessage(ctx context.Context, m *models.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO messages (thread_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	if err := tx.QueryRow(ctx, q, m.ThreadID, m.SenderID, m.Body).Scan(&m.ID, &m.CreatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE message_threads SET last_message_at = $2 WHERE id = $1`, m.ThreadID, m.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListMessages returns a page of messages, newest first. A non-nil before
// cursor returns only messages created strictly earlier.
func (r *Repository) ListMessages(ctx context.Context, threadID uuid.UUID, before *time.Time, limit int) ([]models.Message, error) {
	const q = `SELECT id, thread_id, sender_id, body, read_at, created_at
		FROM messages
		WHERE thread_id = $1 AND ($2::timestamptz IS NULL OR created_at < $2)
		ORDER BY created_at DESC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, q, threadID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// MarkThreadRead marks every message from the other side as read and
// returns how many changed.
func (r *Repository) MarkThreadRead(ctx context.Context, threadID, readerID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE messages SET read_at = NOW()
		 WHERE thread_id = $1 AND sender_id <> $2 AND read_at IS NULL`, threadID, readerID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
