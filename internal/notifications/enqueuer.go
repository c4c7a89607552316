package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/queue"
)

// Enqueuer records an email_logs row and pushes the matching email job.
// Feature handlers depend on this instead of touching the queue directly so
// every outbound email has a log row from the moment it is queued.
type Enqueuer struct {
	repo   *Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEnqueuer creates an email enqueuer.
func NewEnqueuer(repo *Repository, q *queue.Queue, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{repo: repo, queue: q, logger: logger}
}

// Enqueue writes a queued email_logs row and pushes the job. Returns the log
// row so callers can reference it.
func (e *Enqueuer) Enqueue(ctx context.Context, userID *uuid.UUID, recipient, emailType, subject, body string) (*models.EmailLog, error) {
	el := &models.EmailLog{
		UserID:         userID,
		EmailType:      emailType,
		RecipientEmail: recipient,
		Subject:        subject,
		Body:           body,
	}
	if err := e.repo.CreateLog(ctx, el); err != nil {
		return nil, fmt.Errorf("create email log: %w", err)
	}
	payload := queue.EmailPayload{
		EmailLogID:     el.ID,
		EmailType:      emailType,
		UserID:         userID,
		RecipientEmail: recipient,
		Subject:        subject,
		Body:           body,
	}
	if err := e.queue.EnqueueEmail(ctx, payload); err != nil {
		// The row stays queued; a resend can pick it up later.
		e.logger.Error("email enqueue failed", zap.Error(err), zap.String("email_log_id", el.ID.String()))
		return el, fmt.Errorf("enqueue email: %w", err)
	}
	return el, nil
}

// Resend re-enqueues an existing log row, resetting it to queued.
func (e *Enqueuer) Resend(ctx context.Context, el *models.EmailLog) error {
	if err := e.repo.MarkQueued(ctx, el.ID); err != nil {
		return fmt.Errorf("reset email log: %w", err)
	}
	payload := queue.EmailPayload{
		EmailLogID:     el.ID,
		EmailType:      el.EmailType,
		UserID:         el.UserID,
		RecipientEmail: el.RecipientEmail,
		Subject:        el.Subject,
		Body:           el.Body,
	}
	if err := e.queue.EnqueueEmail(ctx, payload); err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}
