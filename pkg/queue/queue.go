package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueMedia is the Redis list key for media ingest jobs.
	QueueMedia = "worker:media"
	// QueueEmails is the Redis list key for email jobs.
	QueueEmails = "worker:emails"
	// QueueAlerts is the Redis list key for role alert jobs.
	QueueAlerts = "worker:alerts"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeMediaIngest JobType = "media_ingest"
	JobTypeEmail       JobType = "email"
	JobTypeRoleAlert   JobType = "role_alert"
)

// MediaIngestPayload is the payload for media ingest jobs: copy an external
// file into the portfolio bucket.
type MediaIngestPayload struct {
	MediaID   uuid.UUID `json:"media_id"`
	TalentID  uuid.UUID `json:"talent_id"`
	SourceURL string    `json:"source_url"`
}

// EmailPayload is the payload for email jobs. EmailLogID references the
// queued email_logs row the worker transitions on success/failure.
type EmailPayload struct {
	EmailLogID     uuid.UUID  `json:"email_log_id"`
	EmailType      string     `json:"email_type"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject"`
	Body           string     `json:"body"`
}

// RoleAlertPayload is the payload for role alert jobs: run the suggestion
// engine for one user and mail a digest if anything scores high enough.
type RoleAlertPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

func keyForType(t JobType) string {
	switch t {
	case JobTypeMediaIngest:
		return QueueMedia
	case JobTypeEmail:
		return QueueEmails
	case JobTypeRoleAlert:
		return QueueAlerts
	}
	return QueueDLQ
}

func (q *Queue) enqueue(ctx context.Context, jobType JobType, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   body,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, keyForType(jobType), raw).Err(); err != nil {
		return "", fmt.Errorf("rpush: %w", err)
	}
	return job.ID, nil
}

// EnqueueMediaIngest enqueues a media ingest job.
func (q *Queue) EnqueueMediaIngest(ctx context.Context, payload MediaIngestPayload) error {
	id, err := q.enqueue(ctx, JobTypeMediaIngest, payload)
	if err != nil {
		return err
	}
	q.logger.Debug("enqueued media ingest job", zap.String("job_id", id), zap.String("media_id", payload.MediaID.String()))
	return nil
}

// EnqueueEmail enqueues an email job.
func (q *Queue) EnqueueEmail(ctx context.Context, payload EmailPayload) error {
	id, err := q.enqueue(ctx, JobTypeEmail, payload)
	if err != nil {
		return err
	}
	q.logger.Debug("enqueued email job", zap.String("job_id", id), zap.String("email_type", payload.EmailType))
	return nil
}

// EnqueueRoleAlert enqueues a role alert job.
func (q *Queue) EnqueueRoleAlert(ctx context.Context, payload RoleAlertPayload) error {
	id, err := q.enqueue(ctx, JobTypeRoleAlert, payload)
	if err != nil {
		return err
	}
	q.logger.Debug("enqueued role alert job", zap.String("job_id", id), zap.String("user_id", payload.UserID.String()))
	return nil
}

// Dequeue blocks until a job is available on any work queue or ctx is done.
// Returns the job and the queue key it came from.
func (q *Queue) Dequeue(ctx context.Context) (*Job, string, error) {
	result, err := q.client.BLPop(ctx, 0, QueueMedia, QueueEmails, QueueAlerts).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, "", nil
		}
		return nil, "", err
	}
	if len(result) < 2 {
		return nil, "", nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, "", nil
	}
	return &job, result[0], nil
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries,
// pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, keyForType(job.Type), raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}
