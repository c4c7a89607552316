package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/media"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/notifications"
	"github.com/castlane/backend/internal/subscriptions"
	"github.com/castlane/backend/internal/suggestions"
	"github.com/castlane/backend/pkg/queue"
	"github.com/castlane/backend/pkg/storage"
)

// maxAlertRoles caps how many roles one digest email lists.
const maxAlertRoles = 10

// Sender delivers one email. Satisfied by mailer.Mailer.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Processor drains the background queues: media ingests, outbound emails and
// role alert digests.
type Processor struct {
	queue    *queue.Queue
	media    *media.Repository
	emails   *notifications.Repository
	mailer   Sender
	s3       *storage.S3
	engine   *suggestions.Engine
	subs     *subscriptions.Repository
	enqueuer *notifications.Enqueuer
	alertMin int
	logger   *zap.Logger
}

// NewProcessor creates a processor for all worker job types.
func NewProcessor(
	q *queue.Queue,
	mediaRepo *media.Repository,
	emailRepo *notifications.Repository,
	mailer Sender,
	s3 *storage.S3,
	engine *suggestions.Engine,
	subs *subscriptions.Repository,
	enqueuer *notifications.Enqueuer,
	alertMinScore int,
	logger *zap.Logger,
) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		queue:    q,
		media:    mediaRepo,
		emails:   emailRepo,
		mailer:   mailer,
		s3:       s3,
		engine:   engine,
		subs:     subs,
		enqueuer: enqueuer,
		alertMin: alertMinScore,
		logger:   logger,
	}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeMediaIngest:
		return p.processMediaIngest(ctx, job)
	case queue.JobTypeEmail:
		return p.processEmail(ctx, job)
	case queue.JobTypeRoleAlert:
		return p.processRoleAlert(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// processMediaIngest copies an external file into the media bucket and marks
// the pending row ready. Unusable sources (wrong type, too large) are marked
// failed without retrying.
func (p *Processor) processMediaIngest(ctx context.Context, job *queue.Job) error {
	var payload queue.MediaIngestPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	item, err := p.media.GetByID(ctx, payload.MediaID)
	if err != nil || item == nil {
		return fmt.Errorf("media item not found: %s", payload.MediaID)
	}
	if item.Status == models.MediaStatusReady {
		p.logger.Info("media already ingested", zap.String("media_id", item.ID.String()))
		return nil
	}

	// The key and fallback content type derive from the source path, not the
	// raw URL, so query strings never leak into the extension.
	srcPath := payload.SourceURL
	if u, err := url.Parse(payload.SourceURL); err == nil {
		srcPath = u.Path
	}

	// Download from source (streaming)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, payload.SourceURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		p.markIngestFailed(ctx, payload.MediaID)
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		p.markIngestFailed(ctx, payload.MediaID)
		return fmt.Errorf("download status: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(srcPath)
	}
	if !storage.ValidateMediaType(item.Kind, contentType, srcPath) {
		p.markIngestFailed(ctx, payload.MediaID)
		p.logger.Warn("media source type rejected",
			zap.String("media_id", item.ID.String()),
			zap.String("content_type", contentType))
		return nil
	}
	maxSize := int64(storage.MaxImageFileSize)
	if item.Kind == models.MediaKindReel {
		maxSize = storage.MaxReelFileSize
	}
	if resp.ContentLength > maxSize {
		p.markIngestFailed(ctx, payload.MediaID)
		p.logger.Warn("media source too large",
			zap.String("media_id", item.ID.String()),
			zap.Int64("size_bytes", resp.ContentLength))
		return nil
	}

	key := storage.MediaKey(item.Kind, payload.TalentID.String(), payload.MediaID.String(), srcPath)

	// Stream upload to S3 (no full buffer)
	s3URL, err := p.s3.Upload(ctx, p.s3.MediaBucket(), key, contentType, resp.Body, resp.ContentLength, false)
	if err != nil {
		p.markIngestFailed(ctx, payload.MediaID)
		return fmt.Errorf("s3 upload: %w", err)
	}

	if err := p.media.MarkReady(ctx, payload.MediaID, key, s3URL, contentType, resp.ContentLength); err != nil {
		p.logger.Error("mark media ready failed", zap.Error(err), zap.String("media_id", payload.MediaID.String()))
		return fmt.Errorf("update db: %w", err)
	}

	p.logger.Info("media ingest completed",
		zap.String("media_id", payload.MediaID.String()),
		zap.String("s3_key", key))
	return nil
}

// markIngestFailed records the failure on the row. A later retry that
// succeeds flips the row back to ready.
func (p *Processor) markIngestFailed(ctx context.Context, mediaID uuid.UUID) {
	if err := p.media.MarkFailed(ctx, mediaID); err != nil {
		p.logger.Error("mark media failed", zap.Error(err), zap.String("media_id", mediaID.String()))
	}
}

// processEmail delivers one queued email and transitions its email_logs row.
func (p *Processor) processEmail(ctx context.Context, job *queue.Job) error {
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := p.mailer.Send(ctx, payload.RecipientEmail, payload.Subject, payload.Body); err != nil {
		if mErr := p.emails.MarkFailed(ctx, payload.EmailLogID, err.Error()); mErr != nil {
			p.logger.Error("mark email failed", zap.Error(mErr), zap.String("email_log_id", payload.EmailLogID.String()))
		}
		return fmt.Errorf("send: %w", err)
	}

	if err := p.emails.MarkSent(ctx, payload.EmailLogID); err != nil {
		// The mail already left; retrying the job would send it twice.
		p.logger.Error("mark email sent failed", zap.Error(err), zap.String("email_log_id", payload.EmailLogID.String()))
	}
	return nil
}

// processRoleAlert runs the suggestion engine for one talent and queues a
// digest email when anything scores at or above the alert threshold.
func (p *Processor) processRoleAlert(ctx context.Context, job *queue.Job) error {
	var payload queue.RoleAlertPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	out, err := p.engine.Suggest(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, suggestions.ErrProfileNotFound) {
			// Subscribed but never completed a talent profile. Nothing to score.
			p.logger.Info("role alert skipped: no talent profile", zap.String("user_id", payload.UserID.String()))
			return nil
		}
		return fmt.Errorf("suggest: %w", err)
	}

	var hits []models.SuggestedRole
	for _, role := range out.SuggestedRoles {
		if role.MatchScore >= p.alertMin {
			hits = append(hits, role)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	email, err := p.subs.UserEmail(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("lookup recipient: %w", err)
	}

	subject, body := digestEmail(hits)
	if _, err := p.enqueuer.Enqueue(ctx, &payload.UserID, email, models.EmailTypeRoleAlert, subject, body); err != nil {
		return fmt.Errorf("enqueue digest: %w", err)
	}
	p.logger.Info("role alert digest queued",
		zap.String("user_id", payload.UserID.String()),
		zap.Int("roles", len(hits)))
	return nil
}

// digestEmail renders the alert subject and plain-text body. Roles arrive
// ranked; only the top maxAlertRoles are listed.
func digestEmail(hits []models.SuggestedRole) (subject, body string) {
	if len(hits) > maxAlertRoles {
		hits = hits[:maxAlertRoles]
	}
	subject = fmt.Sprintf("%d roles match your profile", len(hits))
	if len(hits) == 1 {
		subject = "A role matches your profile"
	}
	var b strings.Builder
	b.WriteString("Hi,\n\nNew roles in your subscribed regions match your profile:\n\n")
	for _, role := range hits {
		fmt.Fprintf(&b, "  - %s in %s by %s (match score %d)\n",
			roleName(&role), role.ProjectTitle, role.StudioName, role.MatchScore)
	}
	b.WriteString("\nLog in to CastLane to view details and apply.\n")
	return subject, b.String()
}

func roleName(role *models.SuggestedRole) string {
	switch {
	case role.CastingCall != nil:
		return role.CastingCall.Title
	case role.Requirement != nil:
		return role.Requirement.RoleName
	}
	return "Untitled role"
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}

// RunAlertSweep periodically enqueues a role alert job for every user with a
// live region subscription. The first sweep runs one interval after start so
// restarts do not re-mail everyone.
func (p *Processor) RunAlertSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("alert sweep stopping")
			return
		case <-ticker.C:
		}

		if err := p.sweep(ctx); err != nil {
			p.logger.Error("role alert sweep failed", zap.Error(err))
		}
	}
}

func (p *Processor) sweep(ctx context.Context) error {
	userIDs, err := p.subs.ListSubscribedUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list subscribed users: %w", err)
	}
	for _, id := range userIDs {
		if err := p.queue.EnqueueRoleAlert(ctx, queue.RoleAlertPayload{UserID: id}); err != nil {
			return fmt.Errorf("enqueue role alert: %w", err)
		}
	}
	p.logger.Info("role alert sweep enqueued", zap.Int("users", len(userIDs)))
	return nil
}
