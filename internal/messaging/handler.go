package messaging

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/notifications"
	"github.com/castlane/backend/internal/realtime"
	"github.com/castlane/backend/internal/studios"
	"github.com/castlane/backend/pkg/response"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
	snippetLen      = 160
)

// Handler handles messaging HTTP endpoints.
type Handler struct {
	repo    *Repository
	studios *studios.Repository
	emails  *notifications.Enqueuer
	hub     *realtime.Hub
	logger  *zap.Logger
}

// NewHandler creates a messaging handler.
func NewHandler(repo *Repository, studiosRepo *studios.Repository, emails *notifications.Enqueuer,
	hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, studios: studiosRepo, emails: emails, hub: hub, logger: logger}
}

// OpenThreadRequest is the body for POST /messages/threads. Studio members
// name the talent; talent users open against a studio as themselves.
type OpenThreadRequest struct {
	StudioID      uuid.UUID  `json:"studio_id" binding:"required"`
	TalentUserID  *uuid.UUID `json:"talent_user_id"`
	CastingCallID *uuid.UUID `json:"casting_call_id"`
	Subject       string     `json:"subject"`
	Body          string     `json:"body"`
}

// OpenThread handles POST /messages/threads. Opening the same (studio,
// talent, call) again returns the existing thread without resending the
// initial message.
func (h *Handler) OpenThread(c *gin.Context) {
	var req OpenThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	isMember, _ := h.studios.IsMember(c.Request.Context(), req.StudioID, userID)

	var talentUserID uuid.UUID
	if isMember {
		if req.TalentUserID == nil {
			response.BadRequest(c, "talent_user_id required")
			return
		}
		talentUserID = *req.TalentUserID
		if talentUserID == userID {
			response.BadRequest(c, "cannot open a thread with yourself")
			return
		}
	} else {
		if req.TalentUserID != nil && *req.TalentUserID != userID {
			response.Forbidden(c, "not a member of this studio")
			return
		}
		talentUserID = userID
	}

	t := &models.MessageThread{
		StudioID:      req.StudioID,
		TalentUserID:  talentUserID,
		CastingCallID: req.CastingCallID,
		Subject:       strings.TrimSpace(req.Subject),
	}
	created, err := h.repo.GetOrCreateThread(c.Request.Context(), t)
	if err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			response.BadRequest(c, "unknown studio, talent or casting call")
			return
		}
		response.Internal(c, "failed to open thread")
		return
	}
	if created {
		if body := strings.TrimSpace(req.Body); body != "" {
			if _, err := h.send(c, t, userID, body); err != nil {
				response.Internal(c, "failed to send message")
				return
			}
		}
		response.Created(c, t)
		return
	}
	response.OK(c, t)
}

// ListThreads handles GET /messages/threads.
func (h *Handler) ListThreads(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list threads")
		return
	}
	if list == nil {
		list = []models.MessageThread{}
	}
	response.OK(c, list)
}

func (h *Handler) accessThread(c *gin.Context) (uuid.UUID, bool) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid thread id")
		return uuid.Nil, false
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, err := h.repo.CanAccess(c.Request.Context(), threadID, userID)
	if err != nil || !ok {
		response.NotFound(c, "thread not found")
		return uuid.Nil, false
	}
	return threadID, true
}

// ListMessages handles GET /messages/threads/:id/messages. Pages backwards
// with ?before=<RFC3339> and ?limit=, newest first.
func (h *Handler) ListMessages(c *gin.Context) {
	threadID, ok := h.accessThread(c)
	if !ok {
		return
	}
	var before *time.Time
	if v := c.Query("before"); v != "" {
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			response.BadRequest(c, "before must be an RFC3339 timestamp")
			return
		}
		before = &ts
	}
	limit := defaultPageSize
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}
	list, err := h.repo.ListMessages(c.Request.Context(), threadID, before, limit)
	if err != nil {
		response.Internal(c, "failed to list messages")
		return
	}
	if list == nil {
		list = []models.Message{}
	}
	response.OK(c, list)
}

// SendRequest is the body for POST /messages/threads/:id/messages.
type SendRequest struct {
	Body string `json:"body" binding:"required"`
}

// Send handles POST /messages/threads/:id/messages.
func (h *Handler) Send(c *gin.Context) {
	threadID, ok := h.accessThread(c)
	if !ok {
		return
	}
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "body required")
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		response.BadRequest(c, "body required")
		return
	}
	t, err := h.repo.GetThread(c.Request.Context(), threadID)
	if err != nil {
		response.NotFound(c, "thread not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	m, err := h.send(c, t, userID, body)
	if err != nil {
		response.Internal(c, "failed to send message")
		return
	}
	response.Created(c, m)
}

// send persists the message and fans it out. Notification failures are
// logged, never surfaced to the sender.
func (h *Handler) send(c *gin.Context, t *models.MessageThread, senderID uuid.UUID, body string) (*models.Message, error) {
	m := &models.Message{ThreadID: t.ID, SenderID: senderID, Body: body}
	if err := h.repo.CreateMessage(c.Request.Context(), m); err != nil {
		return nil, err
	}

	senderName, err := h.repo.SenderName(c.Request.Context(), senderID)
	if err != nil {
		senderName = "A CastLane user"
	}
	recipients, err := h.repo.Recipients(c.Request.Context(), t, senderID)
	if err != nil {
		h.logger.Warn("failed to resolve message recipients",
			zap.String("thread_id", t.ID.String()), zap.Error(err))
		return m, nil
	}
	snippet := body
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen] + "..."
	}
	subject := fmt.Sprintf("New message from %s", senderName)
	for _, rec := range recipients {
		h.hub.Notify(rec.UserID, realtime.EventNewMessage, gin.H{
			"thread_id": t.ID,
			"message":   m,
		})
		// Counts this instance's connections only; a recipient connected
		// elsewhere still gets the email.
		if h.hub.ConnectedCount(rec.UserID) > 0 {
			continue
		}
		recUserID := rec.UserID
		emailBody := fmt.Sprintf("Hi %s,\n\n%s wrote:\n\n%s\n\nReply on CastLane.",
			rec.FullName, senderName, snippet)
		if _, err := h.emails.Enqueue(c.Request.Context(), &recUserID, rec.Email,
			models.EmailTypeMessageNotification, subject, emailBody); err != nil {
			h.logger.Warn("failed to enqueue message notification",
				zap.String("thread_id", t.ID.String()), zap.Error(err))
		}
	}
	return m, nil
}

// MarkRead handles POST /messages/threads/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	threadID, ok := h.accessThread(c)
	if !ok {
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	n, err := h.repo.MarkThreadRead(c.Request.Context(), threadID, userID)
	if err != nil {
		response.Internal(c, "failed to mark thread read")
		return
	}
	response.OK(c, gin.H{"marked_read": n})
}
