package applications

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/notifications"
	"github.com/castlane/backend/internal/realtime"
	"github.com/castlane/backend/internal/studios"
	"github.com/castlane/backend/internal/talents"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles application HTTP endpoints.
type Handler struct {
	repo    *Repository
	talents *talents.Repository
	studios *studios.Repository
	emails  *notifications.Enqueuer
	hub     *realtime.Hub
	logger  *zap.Logger
}

// NewHandler creates an applications handler.
func NewHandler(repo *Repository, talentsRepo *talents.Repository, studiosRepo *studios.Repository,
	emails *notifications.Enqueuer, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, talents: talentsRepo, studios: studiosRepo,
		emails: emails, hub: hub, logger: logger}
}

// ApplyRequest is the body for POST /casting-calls/:id/apply.
type ApplyRequest struct {
	Note string `json:"note"`
}

// Apply handles POST /casting-calls/:id/apply for talent users. Only open
// calls accept applications.
func (h *Handler) Apply(c *gin.Context) {
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid casting call id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	profile, err := h.talents.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "talent profile not found")
		return
	}
	status, err := h.repo.CallStatus(c.Request.Context(), callID)
	if err != nil {
		response.NotFound(c, "casting call not found")
		return
	}
	if status != models.CastingCallStatusOpen {
		response.Conflict(c, "casting call is not open")
		return
	}
	var req ApplyRequest
	_ = c.ShouldBindJSON(&req)
	a := &models.Application{
		CastingCallID: callID,
		TalentID:      profile.ID,
		Note:          req.Note,
	}
	if err := h.repo.Apply(c.Request.Context(), a); err != nil {
		if errors.Is(err, ErrAlreadyApplied) {
			response.Conflict(c, ErrAlreadyApplied.Error())
			return
		}
		response.Internal(c, "failed to submit application")
		return
	}
	response.Created(c, a)
}

// MyApplications handles GET /talents/me/applications.
func (h *Handler) MyApplications(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	profile, err := h.talents.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "talent profile not found")
		return
	}
	list, err := h.repo.ListForTalent(c.Request.Context(), profile.ID)
	if err != nil {
		response.Internal(c, "failed to list applications")
		return
	}
	if list == nil {
		list = []models.ApplicationWithCall{}
	}
	response.OK(c, list)
}

// Withdraw handles POST /applications/:id/withdraw. Withdrawing twice is a
// no-op.
func (h *Handler) Withdraw(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	d, err := h.repo.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "application not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if d.TalentUserID != userID {
		response.Forbidden(c, "not your application")
		return
	}
	if d.Status != models.ApplicationStatusWithdrawn {
		if err := h.repo.SetStatus(c.Request.Context(), id, models.ApplicationStatusWithdrawn); err != nil {
			response.Internal(c, "failed to withdraw application")
			return
		}
		d.Status = models.ApplicationStatusWithdrawn
	}
	response.OK(c, d.Application)
}

// ListForCall handles GET /casting-calls/:id/applications for studio
// members.
func (h *Handler) ListForCall(c *gin.Context) {
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid casting call id")
		return
	}
	studioID, err := h.repo.StudioIDForCall(c.Request.Context(), callID)
	if err != nil {
		response.NotFound(c, "casting call not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if ok, _ := h.studios.IsMember(c.Request.Context(), studioID, userID); !ok {
		response.Forbidden(c, "not a member of this studio")
		return
	}
	list, err := h.repo.ListForCall(c.Request.Context(), callID)
	if err != nil {
		response.Internal(c, "failed to list applications")
		return
	}
	if list == nil {
		list = []models.ApplicationDetail{}
	}
	counts, err := h.repo.CountByStatusForCall(c.Request.Context(), callID)
	if err != nil {
		response.Internal(c, "failed to count applications")
		return
	}
	response.OK(c, gin.H{"applications": list, "counts": counts})
}

// StatusRequest is the body for POST /applications/:id/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles POST /applications/:id/status. Studios move
// applications to shortlisted or rejected; the talent hears about it by
// email and over their realtime room.
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	d, err := h.repo.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "application not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if ok, _ := h.studios.IsMember(c.Request.Context(), d.StudioID, userID); !ok {
		response.Forbidden(c, "not a member of this studio")
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Status != models.ApplicationStatusShortlisted && req.Status != models.ApplicationStatusRejected {
		response.BadRequest(c, "status must be shortlisted or rejected")
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		response.Internal(c, "failed to update application")
		return
	}
	d.Status = req.Status
	h.notifyTalent(c, d)
	response.OK(c, d)
}

// notifyTalent fans the status change out to the talent. Neither the email
// nor the realtime event blocks the response.
func (h *Handler) notifyTalent(c *gin.Context, d *models.ApplicationDetail) {
	subject := fmt.Sprintf("Application update: %s", d.CallTitle)
	body := fmt.Sprintf("Hi %s,\n\nYour application for %q is now %s.\n\nThe CastLane Team",
		d.TalentName, d.CallTitle, d.Status)
	talentUserID := d.TalentUserID
	if _, err := h.emails.Enqueue(c.Request.Context(), &talentUserID, d.TalentEmail,
		models.EmailTypeApplicationUpdate, subject, body); err != nil {
		h.logger.Warn("failed to enqueue application update email",
			zap.String("application_id", d.ID.String()), zap.Error(err))
	}
	h.hub.Notify(d.TalentUserID, realtime.EventApplicationUpdate, gin.H{
		"application_id":  d.ID,
		"casting_call_id": d.CastingCallID,
		"call_title":      d.CallTitle,
		"status":          d.Status,
	})
}
