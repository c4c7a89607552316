package notifications

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo     *Repository
	enqueuer *Enqueuer
}

// NewHandler creates a notifications handler.
func NewHandler(repo *Repository, enqueuer *Enqueuer) *Handler {
	return &Handler{repo: repo, enqueuer: enqueuer}
}

// List handles GET /notifications/emails. Returns the caller's email logs.
// Admins may pass ?user_id= to inspect another user's logs.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role := c.MustGet(middleware.ContextUserRole).(string)
	if q := c.Query("user_id"); q != "" {
		if role != string(models.RoleAdmin) {
			response.Forbidden(c, "admin role required to query other users")
			return
		}
		other, err := uuid.Parse(q)
		if err != nil {
			response.BadRequest(c, "invalid user_id")
			return
		}
		userID = other
	}
	list, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	if list == nil {
		list = []*models.EmailLog{}
	}
	response.OK(c, list)
}

// Resend handles POST /admin/emails/:id/resend. Re-enqueues a failed email.
func (h *Handler) Resend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid email log id")
		return
	}
	el, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "email log not found")
		return
	}
	if el.Status != models.EmailStatusFailed {
		response.BadRequest(c, "only failed emails can be resent")
		return
	}
	if err := h.enqueuer.Resend(c.Request.Context(), el); err != nil {
		response.Internal(c, "failed to resend email")
		return
	}
	response.OK(c, gin.H{"resent": true, "email_log_id": el.ID})
}
