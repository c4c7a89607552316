package reviews

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/applications"
	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/studios"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles application review HTTP endpoints.
type Handler struct {
	repo    *Repository
	apps    *applications.Repository
	studios *studios.Repository
}

// NewHandler creates a reviews handler.
func NewHandler(repo *Repository, appsRepo *applications.Repository, studiosRepo *studios.Repository) *Handler {
	return &Handler{repo: repo, apps: appsRepo, studios: studiosRepo}
}

// ReviewRequest is the body for POST /applications/:id/reviews.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// Create handles POST /applications/:id/reviews. Reviewing the same
// application twice overwrites the reviewer's earlier rating.
func (h *Handler) Create(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	d, err := h.apps.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "application not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if ok, _ := h.studios.IsMember(c.Request.Context(), d.StudioID, userID); !ok {
		response.Forbidden(c, "not a member of this studio")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "rating must be between 1 and 5")
		return
	}
	rev := &models.ApplicationReview{
		ApplicationID: id,
		ReviewerID:    userID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}
	if err := h.repo.Upsert(c.Request.Context(), rev); err != nil {
		response.Internal(c, "failed to save review")
		return
	}
	response.Created(c, rev)
}

// ListForApplication handles GET /applications/:id/reviews.
func (h *Handler) ListForApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	d, err := h.apps.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "application not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if ok, _ := h.studios.IsMember(c.Request.Context(), d.StudioID, userID); !ok {
		response.Forbidden(c, "not a member of this studio")
		return
	}
	list, err := h.repo.ListForApplication(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list reviews")
		return
	}
	if list == nil {
		list = []models.ApplicationReview{}
	}
	response.OK(c, list)
}

// SummariesForCall handles GET /casting-calls/:id/reviews.
func (h *Handler) SummariesForCall(c *gin.Context) {
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid casting call id")
		return
	}
	studioID, err := h.apps.StudioIDForCall(c.Request.Context(), callID)
	if err != nil {
		response.NotFound(c, "casting call not found")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if ok, _ := h.studios.IsMember(c.Request.Context(), studioID, userID); !ok {
		response.Forbidden(c, "not a member of this studio")
		return
	}
	list, err := h.repo.SummariesForCall(c.Request.Context(), callID)
	if err != nil {
		response.Internal(c, "failed to load review summaries")
		return
	}
	if list == nil {
		list = []models.ReviewSummary{}
	}
	response.OK(c, list)
}
