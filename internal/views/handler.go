package views

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles profile view stats endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a views handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// MyStats handles GET /talents/me/views.
func (h *Handler) MyStats(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	talentID, err := h.repo.ProfileIDByUserID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "talent profile not found")
		return
	}
	stats, err := h.repo.StatsForTalent(c.Request.Context(), talentID)
	if err != nil {
		response.Internal(c, "failed to load view stats")
		return
	}
	response.OK(c, stats)
}
