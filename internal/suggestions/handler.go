package suggestions

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/pkg/response"
)

// Handler serves the talent-facing suggestion endpoint.
type Handler struct {
	cache  *Cache
	logger *zap.Logger
}

// NewHandler creates a suggestions handler.
func NewHandler(cache *Cache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{cache: cache, logger: logger}
}

// MySuggestions handles GET /talents/me/suggestions. ?refresh=1 bypasses
// the cache. Talents without a live subscription get a 200 with an advisory
// message, not an error.
func (h *Handler) MySuggestions(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	refresh := c.Query("refresh") == "1"

	out, err := h.cache.Suggest(c.Request.Context(), userID, refresh)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			response.NotFound(c, "talent profile not found")
			return
		}
		h.logger.Error("build role suggestions failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to build role suggestions")
		return
	}
	response.OK(c, out)
}
