package studios

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/pkg/response"
)

// ContextStudioID is the context key for the resolved studio ID on studio-scoped routes.
const ContextStudioID = "studio_id"

// RequireStudioAccess validates that the current user is a member of the studio
// in the :id param. Call after JWT. Sets ContextStudioID on success.
func RequireStudioAccess(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		studioID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid studio id")
			c.Abort()
			return
		}
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		ok, _ := repo.IsMember(c.Request.Context(), studioID, userID)
		if !ok {
			response.Forbidden(c, "not a member of this studio")
			c.Abort()
			return
		}
		c.Set(ContextStudioID, studioID)
		c.Next()
	}
}
