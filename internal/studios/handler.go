package studios

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/response"
	"github.com/castlane/backend/pkg/utils"
)

// Slug must be lowercase alphanumeric and hyphens only, 2–64 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// Handler handles studio HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a studios handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateStudioRequest is the body for POST /studios.
type CreateStudioRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// UpdateStudioRequest is the body for PUT /studios/:id.
type UpdateStudioRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// AddMemberRequest is the body for POST /studios/:id/members.
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"` // optional, defaults to member
}

// Create handles POST /studios. Creates a studio and adds the current user as owner.
func (h *Handler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body CreateStudioRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and slug required")
		return
	}
	body.Slug = strings.ToLower(strings.TrimSpace(body.Slug))
	if !slugRegex.MatchString(body.Slug) {
		response.BadRequest(c, "slug must be 2–64 chars, lowercase letters, numbers, hyphens only")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1–255 characters")
		return
	}
	studio := &models.Studio{
		Name:        body.Name,
		Slug:        body.Slug,
		Description: strings.TrimSpace(body.Description),
		Website:     strings.TrimSpace(body.Website),
	}
	if err := h.repo.Create(c.Request.Context(), studio); err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			response.Conflict(c, "A studio with this slug already exists")
			return
		}
		response.Internal(c, "failed to create studio")
		return
	}
	if err := h.repo.AddMember(c.Request.Context(), studio.ID, userID, models.StudioRoleOwner); err != nil {
		response.Internal(c, "failed to add you as owner")
		return
	}
	response.Created(c, studio)
}

// Get handles GET /studios/:id. Requires membership (enforced by RequireStudioAccess).
func (h *Handler) Get(c *gin.Context) {
	studioID := c.MustGet(ContextStudioID).(uuid.UUID)
	studio, err := h.repo.GetByID(c.Request.Context(), studioID)
	if err != nil {
		response.NotFound(c, "studio not found")
		return
	}
	response.OK(c, studio)
}

// Update handles PUT /studios/:id. Owner or manager only.
func (h *Handler) Update(c *gin.Context) {
	studioID := c.MustGet(ContextStudioID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, _ := h.repo.CanManage(c.Request.Context(), studioID, userID)
	if !ok {
		response.Forbidden(c, "owner or manager role required")
		return
	}
	var body UpdateStudioRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1–255 characters")
		return
	}
	studio, err := h.repo.GetByID(c.Request.Context(), studioID)
	if err != nil {
		response.NotFound(c, "studio not found")
		return
	}
	studio.Name = body.Name
	studio.Description = strings.TrimSpace(body.Description)
	studio.Website = strings.TrimSpace(body.Website)
	if err := h.repo.Update(c.Request.Context(), studio); err != nil {
		response.Internal(c, "failed to update studio")
		return
	}
	response.OK(c, studio)
}

// ListMine handles GET /studios. Returns studios the current user is a member of.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load studios")
		return
	}
	response.OK(c, list)
}

// AddMember handles POST /studios/:id/members. Owner or manager only.
func (h *Handler) AddMember(c *gin.Context) {
	studioID := c.MustGet(ContextStudioID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, _ := h.repo.CanManage(c.Request.Context(), studioID, userID)
	if !ok {
		response.Forbidden(c, "owner or manager role required")
		return
	}
	var body AddMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email required")
		return
	}
	role := models.StudioRoleMember
	switch body.Role {
	case "", models.StudioRoleMember:
	case models.StudioRoleManager:
		role = models.StudioRoleManager
	case models.StudioRoleOwner:
		role = models.StudioRoleOwner
	default:
		response.BadRequest(c, "invalid role")
		return
	}
	memberID, err := h.repo.UserIDByEmail(c.Request.Context(), utils.NormalizeEmail(body.Email))
	if err != nil {
		response.NotFound(c, "no user with that email")
		return
	}
	if err := h.repo.AddMember(c.Request.Context(), studioID, memberID, role); err != nil {
		response.Internal(c, "failed to add member")
		return
	}
	response.OK(c, models.StudioMember{StudioID: studioID, UserID: memberID, Role: role})
}

// ListMembers handles GET /studios/:id/members.
func (h *Handler) ListMembers(c *gin.Context) {
	studioID := c.MustGet(ContextStudioID).(uuid.UUID)
	members, err := h.repo.ListMembers(c.Request.Context(), studioID)
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}
