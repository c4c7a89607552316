package projects

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/studios"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles project HTTP endpoints.
type Handler struct {
	repo    *Repository
	studios *studios.Repository
}

// NewHandler creates a projects handler.
func NewHandler(repo *Repository, studiosRepo *studios.Repository) *Handler {
	return &Handler{repo: repo, studios: studiosRepo}
}

// requireProjectAccess loads the project and asserts the caller is a member
// of its studio. Writes the error response itself; callers return on nil.
func (h *Handler) requireProjectAccess(c *gin.Context, projectID uuid.UUID) *models.Project {
	p, err := h.repo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		response.NotFound(c, "project not found")
		return nil
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, _ := h.studios.IsMember(c.Request.Context(), p.StudioID, userID)
	if !ok {
		response.Forbidden(c, "not a member of this studio")
		return nil
	}
	return p
}

// CreateRequest is the body for POST /studios/:id/projects.
type CreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"` // optional, defaults to draft
}

// Create handles POST /studios/:id/projects. Runs under RequireStudioAccess.
func (h *Handler) Create(c *gin.Context) {
	studioID := c.MustGet(studios.ContextStudioID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	status := models.ProjectStatusDraft
	if req.Status != "" {
		if !models.ValidProjectStatus(req.Status) {
			response.BadRequest(c, "invalid status")
			return
		}
		status = models.ProjectStatus(req.Status)
	}
	p := &models.Project{
		StudioID:    studioID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      status,
		CreatedBy:   userID,
	}
	if p.Title == "" {
		response.BadRequest(c, "title required")
		return
	}
	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to create project")
		return
	}
	response.Created(c, p)
}

// ListByStudio handles GET /studios/:id/projects. Runs under RequireStudioAccess.
// Query ?archived=1 includes archived projects.
func (h *Handler) ListByStudio(c *gin.Context) {
	studioID := c.MustGet(studios.ContextStudioID).(uuid.UUID)
	list, err := h.repo.ListByStudio(c.Request.Context(), studioID, c.Query("archived") == "1")
	if err != nil {
		response.Internal(c, "failed to list projects")
		return
	}
	if list == nil {
		list = []models.ProjectDetail{}
	}
	response.OK(c, list)
}

// Get handles GET /projects/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if h.requireProjectAccess(c, id) == nil {
		return
	}
	d, err := h.repo.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "project not found")
		return
	}
	response.OK(c, d)
}

// Update handles PATCH /projects/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	p := h.requireProjectAccess(c, id)
	if p == nil {
		return
	}
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			response.BadRequest(c, "title must not be empty")
			return
		}
		p.Title = t
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidProjectStatus(*req.Status) {
			response.BadRequest(c, "invalid status")
			return
		}
		p.Status = models.ProjectStatus(*req.Status)
	}
	if err := h.repo.Update(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to update project")
		return
	}
	response.OK(c, p)
}

// ArchiveRequest is the body for POST /projects/:id/archive.
type ArchiveRequest struct {
	Archived *bool `json:"archived"` // optional, defaults to true
}

// Archive handles POST /projects/:id/archive. Archived projects are hidden
// from suggestion candidacy and default listings but keep their data.
func (h *Handler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	p := h.requireProjectAccess(c, id)
	if p == nil {
		return
	}
	var req ArchiveRequest
	_ = c.ShouldBindJSON(&req)
	archived := true
	if req.Archived != nil {
		archived = *req.Archived
	}
	if err := h.repo.SetArchived(c.Request.Context(), id, archived); err != nil {
		response.Internal(c, "failed to archive project")
		return
	}
	p.IsArchived = archived
	response.OK(c, p)
}
