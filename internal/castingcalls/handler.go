package castingcalls

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/projects"
	"github.com/castlane/backend/internal/studios"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles casting call HTTP endpoints.
type Handler struct {
	repo     *Repository
	projects *projects.Repository
	studios  *studios.Repository
}

// NewHandler creates a casting calls handler.
func NewHandler(repo *Repository, projectsRepo *projects.Repository, studiosRepo *studios.Repository) *Handler {
	return &Handler{repo: repo, projects: projectsRepo, studios: studiosRepo}
}

func (h *Handler) memberOfProject(c *gin.Context, projectID uuid.UUID) bool {
	p, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		response.NotFound(c, "project not found")
		return false
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ok, _ := h.studios.IsMember(c.Request.Context(), p.StudioID, userID)
	if !ok {
		response.Forbidden(c, "not a member of this studio")
		return false
	}
	return true
}

func cleanSkills(names []string) []string {
	cleaned := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	return cleaned
}

// CreateRequest is the body for POST /projects/:id/casting-calls.
type CreateRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Status       string     `json:"status"` // optional, defaults to draft
	LocationID   *uuid.UUID `json:"location_id"`
	Compensation string     `json:"compensation"`
	AuditionDate *time.Time `json:"audition_date"`
	Skills       []string   `json:"skills"`
}

// Create handles POST /projects/:id/casting-calls.
func (h *Handler) Create(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if !h.memberOfProject(c, projectID) {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	status := models.CastingCallStatusDraft
	if req.Status != "" {
		if !models.ValidCastingCallStatus(req.Status) {
			response.BadRequest(c, "invalid status")
			return
		}
		status = models.CastingCallStatus(req.Status)
	}
	cc := &models.CastingCall{
		ProjectID:    projectID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       status,
		LocationID:   req.LocationID,
		Compensation: req.Compensation,
		AuditionDate: req.AuditionDate,
		CreatedBy:    c.MustGet(middleware.ContextUserID).(uuid.UUID),
	}
	if cc.Title == "" {
		response.BadRequest(c, "title required")
		return
	}
	if err := h.repo.Create(c.Request.Context(), cc, cleanSkills(req.Skills)); err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			response.BadRequest(c, "unknown location")
			return
		}
		response.Internal(c, "failed to create casting call")
		return
	}
	response.Created(c, cc)
}

// ListByProject handles GET /projects/:id/casting-calls. Studio members see
// every status here; talent only ever sees open calls via GetOpen.
func (h *Handler) ListByProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if !h.memberOfProject(c, projectID) {
		return
	}
	list, err := h.repo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		response.Internal(c, "failed to list casting calls")
		return
	}
	if list == nil {
		list = []*models.CastingCall{}
	}
	response.OK(c, list)
}

// GetOpen handles GET /casting-calls/:id on the public surface. Non-open
// calls 404 so drafts stay invisible, and each successful read bumps the
// view counter.
func (h *Handler) GetOpen(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid casting call id")
		return
	}
	cc, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || cc.Status != models.CastingCallStatusOpen {
		response.NotFound(c, "casting call not found")
		return
	}
	if n, err := h.repo.IncrementViews(c.Request.Context(), id); err == nil {
		cc.Views = n
	}
	response.OK(c, cc)
}

// Update handles PATCH /casting-calls/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid casting call id")
		return
	}
	cc, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "casting call not found")
		return
	}
	if !h.memberOfProject(c, cc.ProjectID) {
		return
	}
	var req struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		LocationID   *uuid.UUID `json:"location_id"`
		Compensation *string    `json:"compensation"`
		AuditionDate *time.Time `json:"audition_date"`
		Skills       *[]string  `json:"skills"`
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
		cc.Title = t
	}
	if req.Description != nil {
		cc.Description = *req.Description
	}
	if req.LocationID != nil {
		cc.LocationID = req.LocationID
	}
	if req.Compensation != nil {
		cc.Compensation = *req.Compensation
	}
	if req.AuditionDate != nil {
		cc.AuditionDate = req.AuditionDate
	}
	if err := h.repo.Update(c.Request.Context(), cc); err != nil {
		if strings.Contains(err.Error(), "foreign key") {
			response.BadRequest(c, "unknown location")
			return
		}
		response.Internal(c, "failed to update casting call")
		return
	}
	if req.Skills != nil {
		skills, err := h.repo.ReplaceSkills(c.Request.Context(), cc.ID, cleanSkills(*req.Skills))
		if err != nil {
			response.Internal(c, "failed to update skills")
			return
		}
		cc.Skills = skills
	}
	response.OK(c, cc)
}

// StatusRequest is the body for POST /casting-calls/:id/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles POST /casting-calls/:id/status. Calls move between
// open, closed and filled; they never return to draft.
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid casting call id")
		return
	}
	cc, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "casting call not found")
		return
	}
	if !h.memberOfProject(c, cc.ProjectID) {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	target := models.CastingCallStatus(req.Status)
	if !models.ValidCastingCallStatus(req.Status) || target == models.CastingCallStatusDraft {
		response.BadRequest(c, "invalid status")
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), id, target); err != nil {
		response.Internal(c, "failed to update status")
		return
	}
	cc.Status = target
	response.OK(c, cc)
}
