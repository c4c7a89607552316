package projects

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/response"
)

// RequirementRequest is the body for creating or updating a talent
// requirement. Skills is free text, comma-separated.
type RequirementRequest struct {
	RoleName    string `json:"role_name"`
	Description string `json:"description"`
	Gender      string `json:"gender"`
	AgeMin      *int   `json:"age_min"`
	AgeMax      *int   `json:"age_max"`
	Ethnicity   string `json:"ethnicity"`
	HeightRange string `json:"height_range"`
	Skills      string `json:"skills"`
}

func (r *RequirementRequest) validate() string {
	r.RoleName = strings.TrimSpace(r.RoleName)
	if r.RoleName == "" {
		return "role_name required"
	}
	if r.AgeMin != nil && *r.AgeMin < 0 {
		return "age_min must not be negative"
	}
	if r.AgeMax != nil && *r.AgeMax < 0 {
		return "age_max must not be negative"
	}
	if r.AgeMin != nil && r.AgeMax != nil && *r.AgeMin > *r.AgeMax {
		return "age_min must not exceed age_max"
	}
	return ""
}

// CreateRequirement handles POST /projects/:id/requirements.
func (h *Handler) CreateRequirement(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if h.requireProjectAccess(c, projectID) == nil {
		return
	}
	var req RequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	tr := &models.TalentRequirement{
		ProjectID:   projectID,
		RoleName:    req.RoleName,
		Description: req.Description,
		Gender:      req.Gender,
		AgeMin:      req.AgeMin,
		AgeMax:      req.AgeMax,
		Ethnicity:   req.Ethnicity,
		HeightRange: req.HeightRange,
		Skills:      req.Skills,
		IsActive:    true,
	}
	if err := h.repo.CreateRequirement(c.Request.Context(), tr); err != nil {
		response.Internal(c, "failed to create requirement")
		return
	}
	response.Created(c, tr)
}

// ListRequirements handles GET /projects/:id/requirements.
func (h *Handler) ListRequirements(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if h.requireProjectAccess(c, projectID) == nil {
		return
	}
	list, err := h.repo.ListRequirements(c.Request.Context(), projectID)
	if err != nil {
		response.Internal(c, "failed to list requirements")
		return
	}
	if list == nil {
		list = []models.TalentRequirement{}
	}
	response.OK(c, list)
}

// UpdateRequirement handles PATCH /requirements/:id. Deactivating a
// requirement removes it from suggestion candidacy without deleting it.
func (h *Handler) UpdateRequirement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid requirement id")
		return
	}
	tr, err := h.repo.GetRequirement(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "requirement not found")
		return
	}
	if h.requireProjectAccess(c, tr.ProjectID) == nil {
		return
	}
	// Absent fields keep their current value.
	req := struct {
		RequirementRequest
		IsActive *bool `json:"is_active"`
	}{
		RequirementRequest: RequirementRequest{
			RoleName:    tr.RoleName,
			Description: tr.Description,
			Gender:      tr.Gender,
			AgeMin:      tr.AgeMin,
			AgeMax:      tr.AgeMax,
			Ethnicity:   tr.Ethnicity,
			HeightRange: tr.HeightRange,
			Skills:      tr.Skills,
		},
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if msg := req.validate(); msg != "" {
		response.BadRequest(c, msg)
		return
	}
	tr.RoleName = req.RoleName
	tr.Description = req.Description
	tr.Gender = req.Gender
	tr.AgeMin = req.AgeMin
	tr.AgeMax = req.AgeMax
	tr.Ethnicity = req.Ethnicity
	tr.HeightRange = req.HeightRange
	tr.Skills = req.Skills
	if req.IsActive != nil {
		tr.IsActive = *req.IsActive
	}
	if err := h.repo.UpdateRequirement(c.Request.Context(), tr); err != nil {
		response.Internal(c, "failed to update requirement")
		return
	}
	response.OK(c, tr)
}

// DeleteRequirement handles DELETE /requirements/:id.
func (h *Handler) DeleteRequirement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid requirement id")
		return
	}
	tr, err := h.repo.GetRequirement(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "requirement not found")
		return
	}
	if h.requireProjectAccess(c, tr.ProjectID) == nil {
		return
	}
	if err := h.repo.DeleteRequirement(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete requirement")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}
