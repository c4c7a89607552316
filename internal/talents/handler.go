package talents

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/views"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles talent profile HTTP endpoints.
type Handler struct {
	repo   *Repository
	views  *views.Repository
	logger *zap.Logger
}

// NewHandler creates a talents handler.
func NewHandler(repo *Repository, viewsRepo *views.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, views: viewsRepo, logger: logger}
}

// Me handles GET /talents/me.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	p, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "talent profile not found")
		return
	}
	response.OK(c, p)
}

// UpdateMeRequest is the body for PATCH /talents/me. Absent fields keep
// their value; height_cm 0 and date_of_birth "" clear theirs.
type UpdateMeRequest struct {
	Gender      *string `json:"gender"`
	Ethnicity   *string `json:"ethnicity"`
	HeightCM    *int    `json:"height_cm"`
	DateOfBirth *string `json:"date_of_birth"` // YYYY-MM-DD
	Bio         *string `json:"bio"`
	HeadshotURL *string `json:"headshot_url"`
}

// UpdateMe handles PATCH /talents/me.
func (h *Handler) UpdateMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	p, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "talent profile not found")
		return
	}
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	if req.Gender != nil {
		p.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Ethnicity != nil {
		p.Ethnicity = strings.TrimSpace(*req.Ethnicity)
	}
	if req.HeightCM != nil {
		switch {
		case *req.HeightCM == 0:
			p.HeightCM = nil
		case *req.HeightCM < 30 || *req.HeightCM > 300:
			response.BadRequest(c, "height_cm out of range")
			return
		default:
			p.HeightCM = req.HeightCM
		}
	}
	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			p.DateOfBirth = nil
		} else {
			dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
			if err != nil {
				response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
				return
			}
			if !dob.Before(time.Now()) {
				response.BadRequest(c, "date_of_birth must be in the past")
				return
			}
			p.DateOfBirth = &dob
		}
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.HeadshotURL != nil {
		p.HeadshotURL = *req.HeadshotURL
	}
	if err := h.repo.Update(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to update profile")
		return
	}
	response.OK(c, p)
}

// SkillsRequest is the body for PUT /talents/me/skills.
type SkillsRequest struct {
	Skills []string `json:"skills"`
}

// ReplaceSkills handles PUT /talents/me/skills.
func (h *Handler) ReplaceSkills(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	p, err := h.repo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "talent profile not found")
		return
	}
	var req SkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	skills, err := h.repo.ReplaceSkills(c.Request.Context(), p.ID, req.Skills)
	if err != nil {
		response.Internal(c, "failed to update skills")
		return
	}
	p.Skills = skills
	response.OK(c, p)
}

// Search handles GET /talents for studio users.
func (h *Handler) Search(c *gin.Context) {
	f := SearchFilters{
		Gender: c.Query("gender"),
		Skill:  c.Query("skill"),
	}
	if v := c.Query("age_min"); v != "" {
		n, err := parseAge(v)
		if err != nil {
			response.BadRequest(c, "invalid age_min")
			return
		}
		f.AgeMin = &n
	}
	if v := c.Query("age_max"); v != "" {
		n, err := parseAge(v)
		if err != nil {
			response.BadRequest(c, "invalid age_max")
			return
		}
		f.AgeMax = &n
	}
	if f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax {
		response.BadRequest(c, "age_min must not exceed age_max")
		return
	}
	list, err := h.repo.Search(c.Request.Context(), f)
	if err != nil {
		response.Internal(c, "failed to search talents")
		return
	}
	if list == nil {
		list = []models.TalentSummary{}
	}
	response.OK(c, list)
}

// Get handles GET /talents/:id for studio users. Each fetch by someone
// other than the owner is recorded as a profile view; recording failures
// never block the response.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid talent id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "talent profile not found")
		return
	}
	viewerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if viewerID != p.UserID {
		if err := h.views.Record(c.Request.Context(), p.ID, viewerID); err != nil {
			h.logger.Warn("failed to record profile view",
				zap.String("talent_id", p.ID.String()), zap.Error(err))
		}
	}
	response.OK(c, p)
}

func parseAge(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 150 {
		return 0, fmt.Errorf("age out of range: %d", n)
	}
	return n, nil
}
