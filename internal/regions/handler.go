package regions

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles region catalog HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a regions handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /regions. Public catalog of regions with locations.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load regions")
		return
	}
	if list == nil {
		list = []*models.Region{}
	}
	response.OK(c, list)
}

// Get handles GET /regions/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid region id")
		return
	}
	reg, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "region not found")
		return
	}
	response.OK(c, reg)
}

// ListPlans handles GET /regions/:id/plans. Public: active plans only.
func (h *Handler) ListPlans(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid region id")
		return
	}
	plans, err := h.repo.ListPlans(c.Request.Context(), id, false)
	if err != nil {
		response.Internal(c, "failed to load plans")
		return
	}
	if plans == nil {
		plans = []models.RegionPlan{}
	}
	response.OK(c, plans)
}

// CreateRegionRequest is the body for POST /admin/regions.
type CreateRegionRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create handles POST /admin/regions. Admin only.
func (h *Handler) Create(c *gin.Context) {
	var body CreateRegionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.BadRequest(c, "name required")
		return
	}
	reg := &models.Region{Name: name}
	if err := h.repo.Create(c.Request.Context(), reg); err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			response.Conflict(c, "A region with this name already exists")
			return
		}
		response.Internal(c, "failed to create region")
		return
	}
	response.Created(c, reg)
}

// Update handles PUT /admin/regions/:id. Admin only.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid region id")
		return
	}
	var body CreateRegionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	if err := h.repo.Rename(c.Request.Context(), id, strings.TrimSpace(body.Name)); err != nil {
		response.Internal(c, "failed to update region")
		return
	}
	reg, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "region not found")
		return
	}
	response.OK(c, reg)
}

// LocationRequest is the body for location create/update.
type LocationRequest struct {
	RegionID *uuid.UUID `json:"region_id"`
	Name     string     `json:"name" binding:"required"`
	City     string     `json:"city"`
}

// CreateLocation handles POST /admin/locations. Admin only.
func (h *Handler) CreateLocation(c *gin.Context) {
	var body LocationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	loc := &models.Location{RegionID: body.RegionID, Name: strings.TrimSpace(body.Name), City: strings.TrimSpace(body.City)}
	if err := h.repo.CreateLocation(c.Request.Context(), loc); err != nil {
		response.Internal(c, "failed to create location")
		return
	}
	response.Created(c, loc)
}

// UpdateLocation handles PUT /admin/locations/:id. Admin only.
func (h *Handler) UpdateLocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid location id")
		return
	}
	var body LocationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	loc := &models.Location{ID: id, RegionID: body.RegionID, Name: strings.TrimSpace(body.Name), City: strings.TrimSpace(body.City)}
	if err := h.repo.UpdateLocation(c.Request.Context(), loc); err != nil {
		response.Internal(c, "failed to update location")
		return
	}
	response.OK(c, loc)
}

// PlanRequest is the body for POST /admin/regions/:id/plans.
type PlanRequest struct {
	Name       string `json:"name" binding:"required"`
	PriceCents int    `json:"price_cents" binding:"required"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval"`
}

// CreatePlan handles POST /admin/regions/:id/plans. Admin only.
func (h *Handler) CreatePlan(c *gin.Context) {
	regionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid region id")
		return
	}
	var body PlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and price_cents required")
		return
	}
	if body.PriceCents < 0 {
		response.BadRequest(c, "price_cents must not be negative")
		return
	}
	interval := body.Interval
	switch interval {
	case "":
		interval = models.PlanIntervalMonth
	case models.PlanIntervalMonth, models.PlanIntervalYear:
	default:
		response.BadRequest(c, "interval must be month or year")
		return
	}
	currency := strings.ToLower(strings.TrimSpace(body.Currency))
	if currency == "" {
		currency = "usd"
	}
	plan := &models.RegionPlan{
		RegionID:   regionID,
		Name:       strings.TrimSpace(body.Name),
		PriceCents: body.PriceCents,
		Currency:   currency,
		Interval:   interval,
	}
	if err := h.repo.CreatePlan(c.Request.Context(), plan); err != nil {
		response.Internal(c, "failed to create plan")
		return
	}
	response.Created(c, plan)
}

// SetPlanActiveRequest is the body for PATCH /admin/plans/:id.
type SetPlanActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetPlanActive handles PATCH /admin/plans/:id. Admin only. Plans are
// deactivated rather than deleted.
func (h *Handler) SetPlanActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid plan id")
		return
	}
	var body SetPlanActiveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "active required")
		return
	}
	if err := h.repo.SetPlanActive(c.Request.Context(), id, *body.Active); err != nil {
		response.Internal(c, "failed to update plan")
		return
	}
	plan, err := h.repo.GetPlan(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "plan not found")
		return
	}
	response.OK(c, plan)
}
