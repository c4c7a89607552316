package subscriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/regions"
	"github.com/castlane/backend/pkg/response"
)

// SuggestionInvalidator drops a user's cached suggestions after an
// entitlement change so the next request reflects it immediately.
type SuggestionInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Handler handles subscription HTTP endpoints.
type Handler struct {
	repo        *Repository
	regions     *regions.Repository
	invalidator SuggestionInvalidator
	trialDays   int
	logger      *zap.Logger
}

// NewHandler creates a subscriptions handler.
func NewHandler(repo *Repository, regionsRepo *regions.Repository, invalidator SuggestionInvalidator, trialDays int, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, regions: regionsRepo, invalidator: invalidator, trialDays: trialDays, logger: logger}
}

// CheckoutRequest is the body for POST /subscriptions.
type CheckoutRequest struct {
	PlanID uuid.UUID `json:"plan_id" binding:"required"`
	// Provider subscription id from a completed provider checkout; a
	// placeholder is generated when absent (pure trial signup).
	ProviderSubscriptionID string `json:"provider_subscription_id"`
}

// Checkout handles POST /subscriptions. Starts a trialing subscription for a
// region plan. One live subscription per plan per user; a second checkout
// returns the existing one.
func (h *Handler) Checkout(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body CheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "plan_id required")
		return
	}

	plan, err := h.regions.GetPlan(c.Request.Context(), body.PlanID)
	if err != nil {
		response.NotFound(c, "plan not found")
		return
	}
	if !plan.Active {
		response.BadRequest(c, "plan is no longer offered")
		return
	}

	// Checkout is idempotent per plan: a live subscription is returned as-is.
	if existing, err := h.repo.GetLiveForPlan(c.Request.Context(), userID, plan.ID); err == nil {
		response.OK(c, existing)
		return
	}

	providerID := body.ProviderSubscriptionID
	if providerID == "" {
		providerID = fmt.Sprintf("sub_%s", uuid.New().String())
	}
	periodEnd := time.Now().AddDate(0, 0, h.trialDays)
	sub := &models.RegionSubscription{
		UserID:                 userID,
		PlanID:                 plan.ID,
		Status:                 models.SubscriptionStatusTrialing,
		ProviderSubscriptionID: providerID,
		CurrentPeriodEnd:       &periodEnd,
	}
	if err := h.repo.Create(c.Request.Context(), sub); err != nil {
		response.Internal(c, "failed to create subscription")
		return
	}
	h.invalidator.Invalidate(c.Request.Context(), userID)
	response.Created(c, sub)
}

// List handles GET /subscriptions. Returns the caller's subscriptions with
// plan and region names.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load subscriptions")
		return
	}
	if list == nil {
		list = []models.RegionSubscriptionDetail{}
	}
	for i := range list {
		list[i].Entitled = list[i].EntitlesRoles()
	}
	response.OK(c, list)
}

// Cancel handles DELETE /subscriptions/:id. Sets status to canceled; the row
// is kept for history.
func (h *Handler) Cancel(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid subscription id")
		return
	}
	sub, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "subscription not found")
		return
	}
	if sub.UserID != userID {
		response.Forbidden(c, "not your subscription")
		return
	}
	if sub.Status == models.SubscriptionStatusCanceled {
		response.OK(c, sub)
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), sub.ID, models.SubscriptionStatusCanceled, nil); err != nil {
		response.Internal(c, "failed to cancel subscription")
		return
	}
	sub.Status = models.SubscriptionStatusCanceled
	h.invalidator.Invalidate(c.Request.Context(), userID)
	h.logger.Info("subscription canceled",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("user_id", userID.String()))
	response.OK(c, sub)
}
