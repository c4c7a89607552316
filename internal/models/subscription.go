package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus values mirror the billing provider's lifecycle. Only
// trialing and active confer region entitlement. Rows are never deleted;
// billing events transition the status instead.
const (
	SubscriptionStatusTrialing   = "trialing"
	SubscriptionStatusActive     = "active"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusIncomplete = "incomplete"
)

// RegionSubscription links a user to a region plan.
type RegionSubscription struct {
	ID                     uuid.UUID  `json:"id"`
	UserID                 uuid.UUID  `json:"user_id"`
	PlanID                 uuid.UUID  `json:"plan_id"`
	Status                 string     `json:"status"`
	ProviderSubscriptionID string     `json:"provider_subscription_id,omitempty"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// RegionSubscriptionDetail is a subscription joined with plan and region
// names for list responses. Entitled is computed per row from the status.
type RegionSubscriptionDetail struct {
	RegionSubscription
	PlanName   string    `json:"plan_name"`
	RegionID   uuid.UUID `json:"region_id"`
	RegionName string    `json:"region_name"`
	PriceCents int       `json:"price_cents"`
	Currency   string    `json:"currency"`
	Interval   string    `json:"interval"`
	Entitled   bool      `json:"entitled"`
}

// EntitlesRoles reports whether this subscription grants access to roles in
// its plan's region.
func (s *RegionSubscription) EntitlesRoles() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusTrialing
}
