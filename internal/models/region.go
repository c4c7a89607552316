package models

import (
	"time"

	"github.com/google/uuid"
)

// Region is a named geographic grouping that owns locations and is sold
// through region plans.
type Region struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Locations []Location `json:"locations,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Location is a concrete place casting calls are held at. A location belongs
// to at most one region.
type Location struct {
	ID        uuid.UUID  `json:"id"`
	RegionID  *uuid.UUID `json:"region_id,omitempty"`
	Name      string     `json:"name"`
	City      string     `json:"city,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// PlanInterval is the billing period of a region plan.
const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// RegionPlan is a purchasable subscription plan scoped to one region.
type RegionPlan struct {
	ID         uuid.UUID `json:"id"`
	RegionID   uuid.UUID `json:"region_id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Currency   string    `json:"currency"`
	Interval   string    `json:"interval"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
