package models

import (
	"time"

	"github.com/google/uuid"
)

// TalentRequirement is a role specification attached to a project. All
// matching criteria are optional; Skills is free-text, comma-separated.
// Requirements carry no location.
type TalentRequirement struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	RoleName    string    `json:"role_name"`
	Description string    `json:"description,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	AgeMin      *int      `json:"age_min,omitempty"`
	AgeMax      *int      `json:"age_max,omitempty"`
	Ethnicity   string    `json:"ethnicity,omitempty"`
	HeightRange string    `json:"height_range,omitempty"`
	Skills      string    `json:"skills,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
