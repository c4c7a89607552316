package models

import (
	"time"

	"github.com/google/uuid"
)

// CastingCallStatus is the lifecycle state of a casting call. Only open
// calls are visible to talent.
type CastingCallStatus string

const (
	CastingCallStatusDraft  CastingCallStatus = "draft"
	CastingCallStatusOpen   CastingCallStatus = "open"
	CastingCallStatusClosed CastingCallStatus = "closed"
	CastingCallStatusFilled CastingCallStatus = "filled"
)

// ValidCastingCallStatus reports whether s is a known casting call status.
func ValidCastingCallStatus(s string) bool {
	switch CastingCallStatus(s) {
	case CastingCallStatusDraft, CastingCallStatusOpen,
		CastingCallStatusClosed, CastingCallStatusFilled:
		return true
	}
	return false
}

// Skill is a catalog entry referenced by casting calls. Unlike requirement
// skills (free text), casting call skills are structured rows.
type Skill struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CastingCall is a role specification attached to a project, tied to an
// optional location. Skills and Location are attached on detail reads.
type CastingCall struct {
	ID           uuid.UUID         `json:"id"`
	ProjectID    uuid.UUID         `json:"project_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Status       CastingCallStatus `json:"status"`
	LocationID   *uuid.UUID        `json:"location_id,omitempty"`
	Compensation string            `json:"compensation,omitempty"`
	AuditionDate *time.Time        `json:"audition_date,omitempty"`
	Views        int               `json:"views"`
	CreatedBy    uuid.UUID         `json:"created_by"`
	Skills       []Skill           `json:"skills,omitempty"`
	Location     *Location         `json:"location,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
