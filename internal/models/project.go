package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project. Completed and cancelled
// projects (and archived ones, regardless of status) are excluded from role
// suggestion candidacy.
type ProjectStatus string

const (
	ProjectStatusDraft        ProjectStatus = "draft"
	ProjectStatusCasting      ProjectStatus = "casting"
	ProjectStatusInProduction ProjectStatus = "in_production"
	ProjectStatusCompleted    ProjectStatus = "completed"
	ProjectStatusCancelled    ProjectStatus = "cancelled"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch ProjectStatus(s) {
	case ProjectStatusDraft, ProjectStatusCasting, ProjectStatusInProduction,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Project is a studio-owned production containing talent requirements and
// casting calls.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	StudioID    uuid.UUID     `json:"studio_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	IsArchived  bool          `json:"is_archived"`
	CreatedBy   uuid.UUID     `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ProjectDetail is a project with aggregate counts for studio listings.
type ProjectDetail struct {
	Project
	RequirementCount int `json:"requirement_count"`
	CastingCallCount int `json:"casting_call_count"`
}
