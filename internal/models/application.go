package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus tracks a talent's application to a casting call.
const (
	ApplicationStatusSubmitted   = "submitted"
	ApplicationStatusShortlisted = "shortlisted"
	ApplicationStatusRejected    = "rejected"
	ApplicationStatusWithdrawn   = "withdrawn"
)

// Application is one talent's application to a casting call. One row per
// (casting call, talent); re-applying after a withdrawal reuses the row.
type Application struct {
	ID            uuid.UUID `json:"id"`
	CastingCallID uuid.UUID `json:"casting_call_id"`
	TalentID      uuid.UUID `json:"talent_id"`
	Note          string    `json:"note,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ApplicationDetail is an application joined with talent identity for the
// studio review surface. The unexported-style fields carry routing context
// for access checks and notifications without appearing in responses.
type ApplicationDetail struct {
	Application
	TalentUserID uuid.UUID `json:"talent_user_id"`
	TalentName   string    `json:"talent_name"`
	HeadshotURL  string    `json:"headshot_url,omitempty"`
	TalentEmail  string    `json:"-"`
	ProjectID    uuid.UUID `json:"-"`
	StudioID     uuid.UUID `json:"-"`
	CallTitle    string    `json:"-"`
}

// ApplicationWithCall is an application joined with its call and project
// titles for the talent's own listing.
type ApplicationWithCall struct {
	Application
	CallTitle    string            `json:"call_title"`
	CallStatus   CastingCallStatus `json:"call_status"`
	ProjectTitle string            `json:"project_title"`
}
