package models

import (
	"time"

	"github.com/google/uuid"
)

// StudioRole is a member's role within a studio.
const (
	StudioRoleOwner   = "owner"
	StudioRoleManager = "manager"
	StudioRoleMember  = "member"
)

// Studio is a production company account that owns projects and casting calls.
type Studio struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StudioMember links a user to a studio with a role.
type StudioMember struct {
	StudioID uuid.UUID `json:"studio_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	AddedAt  time.Time `json:"added_at"`
}

// StudioMemberDetail is a member joined with user identity for listings.
type StudioMemberDetail struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	AddedAt  time.Time `json:"added_at"`
}
