package models

import (
	"github.com/google/uuid"
)

// RoleType discriminates the two kinds of suggested roles. The values are
// part of the API contract consumed by the apps.
const (
	RoleTypeRequirement = "requirement"
	RoleTypeCastingCall = "castingCall"
)

// RegionRef is an id/name pair used in suggestion response metadata.
type RegionRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// LocationRef is an id/name pair attached to suggested roles.
type LocationRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SuggestedRole is one ranked entry in the role suggestion response. Exactly
// one of Requirement or CastingCall is set, matching Type. Derived, never
// persisted.
type SuggestedRole struct {
	Type         string             `json:"type"`
	RoleID       uuid.UUID          `json:"role_id"`
	ProjectID    uuid.UUID          `json:"project_id"`
	ProjectTitle string             `json:"project_title"`
	StudioID     uuid.UUID          `json:"studio_id"`
	StudioName   string             `json:"studio_name"`
	MatchScore   int                `json:"match_score"`
	MatchReasons []string           `json:"match_reasons"`
	Requirement  *TalentRequirement `json:"requirement,omitempty"`
	CastingCall  *CastingCall       `json:"casting_call,omitempty"`
	Locations    []LocationRef      `json:"locations"`
}

// RoleSuggestions is the full response of the suggestion engine. When the
// talent has no entitled regions, SuggestedRoles is empty and Message
// explains why; that case is not an error.
type RoleSuggestions struct {
	SuggestedRoles    []SuggestedRole `json:"suggested_roles"`
	SubscribedRegions []RegionRef     `json:"subscribed_regions"`
	Message           string          `json:"message,omitempty"`
}
