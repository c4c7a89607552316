package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileView records one studio-side view of a talent profile.
type ProfileView struct {
	ID       uuid.UUID `json:"id"`
	TalentID uuid.UUID `json:"talent_id"`
	ViewerID uuid.UUID `json:"viewer_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

// ProfileViewEntry is a view joined with the viewer identity for the talent
// stats surface.
type ProfileViewEntry struct {
	ViewerID   uuid.UUID `json:"viewer_id"`
	ViewerName string    `json:"viewer_name"`
	StudioName string    `json:"studio_name,omitempty"`
	ViewedAt   time.Time `json:"viewed_at"`
}

// ProfileViewStats summarizes profile views for a talent.
type ProfileViewStats struct {
	TotalViews  int                `json:"total_views"`
	Last30Days  int                `json:"last_30_days"`
	RecentViews []ProfileViewEntry `json:"recent_views"`
}
