package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationReview is one studio member's rating of an application.
// One review per reviewer per application; re-reviewing overwrites.
type ApplicationReview struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	ReviewerID    uuid.UUID `json:"reviewer_id"`
	ReviewerName  string    `json:"reviewer_name,omitempty"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReviewSummary aggregates the reviews of one application.
type ReviewSummary struct {
	ApplicationID uuid.UUID           `json:"application_id"`
	AverageRating float64             `json:"average_rating"`
	ReviewCount   int                 `json:"review_count"`
	Reviews       []ApplicationReview `json:"reviews"`
}
