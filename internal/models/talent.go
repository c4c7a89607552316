package models

import (
	"time"

	"github.com/google/uuid"
)

// TalentProfile holds the casting-relevant attributes of a talent user.
// Demographic fields are optional; nil/empty means "not provided".
type TalentProfile struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	FullName    string     `json:"full_name,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Ethnicity   string     `json:"ethnicity,omitempty"`
	HeightCM    *int       `json:"height_cm,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	HeadshotURL string     `json:"headshot_url,omitempty"`
	Skills      []string   `json:"skills"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TalentSummary is the reduced profile shown in studio-side search results.
type TalentSummary struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name"`
	Gender      string    `json:"gender,omitempty"`
	Ethnicity   string    `json:"ethnicity,omitempty"`
	HeadshotURL string    `json:"headshot_url,omitempty"`
	Skills      []string  `json:"skills"`
}
