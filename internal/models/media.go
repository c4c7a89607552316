package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaKind classifies a portfolio item.
const (
	MediaKindHeadshot = "headshot"
	MediaKindPhoto    = "photo"
	MediaKindReel     = "reel"
)

// MediaStatus tracks the upload/ingest pipeline of a portfolio item.
const (
	MediaStatusPending = "pending"
	MediaStatusReady   = "ready"
	MediaStatusFailed  = "failed"
)

// MediaItem is one entry in a talent's portfolio. Items created from an
// external source URL stay pending until the worker copies them to S3.
type MediaItem struct {
	ID          uuid.UUID `json:"id"`
	TalentID    uuid.UUID `json:"talent_id"`
	Kind        string    `json:"kind"`
	S3Key       string    `json:"s3_key,omitempty"`
	URL         string    `json:"url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	Status      string    `json:"status"`
	SourceURL   string    `json:"source_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
