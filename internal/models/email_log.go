package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType classifies outbound emails.
const (
	EmailTypeRoleAlert           = "role_alert"
	EmailTypeMessageNotification = "message_notification"
	EmailTypeApplicationUpdate   = "application_update"
	EmailTypeSubscriptionReceipt = "subscription_receipt"
)

// EmailStatus tracks delivery of a queued email.
const (
	EmailStatusQueued = "queued"
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog records one outbound email attempt.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Body           string     `json:"body,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
