package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageThread is a conversation between a studio and a talent user,
// optionally tied to a casting call.
type MessageThread struct {
	ID            uuid.UUID  `json:"id"`
	StudioID      uuid.UUID  `json:"studio_id"`
	TalentUserID  uuid.UUID  `json:"talent_user_id"`
	CastingCallID *uuid.UUID `json:"casting_call_id,omitempty"`
	Subject       string     `json:"subject"`
	StudioName    string     `json:"studio_name,omitempty"`
	TalentName    string     `json:"talent_name,omitempty"`
	UnreadCount   int        `json:"unread_count"`
	LastMessageAt time.Time  `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Message is one message inside a thread.
type Message struct {
	ID        uuid.UUID  `json:"id"`
	ThreadID  uuid.UUID  `json:"thread_id"`
	SenderID  uuid.UUID  `json:"sender_id"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
