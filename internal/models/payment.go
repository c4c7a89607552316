package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus for subscription payments recorded from billing webhooks.
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment is one billing charge against a region subscription. The backend
// only records payments reported by the provider; it never charges directly.
type Payment struct {
	ID                uuid.UUID `json:"id"`
	SubscriptionID    uuid.UUID `json:"subscription_id"`
	ProviderPaymentID string    `json:"provider_payment_id,omitempty"`
	AmountCents       int       `json:"amount_cents"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
