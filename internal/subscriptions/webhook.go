package subscriptions

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/internal/notifications"
	"github.com/castlane/backend/pkg/response"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Billing-Signature"

// Billing event types the webhook applies.
const (
	EventInvoicePaid          = "invoice.paid"
	EventInvoicePaymentFailed = "invoice.payment_failed"
	EventSubscriptionCanceled = "subscription.canceled"
)

type billingEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SubscriptionID string     `json:"subscription_id"`
		PaymentID      string     `json:"payment_id"`
		AmountCents    int        `json:"amount_cents"`
		Currency       string     `json:"currency"`
		PeriodEnd      *time.Time `json:"period_end"`
	} `json:"data"`
}

// webhookStore is the slice of Repository the webhook needs; tests fake it.
type webhookStore interface {
	GetByProviderID(ctx context.Context, providerID string) (*models.RegionSubscription, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string, periodEnd *time.Time) error
	CreatePayment(ctx context.Context, p *models.Payment) error
	UserEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

// receiptEnqueuer queues the subscription_receipt email after a paid invoice.
type receiptEnqueuer interface {
	Enqueue(ctx context.Context, userID *uuid.UUID, recipient, emailType, subject, body string) (*models.EmailLog, error)
}

// WebhookHandler applies billing provider events. Checkout and charging live
// at the provider; this is the only write path billing state flows through.
type WebhookHandler struct {
	store       webhookStore
	receipts    receiptEnqueuer
	invalidator SuggestionInvalidator
	secret      string
	logger      *zap.Logger
}

// NewWebhookHandler creates the billing webhook handler.
func NewWebhookHandler(repo *Repository, emails *notifications.Enqueuer, invalidator SuggestionInvalidator, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{store: repo, receipts: emails, invalidator: invalidator, secret: secret, logger: logger}
}

// verifySignature checks the hex HMAC-SHA256 of body against the header value.
func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Handle processes POST /webhooks/billing.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}
	if !h.verifySignature(body, c.GetHeader(SignatureHeader)) {
		response.Unauthorized(c, "invalid signature")
		return
	}

	var event billingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		response.BadRequest(c, "invalid event payload")
		return
	}

	if err := h.apply(c.Request.Context(), &event); err != nil {
		h.logger.Error("billing event failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		response.Internal(c, "failed to apply event")
		return
	}
	response.OK(c, gin.H{"received": true})
}

// apply maps an event to a subscription transition. Unknown subscription ids
// and unknown event types are acknowledged so the provider stops retrying.
func (h *WebhookHandler) apply(ctx context.Context, event *billingEvent) error {
	sub, err := h.store.GetByProviderID(ctx, event.Data.SubscriptionID)
	if err != nil {
		h.logger.Warn("billing event for unknown subscription",
			zap.String("event_type", event.Type),
			zap.String("provider_subscription_id", event.Data.SubscriptionID))
		return nil
	}

	switch event.Type {
	case EventInvoicePaid:
		if err := h.store.SetStatus(ctx, sub.ID, models.SubscriptionStatusActive, event.Data.PeriodEnd); err != nil {
			return fmt.Errorf("activate subscription: %w", err)
		}
		payment := &models.Payment{
			SubscriptionID:    sub.ID,
			ProviderPaymentID: event.Data.PaymentID,
			AmountCents:       event.Data.AmountCents,
			Currency:          event.Data.Currency,
			Status:            models.PaymentStatusCompleted,
		}
		if err := h.store.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		h.sendReceipt(ctx, sub, payment)
	case EventInvoicePaymentFailed:
		if err := h.store.SetStatus(ctx, sub.ID, models.SubscriptionStatusPastDue, nil); err != nil {
			return fmt.Errorf("mark past_due: %w", err)
		}
	case EventSubscriptionCanceled:
		if err := h.store.SetStatus(ctx, sub.ID, models.SubscriptionStatusCanceled, nil); err != nil {
			return fmt.Errorf("mark canceled: %w", err)
		}
	default:
		h.logger.Info("ignoring billing event", zap.String("event_type", event.Type))
		return nil
	}

	h.invalidator.Invalidate(ctx, sub.UserID)
	return nil
}

// sendReceipt queues the receipt email. Failure is logged, not returned; the
// payment is already applied.
func (h *WebhookHandler) sendReceipt(ctx context.Context, sub *models.RegionSubscription, payment *models.Payment) {
	email, err := h.store.UserEmail(ctx, sub.UserID)
	if err != nil {
		h.logger.Warn("receipt skipped, no user email", zap.String("user_id", sub.UserID.String()), zap.Error(err))
		return
	}
	subject := "Your subscription payment receipt"
	body := fmt.Sprintf("We received your payment of %d %s for your region subscription. Thank you!",
		payment.AmountCents, payment.Currency)
	if _, err := h.receipts.Enqueue(ctx, &sub.UserID, email, models.EmailTypeSubscriptionReceipt, subject, body); err != nil {
		h.logger.Warn("receipt enqueue failed", zap.String("user_id", sub.UserID.String()), zap.Error(err))
	}
}
