package subscriptions

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/models"
)

const testSecret = "whsec_test"

type fakeStore struct {
	sub      *models.RegionSubscription
	statuses []string
	periods  []*time.Time
	payments []*models.Payment
	email    string
	setErr   error
}

func (f *fakeStore) GetByProviderID(_ context.Context, providerID string) (*models.RegionSubscription, error) {
	if f.sub == nil || f.sub.ProviderSubscriptionID != providerID {
		return nil, errors.New("no rows")
	}
	return f.sub, nil
}

func (f *fakeStore) SetStatus(_ context.Context, _ uuid.UUID, status string, periodEnd *time.Time) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.statuses = append(f.statuses, status)
	f.periods = append(f.periods, periodEnd)
	return nil
}

func (f *fakeStore) CreatePayment(_ context.Context, p *models.Payment) error {
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeStore) UserEmail(_ context.Context, _ uuid.UUID) (string, error) {
	if f.email == "" {
		return "", errors.New("no rows")
	}
	return f.email, nil
}

type fakeReceipts struct {
	sent []models.EmailLog
}

func (f *fakeReceipts) Enqueue(_ context.Context, userID *uuid.UUID, recipient, emailType, subject, body string) (*models.EmailLog, error) {
	el := models.EmailLog{UserID: userID, RecipientEmail: recipient, EmailType: emailType, Subject: subject, Body: body}
	f.sent = append(f.sent, el)
	return &el, nil
}

type fakeInvalidator struct {
	users []uuid.UUID
}

func (f *fakeInvalidator) Invalidate(_ context.Context, userID uuid.UUID) {
	f.users = append(f.users, userID)
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newWebhookEnv(sub *models.RegionSubscription) (*WebhookHandler, *fakeStore, *fakeReceipts, *fakeInvalidator) {
	store := &fakeStore{sub: sub, email: "talent@example.com"}
	receipts := &fakeReceipts{}
	inv := &fakeInvalidator{}
	h := &WebhookHandler{
		store:       store,
		receipts:    receipts,
		invalidator: inv,
		secret:      testSecret,
		logger:      zap.NewNop(),
	}
	return h, store, receipts, inv
}

func post(h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/billing", bytes.NewReader(body))
	if signature != "" {
		c.Request.Header.Set(SignatureHeader, signature)
	}
	h.Handle(c)
	return w
}

func testSubscription() *models.RegionSubscription {
	return &models.RegionSubscription{
		ID:                     uuid.New(),
		UserID:                 uuid.New(),
		PlanID:                 uuid.New(),
		Status:                 models.SubscriptionStatusTrialing,
		ProviderSubscriptionID: "sub_123",
	}
}

func eventBody(eventType, providerID string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","type":"%s","data":{"subscription_id":"%s","payment_id":"pay_1","amount_cents":2900,"currency":"usd"}}`, eventType, providerID))
}

func TestWebhook_SignatureValidation(t *testing.T) {
	sub := testSubscription()
	body := eventBody(EventInvoicePaid, sub.ProviderSubscriptionID)

	tests := []struct {
		name      string
		signature string
	}{
		{"missing signature", ""},
		{"wrong signature", "deadbeef"},
		{"signature of different body", sign([]byte(`{}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, _, inv := newWebhookEnv(sub)
			w := post(h, body, tt.signature)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, store.statuses)
			assert.Empty(t, inv.users)
		})
	}
}

func TestWebhook_InvoicePaid(t *testing.T) {
	sub := testSubscription()
	h, store, receipts, inv := newWebhookEnv(sub)
	body := eventBody(EventInvoicePaid, sub.ProviderSubscriptionID)

	w := post(h, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{models.SubscriptionStatusActive}, store.statuses)
	require.Len(t, store.payments, 1)
	assert.Equal(t, sub.ID, store.payments[0].SubscriptionID)
	assert.Equal(t, "pay_1", store.payments[0].ProviderPaymentID)
	assert.Equal(t, 2900, store.payments[0].AmountCents)
	assert.Equal(t, models.PaymentStatusCompleted, store.payments[0].Status)
	require.Len(t, receipts.sent, 1)
	assert.Equal(t, models.EmailTypeSubscriptionReceipt, receipts.sent[0].EmailType)
	assert.Equal(t, "talent@example.com", receipts.sent[0].RecipientEmail)
	assert.Equal(t, []uuid.UUID{sub.UserID}, inv.users)
}

func TestWebhook_InvoicePaid_PeriodEnd(t *testing.T) {
	sub := testSubscription()
	h, store, _, _ := newWebhookEnv(sub)
	body := []byte(fmt.Sprintf(
		`{"type":"invoice.paid","data":{"subscription_id":"%s","period_end":"2026-09-25T00:00:00Z"}}`,
		sub.ProviderSubscriptionID))

	w := post(h, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.periods, 1)
	require.NotNil(t, store.periods[0])
	assert.Equal(t, 2026, store.periods[0].Year())
	assert.Equal(t, time.September, store.periods[0].Month())
}

func TestWebhook_TransitionMapping(t *testing.T) {
	tests := []struct {
		name       string
		eventType  string
		wantStatus string
	}{
		{"payment failed", EventInvoicePaymentFailed, models.SubscriptionStatusPastDue},
		{"canceled", EventSubscriptionCanceled, models.SubscriptionStatusCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testSubscription()
			h, store, receipts, inv := newWebhookEnv(sub)
			body := eventBody(tt.eventType, sub.ProviderSubscriptionID)

			w := post(h, body, sign(body))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, []string{tt.wantStatus}, store.statuses)
			assert.Empty(t, store.payments)
			assert.Empty(t, receipts.sent)
			assert.Equal(t, []uuid.UUID{sub.UserID}, inv.users)
		})
	}
}

func TestWebhook_UnknownSubscriptionAcknowledged(t *testing.T) {
	h, store, _, inv := newWebhookEnv(testSubscription())
	body := eventBody(EventInvoicePaid, "sub_does_not_exist")

	w := post(h, body, sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.statuses)
	assert.Empty(t, inv.users)
}

func TestWebhook_UnknownEventTypeIgnored(t *testing.T) {
	sub := testSubscription()
	h, store, _, inv := newWebhookEnv(sub)
	body := eventBody("customer.updated", sub.ProviderSubscriptionID)

	w := post(h, body, sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.statuses)
	assert.Empty(t, inv.users)
}

func TestWebhook_MalformedBody(t *testing.T) {
	h, _, _, _ := newWebhookEnv(testSubscription())
	body := []byte(`{not json`)

	w := post(h, body, sign(body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_StoreFailure(t *testing.T) {
	sub := testSubscription()
	h, store, _, inv := newWebhookEnv(sub)
	store.setErr = errors.New("db down")
	body := eventBody(EventInvoicePaid, sub.ProviderSubscriptionID)

	w := post(h, body, sign(body))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, inv.users)
}

func TestEntitlesRoles(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{models.SubscriptionStatusTrialing, true},
		{models.SubscriptionStatusActive, true},
		{models.SubscriptionStatusPastDue, false},
		{models.SubscriptionStatusCanceled, false},
		{models.SubscriptionStatusIncomplete, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			sub := models.RegionSubscription{Status: tt.status}
			assert.Equal(t, tt.want, sub.EntitlesRoles())
		})
	}
}
