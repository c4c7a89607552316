package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles region_subscriptions and payments persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a subscriptions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a subscription row.
func (r *Repository) Create(ctx context.Context, sub *models.RegionSubscription) error {
	const q = `INSERT INTO region_subscriptions (user_id, plan_id, status, provider_subscription_id, current_period_end)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, sub.UserID, sub.PlanID, sub.Status, sub.ProviderSubscriptionID, sub.CurrentPeriodEnd).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

// GetByID returns a subscription by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.RegionSubscription, error) {
	const q = `SELECT id, user_id, plan_id, status, provider_subscription_id, current_period_end, created_at, updated_at
		FROM region_subscriptions WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

// GetByProviderID returns a subscription by the billing provider's id.
func (r *Repository) GetByProviderID(ctx context.Context, providerID string) (*models.RegionSubscription, error) {
	const q = `SELECT id, user_id, plan_id, status, provider_subscription_id, current_period_end, created_at, updated_at
		FROM region_subscriptions WHERE provider_subscription_id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, providerID))
}

// GetLiveForPlan returns the user's trialing/active subscription for a plan, if any.
func (r *Repository) GetLiveForPlan(ctx context.Context, userID, planID uuid.UUID) (*models.RegionSubscription, error) {
	const q = `SELECT id, user_id, plan_id, status, provider_subscription_id, current_period_end, created_at, updated_at
		FROM region_subscriptions
		WHERE user_id = $1 AND plan_id = $2 AND status IN ('trialing', 'active')`
	return r.scanOne(r.pool.QueryRow(ctx, q, userID, planID))
}

type row interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOne(rw row) (*models.RegionSubscription, error) {
	var sub models.RegionSubscription
	err := rw.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.ProviderSubscriptionID,
		&sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListForUser returns the user's subscriptions with plan and region names, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.RegionSubscriptionDetail, error) {
	const q = `SELECT s.id, s.user_id, s.plan_id, s.status, s.provider_subscription_id, s.current_period_end,
			s.created_at, s.updated_at,
			p.name, p.region_id, reg.name, p.price_cents, p.currency, p.interval
		FROM region_subscriptions s
		INNER JOIN region_plans p ON p.id = s.plan_id
		INNER JOIN regions reg ON reg.id = p.region_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.RegionSubscriptionDetail
	for rows.Next() {
		var d models.RegionSubscriptionDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.PlanID, &d.Status, &d.ProviderSubscriptionID, &d.CurrentPeriodEnd,
			&d.CreatedAt, &d.UpdatedAt,
			&d.PlanName, &d.RegionID, &d.RegionName, &d.PriceCents, &d.Currency, &d.Interval); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// SetStatus transitions a subscription, optionally advancing the period end.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string, periodEnd *time.Time) error {
	if periodEnd != nil {
		_, err := r.pool.Exec(ctx, `UPDATE region_subscriptions
			SET status = $2, current_period_end = $3, updated_at = NOW() WHERE id = $1`, id, status, periodEnd)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE region_subscriptions
		SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

// CreatePayment records a payment against a subscription.
func (r *Repository) CreatePayment(ctx context.Context, p *models.Payment) error {
	const q = `INSERT INTO payments (subscription_id, provider_payment_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, p.SubscriptionID, p.ProviderPaymentID, p.AmountCents, p.Currency, p.Status).
		Scan(&p.ID, &p.CreatedAt)
}

// UserEmail resolves the owning user's email for receipt sends.
func (r *Repository) UserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	return email, err
}

// ListSubscribedUserIDs returns distinct users holding a trialing/active
// subscription. The role-alert sweep iterates this set.
func (r *Repository) ListSubscribedUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM region_subscriptions
		WHERE status IN ('trialing', 'active')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
