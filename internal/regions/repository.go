package regions

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles region, location and plan persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a regions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all regions with their locations nested.
func (r *Repository) List(ctx context.Context) ([]*models.Region, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM regions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Region
	byID := make(map[uuid.UUID]*models.Region)
	for rows.Next() {
		var reg models.Region
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &reg)
		byID[reg.ID] = &reg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	locRows, err := r.pool.Query(ctx, `SELECT id, region_id, name, city, created_at
		FROM locations WHERE region_id IS NOT NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer locRows.Close()
	for locRows.Next() {
		var loc models.Location
		if err := locRows.Scan(&loc.ID, &loc.RegionID, &loc.Name, &loc.City, &loc.CreatedAt); err != nil {
			return nil, err
		}
		if reg, ok := byID[*loc.RegionID]; ok {
			reg.Locations = append(reg.Locations, loc)
		}
	}
	return list, locRows.Err()
}

// GetByID returns a region with its locations.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Region, error) {
	const q = `SELECT id, name, created_at FROM regions WHERE id = $1`
	var reg models.Region
	if err := r.pool.QueryRow(ctx, q, id).Scan(&reg.ID, &reg.Name, &reg.CreatedAt); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, region_id, name, city, created_at
		FROM locations WHERE region_id = $1 ORDER BY name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.RegionID, &loc.Name, &loc.City, &loc.CreatedAt); err != nil {
			return nil, err
		}
		reg.Locations = append(reg.Locations, loc)
	}
	return &reg, rows.Err()
}

// Create creates a region.
func (r *Repository) Create(ctx context.Context, reg *models.Region) error {
	const q = `INSERT INTO regions (name) VALUES ($1) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, reg.Name).Scan(&reg.ID, &reg.CreatedAt)
}

// Rename updates a region's name.
func (r *Repository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.pool.Exec(ctx, `UPDATE regions SET name = $2 WHERE id = $1`, id, name)
	return err
}

// CreateLocation creates a location, optionally attached to a region.
func (r *Repository) CreateLocation(ctx context.Context, loc *models.Location) error {
	const q = `INSERT INTO locations (region_id, name, city) VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, loc.RegionID, loc.Name, loc.City).Scan(&loc.ID, &loc.CreatedAt)
}

// UpdateLocation updates a location's name, city and region assignment.
func (r *Repository) UpdateLocation(ctx context.Context, loc *models.Location) error {
	const q = `UPDATE locations SET region_id = $2, name = $3, city = $4 WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, loc.ID, loc.RegionID, loc.Name, loc.City)
	return err
}

// ListPlans returns a region's plans, active only unless includeInactive.
func (r *Repository) ListPlans(ctx context.Context, regionID uuid.UUID, includeInactive bool) ([]models.RegionPlan, error) {
	q := `SELECT id, region_id, name, price_cents, currency, interval, active, created_at, updated_at
		FROM region_plans WHERE region_id = $1`
	if !includeInactive {
		q += ` AND active = TRUE`
	}
	q += ` ORDER BY price_cents`
	rows, err := r.pool.Query(ctx, q, regionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.RegionPlan
	for rows.Next() {
		var p models.RegionPlan
		if err := rows.Scan(&p.ID, &p.RegionID, &p.Name, &p.PriceCents, &p.Currency, &p.Interval,
			&p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetPlan returns a plan by ID.
func (r *Repository) GetPlan(ctx context.Context, id uuid.UUID) (*models.RegionPlan, error) {
	const q = `SELECT id, region_id, name, price_cents, currency, interval, active, created_at, updated_at
		FROM region_plans WHERE id = $1`
	var p models.RegionPlan
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.RegionID, &p.Name, &p.PriceCents, &p.Currency,
		&p.Interval, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlan creates a region plan.
func (r *Repository) CreatePlan(ctx context.Context, p *models.RegionPlan) error {
	const q = `INSERT INTO region_plans (region_id, name, price_cents, currency, interval)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, active, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.RegionID, p.Name, p.PriceCents, p.Currency, p.Interval).
		Scan(&p.ID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
}

// SetPlanActive activates or deactivates a plan. Plans are never deleted so
// historical subscriptions keep their reference.
func (r *Repository) SetPlanActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE region_plans SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	return err
}
