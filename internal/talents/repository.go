package talents

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/models"
)

// Repository handles talent profile and skill persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a talents repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `tp.id, tp.user_id, u.full_name, COALESCE(tp.gender,''), COALESCE(tp.ethnicity,''),
	tp.height_cm, tp.date_of_birth, tp.bio, tp.headshot_url, tp.created_at, tp.updated_at`

func (r *Repository) getProfile(ctx context.Context, where string, arg any) (*models.TalentProfile, error) {
	var p models.TalentProfile
	err := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM talent_profiles tp JOIN users u ON u.id = tp.user_id WHERE `+where, arg).
		Scan(&p.ID, &p.UserID, &p.FullName, &p.Gender, &p.Ethnicity, &p.HeightCM, &p.DateOfBirth,
			&p.Bio, &p.HeadshotURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Skills, err = r.skillsFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserID returns the profile for a user, with skills attached.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.TalentProfile, error) {
	return r.getProfile(ctx, "tp.user_id = $1", userID)
}

// GetByID returns a profile by its own id, with skills attached.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.TalentProfile, error) {
	return r.getProfile(ctx, "tp.id = $1", id)
}

func (r *Repository) skillsFor(ctx context.Context, talentID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name FROM talent_skills WHERE talent_id = $1 ORDER BY name`, talentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	skills := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// Update writes the mutable profile fields for a user.
func (r *Repository) Update(ctx context.Context, p *models.TalentProfile) error {
	const q = `UPDATE talent_profiles SET
			gender = NULLIF($2,''), ethnicity = NULLIF($3,''), height_cm = $4,
			date_of_birth = $5, bio = $6, headshot_url = $7, updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, updated_at`
	return r.pool.QueryRow(ctx, q, p.UserID, p.Gender, p.Ethnicity, p.HeightCM,
		p.DateOfBirth, p.Bio, p.HeadshotURL).Scan(&p.ID, &p.UpdatedAt)
}

// ReplaceSkills swaps the profile's skill list. Duplicate names collapse
// case-insensitively, first spelling wins.
func (r *Repository) ReplaceSkills(ctx context.Context, talentID uuid.UUID, names []string) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `DELETE FROM talent_skills WHERE talent_id = $1`, talentID); err != nil {
		return nil, err
	}
	kept := []string{}
	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[strings.ToLower(n)] {
			continue
		}
		seen[strings.ToLower(n)] = true
		if _, err := tx.Exec(ctx,
			`INSERT INTO talent_skills (talent_id, name) VALUES ($1, $2)`, talentID, n); err != nil {
			return nil, err
		}
		kept = append(kept, n)
	}
	return kept, tx.Commit(ctx)
}

// SearchFilters are the studio-side talent search criteria. All optional.
type SearchFilters struct {
	Gender string
	Skill  string
	AgeMin *int
	AgeMax *int
}

// Search returns talent summaries matching the filters, capped at 100.
func (r *Repository) Search(ctx context.Context, f SearchFilters) ([]models.TalentSummary, error) {
	q := `SELECT tp.id, tp.user_id, u.full_name, COALESCE(tp.gender,''),
			COALESCE(tp.ethnicity,''), tp.headshot_url
		FROM talent_profiles tp
		JOIN users u ON u.id = tp.user_id`
	var conds []string
	var args []any
	if f.Gender != "" {
		args = append(args, f.Gender)
		conds = append(conds, fmt.Sprintf("LOWER(tp.gender) = LOWER($%d)", len(args)))
	}
	if f.Skill != "" {
		args = append(args, "%"+f.Skill+"%")
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM talent_skills ts WHERE ts.talent_id = tp.id AND ts.name ILIKE $%d)", len(args)))
	}
	if f.AgeMin != nil {
		args = append(args, *f.AgeMin)
		conds = append(conds, fmt.Sprintf(
			"tp.date_of_birth IS NOT NULL AND date_part('year', age(tp.date_of_birth)) >= $%d", len(args)))
	}
	if f.AgeMax != nil {
		args = append(args, *f.AgeMax)
		conds = append(conds, fmt.Sprintf(
			"tp.date_of_birth IS NOT NULL AND date_part('year', age(tp.date_of_birth)) <= $%d", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY u.full_name, tp.id LIMIT 100"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.TalentSummary
	byID := make(map[uuid.UUID]int)
	for rows.Next() {
		var s models.TalentSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.FullName, &s.Gender, &s.Ethnicity, &s.HeadshotURL); err != nil {
			return nil, err
		}
		s.Skills = []string{}
		byID[s.ID] = len(list)
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, 0, len(list))
	for id := range byID {
		ids = append(ids, id.String())
	}
	skillRows, err := r.pool.Query(ctx,
		`SELECT talent_id, name FROM talent_skills WHERE talent_id = ANY($1::uuid[]) ORDER BY name`, ids)
	if err != nil {
		return nil, err
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var talentID uuid.UUID
		var name string
		if err := skillRows.Scan(&talentID, &name); err != nil {
			return nil, err
		}
		if i, ok := byID[talentID]; ok {
			list[i].Skills = append(list[i].Skills, name)
		}
	}
	return list, skillRows.Err()
}
