package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skycast/backend/internal/domain"
)

// BadgeRepository implements domain.BadgeRepository on PostgreSQL.
type BadgeRepository struct {
	pool *pgxpool.Pool
}

// NewBadgeRepository creates a new PostgreSQL badge repository
func NewBadgeRepository(pool *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{pool: pool}
}

// AllBadges returns every badge definition.
func (r *BadgeRepository) AllBadges(ctx context.Context) ([]domain.Badge, error) {
	query := `
		SELECT id, name, icon, description, tier, requirement_type, requirement_value
		FROM badges
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query badges: %w", err)
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Icon, &b.Description, &b.Tier, &b.RequirementType, &b.RequirementValue); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan badge row: %w", err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: badge rows: %w", err)
	}
	return badges, nil
}

// UnlockedIDsForUser returns the set of badge IDs the user holds.
func (r *BadgeRepository) UnlockedIDsForUser(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query user badges: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan user badge row: %w", err)
		}
		unlocked[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: user badge rows: %w", err)
	}
	return unlocked, nil
}

// Grant records a badge unlock. The unique (user_id, badge_id)
// constraint makes duplicate grants a no-op insert, reported as
// ErrAlreadyGranted.
func (r *BadgeRepository) Grant(ctx context.Context, userID, badgeID string, unlockedAt time.Time) error {
	query := `
		INSERT INTO user_badges (id, user_id, badge_id, unlocked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, uuid.NewString(), userID, badgeID, unlockedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to grant badge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: badge %s for user %s: %w", badgeID, userID, domain.ErrAlreadyGranted)
	}
	return nil
}

// BadgesForUser returns the full badge definitions a user holds.
func (r *BadgeRepository) BadgesForUser(ctx context.Context, userID string) ([]domain.Badge, error) {
	query := `
		SELECT b.id, b.name, b.icon, b.description, b.tier, b.requirement_type, b.requirement_value
		FROM badges b
		JOIN user_badges ub ON ub.badge_id = b.id
		WHERE ub.user_id = $1
		ORDER BY ub.unlocked_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query badges for user: %w", err)
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var b domain.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Icon, &b.Description, &b.Tier, &b.RequirementType, &b.RequirementValue); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan badge row: %w", err)
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: badge rows: %w", err)
	}
	return badges, nil
}
