package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skycast/backend/internal/domain"
)

// UserRepository implements domain.UserRepository on PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	id, fid, username, display_name, avatar_url,
	points, streak, accuracy, rank, COALESCE(best_location, ''),
	created_at, updated_at
`

// GetByID fetches one user profile.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to fetch user: %w", err)
	}
	return user, nil
}

// GetByFid fetches one user profile by external social identity.
func (r *UserRepository) GetByFid(ctx context.Context, fid int64) (*domain.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE fid = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, fid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: user fid %d: %w", fid, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to fetch user: %w", err)
	}
	return user, nil
}

// ApplyReputation adds points and sets the recomputed streak and
// accuracy in one statement. The increment runs inside the database so
// concurrent scoring events cannot lose points.
func (r *UserRepository) ApplyReputation(ctx context.Context, userID string, pointsDelta int, newStreak int, newAccuracy float64) error {
	query := `
		UPDATE users
		SET points = points + $2, streak = $3, accuracy = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, userID, pointsDelta, newStreak, newAccuracy)
	if err != nil {
		return fmt.Errorf("postgres: failed to apply reputation update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: user %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

// ListForRanking returns every user ordered by points descending, ties
// broken by accuracy descending.
func (r *UserRepository) ListForRanking(ctx context.Context) ([]*domain.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY points DESC, accuracy DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list users for ranking: %w", err)
	}
	defer rows.Close()

	var results []*domain.UserProfile
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan user row: %w", err)
		}
		results = append(results, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: user rows: %w", err)
	}
	return results, nil
}

// PersistRanks writes the full set of rank assignments in one batch.
func (r *UserRepository) PersistRanks(ctx context.Context, assignments []domain.RankAssignment) error {
	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(`UPDATE users SET rank = $2 WHERE id = $1`, a.UserID, a.Rank)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range assignments {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("postgres: failed to persist ranks: %w", err)
		}
	}
	return nil
}

// Leaderboard returns one page of users in rank order.
func (r *UserRepository) Leaderboard(ctx context.Context, limit, offset int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT fid, username, avatar_url, points, accuracy, streak, rank
		FROM users
		ORDER BY points DESC, accuracy DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Fid, &e.Username, &e.AvatarURL, &e.Points, &e.Accuracy, &e.Streak, &e.Rank); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: leaderboard rows: %w", err)
	}
	return entries, nil
}

func scanUser(row pgx.Row) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := row.Scan(
		&u.ID, &u.Fid, &u.Username, &u.DisplayName, &u.AvatarURL,
		&u.Points, &u.Streak, &u.Accuracy, &u.Rank, &u.BestLocation,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
