package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skycast/backend/internal/domain"
)

// PredictionRepository implements domain.PredictionRepository on PostgreSQL.
type PredictionRepository struct {
	pool *pgxpool.Pool
}

// NewPredictionRepository creates a new PostgreSQL prediction repository
func NewPredictionRepository(pool *pgxpool.Pool) *PredictionRepository {
	return &PredictionRepository{pool: pool}
}

const predictionColumns = `
	id, user_id, location_name, location_lat, location_lng, location_country,
	predicted_temp, predicted_condition, prediction_date, target_date,
	status, actual_temp, actual_condition, score, scored_at, created_at
`

// Create persists a new pending prediction.
func (r *PredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	query := `
		INSERT INTO predictions (
			id, user_id, location_name, location_lat, location_lng, location_country,
			predicted_temp, predicted_condition, prediction_date, target_date,
			status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UserID, p.Location.Name, p.Location.Lat, p.Location.Lng, p.Location.Country,
		p.PredictedTemp, string(p.PredictedCondition), p.PredictionDate, p.TargetDate,
		p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create prediction: %w", err)
	}
	return nil
}

// GetByID fetches one prediction.
func (r *PredictionRepository) GetByID(ctx context.Context, id string) (*domain.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	p, err := scanPrediction(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: prediction %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to fetch prediction: %w", err)
	}
	return p, nil
}

// FindDuePending returns all pending predictions due as of the given date.
func (r *PredictionRepository) FindDuePending(ctx context.Context, asOf time.Time) ([]*domain.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE status = $1 AND target_date <= $2
		ORDER BY target_date ASC
	`

	rows, err := r.pool.Query(ctx, query, domain.StatusPending, asOf)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query due predictions: %w", err)
	}
	defer rows.Close()

	return collectPredictions(rows)
}

// MarkScored transitions a prediction from pending to scored. The
// WHERE clause on status makes the transition a compare-and-swap:
// a row already scored by a concurrent run is reported as ErrConflict.
func (r *PredictionRepository) MarkScored(ctx context.Context, id string, actualTemp float64, actualCondition domain.Condition, score int, scoredAt time.Time) error {
	query := `
		UPDATE predictions
		SET actual_temp = $2, actual_condition = $3, score = $4, scored_at = $5, status = $6
		WHERE id = $1 AND status = $7
	`

	tag, err := r.pool.Exec(ctx, query,
		id, actualTemp, string(actualCondition), score, scoredAt,
		domain.StatusScored, domain.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark prediction scored: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: prediction %s not pending: %w", id, domain.ErrConflict)
	}
	return nil
}

// ScoredForUser returns a user's scored predictions, most recent
// target date first. limit <= 0 returns all.
func (r *PredictionRepository) ScoredForUser(ctx context.Context, userID string, limit int) ([]*domain.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE user_id = $1 AND status = $2
		ORDER BY target_date DESC
	`
	args := []any{userID, domain.StatusScored}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query scored predictions: %w", err)
	}
	defer rows.Close()

	return collectPredictions(rows)
}

// ListForUser returns a user's predictions, newest first. limit <= 0
// returns all.
func (r *PredictionRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query predictions: %w", err)
	}
	defer rows.Close()

	return collectPredictions(rows)
}

// CountForUser returns the user's total prediction count.
func (r *PredictionRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM predictions WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to count predictions: %w", err)
	}
	return count, nil
}

func collectPredictions(rows pgx.Rows) ([]*domain.Prediction, error) {
	var results []*domain.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan prediction row: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: prediction rows: %w", err)
	}
	return results, nil
}

func scanPrediction(row pgx.Row) (*domain.Prediction, error) {
	var (
		p          domain.Prediction
		predicted  string
		actualCond *string
	)

	err := row.Scan(
		&p.ID, &p.UserID, &p.Location.Name, &p.Location.Lat, &p.Location.Lng, &p.Location.Country,
		&p.PredictedTemp, &predicted, &p.PredictionDate, &p.TargetDate,
		&p.Status, &p.ActualTemp, &actualCond, &p.Score, &p.ScoredAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.PredictedCondition = domain.Condition(predicted)
	if actualCond != nil {
		cond := domain.Condition(*actualCond)
		p.ActualCondition = &cond
	}
	return &p, nil
}
