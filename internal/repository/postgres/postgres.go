package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the pgx-backed repository implementations over one
// connection pool.
type Store struct {
	Predictions *PredictionRepository
	Users       *UserRepository
	Badges      *BadgeRepository

	pool *pgxpool.Pool
}

// NewStore creates the full set of PostgreSQL repositories.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Predictions: NewPredictionRepository(pool),
		Users:       NewUserRepository(pool),
		Badges:      NewBadgeRepository(pool),
		pool:        pool,
	}
}

// Health checks database connectivity
func (s *Store) Health(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
