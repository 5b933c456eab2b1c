package service

import (
	"context"
	"fmt"

	"github.com/skycast/backend/internal/domain"
)

// LeaderboardService recomputes global rank ordering. The recompute is
// full, not incremental: it runs at most once per scoring cycle.
type LeaderboardService struct {
	users domain.UserRepository
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(users domain.UserRepository) *LeaderboardService {
	return &LeaderboardService{users: users}
}

// RefreshRanks recomputes and persists the rank of every user.
func (s *LeaderboardService) RefreshRanks(ctx context.Context) error {
	users, err := s.users.ListForRanking(ctx)
	if err != nil {
		return fmt.Errorf("leaderboard: failed to list users: %w", err)
	}

	if err := s.users.PersistRanks(ctx, ComputeRanks(users)); err != nil {
		return fmt.Errorf("leaderboard: failed to persist ranks: %w", err)
	}
	return nil
}

// ComputeRanks assigns competition ranks over users already ordered by
// points descending, accuracy descending. Users tied on points share a
// rank; the next distinct points value takes its positional rank, so
// points [300, 300, 200] rank as [1, 1, 3]. Accuracy orders the listing
// within a points tie but does not split the rank.
func ComputeRanks(usersOrdered []*domain.UserProfile) []domain.RankAssignment {
	assignments := make([]domain.RankAssignment, 0, len(usersOrdered))

	rank := 1
	for i, user := range usersOrdered {
		if i > 0 && user.Points != usersOrdered[i-1].Points {
			rank = i + 1
		}
		assignments = append(assignments, domain.RankAssignment{UserID: user.ID, Rank: rank})
	}

	return assignments
}

// Leaderboard returns one page of the ranked leaderboard.
func (s *LeaderboardService) Leaderboard(ctx context.Context, limit, offset int) ([]domain.LeaderboardEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.users.Leaderboard(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: failed to fetch page: %w", err)
	}
	return entries, nil
}
