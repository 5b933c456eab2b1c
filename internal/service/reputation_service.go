package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/pkg/utils"
)

// streakLookback bounds how many scored predictions the streak walk
// inspects.
const streakLookback = 30

// ReputationService recomputes a user's points, streak and accuracy
// after a scoring event. Updates for one user are serialized with a
// per-user lock so concurrent scoring events cannot lose writes.
type ReputationService struct {
	users       domain.UserRepository
	predictions domain.PredictionRepository

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewReputationService creates a new reputation service
func NewReputationService(users domain.UserRepository, predictions domain.PredictionRepository) *ReputationService {
	return &ReputationService{
		users:       users,
		predictions: predictions,
		userLocks:   make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one user's reputation state.
func (s *ReputationService) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Apply folds one scoring event into the user's reputation: points
// first, then streak, then accuracy, all persisted in a single write.
// It returns the profile with the updated values so badge evaluation
// can read the post-update stats.
func (s *ReputationService) Apply(ctx context.Context, userID string, score int) (*domain.UserProfile, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reputation: failed to load user %s: %w", userID, err)
	}

	scored, err := s.predictions.ScoredForUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("reputation: failed to load scored predictions for %s: %w", userID, err)
	}

	recent := scored
	if len(recent) > streakLookback {
		recent = recent[:streakLookback]
	}

	newStreak := RecomputeStreak(user.Streak, recent)
	newAccuracy := RecomputeAccuracy(user.Accuracy, scored)

	if err := s.users.ApplyReputation(ctx, userID, score, newStreak, newAccuracy); err != nil {
		return nil, fmt.Errorf("reputation: failed to persist update for %s: %w", userID, err)
	}

	user.Points += score
	user.Streak = newStreak
	user.Accuracy = newAccuracy
	return user, nil
}

// RecomputeStreak walks scored predictions (most recent target day
// first) counting consecutive calendar days. A same-day duplicate
// neither extends nor breaks the streak; a gap of more than one day
// breaks it. With no scored predictions the current streak is kept:
// absence of data is not evidence of a break.
func RecomputeStreak(current int, scoredMostRecentFirst []*domain.Prediction) int {
	if len(scoredMostRecentFirst) == 0 {
		return current
	}

	streak := 1
	for i := 1; i < len(scoredMostRecentFirst); i++ {
		newer := scoredMostRecentFirst[i-1].TargetDate
		older := scoredMostRecentFirst[i].TargetDate

		switch utils.DaysApart(newer, older) {
		case 0:
			// Same calendar day, e.g. a duplicate same-day prediction.
			continue
		case 1:
			streak++
		default:
			return streak
		}
	}
	return streak
}

// RecomputeAccuracy returns the mean of all scored-prediction scores,
// rounded to two decimal places. With no scored predictions the
// current accuracy is kept.
func RecomputeAccuracy(current float64, scored []*domain.Prediction) float64 {
	var total, count int
	for _, p := range scored {
		if p.Score == nil {
			continue
		}
		total += *p.Score
		count++
	}
	if count == 0 {
		return current
	}
	return utils.RoundTo(float64(total)/float64(count), 2)
}
