package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/internal/repository/postgres"
)

// scoredOn builds a scored prediction whose target date is daysAgo
// calendar days before today.
func scoredOn(userID string, daysAgo int, score int) *domain.Prediction {
	target := time.Now().AddDate(0, 0, -daysAgo)
	scoredAt := target.Add(26 * time.Hour)
	cond := domain.Sunny
	temp := 20.0
	return &domain.Prediction{
		ID:                 uuid.NewString(),
		UserID:             userID,
		PredictedCondition: domain.Sunny,
		TargetDate:         target,
		Status:             domain.StatusScored,
		ActualTemp:         &temp,
		ActualCondition:    &cond,
		Score:              &score,
		ScoredAt:           &scoredAt,
		CreatedAt:          target.AddDate(0, 0, -1),
	}
}

func TestRecomputeStreakConsecutiveDays(t *testing.T) {
	scored := []*domain.Prediction{
		scoredOn("u1", 0, 80),
		scoredOn("u1", 1, 70),
		scoredOn("u1", 3, 90), // gap before this one breaks the streak
	}

	assert.Equal(t, 2, RecomputeStreak(5, scored))
}

func TestRecomputeStreakEmptyKeepsCurrent(t *testing.T) {
	assert.Equal(t, 7, RecomputeStreak(7, nil))
	assert.Equal(t, 0, RecomputeStreak(0, nil))
}

func TestRecomputeStreakSingle(t *testing.T) {
	assert.Equal(t, 1, RecomputeStreak(0, []*domain.Prediction{scoredOn("u1", 0, 50)}))
}

func TestRecomputeStreakSameDayDuplicates(t *testing.T) {
	// A duplicate on the same calendar day neither extends nor breaks.
	scored := []*domain.Prediction{
		scoredOn("u1", 0, 80),
		scoredOn("u1", 0, 60),
		scoredOn("u1", 1, 70),
		scoredOn("u1", 2, 90),
	}

	assert.Equal(t, 3, RecomputeStreak(0, scored))
}

func TestRecomputeStreakUnbroken(t *testing.T) {
	var scored []*domain.Prediction
	for day := 0; day < 10; day++ {
		scored = append(scored, scoredOn("u1", day, 50))
	}

	assert.Equal(t, 10, RecomputeStreak(0, scored))
}

func TestRecomputeAccuracy(t *testing.T) {
	scored := []*domain.Prediction{
		scoredOn("u1", 0, 100),
		scoredOn("u1", 1, 80),
		scoredOn("u1", 2, 60),
	}

	assert.Equal(t, 80.00, RecomputeAccuracy(0, scored))
}

func TestRecomputeAccuracyRounding(t *testing.T) {
	scored := []*domain.Prediction{
		scoredOn("u1", 0, 50),
		scoredOn("u1", 1, 50),
		scoredOn("u1", 2, 51),
	}

	assert.Equal(t, 50.33, RecomputeAccuracy(0, scored))
}

func TestRecomputeAccuracyEmptyKeepsCurrent(t *testing.T) {
	assert.Equal(t, 62.5, RecomputeAccuracy(62.5, nil))
}

func TestApplyUpdatesPointsStreakAccuracy(t *testing.T) {
	store := postgres.NewMockStore()
	store.AddUser(&domain.UserProfile{ID: "u1", Username: "ada", Points: 40})
	store.AddPrediction(scoredOn("u1", 0, 80))
	store.AddPrediction(scoredOn("u1", 1, 60))

	svc := NewReputationService(store.Users, store.Predictions)

	user, err := svc.Apply(context.Background(), "u1", 80)
	require.NoError(t, err)

	assert.Equal(t, 120, user.Points)
	assert.Equal(t, 2, user.Streak)
	assert.Equal(t, 70.00, user.Accuracy)

	// The same values must have been persisted.
	stored, err := store.Users.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 120, stored.Points)
	assert.Equal(t, 2, stored.Streak)
	assert.Equal(t, 70.00, stored.Accuracy)
}

func TestApplyUnknownUser(t *testing.T) {
	store := postgres.NewMockStore()
	svc := NewReputationService(store.Users, store.Predictions)

	_, err := svc.Apply(context.Background(), "ghost", 50)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyConcurrentSameUserLosesNoPoints(t *testing.T) {
	store := postgres.NewMockStore()
	store.AddUser(&domain.UserProfile{ID: "u1"})
	store.AddPrediction(scoredOn("u1", 0, 50))

	svc := NewReputationService(store.Users, store.Predictions)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Apply(context.Background(), "u1", 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	user, err := store.Users.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 200, user.Points)
}
