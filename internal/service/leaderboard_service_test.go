package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/internal/repository/postgres"
)

func TestComputeRanksTiesSharePosition(t *testing.T) {
	users := []*domain.UserProfile{
		{ID: "a", Points: 300, Accuracy: 90},
		{ID: "b", Points: 300, Accuracy: 80},
		{ID: "c", Points: 200, Accuracy: 70},
	}

	assignments := ComputeRanks(users)
	require.Len(t, assignments, 3)

	assert.Equal(t, 1, assignments[0].Rank)
	assert.Equal(t, 1, assignments[1].Rank)
	assert.Equal(t, 3, assignments[2].Rank, "the rank after a tie skips the tied positions")
}

func TestComputeRanksDistinctPoints(t *testing.T) {
	users := []*domain.UserProfile{
		{ID: "a", Points: 50},
		{ID: "b", Points: 30},
		{ID: "c", Points: 10},
	}

	assignments := ComputeRanks(users)
	assert.Equal(t, []int{1, 2, 3}, []int{assignments[0].Rank, assignments[1].Rank, assignments[2].Rank})
}

func TestComputeRanksAllTied(t *testing.T) {
	users := []*domain.UserProfile{
		{ID: "a", Points: 10},
		{ID: "b", Points: 10},
		{ID: "c", Points: 10},
	}

	for _, a := range ComputeRanks(users) {
		assert.Equal(t, 1, a.Rank)
	}
}

func TestComputeRanksEmpty(t *testing.T) {
	assert.Empty(t, ComputeRanks(nil))
}

func TestRefreshRanksPersists(t *testing.T) {
	store := postgres.NewMockStore()
	store.AddUser(&domain.UserProfile{ID: "a", Points: 300, Accuracy: 90})
	store.AddUser(&domain.UserProfile{ID: "b", Points: 300, Accuracy: 80})
	store.AddUser(&domain.UserProfile{ID: "c", Points: 200, Accuracy: 70})

	svc := NewLeaderboardService(store.Users)
	require.NoError(t, svc.RefreshRanks(context.Background()))

	a, _ := store.Users.GetByID(context.Background(), "a")
	b, _ := store.Users.GetByID(context.Background(), "b")
	c, _ := store.Users.GetByID(context.Background(), "c")

	assert.Equal(t, 1, a.Rank)
	assert.Equal(t, 1, b.Rank)
	assert.Equal(t, 3, c.Rank)
}

func TestLeaderboardOrdering(t *testing.T) {
	store := postgres.NewMockStore()
	store.AddUser(&domain.UserProfile{ID: "a", Username: "ada", Points: 300, Accuracy: 80})
	store.AddUser(&domain.UserProfile{ID: "b", Username: "bob", Points: 300, Accuracy: 90})
	store.AddUser(&domain.UserProfile{ID: "c", Username: "cyd", Points: 200, Accuracy: 70})

	svc := NewLeaderboardService(store.Users)
	entries, err := svc.Leaderboard(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Accuracy breaks the ordering of equal points.
	assert.Equal(t, "bob", entries[0].Username)
	assert.Equal(t, "ada", entries[1].Username)
	assert.Equal(t, "cyd", entries[2].Username)
}
