package postgres

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skycast/backend/internal/domain"
)

// MockStore is an in-memory implementation of the repository
// interfaces, used for demo mode (no database configured) and tests.
// It mirrors the Store shape: Predictions, Users and Badges are typed
// views over one shared, mutex-guarded state.
type MockStore struct {
	Predictions *MockPredictionRepository
	Users       *MockUserRepository
	Badges      *MockBadgeRepository

	mu          sync.RWMutex
	predictions map[string]*domain.Prediction
	users       map[string]*domain.UserProfile
	badges      []domain.Badge
	userBadges  map[string]map[string]domain.UserBadge
}

// NewMockStore creates an empty in-memory store seeded with the static
// badge catalog.
func NewMockStore() *MockStore {
	s := &MockStore{
		predictions: make(map[string]*domain.Prediction),
		users:       make(map[string]*domain.UserProfile),
		badges:      seedBadges(),
		userBadges:  make(map[string]map[string]domain.UserBadge),
	}
	s.Predictions = &MockPredictionRepository{store: s}
	s.Users = &MockUserRepository{store: s}
	s.Badges = &MockBadgeRepository{store: s}
	return s
}

// seedBadges returns the badge catalog as static reference data.
func seedBadges() []domain.Badge {
	defs := []struct {
		name, icon, tier, reqType string
		value                     float64
	}{
		{"First Forecast", "🌤️", "bronze", domain.RequirePredictions, 1},
		{"Weather Watcher", "👀", "bronze", domain.RequirePredictions, 10},
		{"Storm Chaser", "⛈️", "silver", domain.RequirePredictions, 25},
		{"Climate Expert", "🌍", "gold", domain.RequirePredictions, 50},
		{"Weather Master", "🏆", "platinum", domain.RequirePredictions, 100},
		{"Point Collector", "⭐", "bronze", domain.RequirePoints, 100},
		{"Point Hoarder", "💰", "silver", domain.RequirePoints, 500},
		{"Point Legend", "👑", "gold", domain.RequirePoints, 1000},
		{"Streak Starter", "🔥", "bronze", domain.RequireStreak, 3},
		{"Streak Builder", "⚡", "silver", domain.RequireStreak, 7},
		{"Streak Master", "💫", "gold", domain.RequireStreak, 30},
		{"Accuracy Pro", "🎯", "silver", domain.RequireAccuracy, 70},
		{"Accuracy Legend", "🏅", "gold", domain.RequireAccuracy, 85},
		{"Perfect Predictor", "💎", "platinum", domain.RequireAccuracy, 95},
	}

	badges := make([]domain.Badge, 0, len(defs))
	for i, d := range defs {
		badges = append(badges, domain.Badge{
			ID:               fmt.Sprintf("badge-%02d", i+1),
			Name:             d.name,
			Icon:             d.icon,
			Description:      fmt.Sprintf("Reach %g %s", d.value, d.reqType),
			Tier:             d.tier,
			RequirementType:  d.reqType,
			RequirementValue: d.value,
		})
	}
	return badges
}

// AddUser seeds a user profile.
func (s *MockStore) AddUser(user *domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.ID] = &u
}

// AddPrediction seeds a prediction.
func (s *MockStore) AddPrediction(p *domain.Prediction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.predictions[cp.ID] = &cp
}

// MockPredictionRepository implements domain.PredictionRepository in memory.
type MockPredictionRepository struct {
	store *MockStore
}

// Create persists a new pending prediction.
func (r *MockPredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *p
	r.store.predictions[cp.ID] = &cp
	return nil
}

// GetByID fetches one prediction.
func (r *MockPredictionRepository) GetByID(ctx context.Context, id string) (*domain.Prediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.predictions[id]
	if !ok {
		return nil, fmt.Errorf("mock: prediction %s: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// FindDuePending returns pending predictions with target date <= asOf.
func (r *MockPredictionRepository) FindDuePending(ctx context.Context, asOf time.Time) ([]*domain.Prediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var due []*domain.Prediction
	for _, p := range r.store.predictions {
		if p.Status == domain.StatusPending && !p.TargetDate.After(asOf) {
			cp := *p
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].TargetDate.Before(due[j].TargetDate) })
	return due, nil
}

// MarkScored transitions pending -> scored, guarded by current status.
func (r *MockPredictionRepository) MarkScored(ctx context.Context, id string, actualTemp float64, actualCondition domain.Condition, score int, scoredAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p, ok := r.store.predictions[id]
	if !ok {
		return fmt.Errorf("mock: prediction %s: %w", id, domain.ErrNotFound)
	}
	if p.Status != domain.StatusPending {
		return fmt.Errorf("mock: prediction %s not pending: %w", id, domain.ErrConflict)
	}

	temp, cond, sc, at := actualTemp, actualCondition, score, scoredAt
	p.ActualTemp = &temp
	p.ActualCondition = &cond
	p.Score = &sc
	p.ScoredAt = &at
	p.Status = domain.StatusScored
	return nil
}

// ScoredForUser returns scored predictions, most recent target date first.
func (r *MockPredictionRepository) ScoredForUser(ctx context.Context, userID string, limit int) ([]*domain.Prediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var scored []*domain.Prediction
	for _, p := range r.store.predictions {
		if p.UserID == userID && p.Status == domain.StatusScored {
			cp := *p
			scored = append(scored, &cp)
		}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].TargetDate.After(scored[j].TargetDate) })
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// ListForUser returns a user's predictions, newest first.
func (r *MockPredictionRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Prediction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var list []*domain.Prediction
	for _, p := range r.store.predictions {
		if p.UserID == userID {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// CountForUser returns the user's total prediction count.
func (r *MockPredictionRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, p := range r.store.predictions {
		if p.UserID == userID {
			count++
		}
	}
	return count, nil
}

// MockUserRepository implements domain.UserRepository in memory.
type MockUserRepository struct {
	store *MockStore
}

// GetByID fetches one user profile.
func (r *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, fmt.Errorf("mock: user %s: %w", id, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

// GetByFid fetches one user by external social identity.
func (r *MockUserRepository) GetByFid(ctx context.Context, fid int64) (*domain.UserProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Fid == fid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("mock: user fid %d: %w", fid, domain.ErrNotFound)
}

// ApplyReputation adds points and sets streak/accuracy in one step.
func (r *MockUserRepository) ApplyReputation(ctx context.Context, userID string, pointsDelta int, newStreak int, newAccuracy float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[userID]
	if !ok {
		return fmt.Errorf("mock: user %s: %w", userID, domain.ErrNotFound)
	}
	u.Points += pointsDelta
	u.Streak = newStreak
	u.Accuracy = newAccuracy
	u.UpdatedAt = time.Now()
	return nil
}

// ListForRanking returns users ordered by points desc, accuracy desc.
func (r *MockUserRepository) ListForRanking(ctx context.Context) ([]*domain.UserProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]*domain.UserProfile, 0, len(r.store.users))
	for _, u := range r.store.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Points != users[j].Points {
			return users[i].Points > users[j].Points
		}
		return users[i].Accuracy > users[j].Accuracy
	})
	return users, nil
}

// PersistRanks writes rank assignments.
func (r *MockUserRepository) PersistRanks(ctx context.Context, assignments []domain.RankAssignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, a := range assignments {
		if u, ok := r.store.users[a.UserID]; ok {
			u.Rank = a.Rank
		}
	}
	return nil
}

// Leaderboard returns one page of users in rank order.
func (r *MockUserRepository) Leaderboard(ctx context.Context, limit, offset int) ([]domain.LeaderboardEntry, error) {
	users, err := r.ListForRanking(ctx)
	if err != nil {
		return nil, err
	}

	if offset >= len(users) {
		return nil, nil
	}
	users = users[offset:]
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}

	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, domain.LeaderboardEntry{
			Fid:       u.Fid,
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
			Points:    u.Points,
			Accuracy:  u.Accuracy,
			Streak:    u.Streak,
			Rank:      u.Rank,
		})
	}
	return entries, nil
}

// MockBadgeRepository implements domain.BadgeRepository in memory.
type MockBadgeRepository struct {
	store *MockStore
}

// AllBadges returns every badge definition.
func (r *MockBadgeRepository) AllBadges(ctx context.Context) ([]domain.Badge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.Badge(nil), r.store.badges...), nil
}

// UnlockedIDsForUser returns the set of badge IDs the user holds.
func (r *MockBadgeRepository) UnlockedIDsForUser(ctx context.Context, userID string) (map[string]bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	unlocked := make(map[string]bool)
	for badgeID := range r.store.userBadges[userID] {
		unlocked[badgeID] = true
	}
	return unlocked, nil
}

// Grant records a badge unlock, once per (user, badge) pair.
func (r *MockBadgeRepository) Grant(ctx context.Context, userID, badgeID string, unlockedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	grants, ok := r.store.userBadges[userID]
	if !ok {
		grants = make(map[string]domain.UserBadge)
		r.store.userBadges[userID] = grants
	}
	if _, exists := grants[badgeID]; exists {
		return fmt.Errorf("mock: badge %s for user %s: %w", badgeID, userID, domain.ErrAlreadyGranted)
	}
	grants[badgeID] = domain.UserBadge{
		ID:         uuid.NewString(),
		UserID:     userID,
		BadgeID:    badgeID,
		UnlockedAt: unlockedAt,
	}
	return nil
}

// BadgesForUser returns the full badge definitions a user holds.
func (r *MockBadgeRepository) BadgesForUser(ctx context.Context, userID string) ([]domain.Badge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []domain.Badge
	for _, b := range r.store.badges {
		if _, ok := r.store.userBadges[userID][b.ID]; ok {
			result = append(result, b)
		}
	}
	return result, nil
}
