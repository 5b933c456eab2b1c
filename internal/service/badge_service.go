package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/skycast/backend/internal/domain"
)

// BadgeService evaluates badge threshold rules against a user's live
// stats and persists new grants. Rules are independent: no rule reads
// another rule's outcome within a pass.
type BadgeService struct {
	badges domain.BadgeRepository
}

// NewBadgeService creates a new badge service
func NewBadgeService(badges domain.BadgeRepository) *BadgeService {
	return &BadgeService{badges: badges}
}

// Evaluate returns the badges the user newly qualifies for, given the
// already-unlocked set and the live stat values.
func (s *BadgeService) Evaluate(user *domain.UserProfile, allBadges []domain.Badge, unlocked map[string]bool, totalPredictions int) []domain.Badge {
	var qualified []domain.Badge

	for _, badge := range allBadges {
		if unlocked[badge.ID] {
			continue
		}

		var live float64
		switch badge.RequirementType {
		case domain.RequirePredictions:
			live = float64(totalPredictions)
		case domain.RequirePoints:
			live = float64(user.Points)
		case domain.RequireStreak:
			live = float64(user.Streak)
		case domain.RequireAccuracy:
			live = user.Accuracy
		default:
			continue
		}

		if live >= badge.RequirementValue {
			qualified = append(qualified, badge)
		}
	}

	return qualified
}

// CheckAndAward evaluates all badges for a user and persists any new
// grants. Granting is idempotent: a concurrent duplicate grant is a
// no-op. Returns the badges newly awarded in this pass.
func (s *BadgeService) CheckAndAward(ctx context.Context, user *domain.UserProfile, totalPredictions int) ([]domain.Badge, error) {
	allBadges, err := s.badges.AllBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("badge: failed to load badge definitions: %w", err)
	}

	unlocked, err := s.badges.UnlockedIDsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("badge: failed to load unlocked badges: %w", err)
	}

	var awarded []domain.Badge
	for _, badge := range s.Evaluate(user, allBadges, unlocked, totalPredictions) {
		err := s.badges.Grant(ctx, user.ID, badge.ID, time.Now())
		if errors.Is(err, domain.ErrAlreadyGranted) {
			continue
		}
		if err != nil {
			// A failed grant is retried on the next scoring cycle; it
			// must not block the rest of the pass.
			log.Printf("badge: failed to grant %q to user %s: %v", badge.Name, user.ID, err)
			continue
		}
		awarded = append(awarded, badge)
	}

	return awarded, nil
}
