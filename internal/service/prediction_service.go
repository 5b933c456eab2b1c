package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/pkg/utils"
)

// ErrInvalidPrediction is returned when a submitted forecast fails
// validation.
var ErrInvalidPrediction = errors.New("invalid prediction")

// PredictionService handles forecast submission and history queries.
type PredictionService struct {
	predictions domain.PredictionRepository
}

// NewPredictionService creates a new prediction service
func NewPredictionService(predictions domain.PredictionRepository) *PredictionService {
	return &PredictionService{predictions: predictions}
}

// Create validates and persists a new pending prediction. The target
// date must be strictly in the future: forecasting today or the past
// is rejected.
func (s *PredictionService) Create(ctx context.Context, userID string, loc domain.Location, predictedTemp float64, predicted domain.Condition, targetDate time.Time) (*domain.Prediction, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidPrediction)
	}
	if loc.Name == "" {
		return nil, fmt.Errorf("%w: missing location name", ErrInvalidPrediction)
	}
	if !predicted.Valid() {
		return nil, fmt.Errorf("%w: unknown condition %q", ErrInvalidPrediction, predicted)
	}

	today := utils.Midnight(time.Now())
	if !utils.Midnight(targetDate).After(today) {
		return nil, fmt.Errorf("%w: target date must be in the future", ErrInvalidPrediction)
	}

	now := time.Now()
	prediction := &domain.Prediction{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Location:           loc,
		PredictedTemp:      predictedTemp,
		PredictedCondition: predicted,
		PredictionDate:     today,
		TargetDate:         utils.Midnight(targetDate),
		Status:             domain.StatusPending,
		CreatedAt:          now,
	}

	if err := s.predictions.Create(ctx, prediction); err != nil {
		return nil, fmt.Errorf("prediction: failed to create: %w", err)
	}
	return prediction, nil
}

// ListForUser returns a user's predictions, newest first.
func (s *PredictionService) ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Prediction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.predictions.ListForUser(ctx, userID, limit)
}

// Stats summarizes a user's prediction history.
func (s *PredictionService) Stats(ctx context.Context, userID string) (domain.PredictionStats, error) {
	all, err := s.predictions.ListForUser(ctx, userID, 0)
	if err != nil {
		return domain.PredictionStats{}, fmt.Errorf("prediction: failed to load history: %w", err)
	}

	stats := domain.PredictionStats{Total: len(all)}
	var scoreTotal int
	for _, p := range all {
		switch p.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusScored:
			stats.Scored++
			if p.Score != nil {
				scoreTotal += *p.Score
			}
		}
	}
	if stats.Scored > 0 {
		stats.AverageScore = utils.RoundTo(float64(scoreTotal)/float64(stats.Scored), 2)
	}
	return stats, nil
}
