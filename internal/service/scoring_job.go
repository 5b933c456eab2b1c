package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/pkg/utils"
)

// defaultOracleTimeout bounds one historical-weather lookup so a slow
// upstream cannot stall the whole run.
const defaultOracleTimeout = 30 * time.Second

// WeatherOracle resolves ground-truth weather for scoring.
// *WeatherService is the production implementation.
type WeatherOracle interface {
	Historical(ctx context.Context, location string, date time.Time) (domain.WeatherSnapshot, error)
}

// ScoringJob is the batch orchestrator: it finds due pending
// predictions, resolves actual weather, scores each prediction, folds
// the score into the owner's reputation and badges, and refreshes the
// leaderboard once per run that scored anything.
type ScoringJob struct {
	predictions   domain.PredictionRepository
	oracle        WeatherOracle
	reputation    *ReputationService
	badges        *BadgeService
	leaderboard   *LeaderboardService
	oracleTimeout time.Duration
}

// NewScoringJob creates a new scoring job
func NewScoringJob(
	predictions domain.PredictionRepository,
	oracle WeatherOracle,
	reputation *ReputationService,
	badges *BadgeService,
	leaderboard *LeaderboardService,
) *ScoringJob {
	return &ScoringJob{
		predictions:   predictions,
		oracle:        oracle,
		reputation:    reputation,
		badges:        badges,
		leaderboard:   leaderboard,
		oracleTimeout: defaultOracleTimeout,
	}
}

// RunOnce executes one scoring pass and returns how many predictions
// it scored. Failures are isolated per prediction: a failed item is
// logged and stays pending for the next run. Cancelling ctx stops the
// run between items; the in-flight item always finishes.
func (j *ScoringJob) RunOnce(ctx context.Context) (int, error) {
	asOf := utils.Midnight(time.Now())

	due, err := j.predictions.FindDuePending(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("scoring: failed to find due predictions: %w", err)
	}

	scored := 0
	for _, prediction := range due {
		if ctx.Err() != nil {
			log.Printf("scoring: run cancelled after %d of %d predictions", scored, len(due))
			break
		}

		if err := j.scoreOne(ctx, prediction); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Another run already scored it; the outcome we wanted
				// already holds.
				continue
			}
			log.Printf("scoring: prediction %s left pending: %v", prediction.ID, err)
			continue
		}
		scored++
	}

	if scored > 0 {
		if err := j.leaderboard.RefreshRanks(ctx); err != nil {
			log.Printf("scoring: rank refresh failed: %v", err)
		}
	}

	return scored, nil
}

// scoreOne drives a single prediction through oracle resolution,
// scoring, the atomic pending->scored transition, reputation update and
// badge evaluation.
func (j *ScoringJob) scoreOne(ctx context.Context, prediction *domain.Prediction) error {
	octx, cancel := context.WithTimeout(ctx, j.oracleTimeout)
	defer cancel()

	location := fmt.Sprintf("%v,%v", prediction.Location.Lat, prediction.Location.Lng)
	actual, err := j.oracle.Historical(octx, location, prediction.TargetDate)
	if err != nil {
		return fmt.Errorf("oracle lookup failed: %w", err)
	}

	score := ScorePrediction(prediction.PredictedTemp, actual.TempC, prediction.PredictedCondition, actual.Condition)

	if err := j.predictions.MarkScored(ctx, prediction.ID, actual.TempC, actual.Condition, score, time.Now()); err != nil {
		return err
	}

	user, err := j.reputation.Apply(ctx, prediction.UserID, score)
	if err != nil {
		return err
	}

	// Badge failures never block scoring: the badge is simply attempted
	// again next cycle.
	total, err := j.predictions.CountForUser(ctx, prediction.UserID)
	if err != nil {
		log.Printf("scoring: badge check skipped for user %s: %v", prediction.UserID, err)
		return nil
	}
	awarded, err := j.badges.CheckAndAward(ctx, user, total)
	if err != nil {
		log.Printf("scoring: badge check failed for user %s: %v", prediction.UserID, err)
		return nil
	}
	for _, badge := range awarded {
		log.Printf("scoring: user %s unlocked badge %q", prediction.UserID, badge.Name)
	}

	return nil
}
