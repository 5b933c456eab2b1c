package domain

import (
	"context"
	"errors"
	"time"
)

// Pipeline error taxonomy. All of these are recoverable from the
// scoring job's point of view: the prediction stays pending and is
// retried on the next run.
var (
	// ErrOracleUnavailable means the weather provider could not be
	// reached or returned a non-2xx response.
	ErrOracleUnavailable = errors.New("weather oracle unavailable")

	// ErrOracleDataMissing means the provider responded but the payload
	// carried no usable temperature or condition.
	ErrOracleDataMissing = errors.New("weather oracle response missing data")

	// ErrConflict means the row changed under us (e.g. the prediction
	// was already scored by a concurrent run). Callers treat it as
	// success-no-op since the desired outcome already holds.
	ErrConflict = errors.New("state changed concurrently")

	// ErrAlreadyGranted means the (user, badge) pair already exists.
	ErrAlreadyGranted = errors.New("badge already granted")

	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// PredictionRepository defines prediction persistence.
// The domain defines the interface; implementations live in
// internal/repository (Dependency Inversion Principle).
type PredictionRepository interface {
	// Create persists a new pending prediction.
	Create(ctx context.Context, p *Prediction) error

	// GetByID fetches one prediction, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Prediction, error)

	// FindDuePending returns all pending predictions whose target date
	// is on or before asOf (midnight-aligned calendar comparison).
	FindDuePending(ctx context.Context, asOf time.Time) ([]*Prediction, error)

	// MarkScored transitions a prediction from pending to scored in a
	// single atomic write guarded by the current status. Returns
	// ErrConflict if the prediction is no longer pending.
	MarkScored(ctx context.Context, id string, actualTemp float64, actualCondition Condition, score int, scoredAt time.Time) error

	// ScoredForUser returns up to limit scored predictions for a user,
	// most recent target date first.
	ScoredForUser(ctx context.Context, userID string, limit int) ([]*Prediction, error)

	// ListForUser returns up to limit predictions for a user, newest first.
	ListForUser(ctx context.Context, userID string, limit int) ([]*Prediction, error)

	// CountForUser returns the user's total prediction count.
	CountForUser(ctx context.Context, userID string) (int, error)
}

// UserRepository defines user-profile persistence.
type UserRepository interface {
	// GetByID fetches one user, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*UserProfile, error)

	// GetByFid fetches one user by external social identity, or ErrNotFound.
	GetByFid(ctx context.Context, fid int64) (*UserProfile, error)

	// ApplyReputation adds pointsDelta to the user's points and sets the
	// new streak and accuracy in one write.
	ApplyReputation(ctx context.Context, userID string, pointsDelta int, newStreak int, newAccuracy float64) error

	// ListForRanking returns all users ordered by points descending,
	// ties broken by accuracy descending.
	ListForRanking(ctx context.Context) ([]*UserProfile, error)

	// PersistRanks writes a full set of rank assignments.
	PersistRanks(ctx context.Context, assignments []RankAssignment) error

	// Leaderboard returns a page of the ranked leaderboard.
	Leaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error)
}

// BadgeRepository defines badge reference data and grant persistence.
type BadgeRepository interface {
	// AllBadges returns every badge definition.
	AllBadges(ctx context.Context) ([]Badge, error)

	// UnlockedIDsForUser returns the set of badge IDs the user holds.
	UnlockedIDsForUser(ctx context.Context, userID string) (map[string]bool, error)

	// Grant records a badge unlock. Returns ErrAlreadyGranted if the
	// pair already exists; grants are never duplicated.
	Grant(ctx context.Context, userID, badgeID string, unlockedAt time.Time) error

	// BadgesForUser returns the full badge definitions a user holds.
	BadgesForUser(ctx context.Context, userID string) ([]Badge, error)
}
