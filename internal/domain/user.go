package domain

import "time"

// UserProfile is a user's aggregate reputation state. Points only ever
// increase; streak, accuracy and rank are recomputed by the scoring
// pipeline after each scoring event.
type UserProfile struct {
	ID           string    `json:"id"`
	Fid          int64     `json:"fid"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    string    `json:"avatar_url"`
	Points       int       `json:"points"`
	Streak       int       `json:"streak"`
	Accuracy     float64   `json:"accuracy"`
	Rank         int       `json:"rank"`
	BestLocation string    `json:"best_location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Badge requirement types. Each badge holds one requirement evaluated
// against the matching live stat.
const (
	RequirePredictions = "predictions"
	RequirePoints      = "points"
	RequireStreak      = "streak"
	RequireAccuracy    = "accuracy"
)

// Badge is a static achievement definition with a numeric unlock threshold.
type Badge struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Icon             string  `json:"icon"`
	Description      string  `json:"description"`
	Tier             string  `json:"tier"`
	RequirementType  string  `json:"requirement_type"`
	RequirementValue float64 `json:"requirement_value"`
}

// UserBadge records a single unlock of a badge by a user.
type UserBadge struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	BadgeID    string    `json:"badge_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// RankAssignment is one row of a leaderboard recompute.
type RankAssignment struct {
	UserID string `json:"user_id"`
	Rank   int    `json:"rank"`
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	Fid       int64   `json:"fid"`
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url"`
	Points    int     `json:"points"`
	Accuracy  float64 `json:"accuracy"`
	Streak    int     `json:"streak"`
	Rank      int     `json:"rank"`
}
