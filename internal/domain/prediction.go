package domain

import "time"

// Prediction status values. A prediction moves from pending to scored
// exactly once and is never deleted by the scoring pipeline.
const (
	StatusPending = "pending"
	StatusScored  = "scored"
)

// Prediction is one forecast guess: a user's predicted temperature and
// condition for a location on a target date. The actual_* fields, score
// and scored_at stay nil until the scoring job resolves the prediction,
// and are all set together in a single transition to StatusScored.
type Prediction struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Location           Location   `json:"location"`
	PredictedTemp      float64    `json:"predicted_temp"`
	PredictedCondition Condition  `json:"predicted_condition"`
	PredictionDate     time.Time  `json:"prediction_date"`
	TargetDate         time.Time  `json:"target_date"`
	Status             string     `json:"status"`
	ActualTemp         *float64   `json:"actual_temp,omitempty"`
	ActualCondition    *Condition `json:"actual_condition,omitempty"`
	Score              *int       `json:"score,omitempty"`
	ScoredAt           *time.Time `json:"scored_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Scored reports whether the prediction has been resolved.
func (p *Prediction) Scored() bool {
	return p.Status == StatusScored
}

// PredictionStats summarizes a user's prediction history.
type PredictionStats struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Scored       int     `json:"scored"`
	AverageScore float64 `json:"average_score"`
}
