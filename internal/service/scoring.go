package service

import (
	"math"

	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/pkg/utils"
)

// Scoring weights: a perfect prediction earns 50 temperature points
// plus 50 condition points.
const (
	perfectTempPoints     = 50
	exactConditionPoints  = 50
	similarConditionPoint = 25
)

// similarConditions maps a predicted condition to the set of actual
// conditions still worth partial credit. The table is directed: Cloudy
// is adjacent to Sunny but not the other way around.
var similarConditions = map[domain.Condition][]domain.Condition{
	domain.Rainy:  {domain.Stormy, domain.Cloudy},
	domain.Stormy: {domain.Rainy, domain.Windy},
	domain.Cloudy: {domain.Rainy, domain.Foggy, domain.Sunny},
	domain.Sunny:  {domain.Cloudy},
	domain.Snowy:  {domain.Cloudy, domain.Foggy},
	domain.Windy:  {domain.Stormy, domain.Cloudy},
	domain.Foggy:  {domain.Cloudy},
}

// ScorePrediction computes the 0-100 score for a prediction against
// the observed weather. Pure and deterministic.
func ScorePrediction(predictedTemp, actualTemp float64, predicted, actual domain.Condition) int {
	score := TempScore(math.Abs(predictedTemp - actualTemp))

	if predicted == actual {
		score += exactConditionPoints
	} else {
		for _, similar := range similarConditions[predicted] {
			if similar == actual {
				score += similarConditionPoint
				break
			}
		}
	}

	return utils.ClampInt(score, 0, 100)
}

// TempScore awards up to 50 points by absolute temperature difference
// in degrees Celsius.
func TempScore(diff float64) int {
	switch {
	case diff == 0:
		return perfectTempPoints
	case diff <= 1:
		return 45
	case diff <= 2:
		return 40
	case diff <= 3:
		return 35
	case diff <= 5:
		return 25
	case diff <= 7:
		return 15
	case diff <= 10:
		return 5
	default:
		return 0
	}
}
