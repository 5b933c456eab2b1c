package domain

import "time"

// Condition is the closed taxonomy every predicted or observed
// weather condition must map into.
type Condition string

const (
	Sunny  Condition = "Sunny"
	Cloudy Condition = "Cloudy"
	Rainy  Condition = "Rainy"
	Stormy Condition = "Stormy"
	Snowy  Condition = "Snowy"
	Windy  Condition = "Windy"
	Foggy  Condition = "Foggy"
)

// AllConditions lists every valid condition value.
var AllConditions = []Condition{Sunny, Cloudy, Rainy, Stormy, Snowy, Windy, Foggy}

// Valid reports whether c is a member of the condition taxonomy.
func (c Condition) Valid() bool {
	for _, known := range AllConditions {
		if c == known {
			return true
		}
	}
	return false
}

// WeatherSnapshot is one resolved observation for a location: the
// temperature plus the upstream provider's raw condition description
// and numeric code, from which a Condition is classified.
type WeatherSnapshot struct {
	TempC         float64   `json:"temp_c"`
	ConditionText string    `json:"condition_text"`
	ConditionCode int       `json:"condition_code"`
	Condition     Condition `json:"condition"`
	Date          time.Time `json:"date"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
}

// Location identifies a place a prediction is made for.
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Country string  `json:"country"`
}
