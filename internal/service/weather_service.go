package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skycast/backend/internal/domain"
)

const weatherAPIBaseURL = "https://api.weatherapi.com/v1"

// WeatherService is the oracle adapter for the upstream weather
// provider. It resolves current, forecast and historical observations
// and classifies raw provider conditions into the domain taxonomy.
// It never retries: retry policy belongs to the scoring job.
type WeatherService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewWeatherService creates a new weather service
func NewWeatherService(apiKey string) *WeatherService {
	return &WeatherService{
		apiKey:  apiKey,
		baseURL: weatherAPIBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// weatherAPIResponse mirrors the provider's JSON payload.
type weatherAPIResponse struct {
	Location struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
			Code int    `json:"code"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64 `json:"maxtemp_c"`
				MinTempC  float64 `json:"mintemp_c"`
				AvgTempC  float64 `json:"avgtemp_c"`
				Condition struct {
					Text string `json:"text"`
					Code int    `json:"code"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Current fetches the current observation for a location.
// Location is any provider-accepted query ("lat,lng" or a city name).
func (s *WeatherService) Current(ctx context.Context, location string) (domain.WeatherSnapshot, error) {
	resp, err := s.fetch(ctx, "current.json", url.Values{"q": {location}, "aqi": {"no"}})
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}

	if resp.Current.Condition.Text == "" && resp.Current.Condition.Code == 0 {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: current observation for %q: %w", location, domain.ErrOracleDataMissing)
	}

	return domain.WeatherSnapshot{
		TempC:         resp.Current.TempC,
		ConditionText: resp.Current.Condition.Text,
		ConditionCode: resp.Current.Condition.Code,
		Condition:     ClassifyCondition(resp.Current.Condition.Text, resp.Current.Condition.Code),
		Date:          time.Now(),
		City:          resp.Location.Name,
		Country:       resp.Location.Country,
	}, nil
}

// Forecast fetches up to days of daily forecasts for a location.
// The provider caps forecasts at 10 days.
func (s *WeatherService) Forecast(ctx context.Context, location string, days int) ([]domain.WeatherSnapshot, error) {
	if days > 10 {
		days = 10
	}
	if days < 1 {
		days = 1
	}

	resp, err := s.fetch(ctx, "forecast.json", url.Values{
		"q":      {location},
		"days":   {fmt.Sprintf("%d", days)},
		"aqi":    {"no"},
		"alerts": {"no"},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Forecast.ForecastDay) == 0 {
		return nil, fmt.Errorf("weather: forecast for %q: %w", location, domain.ErrOracleDataMissing)
	}

	snapshots := make([]domain.WeatherSnapshot, 0, len(resp.Forecast.ForecastDay))
	for _, fd := range resp.Forecast.ForecastDay {
		date, err := time.Parse("2006-01-02", fd.Date)
		if err != nil {
			return nil, fmt.Errorf("weather: bad forecast date %q: %w", fd.Date, domain.ErrOracleDataMissing)
		}
		snapshots = append(snapshots, domain.WeatherSnapshot{
			TempC:         fd.Day.AvgTempC,
			ConditionText: fd.Day.Condition.Text,
			ConditionCode: fd.Day.Condition.Code,
			Condition:     ClassifyCondition(fd.Day.Condition.Text, fd.Day.Condition.Code),
			Date:          date,
			City:          resp.Location.Name,
			Country:       resp.Location.Country,
		})
	}

	return snapshots, nil
}

// Historical resolves the observed weather for a past date. The daily
// average from the provider's forecast-day block is preferred; the
// current snapshot is the fallback when no per-day data came back.
func (s *WeatherService) Historical(ctx context.Context, location string, date time.Time) (domain.WeatherSnapshot, error) {
	resp, err := s.fetch(ctx, "history.json", url.Values{
		"q":  {location},
		"dt": {date.Format("2006-01-02")},
	})
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}

	snapshot := domain.WeatherSnapshot{
		Date:    date,
		City:    resp.Location.Name,
		Country: resp.Location.Country,
	}

	if len(resp.Forecast.ForecastDay) > 0 {
		day := resp.Forecast.ForecastDay[0].Day
		snapshot.TempC = day.AvgTempC
		snapshot.ConditionText = day.Condition.Text
		snapshot.ConditionCode = day.Condition.Code
	} else if resp.Current.Condition.Text != "" || resp.Current.Condition.Code != 0 {
		snapshot.TempC = resp.Current.TempC
		snapshot.ConditionText = resp.Current.Condition.Text
		snapshot.ConditionCode = resp.Current.Condition.Code
	} else {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: history for %q on %s: %w",
			location, date.Format("2006-01-02"), domain.ErrOracleDataMissing)
	}

	snapshot.Condition = ClassifyCondition(snapshot.ConditionText, snapshot.ConditionCode)
	return snapshot, nil
}

// SearchLocations queries the provider's location search.
func (s *WeatherService) SearchLocations(ctx context.Context, query string) ([]domain.Location, error) {
	reqURL := fmt.Sprintf("%s/search.json?%s", s.baseURL, url.Values{
		"key": {s.apiKey},
		"q":   {query},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: search request failed: %w", domain.ErrOracleUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: search returned status %d: %w", resp.StatusCode, domain.ErrOracleUnavailable)
	}

	var results []struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("weather: failed to decode search response: %w", domain.ErrOracleDataMissing)
	}

	locations := make([]domain.Location, 0, len(results))
	for _, r := range results {
		locations = append(locations, domain.Location{
			Name:    r.Name,
			Lat:     r.Lat,
			Lng:     r.Lon,
			Country: r.Country,
		})
	}
	return locations, nil
}

// fetch executes one provider call and decodes the standard payload.
func (s *WeatherService) fetch(ctx context.Context, endpoint string, params url.Values) (*weatherAPIResponse, error) {
	params.Set("key", s.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", s.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: %s request failed (%v): %w", endpoint, err, domain.ErrOracleUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: %s returned status %d: %w", endpoint, resp.StatusCode, domain.ErrOracleUnavailable)
	}

	var payload weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("weather: failed to decode %s response: %w", endpoint, domain.ErrOracleDataMissing)
	}

	return &payload, nil
}

// ClassifyCondition maps a provider condition description and code into
// the domain taxonomy. Rules are ordered; the first match wins. Text
// matching is case-insensitive substring, code ranges are inclusive.
func ClassifyCondition(text string, code int) domain.Condition {
	t := strings.ToLower(text)

	switch {
	case code >= 1273 || strings.Contains(t, "thunder") || strings.Contains(t, "storm"):
		return domain.Stormy
	case code >= 1210 && code <= 1264:
		return domain.Snowy
	case code >= 1180 && code <= 1201:
		return domain.Rainy
	case strings.Contains(t, "fog") || strings.Contains(t, "mist"):
		return domain.Foggy
	case strings.Contains(t, "wind") || code == 1087:
		return domain.Windy
	case strings.Contains(t, "cloud") || strings.Contains(t, "overcast"):
		return domain.Cloudy
	default:
		return domain.Sunny
	}
}
