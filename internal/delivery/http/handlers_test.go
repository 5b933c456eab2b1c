package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/internal/repository/postgres"
	"github.com/skycast/backend/internal/service"
)

func newTestApp(store *postgres.MockStore) *fiber.App {
	weatherSvc := service.NewWeatherService("")
	predictionSvc := service.NewPredictionService(store.Predictions)
	reputationSvc := service.NewReputationService(store.Users, store.Predictions)
	badgeSvc := service.NewBadgeService(store.Badges)
	leaderboardSvc := service.NewLeaderboardService(store.Users)
	scoringJob := service.NewScoringJob(store.Predictions, weatherSvc, reputationSvc, badgeSvc, leaderboardSvc)

	app := fiber.New()
	handler := NewHandler(predictionSvc, leaderboardSvc, weatherSvc, scoringJob, store.Users, store.Badges)
	SetupRoutes(app, handler)
	return app
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(postgres.NewMockStore())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestCreatePredictionEndpoint(t *testing.T) {
	store := postgres.NewMockStore()
	app := newTestApp(store)

	payload, _ := json.Marshal(map[string]any{
		"user_id":             "u1",
		"location_name":       "London",
		"location_lat":        51.5,
		"location_lng":        -0.1,
		"location_country":    "UK",
		"predicted_temp":      18.5,
		"predicted_condition": "Cloudy",
		"target_date":         time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
	})

	req := httptest.NewRequest("POST", "/api/v1/predictions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	list, err := store.Predictions.ListForUser(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.Cloudy, list[0].PredictedCondition)
}

func TestCreatePredictionEndpointRejectsPastDate(t *testing.T) {
	app := newTestApp(postgres.NewMockStore())

	payload, _ := json.Marshal(map[string]any{
		"user_id":             "u1",
		"location_name":       "London",
		"predicted_temp":      18.5,
		"predicted_condition": "Cloudy",
		"target_date":         "2020-01-01",
	})

	req := httptest.NewRequest("POST", "/api/v1/predictions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetLeaderboardEndpoint(t *testing.T) {
	store := postgres.NewMockStore()
	store.AddUser(&domain.UserProfile{ID: "a", Username: "ada", Points: 300, Accuracy: 90, Rank: 1})
	store.AddUser(&domain.UserProfile{ID: "b", Username: "bob", Points: 200, Accuracy: 70, Rank: 2})
	app := newTestApp(store)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/leaderboard", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                      `json:"success"`
		Data    []domain.LeaderboardEntry `json:"data"`
		Count   int                       `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.True(t, body.Success)
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "ada", body.Data[0].Username)
}

func TestGetUserEndpointNotFound(t *testing.T) {
	app := newTestApp(postgres.NewMockStore())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/users/ghost", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTriggerScoringEndpointNothingDue(t *testing.T) {
	app := newTestApp(postgres.NewMockStore())

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/admin/score", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"scored":0`)
}
