package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	predictionSvc  *service.PredictionService
	leaderboardSvc *service.LeaderboardService
	weatherSvc     *service.WeatherService
	scoringJob     *service.ScoringJob
	users          service.UserRepository
	badges         service.BadgeRepository
}

// NewHandler creates a new handler
func NewHandler(
	predictionSvc *service.PredictionService,
	leaderboardSvc *service.LeaderboardService,
	weatherSvc *service.WeatherService,
	scoringJob *service.ScoringJob,
	users service.UserRepository,
	badges service.BadgeRepository,
) *Handler {
	return &Handler{
		predictionSvc:  predictionSvc,
		leaderboardSvc: leaderboardSvc,
		weatherSvc:     weatherSvc,
		scoringJob:     scoringJob,
		users:          users,
		badges:         badges,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "skycast-backend",
		"version": "1.0.0",
	})
}

// createPredictionRequest is the forecast submission payload.
type createPredictionRequest struct {
	UserID             string  `json:"user_id"`
	LocationName       string  `json:"location_name"`
	LocationLat        float64 `json:"location_lat"`
	LocationLng        float64 `json:"location_lng"`
	LocationCountry    string  `json:"location_country"`
	PredictedTemp      float64 `json:"predicted_temp"`
	PredictedCondition string  `json:"predicted_condition"`
	TargetDate         string  `json:"target_date"`
}

// CreatePrediction submits a new forecast for a future date
func (h *Handler) CreatePrediction(c *fiber.Ctx) error {
	var req createPredictionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "target_date must be YYYY-MM-DD")
	}

	loc := domain.Location{
		Name:    req.LocationName,
		Lat:     req.LocationLat,
		Lng:     req.LocationLng,
		Country: req.LocationCountry,
	}

	prediction, err := h.predictionSvc.Create(c.Context(), req.UserID, loc,
		req.PredictedTemp, domain.Condition(req.PredictedCondition), targetDate)
	if errors.Is(err, service.ErrInvalidPrediction) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create prediction")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    prediction,
	})
}

// ListPredictions returns a user's predictions, newest first
func (h *Handler) ListPredictions(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	predictions, err := h.predictionSvc.ListForUser(c.Context(), userID, c.QueryInt("limit", 20))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch predictions")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    predictions,
		"count":   len(predictions),
	})
}

// PredictionStats returns a user's prediction summary
func (h *Handler) PredictionStats(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	stats, err := h.predictionSvc.Stats(c.Context(), userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch prediction stats")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// GetLeaderboard returns a page of the ranked leaderboard
func (h *Handler) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := h.leaderboardSvc.Leaderboard(c.Context(), c.QueryInt("limit", 100), c.QueryInt("offset", 0))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch leaderboard")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// GetUser returns one user profile
func (h *Handler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.Context(), c.Params("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch user")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// GetUserBadges returns the badges a user has unlocked
func (h *Handler) GetUserBadges(c *fiber.Ctx) error {
	badges, err := h.badges.BadgesForUser(c.Context(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch badges")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    badges,
		"count":   len(badges),
	})
}

// GetCurrentWeather returns the current observation for a location
func (h *Handler) GetCurrentWeather(c *fiber.Ctx) error {
	location := c.Query("q")
	if location == "" {
		return fiber.NewError(fiber.StatusBadRequest, "q is required")
	}

	snapshot, err := h.weatherSvc.Current(c.Context(), location)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch weather data")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snapshot,
	})
}

// GetForecast returns daily forecasts for a location
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	location := c.Query("q")
	if location == "" {
		return fiber.NewError(fiber.StatusBadRequest, "q is required")
	}

	snapshots, err := h.weatherSvc.Forecast(c.Context(), location, c.QueryInt("days", 7))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch forecast data")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snapshots,
		"count":   len(snapshots),
	})
}

// SearchLocations proxies the provider's location search
func (h *Handler) SearchLocations(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "q is required")
	}

	locations, err := h.weatherSvc.SearchLocations(c.Context(), query)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "Failed to search locations")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    locations,
	})
}

// TriggerScoring runs one scoring pass immediately
func (h *Handler) TriggerScoring(c *fiber.Ctx) error {
	scored, err := h.scoringJob.RunOnce(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Scoring run failed")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"scored":  scored,
	})
}
