package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Prediction endpoints
		api.Post("/predictions", handler.CreatePrediction)
		api.Get("/predictions", handler.ListPredictions)
		api.Get("/predictions/stats", handler.PredictionStats)

		// Leaderboard and profiles
		api.Get("/leaderboard", handler.GetLeaderboard)
		api.Get("/users/:id", handler.GetUser)
		api.Get("/users/:id/badges", handler.GetUserBadges)

		// Weather proxy endpoints
		api.Get("/weather/current", handler.GetCurrentWeather)
		api.Get("/weather/forecast", handler.GetForecast)
		api.Get("/weather/search", handler.SearchLocations)

		// Manual scoring trigger (the hourly cron covers normal operation)
		api.Post("/admin/score", handler.TriggerScoring)
	}
}
