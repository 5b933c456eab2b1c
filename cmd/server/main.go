package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/skycast/backend/internal/delivery/http"
	"github.com/skycast/backend/internal/domain"
	"github.com/skycast/backend/internal/repository/postgres"
	"github.com/skycast/backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, running with in-memory store")
	} else {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			log.Println("Running with in-memory store only")
			pool = nil
		} else {
			defer pool.Close()
			log.Println("Connected to PostgreSQL")
		}
	}

	// Dependency Injection: Repositories
	var (
		predictionRepo domain.PredictionRepository
		userRepo       domain.UserRepository
		badgeRepo      domain.BadgeRepository
	)
	if pool != nil {
		store := postgres.NewStore(pool)
		predictionRepo = store.Predictions
		userRepo = store.Users
		badgeRepo = store.Badges
	} else {
		mock := postgres.NewMockStore()
		predictionRepo = mock.Predictions
		userRepo = mock.Users
		badgeRepo = mock.Badges
	}

	// Dependency Injection: Services
	weatherSvc := service.NewWeatherService(cfg.WeatherAPIKey)
	predictionSvc := service.NewPredictionService(predictionRepo)
	reputationSvc := service.NewReputationService(userRepo, predictionRepo)
	badgeSvc := service.NewBadgeService(badgeRepo)
	leaderboardSvc := service.NewLeaderboardService(userRepo)
	scoringJob := service.NewScoringJob(predictionRepo, weatherSvc, reputationSvc, badgeSvc, leaderboardSvc)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "SkyCast API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := http.NewHandler(predictionSvc, leaderboardSvc, weatherSvc, scoringJob, userRepo, badgeRepo)
	http.SetupRoutes(app, handler)

	// Hourly scoring job. The job context is cancelled on shutdown so
	// an in-flight run stops between predictions.
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		log.Println("Running prediction scoring job...")
		scored, err := scoringJob.RunOnce(jobCtx)
		if err != nil {
			log.Printf("Scoring job failed: %v", err)
			return
		}
		log.Printf("Scored %d predictions", scored)
	}); err != nil {
		log.Fatalf("Could not schedule scoring job: %v", err)
	}
	scheduler.Start()

	// Graceful shutdown
	go func() {
		port := cfg.Port
		if port == "" {
			port = "8080"
		}
		log.Printf("Server starting on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopJobs()
	<-scheduler.Stop().Done()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited gracefully")
}

type Config struct {
	DatabaseURL    string
	WeatherAPIKey  string
	AllowedOrigins string
	Port           string
	Env            string
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		WeatherAPIKey:  getEnv("WEATHER_API_KEY", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("GO_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
