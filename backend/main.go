package main

import (
	"log"

	"dailytracker/backend/config"
	"dailytracker/backend/middleware"
	"dailytracker/backend/routes"
	"dailytracker/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(cfg)
	defer logger.Sync()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-Id",
		AllowCredentials: false,
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(middleware.MetricsMiddleware())

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	app.Use(limiter.Handler())

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
