package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/wavely-app/backend/internal/router"
	"github.com/wavely-app/backend/pkg/config"
	"github.com/wavely-app/backend/pkg/validators"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Structured logger
	var logger *zap.Logger
	var err error
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()
	logger.Info("Database connections established")

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db.Postgres, db.Mongo, cfg, logger); err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}

	// Start server
	logger.Info("Starting server", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
