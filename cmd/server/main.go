package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/nahid-hossain/flocknet/backend/internal/router"
	"github.com/nahid-hossain/flocknet/backend/internal/storage"
	"github.com/nahid-hossain/flocknet/backend/pkg/config"
	"github.com/nahid-hossain/flocknet/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize the asset host
	assetStore, err := storage.NewMinioAssetStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize asset store: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, assetStore, cfg)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
