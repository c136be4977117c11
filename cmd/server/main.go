package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"propval/server/config"
	"propval/server/internal/api"
	"propval/server/internal/comparables"
	"propval/server/internal/database"
	"propval/server/internal/geocoding"
	"propval/server/internal/location"
	"propval/server/internal/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Load .env if present; real environments set variables directly
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using process environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Server.DatabasePath)

	// Initialize database
	db, err := database.NewDatabase(cfg.Server.DatabasePath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Initialize geocoder
	cacheDir := filepath.Join(os.TempDir(), "propval", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir)

	// Assemble the valuation pipeline
	live := comparables.NewLiveSource(cfg.Listings.BaseURL, cfg.Listings.ProxyURL, cfg.Listings.MinPrice, logger)
	source := comparables.NewCachedSource(live, db, geocoder,
		time.Duration(cfg.Listings.CacheTTLHours)*time.Hour, logger)
	selector := comparables.NewSelector(source, cfg.Valuation.ComparableLimit, logger)
	parser := location.NewParser(cfg.Valuation.DefaultState)
	orchestrator := valuation.NewOrchestrator(parser, selector, cfg.Valuation.ValueBand, logger)

	handler := api.NewHandler(db, orchestrator, cfg.History.MaxEntries, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
