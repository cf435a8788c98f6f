package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/spindrop/backend/internal/admin"
	"github.com/spindrop/backend/internal/api"
	"github.com/spindrop/backend/internal/config"
	"github.com/spindrop/backend/internal/database"
	"github.com/spindrop/backend/internal/migrations"
	"github.com/spindrop/backend/internal/redis"
	"github.com/spindrop/backend/internal/sim"
	"github.com/spindrop/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Apply persisted runtime config overrides before the manager
	// snapshots its defaults
	if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
		log.Printf("[CONFIG] Failed to apply runtime config overrides: %v", err)
	}

	ctx := context.Background()

	// Initialize simulation manager and start the idle reaper
	sim.InitializeManager(ctx, db, rdb, cfg)

	// Wire Redis into the WS layer and start the sim event subscriber
	ws.SetRedisClient(rdb, cfg)
	ws.StartSimEventSubscriber(ctx)

	// Frames fan out to WS viewers through the session hub
	sim.Manager.SetBroadcaster(ws.SessionHub)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, db, rdb, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting SpinDrop server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
