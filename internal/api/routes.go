package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/spindrop/backend/internal/api/handlers"
	"github.com/spindrop/backend/internal/config"
	"github.com/spindrop/backend/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.WebSocketCORSCheck(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Simulation sessions
		session := v1.Group("/session")
		{
			session.POST("", handlers.CreateSession(db, rdb, cfg))
			session.GET("/:token", handlers.GetSession())
			session.POST("/:token/impulse", handlers.ApplyImpulse())
			session.PUT("/:token/config", handlers.UpdateSessionConfig())
			session.POST("/:token/reset", handlers.ResetSession())
			session.POST("/:token/pause", handlers.PauseSession())
			session.POST("/:token/resume", handlers.ResumeSession())
			session.DELETE("/:token", handlers.StopSession())
			session.GET("/:token/stats", handlers.GetSessionStats())
			session.GET("/:token/ws", handlers.HandleSessionWebSocket())
		}

		// Admin endpoints, header-token authenticated
		adminGroup := v1.Group("/admin")
		adminGroup.Use(handlers.AdminAuthMiddleware(db))
		{
			adminGroup.GET("/me", handlers.AdminMe())
			adminGroup.GET("/config", handlers.GetRuntimeConfig(db))
			adminGroup.PUT("/config", handlers.UpdateRuntimeConfig(db, cfg))
			adminGroup.GET("/audit", handlers.GetAdminAuditLog(db))
			adminGroup.GET("/sessions", handlers.ListSessions(db))
			adminGroup.DELETE("/sessions/:token", handlers.AdminStopSession(db))
		}
	}
}
