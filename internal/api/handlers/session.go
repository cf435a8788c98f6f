package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/spindrop/backend/internal/config"
	"github.com/spindrop/backend/internal/physics"
	"github.com/spindrop/backend/internal/sim"
	"github.com/spindrop/backend/internal/ws"
)

// issueViewerToken signs a short-lived HS256 JWT granting read/control
// access to a single session.
func issueViewerToken(cfg *config.Config, sessionToken string) (string, time.Time, error) {
	exp := time.Now().Add(time.Duration(cfg.TokenExpiryMins) * time.Minute)
	claims := jwt.MapClaims{"session": sessionToken, "exp": exp.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// CreateSession starts a new simulation session. The body may carry
// config overrides; omitted fields use server defaults.
func CreateSession(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var overrides sim.ConfigUpdate
		if c.Request.ContentLength > 0 {
			if err := c.BindJSON(&overrides); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		session, err := sim.Manager.CreateSession(c.Request.Context(), &overrides)
		if err != nil {
			log.Printf("[SESSION] Failed to create session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		viewerToken, exp, err := issueViewerToken(cfg, session.Token)
		if err != nil {
			log.Printf("[SESSION] Failed to sign viewer token for %s: %v", session.Token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_token": session.Token,
			"viewer_token":  viewerToken,
			"expires_at":    exp.Unix(),
			"config":        session.Config(),
			"frame":         session.CurrentFrame(),
			"ws_url":        "/api/v1/session/" + session.Token + "/ws",
		})
	}
}

// GetSession returns the current frame and config of a session.
func GetSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sim.Manager.GetSession(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_token": session.Token,
			"status":        session.Status(),
			"config":        session.Config(),
			"frame":         session.CurrentFrame(),
			"viewers":       ws.SessionHub.ViewerCount(session.Token),
		})
	}
}

// ApplyImpulse kicks the ball away from a click point.
func ApplyImpulse() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sim.Manager.GetSession(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		var req struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		session.ApplyImpulse(physics.NewVec2(req.X, req.Y))
		sim.Manager.TouchActivity(session)
		c.JSON(http.StatusOK, gin.H{"ok": true, "frame": session.CurrentFrame()})
	}
}

// UpdateSessionConfig changes live simulation parameters.
func UpdateSessionConfig() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sim.Manager.GetSession(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		var update sim.ConfigUpdate
		if err := c.BindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		applied := session.Configure(update)
		sim.Manager.TouchActivity(session)
		ws.SessionHub.BroadcastToSession(session.Token, map[string]interface{}{
			"type":   "config_updated",
			"config": applied,
		})
		c.JSON(http.StatusOK, gin.H{"ok": true, "config": applied})
	}
}

// ResetSession places the ball back at the center, or at an explicit
// position clamped inside the hexagon.
func ResetSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sim.Manager.GetSession(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		var req struct {
			X *float64 `json:"x,omitempty"`
			Y *float64 `json:"y,omitempty"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.BindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		var pos *physics.Vec2
		if req.X != nil && req.Y != nil {
			p := physics.NewVec2(*req.X, *req.Y)
			pos = &p
		}
		session.Reset(pos)
		sim.Manager.TouchActivity(session)
		c.JSON(http.StatusOK, gin.H{"ok": true, "frame": session.CurrentFrame()})
	}
}

// PauseSession freezes the tick loop for a session.
func PauseSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sim.Manager.GetSession(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		if err := sim.Manager.PauseSession(session.Token); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": session.Status()})
	}
}

// ResumeSession unfreezes a paused session.
func ResumeSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := sim.Manager.GetSession(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		if err := sim.Manager.ResumeSession(session.Token); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": session.Status()})
	}
}

// StopSession tears a session down and records the stop.
func StopSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if err := sim.Manager.StopSession(token); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GetSessionStats returns aggregate collision stats from Postgres.
func GetSessionStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		stats, err := sim.Manager.GetSessionStats(token)
		if err != nil {
			log.Printf("[SESSION] Failed to fetch stats for %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"session_token":    token,
			"collisions":       stats.Collisions,
			"max_impact_speed": stats.MaxImpactSpeed,
			"avg_impact_speed": stats.AvgImpactSpeed,
			"viewers":          ws.SessionHub.ViewerCount(token),
		})
	}
}
