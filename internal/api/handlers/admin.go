package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/spindrop/backend/internal/admin"
	"github.com/spindrop/backend/internal/config"
	"github.com/spindrop/backend/internal/sim"
)

// AdminAuthMiddleware validates the X-Admin-Username / X-Admin-Token
// header pair against the bcrypt hash stored in admin_accounts.
func AdminAuthMiddleware(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.GetHeader("X-Admin-Username"))
		token := strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		if username == "" || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin credentials required"})
			c.Abort()
			return
		}

		acc, err := admin.ValidateAdminCredentials(db, username, token)
		if err != nil {
			log.Printf("[ADMIN] Auth failed for %s from %s: %v", username, c.ClientIP(), err)
			admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "auth", nil, false)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			c.Abort()
			return
		}

		if len(acc.AllowedIPs) > 0 {
			ip := c.ClientIP()
			var ok bool
			for _, allowed := range acc.AllowedIPs {
				if ip == allowed {
					ok = true
					break
				}
			}
			if !ok {
				log.Printf("[ADMIN] IP %s not allowed for %s", ip, username)
				admin.LogAdminAction(db, username, ip, c.FullPath(), "auth_ip_rejected", nil, false)
				c.JSON(http.StatusForbidden, gin.H{"error": "IP not allowed"})
				c.Abort()
				return
			}
		}

		c.Set("admin_username", acc.Username)
		c.Next()
	}
}

// AdminMe returns the authenticated admin identity.
func AdminMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("admin_username")})
	}
}

// GetRuntimeConfig lists all runtime config overrides.
func GetRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"config": entries})
	}
}

// UpdateRuntimeConfig changes one runtime config key and re-applies the
// overrides to the live server config.
func UpdateRuntimeConfig(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")

		var req struct {
			Key   string `json:"key" binding:"required"`
			Value string `json:"value" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		if err := admin.UpdateRuntimeConfigValue(db, req.Key, req.Value, adminUsername); err != nil {
			admin.LogAdminAction(db, adminUsername, c.ClientIP(), c.FullPath(), "update_config",
				map[string]interface{}{"key": req.Key, "value": req.Value}, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
			log.Printf("[ADMIN] Failed to re-apply runtime config: %v", err)
		}

		admin.LogAdminAction(db, adminUsername, c.ClientIP(), c.FullPath(), "update_config",
			map[string]interface{}{"key": req.Key, "value": req.Value}, true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "key": req.Key, "value": req.Value})
	}
}

// GetAdminAuditLog returns recent admin actions, newest first.
func GetAdminAuditLog(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := parsePositiveInt(v); err == nil && n <= 500 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := parsePositiveInt(v); err == nil {
				offset = n
			}
		}

		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}

// ListSessions returns recent sessions for the admin dashboard.
func ListSessions(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		type row struct {
			Token        string  `db:"token" json:"token"`
			Status       string  `db:"status" json:"status"`
			CreatedAt    string  `db:"created_at" json:"created_at"`
			LastActivity string  `db:"last_activity" json:"last_activity"`
			Collisions   int     `db:"collisions" json:"collisions"`
			MaxImpact    float64 `db:"max_impact" json:"max_impact_speed"`
		}

		var rows []row
		err := db.Select(&rows, `
			SELECT s.token, s.status,
			       s.created_at::text AS created_at,
			       s.last_activity::text AS last_activity,
			       COUNT(e.id) AS collisions,
			       COALESCE(MAX(e.impact_speed), 0) AS max_impact
			FROM sessions s
			LEFT JOIN collision_events e ON e.session_token = s.token
			GROUP BY s.token, s.status, s.created_at, s.last_activity
			ORDER BY s.created_at DESC
			LIMIT 100
		`)
		if err != nil {
			log.Printf("[ADMIN] Failed to list sessions: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": rows})
	}
}

// AdminStopSession force-stops a running session.
func AdminStopSession(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminUsername := c.GetString("admin_username")
		token := c.Param("token")

		err := sim.Manager.StopSession(token)
		admin.LogAdminAction(db, adminUsername, c.ClientIP(), c.FullPath(), "stop_session",
			map[string]interface{}{"session": token}, err == nil)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
