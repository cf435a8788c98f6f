package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/spindrop/backend/internal/ws"
)

// HandleSessionWebSocket upgrades a viewer connection to the live frame
// stream for a session.
func HandleSessionWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws.HandleWebSocket(c)
	}
}
