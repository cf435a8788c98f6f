package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"

	"github.com/spindrop/backend/internal/physics"
	"github.com/spindrop/backend/internal/sim"
)

// Inbound command payloads
type ImpulseData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ResetData struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// SessionHub is the single hub for all simulation sessions.
var SessionHub *Hub

func init() {
	SessionHub = NewHub()
	go runSessionHub(SessionHub)
}

func generateClientID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return "viewer_" + hex.EncodeToString(b)
}

// validateViewerToken checks the HS256 JWT issued at session creation and
// returns the session token it grants access to.
func validateViewerToken(tokenString string) (string, error) {
	if wsConfig == nil {
		return "", fmt.Errorf("ws config not set")
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method.Alg())
		}
		return []byte(wsConfig.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims")
	}
	sessionToken, _ := claims["session"].(string)
	if sessionToken == "" {
		return "", fmt.Errorf("no session claim")
	}
	return sessionToken, nil
}

// HandleWebSocket upgrades a viewer connection for a simulation session.
func HandleWebSocket(c *gin.Context) {
	sessionToken := c.Param("token")
	viewerToken := c.Query("t")

	if sessionToken == "" || viewerToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session token and viewer token required"})
		return
	}

	granted, err := validateViewerToken(viewerToken)
	if err != nil || granted != sessionToken {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid viewer token"})
		return
	}

	s, err := sim.Manager.GetSession(sessionToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:         conn,
		clientID:     generateClientID(),
		sessionToken: sessionToken,
		send:         make(chan []byte, 256),
	}

	SessionHub.register <- client
	sim.Manager.TouchActivity(s)

	go client.writePump()
	go client.readPump()
}

// runSessionHub processes client registration and departure.
func runSessionHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.clientID] = client
			if _, exists := h.rooms[client.sessionToken]; !exists {
				h.rooms[client.sessionToken] = make(map[string]*Client)
			}
			h.rooms[client.sessionToken][client.clientID] = client
			h.mu.Unlock()

			log.Printf("[WS] Client %s connected to session %s", client.clientID, client.sessionToken)

			// Send the current state so the viewer can draw before the
			// next frame arrives.
			if s, err := sim.Manager.GetSession(client.sessionToken); err == nil {
				h.SendToClient(client.clientID, map[string]interface{}{
					"type":   "session_state",
					"status": s.Status(),
					"config": s.Config(),
					"frame":  s.CurrentFrame(),
				})
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.clientID]; ok && cur == client {
				delete(h.clients, client.clientID)
				if room, exists := h.rooms[client.sessionToken]; exists {
					delete(room, client.clientID)
					if len(room) == 0 {
						delete(h.rooms, client.sessionToken)
					}
				}
				close(client.send)
			}
			h.mu.Unlock()

			log.Printf("[WS] Client %s disconnected from session %s", client.clientID, client.sessionToken)
		}
	}
}

// readPump reads and dispatches client commands until the connection drops.
func (c *Client) readPump() {
	defer func() {
		SessionHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetPongHandler(func(string) error { return nil })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for client %s: %v", c.clientID, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("invalid message format")
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg WSMessage) {
	s, err := sim.Manager.GetSession(c.sessionToken)
	if err != nil {
		c.sendError("session no longer exists")
		return
	}

	switch msg.Type {
	case "impulse":
		var data ImpulseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid impulse data")
			return
		}
		s.ApplyImpulse(physics.NewVec2(data.X, data.Y))
		sim.Manager.TouchActivity(s)

	case "configure":
		var data sim.ConfigUpdate
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid configure data")
			return
		}
		cfg := s.Configure(data)
		sim.Manager.TouchActivity(s)
		SessionHub.BroadcastToSession(c.sessionToken, map[string]interface{}{
			"type":   "config_updated",
			"config": cfg,
		})

	case "reset":
		var data ResetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid reset data")
			return
		}
		var pos *physics.Vec2
		if data.X != nil && data.Y != nil {
			p := physics.NewVec2(*data.X, *data.Y)
			pos = &p
		}
		s.Reset(pos)
		sim.Manager.TouchActivity(s)

	case "pause":
		sim.Manager.PauseSession(s.Token)

	case "resume":
		sim.Manager.ResumeSession(s.Token)

	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}
