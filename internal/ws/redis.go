package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/spindrop/backend/internal/config"
)

var rdbClient *redis.Client
var wsConfig *config.Config

// SetRedisClient wires the Redis client and service config into the ws layer.
func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartSimEventSubscriber subscribes to the sim_events channel and forwards
// incoming lifecycle events to the affected session rooms. Events arrive via
// Redis so that a reaper running in another process still reaches the
// viewers connected here.
func StartSimEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; sim event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "sim_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] sim_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			sessionToken, _ := payload["session_token"].(string)
			if sessionToken == "" {
				continue
			}

			switch typeStr {
			case "session_stopped":
				reason, _ := payload["reason"].(string)
				SessionHub.BroadcastToSession(sessionToken, map[string]interface{}{
					"type":    "session_stopped",
					"reason":  reason,
					"message": "Simulation stopped",
				})
			case "session_paused", "session_resumed":
				SessionHub.BroadcastToSession(sessionToken, map[string]interface{}{
					"type": typeStr,
				})
			default:
				log.Printf("[WS] unhandled sim event type=%s session=%s", typeStr, sessionToken)
			}
		}
	}()
}
