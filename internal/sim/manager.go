package sim

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/spindrop/backend/internal/config"
	"github.com/spindrop/backend/internal/physics"
)

// Simulation world origin. The hexagon center is fixed; clients treat frame
// coordinates as their canvas space.
const (
	CenterX = 400.0
	CenterY = 300.0
)

// ErrSessionNotFound is returned for unknown or already-stopped sessions.
var ErrSessionNotFound = errors.New("session not found")

// Broadcaster pushes frames and state changes to connected viewers. The ws
// hub implements it; keeping it an interface avoids an import cycle with ws.
type Broadcaster interface {
	BroadcastToSession(token string, message interface{})
}

// SessionManager owns all live sessions and their tick loops, and mirrors
// state to Redis and Postgres.
type SessionManager struct {
	sessions map[string]*Session
	cancels  map[string]context.CancelFunc
	db       *sqlx.DB
	rdb      *redis.Client
	config   *config.Config
	hub      Broadcaster
	baseCtx  context.Context
	mu       sync.RWMutex
}

// Manager is the global session manager instance.
var Manager *SessionManager

// InitializeManager initializes the global session manager and starts the
// idle reaper. ctx bounds the lifetime of the reaper and every tick loop.
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSessionManager(db, rdb, cfg)
	Manager.baseCtx = ctx
	go Manager.StartReaper(ctx)
}

// NewSessionManager creates a session manager.
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		cancels:  make(map[string]context.CancelFunc),
		db:       db,
		rdb:      rdb,
		config:   cfg,
		baseCtx:  context.Background(),
	}
}

// SetBroadcaster wires the ws hub in after both sides exist.
func (sm *SessionManager) SetBroadcaster(hub Broadcaster) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.hub = hub
}

// generateToken generates a secure random token.
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// defaultConfig builds a session config from the service configuration.
func (sm *SessionManager) defaultConfig() SessionConfig {
	cfg := SessionConfig{
		HexRadius:     physics.DefaultHexRadius,
		BallRadius:    physics.DefaultBallRadius,
		RotationSpeed: physics.DefaultRotationSpeed,
		Impulse:       300.0,
		Params:        physics.DefaultParams(),
	}
	if sm.config != nil {
		cfg.HexRadius = sm.config.HexRadius
		cfg.BallRadius = sm.config.BallRadius
		cfg.RotationSpeed = sm.config.RotationSpeed
		cfg.Impulse = sm.config.ImpulseMagnitude
		cfg.Params = physics.Params{
			Gravity:       sm.config.Gravity,
			Friction:      sm.config.Friction,
			MinVelocity:   sm.config.MinVelocity,
			BounceDamping: sm.config.BounceDamping,
		}
	}
	return cfg
}

// CreateSession starts a new simulation: registers it, records it in the
// sessions table, schedules idle expiry, and launches the tick loop. ctx
// scopes only the DB insert; the tick loop runs on the manager's own base
// context so it outlives the HTTP request that created it.
func (sm *SessionManager) CreateSession(ctx context.Context, overrides *ConfigUpdate) (*Session, error) {
	token := generateToken(8)
	s := NewSession(token, physics.NewVec2(CenterX, CenterY), sm.defaultConfig())
	if overrides != nil {
		s.Configure(*overrides)
	}

	sm.mu.Lock()
	base := sm.baseCtx
	if base == nil {
		base = context.Background()
	}
	sm.sessions[token] = s
	loopCtx, cancel := context.WithCancel(base)
	sm.cancels[token] = cancel
	sm.mu.Unlock()

	if sm.db != nil {
		cfgJSON, _ := json.Marshal(s.Config())
		_, err := sm.db.ExecContext(ctx,
			`INSERT INTO sessions (token, status, config, created_at, last_activity) VALUES ($1,$2,$3::jsonb,NOW(),NOW())`,
			token, string(StatusRunning), string(cfgJSON),
		)
		if err != nil {
			log.Printf("[DB] Failed to insert session %s: %v", token, err)
		}
	}

	sm.scheduleIdleExpiry(s)
	go sm.runLoop(loopCtx, s)

	log.Printf("[SIM] Session %s created", token)
	return s, nil
}

// GetSession returns a live session by token.
func (sm *SessionManager) GetSession(token string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// StopSession cancels a session's tick loop and marks it stopped.
func (sm *SessionManager) StopSession(token string) error {
	sm.mu.Lock()
	s, ok := sm.sessions[token]
	cancel := sm.cancels[token]
	delete(sm.sessions, token)
	delete(sm.cancels, token)
	sm.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if cancel != nil {
		cancel()
	}
	s.markStopped()

	if sm.db != nil {
		if _, err := sm.db.Exec(
			`UPDATE sessions SET status=$1, stopped_at=NOW() WHERE token=$2`,
			string(StatusStopped), token,
		); err != nil {
			log.Printf("[DB] Failed to mark session %s stopped: %v", token, err)
		}
	}
	if sm.rdb != nil {
		ctx := context.Background()
		sm.rdb.Del(ctx, sessionCleanupKeys(token)...)
		sm.rdb.ZRem(ctx, idleScheduleKey, token)

		// Tell viewers (possibly served by another process) the session is gone
		event, _ := json.Marshal(map[string]interface{}{
			"type":          "session_stopped",
			"session_token": token,
			"reason":        "stopped",
		})
		if err := sm.rdb.Publish(ctx, "sim_events", event).Err(); err != nil {
			log.Printf("[REDIS] Failed to publish stop event for session %s: %v", token, err)
		}
	}

	log.Printf("[SIM] Session %s stopped", token)
	return nil
}

// PauseSession freezes a session's tick loop and notifies viewers on all
// processes.
func (sm *SessionManager) PauseSession(token string) error {
	s, err := sm.GetSession(token)
	if err != nil {
		return err
	}
	s.Pause()
	sm.TouchActivity(s)
	sm.publishLifecycle(token, "session_paused")
	return nil
}

// ResumeSession unfreezes a paused session.
func (sm *SessionManager) ResumeSession(token string) error {
	s, err := sm.GetSession(token)
	if err != nil {
		return err
	}
	s.Resume()
	sm.TouchActivity(s)
	sm.publishLifecycle(token, "session_resumed")
	return nil
}

func (sm *SessionManager) publishLifecycle(token, eventType string) {
	if sm.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]interface{}{
		"type":          eventType,
		"session_token": token,
	})
	if err := sm.rdb.Publish(context.Background(), "sim_events", event).Err(); err != nil {
		log.Printf("[REDIS] Failed to publish %s for session %s: %v", eventType, token, err)
	}
}

// runLoop drives one session at the configured tick rate until cancelled.
func (sm *SessionManager) runLoop(ctx context.Context, s *Session) {
	tickRate := 60
	snapshotSecs := 1
	if sm.config != nil {
		if sm.config.TickRate > 0 {
			tickRate = sm.config.TickRate
		}
		if sm.config.SessionSnapshotSeconds > 0 {
			snapshotSecs = sm.config.SessionSnapshotSeconds
		}
	}
	dt := 1.0 / float64(tickRate)

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	snapshotEvery := uint64(tickRate * snapshotSecs)
	var ticks uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := s.Advance(dt)

			sm.mu.RLock()
			hub := sm.hub
			sm.mu.RUnlock()
			if hub != nil {
				hub.BroadcastToSession(s.Token, map[string]interface{}{
					"type":  "frame",
					"frame": frame,
				})
			}

			if len(frame.Events) > 0 {
				go sm.recordCollisions(s.Token, frame.Events)
			}

			ticks++
			if snapshotEvery > 0 && ticks%snapshotEvery == 0 {
				sm.saveSessionToRedis(s)
			}
		}
	}
}

// recordCollisions persists wall hits for the stats endpoint.
func (sm *SessionManager) recordCollisions(token string, events []CollisionEvent) {
	if sm.db == nil {
		return
	}
	for _, e := range events {
		_, err := sm.db.Exec(
			`INSERT INTO collision_events (session_token, tick, wall_index, impact_speed, created_at)
			 VALUES ($1,$2,$3,$4,NOW())`,
			token, int64(e.Tick), e.WallIndex, e.ImpactSpeed,
		)
		if err != nil {
			log.Printf("[DB] Failed to record collision for session %s: %v", token, err)
		}
	}
}

// saveSessionToRedis mirrors the live state so operators (and reconnecting
// clients) can inspect it without touching the tick loop.
func (sm *SessionManager) saveSessionToRedis(s *Session) {
	if sm.rdb == nil {
		return
	}

	frame := s.CurrentFrame()
	state := map[string]interface{}{
		"token":         s.Token,
		"status":        s.Status(),
		"config":        s.Config(),
		"frame":         frame,
		"created_at":    s.CreatedAt,
		"last_activity": s.LastActivity(),
	}
	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("[REDIS] Failed to marshal session %s: %v", s.Token, err)
		return
	}

	ctx := context.Background()
	if err := sm.rdb.SetEx(ctx, stateKey(s.Token), data, time.Hour).Err(); err != nil {
		log.Printf("[REDIS] Failed to save session %s: %v", s.Token, err)
	}
}

// SessionStats aggregates recorded collisions for one session.
type SessionStats struct {
	Collisions     int     `db:"collisions" json:"collisions"`
	MaxImpactSpeed float64 `db:"max_impact_speed" json:"max_impact_speed"`
	AvgImpactSpeed float64 `db:"avg_impact_speed" json:"avg_impact_speed"`
}

// GetSessionStats queries collision aggregates from Postgres.
func (sm *SessionManager) GetSessionStats(token string) (*SessionStats, error) {
	if sm.db == nil {
		return &SessionStats{}, nil
	}
	var stats SessionStats
	err := sm.db.Get(&stats, `
		SELECT COUNT(*) AS collisions,
		       COALESCE(MAX(impact_speed), 0) AS max_impact_speed,
		       COALESCE(AVG(impact_speed), 0) AS avg_impact_speed
		FROM collision_events WHERE session_token = $1`, token)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// TouchActivity refreshes both the in-memory idle clock and the Redis
// expiry schedule. Called on every client interaction.
func (sm *SessionManager) TouchActivity(s *Session) {
	s.Touch()
	sm.scheduleIdleExpiry(s)
	if sm.db != nil {
		if _, err := sm.db.Exec(`UPDATE sessions SET last_activity=NOW() WHERE token=$1`, s.Token); err != nil {
			log.Printf("[DB] Failed to update activity for session %s: %v", s.Token, err)
		}
	}
}
