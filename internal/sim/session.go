package sim

import (
	"math"
	"sync"
	"time"

	"github.com/spindrop/backend/internal/physics"
)

// CollisionEvent records one wall bounce for stats recording and so the
// client can scale hit-sound volume by impact speed.
type CollisionEvent struct {
	Tick        uint64  `json:"tick"`
	WallIndex   int     `json:"wall_index"`
	ImpactSpeed float64 `json:"impact_speed"`
}

// Frame is the per-tick snapshot broadcast to connected clients. The
// vertices are included so the renderer never recomputes rotation itself.
type Frame struct {
	Tick      uint64                             `json:"tick"`
	Ball      physics.Ball                       `json:"ball"`
	Rotation  float64                            `json:"rotation"`
	HexCenter physics.Vec2                       `json:"hex_center"`
	HexRadius float64                            `json:"hex_radius"`
	Vertices  [physics.HexagonSides]physics.Vec2 `json:"vertices"`
	Events    []CollisionEvent                   `json:"events,omitempty"`
}

// SessionConfig is the mutable host-owned configuration of one session.
type SessionConfig struct {
	HexRadius     float64        `json:"hex_radius"`
	BallRadius    float64        `json:"ball_radius"`
	RotationSpeed float64        `json:"rotation_speed"` // rad/s, positive is CCW
	Impulse       float64        `json:"impulse"`        // click impulse magnitude
	Params        physics.Params `json:"params"`
}

// Session is one live hexagon simulation. The session owns the only mutable
// reference to the current Ball; the physics package itself is pure, so every
// tick swaps in a fresh snapshot under the lock.
type Session struct {
	Token     string
	CreatedAt time.Time

	mu           sync.RWMutex
	status       SessionStatus
	ball         physics.Ball
	center       physics.Vec2
	cfg          SessionConfig
	rotation     float64
	tick         uint64
	lastActivity time.Time
}

// NewSession creates a running session with the ball resting at the hexagon
// center.
func NewSession(token string, center physics.Vec2, cfg SessionConfig) *Session {
	now := time.Now()
	return &Session{
		Token:        token,
		CreatedAt:    now,
		status:       StatusRunning,
		ball:         physics.NewBall(center.X, center.Y, cfg.BallRadius),
		center:       center,
		cfg:          cfg,
		lastActivity: now,
	}
}

// Advance runs one simulation tick: integrate, detect, resolve, in that
// order. The hexagon rotation advances first so detection sees the wall
// positions the renderer will draw for this frame. dt is clamped to
// physics.MaxDeltaTime, which keeps a stalled host frame from tunneling the
// ball through a wall.
func (s *Session) Advance(dt float64) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dt > physics.MaxDeltaTime {
		dt = physics.MaxDeltaTime
	}

	var events []CollisionEvent
	if s.status == StatusRunning {
		s.tick++
		s.rotation = wrapAngle(s.rotation + s.cfg.RotationSpeed*dt)

		ball := physics.Step(s.ball, dt, s.cfg.Params)
		res := physics.CheckCollision(ball.Position, ball.Radius, s.center, s.cfg.HexRadius, s.rotation)
		if res.HasCollision {
			impact := ball.Velocity.Magnitude()
			ball = physics.Resolve(ball, res.WallStart, res.WallEnd, res.Distance, s.cfg.Params.BounceDamping)
			events = append(events, CollisionEvent{
				Tick:        s.tick,
				WallIndex:   wallIndex(res, s.center, s.cfg.HexRadius, s.rotation),
				ImpactSpeed: impact,
			})
		}
		s.ball = ball
	}

	return s.frameLocked(events)
}

func (s *Session) frameLocked(events []CollisionEvent) Frame {
	return Frame{
		Tick:      s.tick,
		Ball:      s.ball,
		Rotation:  s.rotation,
		HexCenter: s.center,
		HexRadius: s.cfg.HexRadius,
		Vertices:  physics.Vertices(s.center, s.cfg.HexRadius, s.rotation),
		Events:    events,
	}
}

// CurrentFrame returns a snapshot without advancing the simulation.
func (s *Session) CurrentFrame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameLocked(nil)
}

// ApplyImpulse kicks the ball away from a click position by the configured
// impulse magnitude. A click exactly on the ball center has no direction and
// is ignored.
func (s *Session) ApplyImpulse(click physics.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.ball.Position.Minus(click).Normalize()
	if dir.IsZero() {
		return
	}
	s.ball.Velocity = s.ball.Velocity.Plus(dir.Times(s.cfg.Impulse))
	s.lastActivity = time.Now()
}

// Reset puts the ball back at rest. With no position given it returns to the
// hexagon center; an explicit position is constrained inside first.
func (s *Session) Reset(pos *physics.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.center
	if pos != nil {
		p = physics.ConstrainInside(*pos, s.cfg.BallRadius, s.center, s.cfg.HexRadius, s.rotation)
	}
	s.ball = physics.NewBall(p.X, p.Y, s.cfg.BallRadius)
	s.lastActivity = time.Now()
}

// ConfigUpdate carries the fields a client may change mid-session. Nil
// means "leave as is".
type ConfigUpdate struct {
	RotationSpeed *float64 `json:"rotation_speed,omitempty"`
	HexRadius     *float64 `json:"hex_radius,omitempty"`
	BallRadius    *float64 `json:"ball_radius,omitempty"`
	Impulse       *float64 `json:"impulse,omitempty"`
}

// Configure applies a config update. Shrinking the hexagon or growing the
// ball can leave the ball outside the container, so the position is
// re-constrained afterwards.
func (s *Session) Configure(u ConfigUpdate) SessionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.RotationSpeed != nil {
		s.cfg.RotationSpeed = *u.RotationSpeed
	}
	if u.HexRadius != nil && *u.HexRadius > 0 {
		s.cfg.HexRadius = *u.HexRadius
	}
	if u.BallRadius != nil && *u.BallRadius > 0 {
		s.cfg.BallRadius = *u.BallRadius
		s.ball.Radius = *u.BallRadius
	}
	if u.Impulse != nil && *u.Impulse >= 0 {
		s.cfg.Impulse = *u.Impulse
	}

	s.ball.Position = physics.ConstrainInside(s.ball.Position, s.cfg.BallRadius, s.center, s.cfg.HexRadius, s.rotation)
	s.lastActivity = time.Now()
	return s.cfg
}

// Pause freezes the tick loop output; Resume continues it. A stopped
// session stays stopped.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusRunning {
		s.status = StatusPaused
		s.lastActivity = time.Now()
	}
}

func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusPaused {
		s.status = StatusRunning
		s.lastActivity = time.Now()
	}
}

func (s *Session) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusStopped
}

func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) Config() SessionConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Touch refreshes the idle clock, e.g. when a viewer connects.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// wrapAngle keeps the rotation bounded across long-running sessions.
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// wallIndex maps a collision result back to the edge number (0..5) so stats
// can say which wall was hit. Endpoints compare exactly because both sides
// computed them from the same Vertices call inputs.
func wallIndex(res physics.CollisionResult, center physics.Vec2, radius, rotation float64) int {
	edges := physics.Edges(physics.Vertices(center, radius, rotation))
	for i, e := range edges {
		if e.Start == res.WallStart && e.End == res.WallEnd {
			return i
		}
	}
	return -1
}
