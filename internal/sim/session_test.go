package sim

import (
	"math"
	"testing"

	"github.com/spindrop/backend/internal/physics"
)

func testConfig() SessionConfig {
	return SessionConfig{
		HexRadius:     200,
		BallRadius:    10,
		RotationSpeed: 0.5,
		Impulse:       300,
		Params:        physics.DefaultParams(),
	}
}

func newTestSession() *Session {
	return NewSession("test", physics.NewVec2(400, 300), testConfig())
}

func TestAdvanceAppliesGravity(t *testing.T) {
	s := newTestSession()
	frame := s.Advance(1.0 / 60.0)

	if frame.Ball.Velocity.Y <= 0 {
		t.Errorf("velocity.Y = %v, want > 0 after one tick of gravity", frame.Ball.Velocity.Y)
	}
	if frame.Ball.Position.Y <= 300 {
		t.Errorf("position.Y = %v, want > 300", frame.Ball.Position.Y)
	}
	if frame.Tick != 1 {
		t.Errorf("tick = %d, want 1", frame.Tick)
	}
}

func TestAdvanceRotatesHexagon(t *testing.T) {
	s := newTestSession()
	a := s.Advance(1.0 / 60.0)
	b := s.Advance(1.0 / 60.0)

	want := 0.5 / 60.0
	if math.Abs(b.Rotation-a.Rotation-want) > 1e-12 {
		t.Errorf("rotation advanced by %v per tick, want %v", b.Rotation-a.Rotation, want)
	}
	if a.Vertices == b.Vertices {
		t.Error("vertices did not move with the rotation")
	}
}

func TestAdvanceClampsDeltaTime(t *testing.T) {
	// A stalled host frame hands us a huge dt; the session must clamp it so
	// the ball cannot tunnel. With clamped dt the first tick moves the ball
	// by at most g*dt*dt.
	s := newTestSession()
	frame := s.Advance(5.0)

	maxDrop := physics.Gravity * physics.MaxDeltaTime * physics.MaxDeltaTime
	if drop := frame.Ball.Position.Y - 300; drop > maxDrop+1e-9 {
		t.Errorf("ball dropped %v in one tick, clamp allows at most %v", drop, maxDrop)
	}
}

func TestBallStaysContained(t *testing.T) {
	// Long free-fall run with a spinning container: the ball bounces many
	// times and must never end a tick outside the hexagon's circumradius.
	s := newTestSession()
	s.ApplyImpulse(physics.NewVec2(380, 340)) // kick it off-center

	bounces := 0
	for i := 0; i < 6000; i++ {
		frame := s.Advance(1.0 / 60.0)
		bounces += len(frame.Events)

		dist := frame.Ball.Position.Minus(frame.HexCenter).Magnitude()
		if dist > frame.HexRadius+frame.Ball.Radius {
			t.Fatalf("tick %d: ball escaped, %v from center (radius %v)", i, dist, frame.HexRadius)
		}
	}
	if bounces == 0 {
		t.Error("expected at least one wall bounce over 100 simulated seconds")
	}
}

func TestCollisionEventCarriesImpactSpeed(t *testing.T) {
	s := newTestSession()
	s.ApplyImpulse(physics.NewVec2(400, 500)) // strong upward kick

	for i := 0; i < 6000; i++ {
		frame := s.Advance(1.0 / 60.0)
		for _, e := range frame.Events {
			if e.ImpactSpeed <= 0 {
				t.Fatalf("collision event with non-positive impact speed: %+v", e)
			}
			if e.WallIndex < 0 || e.WallIndex >= physics.HexagonSides {
				t.Fatalf("collision event with bad wall index: %+v", e)
			}
			return
		}
	}
	t.Fatal("no collision happened in 6000 ticks")
}

func TestCollisionEventTickMatchesFrame(t *testing.T) {
	s := newTestSession()
	s.ApplyImpulse(physics.NewVec2(400, 500))

	for i := 0; i < 6000; i++ {
		frame := s.Advance(1.0 / 60.0)
		for _, e := range frame.Events {
			if e.Tick != frame.Tick {
				t.Fatalf("event tick %d shipped in frame tick %d", e.Tick, frame.Tick)
			}
			return
		}
	}
	t.Fatal("no collision happened in 6000 ticks")
}

func TestApplyImpulsePushesAwayFromClick(t *testing.T) {
	s := newTestSession()
	s.ApplyImpulse(physics.NewVec2(300, 300)) // click left of the ball

	frame := s.CurrentFrame()
	if frame.Ball.Velocity.X <= 0 {
		t.Errorf("click left of ball should push it right, velocity=%+v", frame.Ball.Velocity)
	}
	if math.Abs(frame.Ball.Velocity.Magnitude()-300) > 1e-9 {
		t.Errorf("impulse magnitude = %v, want 300", frame.Ball.Velocity.Magnitude())
	}
}

func TestApplyImpulseOnBallCenterIgnored(t *testing.T) {
	s := newTestSession()
	s.ApplyImpulse(physics.NewVec2(400, 300)) // exactly on the ball

	if v := s.CurrentFrame().Ball.Velocity; !v.IsZero() {
		t.Errorf("impulse with no direction should be ignored, velocity=%+v", v)
	}
}

func TestConfigureShrinkReconstrainsBall(t *testing.T) {
	s := newTestSession()

	// Drive the ball toward a wall first
	s.ApplyImpulse(physics.NewVec2(200, 300))
	for i := 0; i < 120; i++ {
		s.Advance(1.0 / 60.0)
	}

	radius := 40.0
	s.Configure(ConfigUpdate{HexRadius: &radius})

	frame := s.CurrentFrame()
	dist := frame.Ball.Position.Minus(frame.HexCenter).Magnitude()
	if dist > radius {
		t.Errorf("ball %v from center after shrinking to %v", dist, radius)
	}
}

func TestPauseFreezesSimulation(t *testing.T) {
	s := newTestSession()
	s.Advance(1.0 / 60.0)
	before := s.CurrentFrame()

	s.Pause()
	after := s.Advance(1.0 / 60.0)
	if after.Tick != before.Tick || after.Ball != before.Ball {
		t.Errorf("paused session advanced: %+v → %+v", before, after)
	}

	s.Resume()
	resumed := s.Advance(1.0 / 60.0)
	if resumed.Tick != before.Tick+1 {
		t.Errorf("resume did not continue ticking: %d", resumed.Tick)
	}
}

func TestResetReturnsBallToCenter(t *testing.T) {
	s := newTestSession()
	s.ApplyImpulse(physics.NewVec2(200, 200))
	for i := 0; i < 60; i++ {
		s.Advance(1.0 / 60.0)
	}

	s.Reset(nil)
	frame := s.CurrentFrame()
	if frame.Ball.Position != frame.HexCenter {
		t.Errorf("reset ball at %+v, want center %+v", frame.Ball.Position, frame.HexCenter)
	}
	if !frame.Ball.Velocity.IsZero() {
		t.Errorf("reset ball still moving: %+v", frame.Ball.Velocity)
	}
}

func TestResetConstrainsExplicitPosition(t *testing.T) {
	s := newTestSession()
	outside := physics.NewVec2(2000, 300)
	s.Reset(&outside)

	frame := s.CurrentFrame()
	dist := frame.Ball.Position.Minus(frame.HexCenter).Magnitude()
	if dist > frame.HexRadius {
		t.Errorf("reset position not constrained inside: %v from center", dist)
	}
}

func TestRotationWraps(t *testing.T) {
	s := newTestSession()
	fast := 100.0
	s.Configure(ConfigUpdate{RotationSpeed: &fast})

	for i := 0; i < 1000; i++ {
		frame := s.Advance(1.0 / 60.0)
		if frame.Rotation < 0 || frame.Rotation >= 2*math.Pi {
			t.Fatalf("rotation %v left [0, 2π)", frame.Rotation)
		}
	}
}
