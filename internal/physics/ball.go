package physics

// Ball is an immutable snapshot of the ball's state. Each tick derives a new
// Ball from the previous one; nothing mutates a Ball in place.
type Ball struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
}

// NewBall returns a resting ball at the given position.
func NewBall(x, y, radius float64) Ball {
	return Ball{Position: NewVec2(x, y), Radius: radius}
}

// Params are the integrator inputs that sessions may tune at runtime.
type Params struct {
	Gravity       float64 `json:"gravity"`
	Friction      float64 `json:"friction"`
	MinVelocity   float64 `json:"min_velocity"`
	BounceDamping float64 `json:"bounce_damping"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		Gravity:       Gravity,
		Friction:      Friction,
		MinVelocity:   MinVelocity,
		BounceDamping: BounceDamping,
	}
}

// Step advances the ball by dt seconds using semi-implicit Euler: gravity
// accelerates the velocity first, friction damps it, and only then does the
// position move. Friction is applied once per tick regardless of dt, so the
// effective damping rate follows the tick frequency. The snap-to-zero
// threshold keeps a nearly-resting ball from jittering forever.
//
// dt must be clamped to MaxDeltaTime by the caller; Step does not defend
// against a stalled frame.
func Step(b Ball, dt float64, p Params) Ball {
	vel := b.Velocity.Plus(NewVec2(0, p.Gravity).Times(dt))
	vel = vel.Times(p.Friction)
	if vel.Magnitude() < p.MinVelocity {
		vel = Vec2{}
	}
	return Ball{
		Position: b.Position.Plus(vel.Times(dt)),
		Velocity: vel,
		Radius:   b.Radius,
	}
}
