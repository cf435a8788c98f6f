package physics

// Default tuning constants for the hexagon simulation. The session layer can
// override gravity, friction and damping per session; these are the values a
// fresh session starts with.

const (
	HexagonSides = 6

	Gravity       = 500.0 // px/s², +y is down in render coordinates
	Friction      = 0.99  // per-tick multiplicative damping (not dt-scaled)
	MinVelocity   = 0.08  // below this, velocity snaps to zero
	BounceDamping = 0.85  // energy retained across a wall bounce

	// MaxDeltaTime is the largest tick the integrator accepts without the
	// ball risking a tunnel through a wall. Callers clamp dt to this before
	// calling Step.
	MaxDeltaTime = 1.0 / 60.0

	// ConstraintMargin keeps a constrained ball strictly off the wall.
	ConstraintMargin = 2.0

	DefaultBallRadius    = 10.0
	DefaultHexRadius     = 200.0
	DefaultRotationSpeed = 0.5 // rad/s
)
