package physics

import (
	"math"
	"math/rand"
)

// Resolve reflects the ball off the wall segment it has penetrated and pushes
// it back out. distance is the ball center's distance to the wall as reported
// by CheckCollision; when distance exceeds the radius there is no contact and
// the ball is returned unchanged, so speculative calls are safe.
//
// The wall normal is oriented toward the ball center (midpoint dot test), so
// the result is independent of vertex winding. Reflection preserves speed;
// the damping factor then models the inelastic energy loss.
func Resolve(b Ball, wallStart, wallEnd Vec2, distance, damping float64) Ball {
	if distance > b.Radius {
		return b
	}

	normal := wallEnd.Minus(wallStart).LeftNormal().Normalize()
	if normal.IsZero() {
		// Degenerate wall segment; no surface to reflect off.
		return b
	}

	mid := wallStart.Plus(wallEnd).Times(0.5)
	if b.Position.Minus(mid).Dot(normal) < 0 {
		normal = normal.Invert()
	}

	return Ball{
		Position: b.Position.Plus(normal.Times(b.Radius - distance)),
		Velocity: b.Velocity.Reflect(normal).Times(damping),
		Radius:   b.Radius,
	}
}

// ConstrainInside pulls a point that has escaped the container back to a safe
// distance from the center (hexRadius - ballRadius - ConstraintMargin). It is
// meant for resize/reset handling, not the per-tick path. A point exactly on
// the center has no direction to pull along, so it is nudged at a random
// angle.
func ConstrainInside(p Vec2, ballRadius float64, hexCenter Vec2, hexRadius, rotation float64) Vec2 {
	safe := hexRadius - ballRadius - ConstraintMargin
	if safe < 0 {
		safe = 0
	}

	offset := p.Minus(hexCenter)
	dist := offset.Magnitude()
	if dist <= safe && Contains(p, hexCenter, hexRadius, rotation) {
		return p
	}
	if dist == 0 {
		angle := rand.Float64() * 2 * math.Pi
		offset = NewVec2(math.Cos(angle), math.Sin(angle))
	}
	return hexCenter.Plus(offset.Normalize().Times(safe))
}
