package physics

import "math"

// Segment is one edge of the hexagon boundary.
type Segment struct {
	Start Vec2 `json:"start"`
	End   Vec2 `json:"end"`
}

// Vertices returns the 6 corners of a regular hexagon with the given center,
// circumradius and rotation. Vertex i sits at angle i*π/3 + rotation, so
// consecutive vertices trace the boundary without self-intersection. The
// hexagon rotates continuously, so vertices are recomputed per query rather
// than cached.
func Vertices(center Vec2, radius, rotation float64) [HexagonSides]Vec2 {
	var v [HexagonSides]Vec2
	for i := 0; i < HexagonSides; i++ {
		angle := float64(i)*(math.Pi/3) + rotation
		v[i] = Vec2{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}
	return v
}

// Edges connects consecutive vertices into segments, wrapping the last vertex
// back to the first.
func Edges(vertices [HexagonSides]Vec2) [HexagonSides]Segment {
	var e [HexagonSides]Segment
	for i := 0; i < HexagonSides; i++ {
		e[i] = Segment{Start: vertices[i], End: vertices[(i+1)%HexagonSides]}
	}
	return e
}

// PointToSegmentDistance returns the Euclidean distance from p to the closest
// point on the segment a→b. A zero-length segment degenerates to the distance
// to a.
func PointToSegmentDistance(p, a, b Vec2) float64 {
	ab := b.Minus(a)
	lenSq := ab.MagnitudeSquared()
	if lenSq == 0 {
		return p.Minus(a).Magnitude()
	}
	t := p.Minus(a).Dot(ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := a.Plus(ab.Times(t))
	return p.Minus(closest).Magnitude()
}

// Contains reports whether p lies inside the hexagon, using even-odd ray
// casting against the 6 edges. Membership queries only; the collision hot
// path uses CheckCollision instead.
func Contains(p, center Vec2, radius, rotation float64) bool {
	vertices := Vertices(center, radius, rotation)
	inside := false
	j := HexagonSides - 1
	for i := 0; i < HexagonSides; i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
