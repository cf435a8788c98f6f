package physics

// CollisionResult reports the ball's relationship to the nearest hexagon
// wall. Distance and the wall endpoints are always populated so callers can
// use them for diagnostics even when no collision occurred.
type CollisionResult struct {
	HasCollision bool    `json:"has_collision"`
	Distance     float64 `json:"distance"`
	WallStart    Vec2    `json:"wall_start"`
	WallEnd      Vec2    `json:"wall_end"`
}

// CheckCollision finds the hexagon edge nearest to ballPos and reports a
// collision when the ball's radius has reached or crossed it. The walls are
// a containment boundary: the ball lives inside the hexagon, so touching a
// wall from within counts. Ties between edges resolve to the first edge in
// vertex order.
func CheckCollision(ballPos Vec2, ballRadius float64, hexCenter Vec2, hexRadius, rotation float64) CollisionResult {
	edges := Edges(Vertices(hexCenter, hexRadius, rotation))

	nearest := edges[0]
	minDist := PointToSegmentDistance(ballPos, nearest.Start, nearest.End)
	for _, e := range edges[1:] {
		if d := PointToSegmentDistance(ballPos, e.Start, e.End); d < minDist {
			minDist = d
			nearest = e
		}
	}

	return CollisionResult{
		HasCollision: minDist <= ballRadius,
		Distance:     minDist,
		WallStart:    nearest.Start,
		WallEnd:      nearest.End,
	}
}
