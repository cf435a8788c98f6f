package physics

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func vecAlmostEqual(a, b Vec2) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y)
}

func TestVectorArithmetic(t *testing.T) {
	a := NewVec2(3, 4)
	b := NewVec2(-1, 2)

	if got := a.Plus(b); !vecAlmostEqual(got, NewVec2(2, 6)) {
		t.Errorf("Plus = %+v", got)
	}
	if got := a.Minus(b); !vecAlmostEqual(got, NewVec2(4, 2)) {
		t.Errorf("Minus = %+v", got)
	}
	if got := a.Times(2); !vecAlmostEqual(got, NewVec2(6, 8)) {
		t.Errorf("Times = %+v", got)
	}
	if got := a.Dot(b); !almostEqual(got, 5) {
		t.Errorf("Dot = %v", got)
	}
	if got := a.Magnitude(); !almostEqual(got, 5) {
		t.Errorf("Magnitude = %v", got)
	}
}

func TestNormalizeZeroVectorIsZero(t *testing.T) {
	got := Vec2{}.Normalize()
	if !got.IsZero() {
		t.Errorf("Normalize of zero vector = %+v, want zero", got)
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	vectors := []Vec2{
		NewVec2(3, 4),
		NewVec2(-0.001, 0.002),
		NewVec2(1000000, -2500000),
	}
	for _, v := range vectors {
		n := v.Normalize()
		if !almostEqual(n.Magnitude(), 1) {
			t.Errorf("Normalize(%+v).Magnitude = %v, want 1", v, n.Magnitude())
		}
	}
}

func TestRotateCounterClockwise(t *testing.T) {
	// +x rotated by +90° lands on +y (CCW for positive angles)
	got := NewVec2(1, 0).Rotate(math.Pi / 2)
	if !vecAlmostEqual(got, NewVec2(0, 1)) {
		t.Errorf("Rotate(π/2) = %+v, want (0,1)", got)
	}

	// Full turn is identity
	v := NewVec2(2.5, -7.25)
	if got := v.Rotate(2 * math.Pi); !vecAlmostEqual(got, v) {
		t.Errorf("Rotate(2π) = %+v, want %+v", got, v)
	}

	// Rotation preserves magnitude
	if got := v.Rotate(1.234).Magnitude(); !almostEqual(got, v.Magnitude()) {
		t.Errorf("Rotate changed magnitude: %v != %v", got, v.Magnitude())
	}
}

func TestReflect(t *testing.T) {
	tests := []struct {
		name     string
		incident Vec2
		normal   Vec2
		want     Vec2
	}{
		{"head-on into floor", NewVec2(0, 5), NewVec2(0, -1), NewVec2(0, -5)},
		{"45 degrees off floor", NewVec2(3, 3), NewVec2(0, -1), NewVec2(3, -3)},
		{"unnormalized normal accepted", NewVec2(3, 3), NewVec2(0, -42), NewVec2(3, -3)},
		{"grazing along wall unchanged", NewVec2(7, 0), NewVec2(0, 1), NewVec2(7, 0)},
		{"zero normal is identity", NewVec2(1, 2), Vec2{}, NewVec2(1, 2)},
	}

	for _, tt := range tests {
		if got := tt.incident.Reflect(tt.normal); !vecAlmostEqual(got, tt.want) {
			t.Errorf("%s: Reflect = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestReflectPreservesMagnitude(t *testing.T) {
	v := NewVec2(-12.5, 8.75)
	n := NewVec2(0.3, 0.7)
	if got := v.Reflect(n).Magnitude(); !almostEqual(got, v.Magnitude()) {
		t.Errorf("Reflect changed magnitude: %v != %v", got, v.Magnitude())
	}
}
