package physics

import (
	"math"
	"testing"
)

func TestSphereContains(t *testing.T) {
	s := Sphere{Center: Vector3{10, 0, 0}, Radius: 18}

	tests := []struct {
		name  string
		point Vector3
		want  bool
	}{
		{"center", Vector3{10, 0, 0}, true},
		{"inside", Vector3{20, 5, 0}, true},
		{"on boundary", Vector3{28, 0, 0}, true},
		{"outside", Vector3{28.001, 0, 0}, false},
		{"far", Vector3{0, 0, 500}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestSphereOverlaps(t *testing.T) {
	a := Sphere{Center: Vector3{0, 0, 0}, Radius: 5}

	tests := []struct {
		name  string
		other Sphere
		want  bool
	}{
		{"same", Sphere{Radius: 1}, true},
		{"touching", Sphere{Center: Vector3{10, 0, 0}, Radius: 5}, false},
		{"intersecting", Sphere{Center: Vector3{0, 9, 0}, Radius: 5}, true},
		{"apart", Sphere{Center: Vector3{0, 0, 20}, Radius: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithinStrict(t *testing.T) {
	origin := Vector3{}
	if !WithinStrict(origin, Vector3{7.9, 0, 0}, 8) {
		t.Error("expected 7.9 to be within 8")
	}
	if WithinStrict(origin, Vector3{8, 0, 0}, 8) {
		t.Error("distance equal to the radius must not count")
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{-1, -1},
		{2*math.Pi + 0.5, 0.5},
		{-2*math.Pi - 0.5, -0.5},
	}

	for _, tt := range tests {
		if got := WrapAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{7, 1},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
