// pkg/physics/proximity.go
package physics

import "math"

// Sphere is a spherical proximity volume.
type Sphere struct {
	Center Vector3
	Radius float64
}

// Contains reports whether point lies inside or on the sphere.
func (s Sphere) Contains(point Vector3) bool {
	return Distance(s.Center, point) <= s.Radius
}

// Overlaps reports whether two spheres intersect.
func (s Sphere) Overlaps(other Sphere) bool {
	return Distance(s.Center, other.Center) < s.Radius+other.Radius
}

// WithinStrict reports whether a and b are closer than radius.
func WithinStrict(a, b Vector3, radius float64) bool {
	return Distance(a, b) < radius
}

// WrapAngle folds an angle into (-2π, 2π) while keeping its sign.
func WrapAngle(angle float64) float64 {
	return math.Mod(angle, 2*math.Pi)
}

// Clamp01 limits v to [0, 1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
