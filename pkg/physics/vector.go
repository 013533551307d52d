// pkg/physics/vector.go
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector3 is a 3D world-space vector. It aliases mgl64.Vec3 so the
// mathgl operations (Add, Sub, Mul, Len, Normalize, Cross) are available.
type Vector3 = mgl64.Vec3

// Axis directions in a right-handed, Y-up world.
var (
	AxisX   = Vector3{1, 0, 0}
	AxisY   = Vector3{0, 1, 0}
	AxisZ   = Vector3{0, 0, 1}
	WorldUp = AxisY
)

// Lerp linearly interpolates between a and b by t (t is not clamped).
func Lerp(a, b Vector3, t float64) Vector3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Approach moves current toward target by factor, the exponential
// smoothing step used by the follow camera.
func Approach(current, target Vector3, factor float64) Vector3 {
	return current.Add(target.Sub(current).Mul(factor))
}

// Distance returns the distance between two points.
func Distance(a, b Vector3) float64 {
	return a.Sub(b).Len()
}

// Normalize returns a unit vector in the same direction, or the zero
// vector when v has no length.
func Normalize(v Vector3) Vector3 {
	if v.LenSqr() == 0 {
		return Vector3{}
	}
	return v.Normalize()
}

// ClampLength scales v down to max when it is longer, preserving direction.
func ClampLength(v Vector3, max float64) Vector3 {
	if v.Len() > max {
		return v.Normalize().Mul(max)
	}
	return v
}

// IsFinite reports whether all components are finite numbers.
func IsFinite(v Vector3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Vector2D represents a 2D vector, used for screen-space input axes
// such as joystick displacement and pointer drag deltas.
type Vector2D struct {
	X float64
	Y float64
}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// IsZero reports whether both components are zero.
func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// ClampLength limits the magnitude of the vector to max.
func (v Vector2D) ClampLength(max float64) Vector2D {
	length := v.Length()
	if length <= max || length == 0 {
		return v
	}
	return v.Scale(max / length)
}
