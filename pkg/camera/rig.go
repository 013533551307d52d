package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-orrery/pkg/physics"
)

// polarEpsilon keeps the rig off the poles where the azimuth is undefined.
const polarEpsilon = 1e-6

// OrbitRig is a damped orbit control around a target point.
type OrbitRig struct {
	Damping     float64
	MinDistance float64
	MaxDistance float64

	azimuthVel   float64
	elevationVel float64
}

// NewOrbitRig creates a rig with the given damping and distance limits.
func NewOrbitRig(damping, minDistance, maxDistance float64) OrbitRig {
	return OrbitRig{Damping: damping, MinDistance: minDistance, MaxDistance: maxDistance}
}

// Rotate queues an angular impulse in radians. Positive elevation raises
// the camera.
func (r *OrbitRig) Rotate(dAzimuth, dElevation float64) {
	r.azimuthVel += dAzimuth
	r.elevationVel += dElevation
}

// Moving reports whether queued rotation remains.
func (r *OrbitRig) Moving() bool {
	return math.Abs(r.azimuthVel) > polarEpsilon || math.Abs(r.elevationVel) > polarEpsilon
}

// Stop discards queued rotation.
func (r *OrbitRig) Stop() {
	r.azimuthVel, r.elevationVel = 0, 0
}

// Update applies one damped step of queued rotation and the distance
// limits, returning the new camera position.
func (r *OrbitRig) Update(position, target physics.Vector3) physics.Vector3 {
	offset := position.Sub(target)
	radius := offset.Len()
	if !r.Moving() && radius >= r.MinDistance && radius <= r.MaxDistance {
		r.Stop()
		return position
	}
	if radius == 0 {
		offset = fallbackBearing
		radius = 1
	}

	theta := math.Atan2(offset.X(), offset.Z())
	phi := math.Acos(mgl64.Clamp(offset.Y()/radius, -1, 1))

	theta += r.azimuthVel * r.Damping
	phi -= r.elevationVel * r.Damping
	phi = mgl64.Clamp(phi, polarEpsilon, math.Pi-polarEpsilon)
	radius = mgl64.Clamp(radius, r.MinDistance, r.MaxDistance)

	r.azimuthVel *= 1 - r.Damping
	r.elevationVel *= 1 - r.Damping
	if !r.Moving() {
		r.Stop()
	}

	sinPhi := math.Sin(phi)
	return target.Add(physics.Vector3{
		radius * sinPhi * math.Sin(theta),
		radius * math.Cos(phi),
		radius * sinPhi * math.Cos(theta),
	})
}

// ZoomDistance maps a slider in [1, 100] to a distance between the rig's
// max (slider 0) and min (slider 100).
func (r *OrbitRig) ZoomDistance(slider float64) float64 {
	t := slider / 100
	return r.MaxDistance + (r.MinDistance-r.MaxDistance)*t
}
