package camera

import (
	"math"

	"github.com/opd-ai/go-orrery/pkg/physics"
)

// View selects the ship follow mode.
type View int

const (
	ThirdPerson View = iota
	FirstPerson
)

func (v View) String() string {
	if v == FirstPerson {
		return "first"
	}
	return "third"
}

// Toggle returns the other view.
func (v View) Toggle() View {
	if v == FirstPerson {
		return ThirdPerson
	}
	return FirstPerson
}

// fallbackBearing is used when the camera sits exactly on its target.
var fallbackBearing = physics.Vector3{0, 80, 220}.Normalize()

// Params tunes the camera.
type Params struct {
	StartPosition physics.Vector3

	TrackFactor float64

	FocusDistanceScale float64
	FocusMinDistance   float64
	FocusDuration      float64
	ResetDistance      float64
	ResetDuration      float64

	ThirdPersonBack      float64
	ThirdPersonHeight    float64
	ThirdPersonFactor    float64
	ThirdPersonLookAhead float64

	FirstPersonForward   float64
	FirstPersonHeight    float64
	FirstPersonFactor    float64
	FirstPersonLookAhead float64

	RigDamping  float64
	MinDistance float64
	MaxDistance float64
}

// DefaultParams returns the standard camera tuning.
func DefaultParams() Params {
	return Params{
		StartPosition: physics.Vector3{0, 80, 220},

		TrackFactor: 0.12,

		FocusDistanceScale: 12,
		FocusMinDistance:   35,
		FocusDuration:      0.8,
		ResetDistance:      220,
		ResetDuration:      0.9,

		ThirdPersonBack:      30,
		ThirdPersonHeight:    10,
		ThirdPersonFactor:    0.12,
		ThirdPersonLookAhead: 30,

		FirstPersonForward:   2,
		FirstPersonHeight:    1.2,
		FirstPersonFactor:    0.25,
		FirstPersonLookAhead: 60,

		RigDamping:  0.06,
		MinDistance: 10,
		MaxDistance: 5000,
	}
}

// Controller owns the camera pose. Target is the orbit pivot in orbit mode
// and the look-at point in ship mode.
type Controller struct {
	Position physics.Vector3
	Target   physics.Vector3
	View     View
	Rig      OrbitRig

	params   Params
	animator Animator
}

// NewController creates a camera at the configured start, looking at the
// origin.
func NewController(params Params) *Controller {
	return &Controller{
		Position: params.StartPosition,
		params:   params,
		Rig:      NewOrbitRig(params.RigDamping, params.MinDistance, params.MaxDistance),
	}
}

// Params returns the tuning the controller was built with.
func (c *Controller) Params() Params {
	return c.params
}

// Animating reports whether a transition is in flight.
func (c *Controller) Animating() bool {
	return !c.animator.Idle()
}

// Transition returns the running transition, if any.
func (c *Controller) Transition() (Transition, bool) {
	return c.animator.InProgress()
}

// AnimateTo starts a transition that keeps the current bearing and ends
// distance away from point, looking at it.
func (c *Controller) AnimateTo(point physics.Vector3, distance, duration float64) {
	bearing := c.Position.Sub(c.Target)
	if bearing.LenSqr() == 0 {
		bearing = fallbackBearing
	} else {
		bearing = bearing.Normalize()
	}

	c.animator.Start(Transition{
		Duration:     duration,
		FromPosition: c.Position,
		ToPosition:   point.Add(bearing.Mul(distance)),
		FromTarget:   c.Target,
		ToTarget:     point,
	})
}

// FocusDistance returns the viewing distance for a body of the given radius.
func (c *Controller) FocusDistance(radius float64) float64 {
	return math.Max(radius*c.params.FocusDistanceScale, c.params.FocusMinDistance)
}

// Focus animates toward a body at point with the given radius.
func (c *Controller) Focus(point physics.Vector3, radius float64) {
	c.AnimateTo(point, c.FocusDistance(radius), c.params.FocusDuration)
}

// Reset animates back to the origin overview.
func (c *Controller) Reset() {
	c.AnimateTo(physics.Vector3{}, c.params.ResetDistance, c.params.ResetDuration)
}

// Cancel stops any transition and queued rig rotation.
func (c *Controller) Cancel() {
	c.animator.Cancel()
	c.Rig.Stop()
}

// Step advances the transition, if any.
func (c *Controller) Step(deltaTime float64) {
	if pos, target, ok := c.animator.Step(deltaTime); ok {
		c.Position, c.Target = pos, target
	}
}

// UpdateRig applies the orbit rig. Only meaningful in orbit mode.
func (c *Controller) UpdateRig() {
	c.Position = c.Rig.Update(c.Position, c.Target)
}

// Rotate queues orbit rig rotation.
func (c *Controller) Rotate(dAzimuth, dElevation float64) {
	c.Rig.Rotate(dAzimuth, dElevation)
}

// SetZoom places the camera along its current bearing at the distance the
// slider maps to.
func (c *Controller) SetZoom(slider float64) {
	bearing := c.Position.Sub(c.Target)
	if bearing.LenSqr() == 0 {
		bearing = fallbackBearing
	} else {
		bearing = bearing.Normalize()
	}
	c.Position = c.Target.Add(bearing.Mul(c.Rig.ZoomDistance(slider)))
}

// SnapTarget moves the orbit pivot without animating.
func (c *Controller) SnapTarget(target physics.Vector3) {
	c.Target = target
}

// Track eases the orbit pivot toward a moving body. It does nothing while a
// transition is in flight.
func (c *Controller) Track(body physics.Vector3) {
	if c.Animating() {
		return
	}
	c.Target = physics.Approach(c.Target, body, c.params.TrackFactor)
}

// Follow eases the camera behind or inside the ship.
func (c *Controller) Follow(ship, forward physics.Vector3) {
	p := c.params
	var desired, lookAt physics.Vector3
	var factor float64

	switch c.View {
	case FirstPerson:
		desired = ship.Add(forward.Mul(p.FirstPersonForward)).Add(physics.Vector3{0, p.FirstPersonHeight, 0})
		lookAt = ship.Add(forward.Mul(p.FirstPersonLookAhead))
		factor = p.FirstPersonFactor
	default:
		desired = ship.Sub(forward.Mul(p.ThirdPersonBack)).Add(physics.WorldUp.Mul(p.ThirdPersonHeight))
		lookAt = ship.Add(forward.Mul(p.ThirdPersonLookAhead))
		factor = p.ThirdPersonFactor
	}

	c.Position = physics.Approach(c.Position, desired, factor)
	c.Target = lookAt
}

// ToggleView switches between third and first person.
func (c *Controller) ToggleView() View {
	c.View = c.View.Toggle()
	return c.View
}
