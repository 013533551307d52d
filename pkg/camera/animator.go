// Package camera drives the viewpoint: eased focus transitions, the damped
// orbit rig and the ship follow modes.
package camera

import (
	"github.com/opd-ai/go-orrery/pkg/physics"
)

// Transition is an in-flight camera move.
type Transition struct {
	T            float64 // elapsed fraction in [0, 1]
	Duration     float64
	FromPosition physics.Vector3
	ToPosition   physics.Vector3
	FromTarget   physics.Vector3
	ToTarget     physics.Vector3
}

// Animator holds at most one transition. The zero value is idle.
type Animator struct {
	current *Transition
}

// Idle reports whether no transition is in flight.
func (a *Animator) Idle() bool {
	return a.current == nil
}

// InProgress returns a copy of the running transition.
func (a *Animator) InProgress() (Transition, bool) {
	if a.current == nil {
		return Transition{}, false
	}
	return *a.current, true
}

// Start replaces any running transition.
func (a *Animator) Start(tr Transition) {
	tr.T = 0
	a.current = &tr
}

// Cancel drops the running transition, leaving the camera where it is.
func (a *Animator) Cancel() {
	a.current = nil
}

// Step advances the transition and returns the interpolated position and
// target. ok is false when the animator was idle. The animator returns to
// idle once the fraction reaches 1.
func (a *Animator) Step(deltaTime float64) (position, target physics.Vector3, ok bool) {
	tr := a.current
	if tr == nil {
		return physics.Vector3{}, physics.Vector3{}, false
	}

	if tr.Duration <= 0 {
		tr.T = 1
	} else {
		tr.T += deltaTime / tr.Duration
	}
	t := physics.Clamp01(tr.T)
	tr.T = t

	k := EaseInOutQuad(t)
	position = physics.Lerp(tr.FromPosition, tr.ToPosition, k)
	target = physics.Lerp(tr.FromTarget, tr.ToTarget, k)

	if t >= 1 {
		position, target = tr.ToPosition, tr.ToTarget
		a.current = nil
	}
	return position, target, true
}

// EaseInOutQuad maps t in [0, 1] onto a symmetric ease curve.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}
