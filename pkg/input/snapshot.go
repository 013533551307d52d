// Package input turns device events into one immutable Snapshot per tick.
package input

import (
	"github.com/opd-ai/go-orrery/pkg/physics"
	"github.com/opd-ai/go-orrery/pkg/validation"
)

// Snapshot is the control state sampled for a single tick.
type Snapshot struct {
	Forward    bool
	Back       bool
	Left       bool
	Right      bool
	Up         bool
	Down       bool
	YawLeft    bool
	YawRight   bool
	PitchUp    bool
	PitchDown  bool
	Boost      bool
	Brake      bool
	ToggleView bool

	// Joystick is the virtual stick displacement, each axis in [-1, 1].
	// Negative Y pushes forward.
	Joystick physics.Vector2D
	// Look is the pointer drag accumulated since the previous tick.
	Look physics.Vector2D
}

// Sanitized returns a copy with the analog axes clamped and the joystick
// limited to unit length.
func (s Snapshot) Sanitized() Snapshot {
	s.Joystick = physics.Vector2D{
		X: validation.ClampAxis(s.Joystick.X),
		Y: validation.ClampAxis(s.Joystick.Y),
	}.ClampLength(1)
	s.Look = physics.Vector2D{
		X: validation.ClampLookDelta(s.Look.X),
		Y: validation.ClampLookDelta(s.Look.Y),
	}
	return s
}

// Thrust returns the requested thrust direction in ship-local terms:
// X forward, Y up, Z right. It is not normalized.
func (s Snapshot) Thrust() physics.Vector3 {
	return physics.Vector3{
		axis(s.Forward, s.Back) - s.Joystick.Y,
		axis(s.Up, s.Down),
		axis(s.Right, s.Left) + s.Joystick.X,
	}
}

// Yaw returns +1 for a left turn, -1 for a right turn.
func (s Snapshot) Yaw() float64 {
	return axis(s.YawLeft, s.YawRight)
}

// Pitch returns +1 to raise the nose, -1 to lower it.
func (s Snapshot) Pitch() float64 {
	return axis(s.PitchUp, s.PitchDown)
}

// FlightControls converts the snapshot into flight model input.
func (s Snapshot) FlightControls() physics.FlightControls {
	return physics.FlightControls{
		Thrust: s.Thrust(),
		Yaw:    s.Yaw(),
		Pitch:  s.Pitch(),
		Look:   s.Look,
		Boost:  s.Boost,
		Brake:  s.Brake,
	}
}

func axis(positive, negative bool) float64 {
	v := 0.0
	if positive {
		v++
	}
	if negative {
		v--
	}
	return v
}
