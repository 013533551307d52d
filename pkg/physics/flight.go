package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// FlightParams tunes the ship flight model.
type FlightParams struct {
	YawRate           float64 // rad/s for discrete yaw input
	PitchRate         float64 // rad/s for discrete pitch input
	LookSensitivity   float64 // radians per unit of pointer drag
	LookDecay         float64 // residual drag kept after each tick
	PitchLimit        float64 // radians, symmetric
	Acceleration      float64
	BoostAcceleration float64
	Damping           float64 // velocity multiplier per tick
	BrakeDamping      float64
	MaxSpeed          float64
	BoostMaxSpeed     float64
}

// DefaultFlightParams returns the tuning used by the game.
func DefaultFlightParams() FlightParams {
	return FlightParams{
		YawRate:           1.2,
		PitchRate:         0.96,
		LookSensitivity:   0.004,
		LookDecay:         0.35,
		PitchLimit:        1.1,
		Acceleration:      35,
		BoostAcceleration: 70,
		Damping:           0.96,
		BrakeDamping:      0.86,
		MaxSpeed:          220,
		BoostMaxSpeed:     420,
	}
}

// FlightControls is one tick of control input expressed in ship-local terms.
type FlightControls struct {
	// Thrust holds the desired direction: X forward, Y up, Z right.
	Thrust Vector3
	// Yaw is +1 to turn left, -1 to turn right.
	Yaw float64
	// Pitch is +1 to raise the nose, -1 to lower it.
	Pitch float64
	// Look is the pointer drag delta received this tick.
	Look  Vector2D
	Boost bool
	Brake bool
}

// FlightState tracks ship physics
type FlightState struct {
	Position     Vector3
	Velocity     Vector3
	Yaw          float64 // radians about world up
	Pitch        float64 // radians about the ship's lateral axis
	LookResidual Vector2D
}

// Orientation returns the ship rotation: yaw about world up first, then
// pitch about the yawed lateral axis.
func (s FlightState) Orientation() mgl64.Quat {
	return mgl64.QuatRotate(s.Yaw, AxisY).Mul(mgl64.QuatRotate(s.Pitch, AxisZ))
}

// Forward returns the nose direction in world space.
func (s FlightState) Forward() Vector3 {
	return s.Orientation().Rotate(AxisX)
}

// Up returns the ship's local up direction in world space.
func (s FlightState) Up() Vector3 {
	return s.Orientation().Rotate(AxisY)
}

// Right returns the ship's local right direction in world space.
func (s FlightState) Right() Vector3 {
	return s.Orientation().Rotate(AxisZ)
}

// Speed returns the magnitude of the velocity.
func (s FlightState) Speed() float64 {
	return s.Velocity.Len()
}

// lookEpsilon is the residual drag below which the residual is dropped.
const lookEpsilon = 1e-6

// UpdateFlight integrates one tick of the flight model and reports whether
// any thrust was requested.
func UpdateFlight(state *FlightState, params FlightParams, controls FlightControls, deltaTime float64) bool {
	updateAttitude(state, params, controls, deltaTime)

	forward, up, right := state.Forward(), state.Up(), state.Right()

	accel := forward.Mul(controls.Thrust.X()).
		Add(up.Mul(controls.Thrust.Y())).
		Add(right.Mul(controls.Thrust.Z()))

	thrusting := accel.LenSqr() > 0
	if thrusting {
		magnitude := params.Acceleration
		if controls.Boost {
			magnitude = params.BoostAcceleration
		}
		accel = accel.Normalize().Mul(magnitude)
	}

	// Accelerate first, then damp.
	state.Velocity = state.Velocity.Add(accel.Mul(deltaTime))
	damping := params.Damping
	if controls.Brake {
		damping = params.BrakeDamping
	}
	state.Velocity = state.Velocity.Mul(damping)

	maxSpeed := params.MaxSpeed
	if controls.Boost {
		maxSpeed = params.BoostMaxSpeed
	}
	state.Velocity = ClampLength(state.Velocity, maxSpeed)

	state.Position = state.Position.Add(state.Velocity.Mul(deltaTime))

	return thrusting
}

// updateAttitude applies discrete turn input and the decaying drag residual,
// then clamps pitch.
func updateAttitude(state *FlightState, params FlightParams, controls FlightControls, deltaTime float64) {
	state.Yaw += controls.Yaw * params.YawRate * deltaTime
	state.Pitch += controls.Pitch * params.PitchRate * deltaTime

	state.LookResidual = state.LookResidual.Add(controls.Look)
	if !state.LookResidual.IsZero() {
		state.Yaw -= state.LookResidual.X * params.LookSensitivity
		state.Pitch -= state.LookResidual.Y * params.LookSensitivity
		state.LookResidual = state.LookResidual.Scale(params.LookDecay)
		if state.LookResidual.LengthSquared() < lookEpsilon*lookEpsilon {
			state.LookResidual = Vector2D{}
		}
	}

	state.Pitch = mgl64.Clamp(state.Pitch, -params.PitchLimit, params.PitchLimit)
	state.Yaw = WrapAngle(state.Yaw)
}
