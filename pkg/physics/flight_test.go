package physics

import (
	"math"
	"testing"
)

func TestUpdateFlight_ForwardThrustMatchesReplay(t *testing.T) {
	params := DefaultFlightParams()
	state := &FlightState{Position: Vector3{0, 0, 260}}
	controls := FlightControls{Thrust: Vector3{1, 0, 0}}

	dt := 0.016
	accel := params.Acceleration
	damping := params.Damping

	ref := 0.0
	for i := 0; i < 125; i++ {
		UpdateFlight(state, params, controls, dt)

		// velocity += a*dt, then damp; float64 conversions keep each step rounded.
		ref = float64(ref+float64(accel*dt)) * damping
		ref = math.Min(params.MaxSpeed, ref)
	}

	if math.Abs(state.Velocity.X()-ref) > 1e-12 {
		t.Fatalf("velocity x = %v, replay = %v", state.Velocity.X(), ref)
	}
	if state.Velocity.Y() != 0 || state.Velocity.Z() != 0 {
		t.Errorf("expected velocity along +X only, got %v", state.Velocity)
	}
	if got := state.Speed(); math.Abs(got-ref) > 1e-12 {
		t.Errorf("speed = %v, want %v", got, ref)
	}
	if ref < 13 || ref > 14 {
		t.Errorf("speed after 2s = %v, expected about 13.4", ref)
	}
	if state.Position.X() <= 0 {
		t.Errorf("expected ship to move forward, got %v", state.Position)
	}
}

func TestUpdateFlight_Deterministic(t *testing.T) {
	params := DefaultFlightParams()
	controls := []FlightControls{
		{Thrust: Vector3{1, 0, 1}, Yaw: 1},
		{Thrust: Vector3{1, 1, 0}, Pitch: 1, Boost: true},
		{Thrust: Vector3{-1, 0, 0}, Brake: true, Look: Vector2D{X: 12, Y: -4}},
		{},
	}

	run := func() FlightState {
		state := FlightState{}
		for i := 0; i < 400; i++ {
			UpdateFlight(&state, params, controls[i%len(controls)], 0.016)
		}
		return state
	}

	a, b := run(), run()
	if a != b {
		t.Errorf("two identical runs diverged: %+v vs %+v", a, b)
	}
}

func TestUpdateFlight_SpeedCaps(t *testing.T) {
	tests := []struct {
		name  string
		boost bool
		cap   float64
	}{
		{name: "normal", boost: false, cap: 220},
		{name: "boosted", boost: true, cap: 420},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultFlightParams()
			// No drag so the cap is the only thing limiting speed.
			params.Damping = 1
			state := &FlightState{}
			controls := FlightControls{Thrust: Vector3{1, 0, 0}, Boost: tt.boost}

			for i := 0; i < 2000; i++ {
				UpdateFlight(state, params, controls, 0.033)
				if state.Speed() > tt.cap+1e-9 {
					t.Fatalf("tick %d: speed %v exceeds cap %v", i, state.Speed(), tt.cap)
				}
			}
			if math.Abs(state.Speed()-tt.cap) > 1e-9 {
				t.Errorf("expected speed to saturate at %v, got %v", tt.cap, state.Speed())
			}
		})
	}
}

func TestUpdateFlight_ClampPreservesDirection(t *testing.T) {
	params := DefaultFlightParams()
	state := &FlightState{Velocity: Vector3{300, 400, 0}}

	UpdateFlight(state, params, FlightControls{}, 0.016)

	if math.Abs(state.Speed()-params.MaxSpeed) > 1e-9 {
		t.Fatalf("expected speed clamped to %v, got %v", params.MaxSpeed, state.Speed())
	}
	ratio := state.Velocity.Y() / state.Velocity.X()
	if math.Abs(ratio-4.0/3.0) > 1e-12 {
		t.Errorf("direction changed: ratio %v", ratio)
	}
}

func TestUpdateFlight_PitchClamped(t *testing.T) {
	params := DefaultFlightParams()
	inputs := []FlightControls{
		{Pitch: 1},
		{Pitch: -1},
		{Look: Vector2D{Y: -5000}},
		{Look: Vector2D{Y: 5000}},
	}

	for _, in := range inputs {
		state := &FlightState{}
		for i := 0; i < 600; i++ {
			UpdateFlight(state, params, in, 0.033)
			if state.Pitch < -params.PitchLimit || state.Pitch > params.PitchLimit {
				t.Fatalf("pitch %v out of range after tick %d", state.Pitch, i)
			}
		}
	}
}

func TestUpdateFlight_Rotation(t *testing.T) {
	tests := []struct {
		name      string
		controls  FlightControls
		deltaTime float64
		wantYaw   float64
		wantPitch float64
	}{
		{name: "Yaw left", controls: FlightControls{Yaw: 1}, deltaTime: 0.5, wantYaw: 0.6},
		{name: "Yaw right", controls: FlightControls{Yaw: -1}, deltaTime: 0.5, wantYaw: -0.6},
		{name: "Pitch up", controls: FlightControls{Pitch: 1}, deltaTime: 0.5, wantPitch: 0.48},
		{name: "No input", controls: FlightControls{}, deltaTime: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &FlightState{}
			UpdateFlight(state, DefaultFlightParams(), tt.controls, tt.deltaTime)
			if math.Abs(state.Yaw-tt.wantYaw) > 1e-9 {
				t.Errorf("yaw = %v, want %v", state.Yaw, tt.wantYaw)
			}
			if math.Abs(state.Pitch-tt.wantPitch) > 1e-9 {
				t.Errorf("pitch = %v, want %v", state.Pitch, tt.wantPitch)
			}
		})
	}
}

func TestUpdateFlight_LookResidualDecays(t *testing.T) {
	params := DefaultFlightParams()
	state := &FlightState{}

	UpdateFlight(state, params, FlightControls{Look: Vector2D{X: 100}}, 0.016)
	first := state.Yaw
	if first >= 0 {
		t.Fatalf("dragging right should turn right (negative yaw), got %v", first)
	}
	if math.Abs(state.LookResidual.X-35) > 1e-9 {
		t.Errorf("residual = %v, want 35", state.LookResidual.X)
	}

	for i := 0; i < 100; i++ {
		UpdateFlight(state, params, FlightControls{}, 0.016)
	}
	if !state.LookResidual.IsZero() {
		t.Errorf("residual should settle to zero, got %v", state.LookResidual)
	}
	// Total turn is the geometric sum 100 * sens / (1 - decay).
	want := -100 * params.LookSensitivity / (1 - params.LookDecay)
	if math.Abs(state.Yaw-want) > 1e-6 {
		t.Errorf("total yaw = %v, want about %v", state.Yaw, want)
	}
}

func TestUpdateFlight_Thrusting(t *testing.T) {
	params := DefaultFlightParams()
	tests := []struct {
		name   string
		thrust Vector3
		want   bool
	}{
		{name: "idle", thrust: Vector3{}, want: false},
		{name: "forward", thrust: Vector3{1, 0, 0}, want: true},
		{name: "cancelling", thrust: Vector3{1, 0, 0}.Add(Vector3{-1, 0, 0}), want: false},
		{name: "diagonal", thrust: Vector3{1, 1, 1}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &FlightState{}
			if got := UpdateFlight(state, params, FlightControls{Thrust: tt.thrust}, 0.016); got != tt.want {
				t.Errorf("thrusting = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdateFlight_DiagonalNotFaster(t *testing.T) {
	params := DefaultFlightParams()
	straight := &FlightState{}
	diagonal := &FlightState{}

	UpdateFlight(straight, params, FlightControls{Thrust: Vector3{1, 0, 0}}, 0.016)
	UpdateFlight(diagonal, params, FlightControls{Thrust: Vector3{1, 1, 1}}, 0.016)

	if math.Abs(straight.Speed()-diagonal.Speed()) > 1e-9 {
		t.Errorf("diagonal speed %v differs from straight %v", diagonal.Speed(), straight.Speed())
	}
}

func TestFlightState_Axes(t *testing.T) {
	state := FlightState{}
	if f := state.Forward(); f.Sub(AxisX).Len() > 1e-12 {
		t.Errorf("forward at rest = %v, want +X", f)
	}

	state.Yaw = math.Pi / 2
	if f := state.Forward(); f.Sub(Vector3{0, 0, -1}).Len() > 1e-9 {
		t.Errorf("forward after left yaw = %v, want -Z", f)
	}

	state = FlightState{Pitch: math.Pi / 4}
	f := state.Forward()
	if f.Y() <= 0 {
		t.Errorf("positive pitch should raise the nose, forward = %v", f)
	}
	if d := f.Dot(state.Right()); math.Abs(d) > 1e-12 {
		t.Errorf("forward and right not orthogonal: %v", d)
	}
	if d := f.Dot(state.Up()); math.Abs(d) > 1e-12 {
		t.Errorf("forward and up not orthogonal: %v", d)
	}
}
