package camera

import (
	"math"
	"testing"

	"github.com/opd-ai/go-orrery/pkg/physics"
)

const eps = 1e-9

func near(a, b physics.Vector3) bool {
	return a.Sub(b).Len() < eps
}

func stepFor(c *Controller, seconds, dt float64) {
	for elapsed := 0.0; elapsed < seconds-1e-12; elapsed += dt {
		c.Step(dt)
	}
}

func TestEaseInOutQuad(t *testing.T) {
	tests := []struct {
		t, want float64
	}{
		{0, 0},
		{0.25, 0.125},
		{0.5, 0.5},
		{0.75, 0.875},
		{1, 1},
	}

	for _, tt := range tests {
		if got := EaseInOutQuad(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EaseInOutQuad(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestAnimator_IdleByDefault(t *testing.T) {
	var a Animator
	if !a.Idle() {
		t.Fatal("zero animator should be idle")
	}
	if _, _, ok := a.Step(0.016); ok {
		t.Error("idle animator should not produce a pose")
	}
	if _, ok := a.InProgress(); ok {
		t.Error("idle animator has no transition")
	}
}

func TestAnimator_ReachesEndAndGoesIdle(t *testing.T) {
	var a Animator
	a.Start(Transition{
		Duration:     0.8,
		FromPosition: physics.Vector3{0, 80, 220},
		ToPosition:   physics.Vector3{10, 0, 0},
		FromTarget:   physics.Vector3{},
		ToTarget:     physics.Vector3{5, 0, 0},
	})

	var pos, target physics.Vector3
	for i := 0; i < 100 && !a.Idle(); i++ {
		pos, target, _ = a.Step(0.016)
	}

	if !a.Idle() {
		t.Fatal("transition should finish")
	}
	if pos != (physics.Vector3{10, 0, 0}) || target != (physics.Vector3{5, 0, 0}) {
		t.Errorf("end pose = %v / %v", pos, target)
	}
}

func TestAnimator_Midpoint(t *testing.T) {
	var a Animator
	a.Start(Transition{
		Duration:     1,
		FromPosition: physics.Vector3{0, 0, 0},
		ToPosition:   physics.Vector3{100, 0, 0},
	})

	pos, _, ok := a.Step(0.5)
	if !ok {
		t.Fatal("expected a pose")
	}
	if math.Abs(pos.X()-50) > eps {
		t.Errorf("midpoint x = %v, want 50", pos.X())
	}
	tr, ok := a.InProgress()
	if !ok || math.Abs(tr.T-0.5) > eps {
		t.Errorf("fraction = %v, want 0.5", tr.T)
	}
}

func TestAnimator_NonPositiveDurationCompletesNextStep(t *testing.T) {
	for _, d := range []float64{0, -1} {
		var a Animator
		a.Start(Transition{Duration: d, ToPosition: physics.Vector3{1, 2, 3}})

		pos, _, ok := a.Step(0)
		if !ok || pos != (physics.Vector3{1, 2, 3}) {
			t.Errorf("duration %v: pose = %v ok=%v", d, pos, ok)
		}
		if !a.Idle() {
			t.Errorf("duration %v: animator should be idle", d)
		}
	}
}

func TestController_ResetScenario(t *testing.T) {
	tests := []struct {
		name     string
		position physics.Vector3
		target   physics.Vector3
	}{
		{"default start", physics.Vector3{0, 80, 220}, physics.Vector3{}},
		{"looking at a planet", physics.Vector3{60, 20, 10}, physics.Vector3{50, 0, 0}},
		{"camera on target", physics.Vector3{5, 5, 5}, physics.Vector3{5, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(DefaultParams())
			c.Position, c.Target = tt.position, tt.target

			bearing := tt.position.Sub(tt.target)
			if bearing.LenSqr() == 0 {
				bearing = fallbackBearing
			}
			want := bearing.Normalize().Mul(220)

			c.Reset()
			stepFor(c, 1.0, 0.016)

			if c.Animating() {
				t.Fatal("reset transition should be finished")
			}
			if !near(c.Target, physics.Vector3{}) {
				t.Errorf("target = %v, want origin", c.Target)
			}
			if !near(c.Position, want) {
				t.Errorf("position = %v, want %v", c.Position, want)
			}
			if math.Abs(c.Position.Len()-220) > 1e-6 {
				t.Errorf("distance = %v, want 220", c.Position.Len())
			}
		})
	}
}

func TestController_FocusDistance(t *testing.T) {
	c := NewController(DefaultParams())
	tests := []struct {
		radius, want float64
	}{
		{2.1, 35},
		{3.4, 40.8},
		{9.6, 115.2},
	}

	for _, tt := range tests {
		if got := c.FocusDistance(tt.radius); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("FocusDistance(%v) = %v, want %v", tt.radius, got, tt.want)
		}
	}
}

func TestController_NewRequestReplacesOld(t *testing.T) {
	c := NewController(DefaultParams())
	c.Focus(physics.Vector3{120, 0, 0}, 9.6)
	stepFor(c, 0.4, 0.016)

	mid := c.Position
	c.Focus(physics.Vector3{0, 0, -50}, 3.4)

	tr, ok := c.Transition()
	if !ok {
		t.Fatal("expected a transition in flight")
	}
	if tr.FromPosition != mid {
		t.Errorf("new transition should start from the current pose %v, got %v", mid, tr.FromPosition)
	}
	if tr.ToTarget != (physics.Vector3{0, 0, -50}) || tr.Duration != 0.8 {
		t.Errorf("unexpected transition %+v", tr)
	}
}

func TestController_TrackSkippedWhileAnimating(t *testing.T) {
	c := NewController(DefaultParams())
	c.Focus(physics.Vector3{50, 0, 0}, 3.4)
	before := c.Target
	c.Track(physics.Vector3{0, 0, 500})
	if c.Target != before {
		t.Error("tracking must not move the target during a transition")
	}

	stepFor(c, 1, 0.016)
	c.Track(physics.Vector3{60, 0, 0})
	if math.Abs(c.Target.X()-(50+10*0.12)) > 1e-9 {
		t.Errorf("tracked target x = %v", c.Target.X())
	}
}

func TestController_Follow(t *testing.T) {
	ship := physics.Vector3{0, 0, 260}
	forward := physics.AxisX

	tests := []struct {
		name       string
		view       View
		wantPos    physics.Vector3
		wantTarget physics.Vector3
	}{
		{
			name:       "third person",
			view:       ThirdPerson,
			wantPos:    physics.Vector3{-30, 10, 260},
			wantTarget: physics.Vector3{30, 0, 260},
		},
		{
			name:       "first person",
			view:       FirstPerson,
			wantPos:    physics.Vector3{2, 1.2, 260},
			wantTarget: physics.Vector3{60, 0, 260},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(DefaultParams())
			c.View = tt.view
			for i := 0; i < 500; i++ {
				c.Follow(ship, forward)
			}
			if c.Position.Sub(tt.wantPos).Len() > 1e-6 {
				t.Errorf("position = %v, want %v", c.Position, tt.wantPos)
			}
			if !near(c.Target, tt.wantTarget) {
				t.Errorf("look-at = %v, want %v", c.Target, tt.wantTarget)
			}
		})
	}
}

func TestController_FollowSmoothing(t *testing.T) {
	c := NewController(DefaultParams())
	c.Position = physics.Vector3{}
	c.Follow(physics.Vector3{30, -10, 0}, physics.AxisX)

	// Desired third-person pose sits at the origin here.
	if !near(c.Position, physics.Vector3{0, 0, 0}) {
		t.Errorf("position = %v", c.Position)
	}

	c.Position = physics.Vector3{100, 0, 0}
	c.Follow(physics.Vector3{30, -10, 0}, physics.AxisX)
	if math.Abs(c.Position.X()-(100+(0-100)*0.12)) > eps {
		t.Errorf("smoothed x = %v", c.Position.X())
	}
}

func TestController_ToggleView(t *testing.T) {
	c := NewController(DefaultParams())
	if c.View != ThirdPerson || c.View.String() != "third" {
		t.Fatal("default view should be third person")
	}
	if got := c.ToggleView(); got != FirstPerson || got.String() != "first" {
		t.Errorf("toggle = %v", got)
	}
	if got := c.ToggleView(); got != ThirdPerson {
		t.Errorf("second toggle = %v", got)
	}
}

func TestController_SetZoom(t *testing.T) {
	tests := []struct {
		slider, want float64
	}{
		{100, 10},
		{50, 2505},
		{1, 5000 - 4990*0.01},
	}

	for _, tt := range tests {
		c := NewController(DefaultParams())
		c.SetZoom(tt.slider)
		if math.Abs(c.Position.Len()-tt.want) > 1e-6 {
			t.Errorf("slider %v: distance = %v, want %v", tt.slider, c.Position.Len(), tt.want)
		}
		dir := c.Position.Normalize()
		if !near(dir, fallbackBearing) {
			t.Errorf("slider %v: bearing changed to %v", tt.slider, dir)
		}
	}
}

func TestOrbitRig(t *testing.T) {
	t.Run("idle keeps position", func(t *testing.T) {
		r := NewOrbitRig(0.06, 10, 5000)
		pos := physics.Vector3{0, 80, 220}
		if got := r.Update(pos, physics.Vector3{}); got != pos {
			t.Errorf("idle rig moved camera to %v", got)
		}
	})

	t.Run("clamps distance", func(t *testing.T) {
		r := NewOrbitRig(0.06, 10, 5000)
		got := r.Update(physics.Vector3{0, 0, 2}, physics.Vector3{})
		if math.Abs(got.Len()-10) > 1e-9 {
			t.Errorf("distance = %v, want 10", got.Len())
		}
		got = r.Update(physics.Vector3{0, 0, 9000}, physics.Vector3{})
		if math.Abs(got.Len()-5000) > 1e-9 {
			t.Errorf("distance = %v, want 5000", got.Len())
		}
	})

	t.Run("rotation decays and keeps radius", func(t *testing.T) {
		r := NewOrbitRig(0.06, 10, 5000)
		pos := physics.Vector3{0, 0, 100}
		r.Rotate(1, 0)

		pos = r.Update(pos, physics.Vector3{})
		if math.Abs(pos.Len()-100) > 1e-9 {
			t.Errorf("radius changed to %v", pos.Len())
		}
		if math.Abs(math.Atan2(pos.X(), pos.Z())-0.06) > 1e-9 {
			t.Errorf("azimuth after one step = %v, want 0.06", math.Atan2(pos.X(), pos.Z()))
		}

		for i := 0; i < 2000; i++ {
			pos = r.Update(pos, physics.Vector3{})
		}
		if r.Moving() {
			t.Error("queued rotation should decay to rest")
		}
		// The total turn converges to the queued impulse.
		if math.Abs(math.Atan2(pos.X(), pos.Z())-1) > 1e-3 {
			t.Errorf("total azimuth = %v, want about 1", math.Atan2(pos.X(), pos.Z()))
		}
	})

	t.Run("elevation stays off the poles", func(t *testing.T) {
		r := NewOrbitRig(0.5, 10, 5000)
		pos := physics.Vector3{0, 0, 100}
		r.Rotate(0, 100)
		for i := 0; i < 50; i++ {
			pos = r.Update(pos, physics.Vector3{})
			if !physics.IsFinite(pos) {
				t.Fatalf("non-finite position %v", pos)
			}
		}
		if pos.Y() <= 99 {
			t.Errorf("camera should be near the top, got %v", pos)
		}
	})
}
