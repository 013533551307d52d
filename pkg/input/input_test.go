package input

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-orrery/pkg/physics"
	"github.com/opd-ai/go-orrery/pkg/validation"
)

func TestSnapshot_Thrust(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want physics.Vector3
	}{
		{name: "idle", snap: Snapshot{}, want: physics.Vector3{}},
		{name: "forward", snap: Snapshot{Forward: true}, want: physics.Vector3{1, 0, 0}},
		{name: "forward and back cancel", snap: Snapshot{Forward: true, Back: true}, want: physics.Vector3{}},
		{name: "strafe right", snap: Snapshot{Right: true}, want: physics.Vector3{0, 0, 1}},
		{name: "strafe left", snap: Snapshot{Left: true}, want: physics.Vector3{0, 0, -1}},
		{name: "climb", snap: Snapshot{Up: true}, want: physics.Vector3{0, 1, 0}},
		{name: "stick pushed forward", snap: Snapshot{Joystick: physics.Vector2D{Y: -1}}, want: physics.Vector3{1, 0, 0}},
		{name: "stick right", snap: Snapshot{Joystick: physics.Vector2D{X: 0.5}}, want: physics.Vector3{0, 0, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Thrust(); got != tt.want {
				t.Errorf("Thrust() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot_FlightControls(t *testing.T) {
	snap := Snapshot{YawLeft: true, PitchDown: true, Boost: true, Look: physics.Vector2D{X: 3}}
	c := snap.FlightControls()

	if c.Yaw != 1 || c.Pitch != -1 {
		t.Errorf("yaw/pitch = %v/%v, want 1/-1", c.Yaw, c.Pitch)
	}
	if !c.Boost || c.Brake {
		t.Errorf("boost/brake = %v/%v", c.Boost, c.Brake)
	}
	if c.Look.X != 3 {
		t.Errorf("look = %v", c.Look)
	}
}

func TestSnapshot_Sanitized(t *testing.T) {
	snap := Snapshot{
		Joystick: physics.Vector2D{X: 5, Y: -5},
		Look:     physics.Vector2D{X: math.NaN(), Y: 1e12},
	}.Sanitized()

	if l := snap.Joystick.Length(); math.Abs(l-1) > 1e-12 {
		t.Errorf("joystick length = %v, want 1", l)
	}
	if snap.Look.X != 0 || snap.Look.Y != validation.MaxLookDelta {
		t.Errorf("look = %v", snap.Look)
	}
}

func TestBuffer_PressRelease(t *testing.T) {
	b := NewBuffer()
	b.Press(ActionForward)
	b.Press(ActionBoost)

	snap := b.Snapshot()
	if !snap.Forward || !snap.Boost {
		t.Fatalf("expected forward and boost held: %+v", snap)
	}

	// Held keys persist across snapshots.
	if snap := b.Snapshot(); !snap.Forward {
		t.Error("forward should still be held")
	}

	b.Release(ActionForward)
	if snap := b.Snapshot(); snap.Forward {
		t.Error("forward should be released")
	}
	if !b.Held(ActionBoost) || b.Held(ActionForward) {
		t.Error("Held reports the wrong state")
	}
}

func TestBuffer_LookAccumulatesUntilConsumed(t *testing.T) {
	b := NewBuffer()
	b.AddLook(3, 1)
	b.AddLook(2, -4)

	snap := b.Snapshot()
	if snap.Look != (physics.Vector2D{X: 5, Y: -3}) {
		t.Errorf("look = %v, want (5,-3)", snap.Look)
	}
	if snap := b.Snapshot(); !snap.Look.IsZero() {
		t.Errorf("look should be consumed, got %v", snap.Look)
	}
}

func TestBuffer_ToggleEdgeTriggered(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	b := NewBufferWithLimiter(validation.NewRateLimiterWithClock(1, ToggleDebounce, clock))

	b.Press(ActionToggleView)
	// Key repeat while held must not latch again.
	b.Press(ActionToggleView)

	if !b.Snapshot().ToggleView {
		t.Fatal("first snapshot should carry the toggle")
	}
	if b.Snapshot().ToggleView {
		t.Fatal("toggle must be consumed by one snapshot")
	}

	b.Release(ActionToggleView)
	now = now.Add(50 * time.Millisecond)
	b.Press(ActionToggleView)
	if b.Snapshot().ToggleView {
		t.Error("press inside the debounce window should be ignored")
	}

	b.Release(ActionToggleView)
	now = now.Add(time.Second)
	b.Press(ActionToggleView)
	if !b.Snapshot().ToggleView {
		t.Error("press after the debounce window should toggle")
	}
}

func TestBuffer_IgnoresUnknownAction(t *testing.T) {
	b := NewBuffer()
	b.Press(Action(99))
	b.Release(Action(-1))
	if b.Held(Action(99)) {
		t.Error("unknown action reported as held")
	}
	if Action(99).String() != "unknown" {
		t.Errorf("String() = %q", Action(99).String())
	}
}

func TestBuffer_Reset(t *testing.T) {
	b := NewBuffer()
	b.Press(ActionBrake)
	b.SetJoystick(0.3, 0.4)
	b.AddLook(1, 1)
	b.Reset()

	if snap := b.Snapshot(); snap != (Snapshot{}) {
		t.Errorf("expected empty snapshot after reset, got %+v", snap)
	}
}

func TestBuffer_Concurrent(t *testing.T) {
	b := NewBuffer()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.AddLook(1, 0)
				b.Press(ActionForward)
			}
		}()
	}
	wg.Wait()

	snap := b.Snapshot()
	if snap.Look.X != 800 {
		t.Errorf("look x = %v, want 800", snap.Look.X)
	}
}
