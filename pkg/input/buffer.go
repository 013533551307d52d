package input

import (
	"sync"
	"time"

	"github.com/opd-ai/go-orrery/pkg/physics"
	"github.com/opd-ai/go-orrery/pkg/validation"
)

// Action is a discrete control bound to a key or button.
type Action int

const (
	ActionForward Action = iota
	ActionBack
	ActionLeft
	ActionRight
	ActionUp
	ActionDown
	ActionYawLeft
	ActionYawRight
	ActionPitchUp
	ActionPitchDown
	ActionBoost
	ActionBrake
	ActionToggleView
	actionCount
)

var actionNames = [actionCount]string{
	"forward", "back", "left", "right", "up", "down",
	"yaw-left", "yaw-right", "pitch-up", "pitch-down",
	"boost", "brake", "toggle-view",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// ToggleDebounce is the minimum interval between accepted view toggles.
const ToggleDebounce = 250 * time.Millisecond

// Buffer collects device events from any goroutine and hands the tick loop
// one Snapshot at a time.
type Buffer struct {
	mu       sync.Mutex
	held     [actionCount]bool
	joystick physics.Vector2D
	look     physics.Vector2D
	toggle   bool
	debounce *validation.RateLimiter
}

// NewBuffer creates an input buffer with the default toggle debounce.
func NewBuffer() *Buffer {
	return NewBufferWithLimiter(validation.NewRateLimiter(1, ToggleDebounce))
}

// NewBufferWithLimiter creates an input buffer using limiter to debounce
// camera-view toggles.
func NewBufferWithLimiter(limiter *validation.RateLimiter) *Buffer {
	return &Buffer{debounce: limiter}
}

// Press marks an action as held. A view toggle is latched once per press.
func (b *Buffer) Press(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if a == ActionToggleView {
		if !b.held[a] && b.debounce.Allow(a.String()) {
			b.toggle = true
		}
	}
	b.held[a] = true
}

// Release clears a held action.
func (b *Buffer) Release(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	b.mu.Lock()
	b.held[a] = false
	b.mu.Unlock()
}

// Held reports whether an action is currently held.
func (b *Buffer) Held(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.held[a]
}

// SetJoystick records the current virtual stick displacement.
func (b *Buffer) SetJoystick(x, y float64) {
	b.mu.Lock()
	b.joystick = physics.Vector2D{X: x, Y: y}
	b.mu.Unlock()
}

// AddLook accumulates a pointer drag delta until the next Snapshot.
func (b *Buffer) AddLook(dx, dy float64) {
	b.mu.Lock()
	b.look = b.look.Add(physics.Vector2D{X: dx, Y: dy})
	b.mu.Unlock()
}

// Snapshot returns the state for one tick and consumes the accumulated
// look delta and any latched view toggle.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Forward:    b.held[ActionForward],
		Back:       b.held[ActionBack],
		Left:       b.held[ActionLeft],
		Right:      b.held[ActionRight],
		Up:         b.held[ActionUp],
		Down:       b.held[ActionDown],
		YawLeft:    b.held[ActionYawLeft],
		YawRight:   b.held[ActionYawRight],
		PitchUp:    b.held[ActionPitchUp],
		PitchDown:  b.held[ActionPitchDown],
		Boost:      b.held[ActionBoost],
		Brake:      b.held[ActionBrake],
		ToggleView: b.toggle,
		Joystick:   b.joystick,
		Look:       b.look,
	}
	b.look = physics.Vector2D{}
	b.toggle = false

	return snap.Sanitized()
}

// Reset releases every action and drops pending deltas.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.held = [actionCount]bool{}
	b.joystick = physics.Vector2D{}
	b.look = physics.Vector2D{}
	b.toggle = false
	b.mu.Unlock()
}
