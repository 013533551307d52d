// pkg/render/engo/input.go
package engo

import (
	"fmt"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-orrery/pkg/engine"
	"github.com/opd-ai/go-orrery/pkg/input"
)

// binding maps an engo button name to a flight action and its keys.
type binding struct {
	name   string
	action input.Action
	keys   []engo.Key
}

var bindings = []binding{
	{"forward", input.ActionForward, []engo.Key{engo.KeyW}},
	{"back", input.ActionBack, []engo.Key{engo.KeyS}},
	{"left", input.ActionLeft, []engo.Key{engo.KeyA}},
	{"right", input.ActionRight, []engo.Key{engo.KeyD}},
	{"up", input.ActionUp, []engo.Key{engo.KeyE}},
	{"down", input.ActionDown, []engo.Key{engo.KeyQ}},
	{"yawLeft", input.ActionYawLeft, []engo.Key{engo.KeyArrowLeft}},
	{"yawRight", input.ActionYawRight, []engo.Key{engo.KeyArrowRight}},
	{"pitchUp", input.ActionPitchUp, []engo.Key{engo.KeyArrowUp}},
	{"pitchDown", input.ActionPitchDown, []engo.Key{engo.KeyArrowDown}},
	{"boost", input.ActionBoost, []engo.Key{engo.KeyLeftShift, engo.KeyRightShift}},
	{"brake", input.ActionBrake, []engo.Key{engo.KeySpace}},
	{"toggleView", input.ActionToggleView, []engo.Key{engo.KeyC}},
}

// Buttons that drive Game requests rather than flight input.
const (
	buttonShipMode = "shipMode"
	buttonTracking = "tracking"
	buttonReset    = "resetCamera"
	buttonFaster   = "faster"
	buttonSlower   = "slower"
)

// focusKeys select a body by its index in the frame, star first.
var focusKeys = []engo.Key{
	engo.KeyZero, engo.KeyOne, engo.KeyTwo, engo.KeyThree, engo.KeyFour,
	engo.KeyFive, engo.KeySix, engo.KeySeven, engo.KeyEight, engo.KeyNine,
}

func focusButton(i int) string {
	return fmt.Sprintf("focus%d", i)
}

// clickSlop is how far, in pixels, a press may travel and still count as
// a click rather than a drag.
const clickSlop = 4

// SetupInputBindings registers the key bindings. Call from Scene.Setup.
func SetupInputBindings() {
	for _, b := range bindings {
		engo.Input.RegisterButton(b.name, b.keys...)
	}
	engo.Input.RegisterButton(buttonShipMode, engo.KeyM)
	engo.Input.RegisterButton(buttonTracking, engo.KeyT)
	engo.Input.RegisterButton(buttonReset, engo.KeyR)
	engo.Input.RegisterButton(buttonFaster, engo.KeyEquals)
	engo.Input.RegisterButton(buttonSlower, engo.KeyDash)
	for i, key := range focusKeys {
		engo.Input.RegisterButton(focusButton(i), key)
	}
}

// inputSource is the slice of engo.Input the system reads.
type inputSource interface {
	JustPressed(button string) bool
	JustReleased(button string) bool
	Mouse() (x, y float32, pressed bool, scrollY float32)
}

// engoInput reads engo.Input. Move events do not carry button state, so
// the left button is tracked between Press and Release.
type engoInput struct {
	held bool
}

func (*engoInput) JustPressed(button string) bool  { return engo.Input.Button(button).JustPressed() }
func (*engoInput) JustReleased(button string) bool { return engo.Input.Button(button).JustReleased() }

func (e *engoInput) Mouse() (float32, float32, bool, float32) {
	m := engo.Input.Mouse
	if m.Button == engo.MouseButtonLeft {
		switch m.Action {
		case engo.Press:
			e.held = true
		case engo.Release:
			e.held = false
		}
	}
	return m.X, m.Y, e.held, m.ScrollY
}

// Controls receives camera and session requests from the window.
type Controls interface {
	Settings() (shipMode, tracking bool, timeSpeed float64)
	SetShipMode(on bool)
	SetTracking(on bool)
	ResetCamera()
	FocusBody(name string) error
	SetTimeSpeed(speed float64)
	SetZoom(slider float64)
	OrbitCamera(dAzimuth, dElevation float64)
}

// Picker finds the body drawn under a window point.
type Picker interface {
	Pick(x, y float32, bodies []engine.BodyState) (string, bool)
}

// InputSystem forwards key and pointer events to the input buffer and the
// game's request methods. Session state is read back from the controls
// each time it is toggled.
type InputSystem struct {
	buffer   *input.Buffer
	controls Controls
	source   inputSource
	picker   Picker
	bodies   func() []engine.BodyState

	zoom float64

	dragging   bool
	moved      bool
	pressX     float32
	pressY     float32
	lastX      float32
	lastY      float32
	orbitScale float64
}

// NewInputSystem creates an input system. picker and bodies drive click and
// number-key focus; either may be nil.
func NewInputSystem(buffer *input.Buffer, controls Controls, picker Picker, bodies func() []engine.BodyState) *InputSystem {
	return &InputSystem{
		buffer:     buffer,
		controls:   controls,
		source:     &engoInput{},
		picker:     picker,
		bodies:     bodies,
		zoom:       50,
		orbitScale: 0.01,
	}
}

// Add satisfies the ecs.System interface
func (is *InputSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update processes input for one engo frame.
func (is *InputSystem) Update(dt float32) {
	for _, b := range bindings {
		if is.source.JustPressed(b.name) {
			is.buffer.Press(b.action)
		}
		if is.source.JustReleased(b.name) {
			is.buffer.Release(b.action)
		}
	}

	shipMode, tracking, speed := is.controls.Settings()
	if is.source.JustPressed(buttonShipMode) {
		is.controls.SetShipMode(!shipMode)
		shipMode = !shipMode
	}
	if is.source.JustPressed(buttonTracking) {
		is.controls.SetTracking(!tracking)
	}
	if is.source.JustPressed(buttonReset) {
		is.controls.ResetCamera()
	}
	if is.source.JustPressed(buttonFaster) {
		is.controls.SetTimeSpeed(speed * 2)
	}
	if is.source.JustPressed(buttonSlower) {
		is.controls.SetTimeSpeed(speed / 2)
	}
	for i := range focusKeys {
		if is.source.JustPressed(focusButton(i)) {
			is.focusIndex(i)
		}
	}

	is.handlePointer(shipMode)
}

func (is *InputSystem) targets() []engine.BodyState {
	if is.bodies == nil {
		return nil
	}
	return is.bodies()
}

func (is *InputSystem) focusIndex(i int) {
	if bodies := is.targets(); i < len(bodies) {
		is.controls.FocusBody(bodies[i].Name)
	}
}

func (is *InputSystem) handlePointer(shipMode bool) {
	x, y, pressed, scroll := is.source.Mouse()

	if scroll != 0 {
		is.zoom -= float64(scroll) * 5
		is.zoom = max(1, min(100, is.zoom))
		is.controls.SetZoom(is.zoom)
	}

	if !pressed {
		if is.dragging && !is.moved && !shipMode {
			is.click(is.pressX, is.pressY)
		}
		is.dragging = false
		return
	}
	if !is.dragging {
		is.dragging, is.moved = true, false
		is.pressX, is.pressY = x, y
		is.lastX, is.lastY = x, y
		return
	}

	if ox, oy := x-is.pressX, y-is.pressY; ox*ox+oy*oy > clickSlop*clickSlop {
		is.moved = true
	}
	dx, dy := float64(x-is.lastX), float64(y-is.lastY)
	is.lastX, is.lastY = x, y
	if dx == 0 && dy == 0 {
		return
	}
	if shipMode {
		is.buffer.AddLook(dx, dy)
		return
	}
	is.controls.OrbitCamera(-dx*is.orbitScale, dy*is.orbitScale)
}

// click focuses the body under the pointer, if any.
func (is *InputSystem) click(x, y float32) {
	if is.picker == nil {
		return
	}
	if name, ok := is.picker.Pick(x, y, is.targets()); ok {
		is.controls.FocusBody(name)
	}
}
