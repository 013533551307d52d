package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opd-ai/go-orrery/pkg/config"
	"github.com/opd-ai/go-orrery/pkg/engine"
	"github.com/opd-ai/go-orrery/pkg/input"
)

func newTestModel(t *testing.T) (*Model, *input.Buffer) {
	t.Helper()
	game := engine.NewGame(config.DefaultConfig())
	buffer := input.NewBuffer()
	m := New(game, buffer, nil, nil)
	m.SetStyled(false)
	m.Init()
	t.Cleanup(game.Stop)
	return m, buffer
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelKeyHoldAndRelease(t *testing.T) {
	m, buffer := newTestModel(t)
	start := time.Now()

	m.handleKey(runeKey('w'), start)
	if !buffer.Held(input.ActionForward) {
		t.Fatal("expected forward held after key press")
	}

	m.step(start.Add(HoldWindow / 2))
	if !buffer.Held(input.ActionForward) {
		t.Error("forward released before the hold window elapsed")
	}

	// A repeat extends the hold.
	m.handleKey(runeKey('w'), start.Add(HoldWindow))
	m.step(start.Add(HoldWindow + HoldWindow/2))
	if !buffer.Held(input.ActionForward) {
		t.Error("repeat did not extend the hold")
	}

	m.step(start.Add(3 * HoldWindow))
	if buffer.Held(input.ActionForward) {
		t.Error("forward still held after repeats stopped")
	}
}

func TestModelShiftBoosts(t *testing.T) {
	m, buffer := newTestModel(t)

	m.handleKey(runeKey('W'), time.Now())
	if !buffer.Held(input.ActionForward) || !buffer.Held(input.ActionBoost) {
		t.Error("shifted key should hold forward and boost")
	}
}

func TestModelSpaceBrakes(t *testing.T) {
	m, buffer := newTestModel(t)

	m.handleKey(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, time.Now())
	if !buffer.Held(input.ActionBrake) {
		t.Error("space should hold brake")
	}
}

func TestModelArrowsDependOnMode(t *testing.T) {
	m, buffer := newTestModel(t)

	m.handleKey(tea.KeyMsg{Type: tea.KeyLeft}, time.Now())
	if buffer.Held(input.ActionYawLeft) {
		t.Error("arrows should orbit the camera in orbit mode, not yaw")
	}

	m.handleKey(runeKey('m'), time.Now())
	if m.game.Mode != engine.ModeShip {
		t.Fatalf("expected ship mode, got %v", m.game.Mode)
	}
	m.handleKey(tea.KeyMsg{Type: tea.KeyLeft}, time.Now())
	if !buffer.Held(input.ActionYawLeft) {
		t.Error("arrows should yaw in ship mode")
	}
}

func TestModelTickAdvancesGame(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(TickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected the next tick to be scheduled")
	}
	if m.game.Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", m.game.Ticks())
	}
	if m.Frame().Tick != 1 {
		t.Errorf("frame tick = %d, want 1", m.Frame().Tick)
	}
}

func TestModelThrustMovesShip(t *testing.T) {
	m, _ := newTestModel(t)
	m.handleKey(runeKey('m'), time.Now())
	start := m.game.Ship.Flight.Position

	now := time.Now()
	for i := 0; i < 30; i++ {
		m.handleKey(runeKey('w'), now)
		m.step(now)
		now = now.Add(m.interval)
	}

	if m.game.Ship.Flight.Position.Sub(start).Len() == 0 {
		t.Error("ship did not move while forward was held")
	}
	if !m.Frame().Ship.Thrusting {
		t.Error("expected thrusting while forward held")
	}
}

func TestModelFocusKeys(t *testing.T) {
	m, _ := newTestModel(t)
	bodies := m.game.System.Bodies()

	m.handleKey(runeKey('3'), time.Now())
	if m.game.Focus == nil || m.game.Focus.Name != bodies[3].Name {
		t.Errorf("expected focus on %s, got %v", bodies[3].Name, m.game.Focus)
	}

	// Out of range digits are ignored.
	m.handleKey(runeKey('9'), time.Now())
	if m.game.Focus.Name != bodies[3].Name {
		t.Errorf("focus changed to %s on an unknown slot", m.game.Focus.Name)
	}

	m.handleKey(runeKey('r'), time.Now())
	if m.game.Focus != nil {
		t.Error("reset should clear focus")
	}
}

func TestModelSessionKeys(t *testing.T) {
	m, _ := newTestModel(t)
	speed := m.game.TimeSpeed

	m.handleKey(runeKey('+'), time.Now())
	if m.game.TimeSpeed != speed*2 {
		t.Errorf("time speed = %v, want %v", m.game.TimeSpeed, speed*2)
	}
	m.handleKey(runeKey('-'), time.Now())
	if m.game.TimeSpeed != speed {
		t.Errorf("time speed = %v, want %v", m.game.TimeSpeed, speed)
	}

	tracking := m.game.Tracking
	m.handleKey(runeKey('t'), time.Now())
	if m.game.Tracking == tracking {
		t.Error("t should toggle tracking")
	}
}

func TestModelZoomClamped(t *testing.T) {
	m, _ := newTestModel(t)

	for i := 0; i < 40; i++ {
		m.handleKey(runeKey('['), time.Now())
	}
	if m.zoom != 1 {
		t.Errorf("zoom = %v, want 1", m.zoom)
	}
	for i := 0; i < 40; i++ {
		m.handleKey(runeKey(']'), time.Now())
	}
	if m.zoom != 100 {
		t.Errorf("zoom = %v, want 100", m.zoom)
	}
}

func TestModelWindowResize(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	m.step(time.Now())

	lines := strings.Split(strings.TrimRight(m.view.String(), "\n"), "\n")
	if want := 30 - chromeRows + 2; len(lines) != want {
		t.Errorf("map has %d lines, want %d", len(lines), want)
	}
	if got := len(lines[0]); got != 60 {
		t.Errorf("map is %d wide, want 60", got)
	}
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	m.step(time.Now())

	view := m.View()
	for _, want := range []string{"Mode: ORBIT", "TimeSpeed:", "esc quit", "@"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.game.IsRunning() {
		t.Error("game still running after quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
	if _, cmd := m.Update(TickMsg(time.Now())); cmd != nil {
		t.Error("no ticks should be scheduled after quit")
	}
}
