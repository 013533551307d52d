// Package tui runs the simulation inside a terminal using Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opd-ai/go-orrery/pkg/engine"
	"github.com/opd-ai/go-orrery/pkg/input"
	"github.com/opd-ai/go-orrery/pkg/logging"
	"github.com/opd-ai/go-orrery/pkg/physics"
	"github.com/opd-ai/go-orrery/pkg/render"
)

// HoldWindow is how long a key counts as held after its last repeat.
// Terminals report presses only, so holding a key is seen as a stream of
// repeats and the action is released once they stop.
const HoldWindow = 150 * time.Millisecond

// Rows reserved below the map for the HUD panel and help line.
const chromeRows = 13

const (
	defaultWidth  = 80
	defaultHeight = 40
	scanBarWidth  = 20
	zoomStep      = 5
	orbitStep     = 0.15
)

// TickMsg advances the simulation by one step.
type TickMsg time.Time

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5f87af")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87afd7")).Bold(true)
	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#ffd75f")).
			Bold(true).
			Padding(0, 1)
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87d787"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c6c6c"))
)

// keyActions maps key strings to held flight actions. Upper case letters
// are the same keys with Shift, which boosts.
var keyActions = map[string]input.Action{
	"w":     input.ActionForward,
	"s":     input.ActionBack,
	"a":     input.ActionLeft,
	"d":     input.ActionRight,
	"e":     input.ActionUp,
	"q":     input.ActionDown,
	" ":     input.ActionBrake,
	"left":  input.ActionYawLeft,
	"right": input.ActionYawRight,
	"up":    input.ActionPitchUp,
	"down":  input.ActionPitchDown,
	"c":     input.ActionToggleView,
}

// Model is the root Bubble Tea model. It owns the game and is the only
// goroutine that touches it.
type Model struct {
	game   *engine.Game
	buffer *input.Buffer
	view   *render.TerminalRenderer
	logger *logging.Logger

	palette  render.Palette
	styled   bool
	interval time.Duration

	width     int
	height    int
	baseScale float64
	zoom      float64

	lastPress map[input.Action]time.Time
	frame     engine.Frame
	lastToast string
	quitting  bool
}

// New creates a terminal model for game. palette and logger may be nil.
func New(game *engine.Game, buffer *input.Buffer, palette render.Palette, logger *logging.Logger) *Model {
	rate := game.Config.Simulation.TickRate
	if rate <= 0 {
		rate = 60
	}
	m := &Model{
		game:      game,
		buffer:    buffer,
		logger:    logger,
		palette:   palette,
		styled:    true,
		interval:  time.Second / time.Duration(rate),
		baseScale: fitScale(game, defaultWidth),
		zoom:      50,
		lastPress: make(map[input.Action]time.Time),
		frame:     game.Frame(),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// SetStyled turns colour output on or off.
func (m *Model) SetStyled(styled bool) {
	m.styled = styled
	m.view.SetStyled(styled)
}

// fitScale returns the world units per cell that fit the outermost orbit
// across width cells.
func fitScale(game *engine.Game, width int) float64 {
	extent := 0.0
	for _, b := range game.System.Bodies() {
		extent = max(extent, b.Distance+b.Radius)
	}
	if extent == 0 || width <= 0 {
		return 1
	}
	return extent * 2.4 / float64(width)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	mapHeight := max(5, height-chromeRows)
	m.view = render.NewTerminalRenderer(nil, max(10, width-2), mapHeight, m.scale())
	m.view.SetPalette(m.palette)
	m.view.SetStyled(m.styled)
}

func (m *Model) scale() float64 {
	return m.baseScale * m.zoom / 50
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.game.Start()
	return m.tickCmd()
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg, time.Now())

	case tea.WindowSizeMsg:
		m.baseScale = fitScale(m.game, msg.Width)
		m.resize(msg.Width, msg.Height)

	case TickMsg:
		if m.quitting {
			return m, nil
		}
		m.step(time.Time(msg))
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg, now time.Time) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c", "esc":
		m.quitting = true
		m.game.Stop()
		return tea.Quit
	case "m":
		m.game.SetShipMode(m.game.Mode != engine.ModeShip)
		return nil
	case "t":
		m.game.SetTracking(!m.game.Tracking)
		return nil
	case "r":
		m.game.ResetCamera()
		return nil
	case "+", "=":
		m.game.SetTimeSpeed(m.game.TimeSpeed * 2)
		return nil
	case "-", "_":
		m.game.SetTimeSpeed(m.game.TimeSpeed / 2)
		return nil
	case "[", "]":
		m.adjustZoom(key)
		return nil
	}

	if idx := focusIndex(key); idx >= 0 {
		m.focus(idx)
		return nil
	}

	if m.game.Mode == engine.ModeOrbit {
		if m.orbit(key) {
			return nil
		}
	}

	lower := strings.ToLower(key)
	action, ok := keyActions[lower]
	if !ok {
		return nil
	}
	m.hold(action, now)
	if lower != key {
		m.hold(input.ActionBoost, now)
	}
	return nil
}

// focusIndex maps "0" to the star and "1".."9" to planets.
func focusIndex(key string) int {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return -1
	}
	return int(key[0] - '0')
}

func (m *Model) focus(idx int) {
	bodies := m.game.System.Bodies()
	if idx >= len(bodies) {
		return
	}
	name := bodies[idx].Name
	if err := m.game.FocusBody(name); err != nil {
		m.logger.Warn(context.Background(), "focus failed", "body", name, "error", err)
	}
}

func (m *Model) orbit(key string) bool {
	switch key {
	case "left":
		m.game.OrbitCamera(-orbitStep, 0)
	case "right":
		m.game.OrbitCamera(orbitStep, 0)
	case "up":
		m.game.OrbitCamera(0, orbitStep)
	case "down":
		m.game.OrbitCamera(0, -orbitStep)
	default:
		return false
	}
	return true
}

func (m *Model) adjustZoom(key string) {
	if key == "[" {
		m.zoom -= zoomStep
	} else {
		m.zoom += zoomStep
	}
	m.zoom = max(1, min(100, m.zoom))
	m.game.SetZoom(m.zoom)
	m.resize(m.width, m.height)
}

func (m *Model) hold(action input.Action, now time.Time) {
	if _, held := m.lastPress[action]; !held {
		m.buffer.Press(action)
	}
	m.lastPress[action] = now
}

// releaseStale releases actions whose key has not repeated within
// HoldWindow of now.
func (m *Model) releaseStale(now time.Time) {
	for action, at := range m.lastPress {
		if now.Sub(at) > HoldWindow {
			m.buffer.Release(action)
			delete(m.lastPress, action)
		}
	}
}

// step runs one simulation tick and redraws the map.
func (m *Model) step(now time.Time) {
	m.releaseStale(now)
	// The view toggle is edge triggered; drop it once latched.
	if _, ok := m.lastPress[input.ActionToggleView]; ok {
		m.buffer.Release(input.ActionToggleView)
		delete(m.lastPress, input.ActionToggleView)
	}

	m.frame = m.game.Tick(m.interval.Seconds(), m.buffer.Snapshot())
	m.view.SetCenter(m.center())
	m.game.Render(m.view)

	if toast := m.frame.HUD.Toast; toast != "" && toast != m.lastToast {
		m.logger.Info(context.Background(), toast, "score", m.frame.HUD.Score)
	}
	m.lastToast = m.frame.HUD.Toast
}

// center follows the ship in ship mode and the camera target otherwise.
func (m *Model) center() physics.Vector2D {
	p := m.frame.Camera.Target
	if m.frame.Mode == engine.ModeShip {
		p = m.frame.Ship.Position
	}
	return physics.Vector2D{X: p.X(), Y: p.Z()}
}

// Frame returns the frame produced by the last tick.
func (m *Model) Frame() engine.Frame {
	return m.frame
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.styled {
		b.WriteString(m.view.Styled())
	} else {
		b.WriteString(m.view.String())
	}
	b.WriteString(m.hudPanel())
	b.WriteByte('\n')
	if toast := m.frame.HUD.Toast; toast != "" {
		if m.styled {
			toast = toastStyle.Render(toast)
		}
		b.WriteString(toast)
		b.WriteByte('\n')
	}
	help := "wasdqe move  shift boost  space brake  arrows turn  c view  m ship  t track  0-9 focus  [/] zoom  +/- time  r reset  esc quit"
	if m.styled {
		help = helpStyle.Render(help)
	}
	b.WriteString(help)
	return b.String()
}

func (m *Model) hudPanel() string {
	hud := m.frame.HUD
	status := hud.Lines()
	scans := hud.ScanLines(scanBarWidth)

	if !m.styled {
		return strings.Join(append(status, scans...), "\n")
	}

	for i, line := range status {
		if label, rest, ok := strings.Cut(line, ":"); ok {
			status[i] = labelStyle.Render(label+":") + rest
		}
	}
	for i, s := range hud.Scans {
		if s.Completed {
			scans[i] = doneStyle.Render(scans[i])
		}
	}
	left := panelStyle.Render(strings.Join(status, "\n"))
	right := panelStyle.Render(fmt.Sprintf("%s\n%s", labelStyle.Render("Scans"), strings.Join(scans, "\n")))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
