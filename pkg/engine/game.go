// pkg/engine/game.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-orrery/pkg/camera"
	"github.com/opd-ai/go-orrery/pkg/config"
	"github.com/opd-ai/go-orrery/pkg/entity"
	"github.com/opd-ai/go-orrery/pkg/event"
	"github.com/opd-ai/go-orrery/pkg/input"
	"github.com/opd-ai/go-orrery/pkg/logging"
	"github.com/opd-ai/go-orrery/pkg/metrics"
	"github.com/opd-ai/go-orrery/pkg/mission"
	"github.com/opd-ai/go-orrery/pkg/physics"
	"github.com/opd-ai/go-orrery/pkg/validation"
)

// ErrUnknownBody is returned when a focus request names no body.
var ErrUnknownBody = errors.New("unknown body")

// Mode is the control mode.
type Mode int

const (
	ModeOrbit Mode = iota
	ModeShip
)

func (m Mode) String() string {
	if m == ModeShip {
		return "ship"
	}
	return "orbit"
}

// Game owns the whole simulation. It is driven by a single goroutine and
// is not safe for concurrent use; only the liveness accessors may be read
// from elsewhere.
type Game struct {
	Config    *config.GameConfig
	System    *entity.System
	Ship      *entity.Ship
	Anomalies []*entity.Anomaly
	Camera    *camera.Controller
	Missions  *mission.Tracker
	EventBus  *event.Bus

	Mode      Mode
	Tracking  bool
	TimeSpeed float64
	Focus     *entity.Body

	Running     bool
	CurrentTick uint64
	ElapsedTime float64 // simulated seconds
	StartTime   time.Time
	LastUpdate  time.Time

	toast toast
	hud   HUD

	ticks    atomic.Uint64
	lastTick atomic.Int64 // unix nanos of the last completed tick
	live     atomic.Bool

	ctx     context.Context
	logger  *logging.Logger
	metrics metrics.Recorder
	subs    []*event.Subscription
}

// Option customizes a Game.
type Option func(*Game)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *logging.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(g *Game) {
		g.metrics = recorder
	}
}

// WithContext sets the context used for log correlation.
func WithContext(ctx context.Context) Option {
	return func(g *Game) {
		g.ctx = ctx
	}
}

// NewGame creates a new game with the specified configuration
func NewGame(cfg *config.GameConfig, opts ...Option) *Game {
	system := cfg.BuildSystem()
	game := &Game{
		Config:     cfg,
		System:     system,
		Ship:       entity.NewShip(entity.NewID(), cfg.ShipStart(), cfg.FlightParams()),
		Anomalies:  entity.ScatterAnomalies(system.Planets, cfg.Mission.AnomaliesPerPlanet, cfg.Mission.AnomalySeed),
		Camera:     camera.NewController(cfg.CameraParams()),
		EventBus:   event.NewEventBus(),
		Tracking:   cfg.Simulation.Tracking,
		TimeSpeed:  validation.ClampTimeSpeed(cfg.Simulation.TimeSpeed),
		LastUpdate: time.Now(),
		ctx:        context.Background(),
		logger:     logging.Nop(),
	}
	game.toast.duration = cfg.Simulation.ToastSeconds
	game.Missions = mission.NewTracker(system.Planets, cfg.MissionParams(), game.EventBus)

	for _, opt := range opts {
		opt(game)
	}

	game.registerEventHandlers()
	if cfg.Simulation.StartInShip {
		game.SetShipMode(true)
	}
	game.hud = game.buildHUD()

	return game
}

// Start marks the game as running and resets the wall clock. A restarted
// game subscribes its toast handlers again.
func (g *Game) Start() {
	if len(g.subs) == 0 {
		g.registerEventHandlers()
	}
	g.Running = true
	g.live.Store(true)
	g.StartTime = time.Now()
	g.LastUpdate = g.StartTime
	g.lastTick.Store(g.StartTime.UnixNano())
	g.logger.Info(g.ctx, "simulation started",
		"bodies", len(g.System.Bodies()),
		"anomalies", len(g.Anomalies),
		"mode", g.Mode.String())
}

// Stop halts the game and releases event subscriptions.
func (g *Game) Stop() {
	if !g.Running {
		return
	}
	g.Running = false
	g.live.Store(false)
	for _, sub := range g.subs {
		g.EventBus.Unsubscribe(sub)
	}
	g.subs = nil
	g.logger.Info(g.ctx, "simulation stopped",
		"ticks", g.CurrentTick,
		"score", g.Missions.Score(),
		"collected", g.Missions.Collected())
}

// Update advances the game by the wall time since the previous update.
func (g *Game) Update(snap input.Snapshot) Frame {
	return g.Tick(g.calculateDeltaTime(), snap)
}

// calculateDeltaTime returns the time since the last update.
func (g *Game) calculateDeltaTime() float64 {
	now := time.Now()
	deltaTime := now.Sub(g.LastUpdate).Seconds()
	g.LastUpdate = now
	return deltaTime
}

// Tick advances the simulation by deltaTime seconds. The steps run in a
// fixed order because later steps read state written by earlier ones.
func (g *Game) Tick(deltaTime float64, snap input.Snapshot) Frame {
	started := time.Now()
	deltaTime = validation.SanitizeDeltaTime(deltaTime)
	snap = snap.Sanitized()

	g.System.Advance(deltaTime, g.TimeSpeed)
	g.Camera.Step(deltaTime)
	if g.Mode == ModeOrbit {
		g.Camera.UpdateRig()
	}
	if g.Mode == ModeShip {
		g.updateShip(deltaTime, snap)
	}
	g.updateFollow()
	g.updateMissions(deltaTime)
	g.toast.advance(deltaTime)
	g.hud = g.buildHUD()

	g.CurrentTick++
	g.ElapsedTime += deltaTime
	g.ticks.Add(1)
	g.lastTick.Store(time.Now().UnixNano())
	if g.metrics != nil {
		g.metrics.ObserveTick(time.Since(started), deltaTime)
	}

	return g.Frame()
}

// updateShip runs the flight model. The camera view toggle is consumed here
// so it only works while flying.
func (g *Game) updateShip(deltaTime float64, snap input.Snapshot) {
	if snap.ToggleView {
		g.ToggleCameraView()
	}
	g.Ship.Update(deltaTime, snap)
}

// updateFollow tracks the focused body in orbit mode and chases the ship in
// ship mode.
func (g *Game) updateFollow() {
	switch g.Mode {
	case ModeShip:
		g.Camera.Follow(g.Ship.Position, g.Ship.Forward())
	default:
		if g.Focus != nil && g.Tracking {
			g.Camera.Track(g.Focus.WorldPosition())
		}
	}
}

func (g *Game) updateMissions(deltaTime float64) {
	res := g.Missions.Update(deltaTime, g.Ship.Position, g.System.Planets, g.Anomalies)
	if res.Points == 0 {
		return
	}
	for _, name := range res.Scanned {
		g.logger.Info(g.ctx, "scan completed", "body", name, "score", g.Missions.Score())
	}
	for _, a := range res.Collected {
		g.logger.Debug(g.ctx, "anomaly collected", "planet", a.PlanetName, "collected", g.Missions.Collected())
	}
	if g.metrics != nil {
		for _, name := range res.Scanned {
			g.metrics.ScanCompleted(name)
		}
		for _, a := range res.Collected {
			g.metrics.AnomalyCollected(a.PlanetName)
		}
		g.metrics.SetScore(g.Missions.Score())
	}
}

// FocusBody starts a focus transition toward the named body and selects it
// for tracking.
func (g *Game) FocusBody(name string) error {
	body, ok := g.System.Find(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
	g.Focus = body
	g.Camera.Focus(body.WorldPosition(), body.Radius)
	g.EventBus.Publish(event.NewStateEvent(event.FocusChanged, g, body.Name))
	g.logger.Debug(g.ctx, "focus requested", "body", body.Name)
	return nil
}

// ResetCamera clears the focus and animates back to the overview.
func (g *Game) ResetCamera() {
	g.Focus = nil
	g.Camera.Reset()
	g.EventBus.Publish(event.NewStateEvent(event.FocusChanged, g, noTarget))
}

// SetShipMode switches between orbit and ship control. Entering ship mode
// clears the focus and abandons any transition; leaving it snaps the orbit
// pivot back to the origin.
func (g *Game) SetShipMode(on bool) {
	mode := ModeOrbit
	if on {
		mode = ModeShip
	}
	if mode == g.Mode {
		return
	}
	g.Mode = mode

	if on {
		g.Focus = nil
		g.Camera.Cancel()
	} else {
		g.Camera.Rig.Stop()
		g.Camera.SnapTarget(physics.Vector3{})
	}

	g.EventBus.Publish(event.NewStateEvent(event.ModeChanged, g, mode.String()))
	if g.metrics != nil {
		g.metrics.ModeChanged(mode.String())
	}
	g.logger.Debug(g.ctx, "mode changed", "mode", mode.String())
}

// ToggleCameraView switches the ship camera between third and first person.
func (g *Game) ToggleCameraView() {
	view := g.Camera.ToggleView()
	g.EventBus.Publish(event.NewStateEvent(event.ViewToggled, g, view.String()))
}

// SetTracking enables or disables tracking of the focused body.
func (g *Game) SetTracking(on bool) {
	g.Tracking = on
}

// SetTimeSpeed sets the orbital time scale, clamped to [0, 4].
func (g *Game) SetTimeSpeed(speed float64) {
	g.TimeSpeed = validation.ClampTimeSpeed(speed)
	if g.metrics != nil {
		g.metrics.SetTimeSpeed(g.TimeSpeed)
	}
}

// SetZoom places the orbit camera at the distance the slider (1..100) maps
// to. It has no effect in ship mode.
func (g *Game) SetZoom(slider float64) {
	if g.Mode != ModeOrbit {
		return
	}
	g.Camera.SetZoom(validation.ClampZoomSlider(slider))
}

// OrbitCamera queues orbit rig rotation. It has no effect in ship mode.
func (g *Game) OrbitCamera(dAzimuth, dElevation float64) {
	if g.Mode != ModeOrbit {
		return
	}
	g.Camera.Rotate(validation.ClampAxis(dAzimuth), validation.ClampAxis(dElevation))
}

// Settings reports the session toggles front ends flip: ship mode,
// tracking and the clamped time speed.
func (g *Game) Settings() (shipMode, tracking bool, timeSpeed float64) {
	return g.Mode == ModeShip, g.Tracking, g.TimeSpeed
}

// HUD returns the summary computed by the last tick.
func (g *Game) HUD() HUD {
	return g.hud.clone()
}

// Ticks returns the number of completed ticks. Safe for concurrent use.
func (g *Game) Ticks() uint64 {
	return g.ticks.Load()
}

// IsRunning reports whether the game is between Start and Stop. Safe for
// concurrent use.
func (g *Game) IsRunning() bool {
	return g.live.Load()
}

// LastTickTime returns when the last tick completed, or the start time.
// Safe for concurrent use.
func (g *Game) LastTickTime() time.Time {
	nanos := g.lastTick.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// registerEventHandlers turns mission events into toasts.
func (g *Game) registerEventHandlers() {
	g.subs = append(g.subs,
		g.EventBus.Subscribe(event.ScanCompleted, g.handleScanCompleted),
		g.EventBus.Subscribe(event.AnomalyCollected, g.handleAnomalyCollected),
		g.EventBus.Subscribe(event.AllScansCompleted, g.handleAllScansCompleted),
	)
}

func (g *Game) handleScanCompleted(e event.Event) {
	if scan, ok := e.(*event.ScanEvent); ok {
		g.toast.show(fmt.Sprintf("Scan complete: %s (+%d)", scan.BodyName, g.Config.Mission.ScanBonus))
	}
}

func (g *Game) handleAnomalyCollected(e event.Event) {
	if c, ok := e.(*event.CollectEvent); ok {
		g.toast.show(fmt.Sprintf("Anomaly collected near %s (+%d)", c.PlanetName, g.Config.Mission.PickupBonus))
	}
}

func (g *Game) handleAllScansCompleted(e event.Event) {
	if scan, ok := e.(*event.ScanEvent); ok {
		g.toast.show(fmt.Sprintf("All planets scanned! Score %d", scan.Score))
		g.logger.Info(g.ctx, "all scans completed", "score", scan.Score)
	}
}

// toast is a single transient notification. A newer message replaces the
// current one and restarts the timer.
type toast struct {
	text      string
	remaining float64
	duration  float64
}

func (t *toast) show(text string) {
	t.text = text
	t.remaining = t.duration
}

func (t *toast) advance(deltaTime float64) {
	if t.text == "" {
		return
	}
	t.remaining -= deltaTime
	if t.remaining <= 0 {
		t.text = ""
		t.remaining = 0
	}
}
