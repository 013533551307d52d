package engine

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-orrery/pkg/camera"
	"github.com/opd-ai/go-orrery/pkg/entity"
	"github.com/opd-ai/go-orrery/pkg/physics"
)

// noTarget is shown when nothing is focused.
const noTarget = "None"

// Frame is everything a renderer needs to draw one tick. It shares no
// memory with the simulation.
type Frame struct {
	Tick      uint64
	Elapsed   float64
	Mode      Mode
	Bodies    []BodyState
	Ship      ShipState
	Camera    CameraState
	Anomalies []AnomalyState
	HUD       HUD
}

// BodyState represents a snapshot of a body's transform
type BodyState struct {
	Name        string
	Index       int
	Kind        entity.Kind
	Radius      float64
	Spin        float64
	OrbitAngle  float64
	CoronaAngle float64
	Position    physics.Vector3
	Ring        *entity.Ring
	Surface     *entity.Surface
}

// ShipState represents a snapshot of the ship
type ShipState struct {
	Position    physics.Vector3
	Velocity    physics.Vector3
	Orientation mgl64.Quat
	Forward     physics.Vector3
	Yaw         float64
	Pitch       float64
	Thrusting   bool
	Glow        float64
}

// CameraState represents a snapshot of the camera pose
type CameraState struct {
	Position  physics.Vector3
	Target    physics.Vector3
	View      camera.View
	Animating bool
}

// AnomalyState represents a snapshot of a collectible
type AnomalyState struct {
	ID         entity.ID
	PlanetName string
	Position   physics.Vector3
	Alive      bool
}

// ScanProgress is one row of the mission table.
type ScanProgress struct {
	Name      string
	Progress  float64
	Completed bool
}

// HUD holds the read-only values shown to the player.
type HUD struct {
	Mode         Mode
	View         camera.View
	Tracking     bool
	Target       string
	TimeSpeed    float64
	ShipPosition physics.Vector3
	Speed        float64
	Score        int
	Collected    int
	Scans        []ScanProgress
	Toast        string
}

// Lines renders the status block.
func (h HUD) Lines() []string {
	track := "OFF"
	if h.Tracking {
		track = "ON"
	}
	return []string{
		fmt.Sprintf("Mode: %s (%s)", strings.ToUpper(h.Mode.String()), h.View),
		fmt.Sprintf("Track: %s / Target: %s", track, h.Target),
		fmt.Sprintf("TimeSpeed: %.2f", h.TimeSpeed),
		fmt.Sprintf("Ship: x=%.1f y=%.1f z=%.1f", h.ShipPosition.X(), h.ShipPosition.Y(), h.ShipPosition.Z()),
		fmt.Sprintf("Score: %d  Collected: %d", h.Score, h.Collected),
	}
}

// ScanLines renders one progress bar per planet, width cells wide.
func (h HUD) ScanLines(width int) []string {
	if width < 1 {
		width = 1
	}
	lines := make([]string, 0, len(h.Scans))
	for _, s := range h.Scans {
		filled := int(physics.Clamp01(s.Progress)*float64(width) + 0.5)
		bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
		mark := " "
		if s.Completed {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("%-8s [%s] %3.0f%%%s", s.Name, bar, physics.Clamp01(s.Progress)*100, mark))
	}
	return lines
}

func (h HUD) clone() HUD {
	h.Scans = append([]ScanProgress(nil), h.Scans...)
	return h
}

func (g *Game) buildHUD() HUD {
	target := noTarget
	if g.Focus != nil {
		target = g.Focus.Name
	}

	scans := g.Missions.Scans()
	rows := make([]ScanProgress, len(scans))
	for i, s := range scans {
		rows[i] = ScanProgress{Name: s.Name, Progress: s.Progress, Completed: s.Completed}
	}

	return HUD{
		Mode:         g.Mode,
		View:         g.Camera.View,
		Tracking:     g.Tracking,
		Target:       target,
		TimeSpeed:    g.TimeSpeed,
		ShipPosition: g.Ship.Position,
		Speed:        g.Ship.Speed(),
		Score:        g.Missions.Score(),
		Collected:    g.Missions.Collected(),
		Scans:        rows,
		Toast:        g.toast.text,
	}
}

// Frame returns a snapshot of the current state.
func (g *Game) Frame() Frame {
	bodies := g.System.Bodies()
	states := make([]BodyState, len(bodies))
	for i, b := range bodies {
		states[i] = BodyState{
			Name:       b.Name,
			Index:      b.Index,
			Kind:       b.Kind,
			Radius:     b.Radius,
			Spin:       b.Spin,
			OrbitAngle: b.OrbitAngle,
			Position:   b.WorldPosition(),
		}
		if b.Ring != nil {
			ring := *b.Ring
			states[i].Ring = &ring
		}
		if b.Surface != nil {
			surface := *b.Surface
			states[i].Surface = &surface
		}
		if b.Corona != nil {
			states[i].CoronaAngle = b.Corona.Angle
		}
	}

	anomalies := make([]AnomalyState, len(g.Anomalies))
	for i, a := range g.Anomalies {
		anomalies[i] = AnomalyState{
			ID:         a.GetID(),
			PlanetName: a.PlanetName,
			Position:   a.GetPosition(),
			Alive:      a.Alive(),
		}
	}

	flight := g.Ship.Flight
	return Frame{
		Tick:    g.CurrentTick,
		Elapsed: g.ElapsedTime,
		Mode:    g.Mode,
		Bodies:  states,
		Ship: ShipState{
			Position:    g.Ship.Position,
			Velocity:    flight.Velocity,
			Orientation: flight.Orientation(),
			Forward:     flight.Forward(),
			Yaw:         flight.Yaw,
			Pitch:       flight.Pitch,
			Thrusting:   g.Ship.Thrusting,
			Glow:        g.Ship.Glow,
		},
		Camera: CameraState{
			Position:  g.Camera.Position,
			Target:    g.Camera.Target,
			View:      g.Camera.View,
			Animating: g.Camera.Animating(),
		},
		Anomalies: anomalies,
		HUD:       g.hud.clone(),
	}
}

// Render draws the current state through an entity renderer.
func (g *Game) Render(r entity.Renderer) {
	r.Clear()
	for _, b := range g.System.Bodies() {
		b.Render(r)
	}
	for _, a := range g.Anomalies {
		if a.Alive() {
			a.Render(r)
		}
	}
	g.Ship.Render(r)
	r.Present()
}
