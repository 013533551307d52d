// pkg/entity/ship.go
package entity

import (
	"github.com/opd-ai/go-orrery/pkg/input"
	"github.com/opd-ai/go-orrery/pkg/physics"
)

// Engine glow intensities
const (
	GlowThrusting = 0.95
	GlowIdle      = 0.55
)

// DefaultShipStart is where the ship spawns.
var DefaultShipStart = physics.Vector3{0, 0, 260}

// Ship is the player-controlled craft.
type Ship struct {
	BaseEntity
	Flight    physics.FlightState
	Params    physics.FlightParams
	Thrusting bool
	Glow      float64
}

// NewShip creates a ship at rest at start.
func NewShip(id ID, start physics.Vector3, params physics.FlightParams) *Ship {
	return &Ship{
		BaseEntity: BaseEntity{
			ID:       id,
			Position: start,
			Active:   true,
		},
		Flight: physics.FlightState{Position: start},
		Params: params,
		Glow:   GlowIdle,
	}
}

// Update handles the ship's state update for a single tick
func (s *Ship) Update(deltaTime float64, snap input.Snapshot) {
	s.Thrusting = physics.UpdateFlight(&s.Flight, s.Params, snap.FlightControls(), deltaTime)
	if s.Thrusting {
		s.Glow = GlowThrusting
	} else {
		s.Glow = GlowIdle
	}
	s.Position = s.Flight.Position
}

// Forward returns the nose direction.
func (s *Ship) Forward() physics.Vector3 {
	return s.Flight.Forward()
}

// Velocity returns the current velocity.
func (s *Ship) Velocity() physics.Vector3 {
	return s.Flight.Velocity
}

// Speed returns the current speed.
func (s *Ship) Speed() float64 {
	return s.Flight.Speed()
}
