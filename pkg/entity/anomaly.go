package entity

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-orrery/pkg/physics"
)

// Anomaly is a collectible placed near a planet's orbit ring.
type Anomaly struct {
	BaseEntity
	PlanetIndex int
	PlanetName  string
}

// NewAnomaly creates a live anomaly at position.
func NewAnomaly(id ID, planet *Body, position physics.Vector3) *Anomaly {
	return &Anomaly{
		BaseEntity: BaseEntity{
			ID:       id,
			Position: position,
			Active:   true,
		},
		PlanetIndex: planet.Index,
		PlanetName:  planet.Name,
	}
}

// Alive reports whether the anomaly can still be collected.
func (a *Anomaly) Alive() bool {
	return a.Active
}

// Collect marks the anomaly as taken. It returns false if it already was.
func (a *Anomaly) Collect() bool {
	if !a.Active {
		return false
	}
	a.Active = false
	return true
}

// anomalySpread bounds the vertical and radial jitter around the ring.
const anomalySpread = 6.0

// ScatterAnomalies places perPlanet anomalies at random angles on each
// planet's orbit ring. The same seed always yields the same layout.
func ScatterAnomalies(planets []*Body, perPlanet int, seed uint64) []*Anomaly {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	anomalies := make([]*Anomaly, 0, len(planets)*perPlanet)

	for _, p := range planets {
		for i := 0; i < perPlanet; i++ {
			angle := rng.Float64() * 2 * math.Pi
			radius := p.Distance + (rng.Float64()*2-1)*anomalySpread
			height := (rng.Float64()*2 - 1) * anomalySpread
			pos := physics.Vector3{
				radius * math.Cos(angle),
				height,
				-radius * math.Sin(angle),
			}
			anomalies = append(anomalies, NewAnomaly(NewID(), p, pos))
		}
	}
	return anomalies
}
