// pkg/entity/body.go
package entity

import (
	"math"

	"github.com/opd-ai/go-orrery/pkg/physics"
)

// Kind distinguishes the star from the planets.
type Kind int

const (
	KindStar Kind = iota
	KindPlanet
)

func (k Kind) String() string {
	if k == KindStar {
		return "star"
	}
	return "planet"
}

// Orbital rate constants
const (
	// StarSpinRate is the star's self-rotation in rad/s. Time speed does
	// not apply to it.
	StarSpinRate = 0.15
	// CoronaRate is the default corona counter-rotation in rad/s.
	CoronaRate = 0.05
	// RateScale converts configured per-frame rates into rad/s.
	RateScale = 6.0
)

// Ring describes a planetary ring as multiples of the body radius.
type Ring struct {
	InnerScale float64
	OuterScale float64
	Texture    string
}

// Surface names the maps used to draw a body.
type Surface struct {
	Texture     string
	SpecularMap string
	NormalMap   string
}

// Corona is the star's counter-rotating halo.
type Corona struct {
	Scale float64
	Rate  float64
	Angle float64
}

// Body is a star or planet. Planets orbit the origin at a constant rate.
type Body struct {
	BaseEntity
	Name  string
	Index int // planet slot in the system, -1 for the star
	Kind  Kind

	Radius       float64
	Distance     float64
	OrbitRate    float64
	RotationRate float64

	Spin       float64 // self-rotation angle
	OrbitAngle float64

	Ring    *Ring
	Surface *Surface
	Corona  *Corona
}

// NewStar creates the central star at the origin.
func NewStar(name string, radius float64) *Body {
	return &Body{
		BaseEntity: BaseEntity{ID: NewID(), Active: true},
		Name:       name,
		Index:      -1,
		Kind:       KindStar,
		Radius:     radius,
	}
}

// NewPlanet creates a planet at orbit angle zero.
func NewPlanet(index int, name string, radius, distance, orbitRate, rotationRate float64) *Body {
	b := &Body{
		BaseEntity:   BaseEntity{ID: NewID(), Active: true},
		Name:         name,
		Index:        index,
		Kind:         KindPlanet,
		Radius:       radius,
		Distance:     distance,
		OrbitRate:    orbitRate,
		RotationRate: rotationRate,
	}
	b.Position = b.WorldPosition()
	return b
}

// IsStar reports whether the body is the central star.
func (b *Body) IsStar() bool {
	return b.Kind == KindStar
}

// Advance moves the body forward by deltaTime seconds.
func (b *Body) Advance(deltaTime, timeSpeed float64) {
	if b.IsStar() {
		b.Spin = physics.WrapAngle(b.Spin + StarSpinRate*deltaTime)
		if b.Corona != nil {
			b.Corona.Angle = physics.WrapAngle(b.Corona.Angle - b.Corona.Rate*deltaTime)
		}
		return
	}

	step := timeSpeed * deltaTime * RateScale
	b.Spin = physics.WrapAngle(b.Spin + b.RotationRate*step)
	b.OrbitAngle = physics.WrapAngle(b.OrbitAngle + b.OrbitRate*step)
	b.Position = b.WorldPosition()
}

// WorldPosition returns the orbital distance along +X rotated about +Y by
// the orbit angle.
func (b *Body) WorldPosition() physics.Vector3 {
	if b.IsStar() {
		return physics.Vector3{}
	}
	return physics.Vector3{
		b.Distance * math.Cos(b.OrbitAngle),
		0,
		-b.Distance * math.Sin(b.OrbitAngle),
	}
}

// System is the star and its planets in roster order.
type System struct {
	Star    *Body
	Planets []*Body
}

// NewSystem assigns planet indexes in slice order.
func NewSystem(star *Body, planets []*Body) *System {
	for i, p := range planets {
		p.Index = i
	}
	return &System{Star: star, Planets: planets}
}

// Advance moves every body forward by deltaTime seconds.
func (s *System) Advance(deltaTime, timeSpeed float64) {
	if s.Star != nil {
		s.Star.Advance(deltaTime, timeSpeed)
	}
	for _, p := range s.Planets {
		p.Advance(deltaTime, timeSpeed)
	}
}

// Bodies returns the star followed by the planets.
func (s *System) Bodies() []*Body {
	bodies := make([]*Body, 0, len(s.Planets)+1)
	if s.Star != nil {
		bodies = append(bodies, s.Star)
	}
	return append(bodies, s.Planets...)
}

// Find looks a body up by name.
func (s *System) Find(name string) (*Body, bool) {
	for _, b := range s.Bodies() {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}
