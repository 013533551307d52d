// pkg/entity/entity.go
package entity

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-orrery/pkg/physics"
)

// ID is a unique identifier for an entity
type ID uint64

// NewID allocates a process-unique entity id from the ecs id counter, so
// ids are shared with the windowed front end's world.
func NewID() ID {
	return ID(ecs.NewBasic().ID())
}

// Entity is the base interface for all simulation objects
type Entity interface {
	GetID() ID
	GetPosition() physics.Vector3
	Render(r Renderer)
}

// BaseEntity contains common functionality for all entities
type BaseEntity struct {
	ID       ID
	Position physics.Vector3
	Active   bool
}

// GetID returns the entity's unique identifier
func (e *BaseEntity) GetID() ID {
	return e.ID
}

// GetPosition returns the entity's world position
func (e *BaseEntity) GetPosition() physics.Vector3 {
	return e.Position
}

// Render does nothing; concrete entities dispatch to the renderer.
func (e *BaseEntity) Render(r Renderer) {}

func (b *Body) Render(r Renderer) {
	r.RenderBody(b)
}

func (s *Ship) Render(r Renderer) {
	r.RenderShip(s)
}

func (a *Anomaly) Render(r Renderer) {
	r.RenderAnomaly(a)
}
