// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-orrery/pkg/entity"
	"github.com/opd-ai/go-orrery/pkg/physics"
)

const (
	partBody = iota
	partRing
)

const (
	shipTint    = "#ffffff"
	anomalyTint = "#7df9ff"
	// shipPixels and anomalyPixels are the on-screen sizes of markers that
	// would otherwise shrink to nothing at orbit distances.
	shipPixels    = 18
	anomalyPixels = 10
)

type spriteID struct {
	id   entity.ID
	part int
}

type sprite struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
	seen   bool
}

// EngoRenderer implements entity.Renderer with one engo sprite per drawn
// entity part. Sprites not drawn in a frame are removed at Present.
type EngoRenderer struct {
	renderSystem *common.RenderSystem
	camera       *CameraSystem
	assets       *AssetManager
	sprites      map[spriteID]*sprite
}

// NewEngoRenderer creates a renderer. renderSystem may be nil, in which
// case sprites are tracked but never drawn.
func NewEngoRenderer(renderSystem *common.RenderSystem, camera *CameraSystem, assets *AssetManager) *EngoRenderer {
	return &EngoRenderer{
		renderSystem: renderSystem,
		camera:       camera,
		assets:       assets,
		sprites:      make(map[spriteID]*sprite),
	}
}

// Clear implements entity.Renderer
func (r *EngoRenderer) Clear() {
	for _, s := range r.sprites {
		s.seen = false
	}
}

// Present implements entity.Renderer
func (r *EngoRenderer) Present() {
	for id, s := range r.sprites {
		if s.seen {
			continue
		}
		if r.renderSystem != nil {
			r.renderSystem.Remove(s.basic)
		}
		delete(r.sprites, id)
	}
}

// RenderBody implements entity.Renderer
func (r *EngoRenderer) RenderBody(body *entity.Body) {
	pos := body.WorldPosition()
	key := ""
	if body.Surface != nil {
		key = body.Surface.Texture
	}
	tint := r.assets.Tint(key, "#cccccc")

	if body.Ring != nil {
		ringTint := r.assets.Tint(body.Ring.Texture, tint)
		r.place(spriteID{body.GetID(), partRing}, pos, body.Radius*body.Ring.OuterScale, 0, SpriteRing, ringTint, -0.5)
	}
	r.place(spriteID{body.GetID(), partBody}, pos, body.Radius, 0, SpriteDisc, tint, 0)
}

// RenderShip implements entity.Renderer
func (r *EngoRenderer) RenderShip(ship *entity.Ship) {
	s := r.place(spriteID{ship.GetID(), partBody}, ship.Flight.Position, 0, shipPixels/2, SpriteShip, shipTint, 1)
	if s == nil {
		return
	}
	// Heading on screen: project a point ahead of the ship.
	ahead := ship.Flight.Position.Add(ship.Forward().Mul(10))
	from, _, ok1 := r.camera.Project(ship.Flight.Position)
	to, _, ok2 := r.camera.Project(ahead)
	if ok1 && ok2 {
		s.space.Rotation = float32(math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X)) * 180 / math.Pi)
	}
	glow := math.Max(0, math.Min(1, ship.Glow))
	s.render.Color = color.NRGBA{255, 255, 255, uint8(155 + 100*glow)}
}

// RenderAnomaly implements entity.Renderer
func (r *EngoRenderer) RenderAnomaly(anomaly *entity.Anomaly) {
	if !anomaly.Alive() {
		return
	}
	r.place(spriteID{anomaly.GetID(), partBody}, anomaly.Position, 0, anomalyPixels/2, SpriteAnomaly, anomalyTint, 0.5)
}

// place positions the sprite for id. Size comes from the world radius, or
// from minPixels when that is larger. Returns nil when the point is behind
// the camera.
func (r *EngoRenderer) place(id spriteID, world physics.Vector3, radius float64, minPixels float32, kind SpriteKind, tint string, zBias float32) *sprite {
	s := r.getOrCreate(id)
	s.seen = true

	point, depth, ok := r.camera.Project(world)
	if !ok {
		s.render.Hidden = true
		return nil
	}

	px := r.camera.PixelRadius(radius, depth)
	if px < minPixels {
		px = minPixels
	}
	if px < 1 {
		px = 1
	}
	size := 2 * px

	s.render.Hidden = false
	s.render.Drawable = r.assets.Drawable(kind, tint)
	s.render.Scale = engo.Point{X: size / spriteSize, Y: size / spriteSize}
	// Nearer sprites draw on top.
	s.render.SetZIndex(zBias - float32(depth)/1e4)
	s.space.Width, s.space.Height = size, size
	s.space.Position = engo.Point{X: point.X - px, Y: point.Y - px}
	return s
}

func (r *EngoRenderer) getOrCreate(id spriteID) *sprite {
	if s, ok := r.sprites[id]; ok {
		return s
	}
	s := &sprite{
		basic:  ecs.NewBasic(),
		render: common.RenderComponent{Color: color.White},
	}
	r.sprites[id] = s
	if r.renderSystem != nil {
		r.renderSystem.Add(&s.basic, &s.render, &s.space)
	}
	return s
}

// Sprites returns the number of live sprites.
func (r *EngoRenderer) Sprites() int {
	return len(r.sprites)
}
