// pkg/render/engo/camera.go
package engo

import (
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/opd-ai/go-orrery/pkg/engine"
	"github.com/opd-ai/go-orrery/pkg/physics"
)

// DefaultFOV is the vertical field of view in degrees.
const DefaultFOV = 70.0

// CameraSystem projects world positions onto the window using the camera
// pose from the latest frame.
type CameraSystem struct {
	state engine.CameraState

	fov    float64 // radians
	near   float64
	far    float64
	width  float32
	height float32

	viewProj mgl64.Mat4
	valid    bool
}

// NewCameraSystem creates a camera system for a viewport of the given size.
func NewCameraSystem(width, height float32) *CameraSystem {
	cs := &CameraSystem{
		fov:    mgl64.DegToRad(DefaultFOV),
		near:   0.1,
		far:    200000,
		width:  width,
		height: height,
	}
	cs.rebuild()
	return cs
}

// Add satisfies the ecs.System interface
func (cs *CameraSystem) Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent) {
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update tracks window resizes.
func (cs *CameraSystem) Update(dt float32) {
	if w, h := engo.WindowWidth(), engo.WindowHeight(); w > 0 && h > 0 && (w != cs.width || h != cs.height) {
		cs.SetViewport(w, h)
	}
}

// SetState sets the camera pose to project with.
func (cs *CameraSystem) SetState(state engine.CameraState) {
	cs.state = state
	cs.rebuild()
}

// State returns the pose last set.
func (cs *CameraSystem) State() engine.CameraState {
	return cs.state
}

// SetViewport resizes the projection.
func (cs *CameraSystem) SetViewport(width, height float32) {
	cs.width, cs.height = width, height
	cs.rebuild()
}

func (cs *CameraSystem) rebuild() {
	eye, target := cs.state.Position, cs.state.Target
	if eye.Sub(target).LenSqr() < 1e-12 || cs.width <= 0 || cs.height <= 0 {
		cs.valid = false
		return
	}
	view := mgl64.LookAtV(eye, target, physics.AxisY)
	proj := mgl64.Perspective(cs.fov, float64(cs.width)/float64(cs.height), cs.near, cs.far)
	cs.viewProj = proj.Mul4(view)
	cs.valid = true
}

// Project maps a world position to window pixels. depth is the clip-space
// w (distance along the view axis); ok is false behind the camera.
func (cs *CameraSystem) Project(world physics.Vector3) (point engo.Point, depth float64, ok bool) {
	if !cs.valid {
		return engo.Point{}, 0, false
	}
	clip := cs.viewProj.Mul4x1(world.Vec4(1))
	w := clip.W()
	if w <= cs.near {
		return engo.Point{}, w, false
	}
	ndcX, ndcY := clip.X()/w, clip.Y()/w
	point = engo.Point{
		X: float32((ndcX + 1) / 2 * float64(cs.width)),
		Y: float32((1 - ndcY) / 2 * float64(cs.height)),
	}
	return point, w, true
}

// PixelRadius returns the on-screen radius of a sphere of radius r seen at
// depth.
func (cs *CameraSystem) PixelRadius(r, depth float64) float32 {
	if depth <= 0 {
		return 0
	}
	focal := float64(cs.height) / 2 / math.Tan(cs.fov/2)
	return float32(r * focal / depth)
}

// minPickRadius keeps distant bodies clickable.
const minPickRadius = 6

// Pick returns the nearest body whose projected disc contains the window
// point (x, y).
func (cs *CameraSystem) Pick(x, y float32, bodies []engine.BodyState) (string, bool) {
	name, nearest := "", math.Inf(1)
	for _, b := range bodies {
		p, depth, ok := cs.Project(b.Position)
		if !ok {
			continue
		}
		r := max(cs.PixelRadius(b.Radius, depth), minPickRadius)
		dx, dy := x-p.X, y-p.Y
		if dx*dx+dy*dy <= r*r && depth < nearest {
			name, nearest = b.Name, depth
		}
	}
	return name, name != ""
}
