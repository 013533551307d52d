// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-orrery/pkg/engine"
	"github.com/opd-ai/go-orrery/pkg/input"
	"github.com/opd-ai/go-orrery/pkg/logging"
	"github.com/opd-ai/go-orrery/pkg/render"
)

// Window size used when none is given.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// GameScene drives a Game from the engo update loop and draws its frames.
type GameScene struct {
	game   *engine.Game
	buffer *input.Buffer
	logger *logging.Logger

	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem
	assets   *AssetManager

	lastFrame engine.Frame
	lastToast string
}

// NewGameScene creates a scene for game. palette and logger may be nil.
func NewGameScene(game *engine.Game, buffer *input.Buffer, palette render.Palette, logger *logging.Logger) *GameScene {
	scene := &GameScene{
		game:   game,
		buffer: buffer,
		logger: logger,
		camera: NewCameraSystem(DefaultWidth, DefaultHeight),
		assets: NewAssetManager(palette),
	}
	scene.renderer = NewEngoRenderer(nil, scene.camera, scene.assets)
	scene.lastFrame = game.Frame()
	scene.input = NewInputSystem(buffer, game, scene.camera, func() []engine.BodyState {
		return scene.lastFrame.Bodies
	})
	scene.camera.SetState(scene.lastFrame.Camera)
	return scene
}

// Type returns the scene type (required by Engo)
func (scene *GameScene) Type() string {
	return "OrreryScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *GameScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *GameScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	common.SetBackground(color.Black)
	SetupInputBindings()

	renderSystem := &common.RenderSystem{}
	scene.renderer.renderSystem = renderSystem

	world.AddSystem(renderSystem)
	world.AddSystem(scene.camera)
	world.AddSystem(scene.input)
	world.AddSystem(&simulationSystem{scene: scene})

	scene.logger.Info(context.Background(), "window scene ready",
		"width", engo.WindowWidth(),
		"height", engo.WindowHeight(),
	)
}

// step advances the game by dt seconds and redraws.
func (scene *GameScene) step(dt float32) engine.Frame {
	frame := scene.game.Tick(float64(dt), scene.buffer.Snapshot())
	scene.camera.SetState(frame.Camera)
	scene.game.Render(scene.renderer)

	if toast := frame.HUD.Toast; toast != "" && toast != scene.lastToast {
		scene.logger.Info(context.Background(), toast, "score", frame.HUD.Score)
	}
	scene.lastToast = frame.HUD.Toast
	scene.lastFrame = frame
	return frame
}

// LastFrame returns the frame produced by the most recent step.
func (scene *GameScene) LastFrame() engine.Frame {
	return scene.lastFrame
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *GameScene) Exit() {
	scene.game.Stop()
}

// simulationSystem ticks the game once per engo frame.
type simulationSystem struct {
	scene *GameScene
}

func (s *simulationSystem) Update(dt float32) {
	s.scene.step(dt)
}

func (s *simulationSystem) Remove(ecs.BasicEntity) {}

// Run opens a window and blocks until it is closed.
func Run(scene *GameScene, title string, width, height int) {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	scene.camera.SetViewport(float32(width), float32(height))
	engo.Run(engo.RunOptions{
		Title:    title,
		Width:    width,
		Height:   height,
		FPSLimit: 60,
	}, scene)
}
