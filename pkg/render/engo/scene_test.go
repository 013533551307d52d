// pkg/render/engo/scene_test.go
package engo

import (
	"image"
	"testing"

	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-orrery/pkg/config"
	"github.com/opd-ai/go-orrery/pkg/engine"
	"github.com/opd-ai/go-orrery/pkg/input"
)

func newTestScene(t *testing.T, startInShip bool) (*GameScene, *engine.Game, *input.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Simulation.StartInShip = startInShip
	game := engine.NewGame(cfg)
	game.Start()
	buf := input.NewBuffer()

	scene := NewGameScene(game, buf, nil, nil)
	scene.assets.upload = func(*image.NRGBA) common.Drawable { return nil }
	return scene, game, buf
}

func TestNewGameScene(t *testing.T) {
	scene, game, buf := newTestScene(t, false)

	if scene.game != game || scene.buffer != buf {
		t.Error("Expected game and buffer to be set")
	}
	if scene.renderer == nil || scene.camera == nil || scene.input == nil {
		t.Fatal("Expected renderer, camera and input to be created")
	}
	if scene.camera.State() != game.Frame().Camera {
		t.Error("Expected camera to start at the game's pose")
	}
}

func TestGameScene_Type(t *testing.T) {
	scene, _, _ := newTestScene(t, false)

	if got := scene.Type(); got != "OrreryScene" {
		t.Errorf("Expected Type() to return %q, got %q", "OrreryScene", got)
	}
}

func TestGameScene_StepTicksAndDraws(t *testing.T) {
	scene, game, _ := newTestScene(t, false)

	for i := 0; i < 5; i++ {
		scene.step(1.0 / 60)
	}

	if got := scene.LastFrame().Tick; got != 5 {
		t.Errorf("Expected tick 5, got %d", got)
	}
	if game.Ticks() != 5 {
		t.Errorf("Expected game ticks 5, got %d", game.Ticks())
	}
	if scene.camera.State() != scene.LastFrame().Camera {
		t.Error("Expected camera to follow the frame's pose")
	}

	// Star, six planets, Saturn's ring, the ship and every live anomaly.
	want := 1 + len(game.System.Planets) + 1 + 1
	for _, a := range game.Anomalies {
		if a.Alive() {
			want++
		}
	}
	if got := scene.renderer.Sprites(); got != want {
		t.Errorf("Expected %d sprites, got %d", want, got)
	}
}

func TestGameScene_InputDrivesShip(t *testing.T) {
	scene, game, buf := newTestScene(t, true)
	start := game.Ship.Flight.Position

	buf.Press(input.ActionForward)
	for i := 0; i < 30; i++ {
		scene.step(1.0 / 60)
	}

	if game.Ship.Flight.Position == start {
		t.Error("Expected the ship to move under forward thrust")
	}
	if !scene.LastFrame().Ship.Thrusting {
		t.Error("Expected frame to report thrust")
	}
}

func TestGameScene_Exit(t *testing.T) {
	scene, game, _ := newTestScene(t, false)

	scene.Exit()

	if game.IsRunning() {
		t.Error("Expected Exit to stop the game")
	}
}

func TestGameScene_Preload(t *testing.T) {
	scene, _, _ := newTestScene(t, false)

	// Nothing to preload; must not panic.
	scene.Preload()
}
