// Package driver runs an arbor Scene from an Ebitengine game loop.
//
// The scene graph core has no rendering backend; Game only supplies the
// per-tick Update and hands the screen to an optional draw hook:
//
//	scene := arbor.NewScene()
//	// ... build nodes ...
//	driver.Run(scene, driver.RunConfig{
//		Title: "Viewer", Width: 640, Height: 480,
//	})
package driver

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/arbor"
)

// ErrNilScene is returned when Run is given no scene.
var ErrNilScene = errors.New("driver: nil scene")

// RunConfig configures Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int

	// Draw, if set, is called every frame after the scene was updated.
	Draw func(screen *ebiten.Image, scene *arbor.Scene)

	// Tick, if set, is called every tick before the scene is updated.
	// Returning an error stops the game loop with that error.
	Tick func(scene *arbor.Scene) error
}

// Game adapts a Scene to ebiten.Game.
type Game struct {
	scene *arbor.Scene
	cfg   RunConfig
}

// NewGame wraps scene. Width and Height default to 640x480.
func NewGame(scene *arbor.Scene, cfg RunConfig) *Game {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	return &Game{scene: scene, cfg: cfg}
}

// Scene returns the wrapped scene.
func (g *Game) Scene() *arbor.Scene {
	return g.scene
}

// Update implements ebiten.Game. It advances the scene by one tick of
// 1/TPS seconds.
func (g *Game) Update() error {
	if g.cfg.Tick != nil {
		if err := g.cfg.Tick(g.scene); err != nil {
			return err
		}
	}
	g.scene.Update(tickDelta())
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.Draw != nil {
		g.cfg.Draw(screen, g.scene)
	}
}

// Layout implements ebiten.Game with a fixed logical size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives scene until the window closes or a Tick hook
// fails.
func Run(scene *arbor.Scene, cfg RunConfig) error {
	if scene == nil {
		return ErrNilScene
	}
	g := NewGame(scene, cfg)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	return ebiten.RunGame(g)
}

func tickDelta() float32 {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return float32(1.0 / float64(tps))
}
