package driver

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/arbor"
)

func TestNewGameDefaults(t *testing.T) {
	g := NewGame(arbor.NewScene(), RunConfig{})
	w, h := g.Layout(1920, 1080)
	if w != 640 || h != 480 {
		t.Errorf("Layout = (%d, %d), want (640, 480)", w, h)
	}
}

func TestGameLayoutUsesConfig(t *testing.T) {
	g := NewGame(arbor.NewScene(), RunConfig{Width: 320, Height: 200})
	w, h := g.Layout(1, 1)
	if w != 320 || h != 200 {
		t.Errorf("Layout = (%d, %d), want (320, 200)", w, h)
	}
}

func TestGameUpdatePropagates(t *testing.T) {
	scene := arbor.NewScene()
	root := scene.NewRoot("root")
	child := scene.NewNode("child")
	root.SetPosition(mgl64.Vec3{1, 0, 0})
	child.SetPosition(mgl64.Vec3{0, 2, 0})
	if err := root.Link(child); err != nil {
		t.Fatal(err)
	}

	g := NewGame(scene, RunConfig{})
	if err := g.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := child.WorldPosition(); !got.ApproxEqual(mgl64.Vec3{1, 2, 0}) {
		t.Errorf("child world position = %v, want [1 2 0]", got)
	}
	if child.IsDirty() {
		t.Error("child should be clean after Update")
	}
}

func TestGameUpdateAdvancesTweens(t *testing.T) {
	scene := arbor.NewScene()
	root := scene.NewRoot("root")
	tw := arbor.TweenPosition(root, 10, 0, 0, 1, ease.Linear)
	root.AddAnimation(tw)

	g := NewGame(scene, RunConfig{})
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	want := 10 * float64(tickDelta())
	if d := root.Position.X() - want; d > 0.01 || d < -0.01 {
		t.Errorf("Position.X = %v, want ~%v", root.Position.X(), want)
	}
}

func TestGameTickHookError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	g := NewGame(arbor.NewScene(), RunConfig{Tick: func(*arbor.Scene) error {
		calls++
		return stop
	}})
	if err := g.Update(); !errors.Is(err, stop) {
		t.Errorf("Update error = %v, want %v", err, stop)
	}
	if calls != 1 {
		t.Errorf("Tick calls = %d, want 1", calls)
	}
}

func TestGameDrawHook(t *testing.T) {
	scene := arbor.NewScene()
	var got *arbor.Scene
	g := NewGame(scene, RunConfig{Draw: func(_ *ebiten.Image, s *arbor.Scene) {
		got = s
	}})
	g.Draw(nil)
	if got != scene {
		t.Error("Draw hook should receive the scene")
	}
}

func TestRunNilScene(t *testing.T) {
	if err := Run(nil, RunConfig{}); !errors.Is(err, ErrNilScene) {
		t.Errorf("Run(nil) = %v, want ErrNilScene", err)
	}
}

func TestTickDelta(t *testing.T) {
	want := float32(1.0 / float64(ebiten.TPS()))
	if got := tickDelta(); got != want {
		t.Errorf("tickDelta = %v, want %v", got, want)
	}
}
