package arbor

import (
	"github.com/google/uuid"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenScale,
// TweenRotation) and either call Update(dt) each frame or attach it with
// Node.AddAnimation and let Scene.Update drive it. The group writes values,
// marks the node dirty and stops as soon as the target node is disposed.
type TweenGroup struct {
	id     string
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	after  func(*Node)
	Done   bool
}

func newTweenGroup(target *Node, count int) *TweenGroup {
	return &TweenGroup{id: uuid.NewString(), target: target, count: count}
}

// AnimationID implements Animation.
func (g *TweenGroup) AnimationID() string {
	return g.id
}

// Advance implements Animator.
func (g *TweenGroup) Advance(dt float32) {
	g.Update(dt)
}

// Finished implements Animator.
func (g *TweenGroup) Finished() bool {
	return g.Done
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		if g.after != nil {
			g.after(g.target)
		}
		g.target.MarkDirty()
	}
}

// Reset rewinds every tween to its start and clears Done.
func (g *TweenGroup) Reset() {
	for i := 0; i < g.count; i++ {
		g.tweens[i].Reset()
	}
	g.Done = false
}

// TweenPosition creates a TweenGroup that moves node.Position to the given
// target over the specified duration using the easing function.
func TweenPosition(node *Node, toX, toY, toZ float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node, 3)
	g.tweens[0] = gween.New(float32(node.Position[0]), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Position[1]), float32(toY), duration, fn)
	g.tweens[2] = gween.New(float32(node.Position[2]), float32(toZ), duration, fn)
	g.fields[0] = &node.Position[0]
	g.fields[1] = &node.Position[1]
	g.fields[2] = &node.Position[2]
	return g
}

// TweenScale creates a TweenGroup that animates node.Scale to the given
// target over the specified duration using the easing function.
func TweenScale(node *Node, toX, toY, toZ float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node, 3)
	g.tweens[0] = gween.New(float32(node.Scale[0]), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(node.Scale[1]), float32(toY), duration, fn)
	g.tweens[2] = gween.New(float32(node.Scale[2]), float32(toZ), duration, fn)
	g.fields[0] = &node.Scale[0]
	g.fields[1] = &node.Scale[1]
	g.fields[2] = &node.Scale[2]
	return g
}

// TweenRotation creates a TweenGroup that animates the Euler angles of
// node.Rotation to to. The quaternion is re-derived after every step so both
// representations stay in sync.
func TweenRotation(node *Node, to Euler, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node, 3)
	g.tweens[0] = gween.New(float32(node.Rotation.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(node.Rotation.Y), float32(to.Y), duration, fn)
	g.tweens[2] = gween.New(float32(node.Rotation.Z), float32(to.Z), duration, fn)
	g.fields[0] = &node.Rotation.X
	g.fields[1] = &node.Rotation.Y
	g.fields[2] = &node.Rotation.Z
	g.after = func(n *Node) {
		n.Quaternion = n.Rotation.Quat()
	}
	return g
}
