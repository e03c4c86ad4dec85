package arbor

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// CameraNodeType is the type tag of camera nodes.
const CameraNodeType = "Camera"

// moveAnim holds active move-to tweens for the camera position.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a viewpoint into the scene. Its placement is an ordinary node,
// so it can be linked under other nodes and inherits their transforms. A
// camera sees the nodes whose layer mask shares a layer with Layers.
type Camera struct {
	// Node places the camera. Its type is CameraNodeType and it starts
	// invisible so cameras never collect themselves.
	Node *Node

	// Layers selects which nodes the camera sees.
	Layers LayerMask

	// Far is the culling distance for nodes with CullFrustum set. Zero
	// disables distance culling.
	Far float64

	followTarget *Node
	followOffset mgl64.Vec3
	followLerp   float64

	move *moveAnim
}

// NewCamera creates a camera whose node takes its identity from ids. It sees
// DefaultLayerMask.
func NewCamera(ids IDSource, name string) *Camera {
	n := NewNode(ids, name)
	n.Type = CameraNodeType
	n.Traits.Visible = false
	return &Camera{Node: n, Layers: DefaultLayerMask}
}

// Follow makes the camera track a target node with the given offset and lerp
// factor. A lerp of 1.0 snaps immediately; lower values give smoother
// following.
func (c *Camera) Follow(node *Node, offset mgl64.Vec3, lerp float64) {
	c.followTarget = node
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// MoveTo animates the camera node's local position to p over duration
// seconds.
func (c *Camera) MoveTo(p mgl64.Vec3, duration float32, fn ease.TweenFunc) {
	m := &moveAnim{}
	for i := range m.tweens {
		m.tweens[i] = gween.New(float32(c.Node.Position[i]), float32(p[i]), duration, fn)
	}
	c.move = m
}

// Moving reports whether a MoveTo animation is in progress.
func (c *Camera) Moving() bool {
	return c.move != nil
}

// update advances follow and move animations. Called from Scene.Update
// before propagation, so following uses world matrices from the previous
// tick. The follow goal is a world position; for a mounted camera it is
// brought into the parent's frame before blending into Position.
func (c *Camera) update(dt float32) {
	n := c.Node
	prev := n.Position

	if c.followTarget != nil && !c.followTarget.IsDisposed() {
		if target, ok := c.followGoal(); ok {
			n.Position = n.Position.Add(target.Sub(n.Position).Mul(c.followLerp))
		}
	}

	if c.move != nil {
		for i := range c.move.tweens {
			if c.move.done[i] {
				continue
			}
			val, done := c.move.tweens[i].Update(dt)
			n.Position[i] = float64(val)
			c.move.done[i] = done
		}
		if c.move.done[0] && c.move.done[1] && c.move.done[2] {
			c.move = nil
		}
	}

	if n.Position != prev {
		n.MarkDirty()
	}
}

// followGoal returns the follow position in the camera node's local frame.
// It fails while the parent's world matrix is singular.
func (c *Camera) followGoal() (mgl64.Vec3, bool) {
	goal := c.followTarget.WorldPosition().Add(c.followOffset)
	p := c.Node.parent
	if p == nil {
		return goal, true
	}
	w := p.WorldMatrix()
	if w.Det() == 0 {
		return mgl64.Vec3{}, false
	}
	return mgl64.TransformCoordinate(goal, w.Inv()), true
}

// View returns the view matrix, the inverse of the camera's world matrix.
func (c *Camera) View() mgl64.Mat4 {
	return c.Node.WorldMatrix().Inv()
}

// WorldToView transforms a world-space point into camera space.
func (c *Camera) WorldToView(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, c.View())
}

// Sees reports whether n passes the camera's visibility filter on its own:
// visible, sharing a layer and, when culling applies, within Far.
func (c *Camera) Sees(n *Node) bool {
	if !n.Traits.Visible || !c.Layers.Test(n.Layers) {
		return false
	}
	return !c.shouldCull(n)
}

func (c *Camera) shouldCull(n *Node) bool {
	if c.Far <= 0 || !n.Traits.CullFrustum {
		return false
	}
	d := n.WorldPosition().Sub(c.Node.WorldPosition())
	return d.Dot(d) > c.Far*c.Far
}

// Collect returns the nodes under roots the camera sees, in draw order:
// ascending Traits.Order, ties kept in tree order. An invisible node hides
// its whole subtree. World matrices are used as of the last propagation.
func (c *Camera) Collect(roots ...*Node) []*Node {
	var out []*Node
	for _, r := range roots {
		out = c.collect(r, out)
	}
	sortByOrder(out)
	return out
}

func (c *Camera) collect(n *Node, out []*Node) []*Node {
	if !n.Traits.Visible {
		return out
	}
	if c.Sees(n) {
		out = append(out, n)
	}
	for _, child := range n.children {
		out = c.collect(child, out)
	}
	return out
}

// sortByOrder is a stable insertion sort by Traits.Order. Collected lists are
// usually already in order, which makes this close to linear.
func sortByOrder(nodes []*Node) {
	for i := 1; i < len(nodes); i++ {
		key := nodes[i]
		j := i - 1
		for j >= 0 && nodes[j].Traits.Order > key.Traits.Order {
			nodes[j+1] = nodes[j]
			j--
		}
		nodes[j+1] = key
	}
}
