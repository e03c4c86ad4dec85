package arbor

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// composeMatrix builds Translate(p) * Rotate(q) * Scale(s) without the two
// intermediate products. Layout is mgl64's column-major order.
func composeMatrix(p mgl64.Vec3, q mgl64.Quat, s mgl64.Vec3) mgl64.Mat4 {
	m := q.Mat4()
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			m[col*4+row] *= s[col]
		}
	}
	m[12], m[13], m[14] = p[0], p[1], p[2]
	return m
}

// ComposeLocal recomputes the local matrix from Position, Quaternion and
// Scale and marks the node dirty.
func (n *Node) ComposeLocal() {
	n.localMatrix = composeMatrix(n.Position, n.Quaternion, n.Scale)
	n.dirtyWorld = true
}

// SyncHierarchy recomputes the world matrix from the parent's world matrix
// and the local matrix. A root's world matrix is its local matrix. It does
// nothing when InheritWorld is false.
func (n *Node) SyncHierarchy() {
	if !n.InheritWorld {
		return
	}
	if n.parent == nil {
		n.worldMatrix = n.localMatrix
		return
	}
	n.worldMatrix = n.parent.worldMatrix.Mul4(n.localMatrix)
}

// Propagate refreshes the transforms of n and its subtree. Drivers call it on
// each root once per tick; force recomputes every world matrix regardless of
// dirty flags.
//
// A node whose world matrix is recomputed forces all its descendants to be
// recomputed too, since their cached matrices were built against the old one.
func (n *Node) Propagate(force bool) {
	n.propagate(force, nil)
}

// propagateStats counts traversal work for debug output.
type propagateStats struct {
	visited    int
	recomputed int
}

func (n *Node) propagate(force bool, stats *propagateStats) {
	if n.AutoLocal {
		n.ComposeLocal()
	}
	if n.dirtyWorld || force {
		n.SyncHierarchy()
		n.dirtyWorld = false
		force = true
		if stats != nil {
			stats.recomputed++
		}
	}
	if stats != nil {
		stats.visited++
	}
	for _, child := range n.children {
		child.propagate(force, stats)
	}
}

// propagateTimed is Propagate with counters and elapsed time.
func (n *Node) propagateTimed(force bool) (propagateStats, time.Duration) {
	var stats propagateStats
	t0 := time.Now()
	n.propagate(force, &stats)
	return stats, time.Since(t0)
}

// LocalMatrix returns the local transform as of the last composition.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	return n.localMatrix
}

// WorldMatrix returns the world transform as of the last propagation.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	return n.worldMatrix
}

// SetLocalMatrix replaces the local matrix and marks the node dirty. Only
// meaningful with AutoLocal off, since Propagate would overwrite it.
func (n *Node) SetLocalMatrix(m mgl64.Mat4) {
	n.localMatrix = m
	n.dirtyWorld = true
}

// SetWorldMatrix replaces the world matrix. Only meaningful with InheritWorld
// off. Descendants pick it up on the next propagation because the node is
// marked dirty.
func (n *Node) SetWorldMatrix(m mgl64.Mat4) {
	n.worldMatrix = m
	n.dirtyWorld = true
}

// IsDirty reports whether the world matrix is stale.
func (n *Node) IsDirty() bool {
	return n.dirtyWorld
}

// MarkDirty flags the world matrix as stale. Useful after setting transform
// fields directly.
func (n *Node) MarkDirty() {
	n.dirtyWorld = true
}

// WorldPosition returns the translation part of the world matrix.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.worldMatrix.Col(3).Vec3()
}

// --- Transform property setters ---

// SetPosition sets the local position and marks the node dirty.
func (n *Node) SetPosition(p mgl64.Vec3) {
	n.Position = p
	n.dirtyWorld = true
}

// SetScale sets the local scale and marks the node dirty.
func (n *Node) SetScale(s mgl64.Vec3) {
	n.Scale = s
	n.dirtyWorld = true
}

// SetQuaternion sets the orientation and marks the node dirty. Rotation is
// left as is.
func (n *Node) SetQuaternion(q mgl64.Quat) {
	n.Quaternion = q
	n.dirtyWorld = true
}

// SetRotation sets the Euler rotation, derives Quaternion from it and marks
// the node dirty.
func (n *Node) SetRotation(e Euler) {
	n.Rotation = e
	n.Quaternion = e.Quat()
	n.dirtyWorld = true
}

// --- Local-frame helpers ---

// RotateOnAxis rotates the node by angle radians around axis, expressed in
// the node's local frame, and marks it dirty. axis must be unit length; any
// other axis is used as given and yields a non-unit quaternion. Rotation is
// not updated.
func (n *Node) RotateOnAxis(axis mgl64.Vec3, angle float64) {
	n.Quaternion = n.Quaternion.Mul(mgl64.QuatRotate(angle, axis))
	n.dirtyWorld = true
}

// TranslateOnAxis moves the node distance units along axis, expressed in the
// node's local frame, and marks it dirty. axis must be unit length; any other
// axis scales the step by its length.
func (n *Node) TranslateOnAxis(axis mgl64.Vec3, distance float64) {
	step := n.Quaternion.Rotate(axis).Mul(distance)
	n.Position = n.Position.Add(step)
	n.dirtyWorld = true
}
