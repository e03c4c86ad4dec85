package arbor

import "github.com/go-gl/mathgl/mgl64"

// Euler is a rotation expressed as three angles in radians applied in Order.
// It exists for authoring; Node.Quaternion is what transforms are built from.
type Euler struct {
	X, Y, Z float64
	Order   mgl64.RotationOrder
}

// NewEuler returns an XYZ-ordered rotation.
func NewEuler(x, y, z float64) Euler {
	return Euler{X: x, Y: y, Z: z, Order: mgl64.XYZ}
}

// Quat converts the angles to a quaternion.
func (e Euler) Quat() mgl64.Quat {
	return mgl64.AnglesToQuat(e.X, e.Y, e.Z, e.Order)
}

// RenderTraits groups the per-node flags a renderer consults.
type RenderTraits struct {
	Visible       bool `json:"visible" yaml:"visible"`         // renderer skips the node when false
	ShadowCast    bool `json:"shadowCast" yaml:"shadowCast"`   // contributes to shadow maps
	ShadowReceive bool `json:"shadowRecv" yaml:"shadowRecv"`   // is lit by shadows
	CullFrustum   bool `json:"cullFrustum" yaml:"cullFrustum"` // eligible for frustum culling
	Order         int  `json:"order" yaml:"order"`             // draw order override, lower first
}

// DefaultRenderTraits is what new nodes start with.
var DefaultRenderTraits = RenderTraits{Visible: true, CullFrustum: true}

// LinkEvent is the payload of the structural signals.
type LinkEvent struct {
	Parent *Node
	Child  *Node
}

// Animation is a resource attached to a node. Documents reference it by id.
type Animation interface {
	AnimationID() string
}

// Animator is an Animation that Scene.Update advances every tick.
type Animator interface {
	Animation
	Advance(dt float32)
	Finished() bool
}

// DefaultNodeType is the serialization type tag of plain nodes.
const DefaultNodeType = "Node"

var (
	vecOne   = mgl64.Vec3{1, 1, 1}
	identity = mgl64.Ident4()
)
