package arbor

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/text/unicode/norm"
)

// Node is the fundamental scene graph element: a local transform, a derived
// world transform, an ordered set of children and the trait, layer and
// metadata state a renderer reads.
//
// A Node owns its children and its metadata. The parent pointer is a back
// reference only. Nodes are not safe for concurrent use; confine a tree to
// one goroutine.
type Node struct {
	Bus

	// Identity
	id   uint64
	uuid string
	Name string
	Type string

	// NFC form of Name, refreshed when Name changes.
	nfcSrc   string
	nfcCache string

	// Hierarchy
	parent     *Node
	children   []*Node
	childIndex map[string]*Node

	// Transform (local). Rotation and Quaternion are kept in sync by the
	// caller; SetRotation does it for you.
	Position   mgl64.Vec3
	Rotation   Euler
	Quaternion mgl64.Quat
	Scale      mgl64.Vec3

	// Computed, refreshed by Propagate.
	localMatrix mgl64.Mat4
	worldMatrix mgl64.Mat4
	dirtyWorld  bool

	// AutoLocal recomposes the local matrix from Position, Quaternion and
	// Scale on every Propagate. When false the caller owns the local matrix.
	AutoLocal bool

	// InheritWorld derives the world matrix from the parent chain. When
	// false the caller owns the world matrix.
	InheritWorld bool

	Traits     RenderTraits
	Layers     LayerMask
	Animations []Animation

	meta map[string]any

	disposed bool
}

// NewNode creates a parentless node named name, taking its identity from ids.
// A nil ids uses a package-wide Sequence.
func NewNode(ids IDSource, name string) *Node {
	if ids == nil {
		ids = fallbackIDs
	}
	id, u := ids.NextIdentity()
	return &Node{
		id:           id,
		uuid:         u,
		Name:         name,
		Type:         DefaultNodeType,
		Rotation:     NewEuler(0, 0, 0),
		Quaternion:   mgl64.QuatIdent(),
		Scale:        vecOne,
		localMatrix:  identity,
		worldMatrix:  identity,
		AutoLocal:    true,
		InheritWorld: true,
		Traits:       DefaultRenderTraits,
		Layers:       DefaultLayerMask,
	}
}

// ID returns the process-local creation-order id.
func (n *Node) ID() uint64 {
	return n.id
}

// UUID returns the globally unique identifier.
func (n *Node) UUID() string {
	return n.uuid
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the topmost ancestor, which is n itself for a root.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// --- Tree manipulation ---

// Link attaches child to n. A child that already has a parent is detached
// from it first, with the usual detach signals. After attaching, SignalAttach
// is dispatched on the child and SignalChildAttach on n, and both are marked
// dirty.
//
// Linking to itself, to nil, to a disposed node or to an ancestor of n
// returns an error and changes nothing, as does linking a node whose uuid
// is already taken by a different child of n.
func (n *Node) Link(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	if child == n {
		return ErrSelfLink
	}
	if n.disposed || child.disposed {
		if globalDebug {
			debugReportDisposed(n, child, "Link")
		}
		return ErrDisposed
	}
	if isAncestor(child, n) {
		return ErrCycle
	}
	if have, ok := n.childIndex[child.uuid]; ok && have != child {
		return ErrDuplicateUUID
	}

	child.Detach()

	if n.childIndex == nil {
		n.childIndex = make(map[string]*Node)
	}
	n.childIndex[child.uuid] = child
	n.children = append(n.children, child)
	child.parent = n

	ev := LinkEvent{Parent: n, Child: child}
	child.Dispatch(SignalAttach, ev)
	n.Dispatch(SignalChildAttach, ev)

	child.dirtyWorld = true
	// The parent's own matrix does not depend on its children; it is marked
	// anyway so a link always leads to a recompute from n down.
	n.dirtyWorld = true

	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
	return nil
}

// LinkAll links each child in order and stops at the first error.
func (n *Node) LinkAll(children ...*Node) error {
	for _, c := range children {
		if err := n.Link(c); err != nil {
			return err
		}
	}
	return nil
}

// Unlink detaches child from n. With a nil child it detaches n from its own
// parent instead. It reports whether anything was detached: unlinking a node
// that is not a child of n, or detaching a root, is a no-op.
//
// On detach SignalDetach is dispatched on the detached node, then
// SignalChildDetach on the former parent, and the detached node is marked
// dirty.
func (n *Node) Unlink(child *Node) bool {
	if child == nil {
		if n.parent == nil {
			return false
		}
		return n.parent.Unlink(n)
	}
	if n.childIndex[child.uuid] != child {
		return false
	}
	delete(n.childIndex, child.uuid)
	n.removeChildByPtr(child)
	child.parent = nil

	ev := LinkEvent{Parent: n, Child: child}
	child.Dispatch(SignalDetach, ev)
	n.Dispatch(SignalChildDetach, ev)

	child.dirtyWorld = true
	return true
}

// Detach removes n from its parent. It is Unlink(nil).
func (n *Node) Detach() bool {
	return n.Unlink(nil)
}

// Clear detaches every child of n. The children collection is emptied before
// the per-child signals fire, so handlers see n already childless.
func (n *Node) Clear() {
	old := n.children
	n.children = nil
	n.childIndex = nil
	for _, child := range old {
		child.parent = nil
		ev := LinkEvent{Parent: n, Child: child}
		child.Dispatch(SignalDetach, ev)
		n.Dispatch(SignalChildDetach, ev)
		child.dirtyWorld = true
	}
	n.dirtyWorld = true
}

// Children returns the children in insertion order. The returned slice MUST
// NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at index in insertion order.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Child returns the child with the given uuid, or nil.
func (n *Node) Child(uuid string) *Node {
	return n.childIndex[uuid]
}

// HasChild reports whether c is a direct child of n.
func (n *Node) HasChild(c *Node) bool {
	return c != nil && n.childIndex[c.uuid] == c
}

// --- Traversal & lookup ---

// Walk calls fn for n and every descendant in pre-order. fn must not change
// the hierarchy being walked; doing so has undefined results.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// WalkUntil is Walk that stops as soon as fn returns false. It reports
// whether the walk ran to completion.
func (n *Node) WalkUntil(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.children {
		if !child.WalkUntil(fn) {
			return false
		}
	}
	return true
}

// FindByUUID returns the first node in n's subtree, n included, whose uuid is
// id, searching depth-first in pre-order.
func (n *Node) FindByUUID(id string) *Node {
	if n.uuid == id {
		return n
	}
	for _, child := range n.children {
		if found := child.FindByUUID(id); found != nil {
			return found
		}
	}
	return nil
}

// FindByName returns the first node in n's subtree, n included, named name.
// Names are compared in Unicode normalization form C, so canonically
// equivalent spellings match.
func (n *Node) FindByName(name string) *Node {
	return n.findByName(norm.NFC.String(name))
}

func (n *Node) findByName(name string) *Node {
	if n.nfcName() == name {
		return n
	}
	for _, child := range n.children {
		if found := child.findByName(name); found != nil {
			return found
		}
	}
	return nil
}

func (n *Node) nfcName() string {
	if n.nfcSrc != n.Name {
		n.nfcSrc = n.Name
		n.nfcCache = norm.NFC.String(n.Name)
	}
	return n.nfcCache
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// --- Metadata ---

// SetMeta stores value under key.
func (n *Node) SetMeta(key string, value any) {
	if n.meta == nil {
		n.meta = make(map[string]any)
	}
	n.meta[key] = value
}

// Meta returns the value stored under key.
func (n *Node) Meta(key string) (any, bool) {
	v, ok := n.meta[key]
	return v, ok
}

// DeleteMeta removes key.
func (n *Node) DeleteMeta(key string) {
	delete(n.meta, key)
}

// MetaKeys returns the metadata keys in sorted order.
func (n *Node) MetaKeys() []string {
	keys := make([]string, 0, len(n.meta))
	for k := range n.meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- Animations ---

// AddAnimation attaches a to n. Attaching the same resource twice is a no-op.
func (n *Node) AddAnimation(a Animation) {
	if a == nil {
		return
	}
	for _, have := range n.Animations {
		if have.AnimationID() == a.AnimationID() {
			return
		}
	}
	n.Animations = append(n.Animations, a)
}

// RemoveAnimation detaches the animation with the given id.
func (n *Node) RemoveAnimation(id string) bool {
	for i, a := range n.Animations {
		if a.AnimationID() == id {
			copy(n.Animations[i:], n.Animations[i+1:])
			n.Animations[len(n.Animations)-1] = nil
			n.Animations = n.Animations[:len(n.Animations)-1]
			return true
		}
	}
	return false
}

// --- Disposal ---

// Dispose detaches n from its parent and recursively disposes n and its
// descendants: handlers, metadata and animations are dropped and the nodes
// refuse further linking. Descendants are released without detach signals.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.Detach()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.parent = nil
		child.dispose()
	}
	n.children = nil
	n.childIndex = nil
	n.parent = nil
	n.meta = nil
	n.Animations = nil
	n.OffAll()
}

// IsDisposed reports whether n has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without touching its parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
