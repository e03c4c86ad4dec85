package arbor

import (
	"log/slog"
	"time"
)

// Scene is the owning driver of a forest of nodes. It issues node identities,
// advances attached animations and propagates every root once per Update.
// Like nodes, a Scene is confined to one goroutine.
type Scene struct {
	ids     IDSource
	roots   []*Node
	cameras []*Camera
	logger  *slog.Logger
	debug   bool
}

// SceneOption configures a Scene.
type SceneOption func(*Scene)

// WithIDSource makes the scene issue node identities from ids.
func WithIDSource(ids IDSource) SceneOption {
	return func(s *Scene) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithLogger sets the logger used for the scene's debug output.
func WithLogger(l *slog.Logger) SceneOption {
	return func(s *Scene) {
		s.logger = l
	}
}

// NewScene creates an empty scene with its own Sequence.
func NewScene(opts ...SceneOption) *Scene {
	s := &Scene{ids: NewSequence()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IDs returns the scene's identity source.
func (s *Scene) IDs() IDSource {
	return s.ids
}

// NewNode creates a node with an identity from the scene. The node is not
// added as a root.
func (s *Scene) NewNode(name string) *Node {
	return NewNode(s.ids, name)
}

// NewRoot creates a node and registers it as a root.
func (s *Scene) NewRoot(name string) *Node {
	n := s.NewNode(name)
	s.roots = append(s.roots, n)
	return n
}

// AddRoot registers n as a root. It fails for nil, disposed or parented
// nodes; adding a registered root again is a no-op.
func (s *Scene) AddRoot(n *Node) error {
	switch {
	case n == nil:
		return ErrNilNode
	case n.disposed:
		return ErrDisposed
	case n.parent != nil:
		return ErrNotRoot
	}
	for _, r := range s.roots {
		if r == n {
			return nil
		}
	}
	s.roots = append(s.roots, n)
	return nil
}

// RemoveRoot unregisters n. The node itself is left untouched.
func (s *Scene) RemoveRoot(n *Node) bool {
	for i, r := range s.roots {
		if r == n {
			copy(s.roots[i:], s.roots[i+1:])
			s.roots[len(s.roots)-1] = nil
			s.roots = s.roots[:len(s.roots)-1]
			return true
		}
	}
	return false
}

// Roots returns the registered roots. The returned slice MUST NOT be mutated.
func (s *Scene) Roots() []*Node {
	return s.roots
}

// NewCamera creates a camera with an identity from the scene and registers
// it. Its node becomes a root until it is linked elsewhere.
func (s *Scene) NewCamera(name string) *Camera {
	c := NewCamera(s.ids, name)
	s.cameras = append(s.cameras, c)
	s.roots = append(s.roots, c.Node)
	return c
}

// AddCamera registers c so Update advances its follow and move animations.
// A parentless camera node is also registered as a root. A nil camera or a
// disposed camera node is rejected and leaves the scene unchanged.
func (s *Scene) AddCamera(c *Camera) error {
	if c == nil || c.Node == nil {
		return ErrNilNode
	}
	if c.Node.disposed {
		return ErrDisposed
	}
	for _, have := range s.cameras {
		if have == c {
			return nil
		}
	}
	if c.Node.parent == nil {
		if err := s.AddRoot(c.Node); err != nil {
			return err
		}
	}
	s.cameras = append(s.cameras, c)
	return nil
}

// RemoveCamera unregisters c. Its node stays where it is.
func (s *Scene) RemoveCamera(c *Camera) bool {
	for i, have := range s.cameras {
		if have == c {
			copy(s.cameras[i:], s.cameras[i+1:])
			s.cameras[len(s.cameras)-1] = nil
			s.cameras = s.cameras[:len(s.cameras)-1]
			return true
		}
	}
	return false
}

// Cameras returns the registered cameras. The returned slice MUST NOT be
// mutated.
func (s *Scene) Cameras() []*Camera {
	return s.cameras
}

// Collect returns what c sees across the scene. Registered roots that have
// since been linked under another node are reached through their new tree.
func (s *Scene) Collect(c *Camera) []*Node {
	var out []*Node
	for _, r := range s.roots {
		if r.parent == nil && !r.disposed {
			out = c.collect(r, out)
		}
	}
	sortByOrder(out)
	return out
}

// Update advances every unfinished Animator attached to a node and every
// camera, then propagates each root. Roots that were disposed are dropped.
// Roots that have since been linked under another node are skipped, since
// their new tree animates and propagates them.
func (s *Scene) Update(dt float32) {
	s.update(dt, false)
}

// ForceUpdate propagates every root with force set, recomputing all world
// matrices. Animations are not advanced.
func (s *Scene) ForceUpdate() {
	s.update(0, true)
}

func (s *Scene) update(dt float32, force bool) {
	s.pruneDisposed()

	var stats debugStats
	var t0 time.Time

	if !force {
		if s.debug {
			t0 = time.Now()
		}
		for _, r := range s.roots {
			if r.parent != nil {
				continue
			}
			r.Walk(func(n *Node) {
				for _, a := range n.Animations {
					if anim, ok := a.(Animator); ok && !anim.Finished() {
						anim.Advance(dt)
						stats.animated++
					}
				}
			})
		}
		for _, c := range s.cameras {
			c.update(dt)
		}
		if s.debug {
			stats.animateTime = time.Since(t0)
		}
	}

	for _, r := range s.roots {
		if r.parent != nil {
			continue
		}
		stats.roots++
		if !s.debug {
			r.Propagate(force)
			continue
		}
		ps, d := r.propagateTimed(force)
		stats.visited += ps.visited
		stats.recomputed += ps.recomputed
		stats.propagateTime += d
	}

	s.debugLog(stats)
}

func (s *Scene) pruneDisposed() {
	kept := s.roots[:0]
	for _, r := range s.roots {
		if !r.disposed {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(s.roots); i++ {
		s.roots[i] = nil
	}
	s.roots = kept
}

// FindByUUID searches every root in order.
func (s *Scene) FindByUUID(id string) *Node {
	for _, r := range s.roots {
		if n := r.FindByUUID(id); n != nil {
			return n
		}
	}
	return nil
}

// FindByName searches every root in order.
func (s *Scene) FindByName(name string) *Node {
	for _, r := range s.roots {
		if n := r.FindByName(name); n != nil {
			return n
		}
	}
	return nil
}

// Snapshot captures every root in order. Registered roots that have since
// been linked under another node appear only inside their new tree.
func (s *Scene) Snapshot() []Document {
	docs := make([]Document, 0, len(s.roots))
	for _, r := range s.roots {
		if r.parent != nil {
			continue
		}
		docs = append(docs, r.Snapshot())
	}
	return docs
}

// SetDebugMode enables or disables debug mode. When enabled, use of disposed
// nodes and oversized trees are reported as warnings and per-update stats
// are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// DebugMode reports whether debug mode is on.
func (s *Scene) DebugMode() bool {
	return s.debug
}

func (s *Scene) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger
}
