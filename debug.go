package arbor

import "time"

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// debugStats holds per-update traversal metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	roots         int
	animated      int
	visited       int
	recomputed    int
	animateTime   time.Duration
	propagateTime time.Duration
}

// debugLog reports update stats through the package logger.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.log().Debug("scene update",
		"roots", stats.roots,
		"animated", stats.animated,
		"visited", stats.visited,
		"recomputed", stats.recomputed,
		"animate", stats.animateTime,
		"propagate", stats.propagateTime,
		"total", stats.animateTime+stats.propagateTime,
	)
}

// debugReportDisposed warns when a disposed node takes part in a tree
// operation. The operation itself returns ErrDisposed.
func debugReportDisposed(a, b *Node, op string) {
	for _, n := range [2]*Node{a, b} {
		if n != nil && n.disposed {
			logger.Warn("operation on disposed node", "op", op, "name", n.Name, "id", n.id)
		}
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	if depth := n.Depth() + 1; depth > debugMaxTreeDepth {
		logger.Warn("tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "name", n.Name)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		logger.Warn("child count exceeds threshold",
			"name", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
