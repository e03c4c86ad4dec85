// Package arbor is the transform and signal core of a retained-mode 3D scene
// graph.
//
// Every element is a [Node]. Nodes form trees through [Node.Link] and
// [Node.Unlink]; each keeps a local transform (position, rotation as both
// [Euler] angles and a quaternion, scale) and a world transform derived from
// its ancestors. Changes mark a node dirty and [Node.Propagate] recomputes
// only what is stale, once per tick, from each root.
//
// # Quick start
//
// A [Scene] owns roots, hands out node identities and is the per-tick driver:
//
//	scene := arbor.NewScene()
//	world := scene.NewRoot("world")
//
//	ship := scene.NewNode("ship")
//	ship.SetPosition(mgl64.Vec3{0, 0, -10})
//	world.Link(ship)
//
//	scene.Update(1.0 / 60) // advance tweens, propagate
//	fmt.Println(ship.WorldPosition())
//
// The ebiten driver in arbor/driver runs Scene.Update from an ebiten game
// loop.
//
// # Signals
//
// Every node embeds a [Bus]. Structural changes dispatch [SignalAttach] and
// [SignalDetach] on the moved node and [SignalChildAttach] and
// [SignalChildDetach] on the parent, each with a [LinkEvent] payload:
//
//	ship.OnFunc(arbor.SignalAttach, func(e arbor.Event) error {
//		ev := e.Payload.(arbor.LinkEvent)
//		log.Printf("%s joined %s", ev.Child.Name, ev.Parent.Name)
//		return nil
//	})
//
// Handlers run synchronously on the caller's goroutine. A failing handler is
// reported and never stops the others.
//
// # Layers
//
// [LayerMask] is a 32-slot membership set. Renderers show a node to a camera
// when their masks [LayerMask.Test] true. [Camera.Collect] applies that
// filter, plus distance culling, and orders the result by
// [RenderTraits].Order.
//
// # Serialization
//
// [Node.Snapshot] yields a [Document]; nodes marshal to JSON through it and
// [Restore] rebuilds a tree from one.
//
// Tweens (via [gween]) are animation resources: attach them with
// [Node.AddAnimation] and Scene.Update advances them.
//
// ECS integration (via a [Donburi] adapter) lives in arbor/ecs.
//
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package arbor
