// Package ecs provides ECS adapters for arbor's structural signals.
//
// The primary adapter is [NewBridge], which forwards attach and detach
// signals from a node tree into a [Donburi] world as typed events.
// Subscribe to [StructureEventType] in your ECS systems to receive them.
//
// Usage:
//
//	bridge := ecs.NewBridge(world)
//	bridge.Watch(scene.Roots()[0])
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
