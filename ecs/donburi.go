package ecs

import (
	"github.com/phanxgames/arbor"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// StructureEvent is the ECS-side copy of an arbor structural signal. Nodes are
// referenced by uuid so systems never hold node pointers.
type StructureEvent struct {
	Signal     arbor.Signal
	ParentUUID string
	ChildUUID  string
	ParentName string
	ChildName  string
}

// StructureEventType is the Donburi event type for arbor structural signals.
// Subscribe to this in your ECS systems to follow attach and detach changes.
var StructureEventType = events.NewEventType[StructureEvent]()

// structuralSignals are the signals a Bridge forwards.
var structuralSignals = [...]arbor.Signal{
	arbor.SignalAttach,
	arbor.SignalChildAttach,
	arbor.SignalDetach,
	arbor.SignalChildDetach,
}

// Bridge forwards the structural signals of watched nodes into a Donburi
// world. Events are queued; consume them with StructureEventType.ProcessEvents
// or events.ProcessAllEvents.
type Bridge struct {
	world donburi.World
}

// NewBridge creates a Bridge publishing into world.
func NewBridge(world donburi.World) *Bridge {
	return &Bridge{world: world}
}

// Watch subscribes the bridge to every node in n's subtree. Children linked
// to a watched node later are watched automatically. Watching a node twice
// does not duplicate events.
func (b *Bridge) Watch(n *arbor.Node) {
	n.Walk(func(node *arbor.Node) {
		for _, sig := range structuralSignals {
			node.On(sig, b)
		}
	})
}

// Unwatch removes the bridge from every node in n's subtree.
func (b *Bridge) Unwatch(n *arbor.Node) {
	n.Walk(func(node *arbor.Node) {
		for _, sig := range structuralSignals {
			node.Off(sig, b)
		}
	})
}

// HandleSignal implements arbor.Handler.
func (b *Bridge) HandleSignal(e arbor.Event) error {
	ev, ok := e.Payload.(arbor.LinkEvent)
	if !ok || ev.Parent == nil || ev.Child == nil {
		return nil
	}
	if e.Signal == arbor.SignalChildAttach {
		b.Watch(ev.Child)
	}
	StructureEventType.Publish(b.world, StructureEvent{
		Signal:     e.Signal,
		ParentUUID: ev.Parent.UUID(),
		ChildUUID:  ev.Child.UUID(),
		ParentName: ev.Parent.Name,
		ChildName:  ev.Child.Name,
	})
	return nil
}
