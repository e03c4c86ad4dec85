package arbor

import (
	"fmt"
	"reflect"
)

// Signal names an event published on a Bus.
type Signal string

// Structural signals raised by hierarchy mutation. Every one carries a
// LinkEvent payload.
const (
	SignalAttach      Signal = "onAttach"      // on the child, after it gained a parent
	SignalChildAttach Signal = "onChildAttach" // on the parent, after it gained a child
	SignalDetach      Signal = "onDetach"      // on the child, after it lost its parent
	SignalChildDetach Signal = "onChildDetach" // on the parent, after it lost a child
)

// Event is what a Handler receives.
type Event struct {
	Signal  Signal
	Payload any
}

// Handler reacts to a dispatched signal. A returned error is reported by the
// bus and does not stop dispatch to other handlers.
type Handler interface {
	HandleSignal(Event) error
}

// HandlerFunc adapts a function to Handler.
//
// Functions are not comparable in Go, so a HandlerFunc registration can only
// be removed through the Subscription returned by On or Once, never by Off.
type HandlerFunc func(Event) error

// HandleSignal calls f(e).
func (f HandlerFunc) HandleSignal(e Event) error {
	return f(e)
}

type subscription struct {
	id         uint64
	handler    Handler
	comparable bool
}

// Bus is a per-owner registry of handlers keyed by signal. The zero value is
// ready to use. A Bus is not safe for concurrent use.
//
// Dispatch works on a snapshot of the handlers registered when it starts:
// handlers added during a dispatch are not called by it, and handlers removed
// during a dispatch are still called by it unless they were registered with
// Once.
type Bus struct {
	handlers map[Signal][]*subscription
	nextID   uint64
	onError  func(Signal, error)
}

// Subscription identifies one registration on a Bus.
type Subscription struct {
	bus    *Bus
	signal Signal
	id     uint64
}

// Cancel removes the registration. It reports whether anything was removed.
func (s Subscription) Cancel() bool {
	if s.bus == nil {
		return false
	}
	return s.bus.remove(s.signal, s.id)
}

// Active reports whether the registration is still present.
func (s Subscription) Active() bool {
	if s.bus == nil {
		return false
	}
	for _, sub := range s.bus.handlers[s.signal] {
		if sub.id == s.id {
			return true
		}
	}
	return false
}

// Signal returns the signal the registration listens to.
func (s Subscription) Signal() Signal {
	return s.signal
}

// On registers h for sig. Registering a comparable handler that is already
// registered for sig does not add a second entry; the existing registration
// is returned instead.
func (b *Bus) On(sig Signal, h Handler) Subscription {
	if h == nil {
		return Subscription{}
	}
	cmp := isComparable(h)
	if cmp {
		for _, sub := range b.handlers[sig] {
			if sub.comparable && sameHandler(sub.handler, h) {
				return Subscription{bus: b, signal: sig, id: sub.id}
			}
		}
	}
	return b.add(sig, h, cmp)
}

// OnFunc is shorthand for On(sig, HandlerFunc(fn)).
func (b *Bus) OnFunc(sig Signal, fn func(Event) error) Subscription {
	if fn == nil {
		return Subscription{}
	}
	return b.add(sig, HandlerFunc(fn), false)
}

// Once registers h to run for the next dispatch of sig only. The registration
// is removed before h runs, so h may dispatch sig again without being called
// a second time.
func (b *Bus) Once(sig Signal, h Handler) Subscription {
	if h == nil {
		return Subscription{}
	}
	o := &onceHandler{bus: b, signal: sig, inner: h}
	sub := b.add(sig, o, true)
	o.id = sub.id
	return sub
}

// Off removes the registration of h for sig and reports whether one existed.
// Signals left without handlers are pruned.
func (b *Bus) Off(sig Signal, h Handler) bool {
	if h == nil || !isComparable(h) {
		return false
	}
	for _, sub := range b.handlers[sig] {
		if sub.comparable && sameHandler(sub.handler, h) {
			return b.remove(sig, sub.id)
		}
	}
	return false
}

// OffAll removes every handler of the given signals, or of all signals when
// none are given.
func (b *Bus) OffAll(signals ...Signal) {
	if len(signals) == 0 {
		b.handlers = nil
		return
	}
	for _, sig := range signals {
		delete(b.handlers, sig)
	}
}

// Has reports whether any handler is registered for sig.
func (b *Bus) Has(sig Signal) bool {
	return len(b.handlers[sig]) > 0
}

// Count returns the number of handlers registered for sig.
func (b *Bus) Count(sig Signal) int {
	return len(b.handlers[sig])
}

// SetErrorHook sets the function that receives handler failures. A nil hook
// restores the default, which logs through the package logger.
func (b *Bus) SetErrorHook(fn func(Signal, error)) {
	b.onError = fn
}

// Dispatch calls every handler registered for sig, in registration order,
// with an Event carrying payload. A handler that returns an error or panics
// is reported and the remaining handlers still run. Dispatch returns the
// number of handlers that failed.
func (b *Bus) Dispatch(sig Signal, payload any) int {
	// add only appends past len and remove never writes to an existing
	// backing array, so this slice header is a stable snapshot.
	snapshot := b.handlers[sig]
	if len(snapshot) == 0 {
		return 0
	}

	e := Event{Signal: sig, Payload: payload}
	failed := 0
	for _, sub := range snapshot {
		if err := invokeHandler(sub.handler, e); err != nil {
			failed++
			b.report(sig, err)
		}
	}
	return failed
}

func (b *Bus) add(sig Signal, h Handler, cmp bool) Subscription {
	if b.handlers == nil {
		b.handlers = make(map[Signal][]*subscription)
	}
	b.nextID++
	b.handlers[sig] = append(b.handlers[sig], &subscription{id: b.nextID, handler: h, comparable: cmp})
	return Subscription{bus: b, signal: sig, id: b.nextID}
}

// remove deletes the registration with id and prunes the signal when empty.
// The slice is rebuilt rather than shifted in place; see Dispatch.
func (b *Bus) remove(sig Signal, id uint64) bool {
	subs := b.handlers[sig]
	for i, sub := range subs {
		if sub.id != id {
			continue
		}
		if len(subs) == 1 {
			delete(b.handlers, sig)
			return true
		}
		rest := make([]*subscription, 0, len(subs)-1)
		rest = append(rest, subs[:i]...)
		rest = append(rest, subs[i+1:]...)
		b.handlers[sig] = rest
		return true
	}
	return false
}

func (b *Bus) report(sig Signal, err error) {
	if b.onError != nil {
		b.onError(sig, err)
		return
	}
	logger.Error("signal handler failed", "signal", string(sig), "err", err)
}

// invokeHandler runs h and turns a panic into an error.
func invokeHandler(h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("arbor: handler for %q panicked: %v", e.Signal, r)
		}
	}()
	return h.HandleSignal(e)
}

type onceHandler struct {
	bus    *Bus
	signal Signal
	id     uint64
	inner  Handler
	fired  bool
}

func (o *onceHandler) HandleSignal(e Event) error {
	if o.fired {
		return nil
	}
	o.fired = true
	o.bus.remove(o.signal, o.id)
	return o.inner.HandleSignal(e)
}

func isComparable(h Handler) bool {
	return reflect.TypeOf(h).Comparable()
}

// sameHandler compares two handlers of comparable dynamic type. Struct
// handlers holding func fields pass the type check but panic on ==; those
// compare unequal.
func sameHandler(a, b Handler) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
