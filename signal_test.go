package arbor

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const testSignal Signal = "onTest"

type countingHandler struct {
	calls int
	last  Event
}

func (h *countingHandler) HandleSignal(e Event) error {
	h.calls++
	h.last = e
	return nil
}

// wrapperHandler is of a comparable type, but holding a func makes == panic.
type wrapperHandler struct {
	inner Handler
}

func (w wrapperHandler) HandleSignal(e Event) error {
	return w.inner.HandleSignal(e)
}

func TestBusZeroValue(t *testing.T) {
	var b Bus
	if b.Has(testSignal) || b.Count(testSignal) != 0 {
		t.Error("zero Bus should have no handlers")
	}
	if n := b.Dispatch(testSignal, nil); n != 0 {
		t.Errorf("Dispatch on empty bus = %d", n)
	}
	b.OffAll()
	if b.Off(testSignal, &countingHandler{}) {
		t.Error("Off on empty bus should report false")
	}
}

func TestBusDispatchOrderAndPayload(t *testing.T) {
	var b Bus
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		b.OnFunc(testSignal, func(e Event) error {
			if e.Signal != testSignal || e.Payload != "p" {
				t.Errorf("event = %+v", e)
			}
			order = append(order, i)
			return nil
		})
	}
	b.Dispatch(testSignal, "p")
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
}

func TestBusOnDeduplicatesComparableHandler(t *testing.T) {
	var b Bus
	h := &countingHandler{}
	s1 := b.On(testSignal, h)
	s2 := b.On(testSignal, h)
	if b.Count(testSignal) != 1 {
		t.Fatalf("Count = %d, want 1", b.Count(testSignal))
	}
	if s1 != s2 {
		t.Error("second On should return the existing subscription")
	}
	b.Dispatch(testSignal, nil)
	if h.calls != 1 {
		t.Errorf("calls = %d, want 1", h.calls)
	}

	// Same handler on another signal is a separate registration.
	b.On("other", h)
	if b.Count("other") != 1 {
		t.Error("handler should register on a second signal")
	}
}

func TestBusOnFuncNeverDeduplicates(t *testing.T) {
	var b Bus
	calls := 0
	fn := func(Event) error { calls++; return nil }
	b.OnFunc(testSignal, fn)
	b.OnFunc(testSignal, fn)
	b.On(testSignal, HandlerFunc(fn))
	if b.Count(testSignal) != 3 {
		t.Errorf("Count = %d, want 3", b.Count(testSignal))
	}
	b.Dispatch(testSignal, nil)
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if b.Off(testSignal, HandlerFunc(fn)) {
		t.Error("Off should not match a HandlerFunc")
	}
}

func TestBusUncomparableValuesAreDistinct(t *testing.T) {
	var b Bus
	h := HandlerFunc(func(Event) error { return nil })
	b.On(testSignal, wrapperHandler{inner: h})
	b.On(testSignal, wrapperHandler{inner: h})
	if b.Count(testSignal) != 2 {
		t.Errorf("Count = %d, want 2", b.Count(testSignal))
	}
	if b.Off(testSignal, wrapperHandler{inner: h}) {
		t.Error("Off should not match a handler holding a func")
	}
}

func TestBusNilHandler(t *testing.T) {
	var b Bus
	for _, s := range []Subscription{b.On(testSignal, nil), b.OnFunc(testSignal, nil), b.Once(testSignal, nil)} {
		if s.Active() || s.Cancel() {
			t.Error("nil handler should yield an inactive subscription")
		}
	}
	if b.Has(testSignal) {
		t.Error("nil handlers should not register")
	}
}

func TestBusOffPrunesSignal(t *testing.T) {
	var b Bus
	h1, h2 := &countingHandler{}, &countingHandler{}
	b.On(testSignal, h1)
	b.On(testSignal, h2)

	if !b.Off(testSignal, h1) {
		t.Fatal("Off(h1) should report true")
	}
	if b.Off(testSignal, h1) {
		t.Error("second Off(h1) should report false")
	}
	b.Dispatch(testSignal, nil)
	if h1.calls != 0 || h2.calls != 1 {
		t.Errorf("calls = %d, %d; want 0, 1", h1.calls, h2.calls)
	}

	b.Off(testSignal, h2)
	if b.Has(testSignal) {
		t.Error("signal should be pruned once empty")
	}
	if _, ok := b.handlers[testSignal]; ok {
		t.Error("empty key should be removed from the map")
	}
}

func TestSubscriptionCancel(t *testing.T) {
	var b Bus
	calls := 0
	sub := b.OnFunc(testSignal, func(Event) error { calls++; return nil })
	if !sub.Active() || sub.Signal() != testSignal {
		t.Fatal("subscription should be active for testSignal")
	}
	if !sub.Cancel() {
		t.Fatal("Cancel should report true")
	}
	if sub.Cancel() || sub.Active() {
		t.Error("cancelled subscription should be inactive")
	}
	b.Dispatch(testSignal, nil)
	if calls != 0 {
		t.Errorf("calls = %d after Cancel", calls)
	}
}

func TestBusOnceFiresOnce(t *testing.T) {
	var b Bus
	h := &countingHandler{}
	b.Once(testSignal, h)
	for i := 0; i < 3; i++ {
		b.Dispatch(testSignal, i)
	}
	if h.calls != 1 {
		t.Errorf("calls = %d, want 1", h.calls)
	}
	if h.last.Payload != 0 {
		t.Errorf("payload = %v, want 0", h.last.Payload)
	}
	if b.Has(testSignal) {
		t.Error("Once registration should be gone after firing")
	}
}

func TestBusOnceReentrantDispatch(t *testing.T) {
	var b Bus
	calls := 0
	b.Once(testSignal, HandlerFunc(func(Event) error {
		calls++
		b.Dispatch(testSignal, nil)
		return nil
	}))
	b.Dispatch(testSignal, nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBusOnceCancelledBeforeDispatch(t *testing.T) {
	var b Bus
	h := &countingHandler{}
	sub := b.Once(testSignal, h)
	sub.Cancel()
	b.Dispatch(testSignal, nil)
	if h.calls != 0 {
		t.Error("cancelled Once should not fire")
	}
}

func TestBusFailingHandlerDoesNotStopOthers(t *testing.T) {
	var b Bus
	var reported []error
	b.SetErrorHook(func(sig Signal, err error) {
		if sig != testSignal {
			t.Errorf("hook signal = %q", sig)
		}
		reported = append(reported, err)
	})

	boom := errors.New("boom")
	b.OnFunc(testSignal, func(Event) error { return boom })
	b.OnFunc(testSignal, func(Event) error { panic("kaboom") })
	h := &countingHandler{}
	b.On(testSignal, h)

	if failed := b.Dispatch(testSignal, nil); failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
	if h.calls != 1 {
		t.Error("handler after the failing ones should still run")
	}
	if len(reported) != 2 {
		t.Fatalf("reported %d errors, want 2", len(reported))
	}
	if !errors.Is(reported[0], boom) {
		t.Errorf("first error = %v, want boom", reported[0])
	}
	if !strings.Contains(reported[1].Error(), "kaboom") {
		t.Errorf("panic error = %v", reported[1])
	}
}

func TestBusDefaultReportLogs(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	var b Bus
	b.OnFunc(testSignal, func(Event) error { return errors.New("bad handler") })
	b.Dispatch(testSignal, nil)

	out := buf.String()
	if !strings.Contains(out, "signal handler failed") || !strings.Contains(out, "bad handler") {
		t.Errorf("log output = %q", out)
	}
	if !strings.Contains(out, "signal=onTest") {
		t.Errorf("log should carry the signal: %q", out)
	}
}

func TestBusDispatchSnapshot(t *testing.T) {
	var b Bus
	late := &countingHandler{}
	victim := &countingHandler{}

	b.OnFunc(testSignal, func(Event) error {
		b.On(testSignal, late)
		b.Off(testSignal, victim)
		return nil
	})
	b.On(testSignal, victim)

	b.Dispatch(testSignal, nil)
	if late.calls != 0 {
		t.Error("handler added during dispatch should not run in it")
	}
	if victim.calls != 1 {
		t.Error("handler removed during dispatch should still run in it")
	}

	b.Dispatch(testSignal, nil)
	if late.calls != 1 || victim.calls != 1 {
		t.Errorf("second dispatch calls = late %d, victim %d; want 1, 1", late.calls, victim.calls)
	}
}

func TestBusOffAll(t *testing.T) {
	var b Bus
	b.On("a", &countingHandler{})
	b.On("b", &countingHandler{})
	b.On("c", &countingHandler{})

	b.OffAll("a", "b")
	if b.Has("a") || b.Has("b") || !b.Has("c") {
		t.Error("OffAll with names should only clear those signals")
	}
	b.OffAll()
	if b.Has("c") {
		t.Error("OffAll without names should clear everything")
	}
}

func TestBusCount(t *testing.T) {
	var b Bus
	b.On(testSignal, &countingHandler{})
	b.On(testSignal, &countingHandler{})
	b.Once(testSignal, &countingHandler{})
	if b.Count(testSignal) != 3 {
		t.Errorf("Count = %d, want 3", b.Count(testSignal))
	}
	b.Dispatch(testSignal, nil)
	if b.Count(testSignal) != 2 {
		t.Errorf("Count after Once fired = %d, want 2", b.Count(testSignal))
	}
}
