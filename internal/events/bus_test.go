package events

import (
	"sync"
	"testing"
	"time"
)

// collector records delivered events.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var c collector
	unsubscribe := bus.Subscribe(c.handle, EventPadEvaluated)

	bus.Publish(NewPadEvent(SourcePad, PadKeyPayload{Key: "5"}, "p1"))
	bus.Publish(NewPadEvent(SourcePad, PadEvaluatedPayload{Left: "5", Operator: "+", Right: "3", Result: "8"}, "p1"))

	// Unsubscribe waits for queued deliveries.
	unsubscribe()

	got := c.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Type != EventPadEvaluated || got[0].PadID != "p1" {
		t.Errorf("unexpected event %+v", got[0])
	}
}

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(128)
	defer bus.Close()

	var c collector
	unsubscribe := bus.Subscribe(c.handle)

	keys := "0123456789"
	for _, k := range keys {
		bus.Publish(NewPadEvent(SourcePad, PadKeyPayload{Key: string(k)}, "p1"))
	}
	unsubscribe()

	got := c.snapshot()
	if len(got) != len(keys) {
		t.Fatalf("expected %d events, got %d", len(keys), len(got))
	}
	for i, e := range got {
		if e.Payload["key"] != string(keys[i]) {
			t.Fatalf("event %d has key %v, want %c", i, e.Payload["key"], keys[i])
		}
	}
}

func TestBusSubscribePad(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var c collector
	unsubscribe := bus.SubscribePad("p2", c.handle)

	bus.Publish(NewPadEvent(SourcePad, PadClearedPayload{}, "p1"))
	bus.Publish(NewPadEvent(SourcePad, PadClearedPayload{}, "p2"))
	bus.Publish(NewTypedEvent(SourcePad, PadClearedPayload{}))
	unsubscribe()

	got := c.snapshot()
	if len(got) != 1 || got[0].PadID != "p2" {
		t.Errorf("expected only the p2 event, got %+v", got)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var c collector
	unsubscribe := bus.Subscribe(c.handle)
	unsubscribe()
	unsubscribe()

	bus.Publish(NewTypedEvent(SourcePad, PadClearedPayload{}))
	if got := len(c.snapshot()); got != 0 {
		t.Errorf("expected no deliveries after unsubscribe, got %d", got)
	}
}

func TestBusDropsWhenSubscriberFallsBehind(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	release := make(chan struct{})
	unsubscribe := bus.Subscribe(func(Event) { <-release })

	for i := 0; i < 5; i++ {
		bus.Publish(NewTypedEvent(SourcePad, PadClearedPayload{}))
	}
	if bus.Dropped() == 0 {
		t.Error("expected dropped deliveries")
	}

	close(release)
	unsubscribe()
}

func TestBusHistory(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	for i := 0; i < 3; i++ {
		bus.Publish(NewPadEvent(SourcePad, PadKeyPayload{Key: "1"}, "a"))
	}
	bus.Publish(NewPadEvent(SourcePad, PadKeyPayload{Key: "2"}, "b"))

	if got := len(bus.History(10)); got != 4 {
		t.Errorf("expected 4 events in history, got %d", got)
	}
	if got := len(bus.History(2)); got != 2 {
		t.Errorf("expected limit to apply, got %d", got)
	}

	a := bus.PadHistory("a", 10)
	if len(a) != 3 {
		t.Fatalf("expected 3 events for pad a, got %d", len(a))
	}
	for _, e := range a {
		if e.PadID != "a" {
			t.Errorf("foreign event in pad history: %+v", e)
		}
	}
}

func TestBusClose(t *testing.T) {
	bus := NewBus(4)

	var c collector
	bus.Subscribe(c.handle)
	bus.Publish(NewTypedEvent(SourcePad, PadClearedPayload{}))

	done := make(chan struct{})
	go func() {
		bus.Close()
		bus.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	if got := len(c.snapshot()); got != 1 {
		t.Errorf("expected queued event delivered before close, got %d", got)
	}

	bus.Publish(NewTypedEvent(SourcePad, PadClearedPayload{}))
	if got := len(bus.History(10)); got != 1 {
		t.Errorf("publish after close should be ignored, history has %d", got)
	}
	bus.Subscribe(c.handle)()
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)
	if got := rb.Get(5, ""); len(got) != 0 {
		t.Fatalf("expected empty buffer, got %d", len(got))
	}

	for i := 0; i < 5; i++ {
		rb.Add(NewEvent(EventPadKey, SourcePad, map[string]any{"i": i}))
	}

	events := rb.Get(10, "")
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if got := events[0].Payload["i"]; got != 2 {
		t.Errorf("expected oldest retained event i=2, got %v", got)
	}
	if got := events[2].Payload["i"]; got != 4 {
		t.Errorf("expected newest event i=4, got %v", got)
	}

	if got := rb.Get(1, ""); len(got) != 1 || got[0].Payload["i"] != 4 {
		t.Errorf("expected only the newest event, got %+v", got)
	}
}

func TestExtractPayload(t *testing.T) {
	e := NewPadEvent(SourcePad, PadEvaluatedPayload{Left: "6", Operator: "/", Right: "0", Result: "Infinity"}, "p")

	p, ok := ExtractPayload[PadEvaluatedPayload](e)
	if !ok {
		t.Fatal("expected payload")
	}
	if p.Result != "Infinity" || p.Operator != "/" {
		t.Errorf("unexpected payload %+v", p)
	}

	if _, ok := ExtractPayload[PadKeyPayload](e); ok {
		t.Error("expected type mismatch to fail")
	}
}
