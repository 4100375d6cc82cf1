// Package events carries pad activity to in-process observers.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

const (
	EventPadCreated EventType = "pad.created"
	EventPadClosed  EventType = "pad.closed"

	EventPadKey       EventType = "pad.key"
	EventPadEvaluated EventType = "pad.evaluated"
	EventPadCleared   EventType = "pad.cleared"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const SourcePad EventSource = "pad"

// Event is one observation of pad activity.
type Event struct {
	ID        string         `json:"id"`
	PadID     string         `json:"pad_id,omitempty"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, source EventSource, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}

// Subscriber receives events.
type Subscriber func(Event)

// subscription owns a mailbox drained by a single goroutine, so a handler
// sees events in publish order and never runs concurrently with itself.
type subscription struct {
	padID   string
	types   []EventType
	handler Subscriber
	inbox   chan Event
	done    chan struct{}
}

func (s *subscription) matches(e Event) bool {
	if s.padID != "" && s.padID != e.PadID {
		return false
	}
	if len(s.types) == 0 {
		return true
	}
	for _, t := range s.types {
		if t == e.Type {
			return true
		}
	}
	return false
}

func (s *subscription) run() {
	defer close(s.done)
	for e := range s.inbox {
		s.handler(e)
	}
}

// Bus fans events out to subscribers and keeps the most recent ones.
// Publish never blocks: a subscriber whose mailbox is full misses the event.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]*subscription
	nextID  int
	mailbox int
	history *RingBuffer
	closed  bool
	dropped atomic.Uint64
}

// NewBus creates a bus retaining bufferSize events of history; each
// subscriber mailbox holds as many.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Bus{
		subs:    make(map[int]*subscription),
		mailbox: bufferSize,
		history: NewRingBuffer(bufferSize),
	}
}

// Publish records the event and hands it to every matching subscriber.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	b.history.Add(event)

	for _, s := range b.subs {
		if !s.matches(event) {
			continue
		}
		select {
		case s.inbox <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers handler for the given event types (all when none).
// The returned function unsubscribes and waits for in-flight deliveries.
func (b *Bus) Subscribe(handler Subscriber, eventTypes ...EventType) func() {
	return b.subscribe("", handler, eventTypes)
}

// SubscribePad is Subscribe restricted to the events of one pad.
func (b *Bus) SubscribePad(padID string, handler Subscriber, eventTypes ...EventType) func() {
	return b.subscribe(padID, handler, eventTypes)
}

func (b *Bus) subscribe(padID string, handler Subscriber, types []EventType) func() {
	s := &subscription{
		padID:   padID,
		types:   types,
		handler: handler,
		inbox:   make(chan Event, b.mailbox),
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.done)
		return func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.mu.Unlock()

	go s.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.inbox)
			}
			b.mu.Unlock()
			<-s.done
		})
	}
}

// History returns up to limit recent events, oldest first.
func (b *Bus) History(limit int) []Event {
	return b.history.Get(limit, "")
}

// PadHistory returns up to limit recent events of one pad, oldest first.
func (b *Bus) PadHistory(padID string, limit int) []Event {
	return b.history.Get(limit, padID)
}

// Dropped counts deliveries skipped because a subscriber fell behind.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close stops every subscriber after it drains its mailbox.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[int]*subscription)
	for _, s := range subs {
		close(s.inbox)
	}
	b.mu.Unlock()

	for _, s := range subs {
		<-s.done
	}
}

// RingBuffer keeps the last N events.
type RingBuffer struct {
	mu     sync.RWMutex
	events []Event
	next   int
	full   bool
}

// NewRingBuffer creates a buffer holding size events.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 1
	}
	return &RingBuffer{events: make([]Event, size)}
}

// Add stores e, evicting the oldest event when full.
func (r *RingBuffer) Add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.next] = e
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
}

// Get returns up to n of the newest events, oldest first. A non-empty padID
// keeps only that pad's events.
func (r *RingBuffer) Get(n int, padID string) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 {
		return nil
	}

	count := r.next
	if r.full {
		count = len(r.events)
	}

	// Walk newest to oldest, then reverse.
	var out []Event
	for i := 0; i < count && len(out) < n; i++ {
		e := r.events[(r.next-1-i+len(r.events))%len(r.events)]
		if padID != "" && e.PadID != padID {
			continue
		}
		out = append(out, e)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
