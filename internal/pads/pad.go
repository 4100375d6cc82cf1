// Package pads keeps live calculator instances in memory.
package pads

import (
	"sync"
	"time"

	"github.com/dohr-michael/calcpad/internal/calc"
	"github.com/dohr-michael/calcpad/internal/events"
)

// Info is a point-in-time description of a pad.
type Info struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Presses   int        `json:"presses"`
	State     calc.State `json:"state"`
	Display   string     `json:"display"`
}

// Pad is one calculator instance. Presses are applied one at a time, so
// concurrent callers observe the same sequential dispatch a keypad gives.
type Pad struct {
	id        string
	name      string
	createdAt time.Time
	bus       *events.Bus

	mu        sync.Mutex
	state     calc.State
	updatedAt time.Time
	presses   int
}

func newPad(id, name string, bus *events.Bus) *Pad {
	now := time.Now()
	return &Pad{
		id:        id,
		name:      name,
		createdAt: now,
		updatedAt: now,
		bus:       bus,
	}
}

// ID returns the pad identifier.
func (p *Pad) ID() string { return p.id }

// State returns the current calculator state.
func (p *Pad) State() calc.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Press applies keys in order and returns the resulting state.
func (p *Pad) Press(keys ...calc.Key) calc.State {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, k := range keys {
		prev := p.state
		p.state = prev.Apply(k)
		p.presses++
		p.publishTransition(k, prev, p.state)
	}
	p.updatedAt = time.Now()
	return p.state
}

// Reset clears the pad.
func (p *Pad) Reset() calc.State {
	return p.Press(calc.ControlKey(calc.ControlClear))
}

// Info returns a snapshot of the pad.
func (p *Pad) Info() Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Info{
		ID:        p.id,
		Name:      p.name,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
		Presses:   p.presses,
		State:     p.state,
		Display:   p.state.Display(),
	}
}

func (p *Pad) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updatedAt
}

func (p *Pad) publishTransition(k calc.Key, prev, next calc.State) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(events.NewPadEvent(events.SourcePad, events.PadKeyPayload{
		Key:   k.String(),
		State: Snapshot(next),
	}, p.id))

	switch {
	case evaluated(k, prev):
		p.bus.Publish(events.NewPadEvent(events.SourcePad, events.PadEvaluatedPayload{
			Left:     prev.First,
			Operator: prev.Operator.String(),
			Right:    prev.Second,
			Result:   next.Result,
		}, p.id))
	case k.Kind == calc.KindControl && k.Control == calc.ControlClear:
		p.bus.Publish(events.NewPadEvent(events.SourcePad, events.PadClearedPayload{}, p.id))
	}
}

// evaluated reports whether pressing k on prev runs a computation.
func evaluated(k calc.Key, prev calc.State) bool {
	triggers := k.Kind == calc.KindOperator || (k.Kind == calc.KindControl && k.Control == calc.ControlEquals)
	return triggers && prev.First != "" && prev.Second != "" && prev.Operator != calc.OpNone
}

// Snapshot converts a state into its event form.
func Snapshot(s calc.State) events.PadSnapshot {
	return events.PadSnapshot{
		First:    s.First,
		Second:   s.Second,
		Operator: s.Operator.String(),
		Result:   s.Result,
		Display:  s.Display(),
	}
}

// StateFromSnapshot rebuilds a state from its event form.
func StateFromSnapshot(s events.PadSnapshot) (calc.State, error) {
	op, err := calc.ParseOperator(s.Operator)
	if err != nil {
		return calc.State{}, err
	}
	return calc.State{First: s.First, Second: s.Second, Operator: op, Result: s.Result}, nil
}
