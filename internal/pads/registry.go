package pads

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dohr-michael/calcpad/internal/events"
)

// ErrNotFound is returned when no pad has the requested ID.
var ErrNotFound = errors.New("pad not found")

// ErrLimitReached is returned when the registry is full.
var ErrLimitReached = errors.New("pad limit reached")

// Registry holds live pads keyed by ID. Nothing is persisted.
type Registry struct {
	mu   sync.RWMutex
	pads map[string]*Pad
	bus  *events.Bus
	max  int
}

// NewRegistry creates a registry publishing pad events on bus (may be nil).
// max <= 0 means unlimited.
func NewRegistry(bus *events.Bus, max int) *Registry {
	return &Registry{
		pads: make(map[string]*Pad),
		bus:  bus,
		max:  max,
	}
}

// SetMax changes the pad limit. Existing pads are kept when the new limit is
// lower; only further creations are refused.
func (r *Registry) SetMax(max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.max = max
}

func generatePadID() string {
	u := uuid.New().String()
	return "pad_" + strings.ReplaceAll(u[:8], "-", "")
}

// Create registers a new pad in its initial state.
func (r *Registry) Create(name string) (*Pad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.pads) >= r.max {
		return nil, fmt.Errorf("create pad: %w (%d)", ErrLimitReached, r.max)
	}

	id := generatePadID()
	for _, taken := r.pads[id]; taken; _, taken = r.pads[id] {
		id = generatePadID()
	}

	p := newPad(id, name, r.bus)
	r.pads[id] = p

	if r.bus != nil {
		r.bus.Publish(events.NewPadEvent(events.SourcePad, events.PadCreatedPayload{Name: name}, id))
	}
	slog.Debug("pad created", "pad_id", id, "name", name)
	return p, nil
}

// Get returns the pad with the given ID.
func (r *Registry) Get(id string) (*Pad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pads[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// List returns a snapshot of every pad, most recently used first.
func (r *Registry) List() []Info {
	r.mu.RLock()
	pads := make([]*Pad, 0, len(r.pads))
	for _, p := range r.pads {
		pads = append(pads, p)
	}
	r.mu.RUnlock()

	infos := make([]Info, 0, len(pads))
	for _, p := range pads {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos
}

// Len returns the number of live pads.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pads)
}

// Delete removes a pad.
func (r *Registry) Delete(id string) error {
	return r.remove(id, "deleted")
}

// Prune removes pads idle for longer than maxIdle and returns how many were dropped.
func (r *Registry) Prune(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)

	r.mu.RLock()
	var stale []string
	for id, p := range r.pads {
		if p.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	dropped := 0
	for _, id := range stale {
		if err := r.remove(id, "idle"); err == nil {
			dropped++
		}
	}
	if dropped > 0 {
		slog.Info("pruned idle pads", "count", dropped)
	}
	return dropped
}

func (r *Registry) remove(id, reason string) error {
	r.mu.Lock()
	_, ok := r.pads[id]
	delete(r.pads, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if r.bus != nil {
		r.bus.Publish(events.NewPadEvent(events.SourcePad, events.PadClosedPayload{Reason: reason}, id))
	}
	slog.Debug("pad removed", "pad_id", id, "reason", reason)
	return nil
}
