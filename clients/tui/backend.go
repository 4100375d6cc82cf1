package tui

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	wsclient "github.com/dohr-michael/calcpad/clients/ws"
	"github.com/dohr-michael/calcpad/clients/tui/organisms"
	"github.com/dohr-michael/calcpad/internal/calc"
	"github.com/dohr-michael/calcpad/internal/events"
	"github.com/dohr-michael/calcpad/internal/pads"
)

// Backend applies key presses somewhere and reports the resulting state.
type Backend interface {
	Press(k calc.Key) (calc.State, error)
	State() calc.State
	Mode() organisms.Mode
	PadID() string
}

// Follower is a Backend whose pad can change under it. Follow blocks until
// the next observed state and errors once updates stop for good.
type Follower interface {
	Follow() (calc.State, error)
}

// LocalBackend drives an in-process pad.
type LocalBackend struct {
	pad *pads.Pad
}

// NewLocalBackend wraps pad.
func NewLocalBackend(pad *pads.Pad) *LocalBackend {
	return &LocalBackend{pad: pad}
}

func (b *LocalBackend) Press(k calc.Key) (calc.State, error) { return b.pad.Press(k), nil }
func (b *LocalBackend) State() calc.State { return b.pad.State() }
func (b *LocalBackend) Mode() organisms.Mode { return organisms.ModeLocal }
func (b *LocalBackend) PadID() string { return "" }

// RemoteBackend drives a pad on a calcpad gateway.
type RemoteBackend struct {
	client  *wsclient.Client
	padID   string
	timeout time.Duration

	mu    sync.Mutex
	state calc.State
}

// NewRemoteBackend attaches client to padID (a new pad when empty) and
// starts from the pad's current state.
func NewRemoteBackend(ctx context.Context, client *wsclient.Client, padID string) (*RemoteBackend, error) {
	info, err := client.OpenPad(ctx, padID, "tui")
	if err != nil {
		return nil, err
	}
	return &RemoteBackend{
		client:  client,
		padID:   info.ID,
		timeout: 5 * time.Second,
		state:   info.State,
	}, nil
}

func (b *RemoteBackend) Press(k calc.Key) (calc.State, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	info, err := b.client.Press(ctx, k.String())
	if err != nil {
		return calc.State{}, err
	}
	b.setState(info.State)
	return info.State, nil
}

// Follow waits for the next pad.key event on the attached pad.
func (b *RemoteBackend) Follow() (calc.State, error) {
	for {
		f, err := b.client.ReadFrame()
		if err != nil {
			return calc.State{}, err
		}
		if f.Event != string(events.EventPadKey) || f.PadID != b.padID {
			continue
		}
		var p events.PadKeyPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			continue
		}
		s, err := pads.StateFromSnapshot(p.State)
		if err != nil {
			continue
		}
		b.setState(s)
		return s, nil
	}
}

func (b *RemoteBackend) State() calc.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *RemoteBackend) setState(s calc.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

func (b *RemoteBackend) Mode() organisms.Mode { return organisms.ModeRemote }
func (b *RemoteBackend) PadID() string { return b.padID }
