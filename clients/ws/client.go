// Package ws provides a WebSocket client for the calcpad gateway.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"

	wsprotocol "github.com/dohr-michael/calcpad/internal/gateway/ws"
	"github.com/dohr-michael/calcpad/internal/pads"
)

// ErrClosed is returned once the connection is gone.
var ErrClosed = errors.New("ws client closed")

// eventQueue is how many unread event frames are kept; older ones are dropped.
const eventQueue = 64

// Client is a WebSocket client for the calcpad gateway. A single read loop
// routes responses to their callers and queues event frames for ReadFrame,
// so requests and event reads may run from different goroutines.
type Client struct {
	conn   *websocket.Conn
	reqSeq uint64
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]chan wsprotocol.Frame
	events  chan wsprotocol.Frame
	done    chan struct{}
	err     error
}

// Dial connects to the gateway WebSocket endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws dial: %w", err)
	}

	clientCtx, cancel := context.WithCancel(context.Background())

	c := &Client{
		conn:    conn,
		ctx:     clientCtx,
		cancel:  cancel,
		pending: make(map[string]chan wsprotocol.Frame),
		events:  make(chan wsprotocol.Frame, eventQueue),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// OpenPad attaches to padID, or to a new pad when padID is empty.
func (c *Client) OpenPad(ctx context.Context, padID, name string) (pads.Info, error) {
	return c.call(ctx, wsprotocol.MethodOpenPad, wsprotocol.OpenPadParams{PadID: padID, Name: name})
}

// Press sends keypad symbols to the attached pad.
func (c *Client) Press(ctx context.Context, symbols ...string) (pads.Info, error) {
	return c.call(ctx, wsprotocol.MethodPress, wsprotocol.PressParams{Keys: symbols})
}

// Snapshot returns the attached pad's state.
func (c *Client) Snapshot(ctx context.Context) (pads.Info, error) {
	return c.call(ctx, wsprotocol.MethodSnapshot, nil)
}

// call sends a request and waits for the response with the same ID.
func (c *Client) call(ctx context.Context, method wsprotocol.Method, params any) (pads.Info, error) {
	seq := atomic.AddUint64(&c.reqSeq, 1)
	id := fmt.Sprintf("req-%d", seq)

	frame, err := wsprotocol.NewRequestFrame(id, method, params)
	if err != nil {
		return pads.Info{}, err
	}
	data, err := wsprotocol.MarshalFrame(frame)
	if err != nil {
		return pads.Info{}, err
	}

	reply := make(chan wsprotocol.Frame, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return pads.Info{}, err
	}
	c.pending[id] = reply
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return pads.Info{}, fmt.Errorf("ws write: %w", err)
	}

	var res wsprotocol.Frame
	select {
	case res = <-reply:
	case <-ctx.Done():
		return pads.Info{}, ctx.Err()
	case <-c.done:
		return pads.Info{}, c.closeErr()
	}

	if res.OK == nil || !*res.OK {
		return pads.Info{}, fmt.Errorf("%s: %s", method, res.Error)
	}
	var info pads.Info
	if err := json.Unmarshal(res.Payload, &info); err != nil {
		return pads.Info{}, fmt.Errorf("decode %s response: %w", method, err)
	}
	return info, nil
}

// ReadFrame returns the next event frame pushed by the gateway. It blocks
// until one arrives or the connection closes.
func (c *Client) ReadFrame() (wsprotocol.Frame, error) {
	select {
	case f := <-c.events:
		return f, nil
	case <-c.done:
		// Frames queued before the close are still delivered.
		select {
		case f := <-c.events:
			return f, nil
		default:
			return wsprotocol.Frame{}, c.closeErr()
		}
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			c.mu.Lock()
			c.err = fmt.Errorf("%w: %v", ErrClosed, err)
			c.mu.Unlock()
			return
		}
		f, err := wsprotocol.UnmarshalFrame(data)
		if err != nil {
			continue
		}

		switch f.Type {
		case wsprotocol.FrameTypeResponse:
			c.mu.Lock()
			reply, ok := c.pending[f.ID]
			c.mu.Unlock()
			if ok {
				reply <- f
			}
		case wsprotocol.FrameTypeEvent:
			c.queueEvent(f)
		}
	}
}

// queueEvent keeps the newest frames when the reader falls behind.
func (c *Client) queueEvent(f wsprotocol.Frame) {
	for {
		select {
		case c.events <- f:
			return
		default:
		}
		select {
		case <-c.events:
		default:
		}
	}
}

func (c *Client) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	return ErrClosed
}

// Close gracefully closes the connection.
func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "bye")
	c.cancel()
	<-c.done
	return err
}
