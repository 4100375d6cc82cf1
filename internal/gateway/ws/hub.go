// Package ws serves the calcpad keypad over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/dohr-michael/calcpad/internal/calc"
	"github.com/dohr-michael/calcpad/internal/events"
	"github.com/dohr-michael/calcpad/internal/pads"
)

// Client represents a connected WebSocket client.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	mu     sync.Mutex
	padID  string
	unsub  func()
	closed bool
}

func (c *Client) attached() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.padID
}

// attach points the client at a pad: it now receives that pad's events and
// no longer the previous one's. An empty id detaches.
func (c *Client) attach(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.padID = id
	if id == "" || c.closed {
		return
	}
	c.unsub = c.hub.bus.SubscribePad(id, c.forward)
}

// detach drops the pad subscription for good; nothing is queued afterwards.
func (c *Client) detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.closed = true
}

// forward relays a pad event as an event frame.
func (c *Client) forward(e events.Event) {
	frame, err := NewEventFrame(string(e.Type), e.PadID, e.Payload)
	if err != nil {
		slog.Error("marshal event frame", "error", err)
		return
	}
	c.enqueue(frame)
}

// Hub tracks WebSocket clients and serves their keypad requests.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	bus     *events.Bus
	pads    *pads.Registry
}

// NewHub creates a hub serving pads from registry. Clients receive the
// events bus publishes for the pad they have open.
func NewHub(bus *events.Bus, registry *pads.Registry) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		bus:     bus,
		pads:    registry,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	slog.Info("ws client connected", "clients", len(h.clients))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.detach()
		close(c.send)
		slog.Info("ws client disconnected", "clients", len(h.clients))
	}
}

// ServeWS handles a WebSocket upgrade and manages the client lifecycle.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow any origin for dev
	})
	if err != nil {
		slog.Error("ws accept", "error", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.register(client)

	ctx := r.Context()
	go client.writePump(ctx)
	client.readPump(ctx)
}

// readPump reads frames from the WS connection and dispatches them.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("ws read closed", "status", websocket.CloseStatus(err))
			} else {
				slog.Debug("ws read error", "error", err)
			}
			return
		}

		frame, err := UnmarshalFrame(data)
		if err != nil {
			slog.Error("ws unmarshal frame", "error", err)
			continue
		}

		if frame.Type != FrameTypeRequest {
			slog.Debug("ws unknown frame type", "type", frame.Type)
			continue
		}
		c.handleRequest(frame)
	}
}

// handleRequest processes a request frame (method dispatch).
func (c *Client) handleRequest(frame Frame) {
	switch Method(frame.Method) {
	case MethodOpenPad:
		var params OpenPadParams
		if len(frame.Params) > 0 {
			if err := json.Unmarshal(frame.Params, &params); err != nil {
				c.sendError(frame.ID, "invalid params")
				return
			}
		}

		var pad *pads.Pad
		var err error
		if params.PadID != "" {
			pad, err = c.hub.pads.Get(params.PadID)
		} else {
			pad, err = c.hub.pads.Create(params.Name)
		}
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.attach(pad.ID())
		c.sendOK(frame.ID, pad.Info())

	case MethodPress:
		pad, ok := c.pad(frame.ID)
		if !ok {
			return
		}
		var params PressParams
		if err := json.Unmarshal(frame.Params, &params); err != nil {
			c.sendError(frame.ID, "invalid params")
			return
		}
		keys, err := calc.ParseKeys(params.Keys...)
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		pad.Press(keys...)
		c.sendOK(frame.ID, pad.Info())

	case MethodSnapshot:
		pad, ok := c.pad(frame.ID)
		if !ok {
			return
		}
		c.sendOK(frame.ID, pad.Info())

	default:
		c.sendError(frame.ID, "unknown method: "+frame.Method)
	}
}

// pad resolves the attached pad, answering the request with an error when there is none.
func (c *Client) pad(reqID string) (*pads.Pad, bool) {
	id := c.attached()
	if id == "" {
		c.sendError(reqID, "no pad open")
		return nil, false
	}
	pad, err := c.hub.pads.Get(id)
	if err != nil {
		if errors.Is(err, pads.ErrNotFound) {
			c.attach("")
		}
		c.sendError(reqID, err.Error())
		return nil, false
	}
	return pad, true
}

// writePump writes queued messages to the WS connection.
func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) sendOK(id string, payload any) {
	f, err := NewResponseFrame(id, true, payload, "")
	if err != nil {
		return
	}
	c.enqueue(f)
}

func (c *Client) sendError(id string, errMsg string) {
	f, err := NewResponseFrame(id, false, nil, errMsg)
	if err != nil {
		return
	}
	c.enqueue(f)
}

func (c *Client) enqueue(f Frame) {
	data, err := MarshalFrame(f)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Close shuts down the hub and all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.detach()
		c.conn.Close(websocket.StatusGoingAway, "server shutdown")
		delete(h.clients, c)
	}
}
