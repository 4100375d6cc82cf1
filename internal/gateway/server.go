// Package gateway exposes calcpad pads over HTTP and WebSocket.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/calcpad/internal/calc"
	"github.com/dohr-michael/calcpad/internal/events"
	"github.com/dohr-michael/calcpad/internal/gateway/ws"
	"github.com/dohr-michael/calcpad/internal/pads"
)

// Server is the calcpad gateway HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	bus        *events.Bus
	pads       *pads.Registry
}

// NewServer creates a new gateway server listening on addr.
func NewServer(bus *events.Bus, registry *pads.Registry, addr string) *Server {
	s := &Server{
		hub:  ws.NewHub(bus, registry),
		bus:  bus,
		pads: registry,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ws", s.hub.ServeWS)
	r.Get("/api/events", s.handleEvents)

	r.Route("/api/pads", func(r chi.Router) {
		r.Get("/", s.handleListPads)
		r.Post("/", s.handleCreatePad)
		r.Get("/{id}", s.handleGetPad)
		r.Post("/{id}/keys", s.handlePress)
		r.Delete("/{id}", s.handleDeletePad)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("calcpad gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"pads":           s.pads.Len(),
		"events_dropped": s.bus.Dropped(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	type eventJSON struct {
		ID        string             `json:"id"`
		PadID     string             `json:"pad_id,omitempty"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	history := s.bus.History(limit)
	if padID := r.URL.Query().Get("pad_id"); padID != "" {
		history = s.bus.PadHistory(padID, limit)
	}
	result := make([]eventJSON, 0, len(history))
	for _, e := range history {
		result = append(result, eventJSON{
			ID:        e.ID,
			PadID:     e.PadID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListPads(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.pads.List())
}

func (s *Server) handleCreatePad(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
	}

	pad, err := s.pads.Create(body.Name)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, pad.Info())
}

func (s *Server) handleGetPad(w http.ResponseWriter, r *http.Request) {
	pad, err := s.pads.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pad.Info())
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	pad, err := s.pads.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	var body ws.PressParams
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	keys, err := calc.ParseKeys(body.Keys...)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	pad.Press(keys...)
	writeJSON(w, http.StatusOK, pad.Info())
}

func (s *Server) handleDeletePad(w http.ResponseWriter, r *http.Request) {
	if err := s.pads.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pads.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calc.ErrUnknownKey):
		return http.StatusBadRequest
	case errors.Is(err, pads.ErrLimitReached):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
