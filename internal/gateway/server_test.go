package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	wsclient "github.com/dohr-michael/calcpad/clients/ws"
	"github.com/dohr-michael/calcpad/internal/events"
	"github.com/dohr-michael/calcpad/internal/pads"
)

func newTestServer(t *testing.T) (*Server, *events.Bus) {
	t.Helper()
	bus := events.NewBus(64)
	t.Cleanup(func() { bus.Close() })

	srv := NewServer(bus, pads.NewRegistry(bus, 2), "localhost:0")
	t.Cleanup(func() { srv.hub.Close() })
	return srv, bus
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeInfo(t *testing.T, w *httptest.ResponseRecorder) pads.Info {
	t.Helper()
	var info pads.Info
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return info
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status %q, got %v", "ok", body["status"])
	}
}

func TestPadLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/pads", `{"name":"desk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}
	created := decodeInfo(t, w)
	if created.Display != "0" || created.Name != "desk" {
		t.Fatalf("unexpected pad %+v", created)
	}

	w = do(t, srv, http.MethodPost, "/api/pads/"+created.ID+"/keys", `{"keys":["5","+","3","="]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	info := decodeInfo(t, w)
	if info.Display != "8" || info.State.First != "8" || info.State.Result != "8" {
		t.Errorf("unexpected state after press %+v", info)
	}

	w = do(t, srv, http.MethodPost, "/api/pads/"+created.ID+"/keys", `{"keys":["+2="]}`)
	if got := decodeInfo(t, w).Display; got != "10" {
		t.Errorf("expected chained 10, got %q", got)
	}

	w = do(t, srv, http.MethodGet, "/api/pads/"+created.ID, "")
	if got := decodeInfo(t, w).Presses; got != 7 {
		t.Errorf("expected 7 presses, got %d", got)
	}

	w = do(t, srv, http.MethodGet, "/api/pads", "")
	var list []pads.Info
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 pad, got %d", len(list))
	}

	w = do(t, srv, http.MethodDelete, "/api/pads/"+created.ID, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = do(t, srv, http.MethodGet, "/api/pads/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPressErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/pads/pad_missing/keys", `{"keys":["1"]}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = do(t, srv, http.MethodPost, "/api/pads", "")
	id := decodeInfo(t, w).ID

	w = do(t, srv, http.MethodPost, "/api/pads/"+id+"/keys", `{"keys":["sqrt"]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown key, got %d", w.Code)
	}
	w = do(t, srv, http.MethodPost, "/api/pads/"+id+"/keys", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad body, got %d", w.Code)
	}
}

func TestCreatePadLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		if w := do(t, srv, http.MethodPost, "/api/pads", ""); w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	}
	if w := do(t, srv, http.MethodPost, "/api/pads", ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}

func TestHandleEvents(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/events", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", w.Body)
	}

	id := decodeInfo(t, do(t, srv, http.MethodPost, "/api/pads", "")).ID
	do(t, srv, http.MethodPost, "/api/pads/"+id+"/keys", `{"keys":["6","/","0","="]}`)

	// created + 4 keys + evaluated
	w = do(t, srv, http.MethodGet, "/api/events?limit=10&pad_id="+id, "")
	var body []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body) != 6 {
		t.Fatalf("expected 6 events, got %d", len(body))
	}
	last := body[len(body)-1]
	if last["type"] != string(events.EventPadEvaluated) {
		t.Errorf("expected last event pad.evaluated, got %v", last["type"])
	}

	if w := do(t, srv, http.MethodGet, "/api/events?limit=abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestWebSocketPress(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := wsclient.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws")
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	if _, err := client.Press(ctx, "1"); err == nil {
		t.Fatal("expected error pressing without an open pad")
	}

	info, err := client.OpenPad(ctx, "", "remote")
	if err != nil {
		t.Fatal(err)
	}

	info, err = client.Press(ctx, "4", "+", "*")
	if err != nil {
		t.Fatal(err)
	}
	if info.State.First != "4" || info.State.Operator.String() != "*" {
		t.Errorf("unexpected state %+v", info.State)
	}

	info, err = client.Press(ctx, "2=")
	if err != nil {
		t.Fatal(err)
	}
	if info.Display != "8" {
		t.Errorf("expected 8, got %q", info.Display)
	}

	snap, err := client.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.ID != info.ID || snap.Display != "8" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	if _, err := client.Press(ctx, "%"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestWebSocketEventsFollowPad(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"

	driver, err := wsclient.Dial(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer driver.Close()
	watcher, err := wsclient.Dial(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	info, err := driver.OpenPad(ctx, "", "driver")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := watcher.OpenPad(ctx, info.ID, ""); err != nil {
		t.Fatal(err)
	}

	if _, err := driver.Press(ctx, "9", "-", "4", "="); err != nil {
		t.Fatal(err)
	}

	found := make(chan map[string]any, 1)
	go func() {
		for {
			f, err := watcher.ReadFrame()
			if err != nil {
				return
			}
			if f.Event != string(events.EventPadEvaluated) {
				continue
			}
			var payload map[string]any
			if json.Unmarshal(f.Payload, &payload) == nil {
				found <- payload
			}
			return
		}
	}()

	select {
	case payload := <-found:
		if payload["result"] != "5" {
			t.Errorf("expected result 5, got %v", payload["result"])
		}
	case <-ctx.Done():
		t.Fatal("watcher never saw pad.evaluated")
	}
}
