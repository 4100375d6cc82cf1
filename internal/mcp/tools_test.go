package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/calcpad/internal/calc"
	"github.com/dohr-michael/calcpad/internal/pads"
)

func newPad(t *testing.T) *pads.Pad {
	t.Helper()
	p, err := pads.NewRegistry(nil, 0).Create("mcp")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func call(t *testing.T, h mcpsdk.ToolHandler, args string) *mcpsdk.CallToolResult {
	t.Helper()
	req := &mcpsdk.CallToolRequest{Params: &mcpsdk.CallToolParamsRaw{Arguments: json.RawMessage(args)}}
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res
}

func text(t *testing.T, res *mcpsdk.CallToolResult, i int) string {
	t.Helper()
	if len(res.Content) <= i {
		t.Fatalf("expected at least %d content items, got %d", i+1, len(res.Content))
	}
	tc, ok := res.Content[i].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("content %d is %T, want *TextContent", i, res.Content[i])
	}
	return tc.Text
}

func TestPressHandler(t *testing.T) {
	pad := newPad(t)
	h := pressHandler(pad)

	res := call(t, h, `{"keys":"5 + 3 ="}`)
	if res.IsError {
		t.Fatalf("unexpected error result: %s", text(t, res, 0))
	}
	if got := text(t, res, 0); got != "8" {
		t.Errorf("expected display 8, got %q", got)
	}

	var state calc.State
	if err := json.Unmarshal([]byte(text(t, res, 1)), &state); err != nil {
		t.Fatal(err)
	}
	if state.First != "8" || state.Result != "8" || state.Operator != calc.OpNone {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestPressHandlerErrors(t *testing.T) {
	pad := newPad(t)
	h := pressHandler(pad)

	if res := call(t, h, `{"keys":"5 % 2"}`); !res.IsError {
		t.Error("expected error result for unknown key")
	}
	if res := call(t, h, `not json`); !res.IsError {
		t.Error("expected error result for invalid arguments")
	}
	if !pad.State().IsInitial() {
		t.Errorf("failed calls must not change state, got %+v", pad.State())
	}
}

func TestStateHandler(t *testing.T) {
	pad := newPad(t)
	pad.Press(calc.DigitKey('4'), calc.OperatorKey(calc.OpAdd))

	res := call(t, stateHandler(pad), `{}`)
	if got := text(t, res, 0); got != "4" {
		t.Errorf("expected display 4, got %q", got)
	}
}

func TestToolSchemas(t *testing.T) {
	data, err := json.Marshal(pressTool().InputSchema)
	if err != nil {
		t.Fatal(err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatal(err)
	}
	if schema["type"] != "object" {
		t.Errorf("schema type = %v, want object", schema["type"])
	}
	req, ok := schema["required"].([]any)
	if !ok || len(req) != 1 || req[0] != "keys" {
		t.Errorf("schema required = %v, want [keys]", schema["required"])
	}

	data, _ = json.Marshal(stateTool().InputSchema)
	schema = nil
	_ = json.Unmarshal(data, &schema)
	if _, ok := schema["required"]; ok {
		t.Error("state tool should have no required params")
	}
}

func TestNewMCPServer(t *testing.T) {
	if NewMCPServer(newPad(t)) == nil {
		t.Fatal("expected server")
	}
}
