// Package mcp exposes a calcpad pad as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/calcpad/internal/calc"
	"github.com/dohr-michael/calcpad/internal/pads"
)

const (
	ToolPress = "calculator_press"
	ToolState = "calculator_state"
)

// param describes one tool argument.
type param struct {
	Type        string
	Description string
	Required    bool
}

type pressArgs struct {
	Keys string `json:"keys"`
}

// objectSchema builds a JSON Schema object for the given params.
func objectSchema(params map[string]param) map[string]any {
	props := make(map[string]any, len(params))
	var required []string
	for name, p := range params {
		props[name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func pressTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: ToolPress,
		Description: "Press keys on a four-function calculator keypad and return the display. " +
			"Keys: 0-9 . + - * / = DEL CLEAR, separated by spaces or commas; digit and operator runs like 12+3= are split.",
		InputSchema: objectSchema(map[string]param{
			"keys": {Type: "string", Description: "Key sequence to press, e.g. \"5 + 3 =\"", Required: true},
		}),
	}
}

func stateTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        ToolState,
		Description: "Return the calculator state (operands, pending operator, last result, display) without pressing anything.",
		InputSchema: objectSchema(nil),
	}
}

// pressHandler applies the requested keys to pad.
func pressHandler(pad *pads.Pad) mcpsdk.ToolHandler {
	return func(_ context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args pressArgs
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
		keys, err := calc.ParseKeys(args.Keys)
		if err != nil {
			return errorResult(err), nil
		}
		pad.Press(keys...)
		return infoResult(pad.Info())
	}
}

func stateHandler(pad *pads.Pad) mcpsdk.ToolHandler {
	return func(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		return infoResult(pad.Info())
	}
}

func infoResult(info pads.Info) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(info.State)
	if err != nil {
		return nil, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: info.Display},
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, nil
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}
}
