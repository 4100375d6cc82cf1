package mcp

import (
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/calcpad/internal/pads"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// NewMCPServer creates an MCP server whose tools drive a single pad.
func NewMCPServer(pad *pads.Pad) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "calcpad",
		Version: Version,
	}, nil)

	server.AddTool(pressTool(), pressHandler(pad))
	server.AddTool(stateTool(), stateHandler(pad))

	slog.Debug("mcp tools registered", "pad_id", pad.ID())
	return server
}
