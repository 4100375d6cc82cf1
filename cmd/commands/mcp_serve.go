package commands

import (
	"context"
	"log/slog"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"

	calcmcp "github.com/dohr-michael/calcpad/internal/mcp"
	"github.com/dohr-michael/calcpad/internal/pads"
)

// NewMCPServeCommand returns the mcp-serve subcommand.
func NewMCPServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "mcp-serve",
		Usage:  "Expose a calculator pad as an MCP server (stdio)",
		Action: runMCPServe,
	}
}

func runMCPServe(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the MCP stream.
	loadConfig(cmd, os.Stderr)

	pad, err := pads.NewRegistry(nil, 1).Create("mcp")
	if err != nil {
		return err
	}

	slog.Debug("starting MCP server", "pad_id", pad.ID())
	return calcmcp.NewMCPServer(pad).Run(ctx, &mcpsdk.StdioTransport{})
}
