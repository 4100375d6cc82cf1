package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dohr-michael/calcpad/cmd/commands"
	"github.com/dohr-michael/calcpad/internal/config"
)

func main() {
	dotenvKeys, err := config.LoadDotenv(config.DotenvPath())
	if err != nil {
		slog.Warn("failed to load .env", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := commands.NewRootCommand(dotenvKeys)
	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
