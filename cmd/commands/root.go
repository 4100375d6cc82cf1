package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/calcpad/internal/config"
)

// NewRootCommand returns the top-level CLI command. dotenvKeys are the
// variables main exported from .env, handed to the serve reloader.
func NewRootCommand(dotenvKeys []string) *cli.Command {
	return &cli.Command{
		Name:  "calcpad",
		Usage: "Four-function keypad calculator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewPressCommand(),
			NewTUICommand(),
			NewServeCommand(dotenvKeys),
			NewMCPServeCommand(),
			NewStatusCommand(),
		},
		DefaultCommand: "tui",
	}
}

// loadConfig reads the --config file (defaults when absent) and installs the
// slog handler on w. --debug overrides the configured level.
func loadConfig(cmd *cli.Command, w io.Writer) *config.Config {
	cfg := config.LoadOrDefault(cmd.String("config"))

	level := cfg.Log.SlogLevel()
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return cfg
}
