package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/calcpad/clients/tui"
	wsclient "github.com/dohr-michael/calcpad/clients/ws"
	"github.com/dohr-michael/calcpad/internal/pads"
)

// NewTUICommand returns the tui subcommand.
func NewTUICommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive keypad",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "remote",
				Usage: "Gateway WebSocket URL (e.g. ws://127.0.0.1:18421/api/ws); the keypad drives a remote pad",
			},
			&cli.StringFlag{
				Name:  "pad",
				Usage: "Remote pad ID to attach to (default: new pad)",
			},
		},
		Action: runTUI,
	}
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tui needs an interactive terminal; use 'calcpad press' instead")
	}

	// Logs would corrupt the alt screen.
	cfg := loadConfig(cmd, io.Discard)

	var backend tui.Backend
	if url := cmd.String("remote"); url != "" {
		client, err := wsclient.Dial(ctx, url)
		if err != nil {
			return fmt.Errorf("connect to %s: %w", url, err)
		}
		defer client.Close()

		remote, err := tui.NewRemoteBackend(ctx, client, cmd.String("pad"))
		if err != nil {
			return err
		}
		backend = remote
	} else {
		pad, err := pads.NewRegistry(nil, 1).Create("tui")
		if err != nil {
			return err
		}
		backend = tui.NewLocalBackend(pad)
	}

	model := tui.NewMainModel(backend, tui.Options{
		Accent:   cfg.TUI.Accent,
		ShowHelp: cfg.TUI.ShowHelp,
	})
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
