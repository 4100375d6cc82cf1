package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	wsclient "github.com/dohr-michael/calcpad/clients/ws"
	"github.com/dohr-michael/calcpad/internal/calc"
	"github.com/dohr-michael/calcpad/internal/pads"
)

// NewPressCommand returns the press subcommand.
func NewPressCommand() *cli.Command {
	return &cli.Command{
		Name:      "press",
		Usage:     "Press a key sequence and print the display",
		ArgsUsage: "<keys...>  e.g. 5 + 3 =  or  12*4=",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json or yaml",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:  "remote",
				Usage: "Gateway WebSocket URL (e.g. ws://127.0.0.1:18421/api/ws); presses go to a remote pad",
			},
			&cli.StringFlag{
				Name:  "pad",
				Usage: "Remote pad ID to attach to (default: new pad)",
			},
		},
		Action: runPress,
	}
}

func runPress(ctx context.Context, cmd *cli.Command) error {
	loadConfig(cmd, os.Stderr)

	symbols := cmd.Args().Slice()
	if len(symbols) == 0 {
		return fmt.Errorf("usage: calcpad press <keys...>")
	}
	keys, err := calc.ParseKeys(symbols...)
	if err != nil {
		return err
	}

	url := cmd.String("remote")
	if url == "" {
		state := calc.State{}.Press(keys...)
		return writeOutput(os.Stdout, pressOutput{Display: state.Display(), State: state}, cmd.String("format"))
	}

	info, err := pressRemote(ctx, url, cmd.String("pad"), keys)
	if err != nil {
		return err
	}
	return writeOutput(os.Stdout, pressOutput{PadID: info.ID, Display: info.Display, State: info.State}, cmd.String("format"))
}

func pressRemote(ctx context.Context, url, padID string, keys []calc.Key) (pads.Info, error) {
	client, err := wsclient.Dial(ctx, url)
	if err != nil {
		return pads.Info{}, err
	}
	defer client.Close()

	if _, err := client.OpenPad(ctx, padID, "cli"); err != nil {
		return pads.Info{}, err
	}

	symbols := make([]string, len(keys))
	for i, k := range keys {
		symbols[i] = k.String()
	}
	return client.Press(ctx, symbols...)
}

// pressOutput is the structured form of a press result.
type pressOutput struct {
	PadID   string     `json:"pad_id,omitempty" yaml:"pad_id,omitempty"`
	Display string     `json:"display" yaml:"display"`
	State   calc.State `json:"state" yaml:"state"`
}

func writeOutput(w io.Writer, out pressOutput, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		_, err := fmt.Fprintln(w, out.Display)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}
