// Package config loads the calcpad JSONC configuration.
package config

import "time"

// Config is the root configuration for calcpad.
type Config struct {
	Gateway GatewayConfig `json:"gateway"`
	Pads    PadsConfig    `json:"pads"`
	Events  EventsConfig  `json:"events"`
	TUI     TUIConfig     `json:"tui"`
	Log     LogConfig     `json:"log"`
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// PadsConfig bounds the live calculator instances served by the gateway.
type PadsConfig struct {
	Max           int      `json:"max"`            // 0 = unlimited
	MaxIdle       Duration `json:"max_idle"`       // pads untouched for longer are dropped
	PruneInterval Duration `json:"prune_interval"` // how often idle pads are swept
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// TUIConfig configures the terminal keypad.
type TUIConfig struct {
	Accent   string `json:"accent,omitempty"`    // hex color of operator keys
	ShowHelp bool   `json:"show_help,omitempty"` // render the key binding help line
}

// LogConfig configures slog output.
type LogConfig struct {
	Level string `json:"level"` // debug, info, warn, error
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
