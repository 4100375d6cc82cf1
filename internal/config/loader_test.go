package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `{
	// This is a JSONC comment
	"gateway": {
		"host": "${{ .Env.CALCPAD_TEST_HOST }}",
		"port": 9999, // trailing commas are fine
	},
	"pads": {
		"max": 16,
		"max_idle": "5m",
	},
	"tui": {"accent": "#00FF00", "show_help": true},
	"log": {"level": "DEBUG"},
}`

	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CALCPAD_TEST_HOST", "0.0.0.0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Gateway.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Gateway.Port)
	}
	if cfg.Pads.Max != 16 {
		t.Errorf("expected max 16, got %d", cfg.Pads.Max)
	}
	if cfg.Pads.MaxIdle.Duration() != 5*time.Minute {
		t.Errorf("expected max_idle 5m, got %s", cfg.Pads.MaxIdle.Duration())
	}
	if cfg.TUI.Accent != "#00FF00" || !cfg.TUI.ShowHelp {
		t.Errorf("unexpected tui config %+v", cfg.TUI)
	}
	if cfg.Log.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", cfg.Log.SlogLevel())
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("expected default host 127.0.0.1, got %s", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18421 {
		t.Errorf("expected default port 18421, got %d", cfg.Gateway.Port)
	}
	if cfg.Events.BufferSize != 256 {
		t.Errorf("expected default buffer 256, got %d", cfg.Events.BufferSize)
	}
	if cfg.Pads.MaxIdle.Duration() != 30*time.Minute {
		t.Errorf("expected default max_idle 30m, got %s", cfg.Pads.MaxIdle.Duration())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.jsonc")); err == nil {
		t.Fatal("expected error for missing file")
	}

	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "nope.jsonc"))
	if cfg.Gateway.Port != 18421 {
		t.Errorf("expected defaults, got %+v", cfg.Gateway)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte(`{"gateway": `)); err == nil {
		t.Error("expected error for truncated JSONC")
	}
	if _, err := Parse([]byte(`{"pads": {"max_idle": "soon"}}`)); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestExpandEnvTemplatesUnsetVar(t *testing.T) {
	t.Setenv("CALCPAD_UNSET_FOR_TEST", "")
	got := expandEnvTemplates(`"${{ .Env.CALCPAD_UNSET_FOR_TEST }}"`)
	if got != `""` {
		t.Errorf("expected empty expansion, got %s", got)
	}
}
