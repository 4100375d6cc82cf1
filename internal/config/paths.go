package config

import (
	"os"
	"path/filepath"
)

// CalcpadPath returns the root directory for calcpad data.
// It uses $CALCPAD_PATH if set, otherwise defaults to ~/.calcpad.
func CalcpadPath() string {
	if v := os.Getenv("CALCPAD_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".calcpad")
	}
	return filepath.Join(home, ".calcpad")
}

// ConfigPath returns the path to the calcpad config file.
func ConfigPath() string {
	return filepath.Join(CalcpadPath(), "config.jsonc")
}

// DotenvPath returns the path to the calcpad .env file.
func DotenvPath() string {
	return filepath.Join(CalcpadPath(), ".env")
}

// HeartbeatPath returns the path of the running gateway's heartbeat file.
func HeartbeatPath() string {
	return filepath.Join(CalcpadPath(), "gateway.json")
}
