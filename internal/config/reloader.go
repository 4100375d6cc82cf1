package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Reloader re-reads .env and the config file on demand and hands the new
// config to listeners. Variables exported from .env on a previous load
// follow the file: changed values are overwritten and removed keys unset.
// Variables that came from the real environment are never touched.
type Reloader struct {
	configPath string
	dotenvPath string
	current    atomic.Pointer[Config]

	mu        sync.Mutex
	owned     map[string]bool
	listeners []func(prev, next *Config)
}

// NewReloader starts from initial. owned lists the variables the caller
// exported from dotenvPath at startup (as returned by LoadDotenv).
func NewReloader(configPath, dotenvPath string, initial *Config, owned ...string) *Reloader {
	r := &Reloader{
		configPath: configPath,
		dotenvPath: dotenvPath,
		owned:      make(map[string]bool, len(owned)),
	}
	for _, k := range owned {
		r.owned[k] = true
	}
	r.current.Store(initial)
	return r
}

// Current returns the active config.
func (r *Reloader) Current() *Config {
	return r.current.Load()
}

// OnReload registers fn to run after each successful reload.
func (r *Reloader) OnReload(fn func(prev, next *Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Reload applies .env, loads the config file and swaps it in. On error the
// active config is kept.
func (r *Reloader) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.syncDotenv(); err != nil {
		return fmt.Errorf("reload dotenv: %w", err)
	}

	next, err := Load(r.configPath)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}

	prev := r.current.Swap(next)
	slog.Info("config reloaded", "path", r.configPath)

	for _, fn := range r.listeners {
		fn(prev, next)
	}
	return nil
}

func (r *Reloader) syncDotenv() error {
	vars, err := readDotenvFile(r.dotenvPath)
	if err != nil {
		return err
	}

	for k := range r.owned {
		if _, ok := vars[k]; !ok {
			os.Unsetenv(k)
			delete(r.owned, k)
		}
	}
	for k, v := range vars {
		if _, exists := os.LookupEnv(k); exists && !r.owned[k] {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
		r.owned[k] = true
	}
	return nil
}
