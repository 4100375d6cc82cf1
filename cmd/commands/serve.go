package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/calcpad/internal/config"
	"github.com/dohr-michael/calcpad/internal/events"
	"github.com/dohr-michael/calcpad/internal/gateway"
	"github.com/dohr-michael/calcpad/internal/heartbeat"
	"github.com/dohr-michael/calcpad/internal/pads"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand(dotenvKeys []string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the pad gateway (HTTP + WebSocket)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServe(ctx, cmd, dotenvKeys)
		},
	}
}

func runServe(ctx context.Context, cmd *cli.Command, dotenvKeys []string) error {
	cfg := loadConfig(cmd, os.Stderr)

	host := cfg.Gateway.Host
	if h := cmd.String("host"); h != "" {
		host = h
	}
	port := cfg.Gateway.Port
	if p := cmd.Int("port"); p > 0 {
		port = int(p)
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	registry := pads.NewRegistry(bus, cfg.Pads.Max)
	srv := gateway.NewServer(bus, registry, addr)

	var maxIdle atomic.Int64
	maxIdle.Store(int64(cfg.Pads.MaxIdle.Duration()))

	reloader := config.NewReloader(cmd.String("config"), config.DotenvPath(), cfg, dotenvKeys...)
	reloader.OnReload(func(prev, next *config.Config) {
		registry.SetMax(next.Pads.Max)
		maxIdle.Store(int64(next.Pads.MaxIdle.Duration()))
		if prev.Pads != next.Pads {
			slog.Info("pad limits updated", "max", next.Pads.Max, "max_idle", next.Pads.MaxIdle.Duration())
		}
		if prev.Gateway != next.Gateway {
			slog.Warn("gateway address changes need a restart", "addr", net.JoinHostPort(next.Gateway.Host, strconv.Itoa(next.Gateway.Port)))
		}
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := reloader.Reload(); err != nil {
					slog.Error("config reload failed", "error", err)
				}
			}
		}
	}()

	go prunePads(ctx, registry, cfg.Pads.PruneInterval.Duration(), &maxIdle)

	if err := os.MkdirAll(config.CalcpadPath(), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	hb := heartbeat.NewWriter(config.HeartbeatPath(), addr, heartbeat.WithPadCount(registry.Len))
	if err := hb.Start(ctx); err != nil {
		slog.Warn("heartbeat disabled", "error", err)
	}
	defer hb.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	slog.Info("shutting down gateway")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// prunePads drops idle pads every interval until ctx is done.
func prunePads(ctx context.Context, registry *pads.Registry, interval time.Duration, maxIdle *atomic.Int64) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.Prune(time.Duration(maxIdle.Load()))
		}
	}
}
