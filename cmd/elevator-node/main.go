// Command elevator-node runs one participant in a distributed elevator
// fleet: it drives a single elevator car, contests master election with
// its peers over multicast, and either merges the fleet's hall-call
// state (as master) or shadows it (as slave).
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slavakukuyev/elevator-fleet/internal/assigner"
	"github.com/slavakukuyev/elevator-fleet/internal/dispatch"
	"github.com/slavakukuyev/elevator-fleet/internal/driver"
	"github.com/slavakukuyev/elevator-fleet/internal/infra/config"
	"github.com/slavakukuyev/elevator-fleet/internal/infra/logging"
	"github.com/slavakukuyev/elevator-fleet/internal/infra/observability"
	"github.com/slavakukuyev/elevator-fleet/internal/status"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		slog.Error("failed to initialize configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogLevel)

	nodeName := cfg.NodeName
	if nodeName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "node"
		}
		nodeName = hostname
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.InfoContext(ctx, "elevator node starting up",
		slog.String("node_name", nodeName),
		slog.String("environment", cfg.Environment),
		slog.Int("min_floor", cfg.MinFloor),
		slog.Int("max_floor", cfg.MaxFloor),
		slog.String("multicast_addr", cfg.MulticastAddr),
		slog.String("assigner_mode", cfg.AssignerMode))

	drv, err := buildDriver(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize driver", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var assign assigner.Assigner
	if cfg.AssignerMode == "external" {
		assign = assigner.NewExternal(cfg.ExternalAssigner, cfg.AssignerTimeout)
	} else {
		assign = assigner.NewCostAssigner(cfg.MinFloor, cfg.MaxFloor)
	}

	obsCfg, err := observability.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load observability config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	obsCfg.ServiceName = nodeName
	if err := obsCfg.Validate(); err != nil {
		slog.ErrorContext(ctx, "invalid observability config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	telemetry, err := observability.NewTelemetryProvider(obsCfg, slog.Default())
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize telemetry provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	node, err := dispatch.New(dispatch.Config{
		Name:                nodeName,
		FloorCount:          cfg.MaxFloor - cfg.MinFloor + 1,
		MinFloor:            cfg.MinFloor,
		MaxFloor:            cfg.MaxFloor,
		MulticastAddr:       cfg.MulticastAddr,
		AdvertisingInterval: cfg.AdvertisingInterval,
		DialTimeout:         cfg.DialTimeout,
		BackoffMin:          cfg.ElectionBackoffMin,
		BackoffMax:          cfg.ElectionBackoffMax,
		BackupPath:          cfg.BackupPath,
		DoorDuration:        cfg.OpenDoorDuration,
		ForceMaster:         cfg.ForceMaster,
		ForceSlave:          cfg.ForceSlave,
		Tracer:              telemetry.GetTracer(),
	}, drv, assign, slog.Default())
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize dispatch node", slog.String("error", err.Error()))
		os.Exit(1)
	}

	statusServer := status.New(cfg, node, slog.Default(), telemetry)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	errCh := make(chan error, 2)

	go func() {
		if err := node.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	go func() {
		slog.InfoContext(ctx, "starting status server", slog.Int("port", cfg.StatusPort))
		if err := statusServer.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		slog.ErrorContext(ctx, "node failed", slog.String("error", err.Error()))
		cancel()
		shutdown(cfg, statusServer, telemetry)
		os.Exit(1)

	case sig := <-quit:
		slog.InfoContext(ctx, "received shutdown signal", slog.String("signal", sig.String()))
		cancel()
		shutdown(cfg, statusServer, telemetry)
	}
}

func buildDriver(cfg *config.Config) (driver.Driver, error) {
	if cfg.DriverAddr == "" {
		return driver.NewFake(), nil
	}
	return driver.DialTCP(cfg.DriverAddr, cfg.MaxFloor-cfg.MinFloor+1)
}

func shutdown(cfg *config.Config, statusServer *status.Server, telemetry *observability.TelemetryProvider) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := statusServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("status server shutdown failed", slog.String("error", err.Error()))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.Error("telemetry shutdown failed", slog.String("error", err.Error()))
	}
	time.Sleep(100 * time.Millisecond)
}
