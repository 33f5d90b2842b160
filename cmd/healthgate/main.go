package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jonwraymond/healthgate/config"
	"github.com/jonwraymond/healthgate/health"
	"github.com/jonwraymond/healthgate/observe"
	"github.com/jonwraymond/healthgate/server"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to healthgate.yaml")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		logStartupFailure(bootstrap, "failed to load config", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	obs, err := observe.NewObserver(ctx, cfg.Observe())
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		logStartupFailure(bootstrap, "failed to set up telemetry", err)
		return err
	}
	log := obs.Logger()
	defer func() {
		if shutdownErr := obs.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			log.Warn(ctx, "telemetry shutdown", observe.Field{Key: "error", Value: shutdownErr})
		}
	}()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		log.Error(ctx, "failed to create telemetry middleware", observe.Field{Key: "error", Value: err})
		return err
	}

	engine, err := cfg.Engine()
	if err != nil {
		log.Error(ctx, "failed to build probes", observe.Field{Key: "error", Value: err})
		return err
	}
	responder := health.NewResponder(engine, mw, log)

	results, err := server.Bind(ctx, nil, attempts(cfg, responder.Routes()))
	for _, failed := range server.Failed(results) {
		if failed.Attempt.Required {
			continue
		}
		log.Warn(ctx, "optional listener unavailable",
			observe.Field{Key: "listener", Value: failed.Attempt.Name},
			observe.Field{Key: "address", Value: failed.Attempt.Address},
			observe.Field{Key: "error", Value: failed.Err},
		)
	}
	if err != nil {
		log.Error(ctx, "failed to bind primary listener", observe.Field{Key: "error", Value: err})
		return err
	}

	log.Info(ctx, "healthgate started",
		observe.Field{Key: "dependency_port", Value: cfg.Dependency.Port},
		observe.Field{Key: "dependency_url", Value: cfg.Dependency.URL},
		observe.Field{Key: "startup_window_seconds", Value: cfg.Policy.StartupWindowSeconds},
		observe.Field{Key: "presence_probes", Value: len(cfg.Presence)},
	)

	group := server.NewGroup(results, log, cfg.Server.ShutdownTimeout)
	if err := group.Serve(ctx); err != nil {
		log.Error(ctx, "server stopped", observe.Field{Key: "error", Value: err})
		return err
	}
	return nil
}

// logStartupFailure reports an error raised before the configured logger
// exists. A nil z discards the entry.
func logStartupFailure(z *zap.Logger, msg string, err error) {
	observe.FromZap(z).Error(context.Background(), msg, observe.Field{Key: "error", Value: err})
	if z != nil {
		_ = z.Sync()
	}
}

// attempts lists the listeners in bind order: the primary liveness listener
// is required, the fallback and metrics listeners are optional.
func attempts(cfg *config.Config, liveness http.Handler) []server.Attempt {
	list := []server.Attempt{{
		Name:     "primary",
		Address:  cfg.Server.Address,
		Required: true,
		Handler:  liveness,
	}}

	if cfg.Server.FallbackAddress != "" && cfg.Server.FallbackAddress != cfg.Server.Address {
		list = append(list, server.Attempt{
			Name:    "fallback",
			Address: cfg.Server.FallbackAddress,
			Handler: liveness,
		})
	}

	if cfg.ServesPrometheus() {
		list = append(list, server.Attempt{
			Name:    "metrics",
			Address: cfg.Telemetry.Metrics.Address,
			Handler: promhttp.Handler(),
		})
	}
	return list
}
