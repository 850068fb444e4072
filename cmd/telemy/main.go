package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/telemy/internal/config"
	"codeberg.org/mutker/telemy/internal/dashboard"
	"codeberg.org/mutker/telemy/internal/distributor"
	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/exporter"
	"codeberg.org/mutker/telemy/internal/gpu"
	"codeberg.org/mutker/telemy/internal/history"
	"codeberg.org/mutker/telemy/internal/latency"
	"codeberg.org/mutker/telemy/internal/logger"
	"codeberg.org/mutker/telemy/internal/obs"
	"codeberg.org/mutker/telemy/internal/pid"
	"codeberg.org/mutker/telemy/internal/sampler"
	"codeberg.org/mutker/telemy/internal/supervisor"
	"codeberg.org/mutker/telemy/internal/system"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(cfg.PIDFile); err != nil {
		fatal(err, "failed to acquire PID file")
	}

	err = run(cfg)
	if rmErr := pid.Remove(cfg.PIDFile); rmErr != nil {
		logger.Warn().Err(rmErr).Msg("failed to remove PID file")
	}
	if err != nil {
		fatal(err, "telemy stopped with an error")
	}

	logger.Info().Msg("Exiting...")
}

func fatal(err error, msg string) {
	if appErr, ok := err.(errors.Error); ok {
		logger.ErrorWithCode(appErr).Msg(msg)
	} else {
		logger.Error().Err(err).Msg(msg)
	}
	os.Exit(1)
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	procs, err := system.NewProcFS("")
	if err != nil {
		return err
	}

	gpuMonitor := gpu.NewMonitor(logger.WithComponent("gpu"))
	if err := gpuMonitor.Initialize(); err != nil {
		logger.Warn().Err(err).Msg("GPU monitoring unavailable")
	}
	defer func() {
		if err := gpuMonitor.Shutdown(); err != nil {
			logger.Warn().Err(err).Msg("failed to shut down NVML")
		}
	}()

	probe, err := latency.New(cfg.Latency.Target, cfg.Latency.Timeout, logger.WithComponent("latency"))
	if err != nil {
		logger.Warn().Err(err).Str("target", cfg.Latency.Target).Msg("latency probe disabled")
	}

	dialer := obs.NewDialer(obs.Config{
		Host:     cfg.OBS.Host,
		Port:     cfg.OBS.Port,
		Password: cfg.OBS.Password,
		Timeout:  cfg.OBS.RequestTimeout,
	}, logger.WithComponent("obs"))

	supCfg := supervisor.DefaultConfig()
	supCfg.AutoDetect = cfg.OBS.AutoDetect
	supCfg.ProcessName = cfg.OBS.ProcessName
	if cfg.OBS.RetryCooldown > 0 {
		supCfg.RetryCooldown = cfg.OBS.RetryCooldown
	}
	sup, err := supervisor.New(supCfg, dialer, system.NewProcessWatcher(procs), logger.WithComponent("supervisor"))
	if err != nil {
		return err
	}
	defer func() {
		if err := sup.Close(); err != nil {
			logger.Debug().Err(err).Msg("closing OBS connection")
		}
	}()

	dist := distributor.New()

	samplerCfg := sampler.DefaultConfig()
	samplerCfg.Interval = cfg.Interval
	smp, err := sampler.New(samplerCfg, sampler.Sources{
		Connection: sup,
		System:     system.NewSampler(procs, logger.WithComponent("system")),
		GPU:        gpuMonitor,
		Latency:    probe,
	}, dist, logger.WithComponent("sampler"))
	if err != nil {
		return err
	}

	hist, err := history.NewService(ctx, history.Config{
		Enabled:  cfg.History.Enabled,
		Capacity: cfg.History.Capacity,
	}, logger.WithComponent("history"))
	if err != nil {
		return err
	}
	defer hist.Close()

	exp, err := exporter.New(exporter.Config{
		Enabled:  cfg.Exporter.Enabled,
		Interval: cfg.Exporter.Interval,
		PushURL:  cfg.Exporter.PushURL,
		Job:      cfg.Exporter.Job,
		Username: cfg.Exporter.Username,
		Password: cfg.Exporter.Password,
	}, dist, logger.WithComponent("exporter"))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Dashboard.Enabled {
		dash, err := dashboard.New(dashboard.Config{
			Enabled:        true,
			Addr:           cfg.Dashboard.Addr,
			Token:          cfg.Dashboard.Token,
			PushInterval:   cfg.Dashboard.PushInterval,
			AllowedOrigins: cfg.Dashboard.AllowedOrigins,
		}, dist, historyReader(cfg.History.Enabled, hist), exp.Gatherer(), logger.WithComponent("dashboard"))
		if err != nil {
			return err
		}

		// a port that cannot be bound is a startup failure
		ln, err := dash.Listen()
		if err != nil {
			return err
		}
		g.Go(func() error { return dash.Serve(gctx, ln) })
	}

	if cfg.Exporter.Enabled {
		g.Go(func() error { return exp.Run(gctx) })
	}

	g.Go(func() error { return hist.Run(gctx, dist.Subscribe()) })
	g.Go(func() error { return smp.Run(gctx) })

	logger.Info().
		Dur("interval", cfg.Interval).
		Str("obs", dialer.URL()).
		Bool("gpu", gpuMonitor.Available()).
		Msg("telemy started")

	if err := g.Wait(); err != nil {
		return errors.New().Wrap(errors.ErrMainLoop, err)
	}

	logger.Info().Msg("Received termination signal.")

	return nil
}

// historyReader hides a disabled history from the dashboard, which then
// answers /history with 404 instead of an empty window.
func historyReader(enabled bool, svc history.Service) dashboard.HistoryReader {
	if !enabled {
		return nil
	}

	return svc
}
