// Package exporter maps snapshots to Prometheus metrics, served for scraping
// and optionally pushed to a Pushgateway.
package exporter

import (
	"context"
	"os"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

type Exporter struct {
	cfg      Config
	registry *prometheus.Registry
	pusher   *push.Pusher
	logger   logger.Logger
}

func New(cfg Config, src Source, log logger.Logger) (*Exporter, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "snapshot source is required")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		&snapshotCollector{src: src},
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := &Exporter{
		cfg:      cfg,
		registry: registry,
		logger:   log,
	}

	if cfg.Enabled && cfg.PushURL != "" {
		e.pusher = push.New(cfg.PushURL, cfg.Job).Gatherer(registry)
		if host, err := os.Hostname(); err == nil {
			e.pusher = e.pusher.Grouping("instance", host)
		}
		if cfg.Username != "" {
			e.pusher = e.pusher.BasicAuth(cfg.Username, cfg.Password)
		}
	}

	return e, nil
}

// Gatherer exposes the registry for scrape handlers.
func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}

// Push sends the current snapshot to the Pushgateway.
func (e *Exporter) Push(ctx context.Context) error {
	if e.pusher == nil {
		return nil
	}

	if err := e.pusher.PushContext(ctx); err != nil {
		return errors.New().Wrap(ErrPushFailed, err)
	}
	return nil
}

// Run pushes every interval until ctx is done. Push failures are logged
// and retried on the next tick.
func (e *Exporter) Run(ctx context.Context) error {
	if e.pusher == nil {
		e.logger.Debug().Msg("no push URL configured, metrics are scrape-only")
		return nil
	}

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	e.logger.Info().Str("url", e.cfg.PushURL).Dur("interval", e.cfg.Interval).Msg("pushing metrics")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			pushCtx, cancel := context.WithTimeout(ctx, e.cfg.Interval)
			if err := e.Push(pushCtx); err != nil {
				e.logger.Warn().Err(err).Msg("metrics push failed")
			}
			cancel()
		}
	}
}
