package history

import (
	"context"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"codeberg.org/mutker/telemy/internal/telemetry"
)

type service struct {
	repo   Repository
	logger logger.Logger
}

// No-op implementation
type noopService struct{}

func NewService(ctx context.Context, cfg Config, log logger.Logger) (Service, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If history is disabled, return a no-op service
	if !cfg.Enabled {
		log.Debug().Msg("History disabled, using no-op service")
		return &noopService{}, nil
	}

	repo, err := NewRepository(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &service{repo: repo, logger: log}, nil
}

func (s *service) Record(ctx context.Context, snap telemetry.Snapshot) error {
	errFactory := errors.New()

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(ctx, snap); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]Point, error) {
	return s.repo.Recent(ctx, limit)
}

// Run records every snapshot src yields until ctx is done. Recording errors
// are logged and skipped.
func (s *service) Run(ctx context.Context, src Source) error {
	for {
		snap, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := s.Record(context.WithoutCancel(ctx), snap); err != nil {
			s.logger.Warn().Err(err).Int64("timestamp", snap.Timestamp).Msg("Failed to record snapshot")
		}
	}
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}

// No-op implementation
func (*noopService) Record(context.Context, telemetry.Snapshot) error { return nil }

func (*noopService) Recent(context.Context, int) ([]Point, error) { return []Point{}, nil }

func (*noopService) Run(ctx context.Context, _ Source) error {
	<-ctx.Done()
	return nil
}

func (*noopService) Close() error { return nil }
