package sampler

import (
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
)

const (
	defaultInterval         = time.Second
	defaultTestModeInterval = 5 * time.Second
)

type Config struct {
	Interval         time.Duration
	TestModeInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:         defaultInterval,
		TestModeInterval: defaultTestModeInterval,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.TestModeInterval <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "test mode interval must be positive")
	}

	return nil
}
