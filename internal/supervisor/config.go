package supervisor

import (
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
)

const (
	defaultProcessName          = "obs"
	defaultProcessCheckInterval = 2 * time.Second
	defaultRetryCooldown        = 2 * time.Second
)

type Config struct {
	AutoDetect           bool
	ProcessName          string
	ProcessCheckInterval time.Duration
	RetryCooldown        time.Duration
}

func DefaultConfig() Config {
	return Config{
		AutoDetect:           true,
		ProcessName:          defaultProcessName,
		ProcessCheckInterval: defaultProcessCheckInterval,
		RetryCooldown:        defaultRetryCooldown,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.AutoDetect && c.ProcessName == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "process name is required when auto-detect is enabled")
	}
	if c.ProcessCheckInterval <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "process check interval must be positive")
	}
	if c.RetryCooldown <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "retry cooldown must be positive")
	}

	return nil
}
