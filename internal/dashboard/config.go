package dashboard

import (
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
)

const (
	defaultAddr         = "127.0.0.1:7070"
	defaultPushInterval = 500 * time.Millisecond
)

type Config struct {
	Enabled        bool
	Addr           string
	Token          string
	PushInterval   time.Duration
	AllowedOrigins []string
}

func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Addr:           defaultAddr,
		PushInterval:   defaultPushInterval,
		AllowedOrigins: []string{"*"},
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "dashboard address is required")
	}
	if c.PushInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.PushInterval)
	}

	return nil
}
