package exporter

import (
	"net/url"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
)

const (
	defaultInterval = 10 * time.Second
	defaultJob      = "telemy"
)

type Config struct {
	Enabled  bool
	Interval time.Duration
	PushURL  string
	Job      string
	Username string
	Password string
}

func DefaultConfig() Config {
	return Config{
		Interval: defaultInterval,
		Job:      defaultJob,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.PushURL != "" {
		u, err := url.Parse(c.PushURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errFactory.WithMessage(ErrInvalidPushURL, "push URL must be absolute, e.g. http://pushgateway:9091")
		}
		if c.Job == "" {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "push job name is required")
		}
	}

	return nil
}
