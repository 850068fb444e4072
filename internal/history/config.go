package history

import "codeberg.org/mutker/telemy/internal/errors"

const (
	defaultCapacity = 120
	maxCapacity     = 86400

	// every sqlite connection to :memory: opens its own database, so the
	// pool is pinned to a single connection
	dataSourceName = ":memory:"
)

type Config struct {
	Enabled  bool
	Capacity int
}

func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Capacity: defaultCapacity,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate capacity if history is enabled
	if c.Enabled && (c.Capacity <= 0 || c.Capacity > maxCapacity) {
		return errFactory.WithData(ErrInvalidCapacity, c.Capacity)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
