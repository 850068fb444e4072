// Package latency measures TCP connect time to a fixed target.
package latency

import (
	"context"
	"net"
	"net/netip"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
)

const (
	DefaultTimeout = 250 * time.Millisecond

	ErrInvalidTarget = errors.ErrorCode("latency_invalid_target")
)

// Probe dials Target and reports how long the connection took to establish.
// An empty target disables the probe.
type Probe struct {
	target  netip.AddrPort
	enabled bool
	dialer  net.Dialer
	logger  logger.Logger
}

// New parses target as ip:port. A malformed target is reported but still
// yields a usable probe that always measures 0.
func New(target string, timeout time.Duration, log logger.Logger) (*Probe, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	p := &Probe{
		dialer: net.Dialer{Timeout: timeout},
		logger: log,
	}
	if target == "" {
		return p, nil
	}

	addr, err := netip.ParseAddrPort(target)
	if err != nil {
		return p, errors.New().Wrap(ErrInvalidTarget, err)
	}
	p.target = addr
	p.enabled = true

	return p, nil
}

// Measure returns the connect time in milliseconds, or 0 when the probe is
// disabled or the connection could not be established in time.
func (p *Probe) Measure(ctx context.Context) float64 {
	if !p.enabled {
		return 0
	}

	start := time.Now()
	conn, err := p.dialer.DialContext(ctx, "tcp", p.target.String())
	elapsed := time.Since(start)
	if err != nil {
		p.logger.Debug().Err(err).Str("target", p.target.String()).Msg("latency probe failed")
		return 0
	}
	_ = conn.Close()

	return float64(elapsed) / float64(time.Millisecond)
}
