package supervisor

import (
	"context"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"codeberg.org/mutker/telemy/internal/obs"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const failureLogInterval = 30 * time.Second

type Supervisor struct {
	cfg    Config
	dialer obs.Dialer
	procs  ProcessChecker
	logger logger.Logger
	now    func() time.Time

	state            State
	session          obs.Session
	lastProcessCheck time.Time
	processRunning   bool

	cooldown    backoff.BackOff
	nextAttempt time.Time
	failures    int
	failureLog  *rate.Sometimes
}

type Option func(*Supervisor)

// WithClock replaces the wall clock used for cooldown and liveness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

func New(cfg Config, dialer obs.Dialer, procs ProcessChecker, log logger.Logger, opts ...Option) (*Supervisor, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dialer == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "dialer is required")
	}
	if cfg.AutoDetect && procs == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "process checker is required when auto-detect is enabled")
	}

	s := &Supervisor{
		cfg:            cfg,
		dialer:         dialer,
		procs:          procs,
		logger:         log,
		now:            time.Now,
		state:          Disconnected,
		processRunning: true,
		cooldown:       backoff.NewConstantBackOff(cfg.RetryCooldown),
		failureLog:     newFailureLog(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func newFailureLog() *rate.Sometimes {
	return &rate.Sometimes{First: 1, Interval: failureLogInterval}
}

// State returns the state the next cycle starts from.
func (s *Supervisor) State() State {
	return s.state
}

// Refresh rechecks process liveness, at most once per check interval.
func (s *Supervisor) Refresh() {
	if !s.cfg.AutoDetect {
		return
	}

	now := s.now()
	if !s.lastProcessCheck.IsZero() && now.Sub(s.lastProcessCheck) < s.cfg.ProcessCheckInterval {
		return
	}
	s.lastProcessCheck = now

	running, err := s.procs.Running(s.cfg.ProcessName)
	if err != nil {
		// Presume running; the connection attempt gives the real answer.
		s.logger.Debug().Err(err).Msg("process liveness check failed")
		running = true
	}

	if running != s.processRunning {
		s.logger.Info().Str("process", s.cfg.ProcessName).Bool("running", running).Msg("OBS process liveness changed")
	}
	s.processRunning = running
}

// Ensure makes at most one connection attempt and reports the resulting status.
func (s *Supervisor) Ensure(ctx context.Context) Status {
	if s.session != nil {
		return Status{State: Connected, Session: s.session}
	}

	if s.cfg.AutoDetect && !s.processRunning {
		return Status{State: Disconnected}
	}

	if s.now().Before(s.nextAttempt) {
		return Status{State: Disconnected}
	}

	s.state = Connecting
	session, err := s.dialer.Dial(ctx)
	if err != nil {
		s.state = Disconnected
		s.failures++
		s.nextAttempt = s.now().Add(s.cooldown.NextBackOff())
		s.logFailure(err)
		return Status{State: Disconnected}
	}

	if s.failures > 0 {
		s.logger.Info().Int("failed_attempts", s.failures).Msg("connected to OBS")
	} else {
		s.logger.Info().Msg("connected to OBS")
	}

	s.session = session
	s.state = Connected
	s.failures = 0
	s.nextAttempt = time.Time{}
	s.cooldown.Reset()
	s.failureLog = newFailureLog()

	return Status{State: Connected, Session: session}
}

func (s *Supervisor) logFailure(err error) {
	diagnosis := "unreachable"
	if obs.IsAuthFailure(err) {
		diagnosis = "authentication rejected"
	}

	warned := false
	s.failureLog.Do(func() {
		warned = true
		s.logger.Warn().Err(err).Str("diagnosis", diagnosis).Int("attempt", s.failures).
			Msg("OBS connection attempt failed")
	})
	if !warned {
		s.logger.Debug().Err(err).Str("diagnosis", diagnosis).Int("attempt", s.failures).
			Msg("OBS connection attempt failed")
	}
}

// Drop discards the live session after a failed operation. The next Ensure
// call may reconnect immediately.
func (s *Supervisor) Drop(cause error) {
	if s.session == nil {
		s.state = Disconnected
		return
	}

	s.logger.Warn().Err(cause).Msg("OBS connection lost")

	if err := s.session.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("closing OBS session")
	}
	s.session = nil
	s.state = Disconnected
}

// Close releases the live session, if any.
func (s *Supervisor) Close() error {
	if s.session == nil {
		return nil
	}

	err := s.session.Close()
	s.session = nil
	s.state = Disconnected

	return err
}
