package sampler

import (
	"context"
	"strings"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"codeberg.org/mutker/telemy/internal/obs"
	"codeberg.org/mutker/telemy/internal/telemetry"
)

const (
	testModeMarker     = "?bandwidthtest=true"
	recordOutputMarker = "file_output"
)

// Sampler owns all per-cycle state. Only Run (or Collect) may touch it, from
// one goroutine.
type Sampler struct {
	cfg    Config
	src    Sources
	pub    Publisher
	logger logger.Logger
	now    func() time.Time

	lastTimestamp     int64
	testMode          bool
	lastTestModeCheck time.Time
}

type Option func(*Sampler)

func WithClock(now func() time.Time) Option {
	return func(s *Sampler) {
		s.now = now
	}
}

func New(cfg Config, src Sources, pub Publisher, log logger.Logger, opts ...Option) (*Sampler, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src.Connection == nil || src.System == nil || src.Latency == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "connection, system and latency sources are required")
	}
	if pub == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "publisher is required")
	}

	s := &Sampler{
		cfg:    cfg,
		src:    src,
		pub:    pub,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Run collects once immediately and then on every tick until ctx is done.
// A cycle in progress when ctx is cancelled runs to completion.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	cycleCtx := context.WithoutCancel(ctx)
	s.Collect(cycleCtx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("sampling loop stopped")
			return nil
		case <-ticker.C:
			s.Collect(cycleCtx)
		}
	}
}

// Collect runs one cycle, publishes its snapshot and returns it.
func (s *Sampler) Collect(ctx context.Context) telemetry.Snapshot {
	s.src.Connection.Refresh()
	status := s.src.Connection.Ensure(ctx)

	var conn telemetry.ConnectionFrame
	var outputs []telemetry.OutputMetric
	if status.Connected() {
		outputs, conn = s.collectOBS(ctx, status.Session)
	} else {
		s.lastTestModeCheck = time.Time{}
	}

	snap := telemetry.Snapshot{
		Timestamp:  s.timestamp(),
		Health:     telemetry.Score(outputs),
		Connection: conn,
		Outputs:    outputs,
	}

	snap.System.CPUPercent, snap.System.MemPercent = s.src.System.SampleSystem()
	if s.src.GPU != nil {
		snap.System.GPUPercent, snap.System.GPUTempC = s.src.GPU.Sample()
	}
	snap.Network.UploadMbps, snap.Network.DownloadMbps = s.src.System.SampleNetwork()
	snap.Network.LatencyMs = s.src.Latency.Measure(ctx)

	s.pub.Publish(snap)

	s.logger.Debug().
		Int64("timestamp", snap.Timestamp).
		Float64("health", snap.Health).
		Str("connection", snap.Connection.State.String()).
		Int("outputs", len(snap.Outputs)).
		Float64("cpu_percent", snap.System.CPUPercent).
		Float64("upload_mbps", snap.Network.UploadMbps).
		Float64("latency_ms", snap.Network.LatencyMs).
		Msg("snapshot published")

	return snap
}

// collectOBS reads outputs and stream status. The first failed read drops the
// connection; whatever was read before it is kept for this cycle.
func (s *Sampler) collectOBS(ctx context.Context, session obs.Session) ([]telemetry.OutputMetric, telemetry.ConnectionFrame) {
	var conn telemetry.ConnectionFrame

	list, err := session.Outputs(ctx)
	if err != nil {
		s.drop(err)
		return nil, conn
	}

	outputs := make([]telemetry.OutputMetric, 0, len(list))
	for _, o := range list {
		if !o.Active {
			continue
		}

		st, err := session.OutputStatus(ctx, o.Name)
		if err != nil {
			s.drop(err)
			return outputs, conn
		}

		if strings.Contains(o.Name, recordOutputMarker) {
			conn.RecordingActive = true
		}

		outputs = append(outputs, telemetry.DeriveOutput(o.Name, telemetry.RawOutputCounters{
			Bytes:           st.Bytes,
			SkippedFrames:   st.SkippedFrames,
			TotalFrames:     st.TotalFrames,
			DurationSeconds: st.Duration.Seconds(),
		}))
	}

	stream, err := session.StreamStatus(ctx)
	if err != nil {
		s.drop(err)
		return outputs, conn
	}

	if !s.refreshTestMode(ctx, session) {
		return outputs, conn
	}

	conn.State = telemetry.Connected
	conn.StreamingActive = stream.Active
	conn.TotalFrames = stream.TotalFrames
	conn.TotalDroppedFrames = stream.SkippedFrames
	conn.TestMode = s.testMode

	telemetry.ApplyDropFallback(outputs, telemetry.DropRatio(stream.SkippedFrames, stream.TotalFrames))

	return outputs, conn
}

// drop discards the session for the next cycle. The stream key is reread as
// soon as a session is back.
func (s *Sampler) drop(cause error) {
	s.src.Connection.Drop(cause)
	s.lastTestModeCheck = time.Time{}
}

// refreshTestMode rereads the stream key at most once per TestModeInterval.
// It reports false when the read failed and the connection was dropped.
func (s *Sampler) refreshTestMode(ctx context.Context, session obs.Session) bool {
	now := s.now()
	if !s.lastTestModeCheck.IsZero() && now.Sub(s.lastTestModeCheck) < s.cfg.TestModeInterval {
		return true
	}
	s.lastTestModeCheck = now

	settings, err := session.StreamServiceSettings(ctx)
	if err != nil {
		s.drop(err)
		return false
	}

	testMode := strings.Contains(settings.Key, testModeMarker)
	if testMode != s.testMode {
		s.logger.Info().Bool("test_mode", testMode).Msg("bandwidth test mode changed")
	}
	s.testMode = testMode

	return true
}

// timestamp never goes backwards, even when the wall clock does.
func (s *Sampler) timestamp() int64 {
	ts := s.now().Unix()
	if ts < s.lastTimestamp {
		ts = s.lastTimestamp
	}
	s.lastTimestamp = ts

	return ts
}
