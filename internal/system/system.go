package system

import (
	"time"

	"codeberg.org/mutker/telemy/internal/logger"
	"codeberg.org/mutker/telemy/internal/rate"
)

// Sampler turns host counters into point samples. It keeps per-call
// baselines and must be used from a single goroutine.
type Sampler struct {
	src    HostSource
	logger logger.Logger
	now    func() time.Time

	prevCPU   CPUTimes
	cpuPrimed bool

	upload   rate.Tracker
	download rate.Tracker
}

type Option func(*Sampler)

func WithClock(now func() time.Time) Option {
	return func(s *Sampler) {
		s.now = now
	}
}

func NewSampler(src HostSource, log logger.Logger, opts ...Option) *Sampler {
	s := &Sampler{
		src:    src,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SampleSystem returns CPU utilization since the previous call (since boot on
// the first call) and the share of memory in use, both in percent.
func (s *Sampler) SampleSystem() (cpuPercent, memPercent float64) {
	return s.sampleCPU(), s.sampleMemory()
}

func (s *Sampler) sampleCPU() float64 {
	times, err := s.src.CPUTimes()
	if err != nil {
		s.logger.Debug().Err(err).Msg("cpu sample unavailable")
		s.cpuPrimed = false
		return 0
	}

	prev := CPUTimes{}
	if s.cpuPrimed {
		prev = s.prevCPU
	}
	s.prevCPU = times
	s.cpuPrimed = true

	total := times.Total - prev.Total
	busy := times.Busy - prev.Busy
	if total <= 0 || busy < 0 {
		return 0
	}

	return percent(busy / total)
}

func (s *Sampler) sampleMemory() float64 {
	mem, err := s.src.Memory()
	if err != nil {
		s.logger.Debug().Err(err).Msg("memory sample unavailable")
		return 0
	}
	if mem.Total == 0 || mem.Available > mem.Total {
		return 0
	}

	return percent(float64(mem.Total-mem.Available) / float64(mem.Total))
}

// SampleNetwork returns upload and download rates in Mbps since the previous
// call. Both are 0 without a baseline.
func (s *Sampler) SampleNetwork() (uploadMbps, downloadMbps float64) {
	counters, err := s.src.NetCounters()
	if err != nil {
		s.logger.Debug().Err(err).Msg("network sample unavailable")
		s.upload.Reset()
		s.download.Reset()
		return 0, 0
	}

	now := s.now()

	return s.upload.Observe(counters.TxBytes, now), s.download.Observe(counters.RxBytes, now)
}

func percent(ratio float64) float64 {
	switch {
	case ratio <= 0:
		return 0
	case ratio >= 1:
		return 100
	default:
		return ratio * 100
	}
}
