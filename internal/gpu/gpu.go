package gpu

import (
	"sync"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// Only the first device is sampled; multi-GPU hosts are not disambiguated.
const deviceIndex = 0

// Monitor samples GPU utilization and temperature. A monitor whose
// initialization failed reports both values as absent.
type Monitor struct {
	nvml      nvmlController
	logger    logger.Logger
	available bool
	mu        sync.Mutex
}

func NewMonitor(log logger.Logger) *Monitor {
	return newMonitor(&nvmlLibrary{}, log)
}

func newMonitor(ctrl nvmlController, log logger.Logger) *Monitor {
	return &Monitor{nvml: ctrl, logger: log}
}

// Initialize loads NVML and checks that a device is present. A failure is
// not fatal: the monitor stays unavailable.
func (m *Monitor) Initialize() error {
	errFactory := errors.New()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.nvml.Initialize(); err != nil {
		return err
	}

	count, err := m.nvml.GetDeviceCount()
	if err != nil {
		_ = m.nvml.Shutdown()
		return err
	}
	if count == 0 {
		_ = m.nvml.Shutdown()
		return errFactory.New(ErrNoDevices)
	}

	d, err := m.nvml.GetDevice(deviceIndex)
	if err != nil {
		_ = m.nvml.Shutdown()
		return err
	}

	if name, ret := d.GetName(); ret == nvml.SUCCESS {
		m.logger.Info().Msgf("Detected GPU: %v (%d device(s))", name, count)
	} else {
		m.logger.Warn().Msgf("Failed to get GPU name: %v", nvml.ErrorString(ret))
	}

	m.available = true

	return nil
}

func (m *Monitor) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.available
}

// Sample returns utilization in percent and temperature in Celsius. Each
// value is nil when it could not be read.
func (m *Monitor) Sample() (utilization, temperature *float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.available {
		return nil, nil
	}

	d, err := m.nvml.GetDevice(deviceIndex)
	if err != nil {
		m.logger.Debug().Err(err).Msg("gpu device unavailable")
		return nil, nil
	}

	u, ret := d.GetUtilizationRates()
	if err := check(ErrUtilizationReadFailed, ret); err != nil {
		m.logger.Debug().Err(err).Msg("gpu utilization unavailable")
	} else {
		v := float64(u.Gpu)
		utilization = &v
	}

	t, ret := d.GetTemperature(nvml.TEMPERATURE_GPU)
	if err := check(ErrTemperatureReadFailed, ret); err != nil {
		m.logger.Debug().Err(err).Msg("gpu temperature unavailable")
	} else {
		v := float64(t)
		temperature = &v
	}

	return utilization, temperature
}

func (m *Monitor) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.available {
		return nil
	}
	m.available = false

	return m.nvml.Shutdown()
}
