package gpu

import (
	"testing"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	util    uint32
	utilRet nvml.Return
	temp    uint32
	tempRet nvml.Return
}

func (d *fakeDevice) GetName() (string, nvml.Return) {
	return "NVIDIA GeForce RTX 4070", nvml.SUCCESS
}

func (d *fakeDevice) GetUtilizationRates() (nvml.Utilization, nvml.Return) {
	return nvml.Utilization{Gpu: d.util}, d.utilRet
}

func (d *fakeDevice) GetTemperature(nvml.TemperatureSensors) (uint32, nvml.Return) {
	return d.temp, d.tempRet
}

type fakeNVML struct {
	initErr  error
	count    int
	dev      *fakeDevice
	shutdown int
	indexes  []int
}

func (f *fakeNVML) Initialize() error { return f.initErr }

func (f *fakeNVML) Shutdown() error {
	f.shutdown++
	return nil
}

func (f *fakeNVML) GetDeviceCount() (int, error) { return f.count, nil }

func (f *fakeNVML) GetDevice(index int) (device, error) {
	f.indexes = append(f.indexes, index)
	if f.dev == nil {
		return nil, errors.New().New(ErrDeviceNotFound)
	}
	return f.dev, nil
}

func TestSample(t *testing.T) {
	ctrl := &fakeNVML{count: 2, dev: &fakeDevice{util: 42, temp: 61}}
	m := newMonitor(ctrl, logger.Nop())
	require.NoError(t, m.Initialize())
	assert.True(t, m.Available())

	util, temp := m.Sample()
	require.NotNil(t, util)
	require.NotNil(t, temp)
	assert.InDelta(t, 42.0, *util, 1e-9)
	assert.InDelta(t, 61.0, *temp, 1e-9)

	for _, idx := range ctrl.indexes {
		assert.Equal(t, 0, idx)
	}
}

func TestSamplePartialFailure(t *testing.T) {
	ctrl := &fakeNVML{count: 1, dev: &fakeDevice{util: 10, tempRet: nvml.ERROR_NOT_SUPPORTED}}
	m := newMonitor(ctrl, logger.Nop())
	require.NoError(t, m.Initialize())

	util, temp := m.Sample()
	require.NotNil(t, util)
	assert.Nil(t, temp)
}

func TestUnavailableMonitor(t *testing.T) {
	ctrl := &fakeNVML{initErr: errors.New().New(ErrInitFailed)}
	m := newMonitor(ctrl, logger.Nop())

	err := m.Initialize()
	assert.True(t, errors.HasCode(err, ErrInitFailed))
	assert.False(t, m.Available())

	util, temp := m.Sample()
	assert.Nil(t, util)
	assert.Nil(t, temp)
	assert.NoError(t, m.Shutdown())
	assert.Zero(t, ctrl.shutdown)
}

func TestNoDevices(t *testing.T) {
	ctrl := &fakeNVML{count: 0}
	m := newMonitor(ctrl, logger.Nop())

	err := m.Initialize()
	assert.True(t, errors.HasCode(err, ErrNoDevices))
	assert.Equal(t, 1, ctrl.shutdown)
	assert.False(t, m.Available())
}

func TestShutdown(t *testing.T) {
	ctrl := &fakeNVML{count: 1, dev: &fakeDevice{}}
	m := newMonitor(ctrl, logger.Nop())
	require.NoError(t, m.Initialize())

	require.NoError(t, m.Shutdown())
	assert.Equal(t, 1, ctrl.shutdown)
	assert.False(t, m.Available())

	util, _ := m.Sample()
	assert.Nil(t, util)
}

func TestCheck(t *testing.T) {
	assert.NoError(t, check(ErrInitFailed, nvml.SUCCESS))

	err := check(ErrInitFailed, nvml.ERROR_UNKNOWN)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInitFailed))
	assert.Contains(t, err.Error(), "Failed to initialize NVML")
}
