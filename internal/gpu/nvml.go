package gpu

import (
	"codeberg.org/mutker/telemy/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// nvmlLibrary is the nvmlController backed by the system NVML library.
type nvmlLibrary struct {
	loaded bool
}

func (l *nvmlLibrary) Initialize() error {
	if l.loaded {
		return nil
	}
	if err := check(ErrInitFailed, nvml.Init()); err != nil {
		return err
	}
	l.loaded = true

	return nil
}

func (l *nvmlLibrary) Shutdown() error {
	if !l.loaded {
		return nil
	}
	l.loaded = false

	return check(ErrShutdownFailed, nvml.Shutdown())
}

func (l *nvmlLibrary) GetDeviceCount() (int, error) {
	if !l.loaded {
		return 0, errors.New().New(ErrNotInitialized)
	}

	count, ret := nvml.DeviceGetCount()

	return count, check(ErrDeviceCountFailed, ret)
}

func (l *nvmlLibrary) GetDevice(index int) (device, error) {
	if !l.loaded {
		return nil, errors.New().New(ErrNotInitialized)
	}

	d, ret := nvml.DeviceGetHandleByIndex(index)
	if err := check(ErrDeviceNotFound, ret); err != nil {
		return nil, err
	}

	return d, nil
}
