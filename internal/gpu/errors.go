package gpu

import (
	"codeberg.org/mutker/telemy/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	ErrNotInitialized        = errors.ErrorCode("gpu_not_initialized")
	ErrInitFailed            = errors.ErrorCode("gpu_init_failed")
	ErrShutdownFailed        = errors.ErrorCode("gpu_shutdown_failed")
	ErrDeviceCountFailed     = errors.ErrorCode("gpu_device_count_failed")
	ErrNoDevices             = errors.ErrorCode("gpu_no_devices")
	ErrDeviceNotFound        = errors.ErrorCode("gpu_device_not_found")
	ErrUtilizationReadFailed = errors.ErrorCode("gpu_utilization_read_failed")
	ErrTemperatureReadFailed = errors.ErrorCode("gpu_temperature_read_failed")
)

func init() {
	errors.RegisterMessages(map[errors.ErrorCode]string{
		ErrNotInitialized:        "NVML is not initialized",
		ErrInitFailed:            "Failed to initialize NVML",
		ErrShutdownFailed:        "Failed to shut down NVML",
		ErrDeviceCountFailed:     "Failed to count GPU devices",
		ErrNoDevices:             "No NVIDIA GPU found",
		ErrDeviceNotFound:        "GPU device not found",
		ErrUtilizationReadFailed: "Failed to read GPU utilization",
		ErrTemperatureReadFailed: "Failed to read GPU temperature",
	})
}

// nvmlError carries an NVML return code as an error cause.
type nvmlError nvml.Return

func (e nvmlError) Error() string {
	return nvml.ErrorString(nvml.Return(e))
}

// check turns a non-success return into an error coded with code.
func check(code errors.ErrorCode, ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}

	return errors.New().Wrap(code, nvmlError(ret))
}
