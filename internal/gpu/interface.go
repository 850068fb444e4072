// Package gpu samples utilization and temperature of the first NVIDIA GPU
// through NVML.
package gpu

import "github.com/NVIDIA/go-nvml/pkg/nvml"

// device is the part of nvml.Device the monitor reads.
type device interface {
	GetName() (string, nvml.Return)
	GetUtilizationRates() (nvml.Utilization, nvml.Return)
	GetTemperature(sensor nvml.TemperatureSensors) (uint32, nvml.Return)
}

// nvmlController abstracts NVML operations for testing
type nvmlController interface {
	Initialize() error
	Shutdown() error
	GetDeviceCount() (int, error)
	GetDevice(index int) (device, error)
}
