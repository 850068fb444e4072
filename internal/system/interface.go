// Package system samples host CPU, memory and network counters and checks
// process liveness.
package system

// HostSource provides point-in-time host counters.
type HostSource interface {
	CPUTimes() (CPUTimes, error)
	Memory() (Memory, error)
	NetCounters() (NetCounters, error)
}

// ProcessLister lists the command names of running processes.
type ProcessLister interface {
	ProcessNames() ([]string, error)
}

// CPUTimes are cumulative CPU seconds across all cores.
type CPUTimes struct {
	Busy  float64
	Total float64
}

// Memory sizes in bytes.
type Memory struct {
	Total     uint64
	Available uint64
}

// NetCounters are cumulative bytes summed over every interface.
type NetCounters struct {
	RxBytes uint64
	TxBytes uint64
}
