package system

import (
	"codeberg.org/mutker/telemy/internal/errors"
	"github.com/prometheus/procfs"
)

const kibibyte = 1024

// ProcFS reads host counters from a mounted proc filesystem.
type ProcFS struct {
	fs procfs.FS
}

// NewProcFS opens the proc filesystem at mountPoint (procfs.DefaultMountPoint
// when empty) and verifies that it can be read.
func NewProcFS(mountPoint string) (*ProcFS, error) {
	errFactory := errors.New()

	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}

	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, errFactory.Wrap(ErrProcUnavailable, err)
	}
	if _, err := fs.Stat(); err != nil {
		return nil, errFactory.Wrap(ErrProcUnavailable, err)
	}

	return &ProcFS{fs: fs}, nil
}

func (p *ProcFS) CPUTimes() (CPUTimes, error) {
	stat, err := p.fs.Stat()
	if err != nil {
		return CPUTimes{}, errors.New().Wrap(ErrCPUReadFailed, err)
	}

	c := stat.CPUTotal
	idle := c.Idle + c.Iowait
	busy := c.User + c.Nice + c.System + c.IRQ + c.SoftIRQ + c.Steal

	return CPUTimes{Busy: busy, Total: busy + idle}, nil
}

func (p *ProcFS) Memory() (Memory, error) {
	errFactory := errors.New()

	info, err := p.fs.Meminfo()
	if err != nil {
		return Memory{}, errFactory.Wrap(ErrMemReadFailed, err)
	}
	if info.MemTotal == nil {
		return Memory{}, errFactory.WithMessage(ErrMemReadFailed, "MemTotal missing from meminfo")
	}

	var available uint64
	switch {
	case info.MemAvailable != nil:
		available = *info.MemAvailable
	case info.MemFree != nil:
		available = *info.MemFree
	}

	return Memory{
		Total:     *info.MemTotal * kibibyte,
		Available: available * kibibyte,
	}, nil
}

func (p *ProcFS) NetCounters() (NetCounters, error) {
	dev, err := p.fs.NetDev()
	if err != nil {
		return NetCounters{}, errors.New().Wrap(ErrNetReadFailed, err)
	}

	total := dev.Total()

	return NetCounters{RxBytes: total.RxBytes, TxBytes: total.TxBytes}, nil
}

func (p *ProcFS) ProcessNames() ([]string, error) {
	procs, err := p.fs.AllProcs()
	if err != nil {
		return nil, errors.New().Wrap(ErrProcListFailed, err)
	}

	names := make([]string, 0, len(procs))
	for _, proc := range procs {
		// processes may exit between listing and reading
		comm, err := proc.Comm()
		if err != nil {
			continue
		}
		names = append(names, comm)
	}

	return names, nil
}
