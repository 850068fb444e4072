package system

import "codeberg.org/mutker/telemy/internal/errors"

const (
	ErrProcUnavailable = errors.ErrorCode("system_proc_unavailable")
	ErrCPUReadFailed   = errors.ErrorCode("system_cpu_read_failed")
	ErrMemReadFailed   = errors.ErrorCode("system_memory_read_failed")
	ErrNetReadFailed   = errors.ErrorCode("system_network_read_failed")
	ErrProcListFailed  = errors.ErrorCode("system_process_list_failed")
)
