// Package supervisor owns the lifecycle of the control connection to OBS.
// A Supervisor is driven by the sampling loop only and is not safe for
// concurrent use.
package supervisor

import "codeberg.org/mutker/telemy/internal/obs"

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ProcessChecker reports whether a process with the given name is running.
type ProcessChecker interface {
	Running(name string) (bool, error)
}

// Status is the outcome of one Ensure call. Session is only set when
// State is Connected.
type Status struct {
	State   State
	Session obs.Session
}

func (s Status) Connected() bool {
	return s.State == Connected && s.Session != nil
}
