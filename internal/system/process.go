package system

import "strings"

// ProcessWatcher answers liveness questions by process command name.
type ProcessWatcher struct {
	lister ProcessLister
}

func NewProcessWatcher(lister ProcessLister) *ProcessWatcher {
	return &ProcessWatcher{lister: lister}
}

// Running reports whether a process named name (case-insensitive) exists.
func (w *ProcessWatcher) Running(name string) (bool, error) {
	names, err := w.lister.ProcessNames()
	if err != nil {
		return false, err
	}

	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true, nil
		}
	}

	return false, nil
}
