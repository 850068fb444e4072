// Package distributor holds the latest snapshot for any number of readers.
// Publishing never waits on readers.
package distributor

import (
	"context"
	"sync"
	"sync/atomic"

	"codeberg.org/mutker/telemy/internal/telemetry"
)

type slot struct {
	snap    telemetry.Snapshot
	version uint64
	// closed when a newer slot replaces this one
	changed chan struct{}
}

type Distributor struct {
	current atomic.Pointer[slot]
	mu      sync.Mutex
}

func New() *Distributor {
	d := &Distributor{}
	d.current.Store(&slot{changed: make(chan struct{})})

	return d
}

// Publish makes snap the current snapshot and wakes subscribers.
func (d *Distributor) Publish(snap telemetry.Snapshot) {
	next := &slot{snap: snap.Clone(), changed: make(chan struct{})}

	d.mu.Lock()
	prev := d.current.Load()
	next.version = prev.version + 1
	d.current.Store(next)
	d.mu.Unlock()

	close(prev.changed)
}

// Latest returns a copy of the current snapshot, and false before the first
// Publish.
func (d *Distributor) Latest() (telemetry.Snapshot, bool) {
	s := d.current.Load()
	if s.version == 0 {
		return telemetry.Snapshot{}, false
	}

	return s.snap.Clone(), true
}

// Version counts publishes so far.
func (d *Distributor) Version() uint64 {
	return d.current.Load().version
}

// Subscribe returns a cursor that yields each newer snapshot. Intermediate
// snapshots are skipped when the reader falls behind.
func (d *Distributor) Subscribe() *Subscription {
	return &Subscription{d: d}
}

type Subscription struct {
	d    *Distributor
	seen uint64
}

// Next blocks until a snapshot newer than the last one returned is available
// or ctx is done.
func (s *Subscription) Next(ctx context.Context) (telemetry.Snapshot, error) {
	for {
		cur := s.d.current.Load()
		if cur.version > s.seen {
			s.seen = cur.version
			return cur.snap.Clone(), nil
		}

		select {
		case <-cur.changed:
		case <-ctx.Done():
			return telemetry.Snapshot{}, ctx.Err()
		}
	}
}

// Changed reports, without blocking, whether a newer snapshot is available,
// and returns it when so.
func (s *Subscription) Changed() (telemetry.Snapshot, bool) {
	cur := s.d.current.Load()
	if cur.version <= s.seen {
		return telemetry.Snapshot{}, false
	}
	s.seen = cur.version

	return cur.snap.Clone(), true
}
