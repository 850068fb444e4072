// Package sampler runs the fixed-interval collection cycle and publishes one
// snapshot per cycle.
package sampler

import (
	"context"

	"codeberg.org/mutker/telemy/internal/supervisor"
	"codeberg.org/mutker/telemy/internal/telemetry"
)

// Connection is the control connection lifecycle, see supervisor.Supervisor.
type Connection interface {
	Refresh()
	Ensure(ctx context.Context) supervisor.Status
	Drop(cause error)
}

type SystemSampler interface {
	SampleSystem() (cpuPercent, memPercent float64)
	SampleNetwork() (uploadMbps, downloadMbps float64)
}

type GPUSampler interface {
	Sample() (utilization, temperature *float64)
}

type LatencyProbe interface {
	Measure(ctx context.Context) float64
}

type Publisher interface {
	Publish(snap telemetry.Snapshot)
}

// Sources groups the collaborators a cycle reads from. GPU may be nil.
type Sources struct {
	Connection Connection
	System     SystemSampler
	GPU        GPUSampler
	Latency    LatencyProbe
}
