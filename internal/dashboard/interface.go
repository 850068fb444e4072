// Package dashboard serves the latest snapshot to local clients over HTTP
// and websockets.
package dashboard

import (
	"context"

	"codeberg.org/mutker/telemy/internal/distributor"
	"codeberg.org/mutker/telemy/internal/history"
	"codeberg.org/mutker/telemy/internal/telemetry"
)

// Snapshots is the read side of the distributor.
type Snapshots interface {
	Latest() (telemetry.Snapshot, bool)
	Subscribe() *distributor.Subscription
}

type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Point, error)
}
