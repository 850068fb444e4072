// Package obs implements the control connection to OBS Studio over the
// obs-websocket v5 protocol.
package obs

import (
	"context"
	"time"
)

// Dialer opens control sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// Session is a live control connection. Any returned error means the
// session should be considered dead.
type Session interface {
	Outputs(ctx context.Context) ([]Output, error)
	OutputStatus(ctx context.Context, name string) (OutputStatus, error)
	StreamStatus(ctx context.Context) (StreamStatus, error)
	StreamServiceSettings(ctx context.Context) (StreamServiceSettings, error)
	Close() error
}

type Output struct {
	Name   string
	Kind   string
	Active bool
}

type OutputStatus struct {
	Active        bool
	Reconnecting  bool
	Bytes         uint64
	SkippedFrames uint64
	TotalFrames   uint64
	Duration      time.Duration
}

type StreamStatus struct {
	Active        bool
	Reconnecting  bool
	Bytes         uint64
	SkippedFrames uint64
	TotalFrames   uint64
	Duration      time.Duration
}

type StreamServiceSettings struct {
	Type   string
	Server string
	Key    string
}
