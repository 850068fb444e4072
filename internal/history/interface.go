// Package history keeps a bounded in-memory window of recent snapshots.
package history

import (
	"context"

	"codeberg.org/mutker/telemy/internal/telemetry"
)

// Service records snapshots and serves the recent window.
type Service interface {
	Record(ctx context.Context, snap telemetry.Snapshot) error
	Recent(ctx context.Context, limit int) ([]Point, error)
	Run(ctx context.Context, src Source) error
	Close() error
}

// Repository is the storage behind a Service.
type Repository interface {
	Record(ctx context.Context, snap telemetry.Snapshot) error
	Recent(ctx context.Context, limit int) ([]Point, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Source yields each new snapshot, see distributor.Subscription.
type Source interface {
	Next(ctx context.Context) (telemetry.Snapshot, error)
}

// Point is one recorded snapshot, flattened.
type Point struct {
	Timestamp    int64    `json:"timestamp"`
	Health       float64  `json:"health"`
	Connected    bool     `json:"connected"`
	Streaming    bool     `json:"streaming"`
	CPUPercent   float64  `json:"cpu_percent"`
	MemPercent   float64  `json:"mem_percent"`
	GPUPercent   *float64 `json:"gpu_percent,omitempty"`
	GPUTempC     *float64 `json:"gpu_temp_c,omitempty"`
	UploadMbps   float64  `json:"upload_mbps"`
	DownloadMbps float64  `json:"download_mbps"`
	LatencyMs    float64  `json:"latency_ms"`
	Outputs      int      `json:"outputs"`
}
