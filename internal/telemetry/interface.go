package telemetry

import "fmt"

// ConnectionState is the state of the control connection as seen by one cycle.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

func (s ConnectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ConnectionState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "connected":
		*s = Connected
	case "disconnected":
		*s = Disconnected
	default:
		return fmt.Errorf("unknown connection state %q", text)
	}
	return nil
}

// Snapshot is the immutable result of one sampling cycle. Values are handed
// out by copy; Outputs must be treated as read-only by consumers.
type Snapshot struct {
	Timestamp  int64           `json:"timestamp"`
	Health     float64         `json:"health"`
	Connection ConnectionFrame `json:"connection"`
	System     SystemFrame     `json:"system"`
	Network    NetworkFrame    `json:"network"`
	Outputs    []OutputMetric  `json:"outputs"`
}

type ConnectionFrame struct {
	State              ConnectionState `json:"state"`
	StreamingActive    bool            `json:"streaming"`
	RecordingActive    bool            `json:"recording"`
	TestMode           bool            `json:"test_mode"`
	TotalFrames        uint64          `json:"total_frames"`
	TotalDroppedFrames uint64          `json:"total_dropped_frames"`
}

// SystemFrame holds host samples. GPU fields are nil when no GPU backend is
// available, which is distinct from a zero reading.
type SystemFrame struct {
	CPUPercent float64  `json:"cpu_percent"`
	MemPercent float64  `json:"mem_percent"`
	GPUPercent *float64 `json:"gpu_percent"`
	GPUTempC   *float64 `json:"gpu_temp_c"`
}

// NetworkFrame holds host throughput. LatencyMs of 0 means unmeasured.
type NetworkFrame struct {
	UploadMbps   float64 `json:"upload_mbps"`
	DownloadMbps float64 `json:"download_mbps"`
	LatencyMs    float64 `json:"latency_ms"`
}

// OutputMetric describes one output reported by the streaming application.
// Name is the application's stable identifier, not a display name.
type OutputMetric struct {
	Name          string  `json:"name"`
	BitrateKbps   uint32  `json:"bitrate_kbps"`
	DropPct       float64 `json:"drop_pct"`
	FPS           float64 `json:"fps"`
	EncodingLagMs float64 `json:"encoding_lag_ms"`
}

// RawOutputCounters are the cumulative counters of one output as reported
// by the streaming application.
type RawOutputCounters struct {
	Bytes           uint64
	SkippedFrames   uint64
	TotalFrames     uint64
	DurationSeconds float64
}

// Clone returns a copy that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Outputs != nil {
		c.Outputs = make([]OutputMetric, len(s.Outputs))
		copy(c.Outputs, s.Outputs)
	}
	if s.System.GPUPercent != nil {
		v := *s.System.GPUPercent
		c.System.GPUPercent = &v
	}
	if s.System.GPUTempC != nil {
		v := *s.System.GPUTempC
		c.System.GPUTempC = &v
	}
	return c
}
