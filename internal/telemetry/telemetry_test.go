package telemetry_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/telemy/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outputs(drops ...float64) []telemetry.OutputMetric {
	out := make([]telemetry.OutputMetric, len(drops))
	for i, d := range drops {
		out[i] = telemetry.OutputMetric{Name: "out", DropPct: d}
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		drops []float64
		want  float64
	}{
		{"no outputs", nil, 0},
		{"perfect", []float64{0, 0}, 1},
		{"single", []float64{0.05}, 0.95},
		{"mean", []float64{0.1, 0.3}, 0.8},
		{"all dropped", []float64{1, 1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, telemetry.Score(outputs(tt.drops...)), 1e-9)
		})
	}
}

func TestScoreStaysInRange(t *testing.T) {
	for _, d := range []float64{0, 0.001, 0.25, 0.5, 0.999, 1} {
		for _, e := range []float64{0, 0.5, 1} {
			h := telemetry.Score(outputs(d, e))
			assert.GreaterOrEqual(t, h, 0.0)
			assert.LessOrEqual(t, h, 1.0)
			assert.InDelta(t, 1-(d+e)/2, h, 1e-9)
		}
	}
}

func TestDropRatio(t *testing.T) {
	assert.InDelta(t, 0.05, telemetry.DropRatio(50, 1000), 1e-9)
	assert.Equal(t, 0.0, telemetry.DropRatio(50, 0))
	assert.False(t, math.IsNaN(telemetry.DropRatio(0, 0)))
}

func TestDeriveOutput(t *testing.T) {
	out := telemetry.DeriveOutput("adv_stream", telemetry.RawOutputCounters{
		Bytes:           1_000_000,
		SkippedFrames:   50,
		TotalFrames:     1000,
		DurationSeconds: 8,
	})

	assert.Equal(t, "adv_stream", out.Name)
	assert.Equal(t, uint32(1000), out.BitrateKbps)
	assert.InDelta(t, 0.05, out.DropPct, 1e-9)
	assert.InDelta(t, 125.0, out.FPS, 1e-9)
	assert.Equal(t, 0.0, out.EncodingLagMs)
}

func TestDeriveOutputZeroDuration(t *testing.T) {
	out := telemetry.DeriveOutput("adv_file_output", telemetry.RawOutputCounters{
		Bytes:       4096,
		TotalFrames: 10,
	})

	assert.Equal(t, uint32(0), out.BitrateKbps)
	assert.Equal(t, 0.0, out.FPS)
}

func TestApplyDropFallback(t *testing.T) {
	outs := []telemetry.OutputMetric{
		{Name: "a", DropPct: 0},
		{Name: "b", DropPct: 0.2},
	}

	telemetry.ApplyDropFallback(outs, 0.1)

	assert.InDelta(t, 0.1, outs[0].DropPct, 1e-9)
	assert.InDelta(t, 0.2, outs[1].DropPct, 1e-9)
}

func TestApplyDropFallbackNoConnectionDrop(t *testing.T) {
	outs := []telemetry.OutputMetric{{Name: "a"}}
	telemetry.ApplyDropFallback(outs, 0)
	assert.Equal(t, 0.0, outs[0].DropPct)
}

func TestSnapshotClone(t *testing.T) {
	gpu := 42.0
	orig := telemetry.Snapshot{
		Outputs: []telemetry.OutputMetric{{Name: "a"}},
		System:  telemetry.SystemFrame{GPUPercent: &gpu},
	}

	c := orig.Clone()
	c.Outputs[0].Name = "changed"
	*c.System.GPUPercent = 1

	require.Len(t, orig.Outputs, 1)
	assert.Equal(t, "a", orig.Outputs[0].Name)
	assert.Equal(t, 42.0, *orig.System.GPUPercent)
}

func TestConnectionStateText(t *testing.T) {
	text, err := telemetry.Connected.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "connected", string(text))
	assert.Equal(t, "disconnected", telemetry.Disconnected.String())
}

func TestConnectionStateUnmarshalText(t *testing.T) {
	var s telemetry.ConnectionState
	require.NoError(t, s.UnmarshalText([]byte("connected")))
	assert.Equal(t, telemetry.Connected, s)
	require.NoError(t, s.UnmarshalText([]byte("disconnected")))
	assert.Equal(t, telemetry.Disconnected, s)
	assert.Error(t, s.UnmarshalText([]byte("connecting")))
}
