package telemetry

import "math"

// Score turns per-output drop ratios into one aggregate health value.
// No outputs means nothing is being delivered, which scores 0.
func Score(outputs []OutputMetric) float64 {
	if len(outputs) == 0 {
		return 0
	}

	var sum float64
	for _, o := range outputs {
		sum += o.DropPct
	}

	return clamp(1-sum/float64(len(outputs)), 0, 1)
}

// DropRatio returns skipped/total as a fraction, or 0 without frames.
func DropRatio(skipped, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return clamp(float64(skipped)/float64(total), 0, 1)
}

// DeriveOutput computes the per-output metrics from raw counters.
func DeriveOutput(name string, raw RawOutputCounters) OutputMetric {
	out := OutputMetric{
		Name:    name,
		DropPct: DropRatio(raw.SkippedFrames, raw.TotalFrames),
	}

	if raw.DurationSeconds > 0 {
		out.FPS = float64(raw.TotalFrames) / raw.DurationSeconds
		out.BitrateKbps = bitrateKbps(raw.Bytes, raw.DurationSeconds)
	}

	return out
}

// ApplyDropFallback gives outputs whose own drop ratio is exactly zero the
// connection-level ratio, since per-output counters are not always populated.
func ApplyDropFallback(outputs []OutputMetric, connectionDrop float64) {
	if connectionDrop == 0 {
		return
	}
	for i := range outputs {
		if outputs[i].DropPct == 0 {
			outputs[i].DropPct = connectionDrop
		}
	}
}

func bitrateKbps(bytes uint64, durationSeconds float64) uint32 {
	kbps := math.Round(float64(bytes) * 8 / durationSeconds / 1000)
	if kbps <= 0 || math.IsNaN(kbps) {
		return 0
	}
	if kbps > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(kbps)
}

func clamp(value, minValue, maxValue float64) float64 {
	if math.IsNaN(value) || value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
