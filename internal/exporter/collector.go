package exporter

import (
	"codeberg.org/mutker/telemy/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "telemy"

var (
	healthDesc = prometheus.NewDesc(namespace+"_health",
		"Aggregate stream health, 1 minus the mean output drop ratio.", nil, nil)

	cpuDesc = prometheus.NewDesc(namespace+"_system_cpu_percent",
		"Host CPU utilization in percent.", nil, nil)
	memDesc = prometheus.NewDesc(namespace+"_system_mem_percent",
		"Host memory in use in percent.", nil, nil)
	gpuDesc = prometheus.NewDesc(namespace+"_system_gpu_percent",
		"GPU utilization in percent.", nil, nil)
	gpuTempDesc = prometheus.NewDesc(namespace+"_system_gpu_temp_celsius",
		"GPU temperature in degrees Celsius.", nil, nil)

	uploadDesc = prometheus.NewDesc(namespace+"_network_upload_mbps",
		"Host upload rate in megabits per second.", nil, nil)
	downloadDesc = prometheus.NewDesc(namespace+"_network_download_mbps",
		"Host download rate in megabits per second.", nil, nil)
	latencyDesc = prometheus.NewDesc(namespace+"_network_latency_ms",
		"TCP connect time to the probe target in milliseconds, 0 when unmeasured.", nil, nil)

	connectedDesc = prometheus.NewDesc(namespace+"_obs_connected",
		"Whether the OBS control connection answered this cycle.", nil, nil)
	streamingDesc = prometheus.NewDesc(namespace+"_obs_streaming",
		"Whether OBS is streaming.", nil, nil)
	testModeDesc = prometheus.NewDesc(namespace+"_obs_test_mode",
		"Whether the stream runs in bandwidth test mode.", nil, nil)
	totalFramesDesc = prometheus.NewDesc(namespace+"_obs_total_frames",
		"Frames output by the stream so far.", nil, nil)
	droppedFramesDesc = prometheus.NewDesc(namespace+"_obs_dropped_frames",
		"Frames skipped by the stream so far.", nil, nil)

	outputLabels  = []string{"output"}
	bitrateDesc   = prometheus.NewDesc(namespace+"_output_bitrate_kbps", "Output bitrate in kilobits per second.", outputLabels, nil)
	dropRatioDesc = prometheus.NewDesc(namespace+"_output_drop_ratio", "Output dropped frame ratio.", outputLabels, nil)
	fpsDesc       = prometheus.NewDesc(namespace+"_output_fps", "Output frames per second.", outputLabels, nil)
	lagDesc       = prometheus.NewDesc(namespace+"_output_encoding_lag_ms", "Output encoding lag in milliseconds.", outputLabels, nil)
)

// Source is the read side of the distributor.
type Source interface {
	Latest() (telemetry.Snapshot, bool)
}

// snapshotCollector renders the latest snapshot at scrape time.
type snapshotCollector struct {
	src Source
}

func (c *snapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		healthDesc, cpuDesc, memDesc, gpuDesc, gpuTempDesc,
		uploadDesc, downloadDesc, latencyDesc,
		connectedDesc, streamingDesc, testModeDesc, totalFramesDesc, droppedFramesDesc,
		bitrateDesc, dropRatioDesc, fpsDesc, lagDesc,
	} {
		ch <- d
	}
}

func (c *snapshotCollector) Collect(ch chan<- prometheus.Metric) {
	snap, ok := c.src.Latest()
	if !ok {
		return
	}

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	gauge(healthDesc, snap.Health)

	gauge(cpuDesc, snap.System.CPUPercent)
	gauge(memDesc, snap.System.MemPercent)
	if snap.System.GPUPercent != nil {
		gauge(gpuDesc, *snap.System.GPUPercent)
	}
	if snap.System.GPUTempC != nil {
		gauge(gpuTempDesc, *snap.System.GPUTempC)
	}

	gauge(uploadDesc, snap.Network.UploadMbps)
	gauge(downloadDesc, snap.Network.DownloadMbps)
	gauge(latencyDesc, snap.Network.LatencyMs)

	conn := snap.Connection
	gauge(connectedDesc, boolValue(conn.State == telemetry.Connected))
	gauge(streamingDesc, boolValue(conn.StreamingActive))
	gauge(testModeDesc, boolValue(conn.TestMode))
	gauge(totalFramesDesc, float64(conn.TotalFrames))
	gauge(droppedFramesDesc, float64(conn.TotalDroppedFrames))

	seen := make(map[string]bool, len(snap.Outputs))
	for _, o := range snap.Outputs {
		// duplicate label sets would fail the whole gather
		if seen[o.Name] {
			continue
		}
		seen[o.Name] = true

		gauge(bitrateDesc, float64(o.BitrateKbps), o.Name)
		gauge(dropRatioDesc, o.DropPct, o.Name)
		gauge(fpsDesc, o.FPS, o.Name)
		gauge(lagDesc, o.EncodingLagMs, o.Name)
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
