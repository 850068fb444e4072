package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/telemy/internal/errors"
	"codeberg.org/mutker/telemy/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	cpu    CPUTimes
	cpuErr error
	mem    Memory
	memErr error
	net    NetCounters
	netErr error
}

func (f *fakeSource) CPUTimes() (CPUTimes, error)       { return f.cpu, f.cpuErr }
func (f *fakeSource) Memory() (Memory, error)           { return f.mem, f.memErr }
func (f *fakeSource) NetCounters() (NetCounters, error) { return f.net, f.netErr }

type fakeLister struct {
	names []string
	err   error
}

func (f *fakeLister) ProcessNames() ([]string, error) { return f.names, f.err }

func TestSampleSystem(t *testing.T) {
	src := &fakeSource{
		cpu: CPUTimes{Busy: 100, Total: 400},
		mem: Memory{Total: 8 << 30, Available: 2 << 30},
	}
	s := NewSampler(src, logger.Nop())

	cpu, mem := s.SampleSystem()
	assert.InDelta(t, 25.0, cpu, 1e-9)
	assert.InDelta(t, 75.0, mem, 1e-9)

	src.cpu = CPUTimes{Busy: 150, Total: 500}
	cpu, _ = s.SampleSystem()
	assert.InDelta(t, 50.0, cpu, 1e-9)

	// no time passed
	cpu, _ = s.SampleSystem()
	assert.Zero(t, cpu)
}

func TestSampleSystemDegrades(t *testing.T) {
	src := &fakeSource{
		cpuErr: errors.New().New(ErrCPUReadFailed),
		memErr: errors.New().New(ErrMemReadFailed),
	}
	s := NewSampler(src, logger.Nop())

	cpu, mem := s.SampleSystem()
	assert.Zero(t, cpu)
	assert.Zero(t, mem)

	src.memErr = nil
	src.mem = Memory{}
	_, mem = s.SampleSystem()
	assert.Zero(t, mem)
}

func TestSampleNetwork(t *testing.T) {
	now := time.Unix(0, 0)
	src := &fakeSource{net: NetCounters{RxBytes: 100, TxBytes: 100}}
	s := NewSampler(src, logger.Nop(), WithClock(func() time.Time { return now }))

	up, down := s.SampleNetwork()
	assert.Zero(t, up)
	assert.Zero(t, down)

	now = now.Add(time.Second)
	src.net = NetCounters{RxBytes: 100_000_100, TxBytes: 100}
	up, down = s.SampleNetwork()
	assert.Zero(t, up)
	assert.InDelta(t, 800.0, down, 1e-9)

	// clock anomaly
	up, down = s.SampleNetwork()
	assert.Zero(t, up)
	assert.Zero(t, down)
}

func TestSampleNetworkResetsAfterGap(t *testing.T) {
	now := time.Unix(0, 0)
	src := &fakeSource{net: NetCounters{RxBytes: 1000, TxBytes: 1000}}
	s := NewSampler(src, logger.Nop(), WithClock(func() time.Time { return now }))

	s.SampleNetwork()

	now = now.Add(time.Second)
	src.netErr = errors.New().New(ErrNetReadFailed)
	up, down := s.SampleNetwork()
	assert.Zero(t, up)
	assert.Zero(t, down)

	// first reading after the gap has no baseline
	now = now.Add(time.Second)
	src.netErr = nil
	src.net = NetCounters{RxBytes: 5000, TxBytes: 5000}
	up, down = s.SampleNetwork()
	assert.Zero(t, up)
	assert.Zero(t, down)

	now = now.Add(time.Second)
	src.net = NetCounters{RxBytes: 5000, TxBytes: 130_000}
	up, _ = s.SampleNetwork()
	assert.InDelta(t, 1.0, up, 1e-9)
}

func TestProcessWatcher(t *testing.T) {
	w := NewProcessWatcher(&fakeLister{names: []string{"systemd", "OBS", "bash"}})

	running, err := w.Running("obs")
	require.NoError(t, err)
	assert.True(t, running)

	running, err = w.Running("ffmpeg")
	require.NoError(t, err)
	assert.False(t, running)

	w = NewProcessWatcher(&fakeLister{err: errors.New().New(ErrProcListFailed)})
	_, err = w.Running("obs")
	assert.True(t, errors.HasCode(err, ErrProcListFailed))
}

func writeFixture(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func procFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFixture(t, root, "stat",
		"cpu  300 0 100 500 100 0 0 0 0 0\n"+
			"cpu0 300 0 100 500 100 0 0 0 0 0\n"+
			"btime 1700000000\n")
	writeFixture(t, root, "meminfo",
		"MemTotal:       1000 kB\n"+
			"MemFree:         100 kB\n"+
			"MemAvailable:    250 kB\n")
	writeFixture(t, root, "net/dev",
		"Inter-|   Receive                                                |  Transmit\n"+
			" face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed\n"+
			"    lo:    1000      10    0    0    0     0          0         0     1000      10    0    0    0     0       0          0\n"+
			"  eth0:    5000      50    0    0    0     0          0         0     2000      20    0    0    0     0       0          0\n")
	writeFixture(t, root, "4242/comm", "obs\n")
	writeFixture(t, root, "4243/comm", "bash\n")

	return root
}

func TestProcFS(t *testing.T) {
	p, err := NewProcFS(procFixture(t))
	require.NoError(t, err)

	cpu, err := p.CPUTimes()
	require.NoError(t, err)
	// USER_HZ ticks are reported in seconds
	assert.InDelta(t, 4.0, cpu.Busy, 1e-9)
	assert.InDelta(t, 10.0, cpu.Total, 1e-9)

	mem, err := p.Memory()
	require.NoError(t, err)
	assert.Equal(t, Memory{Total: 1000 * 1024, Available: 250 * 1024}, mem)

	net, err := p.NetCounters()
	require.NoError(t, err)
	assert.Equal(t, NetCounters{RxBytes: 6000, TxBytes: 3000}, net)

	names, err := p.ProcessNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"obs", "bash"}, names)
}

func TestNewProcFSMissing(t *testing.T) {
	_, err := NewProcFS(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrProcUnavailable))
}
