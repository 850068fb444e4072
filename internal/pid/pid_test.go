package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"codeberg.org/mutker/telemy/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "telemy.pid")

	require.NoError(t, Write(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	// our own PID does not block a rewrite
	require.NoError(t, Write(path))

	require.NoError(t, Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, Remove(path))
}

func TestWriteAlreadyRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemy.pid")
	// the parent of the test binary is alive for the duration of the test
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0o600))

	err := Write(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
}

func TestWriteStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemy.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o600))

	require.NoError(t, Write(path))
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(os.TempDir(), "telemy.pid"), DefaultPath())
}
