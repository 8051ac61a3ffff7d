package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptivemmd.lock")
	lf, err := Acquire(path)
	require.NoError(t, err)
	require.FileExists(t, path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), string(b))

	require.NoError(t, lf.Release())
	require.NoFileExists(t, path)
}

func TestAcquire_AlreadyRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptivemmd.lock")
	lf, err := Acquire(path)
	require.NoError(t, err)
	defer lf.Release()

	_, err = Acquire(path)
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestAcquire_StaleLockIsRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptivemmd.lock")
	require.NoError(t, os.WriteFile(path, []byte("999999999"), 0o644))

	lf, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lf.Release())
}

func TestRelease_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adaptivemmd.lock")
	lf, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lf.Release())
	require.NoError(t, lf.Release())
}
