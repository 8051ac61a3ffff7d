package negdentry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oracle/adaptivemmd/pkg/system/procfs"
	"github.com/stretchr/testify/require"
)

func TestValue_ClampedRange(t *testing.T) {
	require.Equal(t, 1, Value(1000, 0, 0))
	require.Equal(t, 100, Value(1000, 0, 1000))
	require.Equal(t, 1, Value(0, 0, 50))
	require.Equal(t, 5, Value(1000, 0, 5))
}

func TestValue_HugeReducesReclaimableShare(t *testing.T) {
	v1 := Value(1000, 0, 50)
	v2 := Value(1000, 900, 50)
	require.Greater(t, v1, v2)
}

func TestSizer_ShouldResize(t *testing.T) {
	var s Sizer
	require.True(t, s.ShouldResize(1000)) // first call always resizes
	require.False(t, s.ShouldResize(1020))
	require.True(t, s.ShouldResize(1100)) // >= 5% move from 1020
}

func TestSizer_Apply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "negative-dentry-limit")
	require.NoError(t, os.WriteFile(path, []byte("1"), 0o644))

	s := Sizer{Paths: procfs.Paths{NegDentryLimit: path}, Pct: 50}
	require.NoError(t, s.Apply(1000, 0))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "50", string(b))
}
