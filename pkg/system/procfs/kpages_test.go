//go:build linux

package procfs

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeKPageFile(t *testing.T, name string, entries []uint64) string {
	t.Helper()
	buf := make([]byte, len(entries)*kpageEntrySize)
	for i, v := range entries {
		binary.LittleEndian.PutUint64(buf[i*kpageEntrySize:], v)
	}
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, buf, 0o644))
	return p
}

func TestSampleUnmappedPages(t *testing.T) {
	counts := []uint64{0, 1, 0, 0, 0}
	flags := []uint64{0, 0, kpfSlab, kpfHuge, kpfNoPage}
	// PFN0: count=0, no excluded flags -> unmapped
	// PFN1: count=1 -> mapped, skipped
	// PFN2: count=0 but SLAB -> excluded
	// PFN3: count=0 but HUGE -> excluded
	// PFN4: count=0 but NOPAGE -> excluded

	countPath := writeKPageFile(t, "kpagecount", counts)
	flagsPath := writeKPageFile(t, "kpageflags", flags)

	n, err := SampleUnmappedPages(countPath, flagsPath, uint64(len(counts)))
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)
}

func TestSampleUnmappedPages_EmptyFiles(t *testing.T) {
	countPath := writeKPageFile(t, "kpagecount", nil)
	flagsPath := writeKPageFile(t, "kpageflags", nil)

	n, err := SampleUnmappedPages(countPath, flagsPath, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(0), n)
}
