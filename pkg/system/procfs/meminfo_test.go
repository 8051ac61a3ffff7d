//go:build linux

package procfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleMemInfo(t *testing.T) {
	content := `MemTotal:       16000000 kB
MemFree:         2000000 kB
MemAvailable:    8000000 kB
Buffers:          100000 kB
Cached:          500000 kB
SwapCached:            0 kB
AnonPages:       1000000 kB
Mapped:           200000 kB
Shmem:             50000 kB
KReclaimable:     150000 kB
Slab:             300000 kB
SUnreclaim:       100000 kB
KernelStack:       20000 kB
PageTables:        30000 kB
SecPageTables:         0 kB
Unevictable:        5000 kB
Mlocked:               0 kB
VmallocUsed:       10000 kB
CmaTotal:          40000 kB
`
	path := writeFixture(t, "meminfo", content)

	mi, err := SampleMemInfo(path)
	require.NoError(t, err)
	require.Equal(t, uint64(2000000), mi.MemFree)
	require.Equal(t, uint64(8000000), mi.MemAvailable)
	require.Equal(t, uint64(1000000), mi.AnonPages)
	require.Equal(t, uint64(150000), mi.KReclaimable)
	require.Equal(t, uint64(40000), mi.Cma)
}
