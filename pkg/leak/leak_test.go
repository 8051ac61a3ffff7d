package leak

import (
	"testing"

	"github.com/oracle/adaptivemmd/pkg/system/procfs"
	"github.com/stretchr/testify/require"
)

func TestDetector_FirstTick_ZeroUnaccounted(t *testing.T) {
	d := New(1000, 800)
	res := d.Check(1000, 800)
	require.Equal(t, uint64(0), res.Unaccounted)
	require.False(t, res.SuddenLeak)
	require.False(t, res.SlowLeak)
}

func TestDetector_SlowLeak_After11TicksOfGrowth(t *testing.T) {
	d := &Detector{baseMem: 100}

	acct := uint64(800) // totalManaged - acct - baseMem = 1000-800-100 = 100
	res := d.Check(1000, acct)
	require.Equal(t, uint64(100), res.Unaccounted)

	unacct := uint64(100)
	var last Result
	for i := 0; i < 11; i++ {
		unacct = unacct * 112 / 100 // +12% each tick
		acctNow := 1000 - 100 - unacct
		last = d.Check(1000, acctNow)
		if last.SlowLeak {
			break
		}
	}
	require.True(t, last.SlowLeak)
}

func TestDetector_BaseMemLowersWhenResidualShrinks(t *testing.T) {
	d := New(1000, 700) // baseMem = 300
	res := d.Check(500, 300) // residual 200 < baseMem 300
	require.Equal(t, uint64(200), d.baseMem)
	require.False(t, res.SuddenLeak)
	require.False(t, res.SlowLeak)
}

func TestDetector_GrowthResetsOnDrop(t *testing.T) {
	d := &Detector{baseMem: 0}
	d.Check(1000, 0)   // unacct=1000, prev established
	d.Check(2000, 0)   // unacct=2000 > 1.10*1000: growthCount=1
	require.Equal(t, 1, d.growthCount)
	d.Check(100, 0) // unacct=100 < 0.90*2000: reset
	require.Equal(t, 0, d.growthCount)
}

func TestAcct_SumsCategories(t *testing.T) {
	mi := procfs.MemInfo{
		AnonPages: 4, Buffers: 4, Cached: 4, Cma: 0, KReclaimable: 0,
		KernelStack: 0, PageTables: 0, SwapCached: 0, SUnreclaim: 0,
		SecPageTables: 0, Unevictable: 0, MemFree: 4,
	}
	require.Equal(t, uint64(4), Acct(mi, 0, 4)) // 16kB / 4kB page size = 4 pages
	require.Equal(t, uint64(7), Acct(mi, 3, 4)) // + 3 hugepages (already in base pages)
}

func TestMeminfoDiff_FlagsLargeMoves(t *testing.T) {
	prev := procfs.MemInfo{MemFree: 1000, Cached: 500}
	cur := procfs.MemInfo{MemFree: 1200, Cached: 510}
	changed := MeminfoDiff(prev, cur)
	require.Contains(t, changed, "MemFree")
	require.NotContains(t, changed, "Cached")
}
