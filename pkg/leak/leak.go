// Package leak implements the slow-memory-leak heuristic: accounted
// memory is subtracted from total managed memory, and the growing
// residual is tracked across ticks with a hysteresis state machine.
// Grounded on check_memleak() in
// original_source/adaptivemm/src/adaptivemmd.c.
package leak

import "github.com/oracle/adaptivemmd/pkg/system/procfs"

// Result is one tick's leak-check outcome.
type Result struct {
	Unaccounted uint64
	SuddenLeak  bool
	SlowLeak    bool
}

// Detector owns the growth_count hysteresis and the baseline residual
// established at startup.
type Detector struct {
	baseMem     uint64
	havePrev    bool
	prevUnacct  uint64
	growthCount int
}

// New establishes base_mem from the first sample: totalManaged minus
// accounted memory, so the very first tick reports zero unaccounted
// memory rather than whatever slack the kernel happened to be using at
// startup.
func New(totalManaged, acctPages uint64) *Detector {
	d := &Detector{}
	if totalManaged > acctPages {
		d.baseMem = totalManaged - acctPages
	}
	return d
}

// Acct sums the accounted-for memory categories (spec.md §4.6), in the
// same page units as totalManaged, including the hugepage total already
// normalized to base pages.
func Acct(mi procfs.MemInfo, hugePages uint64, basePageSizeKB uint64) uint64 {
	if basePageSizeKB == 0 {
		basePageSizeKB = 4
	}
	kb := mi.AnonPages + mi.Buffers + mi.Cached + mi.Cma + mi.KReclaimable +
		mi.KernelStack + mi.PageTables + mi.SwapCached + mi.SUnreclaim +
		mi.SecPageTables + mi.Unevictable + mi.MemFree
	return kb/basePageSizeKB + hugePages
}

// Check folds in one tick's totals. If the residual shrinks below the
// current baseline, base_mem is lowered to match and no detection runs
// this tick — base_mem only ever falls, matching adaptivemmd's refusal
// to let a legitimate memory-use decrease look like "leak recovered".
func (d *Detector) Check(totalManaged, acctPages uint64) Result {
	if totalManaged < acctPages+d.baseMem {
		d.baseMem = 0
		if totalManaged > acctPages {
			d.baseMem = totalManaged - acctPages
		}
		return Result{}
	}

	unacct := totalManaged - acctPages - d.baseMem

	var res Result
	switch {
	case d.havePrev && unacct > 2*d.prevUnacct && d.growthCount > 3:
		res.SuddenLeak = true
		d.growthCount = 0
	case d.havePrev && float64(unacct) > float64(d.prevUnacct)*1.10:
		d.growthCount++
		if d.growthCount == 10 {
			res.SlowLeak = true
			d.growthCount = 0
		}
	case d.havePrev && float64(unacct) < float64(d.prevUnacct)*0.90:
		d.growthCount = 0
	}

	d.prevUnacct = unacct
	d.havePrev = true
	res.Unaccounted = unacct
	return res
}

// MeminfoDiff reports which tracked fields moved by more than 10% since
// prev, the diagnostic dump adaptivemmd emits alongside a leak alert.
func MeminfoDiff(prev, cur procfs.MemInfo) []string {
	var changed []string
	check := func(name string, a, b uint64) {
		if changedByMoreThan10Pct(a, b) {
			changed = append(changed, name)
		}
	}
	check("MemAvailable", prev.MemAvailable, cur.MemAvailable)
	check("MemFree", prev.MemFree, cur.MemFree)
	check("Buffers", prev.Buffers, cur.Buffers)
	check("Cached", prev.Cached, cur.Cached)
	check("SwapCached", prev.SwapCached, cur.SwapCached)
	check("Unevictable", prev.Unevictable, cur.Unevictable)
	check("Mlocked", prev.Mlocked, cur.Mlocked)
	check("AnonPages", prev.AnonPages, cur.AnonPages)
	check("Mapped", prev.Mapped, cur.Mapped)
	check("Shmem", prev.Shmem, cur.Shmem)
	check("KReclaimable", prev.KReclaimable, cur.KReclaimable)
	check("Slab", prev.Slab, cur.Slab)
	check("SUnreclaim", prev.SUnreclaim, cur.SUnreclaim)
	check("KernelStack", prev.KernelStack, cur.KernelStack)
	check("PageTables", prev.PageTables, cur.PageTables)
	check("SecPageTables", prev.SecPageTables, cur.SecPageTables)
	check("VmallocUsed", prev.VmallocUsed, cur.VmallocUsed)
	check("Cma", prev.Cma, cur.Cma)
	return changed
}

func changedByMoreThan10Pct(a, b uint64) bool {
	if a == 0 {
		return b != 0
	}
	diff := int64(b) - int64(a)
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(a) > 0.10
}
