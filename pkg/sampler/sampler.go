//go:build linux

// Package sampler assembles per-node snapshots and global aggregates from
// pkg/system/procfs, matching the Sampler component of spec.md §4.1.
package sampler

import (
	"fmt"
	"time"

	"github.com/oracle/adaptivemmd/pkg/system/procfs"
	"github.com/oracle/adaptivemmd/pkg/types"
)

// Frag holds the cumulative fragmentation vector for one node: Frag[0] is
// total free pages, Frag[k] for k>0 is the sum of free pages strictly
// below order k (spec.md §3).
type Frag [procfs.MaxOrder]uint64

// NodeSnapshot is one NUMA node's view of the allocator, refreshed once
// per tick.
type NodeSnapshot struct {
	Node       int
	Managed    uint64
	MinWmark   uint64
	LowWmark   uint64
	HighWmark  uint64
	Frag       Frag
	SampledAt  time.Time
}

// Snapshot is the full per-tick view across every observed node, plus the
// global aggregates the actuator and leak detector need.
type Snapshot struct {
	Nodes []NodeSnapshot

	TotalFreePages  uint64
	TotalCachePages uint64 // inactive file + inactive anon
	TotalHugePages  uint64 // normalized to base pages
	PgstealKswapd   uint64
	MemInfo         procfs.MemInfo

	SampledAt time.Time
}

// Sampler owns the procfs paths and the host's page-size-dependent
// conversion factors, and exposes the refresh operations the control loop
// drives each tick.
type Sampler struct {
	Paths          procfs.Paths
	SkipDMAZone    bool
	BasePageSizeKB uint64
}

// New builds a Sampler with the conventional Linux paths and an
// architecture-derived DMA-zone policy.
func New() *Sampler {
	return &Sampler{
		Paths:          procfs.DefaultPaths(),
		SkipDMAZone:    procfs.SkipDMAZone(),
		BasePageSizeKB: 4,
	}
}

// Sample refreshes buddyinfo, zoneinfo, vmstat, and meminfo into one
// Snapshot. A failure to read any of the four files, or a malformed
// count in buddyinfo, abandons the whole refresh and returns the error
// (unparseable values in the other three files are skipped); the caller
// (pkg/daemon) logs the error and skips the rest of that tick.
func (s *Sampler) Sample(now time.Time) (Snapshot, error) {
	buddies, err := procfs.SampleBuddyInfo(s.Paths.BuddyInfo, s.SkipDMAZone)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sampler: buddyinfo: %w", err)
	}
	zones, err := procfs.SampleZoneInfo(s.Paths.ZoneInfo, s.SkipDMAZone)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sampler: zoneinfo: %w", err)
	}
	vms, err := procfs.SampleVMStat(s.Paths.VMStat)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sampler: vmstat: %w", err)
	}
	mi, err := procfs.SampleMemInfo(s.Paths.MemInfo)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sampler: meminfo: %w", err)
	}

	wmByNode := make(map[int]procfs.NodeWatermarks, len(zones))
	for _, z := range zones {
		wmByNode[z.Node] = z
	}

	snap := Snapshot{
		Nodes:           make([]NodeSnapshot, 0, len(buddies)),
		TotalCachePages: vms.InactiveFile + vms.InactiveAnon,
		PgstealKswapd:   vms.PgstealKswapd,
		MemInfo:         mi,
		SampledAt:       now,
	}

	for _, b := range buddies {
		wm := wmByNode[b.Node]
		ns := NodeSnapshot{
			Node:      b.Node,
			Managed:   wm.Managed,
			MinWmark:  wm.Min,
			LowWmark:  wm.Low,
			HighWmark: wm.High,
			SampledAt: now,
		}
		ns.Frag[0] = freePages(b.NrFree)
		var below uint64
		for order := 1; order < procfs.MaxOrder; order++ {
			below += b.NrFree[order-1] * (uint64(1) << uint(order-1))
			ns.Frag[order] = below
		}
		snap.Nodes = append(snap.Nodes, ns)
		snap.TotalFreePages += ns.Frag[0]
	}

	return snap, nil
}

// SampleHugepages refreshes the total hugepage count and reports the
// percentage change from the previous total, matching
// update_hugepages()'s return convention in adaptivemmd.c.
func (s *Sampler) SampleHugepages(prevTotal uint64) (total uint64, percentChange float64, err error) {
	total, err = procfs.SampleHugepages(s.Paths.HugepagesRoot, s.BasePageSizeKB)
	if err != nil {
		return prevTotal, 0, fmt.Errorf("sampler: hugepages: %w", err)
	}
	percentChange = types.Pages(total).PercentChange(types.Pages(prevTotal))
	return total, percentChange, nil
}

// SampleUnmappedPages runs the optional kpagecount/kpageflags diagnostic
// scan. Errors here are never fatal — the caller logs and proceeds with a
// zero value, since this figure never drives a decision (spec.md §4.6).
func (s *Sampler) SampleUnmappedPages(maxPFN uint64) (uint64, error) {
	return procfs.SampleUnmappedPages(s.Paths.KPageCount, s.Paths.KPageFlags, maxPFN)
}

// freePages converts per-order free block counts into a page count:
// nr_free[order] blocks of 2^order pages each.
func freePages(a [procfs.MaxOrder]uint64) uint64 {
	var sum uint64
	for order, v := range a {
		sum += v * (uint64(1) << uint(order))
	}
	return sum
}
