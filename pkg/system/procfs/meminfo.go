//go:build linux

package procfs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MemInfo holds every /proc/meminfo field the leak detector's accounting
// formula and its diagnostic diff consume, in kB as the kernel reports
// them. Unlisted fields are intentionally ignored.
type MemInfo struct {
	MemAvailable  uint64
	MemFree       uint64
	Buffers       uint64
	Cached        uint64
	SwapCached    uint64
	Unevictable   uint64
	Mlocked       uint64
	AnonPages     uint64
	Mapped        uint64
	Shmem         uint64
	KReclaimable  uint64
	Slab          uint64
	SUnreclaim    uint64
	KernelStack   uint64
	PageTables    uint64
	SecPageTables uint64
	VmallocUsed   uint64
	Cma           uint64
}

// SampleMemInfo parses /proc/meminfo.
func SampleMemInfo(path string) (MemInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return MemInfo{}, fmt.Errorf("procfs: open meminfo: %w", err)
	}
	defer f.Close()

	var mi MemInfo
	dst := map[string]*uint64{
		"MemAvailable":  &mi.MemAvailable,
		"MemFree":       &mi.MemFree,
		"Buffers":       &mi.Buffers,
		"Cached":        &mi.Cached,
		"SwapCached":    &mi.SwapCached,
		"Unevictable":   &mi.Unevictable,
		"Mlocked":       &mi.Mlocked,
		"AnonPages":     &mi.AnonPages,
		"Mapped":        &mi.Mapped,
		"Shmem":         &mi.Shmem,
		"KReclaimable":  &mi.KReclaimable,
		"Slab":          &mi.Slab,
		"SUnreclaim":    &mi.SUnreclaim,
		"KernelStack":   &mi.KernelStack,
		"PageTables":    &mi.PageTables,
		"SecPageTables": &mi.SecPageTables,
		"VmallocUsed":   &mi.VmallocUsed,
		"CmaTotal":      &mi.Cma,
	}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		ptr, ok := dst[strings.TrimSuffix(fields[0], ":")]
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		*ptr = v
	}
	if err := sc.Err(); err != nil {
		return MemInfo{}, fmt.Errorf("procfs: scan meminfo: %w", err)
	}
	return mi, nil
}
