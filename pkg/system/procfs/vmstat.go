//go:build linux

package procfs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// VMStat holds the reclaim and cache counters the rate tracker and global
// aggregates need from /proc/vmstat.
type VMStat struct {
	PgstealKswapd uint64 // sum of every pgsteal_kswapd* counter
	InactiveFile  uint64
	InactiveAnon  uint64
}

// SampleVMStat parses /proc/vmstat.
func SampleVMStat(path string) (VMStat, error) {
	f, err := os.Open(path)
	if err != nil {
		return VMStat{}, fmt.Errorf("procfs: open vmstat: %w", err)
	}
	defer f.Close()

	var vs VMStat
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(fields[0], "pgsteal_kswapd"):
			vs.PgstealKswapd += v
		case fields[0] == "nr_inactive_file":
			vs.InactiveFile = v
		case fields[0] == "nr_inactive_anon":
			vs.InactiveAnon = v
		}
	}
	if err := sc.Err(); err != nil {
		return VMStat{}, fmt.Errorf("procfs: scan vmstat: %w", err)
	}
	return vs, nil
}
