//go:build linux

package procfs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MaxOrder is the number of buddy-allocator orders this daemon observes.
const MaxOrder = 11

// NodeBuddy holds per-order free page counts for one NUMA node, summed
// across every zone adaptivemmd.c's filter keeps.
type NodeBuddy struct {
	Node   int
	NrFree [MaxOrder]uint64
}

// SampleBuddyInfo parses /proc/buddyinfo, summing nr_free[order] across
// every zone of each node (skipping the DMA zone when skipDMAZone holds).
// A malformed line returns an error for the whole call; callers treat that
// as a parse-transient failure and keep the previous sample (spec.md §4.1).
func SampleBuddyInfo(path string, skipDMAZone bool) ([]NodeBuddy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("procfs: open buddyinfo: %w", err)
	}
	defer f.Close()

	byNode := map[int]*NodeBuddy{}
	var order []int

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] != "Node" {
			continue
		}
		node, err := strconv.Atoi(strings.TrimSuffix(fields[1], ","))
		if err != nil {
			continue
		}
		zone := fields[3]
		if skipDMAZone && strings.HasPrefix(zone, "DMA") {
			continue
		}

		nb, ok := byNode[node]
		if !ok {
			nb = &NodeBuddy{Node: node}
			byNode[node] = nb
			order = append(order, node)
		}
		for i, s := range fields[4:] {
			if i >= MaxOrder {
				break
			}
			v, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("procfs: buddyinfo node %d order %d: %w", node, i, err)
			}
			nb.NrFree[i] += v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("procfs: scan buddyinfo: %w", err)
	}

	out := make([]NodeBuddy, 0, len(order))
	for _, n := range order {
		out = append(out, *byNode[n])
	}
	return out, nil
}
