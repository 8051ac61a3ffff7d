//go:build linux

package procfs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NodeWatermarks holds accumulated zone watermarks for one NUMA node.
type NodeWatermarks struct {
	Node    int
	Min     uint64
	Low     uint64
	High    uint64
	Managed uint64
}

// SampleZoneInfo parses /proc/zoneinfo, accumulating min/low/high/managed
// across every zone of each node (skipping the DMA zone when skipDMAZone
// holds), following the same zone filter as SampleBuddyInfo so the two
// aggregates stay consistent with one another.
func SampleZoneInfo(path string, skipDMAZone bool) ([]NodeWatermarks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("procfs: open zoneinfo: %w", err)
	}
	defer f.Close()

	byNode := map[int]*NodeWatermarks{}
	var order []int

	var cur *NodeWatermarks
	skipping := false

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "Node" {
			node, err := strconv.Atoi(strings.TrimSuffix(fields[1], ","))
			if err != nil {
				cur = nil
				continue
			}
			zone := fields[3]
			skipping = skipDMAZone && strings.HasPrefix(zone, "DMA")

			nw, ok := byNode[node]
			if !ok {
				nw = &NodeWatermarks{Node: node}
				byNode[node] = nw
				order = append(order, node)
			}
			cur = nw
			continue
		}
		if cur == nil || skipping {
			continue
		}
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "min":
			cur.Min += v
		case "low":
			cur.Low += v
		case "high":
			cur.High += v
		case "managed":
			cur.Managed += v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("procfs: scan zoneinfo: %w", err)
	}

	out := make([]NodeWatermarks, 0, len(order))
	for _, n := range order {
		out = append(out, *byNode[n])
	}
	return out, nil
}
