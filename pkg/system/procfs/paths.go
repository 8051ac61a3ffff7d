//go:build linux

// Package procfs reads and writes the kernel pseudo-files the daemon
// observes and actuates: /proc/buddyinfo, /proc/zoneinfo, /proc/vmstat,
// /proc/meminfo, the hugepages sysfs tree, and the watermark/compaction/
// negative-dentry control files.
package procfs

// Paths holds every pseudo-file location this package touches. Tests
// construct a Paths pointed at fixture directories instead of the real
// /proc and /sys trees, the way a prometheus/procfs-style library would,
// since /proc/buddyinfo's per-node layout can't be relied on to look the
// same on every host.
type Paths struct {
	BuddyInfo      string
	ZoneInfo       string
	VMStat         string
	MemInfo        string
	HugepagesRoot  string
	KPageCount     string
	KPageFlags     string
	WatermarkScale string
	NodeCompactFmt string // fmt.Sprintf pattern; node number substituted
	NegDentryLimit string
}

// DefaultPaths returns the conventional Linux locations from spec.md §6.
func DefaultPaths() Paths {
	return Paths{
		BuddyInfo:      "/proc/buddyinfo",
		ZoneInfo:       "/proc/zoneinfo",
		VMStat:         "/proc/vmstat",
		MemInfo:        "/proc/meminfo",
		HugepagesRoot:  "/sys/kernel/mm/hugepages",
		KPageCount:     "/proc/kpagecount",
		KPageFlags:     "/proc/kpageflags",
		WatermarkScale: "/proc/sys/vm/watermark_scale_factor",
		NodeCompactFmt: "/sys/devices/system/node/node%d/compact",
		NegDentryLimit: "/proc/sys/fs/negative-dentry-limit",
	}
}
