//go:build linux

package procfs

import (
	"bytes"

	"golang.org/x/sys/unix"
)

// SkipDMAZone reports whether the DMA zone should be excluded from buddy
// and zone aggregates, matching adaptivemmd.c's uname(2) check: true on
// x86_64/i686/i386, where the DMA zone is reserved for legacy device I/O
// and its tiny, near-static free count only adds noise to the aggregates.
func SkipDMAZone() bool {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return false
	}
	machine := string(bytes.TrimRight(uts.Machine[:], "\x00"))
	switch machine {
	case "x86_64", "i686", "i386":
		return true
	default:
		return false
	}
}
