package daemon

import (
	"fmt"
	"time"

	"github.com/oracle/adaptivemmd/pkg/system/procfs"
)

// Profile is the (max_wsf, max_compact_order, periodicity) triple
// selected by the AGGRESSIVENESS tunable (spec.md §3).
type Profile struct {
	MaxWSF          uint
	MaxCompactOrder int
	Periodicity     time.Duration
}

// ProfileFor resolves an aggressiveness level in {1,2,3} to its profile.
// The periodicity durations themselves aren't named by the spec beyond
// "short/medium/long"; 5s/10s/20s is this implementation's concrete
// choice, documented in DESIGN.md.
func ProfileFor(level int) (Profile, error) {
	switch level {
	case 1:
		return Profile{MaxWSF: 400, MaxCompactOrder: procfs.MaxOrder - 6, Periodicity: 20 * time.Second}, nil
	case 2:
		return Profile{MaxWSF: 700, MaxCompactOrder: procfs.MaxOrder - 4, Periodicity: 10 * time.Second}, nil
	case 3:
		return Profile{MaxWSF: 1000, MaxCompactOrder: procfs.MaxOrder - 2, Periodicity: 5 * time.Second}, nil
	default:
		return Profile{}, fmt.Errorf("daemon: aggressiveness must be 1, 2, or 3, got %d", level)
	}
}
