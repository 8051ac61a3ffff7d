// Package daemon owns the control loop's per-node state and sequences
// C1 through C6 once per tick, grounded on the Collector-driven main
// loop in cmd/consumption/main.go and on adaptivemmd()'s tick sequence
// in original_source/adaptivemm/src/adaptivemmd.c.
package daemon

import (
	"time"

	"github.com/oracle/adaptivemmd/pkg/predictor"
	"github.com/oracle/adaptivemmd/pkg/ratetracker"
	"github.com/oracle/adaptivemmd/pkg/system/procfs"
)

// NodeState is the regression windows and rate bookkeeping the control
// loop owns for one NUMA node — never touched by any other goroutine.
type NodeState struct {
	Windows [procfs.MaxOrder]predictor.Window
	Rates   ratetracker.Tracker

	CompactionRequested bool
}

// processStart anchors nowMS; time.Time.Sub uses the monotonic clock
// reading when both values carry one.
var processStart = time.Now()

// nowMS converts a time.Time to the monotonic millisecond timestamp the
// regression windows are keyed on.
func nowMS(t time.Time) int64 {
	return t.Sub(processStart).Milliseconds()
}
