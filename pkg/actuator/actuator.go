// Package actuator turns a predictor.Signal into the two concrete system
// writes adaptivemmd can make: a new global watermark_scale_factor and a
// per-node compaction trigger. Grounded on rescale_watermarks() and
// rescale_maxwsf() in original_source/adaptivemm/src/adaptivemmd.c.
package actuator

import (
	"fmt"

	"github.com/oracle/adaptivemmd/pkg/predictor"
	"github.com/oracle/adaptivemmd/pkg/system/procfs"
)

const (
	minWSF = 10

	// safetyMarginPct is the fraction of total free memory that must
	// remain above the rescaled low watermark for a candidate to be
	// accepted (adaptivemmd's 2% headroom check).
	safetyMarginPct = 0.02
)

// State is everything one tick's watermark-scale decision needs,
// aggregated across every NUMA node.
type State struct {
	TotalManaged uint64
	TotalHuge    uint64
	TotalFree    uint64
	TotalCache   uint64 // inactive file + inactive anon

	Low, High, Min uint64 // representative node watermarks for the safety envelope

	CurrentWSF uint
	MaxWSF     uint // ceiling: the aggressiveness profile's max_wsf, rescaled by MyWSF

	Reclaim bool // predictor.SignalReclaim was set for at least one node this tick
}

// Candidate computes the next watermark_scale_factor, if any. write is
// false when every reclaimable byte has already been accounted for
// (total_reclaimable == 0), when the candidate doesn't strictly improve
// on the current value, or when even a +10% retry fails the safety
// envelope.
func Candidate(s State) (wsf uint, write bool) {
	totalReclaimable := s.TotalManaged - s.TotalHuge
	if s.TotalManaged < s.TotalHuge || totalReclaimable == 0 {
		return s.CurrentWSF, false
	}

	fracFree := s.TotalFree * 1000 / totalReclaimable

	var candidate uint
	if s.Reclaim {
		candidate = scaleUp(s, fracFree)
	} else {
		candidate = scaleDown(s, fracFree)
	}

	ceiling := uint(1000)
	if s.MaxWSF > 0 && s.MaxWSF < ceiling {
		ceiling = s.MaxWSF
	}
	candidate = clamp(candidate, minWSF, ceiling)

	if candidate == s.CurrentWSF {
		return s.CurrentWSF, false
	}

	if !withinSafetyEnvelope(s, candidate) {
		retry := scaleByPct(s.CurrentWSF, 10)
		if retry == s.CurrentWSF || !withinSafetyEnvelope(s, retry) {
			return s.CurrentWSF, false
		}
		return retry, true
	}

	return candidate, true
}

// scaleDown computes a candidate for ticks where the predictor issued no
// reclaim signal: the allocator has headroom, so watermark_scale_factor
// is allowed to relax back down.
func scaleDown(s State, fracFree uint64) uint {
	var candidate uint
	if s.TotalFree < (s.Low+s.High)/2 {
		candidate = scaleByPct(s.CurrentWSF, -10)
	} else {
		candidate = uint((1000-fracFree)/10) * 10
	}
	if candidate >= s.CurrentWSF {
		// must strictly decrease; otherwise fall back to the gentle relax
		candidate = scaleByPct(s.CurrentWSF, -10)
	}
	return candidate
}

// scaleUp computes a candidate for ticks where the predictor wants
// reclaim encouraged sooner: watermark_scale_factor is driven to an
// absolute target derived from fracFree, with aggression proportional to
// how starved of free pages the node is and how much reclaimable cache
// remains to convert. If the computed target doesn't move the value at
// all, the current setting isn't working and gets a flat +10% nudge.
func scaleUp(s State, fracFree uint64) uint {
	var candidate uint
	switch {
	case s.TotalFree < s.High:
		full := s.TotalCache > s.High-s.TotalFree
		candidate = absoluteTarget(fracFree, full)
	case s.TotalCache > s.TotalFree-s.High:
		candidate = absoluteTarget(fracFree, false) // half-aggressive
	default:
		pct := 10.0
		if s.CurrentWSF <= 100 {
			pct = 20.0
		}
		candidate = scaleByPct(s.CurrentWSF, pct)
	}

	if candidate == s.CurrentWSF {
		candidate = scaleByPct(s.CurrentWSF, 10)
	}
	return candidate
}

// absoluteTarget mirrors rescale_watermarks()'s scale-up target: the
// watermark_scale_factor that would make fracFree's complement the new
// setting, rounded down to the nearest ten. Half aggression halves the
// target by doubling the denominator rather than halving the result.
func absoluteTarget(fracFree uint64, full bool) uint {
	denom := uint64(10)
	if !full {
		denom = 20
	}
	return uint((1000-fracFree)/denom) * 10
}

func scaleByPct(wsf uint, pct float64) uint {
	delta := float64(wsf) * pct / 100
	if delta < 0 {
		d := uint(-delta)
		if d >= wsf {
			return 0
		}
		return wsf - d
	}
	return wsf + uint(delta)
}

func clamp(v, lo, hi uint) uint {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// withinSafetyEnvelope reproduces adaptivemmd's final check before a
// watermark_scale_factor write: the low watermark rescaled to the
// candidate value must still leave at least safetyMarginPct of total
// free memory as slack once cache is counted in.
func withinSafetyEnvelope(s State, candidate uint) bool {
	if s.CurrentWSF == 0 {
		return true
	}
	newLow := s.Min + (s.Low-s.Min)*uint64(candidate)/uint64(s.CurrentWSF)
	margin := uint64(safetyMarginPct * float64(s.TotalFree))
	return s.TotalFree+s.TotalCache > newLow+margin
}

// MyWSF rescales MaxWSF by the reclaimable fraction of total managed
// memory: the system-wide ceiling the control loop recomputes every tick
// unless max_gap is pinned (rescale_maxwsf()).
func MyWSF(maxWSF uint, totalReclaimable, totalManaged uint64) uint {
	if totalManaged == 0 {
		return maxWSF
	}
	return uint(uint64(maxWSF) * totalReclaimable / totalManaged)
}

// Actuator owns the edge-triggered compaction bookkeeping and forwards
// writes to procfs; in dry-run mode it skips the kernel writes but still
// tracks what it would have written (pkg/daemon logs the candidates).
type Actuator struct {
	Paths  procfs.Paths
	DryRun bool

	lastWritten     uint
	haveLastWritten bool
	compacting      map[int]bool
}

// New returns an Actuator ready to drive writes against paths.
func New(paths procfs.Paths, dryRun bool) *Actuator {
	return &Actuator{Paths: paths, DryRun: dryRun, compacting: make(map[int]bool)}
}

// CheckPermissions performs the single fatal-at-startup access check.
func (a *Actuator) CheckPermissions() error {
	return procfs.CheckWatermarkScaleAccess(a.Paths.WatermarkScale)
}

// ApplyWatermarkScale writes wsf if it differs from the value this
// Actuator last wrote (idempotent: a value already on disk from a prior
// run isn't re-read, only what this process itself wrote is tracked).
func (a *Actuator) ApplyWatermarkScale(wsf uint) error {
	if a.haveLastWritten && a.lastWritten == wsf {
		return nil
	}
	if a.DryRun {
		a.lastWritten, a.haveLastWritten = wsf, true
		return nil
	}
	if err := procfs.WriteWatermarkScaleFactor(a.Paths.WatermarkScale, wsf); err != nil {
		return err
	}
	a.lastWritten, a.haveLastWritten = wsf, true
	return nil
}

// Compact triggers compaction on node if the predictor asked for it and
// compaction was not already requested on the previous tick for that
// node (edge-triggered: adaptivemmd never re-fires compact while a prior
// request may still be in flight).
func (a *Actuator) Compact(node int, sig predictor.Signal) error {
	want := sig&predictor.SignalCompact != 0
	was := a.compacting[node]
	a.compacting[node] = want

	if !want || was {
		return nil
	}
	if a.DryRun {
		return nil
	}
	path := fmt.Sprintf(a.Paths.NodeCompactFmt, node)
	return procfs.TriggerCompaction(path)
}
