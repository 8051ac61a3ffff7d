package predictor

import (
	"math"

	"github.com/oracle/adaptivemmd/pkg/system/procfs"
)

// Signal is a bitwise union of the recommendations a single Predict call
// can return for a node (spec.md §4.2).
type Signal uint8

const (
	SignalReclaim Signal = 1 << iota
	SignalCompact
	SignalLowerWmarks
)

// Fit is one window's latest slope/intercept.
type Fit struct {
	M     int64
	C     int64
	Ready bool
}

// Node is everything Predict needs for one NUMA node on one tick. Fits
// and Origins are indexed by buddy order (0..MaxOrder-1); only orders
// 0..MaxCompactOrder are consulted.
type Node struct {
	Fits    [procfs.MaxOrder]Fit
	Origins [procfs.MaxOrder]int64
	Frag    [procfs.MaxOrder]uint64

	Free      uint64
	HighWmark uint64

	ReclaimRate    float64 // pages/ms; 0 = not yet established
	CompactionRate float64 // pages/ms; 0 = not yet established

	MaxCompactOrder int
	PeriodicityMS   int64
	NowMS           int64 // current monotonic time, milliseconds
}

// Predict reproduces predict() from
// original_source/adaptivemm/src/predict.c: an order-0 slope/reclaim
// check, then a per-order fragmentation scan from MaxCompactOrder down to
// 1 that stops at the first order recommending compaction.
//
// current_time is computed once per call, anchored to order 0's window
// origin, and reused for every order — the resolution to the "which
// window's origin" open question in spec.md §9.
func Predict(n Node) Signal {
	var sig Signal

	f0 := n.Fits[0]
	if f0.Ready {
		switch {
		case f0.M >= 0:
			sig |= SignalLowerWmarks
		case n.ReclaimRate == 0:
			// not yet established; emit nothing this tick
		case n.Free <= n.HighWmark:
			sig |= SignalReclaim
		default:
			absM0 := math.Abs(float64(f0.M))
			if absM0 > 0 {
				timeToHigh := float64(n.Free-n.HighWmark) / absM0
				timeToCatchUp := float64(n.Free-n.HighWmark) / n.ReclaimRate
				if timeToHigh <= 3*timeToCatchUp {
					sig |= SignalReclaim
				}
			}
		}
	}

	currentTime := n.NowMS - n.Origins[0]

	for order := n.MaxCompactOrder; order > 0; order-- {
		fo := n.Fits[order]
		if !fo.Ready || fo.M >= 0 || n.CompactionRate == 0 || fo.M == f0.M {
			continue
		}

		xCross := (f0.C - fo.C) * 100 / (fo.M - f0.M)
		demand := fo.M * xCross

		if xCross < currentTime {
			higherReservoir := int64(n.Frag[procfs.MaxOrder-1]) - int64(n.Frag[order])
			if higherReservoir < demand {
				sig |= SignalCompact
				return sig
			}
			continue
		}

		forwardWindow := int64(5*Lookback) * n.PeriodicityMS
		remaining := xCross - currentTime
		if remaining <= forwardWindow {
			adjacentReservoir := int64(n.Frag[order+1]) - int64(n.Frag[order])
			timeToCatchUp := float64(adjacentReservoir) / n.CompactionRate
			if timeToCatchUp >= float64(remaining) {
				sig |= SignalCompact
				return sig
			}
		}
	}

	return sig
}
