// Package predictor implements the per-node, per-order least-squares
// trend estimator and exhaustion/fragmentation model (spec.md §4.2),
// grounded on original_source/adaptivemm/src/predict.c.
package predictor

// Lookback is the regression window length (spec.md §3).
const Lookback = 8

// Window is a circular least-squares window over Lookback (t, y) points:
// an array plus a cursor and a latch, no dynamic allocation, matching
// spec.md §9's "Circular window" design note.
type Window struct {
	t     [Lookback]int64
	y     [Lookback]int64
	next  int
	count int
	ready bool
}

// Insert overwrites the oldest slot with (t, y), advances the cursor, and
// — once the window has filled for the first time — fits a line through
// it. ready is false until then (spec.md §4.2 steps 1-2).
func (w *Window) Insert(t, y int64) (m, c int64, ready bool) {
	w.t[w.next] = t
	w.y[w.next] = y
	w.next = (w.next + 1) % Lookback
	if w.count < Lookback {
		w.count++
	}
	if w.count < Lookback {
		return 0, 0, false
	}
	w.ready = true
	return w.fit()
}

// Ready reports whether the window has been filled at least once.
func (w *Window) Ready() bool { return w.ready }

// Origin returns the oldest timestamp currently held in the window (the
// next slot due to be overwritten). Predict anchors "now" to order 0's
// Origin for the whole prediction pass (spec.md §9).
func (w *Window) Origin() int64 { return w.t[w.next] }

// fit performs ordinary least squares over the window. The t axis is
// zero-anchored at the oldest point before summation — this keeps Σt²
// within 64-bit range for the nominal Lookback=8 — and the slope is
// scaled by 100 to preserve fractional steepness in integer arithmetic.
// The window's own t values are never mutated, so there is nothing to
// restore afterwards.
func (w *Window) fit() (m, c int64, ready bool) {
	origin := w.t[w.next] // oldest sample is the slot about to be overwritten next
	var sigmaX, sigmaY, sigmaXY, sigmaXX int64
	for i := 0; i < Lookback; i++ {
		x := w.t[i] - origin
		sigmaX += x
		sigmaY += w.y[i]
		sigmaXY += x * w.y[i]
		sigmaXX += x * x
	}
	denom := int64(Lookback)*sigmaXX - sigmaX*sigmaX
	if denom == 0 {
		return 0, 0, false
	}
	m = ((int64(Lookback)*sigmaXY - sigmaX*sigmaY) * 100) / denom
	c = (sigmaY - (m*sigmaX)/100) / int64(Lookback)
	return m, c, true
}
