// Package negdentry sizes the negative-dentry cache limit from the
// reclaimable fraction of memory, grounded on update_neg_dentry() in
// original_source/adaptivemm/src/adaptivemmd.c.
package negdentry

import "github.com/oracle/adaptivemmd/pkg/system/procfs"

// Value computes the negative-dentry-limit candidate: pct scaled by the
// reclaimable share of total managed memory, clamped to [1,100] since 0
// disables the limit entirely and values above 100 have no defined
// meaning to the kernel.
func Value(totalManaged, totalHuge uint64, pct int) int {
	if totalManaged == 0 || totalManaged < totalHuge {
		return 1
	}
	reclaimable := totalManaged - totalHuge
	v := int(reclaimable * uint64(pct) / totalManaged)
	switch {
	case v < 1:
		return 1
	case v > 100:
		return 100
	default:
		return v
	}
}

// Sizer tracks the previous hugepage total so the control loop can
// decide when a hugepage-count change is large enough (>=5%, spec.md
// §4.5) to warrant resizing the negative-dentry limit.
type Sizer struct {
	Paths procfs.Paths
	Pct   int

	havePrev bool
	prevHuge uint64
}

// ShouldResize reports whether the hugepage total moved by at least 5%
// since the last call, or this is the first call (the control loop also
// always resizes once at startup).
func (s *Sizer) ShouldResize(currentHuge uint64) bool {
	if !s.havePrev {
		s.havePrev = true
		s.prevHuge = currentHuge
		return true
	}
	prev := s.prevHuge
	s.prevHuge = currentHuge
	if prev == 0 {
		return currentHuge != 0
	}
	delta := currentHuge - prev
	if currentHuge < prev {
		delta = prev - currentHuge
	}
	return float64(delta)/float64(prev) >= 0.05
}

// Apply writes the computed negative-dentry-limit value.
func (s *Sizer) Apply(totalManaged, totalHuge uint64) error {
	v := Value(totalManaged, totalHuge, s.Pct)
	return procfs.WriteNegDentryLimit(s.Paths.NegDentryLimit, v)
}
