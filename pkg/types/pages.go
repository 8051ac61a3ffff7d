package types

import "fmt"

// Pages is a uint64 wrapper representing a count of base (4K-class) memory
// pages, the common currency between the sampler, predictor, and actuator.
type Pages uint64

// Humanized renders the page count as a human-readable byte size, assuming
// the base page size supplied by the caller (bytes per page).
func (p Pages) Humanized(pageSize int) string {
	b := uint64(p) * uint64(pageSize)
	const unit = 1024
	v := float64(b)
	switch {
	case b >= 1<<40:
		return fmt.Sprintf("%.2f TB", v/(1<<40))
	case b >= 1<<30:
		return fmt.Sprintf("%.2f GB", v/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.2f MB", v/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.2f KB", v/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// KB converts a page count into kilobytes given the base page size.
func (p Pages) KB(pageSize int) float64 { return float64(uint64(p)*uint64(pageSize)) / 1024 }

// PercentChange returns the signed percentage change from prev to p, using
// the adaptivemmd convention: a 0→positive transition reports as a full
// 100% increase rather than an undefined division, and a positive→0
// transition reports as a flat 100% decrease.
func (p Pages) PercentChange(prev Pages) float64 {
	switch {
	case prev == 0 && p == 0:
		return 0
	case prev == 0:
		return 100
	case p == 0:
		return -100
	default:
		return (float64(p) - float64(prev)) / float64(prev) * 100
	}
}
