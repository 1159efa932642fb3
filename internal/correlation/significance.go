package correlation

import (
	"math"

	"github.com/soltixdb/correlator/internal/window"
)

// minSignificantR is the smallest |r| that is significant at the 5% level
// for a sample of n points (Taylor, An Introduction to Error Analysis,
// Table C).
var minSignificantR = map[int]float64{
	10: 0.8,
	50: 0.4,
}

// MinSignificantR returns the threshold for n samples. Only tabulated
// sample sizes are supported.
func MinSignificantR(n int) (float64, bool) {
	r, ok := minSignificantR[n]
	return r, ok
}

// Correlated reports whether r is valid and |r| >= minR.
func Correlated(r window.Value, minR float64) bool {
	return r.IsValid() && minR <= math.Abs(float64(r.Value()))
}

// Significant applies the threshold for n samples. Untabulated n is never
// significant.
func Significant(r window.Value, n int) bool {
	minR, ok := MinSignificantR(n)
	return ok && Correlated(r, minR)
}

// Transitive reports whether x~y and y~z imply x~z, which holds when
// rxy² + ryz² > 1.
func Transitive(rxy, ryz window.Value) bool {
	if rxy.IsInvalid() || ryz.IsInvalid() {
		return false
	}
	x, y := float64(rxy.Value()), float64(ryz.Value())
	return x*x+y*y > 1
}

func (p *Pair) ShortCorrelated(sz window.Sizes) bool { return Significant(p.Short, sz.Short) }
func (p *Pair) LongCorrelated(sz window.Sizes) bool  { return Significant(p.Long, sz.Long) }

// ShortTransitive tests the short coefficients of p (x~y) and q (y~z).
func (p *Pair) ShortTransitive(q *Pair) bool { return Transitive(p.Short, q.Short) }
func (p *Pair) LongTransitive(q *Pair) bool  { return Transitive(p.Long, q.Long) }
