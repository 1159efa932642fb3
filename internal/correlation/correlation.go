// Package correlation computes the Pearson coefficient of two series
// from their window residuals and tests it for significance.
package correlation

import (
	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/window"
)

// smallestNormal is the smallest positive normal float32. A product of
// RMS values below it is treated as zero variance.
const smallestNormal = 0x1p-126

// Compute returns Σ a[i]*b[i] / (rmsA*rmsB), or invalid when either set
// is unfilled, the windows differ in length, the denominator vanishes or
// any residual product is invalid.
func Compute(a, b *window.ResidualSet) window.Value {
	if a.RMS.IsInvalid() || b.RMS.IsInvalid() || len(a.Residual) != len(b.Residual) {
		return window.Invalid()
	}

	div := a.RMS.MulPoisoning(b.RMS)
	if div.Abs().Value() < smallestNormal {
		return window.Invalid()
	}

	num := window.Invalid()
	for i := range a.Residual {
		p := a.Residual[i].MulPoisoning(b.Residual[i])
		if p.IsInvalid() {
			return window.Invalid()
		}
		num = num.AddWithSentinel(p)
	}
	return num.DivPoisoning(div)
}

// Pair holds the short and long window coefficients of one matrix cell.
type Pair struct {
	Short window.Value
	Long  window.Value
}

// InvalidPair is the value of a cell that has not been computed.
func InvalidPair() Pair {
	return Pair{Short: window.Invalid(), Long: window.Invalid()}
}

// PairSize is the binary size of a Pair.
const PairSize = 8

func (p *Pair) RecordSize() int { return PairSize }

// EncodeRecord writes short then long in binary mode. Text mode lists
// long then short.
func (p *Pair) EncodeRecord(e *codec.Encoder) {
	if e.Mode() == codec.Text {
		codec.PutReal(e, p.Long)
		codec.PutReal(e, p.Short)
	} else {
		codec.PutReal(e, p.Short)
		codec.PutReal(e, p.Long)
	}
	e.EndRecord()
}

func (p *Pair) DecodeRecord(d *codec.Decoder) {
	if d.Mode() == codec.Text {
		p.Long = codec.GetReal[float32](d)
		p.Short = codec.GetReal[float32](d)
	} else {
		p.Short = codec.GetReal[float32](d)
		p.Long = codec.GetReal[float32](d)
	}
}

// Correlator fills both coefficients of a Pair. It holds no state and
// may be shared between goroutines.
type Correlator struct{}

func (Correlator) Compute(out *Pair, a, b *window.Statistics) {
	out.Short = Compute(&a.Short, &b.Short)
	out.Long = Compute(&a.Long, &b.Long)
}
