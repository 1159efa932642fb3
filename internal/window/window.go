// Package window maintains rolling statistics over the last N valid
// samples of a series: the running mean, the residual of every sample
// from that mean and the root of the summed squared residuals.
package window

import (
	"fmt"

	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/sentinel"
)

// Value is the sample type used throughout the statistics files.
type Value = sentinel.Real[float32]

// Invalid is the "no data" Value.
func Invalid() Value { return sentinel.InvalidReal[float32]() }

// ResidualSet is the per-window output of an Accumulator. Either every
// field is valid or the set has never been filled.
type ResidualSet struct {
	Mean     Value
	Residual []Value
	RMS      Value
}

// NewResidualSet returns an all-invalid set for a window of n samples.
func NewResidualSet(n int) ResidualSet {
	rs := ResidualSet{Residual: make([]Value, n)}
	rs.Clear()
	return rs
}

// Clear marks every field invalid.
func (rs *ResidualSet) Clear() {
	rs.Mean = Invalid()
	rs.RMS = Invalid()
	for i := range rs.Residual {
		rs.Residual[i] = Invalid()
	}
}

// N is the window length.
func (rs *ResidualSet) N() int { return len(rs.Residual) }

// IsValid reports whether the set has been filled by a full window.
func (rs *ResidualSet) IsValid() bool { return rs.RMS.IsValid() }

// RecordSize is mean, N residuals and RMS.
func (rs *ResidualSet) RecordSize() int {
	return (len(rs.Residual) + 2) * 4
}

func (rs *ResidualSet) EncodeRecord(e *codec.Encoder) {
	codec.PutReal(e, rs.Mean)
	for _, r := range rs.Residual {
		codec.PutReal(e, r)
	}
	codec.PutReal(e, rs.RMS)
}

func (rs *ResidualSet) DecodeRecord(d *codec.Decoder) {
	rs.Mean = codec.GetReal[float32](d)
	for i := range rs.Residual {
		rs.Residual[i] = codec.GetReal[float32](d)
	}
	rs.RMS = codec.GetReal[float32](d)
}

// Accumulator keeps the last N valid samples in arrival order together
// with their incrementally maintained mean. It is not safe for concurrent
// use; give each series its own.
type Accumulator struct {
	n       int
	portion Value
	mean    Value

	// ring buffer of the most recent samples, oldest at head
	buf   []Value
	head  int
	count int
}

// NewAccumulator creates an accumulator for a window of n samples.
func NewAccumulator(n int) (*Accumulator, error) {
	if n < 1 {
		return nil, fmt.Errorf("window length must be positive, got %d", n)
	}
	return &Accumulator{
		n:       n,
		portion: sentinel.NewReal(1 / float32(n)),
		mean:    Invalid(),
		buf:     make([]Value, n),
	}, nil
}

func (a *Accumulator) N() int { return a.n }

// Initialized reports whether exactly N samples have been seen.
func (a *Accumulator) Initialized() bool { return a.count == a.n }

// Mean is the running mean; invalid until the first sample.
func (a *Accumulator) Mean() Value { return a.mean }

// Update feeds one sample. Invalid samples are ignored. Once the window
// is full, out receives the mean, the residual of every buffered sample
// (oldest first) and the RMS; before that out is left untouched.
func (a *Accumulator) Update(value Value, out *ResidualSet) {
	if value.IsInvalid() {
		return
	}

	a.mean = a.mean.AddWithSentinel(value.MulPoisoning(a.portion))
	if a.count < a.n {
		a.buf[(a.head+a.count)%a.n] = value
		a.count++
	} else {
		oldest := a.buf[a.head]
		a.buf[a.head] = value
		a.head = (a.head + 1) % a.n
		a.mean = a.mean.SubWithSentinel(oldest.MulPoisoning(a.portion))
	}

	if a.count != a.n {
		return
	}

	if len(out.Residual) != a.n {
		out.Residual = make([]Value, a.n)
	}
	out.Mean = a.mean
	rms := Invalid()
	for i := 0; i < a.n; i++ {
		r := a.buf[(a.head+i)%a.n].SubWithSentinel(out.Mean)
		out.Residual[i] = r
		rms = rms.AddWithSentinel(r.MulPoisoning(r))
	}
	out.RMS = rms.Sqrt()
}

// Reset empties the buffer and invalidates the mean.
func (a *Accumulator) Reset() {
	a.head = 0
	a.count = 0
	a.mean = Invalid()
}
