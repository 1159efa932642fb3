package window

import (
	"fmt"

	"github.com/soltixdb/correlator/internal/codec"
)

// Sizes names the two window lengths tracked for every series.
type Sizes struct {
	Short int
	Long  int
}

// Statistics is the per-series, per-day record consumed by the
// correlator: the day's raw value plus both residual sets.
type Statistics struct {
	Value Value
	Short ResidualSet
	Long  ResidualSet
}

// NewStatistics returns an all-invalid record for the given sizes.
func NewStatistics(sz Sizes) Statistics {
	return Statistics{
		Value: Invalid(),
		Short: NewResidualSet(sz.Short),
		Long:  NewResidualSet(sz.Long),
	}
}

// Initializer returns a function preparing empty records for the codec.
func Initializer(sz Sizes) func(*Statistics) {
	return func(s *Statistics) { *s = NewStatistics(sz) }
}

func (s *Statistics) IsValid() bool { return s.Value.IsValid() }

// RecordSize is value, long set and short set.
func (s *Statistics) RecordSize() int {
	return 4 + s.Short.RecordSize() + s.Long.RecordSize()
}

func (s *Statistics) EncodeRecord(e *codec.Encoder) {
	codec.PutReal(e, s.Value)
	s.Long.EncodeRecord(e)
	s.Short.EncodeRecord(e)
	e.EndRecord()
}

func (s *Statistics) DecodeRecord(d *codec.Decoder) {
	s.Value = codec.GetReal[float32](d)
	s.Long.DecodeRecord(d)
	s.Short.DecodeRecord(d)
}

// Indexed pairs a Statistics record with its day number.
type Indexed struct {
	Day   int32
	Stats Statistics
}

func IndexedInitializer(sz Sizes) func(*Indexed) {
	return func(ix *Indexed) {
		ix.Day = -1
		ix.Stats = NewStatistics(sz)
	}
}

func (ix *Indexed) RecordSize() int { return 4 + ix.Stats.RecordSize() }

func (ix *Indexed) EncodeRecord(e *codec.Encoder) {
	e.Int32(ix.Day)
	ix.Stats.EncodeRecord(e)
}

func (ix *Indexed) DecodeRecord(d *codec.Decoder) {
	ix.Day = d.Int32()
	ix.Stats.DecodeRecord(d)
}

// Accumulators tracks the short and long windows of one series. The two
// windows hold independent state.
type Accumulators struct {
	short *Accumulator
	long  *Accumulator
}

func NewAccumulators(sz Sizes) (*Accumulators, error) {
	short, err := NewAccumulator(sz.Short)
	if err != nil {
		return nil, fmt.Errorf("short window: %w", err)
	}
	long, err := NewAccumulator(sz.Long)
	if err != nil {
		return nil, fmt.Errorf("long window: %w", err)
	}
	return &Accumulators{short: short, long: long}, nil
}

func (a *Accumulators) Sizes() Sizes {
	return Sizes{Short: a.short.N(), Long: a.long.N()}
}

// Update stores value in s and, when valid, feeds it to both windows.
func (a *Accumulators) Update(value Value, s *Statistics) {
	s.Value = value
	if value.IsInvalid() {
		return
	}
	a.short.Update(value, &s.Short)
	a.long.Update(value, &s.Long)
}

func (a *Accumulators) Reset() {
	a.short.Reset()
	a.long.Reset()
}

// Initialized reports whether both windows are full.
func (a *Accumulators) Initialized() bool {
	return a.short.Initialized() && a.long.Initialized()
}
