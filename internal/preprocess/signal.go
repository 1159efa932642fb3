package preprocess

import (
	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/window"
)

// Sample is one stored point of a signal file
type Sample struct {
	Day   int32
	Value window.Value
}

func (s *Sample) RecordSize() int { return 8 }

func (s *Sample) EncodeRecord(e *codec.Encoder) {
	e.Int32(s.Day)
	codec.PutReal(e, s.Value)
	e.EndRecord()
}

func (s *Sample) DecodeRecord(d *codec.Decoder) {
	s.Day = d.Int32()
	s.Value = codec.GetReal[float32](d)
}

// Signal is a series indexed by day number. Days without data hold the
// invalid value.
type Signal struct {
	Samples []window.Value
}

// NewSignal returns an all-invalid signal covering interval days
func NewSignal(interval int) *Signal {
	s := &Signal{Samples: make([]window.Value, interval)}
	for i := range s.Samples {
		s.Samples[i] = window.Invalid()
	}
	return s
}

// At returns the sample for day, invalid when day is out of range
func (s *Signal) At(day int) window.Value {
	if day < 0 || day >= len(s.Samples) {
		return window.Invalid()
	}
	return s.Samples[day]
}

// Set stores v at day and reports whether day was in range
func (s *Signal) Set(day int, v window.Value) bool {
	if day < 0 || day >= len(s.Samples) {
		return false
	}
	s.Samples[day] = v
	return true
}

// Valid counts the days holding data
func (s *Signal) Valid() int {
	n := 0
	for _, v := range s.Samples {
		if v.IsValid() {
			n++
		}
	}
	return n
}

// Save writes the valid samples in day order
func (s *Signal) Save(path string, opts codec.Options) error {
	records := make([]Sample, 0, len(s.Samples))
	for day, v := range s.Samples {
		if v.IsValid() {
			records = append(records, Sample{Day: int32(day), Value: v})
		}
	}
	return codec.SaveFile(path, opts, records)
}

// LoadSignal reads a signal file. Samples for days outside the interval
// are dropped.
func LoadSignal(path string, opts codec.Options, interval int) (*Signal, error) {
	var records []Sample
	if err := codec.LoadFile(path, opts, &records, nil); err != nil {
		return nil, err
	}

	s := NewSignal(interval)
	for _, r := range records {
		s.Set(int(r.Day), r.Value)
	}
	return s, nil
}
