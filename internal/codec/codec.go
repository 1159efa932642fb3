// Package codec serializes fixed-layout records in two interchangeable
// modes. Binary mode writes the little-endian primitives back to back so
// every record of a type has the same size and can be located with a
// single seek. Text mode writes whitespace separated decimal tokens, one
// record per line, for inspection and diffing.
package codec

import (
	"fmt"
	"strings"

	"github.com/soltixdb/correlator/internal/compression"
)

// Mode selects the on-disk representation
type Mode uint8

const (
	Binary Mode = iota
	Text
)

// ParseMode maps the storage.format config value to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "binary":
		return Binary, nil
	case "text":
		return Text, nil
	default:
		return Binary, fmt.Errorf("unknown record format: %q", s)
	}
}

func (m Mode) String() string {
	if m == Text {
		return "text"
	}
	return "binary"
}

// Options carries the representation chosen for one run.
type Options struct {
	Mode        Mode
	Compression compression.Algorithm
}

// ParseOptions builds Options from the storage config strings.
func ParseOptions(format, algo string) (Options, error) {
	mode, err := ParseMode(format)
	if err != nil {
		return Options{}, err
	}
	a, err := compression.ParseAlgorithm(algo)
	if err != nil {
		return Options{}, err
	}
	return Options{Mode: mode, Compression: a}, nil
}

// Record is a value that knows its own field layout.
type Record interface {
	EncodeRecord(e *Encoder)
	DecodeRecord(d *Decoder)
}

// SizedRecord additionally reports its fixed binary size in bytes.
type SizedRecord interface {
	Record
	RecordSize() int
}

// RecordPtr constrains P to be *T implementing Record, letting bulk
// helpers work on slices of values rather than slices of pointers.
type RecordPtr[T any] interface {
	*T
	Record
}

// SizedRecordPtr is RecordPtr for sized records.
type SizedRecordPtr[T any] interface {
	*T
	SizedRecord
}
