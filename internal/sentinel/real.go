package sentinel

import (
	"encoding/binary"
	"math"
	"strconv"
	"unsafe"
)

// Real is a floating point value whose invalid state is NaN.
// The zero value is a valid 0; use InvalidReal for "no data".
type Real[T Float] struct {
	v T
}

// NewReal wraps v. A NaN argument produces an invalid Real.
func NewReal[T Float](v T) Real[T] {
	return Real[T]{v: v}
}

// InvalidReal returns the NaN sentinel.
func InvalidReal[T Float]() Real[T] {
	return Real[T]{v: T(math.NaN())}
}

// IsInvalidFloat reports whether v is the NaN sentinel.
func IsInvalidFloat[T Float](v T) bool {
	return v != v
}

// IsValidFloat reports whether v is not the NaN sentinel.
func IsValidFloat[T Float](v T) bool {
	return v == v
}

// Value returns the raw primitive, NaN when invalid.
func (r Real[T]) Value() T { return r.v }

func (r Real[T]) IsValid() bool   { return IsValidFloat(r.v) }
func (r Real[T]) IsInvalid() bool { return IsInvalidFloat(r.v) }

func (r Real[T]) AddWithSentinel(x Real[T]) Real[T] {
	switch {
	case x.IsInvalid():
		return r
	case r.IsInvalid():
		return x
	}
	return Real[T]{v: r.v + x.v}
}

func (r Real[T]) SubWithSentinel(x Real[T]) Real[T] {
	switch {
	case x.IsInvalid():
		return r
	case r.IsInvalid():
		return Real[T]{v: 0 - x.v}
	}
	return Real[T]{v: r.v - x.v}
}

// MulPoisoning is the raw product; NaN on either side yields NaN.
func (r Real[T]) MulPoisoning(x Real[T]) Real[T] {
	return Real[T]{v: r.v * x.v}
}

// DivPoisoning is the raw quotient; NaN on either side yields NaN.
func (r Real[T]) DivPoisoning(x Real[T]) Real[T] {
	return Real[T]{v: r.v / x.v}
}

// Sqrt returns the square root, invalid stays invalid.
func (r Real[T]) Sqrt() Real[T] {
	return Real[T]{v: T(math.Sqrt(float64(r.v)))}
}

// Abs returns the absolute value, invalid stays invalid.
func (r Real[T]) Abs() Real[T] {
	return Real[T]{v: T(math.Abs(float64(r.v)))}
}

func (r Real[T]) String() string {
	return string(r.AppendText(nil))
}

// Width is the binary size of the primitive in bytes.
func (r Real[T]) Width() int {
	return int(unsafe.Sizeof(r.v))
}

// AppendBinary appends the little-endian bit pattern of the primitive.
func (r Real[T]) AppendBinary(dst []byte) []byte {
	if r.Width() == 4 {
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(r.v)))
	}
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(float64(r.v)))
}

// AppendText appends the shortest decimal form that round-trips through
// ParseReal. Invalid values are written as "nan".
func (r Real[T]) AppendText(dst []byte) []byte {
	if r.IsInvalid() {
		return append(dst, "nan"...)
	}
	return strconv.AppendFloat(dst, float64(r.v), 'g', -1, r.Width()*8)
}

// DecodeReal reads a Real from the first Width bytes of b.
func DecodeReal[T Float](b []byte) Real[T] {
	var r Real[T]
	if r.Width() == 4 {
		r.v = T(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	} else {
		r.v = T(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	}
	return r
}

// ParseReal parses a decimal token. A token that does not parse yields
// the invalid sentinel rather than an error.
func ParseReal[T Float](token string) Real[T] {
	var r Real[T]
	f, err := strconv.ParseFloat(token, r.Width()*8)
	if err != nil {
		return InvalidReal[T]()
	}
	r.v = T(f)
	return r
}
