package sentinel

import (
	"encoding/binary"
	"strconv"
	"unsafe"
)

// InvalidInteger is the sentinel bit pattern of every Int.
const InvalidInteger = -1

// Int is an integer value whose invalid state is -1.
type Int[T Integer] struct {
	v T
}

func NewInt[T Integer](v T) Int[T] {
	return Int[T]{v: v}
}

// InvalidInt returns the -1 sentinel.
func InvalidInt[T Integer]() Int[T] {
	return Int[T]{v: InvalidInteger}
}

func (i Int[T]) Value() T { return i.v }

func (i Int[T]) IsValid() bool   { return i.v != InvalidInteger }
func (i Int[T]) IsInvalid() bool { return i.v == InvalidInteger }

func (i Int[T]) AddWithSentinel(x Int[T]) Int[T] {
	switch {
	case x.IsInvalid():
		return i
	case i.IsInvalid():
		return x
	}
	return Int[T]{v: i.v + x.v}
}

func (i Int[T]) SubWithSentinel(x Int[T]) Int[T] {
	switch {
	case x.IsInvalid():
		return i
	case i.IsInvalid():
		return Int[T]{v: 0 - x.v}
	}
	return Int[T]{v: i.v - x.v}
}

// MulPoisoning returns invalid when either operand is invalid.
func (i Int[T]) MulPoisoning(x Int[T]) Int[T] {
	if i.IsInvalid() || x.IsInvalid() {
		return InvalidInt[T]()
	}
	return Int[T]{v: i.v * x.v}
}

// DivPoisoning returns invalid when either operand is invalid or x is zero.
func (i Int[T]) DivPoisoning(x Int[T]) Int[T] {
	if i.IsInvalid() || x.IsInvalid() || x.v == 0 {
		return InvalidInt[T]()
	}
	return Int[T]{v: i.v / x.v}
}

func (i Int[T]) String() string {
	return strconv.FormatInt(int64(i.v), 10)
}

func (i Int[T]) Width() int {
	return int(unsafe.Sizeof(i.v))
}

// AppendBinary appends the little-endian two's complement form.
// Widths other than 4 are stored as 8 bytes.
func (i Int[T]) AppendBinary(dst []byte) []byte {
	if i.Width() == 4 {
		return binary.LittleEndian.AppendUint32(dst, uint32(int32(i.v)))
	}
	return binary.LittleEndian.AppendUint64(dst, uint64(int64(i.v)))
}

func (i Int[T]) AppendText(dst []byte) []byte {
	return strconv.AppendInt(dst, int64(i.v), 10)
}

func DecodeInt[T Integer](b []byte) Int[T] {
	var i Int[T]
	if i.Width() == 4 {
		i.v = T(int32(binary.LittleEndian.Uint32(b)))
	} else {
		i.v = T(int64(binary.LittleEndian.Uint64(b)))
	}
	return i
}

// ParseInt parses a decimal token, falling back to the sentinel.
func ParseInt[T Integer](token string) Int[T] {
	var i Int[T]
	n, err := strconv.ParseInt(token, 10, i.Width()*8)
	if err != nil {
		return InvalidInt[T]()
	}
	i.v = T(n)
	return i
}
