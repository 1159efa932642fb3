package sentinel

import (
	"math"
	"unsafe"
)

// FloatToInt rounds f half-to-even. NaN, infinities and values that do
// not fit in I map to the integer sentinel.
func FloatToInt[I Integer, F Float](f F) Int[I] {
	if IsInvalidFloat(f) || math.IsInf(float64(f), 0) {
		return InvalidInt[I]()
	}

	rounded := math.RoundToEven(float64(f))

	var zero I
	bits := int(unsafe.Sizeof(zero)) * 8
	limit := math.Ldexp(1, bits-1)
	if rounded < -limit || rounded >= limit {
		return InvalidInt[I]()
	}
	return Int[I]{v: I(rounded)}
}
