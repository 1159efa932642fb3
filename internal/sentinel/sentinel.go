// Package sentinel provides numbers that carry a reserved "invalid" bit
// pattern. Missing data becomes the sentinel and flows through arithmetic
// instead of raising an error:
//
//   - addition and subtraction treat invalid as the identity element
//   - multiplication and division touching invalid yield invalid
//
// Floating point values use NaN as the sentinel; integers use -1.
package sentinel

// Float is the set of primitives backing a Real.
type Float interface {
	~float32 | ~float64
}

// Integer is the set of primitives backing an Int.
type Integer interface {
	~int | ~int32 | ~int64
}

// Additive is the arithmetic contract shared by Real and Int.
type Additive[S any] interface {
	IsValid() bool
	IsInvalid() bool

	// AddWithSentinel returns the receiver unchanged when x is invalid, x
	// when the receiver is invalid, and the ordinary sum otherwise.
	AddWithSentinel(x S) S

	// SubWithSentinel returns the receiver unchanged when x is invalid,
	// 0-x when the receiver is invalid, and the ordinary difference
	// otherwise.
	SubWithSentinel(x S) S
}

// Poisoning is the multiplicative half of the contract: any invalid
// operand makes the result invalid.
type Poisoning[S any] interface {
	MulPoisoning(x S) S
}

// Number is implemented by every sentinel-aware numeric type.
type Number[S any] interface {
	Additive[S]
	Poisoning[S]
}

var (
	_ Number[Real[float32]] = Real[float32]{}
	_ Number[Real[float64]] = Real[float64]{}
	_ Number[Int[int32]]    = Int[int32]{}
	_ Number[Int[int64]]    = Int[int64]{}
)

// Sum folds values with AddWithSentinel starting from an invalid
// accumulator. An empty or all-invalid input yields invalid.
func Sum[S Additive[S]](invalid S, values ...S) S {
	acc := invalid
	for _, v := range values {
		acc = acc.AddWithSentinel(v)
	}
	return acc
}

// TriangularNumber returns 1 + 2 + ... + n, the number of cells in the
// strict lower triangle of an (n+1)x(n+1) matrix.
func TriangularNumber(n int) int {
	if n <= 0 {
		return 0
	}
	return n * (n + 1) / 2
}
