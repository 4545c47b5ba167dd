// File: bf16/bf16.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Brain floating point storage type for resource grid samples.
// A BF16 keeps the sign, the 8-bit exponent and the upper 7 mantissa bits of a float32,
// halving grid memory while keeping float32 dynamic range.

package bf16

import "math"

// BF16 is a 16-bit brain floating point number.
type BF16 uint16

// CBF16 is a complex number with BF16 real and imaginary parts.
type CBF16 struct {
	Real BF16
	Imag BF16
}

// FromFloat32 rounds a float32 to the nearest BF16, ties to even.
func FromFloat32(f float32) BF16 {
	bits := math.Float32bits(f)
	if bits&0x7fffffff > 0x7f800000 {
		// Quiet NaN, keep the sign.
		return BF16(bits>>16 | 0x0040)
	}
	bits += 0x7fff + (bits>>16)&1
	return BF16(bits >> 16)
}

// Float32 widens the value to float32. The conversion is exact.
func (b BF16) Float32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// FromComplex64 rounds both parts of c.
func FromComplex64(c complex64) CBF16 {
	return CBF16{Real: FromFloat32(real(c)), Imag: FromFloat32(imag(c))}
}

// Complex64 widens the value to complex64.
func (c CBF16) Complex64() complex64 {
	return complex(c.Real.Float32(), c.Imag.Float32())
}

// IsZero reports whether both parts are +0.
func (c CBF16) IsZero() bool {
	return c.Real == 0 && c.Imag == 0
}

// Round returns c after a round trip through CBF16, i.e. the value a grid stores for c.
func Round(c complex64) complex64 {
	return FromComplex64(c).Complex64()
}

// FromComplex64Slice converts src into dst. Both slices must have the same length.
func FromComplex64Slice(dst []CBF16, src []complex64) {
	if len(dst) != len(src) {
		panic("bf16: destination and source lengths differ")
	}
	for i, v := range src {
		dst[i] = CBF16{Real: FromFloat32(real(v)), Imag: FromFloat32(imag(v))}
	}
}

// ToComplex64Slice converts src into dst. Both slices must have the same length.
func ToComplex64Slice(dst []complex64, src []CBF16) {
	if len(dst) != len(src) {
		panic("bf16: destination and source lengths differ")
	}
	for i, v := range src {
		dst[i] = complex(
			math.Float32frombits(uint32(v.Real)<<16),
			math.Float32frombits(uint32(v.Imag)<<16),
		)
	}
}
