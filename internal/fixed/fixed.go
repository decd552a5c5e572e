// Package fixed implements the deterministic fixed-point scalar used
// throughout the simulation. No float64/float32 may appear on the
// simulation path; this package is the sole arithmetic substrate for it.
package fixed

import "errors"

// Scale is the compile-time fractional denominator, a power of two so that
// division by it is a shift. D = 32 gives 1/32 pixel (and 1/32 unit)
// precision, which is enough headroom for sub-pixel velocity accumulation
// without overflowing the widened multiply below.
const Scale = 32

// shift is log2(Scale).
const shift = 5

// ErrDivideByZero is returned by Div when the divisor is zero. The
// simulation must surface this through the VM's error channel rather than
// silently producing an undefined value.
var ErrDivideByZero = errors.New("fixed: division by zero")

// Fixed is a signed fixed-point number with denominator Scale, stored as a
// single raw integer: value == raw / Scale.
type Fixed int64

// Zero is the additive identity.
const Zero Fixed = 0

// One is the multiplicative identity (1.0).
const One Fixed = Scale

// FromInt lifts an integer into Fixed.
func FromInt(n int) Fixed {
	return Fixed(int64(n) * Scale)
}

// FromRaw constructs a Fixed directly from its raw internal representation.
func FromRaw(raw int64) Fixed {
	return Fixed(raw)
}

// FromRational builds a Fixed from a numerator/denominator pair as used at
// the configuration/snapshot boundary, normalizing to the internal Scale.
// A zero denominator is treated as 1 (callers that need the
// divide-by-zero error for a config value must check Den != 0
// themselves — this constructor is used for trusted, already-validated
// pairs loaded from a config blob).
func FromRational(num, den int64) Fixed {
	if den == 0 {
		den = 1
	}
	// Scale before dividing so the fractional part of num/den is kept;
	// num*Scale is computed in int64.
	return Fixed(num * Scale / den)
}

// Raw returns the internal raw representation.
func (f Fixed) Raw() int64 { return int64(f) }

// ToRational returns the (numerator, denominator) pair used at the
// configuration/snapshot boundary.
func (f Fixed) ToRational() (num, den int64) {
	return int64(f), Scale
}

// Int truncates toward zero and returns the integer part.
func (f Fixed) Int() int {
	return int(int64(f) / Scale)
}

// Add returns f + other. Addition cannot overflow int64 for any values this
// simulation produces in practice; no widening is needed.
func (f Fixed) Add(other Fixed) Fixed {
	return f + other
}

// Sub returns f - other.
func (f Fixed) Sub(other Fixed) Fixed {
	return f - other
}

// Mul returns f * other, rounding toward zero. The product of the two raw
// values is computed in int64 with no wider intermediate, then divided by
// Scale; it is exact only while that raw product fits in an int64.
func (f Fixed) Mul(other Fixed) Fixed {
	// int64*int64 can overflow; the simulation's value ranges (pixels,
	// velocities, multipliers) stay well within 32 bits in practice, so a
	// plain int64 widen-by-multiply is sufficient headroom here.
	raw := int64(f) * int64(other)
	return Fixed(raw / Scale)
}

// Div returns f / other. Returns ErrDivideByZero if other is zero instead
// of producing an undefined value.
func (f Fixed) Div(other Fixed) (Fixed, error) {
	if other == 0 {
		return 0, ErrDivideByZero
	}
	raw := int64(f) * Scale
	return Fixed(raw / int64(other)), nil
}

// Negate returns -f.
func (f Fixed) Negate() Fixed {
	return -f
}

// Abs returns the absolute value of f.
func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// IsZero reports whether f is exactly zero.
func (f Fixed) IsZero() bool {
	return f == 0
}

// Sign returns -1, 0, or +1 according to the sign of f. Deterministic and
// total for every value including Zero.
func (f Fixed) Sign() int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

// Cmp returns -1, 0, or 1 if f is less than, equal to, or greater than
// other.
func (f Fixed) Cmp(other Fixed) int {
	switch {
	case f < other:
		return -1
	case f > other:
		return 1
	default:
		return 0
	}
}

// Min returns the lesser of a and b.
func Min(a, b Fixed) Fixed {
	if a < b {
		return a
	}
	return b
}

// Max returns the greater of a and b.
func Max(a, b Fixed) Fixed {
	if a > b {
		return a
	}
	return b
}

// SaturatingInt converts f to an int clamped to [lo, hi], used by the VM's
// TO_BYTE conversion and by byte-register property writes.
func (f Fixed) SaturatingInt(lo, hi int) int {
	v := f.Int()
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp returns f clamped to [lo, hi].
func (f Fixed) Clamp(lo, hi Fixed) Fixed {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
