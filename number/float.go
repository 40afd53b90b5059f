// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package number

import (
	"math"
	"math/bits"
	"strconv"
)

//go:generate go run gentable.go

// Parameters of the float64 format.
const (
	sigBits     = 52   // explicit significand bits
	expBias     = 1023 // exponent bias
	minExponent = -1023
	infPower    = 0x7ff

	minPow10 = -342 // below this, every significand rounds to zero
	maxPow10 = 308  // above this, every significand overflows

	// Range of decimal exponents for which a product exactly halfway between
	// two floats is possible, and round-half-even must be applied.
	minRoundEven = -4
	maxRoundEven = 23
)

// pow10Float holds the powers of ten that are exact in a float64.
var pow10Float = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11,
	1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

// parseFloat converts sig × 10^exp to the nearest float64. The trunc flag
// reports that nonzero digits were dropped from sig. The raw text of the
// number (without sign) is used only if the fast algorithms are inconclusive.
// The pos and end offsets locate the number for error reporting.
func parseFloat(sig uint64, exp int, neg, trunc bool, raw []byte, pos, end int) (Number, int, error) {
	if sig>>sigBits == 0 && exp >= -22 && exp <= 22+15 {
		if f, ok := exactFloat(exp, sig); ok {
			return fromFloat(withSign(f, neg)), end, nil
		}
	}
	if !trunc && exp > -308+1 && exp < 308-20 {
		if b, ok := fixedPointFloat(exp, sig); ok {
			return fromFloat(withSign(math.Float64frombits(b), neg)), end, nil
		}
	}

	// When digits were truncated, the true value lies between sig and sig+1,
	// and the result is only safe if both round to the same float.
	fp := eiselLemire(exp, sig)
	if trunc && fp.e >= 0 && fp != eiselLemire(exp, sig+1) {
		fp.e = -1
	}

	var f float64
	if fp.e < 0 {
		f = exactDecimal(raw)
	} else {
		f = math.Float64frombits(fp.f | uint64(fp.e)<<sigBits)
	}
	f = withSign(f, neg)
	if math.IsInf(f, 0) {
		return Number{}, pos, ErrFloatMustBeFinite
	}
	return fromFloat(f), end, nil
}

func withSign(f float64, neg bool) float64 {
	if neg {
		return -f
	}
	return f
}

// exactFloat computes sig × 10^exp when both operands are exactly
// representable, so that a single rounding produces the correct result.
func exactFloat(exp int, sig uint64) (float64, bool) {
	d := float64(sig)
	switch {
	case exp > 22:
		// Move the excess exponent into the significand, provided the result
		// remains exact.
		d *= pow10Float[exp-22]
		if d < -1e15 || d > 1e15 {
			return 0, false
		}
		return d * pow10Float[22], true
	case exp > 0:
		return d * pow10Float[exp], true
	default:
		return d / pow10Float[-exp], true
	}
}

// fixedPointFloat computes the bits of sig × 10^exp10 by multiplying the
// normalized significand against the 128-bit table entry for 10^exp10. It
// reports false if the product lies too close to a rounding boundary to
// decide from the available precision.
func fixedPointFloat(exp10 int, sig uint64) (uint64, bool) {
	const (
		windowBits = 64 - 54 - 1
		roundBit   = 1 << (64 - 54)
	)
	p := &pow5Table[exp10-minPow10]
	lz := bits.LeadingZeros64(sig)
	sig1 := sig << lz
	exp2 := ((217706*exp10 - 4128768) >> 16) - lz

	hi, lo := bits.Mul64(sig1, p[0])
	exact := false
	if w := hi & (1<<windowBits - 1); w-1 < 1<<windowBits-2 {
		exact = true
	} else {
		hi2, _ := bits.Mul64(sig1, p[1])
		if add := lo + hi2; add+1 > 1 {
			if add < lo || add < hi2 {
				hi++
			}
			exact = true
		}
	}
	if !exact {
		return 0, false
	}

	if hi < 1<<63 {
		hi <<= 1
		exp2--
	}
	exp2 += 64
	if hi&roundBit != 0 {
		hi += roundBit
	}
	if hi < roundBit {
		// The rounding carried out of the top bit.
		hi = 1 << 63
		exp2++
	}
	hi >>= 64 - 53
	exp2 += 64 - 53 + sigBits + expBias
	return uint64(exp2)<<sigBits | hi&(1<<sigBits-1), true
}

// A biasedFloat is a float64 decomposed into its significand bits and its
// biased exponent. A negative exponent means the conversion failed.
type biasedFloat struct {
	f uint64
	e int
}

// eiselLemire computes the float64 nearest to w × 10^q using the algorithm
// of Daniel Lemire, "Number Parsing at a Gigabyte per Second" (2021),
// extended by Noble Mushtak and Daniel Lemire, "Fast Number Parsing Without
// Fallback" (2023). It returns e < 0 if the result cannot be decided.
func eiselLemire(q int, w uint64) biasedFloat {
	if w == 0 || q < minPow10 {
		return biasedFloat{}
	} else if q > maxPow10 {
		return biasedFloat{e: infPower}
	}

	lz := bits.LeadingZeros64(w)
	w <<= lz
	lo, hi := productApprox(q, w, sigBits+3)
	if lo == math.MaxUint64 && (q < -27 || q > 55) {
		return biasedFloat{e: -1}
	}

	upper := int(hi >> 63)
	shift := upper + 64 - sigBits - 3
	m := hi >> shift
	power2 := power(q) + upper - lz - minExponent
	if power2 <= 0 {
		if -power2+1 >= 64 {
			return biasedFloat{}
		}
		m >>= -power2 + 1
		m += m & 1
		m >>= 1
		if m >= 1<<sigBits {
			return biasedFloat{f: m, e: 1}
		}
		return biasedFloat{f: m}
	}

	if lo <= 1 && q >= minRoundEven && q <= maxRoundEven && m&3 == 1 && m<<shift == hi {
		// Exactly halfway: round to even.
		m &^= 1
	}
	m += m & 1
	m >>= 1
	if m >= 2<<sigBits {
		m = 1 << sigBits
		power2++
	}
	m &^= 1 << sigBits
	if power2 >= infPower {
		return biasedFloat{e: infPower}
	}
	return biasedFloat{f: m, e: power2}
}

// power computes floor(log2(10^q)) + 63 for q in [minPow10, maxPow10].
func power(q int) int { return (q*(152170+65536))>>16 + 63 }

// productApprox computes the high bits of w × 5^q with at least precision
// bits of accuracy, returning the low and high words of the product.
func productApprox(q int, w uint64, precision int) (lo, hi uint64) {
	mask := uint64(math.MaxUint64) >> precision
	p := &pow5Table[q-minPow10]
	hi, lo = bits.Mul64(w, p[0])
	if hi&mask == mask {
		hi2, _ := bits.Mul64(w, p[1])
		lo += hi2
		if hi2 > lo {
			hi++
		}
	}
	return lo, hi
}

// exactDecimal converts the text of a number to the nearest float64 using
// arbitrary-precision decimal arithmetic. The text has already been
// validated, so the only possible error is overflow, reported as ±Inf.
func exactDecimal(raw []byte) float64 {
	f, _ := strconv.ParseFloat(string(raw), 64)
	return f
}
