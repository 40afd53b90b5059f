// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package number parses and formats JSON numbers.
//
// Parse converts the text of a JSON number to a [Number], which is an
// unsigned integer, a negative signed integer, or a finite float64. Float
// conversion is exact: the result is the float64 nearest to the decimal
// value, with ties rounded to even.
package number

import (
	"encoding/binary"
	"errors"
	"math"
	"math/bits"
	"strconv"
)

// Errors reported by Parse and Skip.
var (
	ErrInvalidNumber     = errors.New("invalid number")
	ErrFloatMustBeFinite = errors.New("float must be finite")
)

// Kind identifies the representation of a Number.
type Kind uint8

// Constants for the Kind of a Number. The zero Kind is not valid.
const (
	Uint  Kind = iota + 1 // an unsigned integer
	Int                   // a negative integer
	Float                 // a finite float
)

func (k Kind) String() string {
	switch k {
	case Uint:
		return "uint"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return "invalid"
	}
}

// A Number is the normalized result of parsing a JSON number.
// Integers that fit a 64-bit word are kept exact: non-negative integers are
// of kind Uint, negative integers of kind Int. All other values are Float.
type Number struct {
	kind Kind
	bits uint64
}

// FromUint64 constructs a Number of kind Uint.
func FromUint64(v uint64) Number { return Number{kind: Uint, bits: v} }

// FromInt64 constructs a Number with value v. If v ≥ 0 its kind is Uint.
func FromInt64(v int64) Number {
	if v >= 0 {
		return FromUint64(uint64(v))
	}
	return Number{kind: Int, bits: uint64(v)}
}

// FromFloat64 constructs a Number of kind Float. It reports false if v is
// not finite.
func FromFloat64(v float64) (Number, bool) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return Number{}, false
	}
	return Number{kind: Float, bits: math.Float64bits(v)}, true
}

func fromFloat(v float64) Number { return Number{kind: Float, bits: math.Float64bits(v)} }

// Kind reports the kind of n.
func (n Number) Kind() Kind { return n.kind }

// IsValid reports whether n is a valid number.
func (n Number) IsValid() bool { return n.kind != 0 }

// Uint64 reports the value of n as a uint64, and whether it is exact.
func (n Number) Uint64() (uint64, bool) {
	if n.kind == Uint {
		return n.bits, true
	}
	return 0, false
}

// Int64 reports the value of n as an int64, and whether it is exact.
func (n Number) Int64() (int64, bool) {
	switch n.kind {
	case Int:
		return int64(n.bits), true
	case Uint:
		if n.bits <= math.MaxInt64 {
			return int64(n.bits), true
		}
	}
	return 0, false
}

// Float64 reports the value of n as a float64, rounding integers that
// exceed the float64 significand.
func (n Number) Float64() float64 {
	switch n.kind {
	case Uint:
		return float64(n.bits)
	case Int:
		return float64(int64(n.bits))
	default:
		return math.Float64frombits(n.bits)
	}
}

// Equal reports whether n and m denote the same numeric value, regardless
// of kind. Zeroes of either sign are equal.
func (n Number) Equal(m Number) bool {
	if n.kind == m.kind {
		if n.kind == Float {
			return n.Float64() == m.Float64()
		}
		return n.bits == m.bits
	}
	if n.kind == Float {
		n, m = m, n
	}
	if m.kind != Float {
		return false // Uint and Int values never overlap
	}
	f := m.Float64()
	if f != math.Trunc(f) {
		return false
	}
	switch n.kind {
	case Uint:
		return f >= 0 && f < 1<<64 && uint64(f) == n.bits
	case Int:
		return f < 0 && f >= -1<<63 && int64(f) == int64(n.bits)
	}
	return false
}

// Append appends the JSON encoding of n to dst. Floats are formatted in the
// shortest representation that round-trips, using exponent notation for
// very large and very small magnitudes.
func (n Number) Append(dst []byte) []byte {
	switch n.kind {
	case Uint:
		return strconv.AppendUint(dst, n.bits, 10)
	case Int:
		return strconv.AppendInt(dst, int64(n.bits), 10)
	case Float:
		f := math.Float64frombits(n.bits)
		if a := math.Abs(f); a != 0 && (a < 1e-6 || a >= 1e21) {
			return strconv.AppendFloat(dst, f, 'e', -1, 64)
		}
		return strconv.AppendFloat(dst, f, 'f', -1, 64)
	default:
		return append(dst, "null"...)
	}
}

func (n Number) String() string { return string(n.Append(nil)) }

// maxFloatDigits is the most significant digits accumulated for a float.
const maxFloatDigits = 17

func isDigit(data []byte, i int) bool { return i < len(data) && data[i]-'0' < 10 }
func isExp(data []byte, i int) bool   { return i < len(data) && data[i]|0x20 == 'e' }
func digit(data []byte, i int) uint64 { return uint64(data[i] - '0') }

// Skip advances past the number starting at data[i], checking its syntax
// without converting it. On error, the returned offset locates the failure.
func Skip(data []byte, i int) (int, error) {
	if i < len(data) && data[i] == '-' {
		i++
	}
	switch {
	case i < len(data) && data[i] == '0':
		i++
	case isDigit(data, i):
		for isDigit(data, i) {
			i++
		}
	default:
		return i, ErrInvalidNumber
	}
	if i < len(data) && data[i] == '.' {
		i++
		if !isDigit(data, i) {
			return i, ErrInvalidNumber
		}
		for isDigit(data, i) {
			i++
		}
	}
	if isExp(data, i) {
		_, j, err := parseExponent(data, i+1)
		return j, err
	}
	return i, nil
}

// Parse parses the number starting at data[i], which is either a digit or a
// minus sign. It returns the number and the offset of the first byte after
// it. On error, the returned offset locates the failure.
func Parse(data []byte, i int) (Number, int, error) {
	pos := i
	neg := i < len(data) && data[i] == '-'
	if neg {
		i++
	}
	start := i

	var sig uint64
	var exp int
	var trunc bool
	var err error

	if i < len(data) && data[i] == '0' {
		i++
		if i >= len(data) || (data[i] != '.' && !isExp(data, i)) {
			if neg {
				return fromFloat(math.Copysign(0, -1)), i, nil
			}
			return FromUint64(0), i, nil
		}

		if data[i] != '.' {
			// 0e123 is zero regardless of the exponent.
			_, j, err := parseExponent(data, i+1)
			if err != nil {
				return Number{}, j, err
			}
			return zero(neg), j, nil
		}

		i++
		dot := i
		if !isDigit(data, i) {
			return Number{}, i, ErrInvalidNumber
		}
		for i < len(data) && data[i] == '0' {
			i++
		}
		if isExp(data, i) {
			// 0.000e123 is also zero.
			_, j, err := parseExponent(data, i+1)
			if err != nil {
				return Number{}, j, err
			}
			return zero(neg), j, nil
		} else if !isDigit(data, i) {
			return zero(neg), i, nil
		}

		// Take the first significant digit here, so that at most 16 more
		// digits remain for the fraction.
		sig = digit(data, i)
		i++
		if isDigit(data, i) {
			sig, exp, i, trunc, err = parseFraction(data, i, sig, 0, maxFloatDigits-1, dot)
		} else {
			exp = dot - i
			if isExp(data, i) {
				var e int
				e, i, err = parseExponent(data, i+1)
				exp += e
			}
		}
		if err != nil {
			return Number{}, i, err
		}
		return parseFloat(sig, exp, neg, trunc, data[start:i], pos, i)
	}

	digitStart := i
	sig, i = parseDigits(data, i, 0, len(data))
	n := i - digitStart
	if n == 0 {
		return Number{}, i, ErrInvalidNumber
	}

	if n > 19 {
		// The significand wrapped. Keep an exact 19-digit prefix and scale the
		// exponent by the remaining digits.
		sig, i = parseDigits(data, digitStart, 0, 19)
		for isDigit(data, i) {
			exp++
			i++
		}
		n, trunc = 19, true
	}

	switch {
	case isExp(data, i):
		var e int
		e, i, err = parseExponent(data, i+1)
		if err != nil {
			return Number{}, i, err
		}
		exp += e

	case i < len(data) && data[i] == '.':
		i++
		if !isDigit(data, i) {
			return Number{}, i, ErrInvalidNumber
		}
		sig, exp, i, trunc, err = parseFraction(data, i, sig, exp, maxFloatDigits-n, i)
		if err != nil {
			return Number{}, i, err
		}

	default:
		if exp == 0 {
			if !neg {
				return FromUint64(sig), i, nil
			} else if sig > 1<<63 {
				return fromFloat(-float64(sig)), i, nil
			}
			return Number{kind: Int, bits: -sig}, i, nil
		} else if exp == 1 {
			// Exactly 20 digits: the value may still fit in 64 bits.
			hi, lo := bits.Mul64(sig, 10)
			v, carry := bits.Add64(lo, digit(data, i-1), 0)
			if hi == 0 && carry == 0 {
				if neg {
					return fromFloat(-float64(v)), i, nil
				}
				return FromUint64(v), i, nil
			}
		}
		trunc = true
	}
	return parseFloat(sig, exp, neg, trunc, data[start:i], pos, i)
}

func zero(neg bool) Number {
	if neg {
		return fromFloat(math.Copysign(0, -1))
	}
	return fromFloat(0)
}

// parseDigits accumulates decimal digits from data[i] into sig, consuming at
// most limit digits. Accumulation wraps silently on overflow.
func parseDigits(data []byte, i int, sig uint64, limit int) (uint64, int) {
	end := min(len(data), i+limit)
	for i+8 <= end {
		w := binary.LittleEndian.Uint64(data[i:])
		if !isEightDigits(w) {
			break
		}
		sig = sig*100000000 + parseEightDigits(w)
		i += 8
	}
	for i < end && data[i]-'0' < 10 {
		sig = sig*10 + digit(data, i)
		i++
	}
	return sig, i
}

// isEightDigits reports whether all 8 bytes of w are ASCII digits.
func isEightDigits(w uint64) bool {
	return ((w+0x4646464646464646)|(w-0x3030303030303030))&0x8080808080808080 == 0
}

// parseEightDigits converts 8 ASCII digits in little-endian order to their
// value.
func parseEightDigits(w uint64) uint64 {
	const mask = 0x000000ff000000ff
	w -= 0x3030303030303030
	w = w*10 + w>>8
	return ((w&mask)*0x000f424000000064 + (w>>16&mask)*0x0000271000000001) >> 32
}

// parseFraction accumulates up to need further fraction digits starting at
// data[i] into sig, where dot is the offset of the first fraction digit.
// Excess digits are skipped and reported by trunc. A following exponent is
// folded into exp.
func parseFraction(data []byte, i int, sig uint64, exp, need, dot int) (_ uint64, _, _ int, trunc bool, _ error) {
	if need > 0 {
		sig, i = parseDigits(data, i, sig, need)
	}
	exp -= i - dot
	for isDigit(data, i) {
		trunc = true
		i++
	}
	if isExp(data, i) {
		e, j, err := parseExponent(data, i+1)
		if err != nil {
			return 0, 0, j, false, err
		}
		exp += e
		i = j
	}
	return sig, exp, i, trunc, nil
}

// parseExponent parses the exponent digits (with optional sign) starting at
// data[i]. Magnitudes beyond 1000 saturate, since they only matter for
// deciding between zero and infinity.
func parseExponent(data []byte, i int) (int, int, error) {
	neg := false
	if i < len(data) {
		switch data[i] {
		case '+':
			i++
		case '-':
			neg = true
			i++
		}
	}
	if !isDigit(data, i) {
		return 0, i, ErrInvalidNumber
	}
	e := 0
	for e < 1000 && isDigit(data, i) {
		e = e*10 + int(digit(data, i))
		i++
	}
	for isDigit(data, i) {
		i++
	}
	if neg {
		e = -e
	}
	return e, i, nil
}
