// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package scan

const (
	ones  = 0x0101010101010101
	low7  = 0x7f7f7f7f7f7f7f7f
	high3 = 0xe0e0e0e0e0e0e0e0
)

// SWAR is a Classifier that treats each 8-byte group of a lane as a single
// 64-bit word ("SIMD within a register").
type SWAR struct{}

// Name implements part of the Classifier interface.
func (SWAR) Name() string { return "swar" }

// Classify implements part of the Classifier interface.
func (SWAR) Classify(lane *[LaneSize]byte) (m Masks) {
	for w := 0; w < LaneSize/8; w++ {
		x := load64(lane[8*w:])
		shift := uint(8 * w)

		sp := eqBytes(x, ' ') | eqBytes(x, '\t') | eqBytes(x, '\n') | eqBytes(x, '\r')
		st := eqBytes(x, '{') | eqBytes(x, '}') | eqBytes(x, '[') | eqBytes(x, ']') |
			eqBytes(x, ':') | eqBytes(x, ',')

		m.Quote |= gather(eqBytes(x, '"')) << shift
		m.Backslash |= gather(eqBytes(x, '\\')) << shift
		m.Control |= gather(zeroBytes(x&high3)) << shift
		m.Space |= gather(sp) << shift
		m.Structural |= gather(st) << shift
	}
	return
}

// Equal implements part of the Classifier interface.
func (SWAR) Equal(lane *[LaneSize]byte, c byte) (m uint64) {
	for w := 0; w < LaneSize/8; w++ {
		m |= gather(eqBytes(load64(lane[8*w:]), c)) << uint(8*w)
	}
	return
}

// load64 loads the first 8 bytes of b as a little-endian word.
func load64[T Text](b T) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// zeroBytes returns a word with the high bit set in exactly those bytes of x
// that are zero. Unlike the common "has zero byte" test, no borrow crosses a
// byte boundary, so the result has no false positives.
func zeroBytes(x uint64) uint64 {
	y := (x & low7) + low7
	return ^(y | x | low7)
}

// eqBytes returns a word with the high bit set in the bytes of x equal to c.
func eqBytes(x uint64, c byte) uint64 { return zeroBytes(x ^ (ones * uint64(c))) }

// specialBytes marks quotes, backslashes and control bytes in x.
func specialBytes(x uint64) uint64 {
	return eqBytes(x, '"') | eqBytes(x, '\\') | zeroBytes(x&high3)
}

// gather packs the high bit of each byte of x into the low 8 bits of the
// result, with byte 0 in bit 0.
func gather(x uint64) uint64 { return ((x >> 7) * 0x0102040810204080) >> 56 }
