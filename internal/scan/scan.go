// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package scan classifies fixed-width lanes of JSON input into bitmasks.
//
// A lane is 64 consecutive input bytes. Bit i of each mask corresponds to
// byte i of the lane. Lanes that would run past the end of the input are
// copied into a zero-padded buffer by [Lane], and callers must discard the
// bits beyond the valid length using [Valid].
package scan

import (
	"math/bits"

	"golang.org/x/sys/cpu"
)

// LaneSize is the number of input bytes classified at once.
const LaneSize = 64

// Masks records the positions of interesting bytes in a lane.
type Masks struct {
	Quote      uint64 // '"'
	Backslash  uint64 // '\\'
	Control    uint64 // bytes below 0x20
	Space      uint64 // ' ', '\t', '\n', '\r'
	Structural uint64 // '{', '}', '[', ']', ':', ','
}

// A Classifier computes lane masks. Every implementation must produce
// identical results for the same lane.
type Classifier interface {
	// Name reports a short human-readable name for the strategy.
	Name() string

	// Classify reports the masks for the given lane.
	Classify(lane *[LaneSize]byte) Masks

	// Equal reports the mask of bytes in lane equal to c.
	Equal(lane *[LaneSize]byte, c byte) uint64
}

// Default is the classifier selected for the host at startup.
var Default = probe()

// probe selects the word-at-a-time classifier on 64-bit hosts whose CPU
// reports a vector unit (and hence fast unaligned word loads), and the
// byte-at-a-time classifier elsewhere.
func probe() Classifier {
	if bits.UintSize == 64 && (cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD) {
		return SWAR{}
	}
	return Scalar{}
}

// Lane returns a pointer to the lane of data starting at offset off, and the
// number of valid bytes in it. If fewer than LaneSize bytes remain, the
// remainder is copied into buf, which is zero-padded, and buf is returned.
func Lane(data []byte, off int, buf *[LaneSize]byte) (*[LaneSize]byte, int) {
	if n := len(data) - off; n < LaneSize {
		*buf = [LaneSize]byte{}
		copy(buf[:], data[off:])
		return buf, n
	}
	return (*[LaneSize]byte)(data[off : off+LaneSize]), LaneSize
}

// Valid returns a mask with the low n bits set, for 0 ≤ n ≤ LaneSize.
func Valid(n int) uint64 {
	if n >= LaneSize {
		return ^uint64(0)
	}
	return uint64(1)<<n - 1
}

const spaceBits = 1<<' ' | 1<<'\t' | 1<<'\n' | 1<<'\r'

// IsSpace reports whether b is JSON whitespace.
func IsSpace(b byte) bool { return b <= ' ' && (uint64(1)<<b)&spaceBits != 0 }

// Text is the constraint for functions that accept raw input either as a
// byte slice or as a string.
type Text interface{ ~string | ~[]byte }

// FindSpecial reports the offset of the first quote, backslash, or control
// byte in b, or -1 if b contains none of these. A result of -1 means b can be
// used verbatim as the body of a JSON string.
func FindSpecial[T Text](b T) int {
	i := 0
	for ; i+8 <= len(b); i += 8 {
		if m := specialBytes(load64(b[i:])); m != 0 {
			return i + bits.TrailingZeros64(m)/8
		}
	}
	for ; i < len(b); i++ {
		if class[b[i]]&(cQuote|cBackslash|cControl) != 0 {
			return i
		}
	}
	return -1
}
