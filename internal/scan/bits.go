// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package scan

import "math/bits"

const evenBits = 0x5555555555555555

// Escaped returns the mask of bytes in a lane that are escaped by a preceding
// backslash, given the lane's backslash mask. The state in *prev is 1 if the
// previous lane ended with an unfinished escape, and is updated for the next
// lane. Initialize *prev to 0 at the start of input.
//
// A backslash run of odd length escapes the byte following it. Runs are
// identified by adding the run starts at odd positions to the backslash mask,
// which carries each run to its end; the parity of the end position then
// decides whether the following byte is escaped.
func Escaped(prev *uint64, backslash uint64) uint64 {
	backslash &^= *prev
	follows := backslash<<1 | *prev
	oddStarts := backslash &^ evenBits &^ follows
	seq, carry := bits.Add64(oddStarts, backslash, 0)
	*prev = carry
	invert := seq << 1
	return (evenBits ^ invert) & follows
}

// PrefixXOR returns the mask whose bit i is the parity of bits 0..i of x.
func PrefixXOR(x uint64) uint64 {
	x ^= x << 1
	x ^= x << 2
	x ^= x << 4
	x ^= x << 8
	x ^= x << 16
	x ^= x << 32
	return x
}

// StringState tracks escape and string parity across consecutive lanes.
// The zero value is ready for use at a position outside any string.
type StringState struct {
	escaped  uint64 // 0 or 1
	inString uint64 // all zeroes or all ones
}

// Next consumes the masks of the next lane and reports the mask of unescaped
// quotes in the lane along with the mask of bytes inside strings. An opening
// quote is inside its string and a closing quote is not.
func (s *StringState) Next(m Masks) (quotes, inString uint64) {
	esc := Escaped(&s.escaped, m.Backslash)
	quotes = m.Quote &^ esc
	inString = PrefixXOR(quotes) ^ s.inString
	s.inString = uint64(int64(inString) >> 63)
	return quotes, inString
}

// InString reports whether the last lane consumed ended inside a string.
func (s *StringState) InString() bool { return s.inString != 0 }
