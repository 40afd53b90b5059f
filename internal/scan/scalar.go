// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package scan

// Character classes for the scalar classifier.
const (
	cQuote = 1 << iota
	cBackslash
	cControl
	cSpace
	cStructural
)

var class = func() (t [256]uint8) {
	for i := range 0x20 {
		t[i] = cControl
	}
	t['"'] = cQuote
	t['\\'] = cBackslash
	for _, c := range []byte(" \t\n\r") {
		t[c] |= cSpace
	}
	for _, c := range []byte("{}[]:,") {
		t[c] = cStructural
	}
	return
}()

// Scalar is a Classifier that examines one byte at a time. It is the
// reference implementation against which other classifiers are checked.
type Scalar struct{}

// Name implements part of the Classifier interface.
func (Scalar) Name() string { return "scalar" }

// Classify implements part of the Classifier interface.
func (Scalar) Classify(lane *[LaneSize]byte) (m Masks) {
	for i, b := range lane {
		c := class[b]
		if c == 0 {
			continue
		}
		bit := uint64(1) << i
		if c&cQuote != 0 {
			m.Quote |= bit
		}
		if c&cBackslash != 0 {
			m.Backslash |= bit
		}
		if c&cControl != 0 {
			m.Control |= bit
		}
		if c&cSpace != 0 {
			m.Space |= bit
		}
		if c&cStructural != 0 {
			m.Structural |= bit
		}
	}
	return
}

// Equal implements part of the Classifier interface.
func (Scalar) Equal(lane *[LaneSize]byte, c byte) (m uint64) {
	for i, b := range lane {
		if b == c {
			m |= uint64(1) << i
		}
	}
	return
}
