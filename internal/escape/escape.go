// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles skipping, quoting, and unquoting of JSON strings.
//
// Functions that consume a string body take the input and the offset of the
// first byte after the opening quotation mark. On success they report the
// offset just past the closing quotation mark. On failure the reported offset
// is the position of the offending byte.
package escape

import (
	"errors"
	"math/bits"
	"unicode/utf8"

	"github.com/creachadair/jsimd/internal/scan"
)

// Errors reported for malformed string bodies.
var (
	ErrEOF              = errors.New("unterminated string")
	ErrControlChar      = errors.New("control character in string")
	ErrInvalidEscape    = errors.New("invalid escape")
	ErrInvalidUnicode   = errors.New("invalid unicode code point")
	ErrInvalidSurrogate = errors.New("invalid surrogate pair")
)

// escapedTab maps the byte after a backslash to its decoded value, or 0 if
// the escape is not a single-character escape.
var escapedTab = [256]byte{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

// A Decoder decodes the bodies of JSON strings. The zero Decoder reports
// an error for any malformed escape sequence.
type Decoder struct {
	// If Lossy is true, an escaped surrogate that is not part of a valid
	// pair decodes as U+FFFD instead of reporting ErrInvalidSurrogate. Only
	// the unpaired escape is replaced; an escape following it is decoded on
	// its own.
	Lossy bool
}

// Skip advances past the body of a string starting at data[i], validating
// escape sequences and rejecting raw control characters. It reports whether
// the body contains any escapes.
func Skip(data []byte, i int) (end int, escaped bool, err error) { return Decoder{}.Skip(data, i) }

// Parse decodes the body of a string starting at data[i], as [Decoder.Parse].
func Parse(data []byte, i int, buf []byte) (s []byte, end int, borrowed bool, err error) {
	return Decoder{}.Parse(data, i, buf)
}

// UnescapeInPlace decodes the body of a string starting at data[i] over the
// input, as [Decoder.UnescapeInPlace].
func UnescapeInPlace(data []byte, i int) (n, end int, err error) {
	return Decoder{}.UnescapeInPlace(data, i)
}

// Skip advances past the body of a string starting at data[i], validating
// escape sequences and rejecting raw control characters. It reports whether
// the body contains any escapes.
func (d Decoder) Skip(data []byte, i int) (end int, escaped bool, err error) {
	for {
		k := scan.FindSpecial(data[i:])
		if k < 0 {
			return len(data), escaped, ErrEOF
		}
		i += k
		switch c := data[i]; {
		case c == '"':
			return i + 1, escaped, nil
		case c == '\\':
			escaped = true
			_, n, err := decodeEscape(data, i, d.Lossy)
			if err != nil {
				return i + n, escaped, err
			}
			i += n
		default:
			return i, escaped, ErrControlChar
		}
	}
}

// SkipUnchecked advances past the body of a string starting at data[i] using
// lane masks from cls, without validating its contents. It reports whether a
// backslash occurs in the body. If the string is unterminated, it returns
// len(data).
func SkipUnchecked(data []byte, i int, cls scan.Classifier) (end int, escaped bool) {
	var buf [scan.LaneSize]byte
	var prev uint64
	for off := i; off < len(data); off += scan.LaneSize {
		lane, n := scan.Lane(data, off, &buf)
		m := cls.Classify(lane)
		valid := scan.Valid(n)
		bs := m.Backslash & valid
		quotes := m.Quote & valid &^ scan.Escaped(&prev, bs)
		if quotes != 0 {
			k := bits.TrailingZeros64(quotes)
			return off + k + 1, escaped || bs&(uint64(1)<<k-1) != 0
		}
		escaped = escaped || bs != 0
	}
	return len(data), escaped
}

// Parse decodes the body of a string starting at data[i]. If the body has no
// escape sequences, s aliases data and borrowed is true. Otherwise the decoded
// body is written to buf, whose storage is reused, and s aliases buf.
func (d Decoder) Parse(data []byte, i int, buf []byte) (s []byte, end int, borrowed bool, err error) {
	start := i
	k := scan.FindSpecial(data[i:])
	if k < 0 {
		return nil, len(data), false, ErrEOF
	}
	i += k
	switch c := data[i]; {
	case c == '"':
		return data[start:i], i + 1, true, nil
	case c < ' ':
		return nil, i, false, ErrControlChar
	}
	dec, end, err := unescape(append(buf[:0], data[start:i]...), data, i, d.Lossy)
	return dec, end, false, err
}

// unescape decodes escapes starting at the backslash at data[i], appending
// the result to dst, until the closing quotation mark.
func unescape(dst, data []byte, i int, lossy bool) ([]byte, int, error) {
	for {
		r, n, err := decodeEscape(data, i, lossy)
		if err != nil {
			return dst, i + n, err
		}
		dst = utf8.AppendRune(dst, r)
		i += n

		k := scan.FindSpecial(data[i:])
		if k < 0 {
			return dst, len(data), ErrEOF
		}
		dst = append(dst, data[i:i+k]...)
		i += k
		switch c := data[i]; {
		case c == '"':
			return dst, i + 1, nil
		case c < ' ':
			return dst, i, ErrControlChar
		}
	}
}

// UnescapeInPlace decodes the body of a string starting at data[i], writing
// the result over the input starting at data[i]. The decoded body is
// data[i:i+n]. This is safe because a decoded escape is never longer than
// its encoding.
func (d Decoder) UnescapeInPlace(data []byte, i int) (n, end int, err error) {
	w, r := i, i
	for {
		k := scan.FindSpecial(data[r:])
		if k < 0 {
			return w - i, len(data), ErrEOF
		}
		w += copy(data[w:], data[r:r+k])
		r += k
		switch c := data[r]; {
		case c == '"':
			return w - i, r + 1, nil
		case c < ' ':
			return w - i, r, ErrControlChar
		}
		v, m, err := decodeEscape(data, r, d.Lossy)
		if err != nil {
			return w - i, r + m, err
		}
		w += utf8.EncodeRune(data[w:], v)
		r += m
	}
}

// decodeEscape decodes the escape sequence beginning with the backslash at
// data[i]. It returns the decoded rune and the length of the sequence. On
// error, n is the offset from i of the offending byte. If lossy is true, an
// unpaired surrogate decodes as utf8.RuneError.
func decodeEscape(data []byte, i int, lossy bool) (r rune, n int, err error) {
	if i+1 >= len(data) {
		return 0, len(data) - i, ErrEOF
	}
	c := data[i+1]
	if b := escapedTab[c]; b != 0 {
		return rune(b), 2, nil
	} else if c != 'u' {
		return 0, 1, ErrInvalidEscape
	}

	hi, err := parseHex4(data, i+2)
	if err != nil {
		return 0, 2, err
	}
	switch {
	case hi >= 0xdc00 && hi <= 0xdfff:
		return unpaired(lossy, 0)
	case hi < 0xd800 || hi > 0xdbff:
		return hi, 6, nil
	}

	// A high surrogate must be followed by an escaped low surrogate.
	switch {
	case i+6 >= len(data):
		return 0, len(data) - i, ErrEOF
	case data[i+6] != '\\':
		return unpaired(lossy, 6)
	case i+7 >= len(data):
		return 0, len(data) - i, ErrEOF
	case data[i+7] != 'u':
		return unpaired(lossy, 6)
	}
	lo, err := parseHex4(data, i+8)
	if err != nil {
		return 0, 8, err
	} else if lo < 0xdc00 || lo > 0xdfff {
		return unpaired(lossy, 6)
	}
	return 0x10000 + (hi-0xd800)<<10 + (lo - 0xdc00), 12, nil
}

// unpaired reports an unpaired surrogate escape, where pos is the offset of
// the error from the start of the escape.
func unpaired(lossy bool, pos int) (rune, int, error) {
	if lossy {
		return utf8.RuneError, 6, nil
	}
	return 0, pos, ErrInvalidSurrogate
}

func parseHex4(data []byte, i int) (rune, error) {
	if i+4 > len(data) {
		return 0, ErrEOF
	}
	var v rune
	for _, b := range data[i : i+4] {
		d := hexVal[b]
		if d < 0 {
			return 0, ErrInvalidEscape
		}
		v = v<<4 | rune(d)
	}
	return v, nil
}

var hexVal = func() (t [256]int8) {
	for i := range t {
		t[i] = -1
	}
	for i, c := range "0123456789abcdef" {
		t[c] = int8(i)
	}
	for i, c := range "ABCDEF" {
		t[c] = int8(10 + i)
	}
	return
}()
