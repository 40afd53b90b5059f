// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"math/bits"

	"github.com/creachadair/jsimd/internal/escape"
	"github.com/creachadair/jsimd/internal/scan"
	"github.com/creachadair/jsimd/number"
)

// SkipOne advances p past the next value in its input, and returns the raw
// text of that value. The value is validated as [Parser.Parse] would, except
// that numbers are not converted.
func (p *Parser) SkipOne() ([]byte, error) {
	if err := p.start(); err != nil {
		return nil, err
	}
	span, _, err := p.skipValue(true)
	if err != nil {
		return nil, err
	}
	return p.data[span.Pos:span.End], nil
}

// SkipOneUnchecked advances p past the next value in its input, and returns
// the raw text of that value. The value is not validated: containers are
// skipped by counting brackets outside strings, and malformed input yields
// an unspecified result. It reports an error only if the input ends before a
// container is closed.
func (p *Parser) SkipOneUnchecked() ([]byte, error) {
	span, _, err := p.skipValue(false)
	if err != nil {
		return nil, err
	}
	return p.data[span.Pos:span.End], nil
}

// skipValue advances past the next value and reports its span. For a string,
// the status records whether the string contains escapes.
func (p *Parser) skipValue(checked bool) (Span, EscapeStatus, error) {
	c := p.next()
	start := p.pos - 1
	switch c {
	case eof:
		return Span{}, EscapeNone, p.fail(EOFWhileParsing, len(p.data))
	case '"':
		var end int
		var escaped bool
		if checked {
			var err error
			end, escaped, err = p.dec.Skip(p.data, p.pos)
			if err != nil {
				return Span{}, EscapeNone, stringError(p.data, err, end)
			}
		} else {
			end, escaped = escape.SkipUnchecked(p.data, p.pos, p.cls)
		}
		p.pos = end
		status := EscapeNone
		if escaped {
			status = EscapeYes
		}
		return Span{Pos: start, End: end}, status, nil
	}

	status := EscapeNone
	if c == '[' || c == '{' {
		status = EscapePossible
	}
	var err error
	if checked {
		p.pos--
		err = p.parseValue(discard{})
	} else {
		err = p.skipUnchecked(c)
	}
	return Span{Pos: start, End: p.pos}, status, err
}

// skipUnchecked advances past the non-string value whose first byte c was
// just consumed, without validation.
func (p *Parser) skipUnchecked(c int) error {
	switch c {
	case '[':
		return p.skipContainer('[', ']')
	case '{':
		return p.skipContainer('{', '}')
	case 't', 'n':
		p.pos = min(p.pos+3, len(p.data))
	case 'f':
		p.pos = min(p.pos+4, len(p.data))
	default:
		for p.pos < len(p.data) && !isDelim(p.data[p.pos]) {
			p.pos++
		}
	}
	return nil
}

func isDelim(c byte) bool { return c == ',' || c == ']' || c == '}' || scan.IsSpace(c) }

// skipContainer advances past the container whose opening bracket was just
// consumed. It classifies the input a lane at a time, masks out brackets
// inside strings, and walks the closing brackets in order until one closes
// more brackets than have been opened.
func (p *Parser) skipContainer(open, close byte) error {
	var buf [scan.LaneSize]byte
	var st scan.StringState
	var nopen, nclose int
	for off := p.pos; off < len(p.data); off += scan.LaneSize {
		lane, n := scan.Lane(p.data, off, &buf)
		_, in := st.Next(p.cls.Classify(lane))
		valid := scan.Valid(n) &^ in
		opens := p.cls.Equal(lane, open) & valid
		closes := p.cls.Equal(lane, close) & valid
		for closes != 0 {
			k := bits.TrailingZeros64(closes)
			nclose++
			if nopen+bits.OnesCount64(opens&(uint64(1)<<k-1)) < nclose {
				p.pos = off + k + 1
				return nil
			}
			closes &= closes - 1
		}
		nopen += bits.OnesCount64(opens)
	}
	p.pos = len(p.data)
	return p.fail(EOFWhileParsing, len(p.data))
}

// discard is a Handler that ignores all events. The parser skips strings
// and numbers without decoding them when its handler is discard.
type discard struct{}

func (discard) Null() error               { return nil }
func (discard) Bool(bool) error           { return nil }
func (discard) Uint64(uint64) error       { return nil }
func (discard) Int64(int64) error         { return nil }
func (discard) Float64(float64) error     { return nil }
func (discard) String([]byte, bool) error { return nil }
func (discard) Key([]byte, bool) error    { return nil }
func (discard) BeginArray() error         { return nil }
func (discard) EndArray(int) error        { return nil }
func (discard) BeginObject() error        { return nil }
func (discard) EndObject(int) error       { return nil }

// skipString validates and skips a string whose opening quote was just
// consumed.
func (p *Parser) skipString() error {
	end, _, err := p.dec.Skip(p.data, p.pos)
	if err != nil {
		return stringError(p.data, err, end)
	}
	p.pos = end
	return nil
}

// skipNumber validates and skips a number whose first byte was just consumed.
func (p *Parser) skipNumber() error {
	end, err := number.Skip(p.data, p.pos-1)
	if err != nil {
		return numberError(p.data, err, end)
	}
	p.pos = end
	return nil
}
