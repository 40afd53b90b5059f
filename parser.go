// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"bytes"
	"math/bits"
	"unicode/utf8"

	"github.com/creachadair/jsimd/internal/escape"
	"github.com/creachadair/jsimd/internal/scan"
	"github.com/creachadair/jsimd/number"
)

// A Handler handles events from parsing an input. If a method reports an
// error, parsing stops and that error is returned to the caller. The parser
// ensures arrays and objects are correctly balanced, and that each object
// key is followed by exactly one value.
//
// The slice passed to String and Key is only valid for the duration of the
// call. If borrowed is true it aliases the input; otherwise it aliases a
// scratch buffer that the parser reuses.
type Handler interface {
	Null() error
	Bool(v bool) error
	Uint64(v uint64) error
	Int64(v int64) error // v < 0
	Float64(v float64) error
	String(s []byte, borrowed bool) error

	// Key reports the key of an object member. The next value reported is
	// the value of that member.
	Key(k []byte, borrowed bool) error

	BeginArray() error
	EndArray(n int) error // n is the number of elements
	BeginObject() error
	EndObject(n int) error // n is the number of members
}

// DefaultMaxDepth is the default nesting limit for [Parser.Decode].
const DefaultMaxDepth = 128

// eof is the sentinel returned by next at the end of input.
const eof = -1

// A Parser parses JSON values from a complete input buffer.
// A Parser is not safe for concurrent use.
type Parser struct {
	data     []byte
	pos      int
	cls      scan.Classifier
	dec      escape.Decoder
	check    bool // validate UTF-8 before parsing
	inPlace  bool // unescape strings by rewriting the input
	readOnly bool // the input aliases a string
	maxDepth int
	checked  bool // input has been validated

	scratch []byte
	frames  []frame

	// Cached non-space mask for the lane starting at nsOff.
	nsOff  int
	nsMask uint64
}

// NewParser constructs a parser that reads from data. By default the input
// is checked for valid UTF-8 before parsing, and strings are not unescaped
// in place.
func NewParser(data []byte) *Parser {
	p := &Parser{cls: scan.Default, check: true, maxDepth: DefaultMaxDepth}
	p.Reset(data)
	return p
}

// NewParserString constructs a parser that reads from s without copying.
// The InPlace option has no effect for such a parser.
func NewParserString(s string) *Parser {
	p := NewParser(stringBytes(s))
	p.readOnly = true
	return p
}

// Reset discards the state of p and sets it to read from data. The options
// of p are not changed.
func (p *Parser) Reset(data []byte) {
	p.data, p.pos, p.checked, p.readOnly = data, 0, false, false
	p.nsOff, p.nsMask = -1, 0
}

// CheckUTF8 sets whether p validates that its input is UTF-8 before parsing.
// If ok is false, invalid byte sequences in strings are passed through to
// the handler unchanged.
func (p *Parser) CheckUTF8(ok bool) *Parser { p.check = ok; return p }

// MaxDepth sets the nesting limit for [Parser.Decode]. If n ≤ 0 the limit is
// set to DefaultMaxDepth. The limit does not apply to [Parser.Parse], whose
// stack grows on the heap.
func (p *Parser) MaxDepth(n int) *Parser {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	p.maxDepth = n
	return p
}

// UTF8Lossy sets whether p repairs malformed text in strings instead of
// reporting an error. When enabled, each run of bytes in a string that is not
// valid UTF-8 is replaced by U+FFFD, as is each escaped surrogate that is not
// part of a valid pair. Invalid bytes outside strings are still reported as
// syntax errors. Repaired strings are never reported as borrowed.
func (p *Parser) UTF8Lossy(ok bool) *Parser { p.dec.Lossy = ok; return p }

// InPlace sets whether p unescapes strings by rewriting its input. When
// enabled, every string and key is reported as borrowed, except those
// repaired by [Parser.UTF8Lossy], and the input is modified by parsing.
func (p *Parser) InPlace(ok bool) *Parser { p.inPlace = ok; return p }

// Scalar sets whether p uses the byte-at-a-time lane classifier instead of
// the default selected for the host.
func (p *Parser) Scalar(ok bool) *Parser {
	if ok {
		p.cls = scan.Scalar{}
	} else {
		p.cls = scan.Default
	}
	return p
}

// Offset reports the current offset of p in its input.
func (p *Parser) Offset() int { return p.pos }

// Input returns the input buffer of p.
func (p *Parser) Input() []byte { return p.data }

// start validates the input, if required.
func (p *Parser) start() error {
	if !p.check || p.checked || p.dec.Lossy {
		return nil
	}
	if i := invalidUTF8(p.data); i >= 0 {
		return p.fail(InvalidUTF8, i)
	}
	p.checked = true
	return nil
}

// next advances past whitespace and the following byte, and returns that
// byte. At the end of input it returns eof.
func (p *Parser) next() int {
	// Values are usually separated by at most a couple of spaces.
	for range 2 {
		if p.pos >= len(p.data) {
			return eof
		}
		c := p.data[p.pos]
		p.pos++
		if !scan.IsSpace(c) {
			return int(c)
		}
	}
	return p.nextLane()
}

// nextLane finds the next non-space byte using lane masks. The mask of the
// most recent lane is cached, so runs of whitespace within one lane are
// classified only once.
func (p *Parser) nextLane() int {
	if d := p.pos - p.nsOff; p.nsOff >= 0 && d >= 0 && d < scan.LaneSize {
		if m := p.nsMask &^ (uint64(1)<<d - 1); m != 0 {
			p.pos = p.nsOff + bits.TrailingZeros64(m)
			c := p.data[p.pos]
			p.pos++
			return int(c)
		}
		p.pos = min(p.nsOff+scan.LaneSize, len(p.data))
	}
	var buf [scan.LaneSize]byte
	for p.pos < len(p.data) {
		lane, n := scan.Lane(p.data, p.pos, &buf)
		m := ^p.cls.Classify(lane).Space & scan.Valid(n)
		p.nsOff, p.nsMask = p.pos, m
		if m != 0 {
			p.pos += bits.TrailingZeros64(m)
			c := p.data[p.pos]
			p.pos++
			return int(c)
		}
		p.pos += n
	}
	return eof
}

// peek reports the next non-space byte without consuming it.
func (p *Parser) peek() int {
	c := p.next()
	if c != eof {
		p.pos--
	}
	return c
}

// finish reports an error if anything other than whitespace follows the
// current position.
func (p *Parser) finish() error {
	if c := p.next(); c != eof {
		return p.fail(TrailingCharacters, p.pos-1)
	}
	return nil
}

// unexpected reports an error for byte c found where code was expected.
func (p *Parser) unexpected(c int, code ErrorCode) *Error {
	if c == eof {
		return p.fail(EOFWhileParsing, len(p.data))
	}
	return p.fail(code, p.pos-1)
}

// literal checks that the remainder of a literal whose first byte was just
// consumed matches rest.
func (p *Parser) literal(rest string) error {
	end := p.pos + len(rest)
	if end > len(p.data) {
		if string(p.data[p.pos:]) == rest[:len(p.data)-p.pos] {
			return p.fail(EOFWhileParsing, len(p.data))
		}
		end = len(p.data)
	}
	for i := p.pos; i < end; i++ {
		if p.data[i] != rest[i-p.pos] {
			return p.fail(InvalidLiteral, i)
		}
	}
	p.pos = end
	return nil
}

// parseString decodes a string whose opening quote was just consumed.
func (p *Parser) parseString() ([]byte, bool, error) {
	start := p.pos
	var s []byte
	var borrowed bool
	if p.inPlace && !p.readOnly {
		n, end, err := p.dec.UnescapeInPlace(p.data, start)
		if err != nil {
			return nil, false, stringError(p.data, err, end)
		}
		p.pos = end
		s, borrowed = p.data[start:start+n], true
	} else {
		dec, end, ok, err := p.dec.Parse(p.data, start, p.scratch)
		if err != nil {
			return nil, false, stringError(p.data, err, end)
		}
		if !ok {
			p.scratch = dec[:0]
		}
		p.pos = end
		s, borrowed = dec, ok
	}
	if p.dec.Lossy && !utf8.Valid(s) {
		return bytes.ToValidUTF8(s, replacementChar), false, nil
	}
	return s, borrowed, nil
}

var replacementChar = []byte(string(utf8.RuneError))

// parseNumber decodes a number whose first byte was just consumed.
func (p *Parser) parseNumber() (number.Number, error) {
	n, end, err := number.Parse(p.data, p.pos-1)
	if err != nil {
		return n, numberError(p.data, err, end)
	}
	p.pos = end
	return n, nil
}

// scalar reports the non-container value whose first byte c was just
// consumed to h.
func (p *Parser) scalar(c int, h Handler) error {
	if _, ok := h.(discard); ok {
		switch c {
		case '"':
			return p.skipString()
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return p.skipNumber()
		}
	}
	switch c {
	case '"':
		s, borrowed, err := p.parseString()
		if err != nil {
			return err
		}
		return h.String(s, borrowed)
	case 't':
		if err := p.literal("rue"); err != nil {
			return err
		}
		return h.Bool(true)
	case 'f':
		if err := p.literal("alse"); err != nil {
			return err
		}
		return h.Bool(false)
	case 'n':
		if err := p.literal("ull"); err != nil {
			return err
		}
		return h.Null()
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n, err := p.parseNumber()
		if err != nil {
			return err
		}
		return sendNumber(h, n)
	}
	return p.unexpected(c, InvalidJSONValue)
}

func sendNumber(h Handler, n number.Number) error {
	switch n.Kind() {
	case number.Uint:
		u, _ := n.Uint64()
		return h.Uint64(u)
	case number.Int:
		v, _ := n.Int64()
		return h.Int64(v)
	default:
		return h.Float64(n.Float64())
	}
}

// key parses an object key, where c is the first byte of the key, and
// consumes the following colon.
func (p *Parser) key(c int, h Handler, first bool) error {
	if c != '"' {
		if (c == '}' || c == ']') && !first {
			return p.fail(TrailingComma, p.pos-1)
		}
		return p.unexpected(c, ExpectObjectKeyOrEnd)
	}
	if _, ok := h.(discard); ok {
		if err := p.skipString(); err != nil {
			return err
		}
	} else {
		k, borrowed, err := p.parseString()
		if err != nil {
			return err
		}
		if err := h.Key(k, borrowed); err != nil {
			return err
		}
	}
	if c := p.next(); c != ':' {
		return p.unexpected(c, ExpectedColon)
	}
	return nil
}
