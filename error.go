// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/creachadair/jsimd/internal/escape"
	"github.com/creachadair/jsimd/number"
)

// ErrorCode identifies the condition reported by an [Error].
type ErrorCode uint8

// Constants defining the valid ErrorCode values.
const (
	EOFWhileParsing          ErrorCode = iota + 1 // input ended inside a value
	ExpectedColon                                 // missing ":" after an object key
	ExpectedArrayCommaOrEnd                       // missing "," or "]" after an array element
	ExpectedObjectCommaOrEnd                      // missing "," or "}" after an object member
	InvalidLiteral                                // malformed true, false, or null
	InvalidJSONValue                              // a byte that cannot begin a value
	ExpectedObjectStart                           // a key lookup on a non-object
	ExpectedArrayStart                            // an index lookup on a non-array
	InvalidEscape                                 // malformed escape in a string
	InvalidNumber                                 // malformed number
	NumberOutOfRange                              // number does not fit the requested type
	InvalidUnicodeCodePoint                       // malformed \u escape
	ControlCharacter                              // raw control character in a string
	ExpectObjectKeyOrEnd                          // missing key or "}" in an object
	TrailingComma                                 // "," before "]" or "}"
	TrailingCharacters                            // non-whitespace after the value
	RecursionLimitExceeded                        // nesting deeper than the limit
	GetInEmptyObject                              // key lookup in {}
	GetUnknownKeyInObject                         // key lookup found no such key
	GetInEmptyArray                               // index lookup in []
	GetIndexOutOfArray                            // index lookup past the end
	UnexpectedVisitType                           // value has the wrong type for an accessor
	InvalidSurrogate                              // unpaired surrogate in a \u escape
	FloatMustBeFinite                             // number overflows float64
	InvalidUTF8                                   // input is not valid UTF-8
)

var codeText = [...]string{
	EOFWhileParsing:          "EOF while parsing",
	ExpectedColon:            "expected `:`",
	ExpectedArrayCommaOrEnd:  "expected `,` or `]`",
	ExpectedObjectCommaOrEnd: "expected `,` or `}`",
	InvalidLiteral:           "invalid literal (`true`, `false`, `null`)",
	InvalidJSONValue:         "invalid JSON value",
	ExpectedObjectStart:      "expected `{`",
	ExpectedArrayStart:       "expected `[`",
	InvalidEscape:            "invalid escape",
	InvalidNumber:            "invalid number",
	NumberOutOfRange:         "number out of range",
	InvalidUnicodeCodePoint:  "invalid unicode code point",
	ControlCharacter:         "control character (\\u0000-\\u001F) found while parsing a string",
	ExpectObjectKeyOrEnd:     "expected object key or `}`",
	TrailingComma:            "trailing comma",
	TrailingCharacters:       "trailing characters",
	RecursionLimitExceeded:   "recursion limit exceeded",
	GetInEmptyObject:         "get key in empty object",
	GetUnknownKeyInObject:    "get unknown key in object",
	GetInEmptyArray:          "get index in empty array",
	GetIndexOutOfArray:       "get index out of array",
	UnexpectedVisitType:      "unexpected value type",
	InvalidSurrogate:         "invalid surrogate unicode code point",
	FloatMustBeFinite:        "float number must be finite",
	InvalidUTF8:              "invalid UTF-8",
}

func (c ErrorCode) String() string {
	if int(c) < len(codeText) && codeText[c] != "" {
		return codeText[c]
	}
	return fmt.Sprintf("ErrorCode(%d)", c)
}

// Category groups error codes by the kind of failure they describe.
type Category uint8

// Constants defining the valid Category values.
const (
	Syntax   Category = iota + 1 // the input is not well-formed JSON
	EOF                          // the input ended early
	Encoding                     // invalid UTF-8 or string encoding
	Range                        // a number is out of range
	Depth                        // nesting limit exceeded
	NotFound                     // a path lookup found nothing
	Type                         // a value has the wrong type
)

// Category reports the category of c.
func (c ErrorCode) Category() Category {
	switch c {
	case EOFWhileParsing:
		return EOF
	case InvalidUTF8, InvalidUnicodeCodePoint, InvalidSurrogate, ControlCharacter, InvalidEscape:
		return Encoding
	case NumberOutOfRange, FloatMustBeFinite:
		return Range
	case RecursionLimitExceeded:
		return Depth
	case GetInEmptyObject, GetUnknownKeyInObject, GetInEmptyArray, GetIndexOutOfArray:
		return NotFound
	case UnexpectedVisitType, ExpectedObjectStart, ExpectedArrayStart:
		return Type
	default:
		return Syntax
	}
}

// Sentinel errors matched by [Error.Is], one per [Category]. ErrSyntax also
// matches errors of category EOF, since a truncated input is malformed.
var (
	ErrSyntax   = errors.New("syntax error")
	ErrEOF      = errors.New("unexpected end of input")
	ErrEncoding = errors.New("invalid encoding")
	ErrRange    = errors.New("number out of range")
	ErrDepth    = errors.New("nesting too deep")
	ErrNotFound = errors.New("value not found")
	ErrType     = errors.New("wrong value type")
)

var categoryErr = [...]error{
	Syntax:   ErrSyntax,
	EOF:      ErrEOF,
	Encoding: ErrEncoding,
	Range:    ErrRange,
	Depth:    ErrDepth,
	NotFound: ErrNotFound,
	Type:     ErrType,
}

// Error is the concrete type of errors reported by the parser and the lazy
// accessors. Its line and column are computed from the input on demand.
type Error struct {
	Code   ErrorCode
	Offset int // byte offset in the input, 0-based

	input []byte
	err   error // the cause reported by the string or number codec, if any
}

func (p *Parser) fail(code ErrorCode, offset int) *Error {
	return newError(code, offset, p.data)
}

func newError(code ErrorCode, offset int, input []byte) *Error {
	return &Error{Code: code, Offset: offset, input: input}
}

// Category reports the category of e.
func (e *Error) Category() Category { return e.Code.Category() }

// Location reports the line and column of the error offset.
func (e *Error) Location() LineCol { return Position(e.input, e.Offset) }

// Error satisfies the error interface. If the input is available, the message
// includes a fragment of the input around the offset, with a caret beneath
// the offending byte.
func (e *Error) Error() string {
	lc := e.Location()
	msg := fmt.Sprintf("%s at line %d column %d", e.Code, lc.Line, lc.Column)
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	if frag, mark := e.fragment(); frag != "" {
		msg += "\n\n\t" + frag + "\n\t" + mark + "\n"
	}
	return msg
}

// fragment returns up to 8 bytes of input on either side of the error offset
// and a marker line of the same width with a caret under the offset.
func (e *Error) fragment() (string, string) {
	if len(e.input) == 0 {
		return "", ""
	}
	pos := min(max(e.Offset, 0), len(e.input))
	lo, hi := max(pos-8, 0), min(pos+8, len(e.input))
	frag := slices.Clone(e.input[lo:hi])
	for i, b := range frag {
		if b < ' ' || b == 0x7f {
			frag[i] = ' '
		}
	}
	mark := strings.Repeat(".", pos-lo) + "^" + strings.Repeat(".", max(hi-pos-1, 0))
	return string(frag), mark
}

// Unwrap reports the underlying cause of e, if any.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel for the category of e.
func (e *Error) Is(target error) bool {
	c := e.Category()
	return target == categoryErr[c] || (c == EOF && target == ErrSyntax)
}

// stringError maps an error from the string codec to an Error.
func stringError(input []byte, err error, offset int) *Error {
	code := InvalidEscape
	switch err {
	case escape.ErrEOF:
		code, offset = EOFWhileParsing, len(input)
	case escape.ErrControlChar:
		code = ControlCharacter
	case escape.ErrInvalidUnicode:
		code = InvalidUnicodeCodePoint
	case escape.ErrInvalidSurrogate:
		code = InvalidSurrogate
	}
	e := newError(code, offset, input)
	e.err = err
	return e
}

// numberError maps an error from the number parser to an Error.
func numberError(input []byte, err error, offset int) *Error {
	code := InvalidNumber
	if err == number.ErrFloatMustBeFinite {
		code = FloatMustBeFinite
	} else if offset >= len(input) {
		code = EOFWhileParsing
	}
	e := newError(code, offset, input)
	e.err = err
	return e
}
