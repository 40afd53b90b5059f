// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"bytes"
	"sync/atomic"

	"github.com/creachadair/jsimd/internal/escape"
	"github.com/creachadair/jsimd/number"
)

// Kind is the type of a JSON value.
type Kind uint8

// Constants defining the valid Kind values.
const (
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

var kindStr = [...]string{
	Invalid: "invalid", Null: "null", Bool: "bool", Number: "number",
	String: "string", Array: "array", Object: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindStr) {
		return kindStr[k]
	}
	return kindStr[Invalid]
}

// kindOf reports the kind of the value that begins with byte c.
func kindOf(c byte) Kind {
	switch c {
	case 'n':
		return Null
	case 't', 'f':
		return Bool
	case '"':
		return String
	case '[':
		return Array
	case '{':
		return Object
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return Number
	}
	return Invalid
}

// EscapeStatus records what is known about escape sequences in the text of
// a [LazyValue].
type EscapeStatus uint8

// Constants defining the valid EscapeStatus values.
const (
	EscapeNone     EscapeStatus = iota // the text has no escapes
	EscapePossible                     // the text was not examined for escapes
	EscapeYes                          // the text contains escapes
)

// A LazyValue is a view of the raw text of a single JSON value. Its content
// is decoded on demand by its accessors. A LazyValue is safe for concurrent
// use by multiple goroutines, provided its underlying input is not modified.
type LazyValue struct {
	raw []byte
	esc EscapeStatus
	str atomic.Pointer[string] // decoded string, once computed
}

func newLazy(raw []byte, esc EscapeStatus) *LazyValue { return &LazyValue{raw: raw, esc: esc} }

// NewLazyValue returns a LazyValue for the raw text of a JSON value. The
// text is not validated.
func NewLazyValue(raw []byte) *LazyValue {
	raw = bytes.TrimSpace(raw)
	esc := EscapePossible
	if len(raw) != 0 && raw[0] != '"' && raw[0] != '[' && raw[0] != '{' {
		esc = EscapeNone
	}
	return newLazy(raw, esc)
}

// Raw returns the raw text of v. The result aliases the input from which v
// was obtained and must not be modified.
func (v *LazyValue) Raw() []byte { return v.raw }

// RawString returns a copy of the raw text of v.
func (v *LazyValue) RawString() string { return string(v.raw) }

func (v *LazyValue) String() string { return string(v.raw) }

// Escape reports what is known about escapes in the text of v.
func (v *LazyValue) Escape() EscapeStatus { return v.esc }

// Kind reports the kind of v.
func (v *LazyValue) Kind() Kind {
	if len(v.raw) == 0 {
		return Invalid
	}
	return kindOf(v.raw[0])
}

// IsNull reports whether v is null.
func (v *LazyValue) IsNull() bool { return v.Kind() == Null }

func (v *LazyValue) typeError() error { return newError(UnexpectedVisitType, 0, v.raw) }

// Str returns the decoded value of a string. The decoded value is computed
// once, and later calls return the same string.
func (v *LazyValue) Str() (string, error) {
	if v.Kind() != String {
		return "", v.typeError()
	}
	if s := v.str.Load(); s != nil {
		return *s, nil
	}
	var s string
	if v.esc == EscapeNone {
		s = string(v.raw[1 : len(v.raw)-1])
	} else {
		dec, end, _, err := escape.Parse(v.raw, 1, nil)
		if err != nil {
			return "", stringError(v.raw, err, end)
		}
		s = string(dec)
	}
	if !v.str.CompareAndSwap(nil, &s) {
		return *v.str.Load(), nil
	}
	return s, nil
}

// Bool returns the value of a Boolean.
func (v *LazyValue) Bool() (bool, error) {
	switch string(v.raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, v.typeError()
}

// Number returns the value of a number.
func (v *LazyValue) Number() (number.Number, error) {
	if v.Kind() != Number {
		return number.Number{}, v.typeError()
	}
	n, end, err := number.Parse(v.raw, 0)
	if err != nil {
		return n, numberError(v.raw, err, end)
	} else if end != len(v.raw) {
		return n, newError(InvalidNumber, end, v.raw)
	}
	return n, nil
}

// Int64 returns the value of an integer that fits in an int64.
func (v *LazyValue) Int64() (int64, error) {
	n, err := v.Number()
	if err != nil {
		return 0, err
	}
	z, ok := n.Int64()
	if !ok {
		return 0, newError(NumberOutOfRange, 0, v.raw)
	}
	return z, nil
}

// Uint64 returns the value of a non-negative integer that fits in a uint64.
func (v *LazyValue) Uint64() (uint64, error) {
	n, err := v.Number()
	if err != nil {
		return 0, err
	}
	z, ok := n.Uint64()
	if !ok {
		return 0, newError(NumberOutOfRange, 0, v.raw)
	}
	return z, nil
}

// Float64 returns the value of a number as a float64. Integers beyond the
// precision of float64 are rounded.
func (v *LazyValue) Float64() (float64, error) {
	n, err := v.Number()
	if err != nil {
		return 0, err
	}
	return n.Float64(), nil
}

// Get returns the value at the given path within v, as [Get].
func (v *LazyValue) Get(path ...any) (*LazyValue, error) { return Get(v.raw, path...) }

// Own returns an OwnedLazyValue with a copy of the text of v.
func (v *LazyValue) Own() *OwnedLazyValue {
	o := &OwnedLazyValue{LazyValue{raw: bytes.Clone(v.raw), esc: v.esc}}
	if s := v.str.Load(); s != nil {
		o.str.Store(s)
	}
	return o
}

// An OwnedLazyValue is a LazyValue that owns a copy of its text, so it
// remains valid when the input it was taken from is modified or reused.
type OwnedLazyValue struct {
	LazyValue
}

// GetOwned is as [Get], but returns a value that owns its text.
func GetOwned(data []byte, path ...any) (*OwnedLazyValue, error) {
	v, err := Get(data, path...)
	if err != nil {
		return nil, err
	}
	return v.Own(), nil
}

// Str returns the decoded value of a string, as [LazyValue.Str]. A string
// with escapes is decoded in place in a private copy of its text.
func (o *OwnedLazyValue) Str() (string, error) {
	if o.Kind() != String || o.esc == EscapeNone {
		return o.LazyValue.Str()
	}
	if s := o.str.Load(); s != nil {
		return *s, nil
	}
	buf := bytes.Clone(o.raw)
	n, end, err := escape.UnescapeInPlace(buf, 1)
	if err != nil {
		return "", stringError(o.raw, err, end)
	}
	s := bytesString(buf[1 : 1+n])
	if !o.str.CompareAndSwap(nil, &s) {
		return *o.str.Load(), nil
	}
	return s, nil
}
