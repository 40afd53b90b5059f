// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"slices"

	"github.com/creachadair/jsimd/internal/escape"
	"github.com/creachadair/jsimd/number"
)

// A Buffer is a growable output sink. A writer reserves space, writes into
// the reserved region directly, then commits the number of bytes it used.
// The zero value is ready for use.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer that appends to dst.
func NewBuffer(dst []byte) *Buffer { return &Buffer{buf: dst} }

// Reserve ensures that at least n bytes are available past the end of the
// contents of b, and returns that region. Its contents are not part of the
// buffer until they are committed.
func (b *Buffer) Reserve(n int) []byte {
	b.buf = slices.Grow(b.buf, n)
	return b.buf[len(b.buf) : len(b.buf)+n]
}

// Commit extends the contents of b by n bytes of the most recently reserved
// region. It panics if n exceeds the reserved space.
func (b *Buffer) Commit(n int) { b.buf = b.buf[:len(b.buf)+n] }

// Write appends data to b. It always succeeds.
func (b *Buffer) Write(data []byte) (int, error) {
	n := copy(b.Reserve(len(data)), data)
	b.Commit(n)
	return n, nil
}

// WriteString appends s to b. It always succeeds.
func (b *Buffer) WriteString(s string) (int, error) {
	n := copy(b.Reserve(len(s)), s)
	b.Commit(n)
	return n, nil
}

// WriteByte appends c to b. It always succeeds.
func (b *Buffer) WriteByte(c byte) error {
	b.Reserve(1)[0] = c
	b.Commit(1)
	return nil
}

// WriteQuoted appends s to b as a quoted JSON string.
func (b *Buffer) WriteQuoted(s string) {
	n := escape.QuotedLen(s)
	escape.AppendQuote(b.Reserve(n)[:0], s)
	b.Commit(n)
}

// maxNumberLen bounds the length of the encoding of a number.Number.
const maxNumberLen = 32

// WriteNumber appends the JSON encoding of n to b.
func (b *Buffer) WriteNumber(n number.Number) {
	b.Commit(len(n.Append(b.Reserve(maxNumberLen)[:0])))
}

// Bytes returns the contents of b. The result aliases the storage of b.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len reports the length in bytes of the contents of b.
func (b *Buffer) Len() int { return len(b.buf) }

// Reset discards the contents of b, retaining its storage.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// A Formatter controls the layout of encoded JSON. An encoder calls its
// methods in document order: each value is written by exactly one of the
// Write methods or by a Begin/End pair for a container, and each array
// element and object member is bracketed by the corresponding hooks.
type Formatter interface {
	WriteNull(b *Buffer)
	WriteBool(b *Buffer, v bool)
	WriteNumber(b *Buffer, n number.Number)
	WriteString(b *Buffer, s string)

	BeginArray(b *Buffer)
	EndArray(b *Buffer, empty bool)
	BeginArrayValue(b *Buffer, first bool)
	EndArrayValue(b *Buffer)

	BeginObject(b *Buffer)
	EndObject(b *Buffer, empty bool)
	BeginObjectKey(b *Buffer, first bool) // the key is written with WriteString
	EndObjectKey(b *Buffer)
	BeginObjectValue(b *Buffer)
	EndObjectValue(b *Buffer)
}

// CompactFormatter is a Formatter that writes no insignificant whitespace.
type CompactFormatter struct{}

func (CompactFormatter) WriteNull(b *Buffer) { b.WriteString("null") }

func (CompactFormatter) WriteBool(b *Buffer, v bool) {
	if v {
		b.WriteString("true")
	} else {
		b.WriteString("false")
	}
}

func (CompactFormatter) WriteNumber(b *Buffer, n number.Number) { b.WriteNumber(n) }
func (CompactFormatter) WriteString(b *Buffer, s string)        { b.WriteQuoted(s) }
func (CompactFormatter) BeginArray(b *Buffer)                   { b.WriteByte('[') }
func (CompactFormatter) EndArray(b *Buffer, _ bool)             { b.WriteByte(']') }
func (CompactFormatter) EndArrayValue(*Buffer)                  {}
func (CompactFormatter) BeginObject(b *Buffer)                  { b.WriteByte('{') }
func (CompactFormatter) EndObject(b *Buffer, _ bool)            { b.WriteByte('}') }
func (CompactFormatter) EndObjectKey(*Buffer)                   {}
func (CompactFormatter) BeginObjectValue(b *Buffer)             { b.WriteByte(':') }
func (CompactFormatter) EndObjectValue(*Buffer)                 {}

func (CompactFormatter) BeginArrayValue(b *Buffer, first bool) {
	if !first {
		b.WriteByte(',')
	}
}

func (CompactFormatter) BeginObjectKey(b *Buffer, first bool) {
	if !first {
		b.WriteByte(',')
	}
}

// IndentFormatter is a Formatter that writes each array element and object
// member on its own line, with a prefix and one indent per level of nesting,
// in the manner of encoding/json.Indent. Empty containers are written as []
// and {}.
type IndentFormatter struct {
	CompactFormatter

	prefix, indent string
	depth          int
}

// NewIndentFormatter constructs an IndentFormatter.
func NewIndentFormatter(prefix, indent string) *IndentFormatter {
	return &IndentFormatter{prefix: prefix, indent: indent}
}

func (f *IndentFormatter) newline(b *Buffer) {
	n := 1 + len(f.prefix) + f.depth*len(f.indent)
	buf := b.Reserve(n)
	buf[0] = '\n'
	i := 1 + copy(buf[1:], f.prefix)
	for range f.depth {
		i += copy(buf[i:], f.indent)
	}
	b.Commit(n)
}

func (f *IndentFormatter) BeginArray(b *Buffer)  { f.depth++; b.WriteByte('[') }
func (f *IndentFormatter) BeginObject(b *Buffer) { f.depth++; b.WriteByte('{') }

func (f *IndentFormatter) EndArray(b *Buffer, empty bool) {
	f.depth--
	if !empty {
		f.newline(b)
	}
	b.WriteByte(']')
}

func (f *IndentFormatter) EndObject(b *Buffer, empty bool) {
	f.depth--
	if !empty {
		f.newline(b)
	}
	b.WriteByte('}')
}

func (f *IndentFormatter) BeginArrayValue(b *Buffer, first bool) {
	f.CompactFormatter.BeginArrayValue(b, first)
	f.newline(b)
}

func (f *IndentFormatter) BeginObjectKey(b *Buffer, first bool) {
	f.CompactFormatter.BeginObjectKey(b, first)
	f.newline(b)
}

func (f *IndentFormatter) BeginObjectValue(b *Buffer) { b.WriteString(": ") }

// Format parses the JSON value in src, and appends it to dst as laid out by
// f. Strings are re-encoded with minimal escaping, and numbers in their
// shortest form.
func Format(dst, src []byte, f Formatter) ([]byte, error) {
	b := NewBuffer(dst)
	h := &formatHandler{f: f, b: b}
	if err := NewParser(src).Parse(h); err != nil {
		return dst, err
	}
	return b.Bytes(), nil
}

// Compact appends to dst the JSON value in src without insignificant
// whitespace.
func Compact(dst, src []byte) ([]byte, error) { return Format(dst, src, CompactFormatter{}) }

// Indent appends to dst an indented form of the JSON value in src. Each
// element of an array or member of an object begins on a new line starting
// with prefix followed by one copy of indent per level of nesting. The first
// line is not prefixed.
func Indent(dst, src []byte, prefix, indent string) ([]byte, error) {
	return Format(dst, src, NewIndentFormatter(prefix, indent))
}

// formatHandler is a Handler that writes each event through a Formatter.
type formatHandler struct {
	f   Formatter
	b   *Buffer
	stk []frame
}

func (h *formatHandler) beginValue() {
	if len(h.stk) == 0 {
		return
	}
	top := &h.stk[len(h.stk)-1]
	if top.object {
		h.f.BeginObjectValue(h.b)
	} else {
		h.f.BeginArrayValue(h.b, top.count == 0)
		top.count++
	}
}

func (h *formatHandler) endValue() {
	if len(h.stk) == 0 {
		return
	}
	if h.stk[len(h.stk)-1].object {
		h.f.EndObjectValue(h.b)
	} else {
		h.f.EndArrayValue(h.b)
	}
}

func (h *formatHandler) Null() error {
	h.beginValue()
	h.f.WriteNull(h.b)
	h.endValue()
	return nil
}

func (h *formatHandler) Bool(v bool) error {
	h.beginValue()
	h.f.WriteBool(h.b, v)
	h.endValue()
	return nil
}

func (h *formatHandler) Uint64(v uint64) error { return h.number(number.FromUint64(v)) }
func (h *formatHandler) Int64(v int64) error   { return h.number(number.FromInt64(v)) }
func (h *formatHandler) Float64(v float64) error {
	n, _ := number.FromFloat64(v)
	return h.number(n)
}

func (h *formatHandler) number(n number.Number) error {
	h.beginValue()
	h.f.WriteNumber(h.b, n)
	h.endValue()
	return nil
}

func (h *formatHandler) String(s []byte, _ bool) error {
	h.beginValue()
	h.f.WriteString(h.b, bytesString(s))
	h.endValue()
	return nil
}

func (h *formatHandler) Key(k []byte, _ bool) error {
	top := &h.stk[len(h.stk)-1]
	h.f.BeginObjectKey(h.b, top.count == 0)
	top.count++
	h.f.WriteString(h.b, bytesString(k))
	h.f.EndObjectKey(h.b)
	return nil
}

func (h *formatHandler) BeginArray() error {
	h.beginValue()
	h.stk = append(h.stk, frame{})
	h.f.BeginArray(h.b)
	return nil
}

func (h *formatHandler) EndArray(n int) error {
	h.stk = h.stk[:len(h.stk)-1]
	h.f.EndArray(h.b, n == 0)
	h.endValue()
	return nil
}

func (h *formatHandler) BeginObject() error {
	h.beginValue()
	h.stk = append(h.stk, frame{object: true})
	h.f.BeginObject(h.b)
	return nil
}

func (h *formatHandler) EndObject(n int) error {
	h.stk = h.stk[:len(h.stk)-1]
	h.f.EndObject(h.b, n == 0)
	h.endValue()
	return nil
}
