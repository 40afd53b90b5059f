// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/number"
)

// Parse parses a single JSON value from data into a new document. The input
// is copied into the arena and unescaped there, so the document does not
// alias data. The input is checked for valid UTF-8.
func Parse(data []byte) (Document, error) {
	a := NewArena()
	v, err := parse(a, a.retain(data), func(p *jsimd.Parser) { p.InPlace(true) }, false)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(v), nil
}

// ParseUnchecked is as Parse, but does not check that the input is valid
// UTF-8. Invalid byte sequences in strings are kept as they are.
func ParseUnchecked(data []byte) (Document, error) {
	a := NewArena()
	v, err := parse(a, a.retain(data), func(p *jsimd.Parser) { p.InPlace(true).CheckUTF8(false) }, false)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(v), nil
}

// ParseBorrowed parses a single JSON value from data into a new document.
// Strings that contain no escapes alias data rather than being copied, so the
// caller must not modify data while the document is in use. Values copied
// from this document into another arena do not alias data.
func ParseBorrowed(data []byte) (Document, error) {
	a := NewArena()
	v, err := parse(a, data, nil, true)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(v), nil
}

// ParseString parses a single JSON value from s into a new document. Strings
// that contain no escapes share storage with s.
func ParseString(s string) (Document, error) {
	a := NewArena()
	b := getBuilder(a, false)
	defer putBuilder(b)
	if err := jsimd.NewParserString(s).Parse(b); err != nil {
		return Document{}, err
	}
	return NewDocument(b.result()), nil
}

// ParseInto parses a single JSON value from data into the existing arena a.
// The input is copied as for Parse.
func ParseInto(a *Arena, data []byte) (Value, error) {
	return parse(a, a.retain(data), func(p *jsimd.Parser) { p.InPlace(true) }, false)
}

func parse(a *Arena, data []byte, opts func(*jsimd.Parser), ext bool) (Value, error) {
	b := getBuilder(a, ext)
	defer putBuilder(b)
	p := jsimd.NewParser(data)
	if opts != nil {
		opts(p)
	}
	if err := p.Parse(b); err != nil {
		return Value{}, err
	}
	return b.result(), nil
}

func getBuilder(a *Arena, ext bool) *builder {
	b := builderPool.Get().(*builder)
	b.a, b.ext = a, ext
	return b
}

func putBuilder(b *builder) {
	b.a, b.stk = nil, b.stk[:0]
	builderPool.Put(b)
}

// A builder is a jsimd.Handler that stores parsed values in an arena. The
// indexes of pending values are kept on a flat stack; each container is
// stored in one block when it ends.
type builder struct {
	a   *Arena
	ext bool // borrowed text aliases memory the arena does not own
	stk []uint32
}

func (b *builder) result() Value { return Value{a: b.a, i: b.stk[0]} }

func (b *builder) push(n node) error {
	i, err := b.a.alloc(n)
	if err != nil {
		return err
	}
	b.stk = append(b.stk, i)
	return nil
}

func (b *builder) text(s []byte, borrowed bool) node {
	if !borrowed {
		return node{kind: jsimd.String, str: b.a.intern(s)}
	}
	return node{kind: jsimd.String, str: bytesString(s), ext: b.ext}
}

// finish replaces the last k stack entries with a container holding them.
func (b *builder) finish(kind jsimd.Kind, k int) error {
	base := len(b.stk) - k
	kids := b.a.allocKids(k, k)
	copy(kids, b.stk[base:])
	b.stk = b.stk[:base]
	return b.push(node{kind: kind, kids: kids})
}

func (b *builder) Null() error           { return b.push(node{kind: jsimd.Null}) }
func (b *builder) Bool(v bool) error     { return b.push(node{kind: jsimd.Bool, bv: v}) }
func (b *builder) Uint64(v uint64) error { return b.number(number.FromUint64(v)) }
func (b *builder) Int64(v int64) error   { return b.number(number.FromInt64(v)) }

func (b *builder) Float64(v float64) error {
	n, ok := number.FromFloat64(v)
	if !ok {
		return jsimd.ErrRange
	}
	return b.number(n)
}

func (b *builder) number(n number.Number) error { return b.push(node{kind: jsimd.Number, num: n}) }

func (b *builder) String(s []byte, borrowed bool) error { return b.push(b.text(s, borrowed)) }
func (b *builder) Key(k []byte, borrowed bool) error    { return b.push(b.text(k, borrowed)) }

func (b *builder) BeginArray() error     { return nil }
func (b *builder) EndArray(n int) error  { return b.finish(jsimd.Array, n) }
func (b *builder) BeginObject() error    { return nil }
func (b *builder) EndObject(n int) error { return b.finish(jsimd.Object, 2*n) }
