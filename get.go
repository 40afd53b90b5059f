// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"iter"
	"slices"

	"github.com/creachadair/jsimd/internal/escape"
	"go4.org/mem"
)

// Get returns the value at the given path in data, which must contain a
// single JSON value. Each path element must be a string (an object key), an
// int (an array index), or a [PathElem]. An empty path selects the whole
// value.
//
// Get validates the portions of data it traverses, including the selected
// value, but not the remainder of the input. If an object has duplicate
// keys, the first occurrence is selected.
func Get(data []byte, path ...any) (*LazyValue, error) {
	return NewParser(data).getPath(NewPath(path...).All(), true)
}

// GetUnchecked is as [Get], but does not validate the input. If data is not
// valid JSON the result is unspecified.
func GetUnchecked(data []byte, path ...any) (*LazyValue, error) {
	return NewParser(data).getPath(NewPath(path...).All(), false)
}

// GetPath returns the value in data at the path produced by seq.
// It validates the input as [Get] does.
func GetPath(data []byte, seq iter.Seq[PathElem]) (*LazyValue, error) {
	return NewParser(data).getPath(seq, true)
}

// GetPathUnchecked is as [GetPath], but does not validate the input.
func GetPathUnchecked(data []byte, seq iter.Seq[PathElem]) (*LazyValue, error) {
	return NewParser(data).getPath(seq, false)
}

func (p *Parser) getPath(seq iter.Seq[PathElem], checked bool) (*LazyValue, error) {
	if checked {
		if err := p.start(); err != nil {
			return nil, err
		}
	}
	for e := range seq {
		var err error
		if k, ok := e.Key(); ok {
			err = p.findKey(k, checked)
		} else {
			err = p.findIndex(e.index, checked)
		}
		if err != nil {
			return nil, err
		}
	}
	span, esc, err := p.skipValue(checked)
	if err != nil {
		return nil, err
	}
	return newLazy(p.data[span.Pos:span.End], esc), nil
}

// findKey positions p at the value of the first member of the next value
// whose key is key.
func (p *Parser) findKey(key string, checked bool) error {
	c := p.next()
	if c != '{' {
		return p.unexpected(c, ExpectedObjectStart)
	}
	if c = p.next(); c == '}' {
		return p.fail(GetInEmptyObject, p.pos-1)
	}
	for {
		if c != '"' {
			return p.unexpected(c, ExpectObjectKeyOrEnd)
		}
		k, err := p.readKey(checked)
		if err != nil {
			return err
		}
		if c := p.next(); c != ':' {
			return p.unexpected(c, ExpectedColon)
		}
		if mem.B(k).EqualString(key) {
			return nil
		}
		if _, _, err := p.skipValue(checked); err != nil {
			return err
		}
		switch c = p.next(); c {
		case ',':
			c = p.next()
		case '}':
			return p.fail(GetUnknownKeyInObject, p.pos-1)
		default:
			return p.unexpected(c, ExpectedObjectCommaOrEnd)
		}
	}
}

// findIndex positions p at element i of the next value.
func (p *Parser) findIndex(i int, checked bool) error {
	if c := p.next(); c != '[' {
		return p.unexpected(c, ExpectedArrayStart)
	}
	if p.peek() == ']' {
		return p.fail(GetInEmptyArray, p.pos)
	}
	for range i {
		if _, _, err := p.skipValue(checked); err != nil {
			return err
		}
		switch c := p.next(); c {
		case ',':
		case ']':
			return p.fail(GetIndexOutOfArray, p.pos-1)
		default:
			return p.unexpected(c, ExpectedArrayCommaOrEnd)
		}
	}
	return nil
}

// readKey reads an object key whose opening quote was just consumed, and
// returns its decoded text. The result is valid until the next key is read.
func (p *Parser) readKey(checked bool) ([]byte, error) {
	start := p.pos
	if !checked {
		end, escaped := escape.SkipUnchecked(p.data, start, p.cls)
		p.pos = end
		if !escaped {
			return p.data[start:max(end-1, start)], nil
		}
	}
	s, end, borrowed, err := p.dec.Parse(p.data, start, p.scratch)
	if err != nil {
		if !checked {
			return p.data[start:max(p.pos-1, start)], nil
		}
		return nil, stringError(p.data, err, end)
	}
	if !borrowed {
		p.scratch = s[:0]
	}
	p.pos = end
	return s, nil
}

// GetMany resolves all the paths in t against data in a single traversal,
// and returns a slice with the value for each path at its slot in t.
// A path that names a missing key of a non-empty object leaves its slot nil.
// It is an error if a path descends into an empty object or array, if an
// index is past the end of its array, or if a value has the wrong type for
// the paths that descend into it. Since no value is both an object and an
// array, a tree in which keys and indexes follow the same prefix always
// fails on the value at that prefix.
//
// GetMany validates the portions of data it traverses, as [Get] does.
func GetMany(data []byte, t *PointerTree) ([]*LazyValue, error) {
	return NewParser(data).getMany(t, true)
}

// GetManyUnchecked is as [GetMany], but does not validate the input.
func GetManyUnchecked(data []byte, t *PointerTree) ([]*LazyValue, error) {
	return NewParser(data).getMany(t, false)
}

func (p *Parser) getMany(t *PointerTree, checked bool) ([]*LazyValue, error) {
	if checked {
		if err := p.start(); err != nil {
			return nil, err
		}
	}
	out := make([]*LazyValue, t.size)
	if err := p.resolve(&t.root, out, checked); err != nil {
		return nil, err
	}
	return out, nil
}

// resolve traverses the next value to satisfy the paths below n.
func (p *Parser) resolve(n *treeNode, out []*LazyValue, checked bool) error {
	if n.keys == nil && n.index == nil {
		span, esc, err := p.skipValue(checked)
		if err != nil {
			return err
		}
		p.record(n, span, esc, out)
		return nil
	}

	c := p.next()
	start := p.pos - 1
	var err error
	switch {
	case c == '{' && n.index == nil:
		err = p.resolveKeys(n, out, checked)
	case c == '[' && n.keys == nil:
		err = p.resolveIndex(n, out, checked)
	case c == '{':
		// Index paths cannot descend into an object.
		return p.unexpected(c, ExpectedArrayStart)
	case n.keys != nil:
		return p.unexpected(c, ExpectedObjectStart)
	default:
		return p.unexpected(c, ExpectedArrayStart)
	}
	if err != nil {
		return err
	}
	p.record(n, Span{Pos: start, End: p.pos}, EscapePossible, out)
	return nil
}

func (p *Parser) record(n *treeNode, span Span, esc EscapeStatus, out []*LazyValue) {
	if len(n.slots) == 0 {
		return
	}
	v := newLazy(p.data[span.Pos:span.End], esc)
	for _, slot := range n.slots {
		out[slot] = v
	}
}

// resolveKeys traverses an object whose open brace was just consumed.
func (p *Parser) resolveKeys(n *treeNode, out []*LazyValue, checked bool) error {
	var done []*treeNode
	c := p.next()
	if c == '}' {
		return p.fail(GetInEmptyObject, p.pos-1)
	}
	for {
		if c != '"' {
			return p.unexpected(c, ExpectObjectKeyOrEnd)
		}
		k, err := p.readKey(checked)
		if err != nil {
			return err
		}
		if c := p.next(); c != ':' {
			return p.unexpected(c, ExpectedColon)
		}
		if kid := n.keys[string(k)]; kid != nil && !slices.Contains(done, kid) {
			done = append(done, kid)
			err = p.resolve(kid, out, checked)
		} else {
			_, _, err = p.skipValue(checked)
		}
		if err != nil {
			return err
		}

		switch c = p.next(); c {
		case ',':
			if !checked && len(done) == len(n.keys) {
				return p.skipContainer('{', '}')
			}
			if c = p.next(); c == '}' {
				return p.fail(TrailingComma, p.pos-1)
			}
		case '}':
			return nil
		default:
			return p.unexpected(c, ExpectedObjectCommaOrEnd)
		}
	}
}

// resolveIndex traverses an array whose open bracket was just consumed.
func (p *Parser) resolveIndex(n *treeNode, out []*LazyValue, checked bool) error {
	if p.peek() == ']' {
		return p.fail(GetInEmptyArray, p.pos)
	}
	var next int // offset in n.order of the next wanted index
	for i := 0; ; i++ {
		var err error
		if next < len(n.order) && n.order[next] == i {
			err = p.resolve(n.index[i], out, checked)
			next++
		} else {
			_, _, err = p.skipValue(checked)
		}
		if err != nil {
			return err
		}

		switch c := p.next(); c {
		case ',':
			if !checked && next == len(n.order) {
				return p.skipContainer('[', ']')
			}
		case ']':
			if next < len(n.order) {
				return p.fail(GetIndexOutOfArray, p.pos-1)
			}
			return nil
		default:
			return p.unexpected(c, ExpectedArrayCommaOrEnd)
		}
	}
}
