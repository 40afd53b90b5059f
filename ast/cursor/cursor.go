// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the structure of a JSON value.
package cursor

import (
	"fmt"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/ast"
)

// Path traverses a sequential path into the structure of v where path
// elements are as documented for the Cursor.Down method, and checks that the
// value reached has the given kind. This is a convenience wrapper for
// creating a cursor, applying path, and retrieving its value.
func Path(v ast.Value, kind jsimd.Kind, path ...any) (ast.Value, error) {
	c := New(v).Down(path...)
	if err := c.Err(); err != nil {
		return ast.Value{}, err
	}
	if got := c.Value().Kind(); got != kind {
		return ast.Value{}, fmt.Errorf("got %v, want %v: %w", got, kind, jsimd.ErrType)
	}
	return c.Value(), nil
}

// A Cursor is a pointer that navigates into the structure of an ast.Value.
type Cursor struct {
	org ast.Value
	stk []ast.Value
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin ast.Value) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() ast.Value { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() ast.Value {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the complete sequence of values from the origin to the current
// location in c.
func (c *Cursor) Path() []ast.Value {
	return append([]ast.Value{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current value, where path elements are strings (denoting object keys),
// integers (denoting offsets into arrays), jsimd.PathElem values, functions
// (see below), or nil. If the path cannot be completely consumed, traversal
// stops at the last value reached and an error is recorded. Use Err to
// recover the error.
//
// If a path element is a string, the corresponding value must be an object,
// and the string selects the value of the first member with that key.
//
// If a path element is an integer, the corresponding value must be an array.
// Negative indices count backward from the end (-1 is last, -2 second last).
// An error is reported if the index is out of bounds.
//
// If a path element is a function, the function is executed and its result
// becomes the next value in the sequence. The function must have a signature
//
//	func(ast.Value) (ast.Value, error)
//
// If the function reports an error, traversal stops and the error is recorded.
// A nil path element is ignored.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Value()
	for _, elt := range path {
		if pe, ok := elt.(jsimd.PathElem); ok {
			if k, ok := pe.Key(); ok {
				elt = k
			} else {
				elt, _ = pe.Index()
			}
		}
		switch t := elt.(type) {
		case string:
			if cur.Kind() != jsimd.Object {
				return c.setErrorf(jsimd.ErrType, "cannot traverse %v with %q", cur.Kind(), t)
			}
			next, ok := cur.Get(t)
			if !ok {
				return c.setErrorf(jsimd.ErrNotFound, "key %q", t)
			}
			cur = c.push(next)

		case int:
			if cur.Kind() != jsimd.Array {
				return c.setErrorf(jsimd.ErrType, "cannot traverse %v with %d", cur.Kind(), t)
			}
			i, ok := fixArrayBound(cur.Len(), t)
			if !ok {
				return c.setErrorf(jsimd.ErrNotFound, "array index %d out of bounds (n=%d)", i, cur.Len())
			}
			cur = c.push(cur.Index(i))

		case func(ast.Value) (ast.Value, error):
			next, err := t(cur)
			if err != nil {
				c.err = err
				return c
			}
			cur = c.push(next)

		case nil:
			// skip

		default:
			return c.setErrorf(jsimd.ErrType, "invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(v ast.Value) ast.Value { c.stk = append(c.stk, v); return v }

func (c *Cursor) setErrorf(base error, msg string, args ...any) *Cursor {
	c.err = fmt.Errorf("%s: %w", fmt.Sprintf(msg, args...), base)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
