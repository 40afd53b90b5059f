// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"
	"iter"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/number"
)

// A Value is a handle to a JSON value stored in an [Arena]. The zero Value
// is invalid, and reports kind jsimd.Invalid.
//
// A Value is a reference: copies of a Value denote the same stored value, and
// a modification through one copy is visible through all of them. A value
// must not be added to itself or to any of its descendants.
type Value struct {
	a *Arena
	i uint32
}

func (v Value) node() *node { return v.a.node(v.i) }

// Arena returns the arena that stores v, or nil for the zero Value.
func (v Value) Arena() *Arena { return v.a }

// IsValid reports whether v refers to a stored value.
func (v Value) IsValid() bool { return v.a != nil }

// Kind reports the kind of v.
func (v Value) Kind() jsimd.Kind {
	if v.a == nil {
		return jsimd.Invalid
	}
	return v.node().kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind() == jsimd.Null }

// Bool returns the value of a Boolean, and reports whether v is a Boolean.
func (v Value) Bool() (bool, bool) {
	if v.Kind() != jsimd.Bool {
		return false, false
	}
	return v.node().bv, true
}

// Number returns the value of a number, and reports whether v is a number.
func (v Value) Number() (number.Number, bool) {
	if v.Kind() != jsimd.Number {
		return number.Number{}, false
	}
	return v.node().num, true
}

// Int64 returns the value of a number as an int64, and reports whether v is
// an integer in range.
func (v Value) Int64() (int64, bool) {
	n, ok := v.Number()
	if !ok {
		return 0, false
	}
	return n.Int64()
}

// Uint64 returns the value of a number as a uint64, and reports whether v is
// a non-negative integer in range.
func (v Value) Uint64() (uint64, bool) {
	n, ok := v.Number()
	if !ok {
		return 0, false
	}
	return n.Uint64()
}

// Float64 returns the value of a number as a float64, and reports whether v
// is a number.
func (v Value) Float64() (float64, bool) {
	n, ok := v.Number()
	if !ok {
		return 0, false
	}
	return n.Float64(), true
}

// Str returns the value of a string, and reports whether v is a string.
func (v Value) Str() (string, bool) {
	if v.Kind() != jsimd.String {
		return "", false
	}
	return v.node().str, true
}

// Len reports the number of elements of an array or members of an object.
// It returns 0 for other values.
func (v Value) Len() int {
	switch v.Kind() {
	case jsimd.Array:
		return len(v.node().kids)
	case jsimd.Object:
		return len(v.node().kids) / 2
	}
	return 0
}

func (v Value) at(i int) Value { return Value{a: v.a, i: v.node().kids[i]} }

func (v Value) mustKind(k jsimd.Kind, op string) {
	if got := v.Kind(); got != k {
		panic(fmt.Sprintf("ast: %s of %v value", op, got))
	}
}

// Index returns element i of an array. It panics if v is not an array or if
// i is out of range.
func (v Value) Index(i int) Value {
	v.mustKind(jsimd.Array, "Index")
	return v.at(i)
}

// Member returns the key and value of member i of an object. It panics if v
// is not an object or if i is out of range.
func (v Value) Member(i int) (string, Value) {
	v.mustKind(jsimd.Object, "Member")
	k, _ := v.at(2 * i).Str()
	return k, v.at(2*i + 1)
}

// Get returns the value of the first member of an object with the given key,
// and reports whether one was found.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind() != jsimd.Object {
		return Value{}, false
	}
	if i := v.find(key); i >= 0 {
		return v.at(i + 1), true
	}
	return Value{}, false
}

// find returns the offset in the children of object v of the first key equal
// to key, or -1.
func (v Value) find(key string) int {
	kids := v.node().kids
	for i := 0; i < len(kids); i += 2 {
		if v.a.node(kids[i]).str == key {
			return i
		}
	}
	return -1
}

// Elems returns an iterator over the elements of an array and their offsets.
// It yields nothing if v is not an array.
func (v Value) Elems() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if v.Kind() != jsimd.Array {
			return
		}
		for i := range v.Len() {
			if !yield(i, v.at(i)) {
				return
			}
		}
	}
}

// Members returns an iterator over the members of an object in order.
// Duplicate keys are reported once per occurrence. It yields nothing if v is
// not an object.
func (v Value) Members() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if v.Kind() != jsimd.Object {
			return
		}
		for i := range v.Len() {
			if !yield(v.Member(i)) {
				return
			}
		}
	}
}

// Pointer returns the value at the given path below v. Each path element is
// a string key, an int index, or a jsimd.PathElem, as for jsimd.NewPath.
func (v Value) Pointer(path ...any) (Value, error) { return v.At(jsimd.NewPath(path...).All()) }

// At returns the value below v at the path produced by seq. A missing key or
// out-of-range index reports an error matching jsimd.ErrNotFound; a path
// step that does not fit the type of the value reports jsimd.ErrType.
func (v Value) At(seq iter.Seq[jsimd.PathElem]) (Value, error) {
	cur := v
	for e := range seq {
		if k, ok := e.Key(); ok {
			if cur.Kind() != jsimd.Object {
				return Value{}, fmt.Errorf("key %q in %v: %w", k, cur.Kind(), jsimd.ErrType)
			}
			next, ok := cur.Get(k)
			if !ok {
				return Value{}, fmt.Errorf("key %q: %w", k, jsimd.ErrNotFound)
			}
			cur = next
		} else {
			i, _ := e.Index()
			if cur.Kind() != jsimd.Array {
				return Value{}, fmt.Errorf("index %d in %v: %w", i, cur.Kind(), jsimd.ErrType)
			} else if i >= cur.Len() {
				return Value{}, fmt.Errorf("index %d of %d: %w", i, cur.Len(), jsimd.ErrNotFound)
			}
			cur = cur.at(i)
		}
	}
	return cur, nil
}

// Equal reports whether a and b are structurally equal. Numbers are equal if
// they have the same numeric value. Objects are equal if they have the same
// number of members, and for each key, the nth occurrence of that key in a
// has a value equal to the nth occurrence in b. The order of members is not
// significant.
func Equal(a, b Value) bool {
	if a.a == b.a && a.i == b.i {
		return true
	}
	ka := a.Kind()
	if ka != b.Kind() {
		return false
	}
	switch ka {
	case jsimd.Null, jsimd.Invalid:
		return true
	case jsimd.Bool:
		return a.node().bv == b.node().bv
	case jsimd.Number:
		return a.node().num.Equal(b.node().num)
	case jsimd.String:
		return a.node().str == b.node().str
	case jsimd.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := range a.Len() {
			if !Equal(a.at(i), b.at(i)) {
				return false
			}
		}
		return true
	case jsimd.Object:
		if a.Len() != b.Len() {
			return false
		}
		byKey := make(map[string][]Value)
		for k, v := range b.Members() {
			byKey[k] = append(byKey[k], v)
		}
		seen := make(map[string]int)
		for k, v := range a.Members() {
			n := seen[k]
			if n >= len(byKey[k]) || !Equal(v, byKey[k][n]) {
				return false
			}
			seen[k] = n + 1
		}
		return true
	}
	return false
}
