// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"
	"maps"
	"slices"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/number"
)

// Must returns v if err == nil, and otherwise panics. It is intended for use
// where an allocation is known to succeed, such as in an arena without a
// limit.
func Must(v Value, err error) Value {
	if err != nil {
		panic(err)
	}
	return v
}

func (a *Arena) newValue(n node) (Value, error) {
	i, err := a.alloc(n)
	if err != nil {
		return Value{}, err
	}
	return Value{a: a, i: i}, nil
}

// Null returns a new null value.
func (a *Arena) Null() (Value, error) { return a.newValue(node{kind: jsimd.Null}) }

// Bool returns a new Boolean value.
func (a *Arena) Bool(b bool) (Value, error) { return a.newValue(node{kind: jsimd.Bool, bv: b}) }

// Int returns a new number with integer value z.
func (a *Arena) Int(z int64) (Value, error) { return a.Number(number.FromInt64(z)) }

// Uint returns a new number with unsigned integer value z.
func (a *Arena) Uint(z uint64) (Value, error) { return a.Number(number.FromUint64(z)) }

// Float returns a new number with value f. It reports an error matching
// jsimd.ErrRange if f is not finite.
func (a *Arena) Float(f float64) (Value, error) {
	n, ok := number.FromFloat64(f)
	if !ok {
		return Value{}, fmt.Errorf("float %v: %w", f, jsimd.ErrRange)
	}
	return a.Number(n)
}

// Number returns a new number with value n.
func (a *Arena) Number(n number.Number) (Value, error) {
	if !n.IsValid() {
		return Value{}, fmt.Errorf("invalid number: %w", jsimd.ErrType)
	}
	return a.newValue(node{kind: jsimd.Number, num: n})
}

// String returns a new string value with a copy of s.
func (a *Arena) String(s string) (Value, error) {
	return a.newValue(node{kind: jsimd.String, str: a.intern(stringBytes(s))})
}

// StaticString returns a new string value that refers to s without copying.
func (a *Arena) StaticString(s string) (Value, error) {
	return a.newValue(node{kind: jsimd.String, str: s})
}

// NewArray returns a new array with the given elements. Elements stored in
// other arenas are copied into a.
func (a *Arena) NewArray(elems ...Value) (Value, error) {
	kids := a.allocKids(len(elems), len(elems))
	for i, e := range elems {
		k, err := a.adopt(e)
		if err != nil {
			return Value{}, err
		}
		kids[i] = k
	}
	return a.newValue(node{kind: jsimd.Array, kids: kids})
}

// A Member is a key and value for constructing an object.
type Member struct {
	Key   string
	Value Value
}

// Field is a convenience function to construct a Member.
func Field(key string, v Value) Member { return Member{Key: key, Value: v} }

// NewObject returns a new object with the given members in order. Duplicate
// keys are kept. Values stored in other arenas are copied into a.
func (a *Arena) NewObject(members ...Member) (Value, error) {
	kids := a.allocKids(2*len(members), 2*len(members))
	for i, m := range members {
		k, v, err := a.member(m.Key, m.Value)
		if err != nil {
			return Value{}, err
		}
		kids[2*i], kids[2*i+1] = k, v
	}
	return a.newValue(node{kind: jsimd.Object, kids: kids})
}

// member allocates a key node and adopts v for an object member.
func (a *Arena) member(key string, v Value) (uint32, uint32, error) {
	k, err := a.alloc(node{kind: jsimd.String, str: a.intern(stringBytes(key))})
	if err != nil {
		return 0, 0, err
	}
	vi, err := a.adopt(v)
	if err != nil {
		return 0, 0, err
	}
	return k, vi, nil
}

// adopt returns the index in a of a value equal to v. A value stored in a is
// shared; any other value is copied into a.
func (a *Arena) adopt(v Value) (uint32, error) {
	if v.a == a {
		return v.i, nil
	} else if v.a == nil {
		return 0, fmt.Errorf("invalid value: %w", jsimd.ErrType)
	}
	return a.copyNode(v.node(), v.a)
}

// copyNode copies n, which is stored in src, and its descendants into a.
// Strings that src owns are immutable and are shared with the copy; strings
// that alias external memory are copied.
func (a *Arena) copyNode(n *node, src *Arena) (uint32, error) {
	cp := *n
	if cp.ext {
		cp.str, cp.ext = a.intern(stringBytes(cp.str)), false
	}
	cp.kids = nil
	if len(n.kids) != 0 {
		cp.kids = a.allocKids(len(n.kids), len(n.kids))
		for j, k := range n.kids {
			c, err := a.copyNode(src.node(k), src)
			if err != nil {
				return 0, err
			}
			cp.kids[j] = c
		}
	}
	return a.alloc(cp)
}

// grow ensures that the children of n have room for extra more slots,
// doubling the capacity as needed.
func (v Value) grow(n *node, extra int) {
	if len(n.kids)+extra <= cap(n.kids) {
		return
	}
	c := max(2*cap(n.kids), len(n.kids)+extra, 4)
	kids := v.a.allocKids(len(n.kids), c)
	copy(kids, n.kids)
	n.kids = kids
}

func (v Value) checkKind(k jsimd.Kind, op string) error {
	if got := v.Kind(); got != k {
		return fmt.Errorf("%s on %v value: %w", op, got, jsimd.ErrType)
	}
	return nil
}

func checkIndex(i, n int) {
	if i < 0 || i > n {
		panic(fmt.Sprintf("ast: index %d out of range [0:%d]", i, n))
	}
}

// Append adds the given values to the end of an array. Values stored in
// another arena are copied; values stored in the same arena are shared.
func (v Value) Append(elems ...Value) error {
	if err := v.checkKind(jsimd.Array, "Append"); err != nil {
		return err
	}
	idx := make([]uint32, len(elems))
	for i, e := range elems {
		k, err := v.a.adopt(e)
		if err != nil {
			return err
		}
		idx[i] = k
	}
	n := v.node()
	v.grow(n, len(idx))
	n.kids = append(n.kids, idx...)
	return nil
}

// Insert inserts elem into an array before offset i. It panics if i is out
// of range.
func (v Value) Insert(i int, elem Value) error {
	if err := v.checkKind(jsimd.Array, "Insert"); err != nil {
		return err
	}
	checkIndex(i, v.Len())
	k, err := v.a.adopt(elem)
	if err != nil {
		return err
	}
	n := v.node()
	v.grow(n, 1)
	n.kids = append(n.kids, 0)
	copy(n.kids[i+1:], n.kids[i:])
	n.kids[i] = k
	return nil
}

// SetIndex replaces element i of an array with elem. It panics if i is out
// of range.
func (v Value) SetIndex(i int, elem Value) error {
	if err := v.checkKind(jsimd.Array, "SetIndex"); err != nil {
		return err
	}
	checkIndex(i, v.Len()-1)
	k, err := v.a.adopt(elem)
	if err != nil {
		return err
	}
	v.node().kids[i] = k
	return nil
}

// RemoveAt removes element i of an array. It panics if i is out of range.
func (v Value) RemoveAt(i int) error {
	if err := v.checkKind(jsimd.Array, "RemoveAt"); err != nil {
		return err
	}
	checkIndex(i, v.Len()-1)
	n := v.node()
	n.kids = append(n.kids[:i], n.kids[i+1:]...)
	return nil
}

// Set sets the value of the first member of an object with the given key,
// or adds a member if there is none.
func (v Value) Set(key string, val Value) error {
	if err := v.checkKind(jsimd.Object, "Set"); err != nil {
		return err
	}
	if i := v.find(key); i >= 0 {
		k, err := v.a.adopt(val)
		if err != nil {
			return err
		}
		v.node().kids[i+1] = k
		return nil
	}
	return v.Add(key, val)
}

// Add adds a member to the end of an object, even if its key is already
// present.
func (v Value) Add(key string, val Value) error {
	if err := v.checkKind(jsimd.Object, "Add"); err != nil {
		return err
	}
	k, vi, err := v.a.member(key, val)
	if err != nil {
		return err
	}
	n := v.node()
	v.grow(n, 2)
	n.kids = append(n.kids, k, vi)
	return nil
}

// Remove removes the first member of an object with the given key, and
// reports whether one was found.
func (v Value) Remove(key string) bool {
	if v.Kind() != jsimd.Object {
		return false
	}
	i := v.find(key)
	if i < 0 {
		return false
	}
	n := v.node()
	n.kids = append(n.kids[:i], n.kids[i+2:]...)
	return true
}

// FromAny constructs a value in a from a Go value of the kind produced by
// jsimd.DecodeAny: nil, bool, string, int, int64, uint64, float64, []any, and
// map[string]any. Map keys are added in sorted order.
func (a *Arena) FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return a.Null()
	case bool:
		return a.Bool(t)
	case string:
		return a.String(t)
	case int:
		return a.Int(int64(t))
	case int64:
		return a.Int(t)
	case uint64:
		return a.Uint(t)
	case float64:
		return a.Float(t)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := a.FromAny(e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return a.NewArray(elems...)
	case map[string]any:
		members := make([]Member, 0, len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			v, err := a.FromAny(t[k])
			if err != nil {
				return Value{}, err
			}
			members = append(members, Field(k, v))
		}
		return a.NewObject(members...)
	}
	return Value{}, fmt.Errorf("unsupported type %T: %w", x, jsimd.ErrType)
}
