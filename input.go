// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"unicode/utf8"
	"unsafe"
)

// invalidUTF8 returns the offset of the first byte of data that does not
// begin a valid UTF-8 sequence, or -1 if data is valid.
func invalidUTF8(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for i := 0; i < len(data); {
		if data[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, n := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && n == 1 {
			return i
		}
		i += n
	}
	return -1
}

// stringBytes returns a read-only view of the bytes of s.
func stringBytes(s string) []byte { return unsafe.Slice(unsafe.StringData(s), len(s)) }

// bytesString returns a string view of b, which must not be modified while
// the string is in use.
func bytesString(b []byte) string { return unsafe.String(unsafe.SliceData(b), len(b)) }

// DecodeAny parses a single JSON value from data and returns it as a Go
// value. Objects become map[string]any, in which the last of any duplicate
// keys wins; arrays become []any. Integers become int64 when they fit and
// uint64 otherwise; other numbers become float64.
func DecodeAny(data []byte) (any, error) {
	var b anyBuilder
	if err := NewParser(data).Decode(&b); err != nil {
		return nil, err
	}
	return b.stk[0], nil
}

// anyBuilder is a Handler that constructs Go values.
type anyBuilder struct {
	stk  []any    // pending values; containers are finished at their end event
	base []int    // offsets in stk of open containers
	keys []string // keys of pending object members
}

func (b *anyBuilder) push(v any) error { b.stk = append(b.stk, v); return nil }

func (b *anyBuilder) Null() error             { return b.push(nil) }
func (b *anyBuilder) Bool(v bool) error       { return b.push(v) }
func (b *anyBuilder) Int64(v int64) error     { return b.push(v) }
func (b *anyBuilder) Float64(v float64) error { return b.push(v) }

func (b *anyBuilder) Uint64(v uint64) error {
	if int64(v) >= 0 {
		return b.push(int64(v))
	}
	return b.push(v)
}

func (b *anyBuilder) String(s []byte, _ bool) error { return b.push(string(s)) }
func (b *anyBuilder) Key(k []byte, _ bool) error {
	b.keys = append(b.keys, string(k))
	return nil
}

func (b *anyBuilder) BeginArray() error  { b.base = append(b.base, len(b.stk)); return nil }
func (b *anyBuilder) BeginObject() error { b.base = append(b.base, len(b.stk)); return nil }

func (b *anyBuilder) EndArray(n int) error {
	i := b.pop()
	arr := make([]any, n)
	copy(arr, b.stk[i:])
	b.stk = append(b.stk[:i], arr)
	return nil
}

func (b *anyBuilder) EndObject(n int) error {
	i := b.pop()
	obj := make(map[string]any, n)
	keys := b.keys[len(b.keys)-n:]
	for j, v := range b.stk[i:] {
		obj[keys[j]] = v
	}
	b.keys = b.keys[:len(b.keys)-n]
	b.stk = append(b.stk[:i], obj)
	return nil
}

func (b *anyBuilder) pop() int {
	i := b.base[len(b.base)-1]
	b.base = b.base[:len(b.base)-1]
	return i
}
