// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/number"
)

func mustGet(t *testing.T, input string, path ...any) *jsimd.LazyValue {
	t.Helper()
	v, err := jsimd.Get([]byte(input), path...)
	if err != nil {
		t.Fatalf("Get %v: unexpected error: %v", path, err)
	}
	return v
}

func TestLazyKinds(t *testing.T) {
	const input = `{"n": null, "t": true, "f": false, "i": -12, "s": "x", "a": [], "o": {}}`
	tests := []struct {
		key  string
		want jsimd.Kind
	}{
		{"n", jsimd.Null},
		{"t", jsimd.Bool},
		{"f", jsimd.Bool},
		{"i", jsimd.Number},
		{"s", jsimd.String},
		{"a", jsimd.Array},
		{"o", jsimd.Object},
	}
	for _, tc := range tests {
		v := mustGet(t, input, tc.key)
		if got := v.Kind(); got != tc.want {
			t.Errorf("Kind %q: got %v, want %v", tc.key, got, tc.want)
		}
		if got, want := v.IsNull(), tc.want == jsimd.Null; got != want {
			t.Errorf("IsNull %q: got %v, want %v", tc.key, got, want)
		}
	}
	if got := jsimd.NewLazyValue(nil).Kind(); got != jsimd.Invalid {
		t.Errorf("Kind of empty: got %v, want %v", got, jsimd.Invalid)
	}
}

func TestLazyStr(t *testing.T) {
	const input = `{"plain": "Tom", "esc": "q\"u\tote", "bad": "a\qb"}`

	plain := mustGet(t, input, "plain")
	if got := plain.Escape(); got != jsimd.EscapeNone {
		t.Errorf("Escape plain: got %v, want %v", got, jsimd.EscapeNone)
	}
	if s, err := plain.Str(); err != nil || s != "Tom" {
		t.Errorf("Str plain: got %q, %v; want Tom, nil", s, err)
	}

	esc := mustGet(t, input, "esc")
	if got := esc.Escape(); got != jsimd.EscapeYes {
		t.Errorf("Escape esc: got %v, want %v", got, jsimd.EscapeYes)
	}
	if s, err := esc.Str(); err != nil || s != "q\"u\tote" {
		t.Errorf("Str esc: got %q, %v; want %q, nil", s, err, "q\"u\tote")
	}

	// The bad escape is only detected when the value is decoded.
	bad := jsimd.NewLazyValue([]byte(`"a\qb"`))
	if _, err := bad.Str(); !errors.Is(err, jsimd.ErrEncoding) {
		t.Errorf("Str bad: got err %v, want %v", err, jsimd.ErrEncoding)
	}

	if _, err := mustGet(t, `[1]`, 0).Str(); !errors.Is(err, jsimd.ErrType) {
		t.Errorf("Str of number: got err %v, want %v", err, jsimd.ErrType)
	}
}

func TestLazyStrConcurrent(t *testing.T) {
	v := mustGet(t, `["a\nb\nc"]`, 0)

	const numWorkers = 8
	got := make([]string, numWorkers)
	var wg sync.WaitGroup
	for i := range numWorkers {
		wg.Go(func() {
			s, err := v.Str()
			if err != nil {
				t.Errorf("Str: unexpected error: %v", err)
			}
			got[i] = s
		})
	}
	wg.Wait()
	for i, s := range got {
		if s != "a\nb\nc" {
			t.Errorf("Worker %d: got %q, want %q", i, s, "a\nb\nc")
		}
	}
}

func TestLazyNumbers(t *testing.T) {
	const input = `{"age": 37, "neg": -5, "big": 18446744073709551615, "pi": 3.25, "exp": 1e400, "s": "1"}`

	age := mustGet(t, input, "age")
	if n, err := age.Int64(); err != nil || n != 37 {
		t.Errorf("Int64 age: got %d, %v; want 37, nil", n, err)
	}
	if n, err := age.Uint64(); err != nil || n != 37 {
		t.Errorf("Uint64 age: got %d, %v; want 37, nil", n, err)
	}

	neg := mustGet(t, input, "neg")
	if n, err := neg.Int64(); err != nil || n != -5 {
		t.Errorf("Int64 neg: got %d, %v; want -5, nil", n, err)
	}
	if _, err := neg.Uint64(); !errors.Is(err, jsimd.ErrRange) {
		t.Errorf("Uint64 neg: got err %v, want %v", err, jsimd.ErrRange)
	}

	big := mustGet(t, input, "big")
	if n, err := big.Uint64(); err != nil || n != math.MaxUint64 {
		t.Errorf("Uint64 big: got %d, %v; want %d, nil", n, err, uint64(math.MaxUint64))
	}
	if _, err := big.Int64(); !errors.Is(err, jsimd.ErrRange) {
		t.Errorf("Int64 big: got err %v, want %v", err, jsimd.ErrRange)
	}

	pi := mustGet(t, input, "pi")
	if f, err := pi.Float64(); err != nil || f != 3.25 {
		t.Errorf("Float64 pi: got %v, %v; want 3.25, nil", f, err)
	}
	if _, err := pi.Int64(); !errors.Is(err, jsimd.ErrRange) {
		t.Errorf("Int64 pi: got err %v, want %v", err, jsimd.ErrRange)
	}
	if n, err := pi.Number(); err != nil || n.Kind() != number.Float {
		t.Errorf("Number pi: got %v (%v), %v; want float", n, n.Kind(), err)
	}

	// Get only skips numbers, so the overflow is reported by the accessor.
	exp := mustGet(t, input, "exp")
	if _, err := exp.Float64(); !errors.Is(err, jsimd.ErrRange) {
		t.Errorf("Float64 exp: got err %v, want %v", err, jsimd.ErrRange)
	}

	if _, err := mustGet(t, input, "s").Int64(); !errors.Is(err, jsimd.ErrType) {
		t.Errorf("Int64 of string: got err %v, want %v", err, jsimd.ErrType)
	}
	if _, err := jsimd.NewLazyValue([]byte("12x")).Number(); !errors.Is(err, jsimd.ErrSyntax) {
		t.Errorf("Number 12x: got err %v, want %v", err, jsimd.ErrSyntax)
	}
}

func TestLazyBool(t *testing.T) {
	const input = `[true, false, null]`
	if b, err := mustGet(t, input, 0).Bool(); err != nil || !b {
		t.Errorf("Bool 0: got %v, %v; want true, nil", b, err)
	}
	if b, err := mustGet(t, input, 1).Bool(); err != nil || b {
		t.Errorf("Bool 1: got %v, %v; want false, nil", b, err)
	}
	if _, err := mustGet(t, input, 2).Bool(); !errors.Is(err, jsimd.ErrType) {
		t.Errorf("Bool 2: got err %v, want %v", err, jsimd.ErrType)
	}
}

func TestLazyGet(t *testing.T) {
	v := mustGet(t, `{"a": {"b": [10, {"c": "deep"}]}}`, "a")
	w, err := v.Get("b", 1, "c")
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if s, err := w.Str(); err != nil || s != "deep" {
		t.Errorf("Str: got %q, %v; want deep, nil", s, err)
	}
}

func TestNewLazyValue(t *testing.T) {
	v := jsimd.NewLazyValue([]byte(" \n[1, 2]\t"))
	if got := v.RawString(); got != "[1, 2]" {
		t.Errorf("Raw: got %#q, want %#q", got, "[1, 2]")
	}
	if got := v.Escape(); got != jsimd.EscapePossible {
		t.Errorf("Escape: got %v, want %v", got, jsimd.EscapePossible)
	}
	if got := jsimd.NewLazyValue([]byte("15")).Escape(); got != jsimd.EscapeNone {
		t.Errorf("Escape 15: got %v, want %v", got, jsimd.EscapeNone)
	}
}

func TestOwned(t *testing.T) {
	data := []byte(`{"name": "x\ty", "n": 5}`)
	o, err := jsimd.GetOwned(data, "name")
	if err != nil {
		t.Fatalf("GetOwned: unexpected error: %v", err)
	}
	v, err := jsimd.Get(data, "n")
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	w := v.Own()

	// Clobber the input. The owned values must not change.
	for i := range data {
		data[i] = '!'
	}
	if got, want := o.RawString(), `"x\ty"`; got != want {
		t.Errorf("Owned raw: got %#q, want %#q", got, want)
	}
	if s, err := o.Str(); err != nil || s != "x\ty" {
		t.Errorf("Owned Str: got %q, %v; want %q, nil", s, err, "x\ty")
	}
	if s, err := o.Str(); err != nil || s != "x\ty" {
		t.Errorf("Owned Str again: got %q, %v; want %q, nil", s, err, "x\ty")
	}
	if n, err := w.Int64(); err != nil || n != 5 {
		t.Errorf("Owned Int64: got %d, %v; want 5, nil", n, err)
	}
}

func TestOwnKeepsDecoded(t *testing.T) {
	v := mustGet(t, `["a\/b"]`, 0)
	if _, err := v.Str(); err != nil {
		t.Fatalf("Str: unexpected error: %v", err)
	}
	if s, err := v.Own().Str(); err != nil || s != "a/b" {
		t.Errorf("Own Str: got %q, %v; want a/b, nil", s, err)
	}
}
