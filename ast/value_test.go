// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"errors"
	"math"
	"testing"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/ast"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": 2
    }
  ],
  "y": {
    "hello": "there"
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  }
}`

func TestPointer(t *testing.T) {
	v := mustParse(t, testJSON).Root()
	list, _ := v.Get("list")
	xyz, _ := v.Get("xyz")
	d, _ := xyz.Get("d")

	tests := []struct {
		name string
		path []any
		want ast.Value
		fail error
	}{
		{"NilInput", nil, v, nil},
		{"NoMatch", []any{"nonesuch"}, ast.Value{}, jsimd.ErrNotFound},
		{"WrongType", []any{11}, ast.Value{}, jsimd.ErrType},
		{"KeyInArray", []any{"list", "x"}, ast.Value{}, jsimd.ErrType},

		{"ArrayPos", []any{"list", 1}, list.Index(1), nil},
		{"ArrayRange", []any{"o", 25}, ast.Value{}, jsimd.ErrNotFound},
		{"ObjPath", []any{"xyz", "d"}, d, nil},
		{"PathElem", []any{jsimd.Key("list"), jsimd.Index(0)}, list.Index(0), nil},
	}
	opt := cmp.Comparer(ast.Equal)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Pointer(tc.path...)
			if tc.fail != nil {
				if !errors.Is(err, tc.fail) {
					t.Fatalf("Pointer %v: got err %v, want %v", tc.path, err, tc.fail)
				}
				t.Logf("Got expected error: %v", err)
			} else if err != nil {
				t.Fatalf("Pointer %v: unexpected error: %v", tc.path, err)
			}
			if diff := cmp.Diff(tc.want, got, opt); diff != "" {
				t.Errorf("Wrong result (-want, +got):\n%s", diff)
			} else if err == nil {
				t.Logf("Found %s OK", got.JSON())
			}
		})
	}
}

func TestString(t *testing.T) {
	a := ast.NewArena()
	null := ast.Must(a.Null())
	flag := func(b bool) ast.Value { return ast.Must(a.Bool(b)) }
	str := func(s string) ast.Value { return ast.Must(a.String(s)) }
	num := func(z int64) ast.Value { return ast.Must(a.Int(z)) }
	arr := func(vs ...ast.Value) ast.Value { return ast.Must(a.NewArray(vs...)) }
	obj := func(ms ...ast.Member) ast.Value { return ast.Must(a.NewObject(ms...)) }

	tests := []struct {
		input ast.Value
		want  string
	}{
		{ast.Value{}, "null"},
		{null, "null"},

		{flag(false), "false"},
		{flag(true), "true"},

		{str(""), `""`},
		{str("a \t b"), `"a \t b"`},
		{ast.Must(a.StaticString("static")), `"static"`},

		{ast.Must(a.Float(-0.00239)), `-0.00239`},
		{ast.Must(a.Float(math.Copysign(0, -1))), `-0`},
		{ast.Must(a.Uint(math.MaxUint64)), `18446744073709551615`},

		{num(0), `0`},
		{num(15), `15`},
		{num(-25), `-25`},

		{arr(), `[]`},
		{arr(flag(false)), `[false]`},
		{arr(flag(true), num(199)), `[true,199]`},
		{arr(str("free"), str("your"), str("mind")), `["free","your","mind"]`},

		{obj(), `{}`},
		{obj(ast.Field("xs", null)), `{"xs":null}`},
		{obj(
			ast.Field("name", str("Dennis")),
			ast.Field("age", num(37)),
			ast.Field("isOld", flag(false)),
		), `{"name":"Dennis","age":37,"isOld":false}`},

		{obj(
			ast.Field("values", arr(num(5), num(10), flag(true))),
			ast.Field("page", obj(
				ast.Field("token", str("xyz-pdq-zvm")),
				ast.Field("count", num(100)),
			)),
		), `{"values":[5,10,true],"page":{"token":"xyz-pdq-zvm","count":100}}`},
	}
	for _, test := range tests {
		got := test.input.JSON()
		if got != test.want {
			t.Errorf("Got:  %s\nWant: %s", got, test.want)
		}
	}
}

func TestAccessors(t *testing.T) {
	v := mustParse(t, `{"b": true, "u": 12, "i": -7, "f": 2.5, "s": "str", "n": null}`).Root()
	get := func(key string) ast.Value { return ast.Must(v.Pointer(key)) }

	if b, ok := get("b").Bool(); !ok || !b {
		t.Errorf("Bool: got %v, %v", b, ok)
	}
	if u, ok := get("u").Uint64(); !ok || u != 12 {
		t.Errorf("Uint64: got %v, %v", u, ok)
	}
	if _, ok := get("i").Uint64(); ok {
		t.Error("Uint64 of negative: got ok")
	}
	if i, ok := get("i").Int64(); !ok || i != -7 {
		t.Errorf("Int64: got %v, %v", i, ok)
	}
	if f, ok := get("f").Float64(); !ok || f != 2.5 {
		t.Errorf("Float64: got %v, %v", f, ok)
	}
	if _, ok := get("f").Int64(); ok {
		t.Error("Int64 of fraction: got ok")
	}
	if s, ok := get("s").Str(); !ok || s != "str" {
		t.Errorf("Str: got %q, %v", s, ok)
	}
	if _, ok := get("s").Bool(); ok {
		t.Error("Bool of string: got ok")
	}
	if !get("n").IsNull() {
		t.Error("IsNull: got false")
	}
	if n := get("s").Len(); n != 0 {
		t.Errorf("Len of string: got %d, want 0", n)
	}
	if v.Arena() == nil || !v.IsValid() {
		t.Error("Parsed value is not valid")
	}
	var zero ast.Value
	if zero.IsValid() || zero.Kind() != jsimd.Invalid {
		t.Errorf("Zero value: valid=%v kind=%v", zero.IsValid(), zero.Kind())
	}

	var keys []string
	for k, e := range v.Members() {
		keys = append(keys, k+"="+e.JSON())
		if k == "f" {
			break
		}
	}
	if diff := cmp.Diff([]string{"b=true", "u=12", "i=-7", "f=2.5"}, keys); diff != "" {
		t.Errorf("Members (-want, +got):\n%s", diff)
	}
	if k, e := v.Member(4); k != "s" || e.JSON() != `"str"` {
		t.Errorf("Member(4): got %q, %s", k, e.JSON())
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{`null`, `null`, true},
		{`null`, `false`, false},
		{`1`, `1.0`, true},
		{`-0`, `0`, true},
		{`1`, `2`, false},
		{`"a"`, `"a"`, true},
		{`"a"`, `"b"`, false},
		{`[1,2]`, `[1,2]`, true},
		{`[1,2]`, `[2,1]`, false},
		{`[1]`, `[1,1]`, false},
		{`{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{`{"a":1,"a":2}`, `{"a":1,"a":2}`, true},
		{`{"a":1,"a":2}`, `{"a":2,"a":1}`, false},
		{`{"a":1,"a":2}`, `{"a":1,"b":2}`, false},
		{`{"a":{"x":[true]}}`, `{"a":{"x":[true]}}`, true},
		{`{"a":{"x":[true]}}`, `{"a":{"x":[false]}}`, false},
	}
	for _, tc := range tests {
		a, b := mustParse(t, tc.a).Root(), mustParse(t, tc.b).Root()
		if got := ast.Equal(a, b); got != tc.want {
			t.Errorf("Equal(%s, %s): got %v, want %v", tc.a, tc.b, got, tc.want)
		}
		if got := ast.Equal(b, a); got != tc.want {
			t.Errorf("Equal(%s, %s): got %v, want %v", tc.b, tc.a, got, tc.want)
		}
	}
}

func TestValuePanics(t *testing.T) {
	v := mustParse(t, `{"a": [1, 2]}`).Root()
	arr := ast.Must(v.Pointer("a"))

	mtest.MustPanic(t, func() { v.Index(0) })
	mtest.MustPanic(t, func() { arr.Index(2) })
	mtest.MustPanic(t, func() { arr.Member(0) })
	mtest.MustPanic(t, func() { arr.RemoveAt(5) })
	mtest.MustPanic(t, func() { arr.Insert(-1, arr) })
	mtest.MustPanic(t, func() { ast.Must(v.Pointer("nonesuch")) })
}
