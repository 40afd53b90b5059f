// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsimd_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/number"
	"github.com/google/go-cmp/cmp"
)

var parseTests = []struct {
	input string
	want  string
}{
	{"true", "Bool true"},
	{" null ", "Null"},
	{"false\n", "Bool false"},

	{"0", "Uint 0"},
	{"-6", "Int -6"},
	{"-6.32", "Float -6.32"},
	{"1e2", "Float 100"},
	{"-0", "Float -0"},
	{"18446744073709551615", "Uint 18446744073709551615"},
	{"18446744073709551616", "Float 1.8446744073709552e+19"},

	{`"a b c"`, `String "a b c"`},
	{`"a\tb"`, `String "a\tb" [copy]`},
	{`"\"quoted\""`, `String "\"quoted\"" [copy]`},

	{`{}`, "BeginObject\nEndObject 0"},
	{`[]`, "BeginArray\nEndArray 0"},

	{`{"a":15}`, `
BeginObject
Key "a"
Uint 15
EndObject 1`},

	{`{"x":null, "y":[true, {"z": []}]}`, `
BeginObject
Key "x"
Null
Key "y"
BeginArray
Bool true
BeginObject
Key "z"
BeginArray
EndArray 0
EndObject 1
EndArray 2
EndObject 2`},

	// Duplicate keys are reported in order.
	{`{"a":1,"a":2}`, `
BeginObject
Key "a"
Uint 1
Key "a"
Uint 2
EndObject 2`},

	{`{"k\nk": "v"}`, `
BeginObject
Key "k\nk" [copy]
String "v"
EndObject 1`},

	// Whitespace runs longer than a lane.
	{"[" + strings.Repeat(" ", 100) + "1" + strings.Repeat("\n", 70) + ",\t2 ]", `
BeginArray
Uint 1
Uint 2
EndArray 2`},
}

func TestParse(t *testing.T) {
	for _, test := range parseTests {
		for _, mode := range parseModes {
			th := new(testHandler)
			if err := mode.parse(jsimd.NewParser([]byte(test.input)), th); err != nil {
				t.Errorf("%s(%#q) failed: %v", mode.name, test.input, err)
			}
			if diff := diffStrings(test.want, th.output()); diff != "" {
				t.Errorf("%s(%#q) output: (-want, +got)\n%s", mode.name, test.input, diff)
			}
		}
	}
}

func TestScalarClassifier(t *testing.T) {
	for _, test := range parseTests {
		th := new(testHandler)
		if err := jsimd.NewParser([]byte(test.input)).Scalar(true).Parse(th); err != nil {
			t.Errorf("Parse(%#q) failed: %v", test.input, err)
		}
		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Parse(%#q) output: (-want, +got)\n%s", test.input, diff)
		}
	}
}

var parseModes = []struct {
	name  string
	parse func(*jsimd.Parser, jsimd.Handler) error
}{
	{"Parse", (*jsimd.Parser).Parse},
	{"Decode", (*jsimd.Parser).Decode},
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input  string
		code   jsimd.ErrorCode
		offset int
	}{
		{``, jsimd.EOFWhileParsing, 0},
		{`   `, jsimd.EOFWhileParsing, 3},

		// Unbalanced or malformed objects.
		{`{`, jsimd.EOFWhileParsing, 1},
		{`}`, jsimd.InvalidJSONValue, 0},
		{`{false:1}`, jsimd.ExpectObjectKeyOrEnd, 1},
		{`{"true":}`, jsimd.InvalidJSONValue, 8},
		{`{"true":1,`, jsimd.EOFWhileParsing, 10},
		{`{"a":1,}`, jsimd.TrailingComma, 7},
		{`{"a" 1}`, jsimd.ExpectedColon, 5},
		{`{"a":1 "b":2}`, jsimd.ExpectedObjectCommaOrEnd, 7},
		{`{"a":1]`, jsimd.ExpectedObjectCommaOrEnd, 6},

		// Unbalanced or malformed arrays.
		{`[`, jsimd.EOFWhileParsing, 1},
		{`]`, jsimd.InvalidJSONValue, 0},
		{`[15,`, jsimd.EOFWhileParsing, 4},
		{`[15,]`, jsimd.TrailingComma, 4},
		{`[,1]`, jsimd.InvalidJSONValue, 1},
		{`[1 2]`, jsimd.ExpectedArrayCommaOrEnd, 3},
		{`[1}`, jsimd.ExpectedArrayCommaOrEnd, 2},
		{`[01]`, jsimd.ExpectedArrayCommaOrEnd, 2},

		// Trailing data.
		{`1 2`, jsimd.TrailingCharacters, 2},
		{`01`, jsimd.TrailingCharacters, 1},
		{`{} x`, jsimd.TrailingCharacters, 3},

		// Literals.
		{`tru`, jsimd.EOFWhileParsing, 3},
		{`trux`, jsimd.InvalidLiteral, 3},
		{`nul1`, jsimd.InvalidLiteral, 3},
		{`fals`, jsimd.EOFWhileParsing, 4},
		{`forthright`, jsimd.InvalidLiteral, 1},

		// Strings.
		{`"abc`, jsimd.EOFWhileParsing, 4},
		{"\"a\x01\"", jsimd.ControlCharacter, 2},
		{`"\x"`, jsimd.InvalidEscape, 2},
		{"\"\xff\"", jsimd.InvalidUTF8, 1},

		// Numbers.
		{`-`, jsimd.EOFWhileParsing, 1},
		{`-x`, jsimd.InvalidNumber, 1},
		{`1.`, jsimd.EOFWhileParsing, 2},
		{`1.x`, jsimd.InvalidNumber, 2},
		{`1e400`, jsimd.FloatMustBeFinite, 0},
		{`[2, -1e999]`, jsimd.FloatMustBeFinite, 4},
	}
	for _, test := range tests {
		for _, mode := range parseModes {
			err := mode.parse(jsimd.NewParser([]byte(test.input)), new(testHandler))
			var jerr *jsimd.Error
			if !errors.As(err, &jerr) {
				t.Errorf("%s(%#q): got error %v, want *jsimd.Error", mode.name, test.input, err)
				continue
			}
			if jerr.Code != test.code || jerr.Offset != test.offset {
				t.Errorf("%s(%#q): got %v at %d, want %v at %d",
					mode.name, test.input, jerr.Code, jerr.Offset, test.code, test.offset)
			}
		}
	}
}

func TestErrorMessage(t *testing.T) {
	input := "{\n  \"a\": [1, 2,,]\n}"
	err := jsimd.NewParser([]byte(input)).Parse(new(testHandler))
	var jerr *jsimd.Error
	if !errors.As(err, &jerr) {
		t.Fatalf("Parse: got %v, want *jsimd.Error", err)
	}
	if got, want := jerr.Location(), (jsimd.LineCol{Line: 2, Column: 13}); got != want {
		t.Errorf("Location: got %v, want %v", got, want)
	}

	const want = "invalid JSON value at line 2 column 13\n\n\t: [1, 2,,] }\n\t........^...\n"
	if got := err.Error(); got != want {
		t.Errorf("Error: got %q, want %q", got, want)
	}

	if !errors.Is(err, jsimd.ErrSyntax) {
		t.Errorf("Error %v is not ErrSyntax", err)
	}
	if errors.Is(err, jsimd.ErrEOF) {
		t.Errorf("Error %v is unexpectedly ErrEOF", err)
	}
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		input string
		want  []error
	}{
		{`[1,`, []error{jsimd.ErrEOF, jsimd.ErrSyntax}},
		{`[1,,`, []error{jsimd.ErrSyntax}},
		{`"\` + `ud800x"`, []error{jsimd.ErrEncoding}},
		{`1e999`, []error{jsimd.ErrRange}},
		{"\xc0", []error{jsimd.ErrEncoding}},
	}
	for _, test := range tests {
		err := jsimd.NewParser([]byte(test.input)).Parse(new(testHandler))
		for _, want := range test.want {
			if !errors.Is(err, want) {
				t.Errorf("Parse(%#q): got %v, want %v", test.input, err, want)
			}
		}
	}
}

func TestSurrogateErrors(t *testing.T) {
	tests := []struct {
		input string
		code  jsimd.ErrorCode
	}{
		{`"\ud800"`, jsimd.InvalidSurrogate},
		{`"\ud800x"`, jsimd.InvalidSurrogate},
		{`"\ud800\n"`, jsimd.InvalidSurrogate},
		{`"\ud800\ud800"`, jsimd.InvalidSurrogate},
		{`"\ud800\u0041"`, jsimd.InvalidSurrogate},
		{`"\udc00"`, jsimd.InvalidSurrogate},
		{`["\ud800"]`, jsimd.InvalidSurrogate},

		// The input ends inside the escape.
		{`"\ud800`, jsimd.EOFWhileParsing},
		{`"\ud800\`, jsimd.EOFWhileParsing},
		{`"\ud800\udc`, jsimd.EOFWhileParsing},
	}
	for _, test := range tests {
		for _, mode := range parseModes {
			err := mode.parse(jsimd.NewParser([]byte(test.input)), new(testHandler))
			var jerr *jsimd.Error
			if !errors.As(err, &jerr) {
				t.Errorf("%s(%#q): got %v, want %v", mode.name, test.input, err, test.code)
				continue
			}
			if jerr.Code != test.code {
				t.Errorf("%s(%#q): got code %v, want %v", mode.name, test.input, jerr.Code, test.code)
			}
		}
		_, err := jsimd.NewParser([]byte(test.input)).SkipOne()
		if jerr, ok := err.(*jsimd.Error); !ok || jerr.Code != test.code {
			t.Errorf("SkipOne(%#q): got %v, want %v", test.input, err, test.code)
		}
	}
}

func TestErrorCause(t *testing.T) {
	_, err := jsimd.DecodeAny([]byte(`[1e400]`))
	if !errors.Is(err, number.ErrFloatMustBeFinite) {
		t.Errorf("DecodeAny: got %v, want cause %v", err, number.ErrFloatMustBeFinite)
	}
	if !strings.Contains(fmt.Sprint(err), number.ErrFloatMustBeFinite.Error()) {
		t.Errorf("Error message %q does not mention its cause", err)
	}

	_, err = jsimd.DecodeAny([]byte(`"\q"`))
	if errors.Unwrap(err) == nil {
		t.Errorf("DecodeAny: error %v has no cause", err)
	}

	// Structural errors have no underlying cause.
	_, err = jsimd.DecodeAny([]byte(`[1,,]`))
	if cause := errors.Unwrap(err); cause != nil {
		t.Errorf("DecodeAny: got cause %v, want none", cause)
	}
}

func TestMaxDepth(t *testing.T) {
	nest := func(n int) []byte {
		return []byte(strings.Repeat("[", n) + strings.Repeat("]", n))
	}

	if err := jsimd.NewParser(nest(jsimd.DefaultMaxDepth)).Decode(new(testHandler)); err != nil {
		t.Errorf("Decode at the depth limit: unexpected error: %v", err)
	}

	err := jsimd.NewParser(nest(jsimd.DefaultMaxDepth + 1)).Decode(new(testHandler))
	var jerr *jsimd.Error
	if !errors.As(err, &jerr) || jerr.Code != jsimd.RecursionLimitExceeded {
		t.Errorf("Decode past the depth limit: got %v, want %v", err, jsimd.RecursionLimitExceeded)
	} else if jerr.Offset != jsimd.DefaultMaxDepth {
		t.Errorf("Decode past the depth limit: got offset %d, want %d", jerr.Offset, jsimd.DefaultMaxDepth)
	}
	if !errors.Is(err, jsimd.ErrDepth) {
		t.Errorf("Decode past the depth limit: %v is not ErrDepth", err)
	}

	if err := jsimd.NewParser([]byte(`[[{"a":[]}]]`)).MaxDepth(3).Decode(new(testHandler)); err == nil {
		t.Error("Decode with MaxDepth(3): got nil, want error")
	}

	// The iterative parser has no depth limit.
	if err := jsimd.NewParser(nest(10000)).Parse(new(testHandler)); err != nil {
		t.Errorf("Parse deeply nested: unexpected error: %v", err)
	}
}

func TestParseOne(t *testing.T) {
	const input = `{ "love": true } [] "ok"`
	const want = `
BeginObject
Key "love"
Bool true
EndObject 1
---
BeginArray
EndArray 0
---
String "ok"
---`
	th := new(testHandler)
	p := jsimd.NewParser([]byte(input))
	for {
		err := p.ParseOne(th)
		if errors.Is(err, jsimd.ErrEOF) {
			break
		} else if err != nil {
			t.Fatalf("ParseOne failed: %v", err)
		}
		th.pr("---")
	}
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", input, diff)
	}
}

func TestHandlerError(t *testing.T) {
	stop := errors.New("stop")
	th := &testHandler{failOn: "Key", err: stop}
	err := jsimd.NewParser([]byte(`{"a": 1}`)).Parse(th)
	if err != stop {
		t.Errorf("Parse: got error %v, want %v", err, stop)
	}
}

func TestInPlace(t *testing.T) {
	input := []byte(`{"k\"ey": ["x\ty", "plain"]}`)
	th := new(testHandler)
	if err := jsimd.NewParser(input).InPlace(true).Parse(th); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	const want = `
BeginObject
Key "k\"ey"
BeginArray
String "x\ty"
String "plain"
EndArray 2
EndObject 1`
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
	if !bytes.HasPrefix(input, []byte(`{"k"ey`)) {
		t.Errorf("Input was not rewritten: %#q", input)
	}
}

func TestParserString(t *testing.T) {
	const input = `["a\nb", "c"]`
	th := new(testHandler)
	if err := jsimd.NewParserString(input).InPlace(true).Parse(th); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	const want = "BeginArray\nString \"a\\nb\" [copy]\nString \"c\"\nEndArray 2"
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestCheckUTF8(t *testing.T) {
	input := []byte("[\"\xff\"]")
	if err := jsimd.NewParser(input).Parse(new(testHandler)); err == nil {
		t.Error("Parse with invalid UTF-8: got nil, want error")
	}
	th := new(testHandler)
	if err := jsimd.NewParser(input).CheckUTF8(false).Parse(th); err != nil {
		t.Errorf("Parse without checking: unexpected error: %v", err)
	}
	if diff := diffStrings("BeginArray\nString \"\\xff\"\nEndArray 1", th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestUTF8Lossy(t *testing.T) {
	input := `["a` + "\xff" + `b", "` + "\xe2\x82" + `", "\ud800", "x\udc00\ud800\u0041y", {"k` + "\xc0" + `": "\u00e9"}]`
	if err := jsimd.NewParser([]byte(input)).Parse(new(testHandler)); !errors.Is(err, jsimd.ErrEncoding) {
		t.Fatalf("Parse without repair: got %v, want %v", err, jsimd.ErrEncoding)
	}

	th := new(testHandler)
	if err := jsimd.NewParser([]byte(input)).UTF8Lossy(true).Parse(th); err != nil {
		t.Fatalf("Parse with repair: unexpected error: %v", err)
	}
	const want = `
BeginArray
String "a�b" [copy]
String "�" [copy]
String "�" [copy]
String "x��Ay" [copy]
BeginObject
Key "k�" [copy]
String "é" [copy]
EndObject 1
EndArray 5`
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}

	// Strings repaired in place are still borrowed unless they grow.
	th = new(testHandler)
	in := []byte(`["\ud800z", "` + "\xff" + `"]`)
	if err := jsimd.NewParser(in).UTF8Lossy(true).InPlace(true).Parse(th); err != nil {
		t.Fatalf("Parse in place: unexpected error: %v", err)
	}
	if diff := diffStrings("BeginArray\nString \"�z\"\nString \"�\" [copy]\nEndArray 2", th.output()); diff != "" {
		t.Errorf("In place output: (-want, +got)\n%s", diff)
	}

	// Invalid bytes outside strings are not repaired.
	if err := jsimd.NewParser([]byte("[1, \xff]")).UTF8Lossy(true).Parse(new(testHandler)); !errors.Is(err, jsimd.ErrSyntax) {
		t.Errorf("Parse invalid value: got %v, want %v", err, jsimd.ErrSyntax)
	}

	// Skipping accepts what parsing repairs.
	if _, err := jsimd.NewParser([]byte(`"\udc00"`)).UTF8Lossy(true).SkipOne(); err != nil {
		t.Errorf("SkipOne: unexpected error: %v", err)
	}
}

func TestDecodeAny(t *testing.T) {
	got, err := jsimd.DecodeAny([]byte(`{"a": [1, -2, 2.5, "x", true, null], "b": {}, "a": 18446744073709551615}`))
	if err != nil {
		t.Fatalf("DecodeAny failed: %v", err)
	}
	want := map[string]any{
		"a": uint64(18446744073709551615),
		"b": map[string]any{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeAny: (-want, +got)\n%s", diff)
	}

	got, err = jsimd.DecodeAny([]byte(`[1, -2, 2.5, "x", true, null, []]`))
	if err != nil {
		t.Fatalf("DecodeAny failed: %v", err)
	}
	if diff := cmp.Diff([]any{int64(1), int64(-2), 2.5, "x", true, nil, []any{}}, got); diff != "" {
		t.Errorf("DecodeAny: (-want, +got)\n%s", diff)
	}
}

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}

type testHandler struct {
	buf bytes.Buffer

	failOn string // if set, the event name on which to fail
	err    error
}

func (t *testHandler) pr(msg string, args ...any) error {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(&t.buf, msg, args...)
	if t.failOn != "" && strings.HasPrefix(msg, t.failOn) {
		return t.err
	}
	return nil
}

func (t *testHandler) output() string { return t.buf.String() }

func copyTag(borrowed bool) string {
	if borrowed {
		return ""
	}
	return " [copy]"
}

func (t *testHandler) Null() error             { return t.pr("Null") }
func (t *testHandler) Bool(v bool) error       { return t.pr("Bool %v", v) }
func (t *testHandler) Uint64(v uint64) error   { return t.pr("Uint %v", v) }
func (t *testHandler) Int64(v int64) error     { return t.pr("Int %v", v) }
func (t *testHandler) Float64(v float64) error { return t.pr("Float %v", v) }
func (t *testHandler) BeginArray() error       { return t.pr("BeginArray") }
func (t *testHandler) EndArray(n int) error    { return t.pr("EndArray %d", n) }
func (t *testHandler) BeginObject() error      { return t.pr("BeginObject") }
func (t *testHandler) EndObject(n int) error   { return t.pr("EndObject %d", n) }

func (t *testHandler) String(s []byte, borrowed bool) error {
	return t.pr("String %q%s", s, copyTag(borrowed))
}

func (t *testHandler) Key(k []byte, borrowed bool) error {
	return t.pr("Key %q%s", k, copyTag(borrowed))
}
