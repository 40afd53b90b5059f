// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/creachadair/jsimd"
	"github.com/google/go-cmp/cmp"
	"github.com/romshark/jscan/v2"
)

func TestSkipOne(t *testing.T) {
	const input = `  [1, {"a": "]"}] 2 "x\"y" {"b": [[], {}]} null`
	want := []string{`[1, {"a": "]"}]`, `2`, `"x\"y"`, `{"b": [[], {}]}`, `null`}

	for _, m := range []struct {
		name string
		skip func(*jsimd.Parser) ([]byte, error)
	}{
		{"SkipOne", (*jsimd.Parser).SkipOne},
		{"SkipOneUnchecked", (*jsimd.Parser).SkipOneUnchecked},
	} {
		p := jsimd.NewParser([]byte(input))
		var got []string
		for {
			v, err := m.skip(p)
			if errors.Is(err, jsimd.ErrEOF) {
				break
			} else if err != nil {
				t.Fatalf("%s: unexpected error: %v", m.name, err)
			}
			got = append(got, string(v))
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s values (-want, +got):\n%s", m.name, diff)
		}
		if p.Offset() != len(input) {
			t.Errorf("%s offset: got %d, want %d", m.name, p.Offset(), len(input))
		}
	}
}

func TestSkipOneErrors(t *testing.T) {
	tests := []struct {
		input     string
		checked   jsimd.ErrorCode // 0 for success
		unchecked jsimd.ErrorCode
	}{
		{`[1, 2x]`, jsimd.ExpectedArrayCommaOrEnd, 0},
		{`{"a" 1}`, jsimd.ExpectedColon, 0},
		{`[1, [2]`, jsimd.EOFWhileParsing, jsimd.EOFWhileParsing},
		{`{"a": "}`, jsimd.EOFWhileParsing, jsimd.EOFWhileParsing},
		{`"abc`, jsimd.EOFWhileParsing, 0},
		{`[1,]`, jsimd.TrailingComma, 0},
		{``, jsimd.EOFWhileParsing, jsimd.EOFWhileParsing},
	}
	for _, tc := range tests {
		_, err := jsimd.NewParser([]byte(tc.input)).SkipOne()
		checkCode(t, tc.input, err, tc.checked)

		_, err = jsimd.NewParser([]byte(tc.input)).SkipOneUnchecked()
		checkCode(t, tc.input, err, tc.unchecked)
	}
}

// TestSkipLanes checks that skipping agrees with parsing for containers that
// span many lanes, with strings and escapes placed across lane boundaries.
func TestSkipLanes(t *testing.T) {
	for _, pad := range []int{0, 1, 30, 61, 62, 63, 64, 65, 127} {
		t.Run(fmt.Sprint(pad), func(t *testing.T) {
			var sb strings.Builder
			sb.WriteString("[")
			for i := range 20 {
				if i > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, `{"k%d": "%s\\\"]}", "v": [%d, [true], "\\\\"]}`, i, strings.Repeat("x", pad+i), i)
			}
			sb.WriteString("] 99")
			input := sb.String()
			want := input[:len(input)-3]

			for _, m := range []struct {
				name string
				skip func(*jsimd.Parser) ([]byte, error)
			}{
				{"SkipOne", (*jsimd.Parser).SkipOne},
				{"SkipOneUnchecked", (*jsimd.Parser).SkipOneUnchecked},
			} {
				p := jsimd.NewParser([]byte(input))
				got, err := m.skip(p)
				if err != nil {
					t.Fatalf("%s: unexpected error: %v", m.name, err)
				}
				if string(got) != want {
					t.Errorf("%s: got %d bytes, want %d", m.name, len(got), len(want))
				}
				if next, err := m.skip(p); err != nil || string(next) != "99" {
					t.Errorf("%s next: got %q, %v; want 99", m.name, next, err)
				}
			}
		})
	}
}

// TestValidity checks that the parser accepts the same inputs as an
// independent validator.
func TestValidity(t *testing.T) {
	inputs := []string{
		`null`, `true`, `false`, `0`, `-0`, `-0.5e+10`, `1E5`, `""`, `"\""`,
		`[]`, `{}`, ` [ 1 , 2 ] `, `{"a":{"b":[{"c":null}]}}`, `"\/\b\f\n\r\t"`,
		`[1,2,3,[4,[5,[6]]]]`, `{"":""}`, `123456789012345678901234567890`,

		`nul`, `True`, `01`, `1.`, `.5`, `-`, `+1`, `1e`, `1e+`, `0x10`,
		`[`, `]`, `[1,]`, `[,1]`, `{"a"}`, `{"a":}`, `{a:1}`, `{"a":1,}`,
		`"abc`, `"\x"`, "\"\x01\"", `[1] [2]`, `{"a":1}}`, `[1 2]`, `'a'`,
		`NaN`, `Infinity`, `[-]`, `[1e1.5]`,
	}
	for _, in := range inputs {
		want := jscan.Valid(in)
		err := jsimd.NewParser([]byte(in)).Parse(new(testHandler))
		if got := err == nil; got != want {
			t.Errorf("Parse(%#q): got valid=%v (%v), want %v", in, got, err, want)
		}
	}
}
