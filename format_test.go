// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/internal/testutil"
	"github.com/creachadair/jsimd/number"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{`null`, `null`},
		{` [ ] `, `[]`},
		{" {\n} ", `{}`},
		{` [ 1 , 2.50 , -0 , 1e2 , "x\/y" ] `, `[1,2.5,-0,100,"x/y"]`},
		{`{ "a" : [ true , false ] , "b" : { "c" : null } }`, `{"a":[true,false],"b":{"c":null}}`},
		{`"tab\there"`, `"tab\there"`},
		{`[1e-7, 1e21, 123456789012345678901]`, `[1e-07,1e+21,123456789012345680000]`},
	}
	for _, tc := range tests {
		got, err := jsimd.Compact(nil, []byte(tc.input))
		if err != nil {
			t.Errorf("Compact(%#q): unexpected error: %v", tc.input, err)
			continue
		}
		if string(got) != tc.want {
			t.Errorf("Compact(%#q): got %#q, want %#q", tc.input, got, tc.want)
		}
	}

	// Output is appended to the destination.
	got, err := jsimd.Compact([]byte("x="), []byte(" [1] "))
	if err != nil || string(got) != "x=[1]" {
		t.Errorf("Compact append: got %q, %v; want x=[1]", got, err)
	}

	if _, err := jsimd.Compact(nil, []byte(`[1,]`)); !errors.Is(err, jsimd.ErrSyntax) {
		t.Errorf("Compact invalid: got err %v, want %v", err, jsimd.ErrSyntax)
	}
}

func TestCompactFixtures(t *testing.T) {
	for _, tc := range testutil.LoadCases(t, "testdata/values.hujson") {
		got, err := jsimd.Compact(nil, []byte(tc.Input))
		if werr := tc.WantErr(); werr != nil {
			if !errors.Is(err, werr) {
				t.Errorf("%s: got err %v, want %v", tc.Name, err, werr)
			}
		} else if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.Name, err)
		} else if string(got) != tc.Want {
			t.Errorf("%s: got %#q, want %#q", tc.Name, got, tc.Want)
		}
	}
}

func TestIndent(t *testing.T) {
	// Inputs in canonical form, so that the standard library agrees on the
	// text of each value.
	inputs := []string{
		`null`,
		`[]`,
		`{}`,
		`[1,2,3]`,
		`{"a":1,"b":[true,false,null],"c":{},"d":[],"e":{"f":"g"}}`,
		`[[[]],[{}],[{"x":[1,{"y":2}]}]]`,
		`{"html":"<a&b>","text":"line\nbreak"}`,
	}
	for _, in := range inputs {
		for _, fmtArgs := range [][2]string{{"", "  "}, {">", "\t"}, {"", ""}} {
			var want bytes.Buffer
			if err := json.Indent(&want, []byte(in), fmtArgs[0], fmtArgs[1]); err != nil {
				t.Fatalf("json.Indent(%#q): %v", in, err)
			}
			got, err := jsimd.Indent(nil, []byte(in), fmtArgs[0], fmtArgs[1])
			if err != nil {
				t.Errorf("Indent(%#q): unexpected error: %v", in, err)
				continue
			}
			if diff := diffStrings(want.String(), string(got)); diff != "" {
				t.Errorf("Indent(%#q, %q, %q) (-want, +got):\n%s", in, fmtArgs[0], fmtArgs[1], diff)
			}
		}
	}
}

// upperFormatter is a Formatter that writes Booleans in capitals.
type upperFormatter struct {
	jsimd.CompactFormatter
}

func (upperFormatter) WriteBool(b *jsimd.Buffer, v bool) {
	if v {
		b.WriteString("TRUE")
	} else {
		b.WriteString("FALSE")
	}
}

func TestFormatCustom(t *testing.T) {
	got, err := jsimd.Format(nil, []byte(`{"a": [true, false]}`), upperFormatter{})
	if err != nil {
		t.Fatalf("Format: unexpected error: %v", err)
	}
	if want := `{"a":[TRUE,FALSE]}`; string(got) != want {
		t.Errorf("Format: got %#q, want %#q", got, want)
	}
}

func TestBuffer(t *testing.T) {
	b := jsimd.NewBuffer([]byte("pre:"))

	buf := b.Reserve(10)
	if len(buf) != 10 {
		t.Fatalf("Reserve(10): got %d bytes", len(buf))
	}
	n := copy(buf, "abc")
	b.Commit(n)
	if got := string(b.Bytes()); got != "pre:abc" {
		t.Errorf("After commit: got %q, want %q", got, "pre:abc")
	}

	// Reserved space that is not committed is not part of the contents.
	b.Reserve(100)
	if b.Len() != 7 {
		t.Errorf("Len after reserve: got %d, want 7", b.Len())
	}

	b.WriteByte(' ')
	b.WriteQuoted("q\"\n")
	b.WriteString(" ")
	b.WriteNumber(number.FromInt64(-25))
	b.Write([]byte(" ok"))
	if got, want := string(b.Bytes()), `pre:abc "q\"\n" -25 ok`; got != want {
		t.Errorf("Contents: got %#q, want %#q", got, want)
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len after reset: got %d, want 0", b.Len())
	}

	var z jsimd.Buffer
	z.WriteQuoted("")
	if got := string(z.Bytes()); got != `""` {
		t.Errorf("Zero buffer: got %#q, want %#q", got, `""`)
	}
}
