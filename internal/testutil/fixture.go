// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package testutil defines support code for unit tests.
package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/creachadair/jsimd"
	"github.com/tailscale/hujson"
)

// A Case is a single test case loaded from a fixture file.
//
// Fixture files are HuJSON (JSON with comments and trailing commas) holding
// an array of objects whose keys are the lower-cased field names.
type Case struct {
	Name  string
	Input string

	// If set, the compact encoding of the parsed input.
	Want string

	// If set, the category of the error expected from parsing: one of
	// "syntax", "eof", "encoding", "range", "depth".
	Error string
}

var categories = map[string]error{
	"syntax":   jsimd.ErrSyntax,
	"eof":      jsimd.ErrEOF,
	"encoding": jsimd.ErrEncoding,
	"range":    jsimd.ErrRange,
	"depth":    jsimd.ErrDepth,
}

// WantErr returns the sentinel error matching the expected error category of
// c, or nil if c expects success.
func (c Case) WantErr() error { return categories[c.Error] }

// LoadCases reads the test cases from the fixture file at path. Any error
// in reading or decoding the file fails the test.
func LoadCases(t testing.TB, path string) []Case {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read fixture: %v", err)
	}
	cases, err := decodeCases(data)
	if err != nil {
		t.Fatalf("Fixture %q: %v", path, err)
	}
	return cases
}

func decodeCases(data []byte) ([]Case, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("standardize: %w", err)
	}
	v, err := jsimd.DecodeAny(std)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	elts, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("decode: got %T, want array", v)
	}
	cases := make([]Case, len(elts))
	for i, elt := range elts {
		if err := cases[i].decode(elt); err != nil {
			return nil, fmt.Errorf("case %d: %w", i+1, err)
		}
	}
	for i, c := range cases {
		if c.Name == "" {
			return nil, fmt.Errorf("case %d has no name", i+1)
		} else if _, ok := categories[c.Error]; c.Error != "" && !ok {
			return nil, fmt.Errorf("case %q: unknown error category %q", c.Name, c.Error)
		}
	}
	return cases, nil
}

// decode populates c from a decoded fixture object.
func (c *Case) decode(v any) error {
	obj, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("got %T, want object", v)
	}
	for key, val := range obj {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("field %q: got %T, want string", key, val)
		}
		switch key {
		case "name":
			c.Name = s
		case "input":
			c.Input = s
		case "want":
			c.Want = s
		case "error":
			c.Error = s
		default:
			return fmt.Errorf("unknown field %q", key)
		}
	}
	return nil
}
