// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/ast"
	"github.com/google/go-cmp/cmp"
)

func TestDocumentRelease(t *testing.T) {
	doc, err := ast.Parse([]byte(`{"a": [1, 2, 3]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a := doc.Arena()
	clone := doc.Clone()

	doc.Release()
	doc.Release() // no effect
	if n := a.Len(); n == 0 {
		t.Fatal("Arena was emptied while a clone is held")
	}
	if got := clone.JSON(); got != `{"a":[1,2,3]}` {
		t.Errorf("Clone: got %#q", got)
	}

	clone.Release()
	if n := a.Len(); n != 0 {
		t.Errorf("After last release: arena has %d nodes, want 0", n)
	}

	// A document built on a value holds its arena as well.
	b := ast.NewArena()
	d2 := ast.NewDocument(ast.Must(b.Int(5)))
	if got := d2.JSON(); got != "5" {
		t.Errorf("NewDocument: got %#q, want 5", got)
	}
	d2.Release()
	if n := b.Len(); n != 0 {
		t.Errorf("After release: arena has %d nodes, want 0", n)
	}

	// The zero document is empty.
	var zero ast.Document
	zero.Release()
	if got := zero.JSON(); got != "null" {
		t.Errorf("Zero document: got %#q, want null", got)
	}
}

func TestDocumentJSON(t *testing.T) {
	type wrapper struct {
		Name string       `json:"name"`
		Doc  ast.Document `json:"doc"`
	}
	const input = `{"name":"test","doc":{"x":[1,2.5,"three"],"y":null}}`

	var w wrapper
	if err := json.Unmarshal([]byte(input), &w); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	defer w.Doc.Release()
	if got, _ := ast.Must(w.Doc.Root().Pointer("x", 2)).Str(); got != "three" {
		t.Errorf("Decoded document: x[2] = %q, want three", got)
	}

	out, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != input {
		t.Errorf("Marshal: got %#q, want %#q", out, input)
	}

	if got := string(w.Doc.AppendJSON([]byte("doc="))); got != `doc={"x":[1,2.5,"three"],"y":null}` {
		t.Errorf("AppendJSON: got %#q", got)
	}

	// Indentation matches the formatter applied to the same input.
	want, err := jsimd.Indent(nil, []byte(w.Doc.JSON()), "", "  ")
	if err != nil {
		t.Fatalf("Indent: %v", err)
	}
	if diff := diffStrings(string(want), string(w.Doc.Indent(nil, "", "  "))); diff != "" {
		t.Errorf("Indent (-want, +got):\n%s", diff)
	}

	// A failed decode leaves the document unchanged.
	before := w.Doc.Arena()
	if err := w.Doc.UnmarshalJSON([]byte(`[1,]`)); !errors.Is(err, jsimd.ErrSyntax) {
		t.Errorf("UnmarshalJSON: got err %v, want %v", err, jsimd.ErrSyntax)
	}
	if w.Doc.Arena() != before {
		t.Error("UnmarshalJSON: document changed after error")
	}
}

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}
