// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"

	"github.com/creachadair/jsimd"
)

// A Document is a root value together with a counted hold on the arena that
// stores it. The arena is emptied when the last document holding it is
// released. The zero Document is empty and serializes as null.
type Document struct {
	root Value
	held *bool
}

// NewDocument returns a document with root v, holding the arena of v.
func NewDocument(v Value) Document {
	if v.a == nil {
		return Document{}
	}
	v.a.acquire()
	return Document{root: v, held: new(bool)}
}

// Root returns the root value of d. The result is not valid after d is
// released.
func (d Document) Root() Value { return d.root }

// Arena returns the arena that stores d.
func (d Document) Arena() *Arena { return d.root.a }

// Clone returns a new document sharing the root and arena of d. Each clone
// must be released separately.
func (d Document) Clone() Document { return NewDocument(d.root) }

// Release drops the hold of d on its arena. Releasing a document more than
// once has no further effect. Copies of a Document share their hold.
func (d Document) Release() {
	if d.held == nil || *d.held {
		return
	}
	*d.held = true
	d.root.a.release()
}

// JSON returns the compact encoding of d as a string.
func (d Document) JSON() string { return d.root.JSON() }

// String returns the compact encoding of d.
func (d Document) String() string { return d.root.JSON() }

// AppendJSON appends the compact encoding of d to dst.
func (d Document) AppendJSON(dst []byte) []byte { return d.root.AppendJSON(dst) }

// Indent appends to dst an indented encoding of d, as for jsimd.Indent.
func (d Document) Indent(dst []byte, prefix, indent string) []byte {
	return d.root.Format(dst, jsimd.NewIndentFormatter(prefix, indent))
}

// MarshalJSON implements the json.Marshaler interface.
func (d Document) MarshalJSON() ([]byte, error) {
	if !d.root.IsValid() {
		return []byte("null"), nil
	}
	return d.root.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface. It releases the
// current contents of d, if any, and replaces them with a new document parsed
// from data.
func (d *Document) UnmarshalJSON(data []byte) error {
	if d == nil {
		return errors.New("ast: UnmarshalJSON on nil Document")
	}
	nd, err := Parse(data)
	if err != nil {
		return err
	}
	d.Release()
	*d = nd
	return nil
}
