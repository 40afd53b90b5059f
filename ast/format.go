// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"

	"github.com/creachadair/jsimd"
)

// Format appends the encoding of v to dst as laid out by f, and returns the
// updated slice. The zero Value is written as null.
func (v Value) Format(dst []byte, f jsimd.Formatter) []byte {
	b := jsimd.NewBuffer(dst)
	v.format(b, f)
	return b.Bytes()
}

func (v Value) format(b *jsimd.Buffer, f jsimd.Formatter) {
	switch v.Kind() {
	case jsimd.Bool:
		f.WriteBool(b, v.node().bv)
	case jsimd.Number:
		f.WriteNumber(b, v.node().num)
	case jsimd.String:
		f.WriteString(b, v.node().str)
	case jsimd.Array:
		f.BeginArray(b)
		for i := range v.Len() {
			f.BeginArrayValue(b, i == 0)
			v.at(i).format(b, f)
			f.EndArrayValue(b)
		}
		f.EndArray(b, v.Len() == 0)
	case jsimd.Object:
		f.BeginObject(b)
		for i := range v.Len() {
			f.BeginObjectKey(b, i == 0)
			v.at(2*i).format(b, f)
			f.EndObjectKey(b)
			f.BeginObjectValue(b)
			v.at(2*i+1).format(b, f)
			f.EndObjectValue(b)
		}
		f.EndObject(b, v.Len() == 0)
	default:
		f.WriteNull(b)
	}
}

// AppendJSON appends the compact encoding of v to dst.
func (v Value) AppendJSON(dst []byte) []byte { return v.Format(dst, jsimd.CompactFormatter{}) }

// JSON returns the compact encoding of v as a string.
func (v Value) JSON() string { return string(v.AppendJSON(nil)) }

// String returns the compact encoding of v.
func (v Value) String() string { return v.JSON() }

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return nil, errors.New("ast: marshal of invalid value")
	}
	return v.AppendJSON(nil), nil
}
