// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast

import "github.com/creachadair/jsimd"

// GetBySchema returns a copy of schema, which must be an object, filled with
// the corresponding values from data. The result is stored in a new arena,
// and schema is not modified.
//
// Where schema and data both have an object at the same location, and the
// schema object is not empty, the result keeps the members of the schema
// object in order. Each is filled from the member of data with the same key,
// or keeps its schema value if data has no such member. Members of data whose
// keys do not occur in the schema are skipped. At any other location the
// schema value is replaced by the data value, so an empty object in the
// schema selects the whole of the corresponding data value.
//
// The text of data is validated as by [jsimd.Parser.SkipOne], but only the
// values selected by the schema are decoded.
func GetBySchema(data []byte, schema Value) (Value, error) {
	if err := schema.checkKind(jsimd.Object, "GetBySchema"); err != nil {
		return Value{}, err
	}
	a := NewArena()
	i, err := a.adopt(schema)
	if err != nil {
		return Value{}, err
	}
	return fillSchema(Value{a: a, i: i}, data)
}

// fillSchema fills dst from the value whose text is data, and returns the
// result. The arena of dst receives any values decoded from data.
func fillSchema(dst Value, data []byte) (Value, error) {
	if dst.Kind() != jsimd.Object || dst.Len() == 0 || jsimd.NewLazyValue(data).Kind() != jsimd.Object {
		return ParseInto(dst.a, data)
	}
	it := jsimd.NewObjectIter(data)
	for it.Next() {
		e := it.Entry()
		old, ok := dst.Get(e.Key)
		if !ok {
			continue
		}
		v, err := fillSchema(old, e.Value.Raw())
		if err != nil {
			return Value{}, err
		}
		if err := dst.Set(e.Key, v); err != nil {
			return Value{}, err
		}
	}
	if err := it.Err(); err != nil {
		return Value{}, err
	}
	return dst, nil
}
