// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jsimd implements a high-throughput JSON parser, path extractor,
// and formatter over complete in-memory inputs.
//
// The parser classifies its input 64 bytes at a time into bitmasks of quotes,
// backslashes, whitespace and structural characters, and uses the masks to
// skip whitespace, strings and whole containers without visiting each byte.
//
// # Parsing
//
// The Parser type delivers the structure of a JSON value as events to a
// Handler. Parse uses an explicit stack, so the nesting depth of its input
// is limited only by memory. Decode descends by recursion, and reports an
// error if the input is nested more deeply than its limit:
//
//	p := jsimd.NewParser(input)
//	if err := p.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// In case of a syntax error, parsing stops and an error of concrete type
// *jsimd.Error is returned. Its Location method reports the line and column
// of the offending input. If a Handler method reports an error, parsing stops
// and that error is returned unchanged.
//
// # Handlers
//
// The methods of a Handler correspond to the syntax of JSON values:
//
//	JSON type  | Methods                        | Description
//	---------- | ------------------------------ | ---------------------------
//	object     | BeginObject, Key, EndObject    | { "key": value, ... }
//	array      | BeginArray, EndArray           | [ ... ]
//	string     | String                         | "..."
//	number     | Uint64, Int64, Float64         | 1, -1, 1.5
//	literal    | Bool, Null                     | true, false, null
//
// Strings and keys are delivered decoded. A string without escapes is passed
// as a view of the input ("borrowed"); otherwise it is decoded into a scratch
// buffer that the parser reuses.
//
// # Paths
//
// Get extracts the text of the value at a path without parsing the rest of
// the input, and returns a LazyValue whose accessors decode it on demand:
//
//	v, err := jsimd.Get(input, "items", 3, "name")
//	if err != nil {
//	   log.Fatalf("Get failed: %v", err)
//	}
//	name, err := v.Str()
//
// To extract several paths in one pass, add them to a PointerTree and call
// GetMany. The unchecked variants skip values by counting brackets, and do
// not validate the input.
//
// # Formatting
//
// Format re-encodes a JSON value through a Formatter, which decides the
// layout of the output. CompactFormatter writes no whitespace, and
// IndentFormatter writes one element or member per line.
package jsimd
