// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"bytes"
	"fmt"
)

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// Position reports the line and column of the given byte offset in input.
// Offsets past the end of input are clamped to the end.
func Position(input []byte, offset int) LineCol {
	offset = min(max(offset, 0), len(input))
	head := input[:offset]
	return LineCol{
		Line:   bytes.Count(head, newline) + 1,
		Column: offset - (bytes.LastIndexByte(head, '\n') + 1),
	}
}

var newline = []byte{'\n'}

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Span
	First, Last LineCol
}

// Locate reports the complete location of span in input.
func Locate(input []byte, span Span) Location {
	return Location{Span: span, First: Position(input, span.Pos), Last: Position(input, span.End)}
}
