// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"github.com/creachadair/jsimd/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return bytesString(escape.AppendQuote(nil, src)) }

// AppendQuote appends src to dst as a JSON string value.
func AppendQuote[T ~string | ~[]byte](dst []byte, src T) []byte { return escape.AppendQuote(dst, src) }

// Unquote decodes a JSON string value. Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
// Unquote reports an error if src is not exactly one valid JSON string.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || src[0] != '"' || src[len(src)-1] != '"' {
		return nil, newError(InvalidJSONValue, 0, stringBytes(src))
	}
	dec, err := escape.Unquote(mem.S(src[1 : len(src)-1]))
	if err != nil {
		return nil, newError(unquoteCode(err), 0, stringBytes(src))
	}
	return dec, nil
}

func unquoteCode(err error) ErrorCode {
	switch err {
	case escape.ErrControlChar:
		return ControlCharacter
	case escape.ErrInvalidUnicode:
		return InvalidUnicodeCodePoint
	case escape.ErrInvalidSurrogate:
		return InvalidSurrogate
	case escape.ErrEOF:
		return EOFWhileParsing
	}
	return InvalidEscape
}
