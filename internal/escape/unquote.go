// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"errors"

	"go4.org/mem"
)

var errStrayQuote = errors.New("unescaped quotation mark")

// Unquote decodes the body of a JSON string, which must not include the
// enclosing double quotation marks. Escape sequences are replaced with their
// unescaped equivalents. Unlike a string inside a document, an unescaped
// quotation mark in src is an error.
func Unquote(src mem.RO) ([]byte, error) {
	if mem.IndexByte(src, '\\') < 0 && mem.IndexByte(src, '"') < 0 {
		if hasControl(src) {
			return nil, ErrControlChar
		}
		return mem.Append(nil, src), nil
	}

	buf := make([]byte, 0, src.Len()+1)
	buf = append(mem.Append(buf, src), '"')
	n, end, err := UnescapeInPlace(buf, 0)
	if err != nil {
		return nil, err
	} else if end != len(buf) {
		return nil, errStrayQuote
	}
	return buf[:n], nil
}

func hasControl(src mem.RO) bool {
	for i := 0; i < src.Len(); i++ {
		if src.At(i) < ' ' {
			return true
		}
	}
	return false
}
