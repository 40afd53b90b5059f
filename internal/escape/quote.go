// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import "github.com/creachadair/jsimd/internal/scan"

// An escSeq is the output encoding of a byte that must be escaped.
type escSeq struct {
	n   uint8
	seq [6]byte
}

// quoteTab holds the escape sequence for each byte reported special by
// scan.FindSpecial.
var quoteTab = func() (t [256]escSeq) {
	const hexDigit = "0123456789abcdef"
	for c := range 0x20 {
		t[c] = escSeq{6, [6]byte{'\\', 'u', '0', '0', hexDigit[c>>4], hexDigit[c&15]}}
	}
	for c, e := range map[byte]byte{'\b': 'b', '\f': 'f', '\n': 'n', '\r': 'r', '\t': 't', '"': '"', '\\': '\\'} {
		t[c] = escSeq{2, [6]byte{'\\', e}}
	}
	return
}()

// AppendQuote appends the JSON encoding of src, including the enclosing
// double quotation marks, to dst and returns the extended slice. Runs of
// bytes that need no escaping are copied in bulk.
func AppendQuote[T scan.Text](dst []byte, src T) []byte {
	dst = append(dst, '"')
	for len(src) != 0 {
		k := scan.FindSpecial(src)
		if k < 0 {
			dst = append(dst, src...)
			break
		}
		e := &quoteTab[src[k]]
		dst = append(append(dst, src[:k]...), e.seq[:e.n]...)
		src = src[k+1:]
	}
	return append(dst, '"')
}

// QuotedLen reports the length of the JSON encoding of src, including the
// enclosing quotation marks.
func QuotedLen[T scan.Text](src T) int {
	n := 2 + len(src)
	for len(src) != 0 {
		k := scan.FindSpecial(src)
		if k < 0 {
			break
		}
		n += int(quoteTab[src[k]].n) - 1
		src = src[k+1:]
	}
	return n
}
