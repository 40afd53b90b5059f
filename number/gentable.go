// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

//go:build ignore

// Program gentable generates table.go, the table of 128-bit powers of five
// used for float conversion.
//
// Usage:
//
//	go run gentable.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/format"
	"log"
	"math/big"
	"os"
)

var outPath = flag.String("output", "table.go", "Output file path")

const (
	minPow10 = -342
	maxPow10 = 308
)

func main() {
	flag.Parse()

	var buf bytes.Buffer
	buf.WriteString(`// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Code generated by gentable.go. DO NOT EDIT.

package number

// pow5Table holds 128-bit truncated (or, for negative exponents, rounded-up)
// approximations of 5^q for q in [minPow10, maxPow10], normalized so the most
// significant bit is set. Each entry is stored as {hi, lo}.
var pow5Table = [...][2]uint64{
`)
	mask := new(big.Int).SetUint64(^uint64(0))
	for q := minPow10; q <= maxPow10; q++ {
		v := pow5(q)
		hi := new(big.Int).Rsh(v, 64).Uint64()
		lo := new(big.Int).And(v, mask).Uint64()
		fmt.Fprintf(&buf, "\t{0x%016x, 0x%016x}, // 5^%d\n", hi, lo, q)
	}
	buf.WriteString("}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		log.Fatalf("Formatting output: %v", err)
	}
	if err := os.WriteFile(*outPath, src, 0644); err != nil {
		log.Fatalf("Writing output: %v", err)
	}
}

// pow5 returns the 128-bit approximation of 5^q with its high bit set.
func pow5(q int) *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	if q >= 0 {
		p := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(q)), nil)
		for p.BitLen() < 128 {
			p.Lsh(p, 1)
		}
		return p.Rsh(p, uint(p.BitLen()-128))
	}

	// For a negative exponent, divide a sufficiently large power of two by
	// 5^-q and round up.
	p := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-q)), nil)
	z := p.BitLen()
	b := 2*z + 128
	if q >= -27 {
		b = z + 127
	}
	c := new(big.Int).Lsh(big.NewInt(1), uint(b))
	c.Quo(c, p)
	c.Add(c, big.NewInt(1))
	for c.Cmp(limit) >= 0 {
		c.Rsh(c, 1)
	}
	return c
}
