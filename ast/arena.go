// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/creachadair/jsimd"
	"github.com/creachadair/jsimd/number"
)

// ErrArenaFull is reported when an allocation would exceed the limit set by
// [Arena.SetLimit].
var ErrArenaFull = errors.New("arena node limit exceeded")

const (
	chunkBits = 10
	chunkSize = 1 << chunkBits // nodes per chunk

	slabSize      = 4096 // child slots per shared slab
	textBlockSize = 8192 // bytes per shared text block
)

// A node is the stored form of a value.
type node struct {
	kind jsimd.Kind
	bv   bool // Bool value
	ext  bool // str aliases memory the arena does not own
	num  number.Number
	str  string

	// Children of a container: the elements of an array, or alternating key
	// and value nodes of an object. The capacity of the block is the space
	// available for growth without reallocation.
	kids []uint32
}

type nodeChunk [chunkSize]node

// An Arena is a store for the nodes of JSON values. Nodes are allocated
// sequentially and are freed together when the last [Document] holding the
// arena is released.
//
// Allocation is safe for concurrent use, so several documents may be built
// in one arena by concurrent goroutines. A Value must not be modified
// concurrently with any other use of the same Value.
type Arena struct {
	table atomic.Pointer[[]*nodeChunk]
	refs  atomic.Int64

	mu     sync.Mutex
	size   int      // nodes allocated
	limit  int      // maximum nodes, or 0 for no limit
	slab   []uint32 // unused tail of the current slab
	text   []byte   // current text block
	inputs [][]byte // input copies retained for parsed documents
}

// NewArena constructs an empty arena.
func NewArena() *Arena { return new(Arena) }

// SetLimit sets the maximum number of nodes a may hold. If n ≤ 0 there is no
// limit. Once the limit is reached, allocations report ErrArenaFull.
// SetLimit returns a to permit chaining.
func (a *Arena) SetLimit(n int) *Arena {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.limit = max(n, 0)
	return a
}

// Len reports the number of nodes allocated in a.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size
}

func (a *Arena) node(i uint32) *node {
	t := *a.table.Load()
	return &t[i>>chunkBits][i&(chunkSize-1)]
}

// alloc stores n as a new node and returns its index.
func (a *Arena) alloc(n node) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.limit > 0 && a.size >= a.limit {
		return 0, ErrArenaFull
	}
	if a.size%chunkSize == 0 {
		var t []*nodeChunk
		if p := a.table.Load(); p != nil {
			t = *p
		}
		t = append(t[:len(t):len(t)], new(nodeChunk))
		a.table.Store(&t)
	}
	i := uint32(a.size)
	*a.node(i) = n
	a.size++
	return i, nil
}

// allocKids returns a block of n child slots with room for capacity.
// Small blocks are carved from a shared slab.
func (a *Arena) allocKids(n, capacity int) []uint32 {
	if capacity == 0 {
		return nil
	} else if capacity > slabSize/4 {
		return make([]uint32, n, capacity)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.slab) < capacity {
		a.slab = make([]uint32, slabSize)
	}
	b := a.slab[:n:capacity]
	a.slab = a.slab[capacity:]
	return b
}

// intern returns a copy of text owned by a. Copies are packed into shared
// blocks to reduce allocation overhead.
func (a *Arena) intern(text []byte) string {
	if len(text) == 0 {
		return ""
	} else if len(text) >= textBlockSize/4 {
		return string(text)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.text)+len(text) > cap(a.text) {
		a.text = make([]byte, 0, textBlockSize)
	}
	s := len(a.text)
	a.text = append(a.text, text...)
	return bytesString(a.text[s:])
}

// retain returns a copy of data owned by a.
func (a *Arena) retain(data []byte) []byte {
	cp := make([]byte, len(data))
	copy(cp, data)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputs = append(a.inputs, cp)
	return cp
}

func (a *Arena) acquire() { a.refs.Add(1) }

// release drops a reference to a, and empties it when none remain.
func (a *Arena) release() {
	switch n := a.refs.Add(-1); {
	case n > 0:
		return
	case n < 0:
		panic("ast: arena released too many times")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.table.Store(new([]*nodeChunk))
	a.size, a.slab, a.text, a.inputs = 0, nil, nil, nil
}

func bytesString(b []byte) string { return unsafe.String(unsafe.SliceData(b), len(b)) }
func stringBytes(s string) []byte { return unsafe.Slice(unsafe.StringData(s), len(s)) }

// builderPool holds parse builders for reuse between documents.
var builderPool = sync.Pool{New: func() any { return new(builder) }}
