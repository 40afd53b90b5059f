// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// A PathElem is one step of a [Path]: either an object key or an array index.
type PathElem struct {
	key   string
	index int // -1 for a key
}

// Key returns a PathElem that selects the member of an object with key s.
func Key(s string) PathElem { return PathElem{key: s, index: -1} }

// Index returns a PathElem that selects element i of an array.
// It panics if i < 0.
func Index(i int) PathElem {
	if i < 0 {
		panic(fmt.Sprintf("negative array index %d", i))
	}
	return PathElem{index: i}
}

// IsKey reports whether e selects an object member.
func (e PathElem) IsKey() bool { return e.index < 0 }

// Key reports the key selected by e, and whether e is a key.
func (e PathElem) Key() (string, bool) { return e.key, e.index < 0 }

// Index reports the index selected by e, and whether e is an index.
func (e PathElem) Index() (int, bool) { return e.index, e.index >= 0 }

func (e PathElem) String() string {
	if e.IsKey() {
		return strconv.Quote(e.key)
	}
	return strconv.Itoa(e.index)
}

// A Path is a sequence of steps from a value to one of its descendants.
// The empty path selects the value itself.
type Path []PathElem

// NewPath constructs a Path from a sequence of string keys and int indexes.
// It panics if any element has another type or is a negative int.
func NewPath(elems ...any) Path {
	path := make(Path, len(elems))
	for i, e := range elems {
		switch t := e.(type) {
		case string:
			path[i] = Key(t)
		case int:
			path[i] = Index(t)
		case PathElem:
			path[i] = t
		default:
			panic(fmt.Sprintf("invalid path element %T", e))
		}
	}
	return path
}

// All returns an iterator over the elements of p.
func (p Path) All() iter.Seq[PathElem] { return slices.Values(p) }

// String renders p in JSON Pointer notation (RFC 6901).
func (p Path) String() string {
	var sb strings.Builder
	for _, e := range p {
		sb.WriteByte('/')
		if k, ok := e.Key(); ok {
			sb.WriteString(pointerEscaper.Replace(k))
		} else {
			sb.WriteString(strconv.Itoa(e.index))
		}
	}
	return sb.String()
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// A PointerTree is a set of paths to be resolved together by [GetMany].
// Paths sharing a prefix share the traversal of that prefix. The zero value
// is ready for use.
type PointerTree struct {
	root treeNode
	size int
}

// treeNode is a node of a PointerTree. If the value at a node has the wrong
// type for its children, the lookup fails; a node with both key and index
// children fails for every value.
type treeNode struct {
	slots []int // output slots of paths ending here
	keys  map[string]*treeNode
	index map[int]*treeNode
	order []int // sorted keys of index
}

// NewPointerTree constructs a PointerTree containing the given paths.
func NewPointerTree(paths ...Path) *PointerTree {
	t := new(PointerTree)
	for _, p := range paths {
		t.Add(p)
	}
	return t
}

// Add adds path to t and returns its slot in the results of [GetMany].
// Slots are assigned in order of addition, and a path added more than once
// occupies one slot per addition.
func (t *PointerTree) Add(path Path) int {
	n := &t.root
	for _, e := range path {
		if k, ok := e.Key(); ok {
			if n.keys == nil {
				n.keys = make(map[string]*treeNode)
			}
			c, ok := n.keys[k]
			if !ok {
				c = new(treeNode)
				n.keys[k] = c
			}
			n = c
		} else {
			if n.index == nil {
				n.index = make(map[int]*treeNode)
			}
			c, ok := n.index[e.index]
			if !ok {
				c = new(treeNode)
				n.index[e.index] = c
				i, _ := slices.BinarySearch(n.order, e.index)
				n.order = slices.Insert(n.order, i, e.index)
			}
			n = c
		}
	}
	n.slots = append(n.slots, t.size)
	t.size++
	return t.size - 1
}

// Len reports the number of paths in t.
func (t *PointerTree) Len() int { return t.size }
