// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

import "iter"

// An Entry is a member of an object reported by an [ObjectIter].
type Entry struct {
	Key   string
	Value *LazyValue
}

// An ObjectIter iterates over the members of an object, validating the text
// of each member as it is visited. Call Next to advance to each member.
//
// Example:
//
//	it := jsimd.NewObjectIter(data)
//	for it.Next() {
//	   e := it.Entry()
//	   // ... use e.Key and e.Value
//	}
//	if err := it.Err(); err != nil {
//	   log.Fatalf("Iteration failed: %v", err)
//	}
type ObjectIter struct {
	p     *Parser
	cur   Entry
	count int
	err   error
	done  bool
}

// NewObjectIter constructs an iterator over the members of the object in data.
func NewObjectIter(data []byte) *ObjectIter { return &ObjectIter{p: NewParser(data)} }

// Next advances it to the next member and reports whether one is available.
// After Next returns false, Err reports whether iteration stopped because of
// an error.
func (it *ObjectIter) Next() bool {
	if it.done {
		return false
	}
	ok, err := it.next()
	if err != nil || !ok {
		it.done, it.err = true, err
		it.cur = Entry{}
		return false
	}
	return true
}

func (it *ObjectIter) next() (bool, error) {
	p := it.p
	var c int
	if it.count == 0 {
		if err := p.start(); err != nil {
			return false, err
		}
		if c = p.next(); c != '{' {
			return false, p.unexpected(c, ExpectedObjectStart)
		}
		if c = p.next(); c == '}' {
			return false, p.finish()
		}
	} else {
		switch c = p.next(); c {
		case ',':
			c = p.next()
		case '}':
			return false, p.finish()
		default:
			return false, p.unexpected(c, ExpectedObjectCommaOrEnd)
		}
	}
	if c != '"' {
		if c == '}' {
			return false, p.fail(TrailingComma, p.pos-1)
		}
		return false, p.unexpected(c, ExpectObjectKeyOrEnd)
	}
	k, err := p.readKey(true)
	if err != nil {
		return false, err
	}
	key := string(k)
	if c := p.next(); c != ':' {
		return false, p.unexpected(c, ExpectedColon)
	}
	span, esc, err := p.skipValue(true)
	if err != nil {
		return false, err
	}
	it.cur = Entry{Key: key, Value: newLazy(p.data[span.Pos:span.End], esc)}
	it.count++
	return true, nil
}

// Entry returns the current member of it.
func (it *ObjectIter) Entry() Entry { return it.cur }

// Err reports the error that ended iteration, if any.
func (it *ObjectIter) Err() error { return it.err }

// ObjectEntries returns an iterator over the members of the object in data.
// If the input is malformed, the iterator yields the error once with a zero
// Entry and stops.
func ObjectEntries(data []byte) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		it := NewObjectIter(data)
		for it.Next() {
			if !yield(it.Entry(), nil) {
				return
			}
		}
		if it.Err() != nil {
			yield(Entry{}, it.Err())
		}
	}
}

// An ArrayIter iterates over the elements of an array, validating the text
// of each element as it is visited.
type ArrayIter struct {
	p     *Parser
	cur   *LazyValue
	count int
	err   error
	done  bool
}

// NewArrayIter constructs an iterator over the elements of the array in data.
func NewArrayIter(data []byte) *ArrayIter { return &ArrayIter{p: NewParser(data)} }

// Next advances it to the next element and reports whether one is available.
func (it *ArrayIter) Next() bool {
	if it.done {
		return false
	}
	ok, err := it.next()
	if err != nil || !ok {
		it.done, it.err, it.cur = true, err, nil
		return false
	}
	return true
}

func (it *ArrayIter) next() (bool, error) {
	p := it.p
	if it.count == 0 {
		if err := p.start(); err != nil {
			return false, err
		}
		if c := p.next(); c != '[' {
			return false, p.unexpected(c, ExpectedArrayStart)
		}
		if p.peek() == ']' {
			p.next()
			return false, p.finish()
		}
	} else {
		switch c := p.next(); c {
		case ',':
			if p.peek() == ']' {
				return false, p.fail(TrailingComma, p.pos)
			}
		case ']':
			return false, p.finish()
		default:
			return false, p.unexpected(c, ExpectedArrayCommaOrEnd)
		}
	}
	span, esc, err := p.skipValue(true)
	if err != nil {
		return false, err
	}
	it.cur = newLazy(p.data[span.Pos:span.End], esc)
	it.count++
	return true, nil
}

// Value returns the current element of it.
func (it *ArrayIter) Value() *LazyValue { return it.cur }

// Index reports the offset of the current element in the array.
func (it *ArrayIter) Index() int { return it.count - 1 }

// Err reports the error that ended iteration, if any.
func (it *ArrayIter) Err() error { return it.err }

// ArrayElems returns an iterator over the elements of the array in data.
// If the input is malformed, the iterator yields the error once with a nil
// value and stops.
func ArrayElems(data []byte) iter.Seq2[*LazyValue, error] {
	return func(yield func(*LazyValue, error) bool) {
		it := NewArrayIter(data)
		for it.Next() {
			if !yield(it.Value(), nil) {
				return
			}
		}
		if it.Err() != nil {
			yield(nil, it.Err())
		}
	}
}
