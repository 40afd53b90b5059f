// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jsimd

// A frame records an open container during an iterative parse.
type frame struct {
	object bool
	count  int
}

// state is the position of an iterative parse within its innermost container.
type state uint8

const (
	stateArrayValue state = iota // before an array element or "]"
	stateObjectKey               // before an object key or "}"
	stateScopeEnd                // after a value, before "," or the end of its container
)

// Parse parses a single JSON value from the input and delivers events for it
// to h. The nesting depth is limited only by available memory. It is an
// error if anything other than whitespace follows the value.
func (p *Parser) Parse(h Handler) error {
	if err := p.start(); err != nil {
		return err
	}
	if err := p.parseValue(h); err != nil {
		return err
	}
	return p.finish()
}

// ParseOne parses a single JSON value from the input and delivers events
// for it to h, leaving the parser positioned after the value. If only
// whitespace remains, it reports an error whose category is EOF.
func (p *Parser) ParseOne(h Handler) error {
	if err := p.start(); err != nil {
		return err
	}
	return p.parseValue(h)
}

// parseValue parses one value using an explicit stack of open containers.
func (p *Parser) parseValue(h Handler) error {
	stk := p.frames[:0]
	defer func() { p.frames = stk[:0] }()

	var st state
	switch c := p.next(); c {
	case '[':
		stk = append(stk, frame{})
		st = stateArrayValue
		if err := h.BeginArray(); err != nil {
			return err
		}
	case '{':
		stk = append(stk, frame{object: true})
		st = stateObjectKey
		if err := h.BeginObject(); err != nil {
			return err
		}
	default:
		return p.scalar(c, h)
	}

	for len(stk) != 0 {
		top := &stk[len(stk)-1]
		c := p.next()
		switch st {
		case stateObjectKey:
			if c == '}' && top.count == 0 {
				stk = stk[:len(stk)-1]
				st = stateScopeEnd
				if err := h.EndObject(0); err != nil {
					return err
				}
				continue
			}
			if err := p.key(c, h, top.count == 0); err != nil {
				return err
			}
			top.count++
			c = p.next()

		case stateArrayValue:
			if c == ']' {
				if top.count != 0 {
					return p.fail(TrailingComma, p.pos-1)
				}
				stk = stk[:len(stk)-1]
				st = stateScopeEnd
				if err := h.EndArray(0); err != nil {
					return err
				}
				continue
			}
			top.count++

		case stateScopeEnd:
			switch {
			case c == ',':
				if top.object {
					st = stateObjectKey
				} else {
					st = stateArrayValue
				}
			case c == ']' && !top.object:
				n := top.count
				stk = stk[:len(stk)-1]
				if err := h.EndArray(n); err != nil {
					return err
				}
			case c == '}' && top.object:
				n := top.count
				stk = stk[:len(stk)-1]
				if err := h.EndObject(n); err != nil {
					return err
				}
			case top.object:
				return p.unexpected(c, ExpectedObjectCommaOrEnd)
			default:
				return p.unexpected(c, ExpectedArrayCommaOrEnd)
			}
			continue
		}

		// Reaching here, c is the first byte of an array element or member value.
		switch c {
		case '[':
			stk = append(stk, frame{})
			st = stateArrayValue
			if err := h.BeginArray(); err != nil {
				return err
			}
		case '{':
			stk = append(stk, frame{object: true})
			st = stateObjectKey
			if err := h.BeginObject(); err != nil {
				return err
			}
		default:
			if err := p.scalar(c, h); err != nil {
				return err
			}
			st = stateScopeEnd
		}
	}
	return nil
}

// Decode parses a single JSON value from the input and delivers events for
// it to h, as Parse does, but descends into nested containers by recursion.
// It fails with [RecursionLimitExceeded] if the value is nested more deeply
// than the limit set by [Parser.MaxDepth].
func (p *Parser) Decode(h Handler) error {
	if err := p.start(); err != nil {
		return err
	}
	if err := p.decodeValue(h, p.next(), 0); err != nil {
		return err
	}
	return p.finish()
}

// decodeValue reports the value whose first byte c was just consumed, inside
// depth enclosing containers.
func (p *Parser) decodeValue(h Handler, c, depth int) error {
	switch c {
	case '[':
		if depth >= p.maxDepth {
			return p.fail(RecursionLimitExceeded, p.pos-1)
		}
		if err := h.BeginArray(); err != nil {
			return err
		}
		var n int
		if c = p.next(); c == ']' {
			return h.EndArray(0)
		}
		for {
			if err := p.decodeValue(h, c, depth+1); err != nil {
				return err
			}
			n++
			switch c = p.next(); c {
			case ',':
				if c = p.next(); c == ']' {
					return p.fail(TrailingComma, p.pos-1)
				}
			case ']':
				return h.EndArray(n)
			default:
				return p.unexpected(c, ExpectedArrayCommaOrEnd)
			}
		}

	case '{':
		if depth >= p.maxDepth {
			return p.fail(RecursionLimitExceeded, p.pos-1)
		}
		if err := h.BeginObject(); err != nil {
			return err
		}
		var n int
		if c = p.next(); c == '}' {
			return h.EndObject(0)
		}
		for {
			if err := p.key(c, h, n == 0); err != nil {
				return err
			}
			if err := p.decodeValue(h, p.next(), depth+1); err != nil {
				return err
			}
			n++
			switch c = p.next(); c {
			case ',':
				c = p.next()
			case '}':
				return h.EndObject(n)
			default:
				return p.unexpected(c, ExpectedObjectCommaOrEnd)
			}
		}
	}
	return p.scalar(c, h)
}
