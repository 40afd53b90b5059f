// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package jpath parses textual path expressions into paths for the jsimd
// lookup functions.
//
// Two notations are supported. A JSONPath expression begins with "$" and is
// parsed in full, but only its member and index steps can be converted to a
// jsimd.Path:
//
//	$.store.book[0]['display title']
//
// A JSON Pointer (RFC 6901) is a sequence of "/"-prefixed reference tokens:
//
//	/store/book/0/display title
package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creachadair/jsimd"
)

/*
Grammar:

  expr = "$" { step }
  step = "." name | ".." name | "[" selector "]"
  name = WORD | "'" QTEXT "'" | "*"
  selector = name | INDEX | INDEX? ":" INDEX? | "(" TEXT ")" | "?(" TEXT ")"

  WORD = RE `\w+`
 QTEXT = RE `[^']*`
 INDEX = RE `-?\d+(,-?\d+)*`
  TEXT = { text with balanced parentheses }

Source:
  https://www.ietf.org/archive/id/draft-goessner-dispatch-jsonpath-00.html
*/

// ErrUnsupported is reported by Expr.Path for steps that do not denote a
// single key or index.
var ErrUnsupported = errors.New("step is not a key or index")

// An Expr is a parsed JSONPath expression.
type Expr []Step

// An Op is a path operator.
type Op byte

const (
	Invalid  Op = iota // invalid operator
	Member             // member lookup (.name)
	Quoted             // quoted member lookup (['name'])
	Index              // array index lookup ([n])
	Slice              // array slice ([lo:hi])
	Wildcard           // wildcard expansion (* or [*])
	Recur              // recursive descent (..name)
	Filter             // filter operator ([?(...)])
	Script             // script operator ([(...)])
)

var opText = [...]string{
	Invalid:  "invalid",
	Member:   "member",
	Quoted:   "quoted",
	Index:    "index",
	Slice:    "slice",
	Wildcard: "wildcard",
	Recur:    "recur",
	Filter:   "filter",
	Script:   "script",
}

func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return opText[Invalid]
}

// A Step is a single step of a JSONPath expression. For a Slice, Arg is the
// lower bound and Hi the upper bound; either may be empty. Dotted marks a
// member or wildcard written with a leading dot rather than in brackets.
type Step struct {
	Op     Op
	Arg    string
	Hi     string
	Dotted bool
}

func (s Step) String() string {
	switch s.Op {
	case Member:
		if s.Dotted {
			return "." + s.Arg
		}
		return "[" + s.Arg + "]"
	case Quoted:
		if s.Dotted {
			return ".'" + s.Arg + "'"
		}
		return "['" + s.Arg + "']"
	case Wildcard:
		if s.Dotted {
			return ".*"
		}
		return "[*]"
	case Recur:
		if s.Arg != "*" && wordRE.FindString(s.Arg) != s.Arg {
			return "..'" + s.Arg + "'"
		}
		return ".." + s.Arg
	case Index:
		return "[" + s.Arg + "]"
	case Slice:
		return "[" + s.Arg + ":" + s.Hi + "]"
	case Filter:
		return "[?(" + s.Arg + ")]"
	case Script:
		return "[(" + s.Arg + ")]"
	}
	return "<invalid>"
}

func (e Expr) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, s := range e {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Parse parses s as a JSONPath expression.
func Parse(s string) (Expr, error) {
	rest, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var out Expr
	for rest != "" {
		step, next, err := parseStep(rest)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", len(s)-len(rest), err)
		}
		out = append(out, step)
		rest = next
	}
	return out, nil
}

// MustParse is as Parse, but panics if s is not a valid expression.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("jpath: %q: %v", s, err))
	}
	return e
}

// Path converts e to a jsimd.Path. It reports ErrUnsupported if e contains a
// step that is not a member name or a single non-negative index.
func (e Expr) Path() (jsimd.Path, error) {
	out := make(jsimd.Path, 0, len(e))
	for i, s := range e {
		switch s.Op {
		case Member, Quoted:
			out = append(out, jsimd.Key(s.Arg))
			continue
		case Index:
			if n, err := strconv.Atoi(s.Arg); err == nil && n >= 0 {
				out = append(out, jsimd.Index(n))
				continue
			}
		}
		return nil, fmt.Errorf("step %d (%v): %w", i+1, s, ErrUnsupported)
	}
	return out, nil
}

func parseStep(s string) (Step, string, error) {
	switch {
	case strings.HasPrefix(s, ".."):
		st, rest, err := parseName(s[2:])
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid ..name: %w", err)
		}
		st.Op, st.Dotted = Recur, true
		return st, rest, nil

	case strings.HasPrefix(s, "."):
		st, rest, err := parseName(s[1:])
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid .name: %w", err)
		}
		st.Dotted = true
		return st, rest, nil

	case strings.HasPrefix(s, "["):
		st, rest, err := parseSelector(s[1:])
		if err != nil {
			return Step{}, s, err
		}
		rest, ok := strings.CutPrefix(rest, "]")
		if !ok {
			return Step{}, s, errors.New("missing close bracket")
		}
		return st, rest, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

func parseName(s string) (Step, string, error) {
	if rest, ok := strings.CutPrefix(s, "*"); ok {
		return Step{Op: Wildcard, Arg: "*"}, rest, nil
	} else if m := wordRE.FindString(s); m != "" {
		return Step{Op: Member, Arg: m}, s[len(m):], nil
	} else if m := quoteRE.FindStringSubmatch(s); m != nil {
		return Step{Op: Quoted, Arg: m[1]}, s[len(m[0]):], nil
	}
	return Step{}, s, errors.New("invalid name")
}

func parseSelector(s string) (Step, string, error) {
	if rest, ok := strings.CutPrefix(s, "?("); ok {
		text, rest, err := parseScript(rest)
		return Step{Op: Filter, Arg: text}, rest, err
	} else if rest, ok := strings.CutPrefix(s, "("); ok {
		text, rest, err := parseScript(rest)
		return Step{Op: Script, Arg: text}, rest, err
	}

	lo := indexRE.FindString(s)
	if rest, ok := strings.CutPrefix(s[len(lo):], ":"); ok {
		hi := indexRE.FindString(rest)
		if lo == "" && hi == "" {
			return Step{}, s, errors.New("invalid slice")
		}
		return Step{Op: Slice, Arg: lo, Hi: hi}, rest[len(hi):], nil
	} else if lo != "" {
		return Step{Op: Index, Arg: lo}, s[len(lo):], nil
	}
	if st, rest, err := parseName(s); err == nil {
		return st, rest, nil
	}
	return Step{}, s, fmt.Errorf("invalid selector: %q", s)
}

// parseScript returns the text up to the parenthesis that closes an already
// consumed open parenthesis.
func parseScript(s string) (text, rest string, _ error) {
	depth := 1
	for i, c := range []byte(s) {
		switch c {
		case '(':
			depth++
		case ')':
			if depth--; depth == 0 {
				return s[:i], s[i+1:], nil
			}
		}
	}
	return "", s, errors.New("unbalanced parentheses")
}

var (
	wordRE  = regexp.MustCompile(`^\w+`)
	indexRE = regexp.MustCompile(`^-?\d+(?:,-?\d+)*`)
	quoteRE = regexp.MustCompile(`^'([^']*)'`)
)

// ParsePointer parses s as a JSON Pointer (RFC 6901). The escapes "~1" and
// "~0" denote "/" and "~". A reference token consisting only of decimal
// digits with no redundant leading zero is taken as an array index; any
// other token is an object key. The empty pointer denotes the whole value.
func ParsePointer(s string) (jsimd.Path, error) {
	if s == "" {
		return jsimd.Path{}, nil
	} else if s[0] != '/' {
		return nil, errors.New("pointer must begin with /")
	}
	toks := strings.Split(s[1:], "/")
	out := make(jsimd.Path, len(toks))
	for i, tok := range toks {
		if isIndexToken(tok) {
			if n, err := strconv.Atoi(tok); err == nil {
				out[i] = jsimd.Index(n)
				continue
			}
		}
		key, err := unescapeToken(tok)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i+1, err)
		}
		out[i] = jsimd.Key(key)
	}
	return out, nil
}

// FormatPointer renders p as a JSON Pointer.
func FormatPointer(p jsimd.Path) string {
	var sb strings.Builder
	for _, e := range p {
		sb.WriteByte('/')
		if k, ok := e.Key(); ok {
			sb.WriteString(tokenEscaper.Replace(k))
		} else {
			i, _ := e.Index()
			sb.WriteString(strconv.Itoa(i))
		}
	}
	return sb.String()
}

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func isIndexToken(tok string) bool {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return false
	}
	for _, c := range []byte(tok) {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func unescapeToken(tok string) (string, error) {
	if !strings.Contains(tok, "~") {
		return tok, nil
	}
	var sb strings.Builder
	for i := 0; i < len(tok); i++ {
		if tok[i] != '~' {
			sb.WriteByte(tok[i])
			continue
		}
		if i+1 == len(tok) || (tok[i+1] != '0' && tok[i+1] != '1') {
			return "", fmt.Errorf("invalid escape at offset %d", i)
		}
		if tok[i+1] == '0' {
			sb.WriteByte('~')
		} else {
			sb.WriteByte('/')
		}
		i++
	}
	return sb.String(), nil
}
