package tinyexpr

import (
	"strconv"
	"strings"
)

type lexToken struct {
	kind tokenKind
	// pos is the byte offset of the start of the token.
	pos int
	// text is the source text of the token.
	text string

	// value is the value of a tokenNum.
	value float64
	// bound is the variable of a tokenVar.
	bound *float64
	// fn is the function of a tokenFunc, tokenInfix, or tokenSep.
	fn callable
	// op is the operator byte of a tokenInfix or tokenSep.
	op byte
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenError is an unknown identifier or invalid character.
	tokenError
	// tokenEnd indicates the end of the input.
	tokenEnd
	// tokenSep is a comma.
	tokenSep
	// tokenOpen is an open parenthesis.
	tokenOpen
	// tokenClose is a close parenthesis.
	tokenClose
	// tokenNum is a number literal.
	tokenNum
	// tokenVar is a name bound to a variable.
	tokenVar
	// tokenFunc is a name bound to a function or closure.
	tokenFunc
	// tokenInfix is an arithmetic operator.
	tokenInfix
)

var tokenKindNames = [...]string{
	tokenNone:  "None",
	tokenError: "Error",
	tokenEnd:   "End",
	tokenSep:   "Sep",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenNum:   "Num",
	tokenVar:   "Var",
	tokenFunc:  "Func",
	tokenInfix: "Infix",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// Operators contains the bytes which are lexed as arithmetic operators.
const Operators = "+-*/%^"

// lexer produces one token at a time from a string.
type lexer struct {
	src string
	// next is the offset of the first byte not yet scanned.
	next int
	// tok is the most recently scanned token.
	tok lexToken

	// vars are the caller's bindings, searched before the builtins.
	vars []Binding
	// natlog makes log resolve to the natural logarithm.
	natlog bool
}

// nextToken scans the next token into l.tok. Once the input is exhausted,
// every call produces tokenEnd.
func (l *lexer) nextToken() {
	for l.next < len(l.src) && isSpace(l.src[l.next]) {
		l.next++
	}
	l.tok = lexToken{pos: l.next}
	if l.next >= len(l.src) {
		l.tok.kind = tokenEnd
		return
	}
	switch c := l.src[l.next]; {
	case isDigit(c), c == '.':
		l.scanNum()
	case isAlpha(c):
		l.scanIdent()
	default:
		l.next++
		l.tok.text = l.src[l.tok.pos:l.next]
		switch c {
		case '(':
			l.tok.kind = tokenOpen
		case ')':
			l.tok.kind = tokenClose
		case ',':
			l.tok.kind = tokenSep
			l.tok.op = ','
			l.tok.fn = opComma
		default:
			if fn := infix(c); fn != nil {
				l.tok.kind = tokenInfix
				l.tok.op = c
				l.tok.fn = *fn
				return
			}
			l.tok.kind = tokenError
		}
	}
}

// scanNum scans the longest prefix of the remaining input that forms a
// decimal floating-point literal: digits, an optional fraction, and an
// optional exponent. An exponent marker not followed by digits is left for
// the next token.
func (l *lexer) scanNum() {
	s := l.src
	i := l.next
	dig := false
	for i < len(s) && isDigit(s[i]) {
		i++
		dig = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			dig = true
		}
	}
	if !dig {
		// A lone decimal point.
		l.next++
		l.tok.text = s[l.tok.pos:l.next]
		l.tok.kind = tokenError
		return
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	l.next = i
	l.tok.text = s[l.tok.pos:i]
	v, err := strconv.ParseFloat(l.tok.text, 64)
	if err != nil && !isRange(err) {
		l.tok.kind = tokenError
		return
	}
	// Out of range literals are ±Inf or 0, as ParseFloat returns them.
	l.tok.kind = tokenNum
	l.tok.value = v
}

// scanIdent scans a name and resolves it.
func (l *lexer) scanIdent() {
	i := l.next
	for i < len(l.src) && (isAlpha(l.src[i]) || isDigit(l.src[i]) || l.src[i] == '_') {
		i++
	}
	l.next = i
	l.tok.text = l.src[l.tok.pos:i]
	b := l.resolve(l.tok.text)
	switch {
	case b == nil:
		l.tok.kind = tokenError
	case b.addr != nil:
		l.tok.kind = tokenVar
		l.tok.bound = b.addr
	default:
		l.tok.kind = tokenFunc
		l.tok.fn = b.fn
	}
}

// resolve finds the binding for a name, first in the caller's bindings in
// order and then in the builtins. The result is nil if there is no binding or
// the first binding with the name is the zero Binding.
func (l *lexer) resolve(name string) *Binding {
	for i := range l.vars {
		if l.vars[i].Name == name {
			b := &l.vars[i]
			if b.addr == nil && b.fn.fn == nil {
				return nil
			}
			return b
		}
	}
	if l.natlog && name == "log" {
		return &natlog
	}
	if b, ok := lookupBuiltin(name); ok {
		return b
	}
	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isRange(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// quoteToken is a printable form of token text for error messages.
func quoteToken(text string) string {
	if text == "" {
		return "end of input"
	}
	return strconv.Quote(strings.TrimSpace(text))
}
