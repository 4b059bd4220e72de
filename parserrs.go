package tinyexpr

import (
	"errors"
	"strconv"
)

// SyntaxError is an error indicating a token that cannot appear where it was
// found. It implements InputError.
type SyntaxError struct {
	// Col is the position of the error.
	Col int
	// Token is the unexpected token, or the empty string at the end of the
	// input.
	Token string
}

func (err *SyntaxError) Error() string {
	return errpos(err.Col, "unexpected "+quoteToken(err.Token))
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// TokenError is an error indicating an identifier with no binding or a
// character that begins no token. It implements InputError.
type TokenError struct {
	// Col is the position of the error.
	Col int
	// Text is the invalid token.
	Text string
}

func (err *TokenError) Error() string {
	if err.Text != "" && isAlpha(err.Text[0]) {
		return errpos(err.Col, "unknown name "+strconv.Quote(err.Text))
	}
	return errpos(err.Col, "invalid token "+strconv.Quote(err.Text))
}

func (err *TokenError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched parentheses in the input.
// It implements InputError.
type BracketError struct {
	// Col is the position of the error.
	Col int
	// Left is the opening bracket, or empty if there was none.
	Left string
	// Right is the closing bracket, or empty if there was none.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function call with the wrong number of
// arguments or without an argument list. It implements InputError.
type CallError struct {
	// Col is the position of the error.
	Col int
	// Func is the function name that was called.
	Func string
	// Arity is the number of arguments the function takes.
	Arity int
}

func (err *CallError) Error() string {
	s := " arguments"
	if err.Arity == 1 {
		s = " argument"
	}
	return errpos(err.Col, "must call "+err.Func+" with "+strconv.Itoa(err.Arity)+s+" in parentheses")
}

func (err *CallError) Pos() int {
	return err.Col
}

// DepthError is an error indicating that parentheses or argument lists nest
// more deeply than allowed by MaxDepth. It implements InputError.
type DepthError struct {
	// Col is the position of the error.
	Col int
	// Max is the configured limit.
	Max int
}

func (err *DepthError) Error() string {
	return errpos(err.Col, "expression nested more than "+strconv.Itoa(err.Max)+" deep")
}

func (err *DepthError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of bytes consumed
	// from the input when the error was detected, or 1 if that is zero.
	Pos() int
}

var (
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*TokenError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*DepthError)(nil)
)

// ErrorPos converts an error from Compile or Interpret to an integer code:
// 0 for no error, the position of an InputError, or -1 for ErrAllocation and
// any other error.
func ErrorPos(err error) int {
	if err == nil {
		return 0
	}
	var ie InputError
	if errors.As(err, &ie) {
		return ie.Pos()
	}
	return -1
}
