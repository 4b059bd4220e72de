package tinyexpr

import (
	"io"
	"math"
	"strings"
)

// eval computes the value of the tree rooted at n. Malformed nodes evaluate
// to NaN.
func (n *node) eval() float64 {
	switch n.kind {
	case nodeConst:
		return n.value
	case nodeVar:
		return *n.bound
	case nodeCall:
		if len(n.args) != int(n.fn.arity) || len(n.args) > MaxArity {
			return math.NaN()
		}
		var buf [MaxArity]float64
		args := buf[:len(n.args)]
		for i, c := range n.args {
			args[i] = c.eval()
		}
		return n.fn.call(args)
	default:
		return math.NaN()
	}
}

// Eval evaluates the expression using the current values of its variables.
// The result is NaN if e is nil or has been freed. Domain errors in functions
// are not reported; they produce NaN or infinities as the functions do.
//
// Eval does not modify e, so it is safe to evaluate one expression from
// several goroutines, provided nothing writes its variables concurrently.
func (e *Expr) Eval() float64 {
	if e == nil || e.n == nil {
		return math.NaN()
	}
	return e.n.eval()
}

// Free releases the nodes of the expression. It is safe to call Free on a nil
// Expr and to call it more than once. After Free, Eval returns NaN.
func (e *Expr) Free() {
	if e == nil || e.n == nil {
		return
	}
	free(e.a, e.n)
	e.n = nil
}

// Constant returns the value of the expression and true if the compiled
// expression is a single constant, e.g. because it was folded entirely.
func (e *Expr) Constant() (float64, bool) {
	if e == nil || e.n == nil || e.n.kind != nodeConst {
		return 0, false
	}
	return e.n.value, true
}

// Vars returns the sorted names of the variables the expression reads.
func (e *Expr) Vars() []string {
	if e == nil {
		return nil
	}
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the compiled expression with
// every term parenthesized.
func (e *Expr) String() string {
	if e == nil || e.n == nil {
		return "<nil>"
	}
	var b strings.Builder
	e.n.fmt(&b)
	return b.String()
}

// Dump writes the tree of the compiled expression to w, one node per line:
// constants by value, variables by address, and calls by arity with the
// addresses of their arguments.
func (e *Expr) Dump(w io.Writer) error {
	if e == nil || e.n == nil {
		_, err := io.WriteString(w, "<nil>\n")
		return err
	}
	return e.n.dump(w, 0)
}

// Interpret is a shortcut to compile an expression with no variables,
// evaluate it, and free it. If compiling fails, the result is NaN with the
// compile error.
func Interpret(src string, opts ...CompileOption) (float64, error) {
	e, err := Compile(src, nil, opts...)
	if err != nil {
		return math.NaN(), err
	}
	defer e.Free()
	return e.Eval(), nil
}
