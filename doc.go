// Package tinyexpr compiles and evaluates floating-point arithmetic
// expressions.
//
// An expression is made of decimal numbers, names bound to variables or
// functions, the operators + - * / % ^, parentheses, and commas. The grammar,
// from loosest to tightest binding, is:
//
//	list   = expr {',' expr}
//	expr   = term {('+' | '-') term}
//	term   = factor {('*' | '/' | '%') factor}
//	factor = power {'^' power}
//	power  = {'+' | '-'} base
//	base   = number | variable | function call | '(' list ')'
//
// All binary operators are left-associative, so "2^3^2" is 64, unless the
// PowFromRight option is given. "a, b" evaluates both and yields b. A
// function of N > 0 arguments must be called with exactly N comma-separated
// arguments in parentheses; a function of no arguments may be written with or
// without "()".
//
// Compile resolves names against the caller's bindings before the builtin
// functions, so a binding named "pi" hides the builtin pi. Variables are read
// through their addresses each time an expression is evaluated:
//
//	var x float64
//	e, err := tinyexpr.Compile("x^2 + 1", []tinyexpr.Binding{tinyexpr.Var("x", &x)})
//	if err != nil {
//		// err.(tinyexpr.InputError).Pos() is where parsing stopped.
//	}
//	defer e.Free()
//	x = 3
//	fmt.Println(e.Eval()) // 10
//
// Calls to pure functions with constant arguments, including operators on
// constants, are evaluated once during compilation.
package tinyexpr
