package tinyexpr

import (
	"math"
	"strconv"
)

// MaxArity is the largest number of arguments a function binding may take.
const MaxArity = 7

// Binding associates a name with either a variable or a function. Bindings
// passed to Compile are searched in order before the builtin functions, so
// they shadow builtins with the same name.
type Binding struct {
	// Name is the identifier that resolves to this binding.
	Name string

	addr *float64
	fn   callable
}

// Var binds name to a variable. The expression reads *addr each time it is
// evaluated, so changes to *addr after compiling are visible to Eval.
func Var(name string, addr *float64) Binding {
	if addr == nil {
		panic("tinyexpr: nil address for variable " + strconv.Quote(name))
	}
	return Binding{Name: name, addr: addr}
}

// Func binds name to a function of zero to seven float64 arguments. fn must be
// one of func() float64, func(float64) float64, and so on up to seven
// parameters. If pure is true, then the function's result must depend only on
// its arguments, and calls with constant arguments are evaluated once during
// compilation.
func Func(name string, fn any, pure bool) Binding {
	n := funcArity(fn)
	if n < 0 {
		panic("tinyexpr: unsupported function type for " + strconv.Quote(name))
	}
	return Binding{Name: name, fn: callable{fn: fn, arity: int8(n), pure: pure}}
}

// Closure binds name to a function that receives ctx as its first argument
// ahead of zero to seven float64 arguments. fn must be one of
// func(any) float64, func(any, float64) float64, and so on.
func Closure(name string, fn any, ctx any, pure bool) Binding {
	n := closureArity(fn)
	if n < 0 {
		panic("tinyexpr: unsupported closure type for " + strconv.Quote(name))
	}
	return Binding{Name: name, fn: callable{fn: fn, ctx: ctx, arity: int8(n), closure: true, pure: pure}}
}

// IsVar returns whether the binding is a variable.
func (b Binding) IsVar() bool {
	return b.addr != nil
}

// Arity returns the number of float64 arguments the bound function takes. It
// is 0 for variables.
func (b Binding) Arity() int {
	return int(b.fn.arity)
}

// callable is a function value with a fixed arity, optionally closed over an
// opaque context.
type callable struct {
	fn      any
	ctx     any
	arity   int8
	closure bool
	pure    bool
}

// call invokes the function. len(args) must equal c.arity. Function values
// of a shape the binding constructors would reject produce NaN.
func (c *callable) call(args []float64) float64 {
	if c.closure {
		return c.callClosure(args)
	}
	switch f := c.fn.(type) {
	case func() float64:
		return f()
	case func(float64) float64:
		return f(args[0])
	case func(float64, float64) float64:
		return f(args[0], args[1])
	case func(float64, float64, float64) float64:
		return f(args[0], args[1], args[2])
	case func(float64, float64, float64, float64) float64:
		return f(args[0], args[1], args[2], args[3])
	case func(float64, float64, float64, float64, float64) float64:
		return f(args[0], args[1], args[2], args[3], args[4])
	case func(float64, float64, float64, float64, float64, float64) float64:
		return f(args[0], args[1], args[2], args[3], args[4], args[5])
	case func(float64, float64, float64, float64, float64, float64, float64) float64:
		return f(args[0], args[1], args[2], args[3], args[4], args[5], args[6])
	default:
		return math.NaN()
	}
}

func (c *callable) callClosure(args []float64) float64 {
	x := c.ctx
	switch f := c.fn.(type) {
	case func(any) float64:
		return f(x)
	case func(any, float64) float64:
		return f(x, args[0])
	case func(any, float64, float64) float64:
		return f(x, args[0], args[1])
	case func(any, float64, float64, float64) float64:
		return f(x, args[0], args[1], args[2])
	case func(any, float64, float64, float64, float64) float64:
		return f(x, args[0], args[1], args[2], args[3])
	case func(any, float64, float64, float64, float64, float64) float64:
		return f(x, args[0], args[1], args[2], args[3], args[4])
	case func(any, float64, float64, float64, float64, float64, float64) float64:
		return f(x, args[0], args[1], args[2], args[3], args[4], args[5])
	case func(any, float64, float64, float64, float64, float64, float64, float64) float64:
		return f(x, args[0], args[1], args[2], args[3], args[4], args[5], args[6])
	default:
		return math.NaN()
	}
}

// funcArity returns the number of arguments of a plain function value, or -1
// if fn has an unsupported type.
func funcArity(fn any) int {
	switch fn.(type) {
	case func() float64:
		return 0
	case func(float64) float64:
		return 1
	case func(float64, float64) float64:
		return 2
	case func(float64, float64, float64) float64:
		return 3
	case func(float64, float64, float64, float64) float64:
		return 4
	case func(float64, float64, float64, float64, float64) float64:
		return 5
	case func(float64, float64, float64, float64, float64, float64) float64:
		return 6
	case func(float64, float64, float64, float64, float64, float64, float64) float64:
		return 7
	default:
		return -1
	}
}

// closureArity is like funcArity for closures. The context parameter is not
// counted.
func closureArity(fn any) int {
	switch fn.(type) {
	case func(any) float64:
		return 0
	case func(any, float64) float64:
		return 1
	case func(any, float64, float64) float64:
		return 2
	case func(any, float64, float64, float64) float64:
		return 3
	case func(any, float64, float64, float64, float64) float64:
		return 4
	case func(any, float64, float64, float64, float64, float64) float64:
		return 5
	case func(any, float64, float64, float64, float64, float64, float64) float64:
		return 6
	case func(any, float64, float64, float64, float64, float64, float64, float64) float64:
		return 7
	default:
		return -1
	}
}

// Arithmetic used by operators.
func add(a, b float64) float64    { return a + b }
func sub(a, b float64) float64    { return a - b }
func mul(a, b float64) float64    { return a * b }
func divide(a, b float64) float64 { return a / b }
func negate(a float64) float64    { return -a }
func comma(a, b float64) float64  { return b }

// Operator callables. Tokens identify operators by their byte, so these never
// need comparing.
var (
	opAdd    = callable{fn: add, arity: 2, pure: true}
	opSub    = callable{fn: sub, arity: 2, pure: true}
	opMul    = callable{fn: mul, arity: 2, pure: true}
	opDiv    = callable{fn: divide, arity: 2, pure: true}
	opMod    = callable{fn: math.Mod, arity: 2, pure: true}
	opPow    = callable{fn: math.Pow, arity: 2, pure: true}
	opNeg    = callable{fn: negate, arity: 1, pure: true}
	opComma  = callable{fn: comma, arity: 2, pure: true}
	operfunc = [...]struct {
		op byte
		fn *callable
	}{
		{'+', &opAdd},
		{'-', &opSub},
		{'*', &opMul},
		{'/', &opDiv},
		{'%', &opMod},
		{'^', &opPow},
	}
)

// infix gets the callable for an operator byte, or nil if op is not one.
func infix(op byte) *callable {
	for _, o := range operfunc {
		if o.op == op {
			return o.fn
		}
	}
	return nil
}
