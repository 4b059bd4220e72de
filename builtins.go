package tinyexpr

import (
	"math"
	"math/big"
	"math/bits"

	"github.com/zephyrtronium/bigfloat"
)

// constPrec is the precision used to compute builtin constants before
// rounding them to float64.
const constPrec = 64

var (
	piValue = mustFloat64(bigfloat.Pi(new(big.Float).SetPrec(constPrec)))
	eValue  = mustFloat64(bigfloat.Exp(new(big.Float).SetPrec(constPrec), new(big.Float).SetPrec(constPrec).SetInt64(1)))
)

func mustFloat64(x *big.Float) float64 {
	f, _ := x.Float64()
	return f
}

func pi() float64 { return piValue }
func e() float64  { return eValue }

// fac computes the factorial of trunc(a). Results that do not fit in a 64-bit
// unsigned integer are +Inf. Negative and NaN arguments give NaN.
func fac(a float64) float64 {
	if !(a >= 0) {
		return math.NaN()
	}
	if a > math.MaxUint32 {
		return math.Inf(1)
	}
	n := uint64(a)
	r := uint64(1)
	for i := uint64(1); i <= n; i++ {
		hi, lo := bits.Mul64(r, i)
		if hi != 0 {
			return math.Inf(1)
		}
		r = lo
	}
	return float64(r)
}

// ncr computes the number of combinations of trunc(r) items from trunc(n).
func ncr(n, r float64) float64 {
	if !(n >= 0 && r >= 0 && n >= r) {
		return math.NaN()
	}
	if n > math.MaxUint32 || r > math.MaxUint32 {
		return math.Inf(1)
	}
	un, ur := uint64(n), uint64(r)
	if ur > un/2 {
		ur = un - ur
	}
	res := uint64(1)
	for i := uint64(1); i <= ur; i++ {
		hi, lo := bits.Mul64(res, un-ur+i)
		if hi != 0 {
			return math.Inf(1)
		}
		res = lo / i
	}
	return float64(res)
}

// npr computes the number of permutations of trunc(r) items from trunc(n).
func npr(n, r float64) float64 {
	return ncr(n, r) * fac(r)
}

func builtin(name string, fn any) Binding {
	return Func(name, fn, true)
}

// builtins is the table of default functions. It must remain sorted by name,
// because lookupBuiltin uses a binary search.
var builtins = [...]Binding{
	builtin("abs", math.Abs),
	builtin("acos", math.Acos),
	builtin("asin", math.Asin),
	builtin("atan", math.Atan),
	builtin("atan2", math.Atan2),
	builtin("ceil", math.Ceil),
	builtin("cos", math.Cos),
	builtin("cosh", math.Cosh),
	builtin("e", e),
	builtin("exp", math.Exp),
	builtin("fac", fac),
	builtin("floor", math.Floor),
	builtin("ln", math.Log),
	builtin("log", math.Log10),
	builtin("log10", math.Log10),
	builtin("ncr", ncr),
	builtin("npr", npr),
	builtin("pi", pi),
	builtin("pow", math.Pow),
	builtin("sin", math.Sin),
	builtin("sinh", math.Sinh),
	builtin("sqrt", math.Sqrt),
	builtin("tan", math.Tan),
	builtin("tanh", math.Tanh),
}

// natlog replaces log under NaturalLog.
var natlog = builtin("log", math.Log)

// lookupBuiltin finds a builtin by exact name.
func lookupBuiltin(name string) (*Binding, bool) {
	lo, hi := 0, len(builtins)-1
	for lo <= hi {
		i := lo + (hi-lo)/2
		switch b := &builtins[i]; {
		case name == b.Name:
			return b, true
		case name > b.Name:
			lo = i + 1
		default:
			hi = i - 1
		}
	}
	return nil, false
}

// Builtins returns the names of the builtin functions in sorted order.
func Builtins() []string {
	r := make([]string, len(builtins))
	for i := range builtins {
		r[i] = builtins[i].Name
	}
	return r
}
