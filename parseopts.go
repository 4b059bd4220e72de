package tinyexpr

import (
	"strconv"

	"go.uber.org/zap"
)

// CompileOption is an option for compiling.
type CompileOption interface {
	compileOption(compilecfg) compilecfg
}

// compilecfg holds the settings for one compile.
type compilecfg struct {
	// powright selects right-associative exponentiation.
	powright bool
	// natlog makes log the natural logarithm instead of base 10.
	natlog bool
	// nofold disables constant folding.
	nofold bool
	// depth is the maximum nesting depth, or 0 for no limit.
	depth int
	// nodes is the maximum number of nodes, or 0 for no limit.
	nodes int
	// alloc overrides the allocator. Only tests set it.
	alloc allocator
	log   *zap.Logger
}

type (
	powopt   struct{}
	natopt   struct{}
	nofold   struct{}
	depthopt int
	nodesopt int
	logopt   struct{ l *zap.Logger }
	allocopt struct{ a allocator }
)

// PowFromRight makes exponentiation right-associative, so that "a^b^c" is
// "a^(b^c)". It also makes a leading negation apply to the whole chain, so
// that "-a^b" is "-(a^b)". By default, "a^b^c" is "(a^b)^c" and "-a^b" is
// "(-a)^b".
func PowFromRight() CompileOption {
	return powopt{}
}

func (powopt) compileOption(c compilecfg) compilecfg {
	c.powright = true
	return c
}

// NaturalLog makes the builtin log compute the natural logarithm rather than
// the base-10 logarithm.
func NaturalLog() CompileOption {
	return natopt{}
}

func (natopt) compileOption(c compilecfg) compilecfg {
	c.natlog = true
	return c
}

// NoFolding disables evaluation of constant subexpressions during
// compilation.
func NoFolding() CompileOption {
	return nofold{}
}

func (nofold) compileOption(c compilecfg) compilecfg {
	c.nofold = true
	return c
}

// MaxDepth limits how deeply grammar productions may nest while compiling.
// Exceeding the limit produces a *DepthError. n <= 0 removes the limit, which
// is the default.
func MaxDepth(n int) CompileOption {
	return depthopt(n)
}

func (o depthopt) compileOption(c compilecfg) compilecfg {
	c.depth = int(o)
	return c
}

// MaxNodes limits the number of nodes a compiled expression may contain,
// including intermediate nodes later removed by constant folding. Exceeding
// the limit produces ErrAllocation. n <= 0 removes the limit, which is the
// default.
func MaxNodes(n int) CompileOption {
	return nodesopt(n)
}

func (o nodesopt) compileOption(c compilecfg) compilecfg {
	c.nodes = int(o)
	return c
}

// Logger sets a logger to receive debug messages about compilation. The
// default discards all messages.
func Logger(l *zap.Logger) CompileOption {
	if l == nil {
		panic("tinyexpr: nil logger")
	}
	return logopt{l}
}

func (o logopt) compileOption(c compilecfg) compilecfg {
	c.log = o.l
	return c
}

func (o allocopt) compileOption(c compilecfg) compilecfg {
	c.alloc = o.a
	return c
}

// newcfg applies opts in order.
func newcfg(opts []CompileOption) compilecfg {
	var c compilecfg
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		c = opt.compileOption(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.alloc == nil {
		if c.nodes > 0 {
			c.alloc = &budget{max: c.nodes}
		} else {
			c.alloc = heap{}
		}
	}
	return c
}

// String describes the configuration, for logging.
func (c compilecfg) String() string {
	s := "pow=left"
	if c.powright {
		s = "pow=right"
	}
	if c.natlog {
		s += " log=ln"
	}
	if c.nofold {
		s += " nofold"
	}
	if c.depth > 0 {
		s += " depth=" + strconv.Itoa(c.depth)
	}
	if c.nodes > 0 {
		s += " nodes=" + strconv.Itoa(c.nodes)
	}
	return s
}
