package tinyexpr

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diff finds the first in-order node of n that differs from m, or nil, nil if
// the two ASTs are equal. If any node is nodeNone, it is returned.
func (n *node) diff(m *node) (*node, *node) {
	if n == nil {
		if m != nil {
			return n, m
		}
		return nil, nil
	}
	if m == nil {
		return n, m
	}
	if n.kind == nodeNone || m.kind == nodeNone {
		return n, m
	}
	if n.kind != m.kind {
		return n, m
	}
	switch n.kind {
	case nodeConst:
		if n.value != m.value {
			return n, m
		}
	case nodeVar:
		if n.bound != m.bound || n.name != m.name {
			return n, m
		}
	case nodeCall:
		if n.name != m.name || n.op != m.op || len(n.args) != len(m.args) {
			return n, m
		}
		if n.fn.arity != m.fn.arity || n.fn.pure != m.fn.pure || n.fn.closure != m.fn.closure {
			return n, m
		}
		for i := range n.args {
			if d, e := n.args[i].diff(m.args[i]); d != nil || e != nil {
				return d, e
			}
		}
	default:
		panic(fmt.Errorf("invalid node kind: n=%+v m=%+v", n, m))
	}
	return nil, nil
}

// haskind checks whether a parse tree contains a node of the given type.
func (n *node) haskind(k nodeKind) bool {
	if n == nil {
		return false
	}
	if n.kind == k {
		return true
	}
	for _, c := range n.args {
		if c.haskind(k) {
			return true
		}
	}
	return false
}

// tracker is an allocator that records every live node. If max is positive,
// allocation fails once max nodes have been allocated in total.
type tracker struct {
	live    map[*node]bool
	allocs  int
	max     int
	badfree int
}

func newTracker(max int) *tracker {
	return &tracker{live: make(map[*node]bool), max: max}
}

func (t *tracker) alloc() *node {
	if t.max > 0 && t.allocs >= t.max {
		return nil
	}
	t.allocs++
	n := new(node)
	t.live[n] = true
	return n
}

func (t *tracker) release(n *node) {
	if !t.live[n] {
		t.badfree++
	}
	delete(t.live, n)
	*n = node{kind: nodeNone}
}

func (t *tracker) opt() CompileOption {
	return allocopt{t}
}

var (
	ta, tb, tc, td float64
	testvars       = []Binding{
		Var("a", &ta),
		Var("b", &tb),
		Var("c", &tc),
		Var("d", &td),
		Func("id", func(x float64) float64 { return x }, false),
		Func("sum3", func(x, y, z float64) float64 { return x + y + z }, true),
		Func("rnd", func() float64 { return 4 }, false),
		Closure("k", func(ctx any) float64 { return ctx.(float64) }, 2.0, true),
	}
)

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(a)", "a"},
		{"multi", "((((a))))", "a"},
		{"plus", "+a", "a"},
		{"negneg", "--a", "a"},
		{"negnegneg", "---a", "-a"},
		{"plusneg", "+-+a", "-a"},
		{"spaces", " a +\tb\r\n", "a+b"},

		{"add3", "a+b+c", "(a+b)+c"},
		{"sub3", "a-b-c", "(a-b)-c"},
		{"mul3", "a*b*c", "(a*b)*c"},
		{"div3", "a/b/c", "(a/b)/c"},
		{"mod3", "a%b%c", "(a%b)%c"},
		{"pow3", "a^b^c", "(a^b)^c"},
		{"comma3", "a,b,c", "(a,b),c"},

		{"desc", "a^b*c+d", "((a^b)*c)+d"},
		{"asc", "a+b*c^d", "a+(b*(c^d))"},
		{"mixed", "a-b%c/d", "a-((b%c)/d)"},
		{"commaprec", "a+b,c*d", "(a+b),(c*d)"},
		{"negpow", "-a^b", "(-a)^b"},
		{"powneg", "a^-b", "a^(-b)"},
		{"mulneg", "a*-b", "a*(-b)"},
		{"subneg", "a--b", "a-(-b)"},

		{"call1", "id(a+b)", "id((a+b))"},
		{"call3", "sum3(a, b*c, -d)", "sum3((a), (b*c), (-d))"},
		{"negcall", "-id(a)", "-(id(a))"},
		{"callpow", "id(a)^b", "(id(a))^b"},
		{"call0", "rnd()", "rnd"},
		{"closure0", "k()+a", "k+a"},
		{"nested", "id(id(id(a)))", "id((id((id(a)))))"},
		{"groupcomma", "(a,b)+c", "((a,b))+c"},
		{"argcomma", "id((a,b))", "id(((a,b)))"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Compile(c.a, testvars, NoFolding())
			require.NoError(t, err, "compiling %q", c.a)
			b, err := Compile(c.b, testvars, NoFolding())
			require.NoError(t, err, "compiling %q", c.b)
			d, e := a.n.diff(b.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", c.a, a.n, d, c.b, b.n, e)
			}
		})
	}
}

func TestParseTreesPowFromRight(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"pow3", "a^b^c", "a^(b^c)"},
		{"pow4", "a^b^c^d", "a^(b^(c^d))"},
		{"negpow", "-a^b", "-(a^b)"},
		{"negpow3", "-a^b^c", "-(a^(b^c))"},
		{"negnegpow", "--a^b", "a^b"},
		{"powneg", "a^-b^c", "a^((-b)^c)"},
		{"parenneg", "(-a)^b", "(-a)^b"},
		{"mul", "a*b^c^d", "a*(b^(c^d))"},
		{"single", "-a", "-(a)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Compile(c.a, testvars, NoFolding(), PowFromRight())
			require.NoError(t, err, "compiling %q", c.a)
			b, err := Compile(c.b, testvars, NoFolding(), PowFromRight())
			require.NoError(t, err, "compiling %q", c.b)
			d, e := a.n.diff(b.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", c.a, a.n, d, c.b, b.n, e)
			}
		})
	}
	// The negation in parentheses belongs to the base only.
	a, err := Compile("(-a)^b", testvars, NoFolding(), PowFromRight())
	require.NoError(t, err)
	require.Equal(t, nodeCall, a.n.kind)
	assert.Equal(t, byte('^'), a.n.op)
}

func TestParseExact(t *testing.T) {
	e, err := Compile("sum3(a, 2, k)", testvars, NoFolding())
	require.NoError(t, err)
	n := e.n
	require.Equal(t, nodeCall, n.kind)
	assert.Equal(t, "sum3", n.name)
	assert.EqualValues(t, 3, n.fn.arity)
	require.Len(t, n.args, 3)
	assert.Equal(t, nodeVar, n.args[0].kind)
	assert.Same(t, &ta, n.args[0].bound)
	assert.Equal(t, nodeConst, n.args[1].kind)
	assert.Equal(t, 2.0, n.args[1].value)
	assert.Equal(t, nodeCall, n.args[2].kind)
	assert.True(t, n.args[2].fn.closure)
	assert.Equal(t, 2.0, n.args[2].fn.ctx)
	assert.Empty(t, n.args[2].args)
}

func TestArityInvariant(t *testing.T) {
	srcs := []string{
		"a+b*c-d/a%b^c",
		"sum3(a, id(b), -c), rnd",
		"-(-(a))",
		"k()*pi+e",
		"atan2(a, b) + pow(c, d)",
	}
	var check func(t *testing.T, n *node)
	check = func(t *testing.T, n *node) {
		switch n.kind {
		case nodeCall:
			assert.Len(t, n.args, int(n.fn.arity), "%v", n)
			for _, c := range n.args {
				check(t, c)
			}
		case nodeConst, nodeVar:
			assert.Empty(t, n.args)
		default:
			t.Errorf("bad node kind %v", n.kind)
		}
	}
	for _, src := range srcs {
		e, err := Compile(src, testvars, NoFolding())
		require.NoError(t, err, src)
		check(t, e.n)
	}
}

func TestExprString(t *testing.T) {
	cases := []string{
		"a",
		"-a",
		"a-b-c",
		"a^b^c",
		"a, b, c",
		"(a, b) * c",
		"sum3(a, (b, c), d)",
		"id(-a)^-b",
		"rnd() + k",
		"1.5e+21 * 0.25",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			a, err := Compile(src, testvars, NoFolding())
			require.NoError(t, err)
			s := a.String()
			b, err := Compile(s, testvars, NoFolding())
			require.NoError(t, err, "%q -> %q", src, s)
			d, e := a.n.diff(b.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", src, a.n, d, s, b.n, e)
			}
		})
	}
	e, err := Compile("a-b-c", testvars, NoFolding())
	require.NoError(t, err)
	assert.Equal(t, "(((a) - (b)) - (c))", e.String())
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  InputError
		pos  int
	}{
		{"empty", "", new(SyntaxError), 1},
		{"spaces", "   ", new(SyntaxError), 3},
		{"dangling", "2+", new(SyntaxError), 2},
		{"danglingspace", "2 + ", new(SyntaxError), 4},
		{"unary", "-", new(SyntaxError), 1},
		{"leadingop", "*1", new(SyntaxError), 1},
		{"twonums", "1 2", new(SyntaxError), 3},
		{"comma", "1,", new(SyntaxError), 2},
		{"emptyparen", "()", new(SyntaxError), 2},
		{"unknown", "foo", new(TokenError), 3},
		{"unknownlater", "1+foo*2", new(TokenError), 5},
		{"invalid", "1+$", new(TokenError), 3},
		{"dot", ".", new(TokenError), 1},
		{"open", "(1", new(BracketError), 2},
		{"opennested", "((1)", new(BracketError), 4},
		{"close", "1)", new(BracketError), 2},
		{"closeearly", ")", new(BracketError), 1},
		{"unary2", "sin(1,2)", new(CallError), 6},
		{"binary1", "atan2(1)", new(CallError), 8},
		{"binary3", "atan2(1,2,3)", new(CallError), 10},
		{"bare", "sin 1", new(CallError), 5},
		{"noargs", "sin", new(CallError), 3},
		{"emptyargs", "sin()", new(CallError), 5},
		{"niladicarg", "pi(1)", new(CallError), 4},
		{"niladicopen", "pi(", new(BracketError), 3},
		{"argsopen", "atan2(1,2", new(BracketError), 9},
		{"argsinvalid", "atan2(1 $)", new(TokenError), 9},
		{"argsgarbage", "atan2(1 2)", new(SyntaxError), 9},
		{"deep", "sum3(1, id(2), sum3(3, 4, (5+6)*))", new(SyntaxError), 33},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := Compile(c.src, testvars)
			assert.Nil(t, e)
			require.Error(t, err)
			assert.IsType(t, c.err, err, "error: %v", err)
			assert.Equal(t, c.pos, ErrorPos(err), "error: %v", err)
			assert.True(t, strings.HasPrefix(err.Error(), fmt.Sprint(c.pos)+": "), "message %q", err.Error())
		})
	}
}

func TestMaxDepth(t *testing.T) {
	_, err := Compile("((1))", nil, MaxDepth(2))
	require.NoError(t, err)
	_, err = Compile("sin(cos(1))", nil, MaxDepth(2))
	require.NoError(t, err)

	_, err = Compile("(((1)))", nil, MaxDepth(2))
	var de *DepthError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 3, de.Pos())
	assert.Equal(t, 2, de.Max)

	_, err = Compile("sin(sin(sin(1)))", nil, MaxDepth(2))
	require.ErrorAs(t, err, &de)

	_, err = Compile(strings.Repeat("(", 500)+"1"+strings.Repeat(")", 500), nil)
	require.NoError(t, err)
}

func TestMaxNodes(t *testing.T) {
	v, err := Interpret("1+2", MaxNodes(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = Interpret("1+2+3", MaxNodes(3))
	assert.ErrorIs(t, err, ErrAllocation)
	assert.Equal(t, -1, ErrorPos(err))
	assert.True(t, math.IsNaN(v))
}

// leakcases are inputs for checking that compiling releases exactly the nodes
// it does not return.
var leakcases = []string{
	"1",
	"a",
	"1+2*3",
	"a+2*3",
	"-(a^b)%c, d",
	"sum3(a, id(2*3), -sum3(1, 2, k))",
	"id(2*3)+1",
	"2+",
	"(1",
	"1)",
	"sin(1,2)",
	"atan2(1)",
	"atan2(1,2,3)",
	"pi(1)",
	"sum3(a, b, c",
	"sum3(a, id(b), sum3(c, d, (1+2)*))",
	"sum3(1, sum3(2, sum3(3, sum3(4, 5, 6), 7), 8), foo)",
	"a^b^c^",
	"-a^-b^-c^$",
	"((((a+b)*c)-d)",
	"1,2,3,",
}

func TestCompileReleases(t *testing.T) {
	for _, src := range leakcases {
		for _, opts := range [][]CompileOption{nil, {PowFromRight()}, {NoFolding()}} {
			t.Run(src, func(t *testing.T) {
				tr := newTracker(0)
				e, err := Compile(src, testvars, append(opts, tr.opt())...)
				if err != nil {
					assert.Nil(t, e)
					assert.Empty(t, tr.live, "nodes leaked after %v", err)
				} else {
					assert.Equal(t, count(e.n), len(tr.live), "unreachable live nodes")
					e.Free()
					assert.Empty(t, tr.live, "nodes leaked after Free")
					e.Free()
				}
				assert.Zero(t, tr.badfree, "released nodes that were not live")
			})
		}
	}
}

func TestCompileAllocFailure(t *testing.T) {
	for _, src := range leakcases {
		for _, opts := range [][]CompileOption{nil, {PowFromRight()}} {
			full := newTracker(0)
			_, ferr := Compile(src, testvars, append(opts, full.opt())...)
			for k := 1; k <= full.allocs; k++ {
				tr := newTracker(k)
				e, err := Compile(src, testvars, append(opts, tr.opt())...)
				switch {
				case err == nil:
					// The limit counts every allocation, including nodes
					// released by folding.
					require.Equal(t, full.allocs, tr.allocs, "%q succeeded with %d allocs", src, k)
					e.Free()
				case k < full.allocs:
					if err != ErrAllocation {
						// A syntax error can be found before running out.
						assert.Equal(t, ferr, err, "%q with %d allocs", src, k)
					}
				default:
					assert.Equal(t, ferr, err, "%q with %d allocs", src, k)
				}
				assert.Empty(t, tr.live, "%q leaked with %d allocs", src, k)
				assert.Zero(t, tr.badfree, "%q double released with %d allocs", src, k)
			}
		}
	}
}

func TestVars(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars []string
	}{
		{"none", "1+2+3", nil},
		{"one", "1+2+c", []string{"c"}},
		{"sort", "d+c+b+a", []string{"a", "b", "c", "d"}},
		{"reuse", "a+b+c+b+a", []string{"a", "b", "c"}},
		{"funcs", "id(b)+rnd()", []string{"b"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := Compile(c.src, testvars)
			require.NoError(t, err)
			assert.Equal(t, c.vars, e.Vars())
		})
	}
}

func BenchmarkCompile(b *testing.B) {
	cases := []struct {
		name string
		src  string
	}{
		{"nums", "1+2*3-4/5%6^7"},
		{"vars", "a+b*c-d/a%b^c"},
		{"parens", "(((a+b)*c)-d)"},
		{"calls", "sum3(a, id(b), sin(c))"},
		{"builtins", "2 + 3 * sin(pi/2)"},
	}
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				e, _ := Compile(c.src, testvars)
				e.Free()
			}
		})
	}
}
