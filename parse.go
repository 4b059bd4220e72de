package tinyexpr

import (
	"strings"

	"go.uber.org/zap"
)

// list   = expr {',' expr}
// expr   = term {('+' | '-') term}
// term   = factor {('*' | '/' | '%') factor}
// factor = power {'^' power}
// power  = {'+' | '-'} base
// base   = num | var | func0 ['(' ')'] | funcN '(' expr {',' expr} ')' | '(' list ')'

// Expr is a compiled expression.
type Expr struct {
	// n is the root node of the expression.
	n *node
	// a is the allocator that produced every node in n.
	a allocator
	// names is the sorted list of variable names used in the expression.
	names []string
}

// parser holds the state of one compile.
type parser struct {
	lexer
	cfg *compilecfg
	a   allocator
	// parens is the number of groups and argument lists currently open.
	parens int
	// names is the set of variable names that have been seen this parse.
	names map[string]bool
}

// Compile parses an expression. Names in the expression are resolved first
// against vars, in order, and then against the builtin functions. If parsing
// fails, the error implements InputError, unless it is ErrAllocation.
//
// Unless NoFolding is given, calls to pure functions whose arguments are all
// constant are evaluated during compilation. Calls to impure functions are
// not examined further, so constant subexpressions in their arguments remain.
func Compile(src string, vars []Binding, opts ...CompileOption) (*Expr, error) {
	cfg := newcfg(opts)
	p := parser{
		lexer: lexer{src: src, vars: vars, natlog: cfg.natlog},
		cfg:   &cfg,
		a:     cfg.alloc,
		names: make(map[string]bool),
	}
	p.nextToken()
	n, err := p.list()
	if err == nil && p.tok.kind != tokenEnd {
		free(p.a, n)
		n, err = nil, p.unexpected()
	}
	if err != nil {
		cfg.log.Debug("compile failed",
			zap.String("src", src),
			zap.Int("pos", ErrorPos(err)),
			zap.Error(err),
			zap.Stringer("cfg", cfg),
		)
		return nil, err
	}
	if !cfg.nofold {
		optimize(p.a, n, cfg.log)
	}
	e := Expr{
		n:     n,
		a:     p.a,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		e.names = append(e.names, k)
	}
	sortstrs(e.names)
	cfg.log.Debug("compiled",
		zap.String("src", src),
		zap.Int("nodes", count(n)),
		zap.Stringer("cfg", cfg),
	)
	return &e, nil
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// pos is the position reported for an error detected now.
func (p *parser) pos() int {
	if p.next == 0 {
		return 1
	}
	return p.next
}

// unexpected creates an error for the current token.
func (p *parser) unexpected() error {
	tok := p.tok
	switch tok.kind {
	case tokenError:
		return &TokenError{Col: p.pos(), Text: tok.text}
	case tokenEnd:
		if p.parens > 0 {
			return &BracketError{Col: p.pos(), Left: "("}
		}
	case tokenClose:
		if p.parens == 0 {
			return &BracketError{Col: p.pos(), Right: ")"}
		}
	}
	return &SyntaxError{Col: p.pos(), Token: tok.text}
}

// open enters a group or argument list.
func (p *parser) open() error {
	p.parens++
	if p.cfg.depth > 0 && p.parens > p.cfg.depth {
		return &DepthError{Col: p.pos(), Max: p.cfg.depth}
	}
	return nil
}

// leaf allocates a node with no children.
func (p *parser) leaf() (*node, error) {
	n := p.a.alloc()
	if n == nil {
		return nil, ErrAllocation
	}
	return n, nil
}

// call allocates a call node which takes ownership of args. If the node
// cannot be allocated, args are released instead.
func (p *parser) call(fn callable, name string, op byte, args ...*node) (*node, error) {
	n := p.a.alloc()
	if n == nil {
		for _, c := range args {
			free(p.a, c)
		}
		return nil, ErrAllocation
	}
	n.kind = nodeCall
	n.fn = fn
	n.name = name
	n.op = op
	n.args = args
	return n, nil
}

// chain parses operand {op operand} for separator or infix tokens with
// operators in ops, building a left-associative tree.
func (p *parser) chain(ops string, operand func() (*node, error)) (*node, error) {
	lhs, err := operand()
	if err != nil {
		return nil, err
	}
	for (p.tok.kind == tokenInfix || p.tok.kind == tokenSep) && strings.IndexByte(ops, p.tok.op) >= 0 {
		fn, op := p.tok.fn, p.tok.op
		p.nextToken()
		rhs, err := operand()
		if err != nil {
			free(p.a, lhs)
			return nil, err
		}
		lhs, err = p.call(fn, "", op, lhs, rhs)
		if err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func (p *parser) list() (*node, error) {
	return p.chain(",", p.expr)
}

func (p *parser) expr() (*node, error) {
	return p.chain("+-", p.term)
}

func (p *parser) term() (*node, error) {
	return p.chain("*/%", p.factor)
}

func (p *parser) factor() (*node, error) {
	if p.cfg.powright {
		return p.factorRight()
	}
	return p.chain("^", p.power)
}

// factorRight parses a right-associative chain of exponentiations. Signs
// before the first operand apply to the entire chain.
func (p *parser) factorRight() (n *node, err error) {
	neg := p.signs()
	var operands []*node
	defer func() {
		if err != nil {
			for _, c := range operands {
				free(p.a, c)
			}
		}
	}()
	b, err := p.base()
	if err != nil {
		return nil, err
	}
	operands = append(operands, b)
	for p.tok.kind == tokenInfix && p.tok.op == '^' {
		p.nextToken()
		b, err := p.power()
		if err != nil {
			return nil, err
		}
		operands = append(operands, b)
	}
	n = operands[len(operands)-1]
	operands = operands[:len(operands)-1]
	for len(operands) > 0 {
		lhs := operands[len(operands)-1]
		operands = operands[:len(operands)-1]
		// call releases lhs and n if it fails, so neither is in operands now.
		n, err = p.call(opPow, "", '^', lhs, n)
		if err != nil {
			return nil, err
		}
	}
	if neg {
		return p.call(opNeg, "", '-', n)
	}
	return n, nil
}

// signs consumes unary signs and reports whether their combined effect is
// negation.
func (p *parser) signs() bool {
	neg := false
	for p.tok.kind == tokenInfix && (p.tok.op == '+' || p.tok.op == '-') {
		if p.tok.op == '-' {
			neg = !neg
		}
		p.nextToken()
	}
	return neg
}

func (p *parser) power() (*node, error) {
	neg := p.signs()
	b, err := p.base()
	if err != nil || !neg {
		return b, err
	}
	return p.call(opNeg, "", '-', b)
}

func (p *parser) base() (*node, error) {
	switch tok := p.tok; tok.kind {
	case tokenNum:
		n, err := p.leaf()
		if err != nil {
			return nil, err
		}
		n.kind = nodeConst
		n.value = tok.value
		p.nextToken()
		return n, nil
	case tokenVar:
		n, err := p.leaf()
		if err != nil {
			return nil, err
		}
		n.kind = nodeVar
		n.bound = tok.bound
		n.name = tok.text
		p.names[tok.text] = true
		p.nextToken()
		return n, nil
	case tokenFunc:
		p.nextToken()
		if tok.fn.arity == 0 {
			return p.niladic(tok)
		}
		return p.args(tok)
	case tokenOpen:
		if err := p.open(); err != nil {
			return nil, err
		}
		p.nextToken()
		n, err := p.list()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokenClose {
			free(p.a, n)
			return nil, p.unexpected()
		}
		p.parens--
		p.nextToken()
		return n, nil
	default:
		return nil, p.unexpected()
	}
}

// niladic parses the optional empty parentheses after a function of no
// arguments. The function token has already been consumed.
func (p *parser) niladic(fn lexToken) (*node, error) {
	if p.tok.kind == tokenOpen {
		if err := p.open(); err != nil {
			return nil, err
		}
		p.nextToken()
		switch p.tok.kind {
		case tokenClose:
		case tokenEnd, tokenError:
			return nil, p.unexpected()
		default:
			return nil, &CallError{Col: p.pos(), Func: fn.text, Arity: 0}
		}
		p.parens--
		p.nextToken()
	}
	return p.call(fn.fn, fn.text, 0)
}

// args parses the parenthesized argument list of a function of at least one
// argument. The function token has already been consumed.
func (p *parser) args(fn lexToken) (n *node, err error) {
	arity := int(fn.fn.arity)
	if p.tok.kind != tokenOpen {
		return nil, &CallError{Col: p.pos(), Func: fn.text, Arity: arity}
	}
	if err := p.open(); err != nil {
		return nil, err
	}
	args := make([]*node, 0, arity)
	defer func() {
		if err != nil {
			for _, c := range args {
				free(p.a, c)
			}
		}
	}()
	for {
		p.nextToken()
		if len(args) == 0 && p.tok.kind == tokenClose {
			// f() for a function that needs arguments.
			return nil, &CallError{Col: p.pos(), Func: fn.text, Arity: arity}
		}
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.tok.kind != tokenSep || len(args) == arity {
			break
		}
	}
	switch {
	case p.tok.kind == tokenClose && len(args) == arity:
	case p.tok.kind == tokenClose, p.tok.kind == tokenSep:
		return nil, &CallError{Col: p.pos(), Func: fn.text, Arity: arity}
	default:
		return nil, p.unexpected()
	}
	p.parens--
	p.nextToken()
	// call owns args from here on, even if it fails.
	owned := args
	args = nil
	return p.call(fn.fn, fn.text, 0, owned...)
}
