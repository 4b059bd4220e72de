package tinyexpr

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	// value is the value of a nodeConst.
	value float64
	// bound is the variable read by a nodeVar.
	bound *float64
	// name is the identifier of a nodeVar or nodeCall.
	name string
	// op is the operator byte of a nodeCall built from an operator, or 0.
	op byte
	// fn is the function of a nodeCall.
	fn callable

	// args are the arguments of a nodeCall. len(args) == fn.arity.
	args []*node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeConst // value
	nodeVar   // *bound
	nodeCall  // fn(args...)
)

var nodeKindNames = [...]string{
	nodeNone:  "None",
	nodeConst: "Const",
	nodeVar:   "Var",
	nodeCall:  "Call",
}

func (k nodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return nodeKindNames[k]
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b)
	return b.String()
}

// fmt writes n with every term in parentheses, so that the result compiles
// to the same tree when folding is disabled.
func (n *node) fmt(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
	case nodeConst:
		b.WriteString(strconv.FormatFloat(n.value, 'g', -1, 64))
	case nodeVar:
		b.WriteString(n.name)
	case nodeCall:
		switch {
		case n.op != 0 && len(n.args) == 2:
			// Infix operator, or the sequencing comma.
			n.args[0].fmt(b)
			if n.op == ',' {
				b.WriteString(", ")
			} else {
				b.WriteString(" " + string(n.op) + " ")
			}
			n.args[1].fmt(b)
		case n.op == '-' && len(n.args) == 1:
			b.WriteByte('-')
			n.args[0].fmt(b)
		default:
			b.WriteString(n.name)
			b.WriteByte('(')
			for i, c := range n.args {
				if i > 0 {
					b.WriteString(", ")
				}
				c.fmt(b)
			}
			b.WriteByte(')')
		}
	default:
		panic("tinyexpr: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// dump writes one line per node, indented by depth.
func (n *node) dump(w io.Writer, depth int) error {
	var err error
	switch n.kind {
	case nodeConst:
		_, err = fmt.Fprintf(w, "%*s%f\n", depth, "", n.value)
	case nodeVar:
		_, err = fmt.Fprintf(w, "%*sbound %p\n", depth, "", n.bound)
	case nodeCall:
		var b strings.Builder
		fmt.Fprintf(&b, "%*sf%d", depth, "", len(n.args))
		for _, c := range n.args {
			fmt.Fprintf(&b, " %p", c)
		}
		b.WriteByte('\n')
		if _, err = io.WriteString(w, b.String()); err != nil {
			return err
		}
		for _, c := range n.args {
			if err = c.dump(w, depth+1); err != nil {
				return err
			}
		}
	default:
		_, err = fmt.Fprintf(w, "%*s%v\n", depth, "", n.kind)
	}
	return err
}
