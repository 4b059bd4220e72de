package tinyexpr

import "go.uber.org/zap"

// optimize replaces calls to pure functions whose arguments are all constant
// with their values, in place. It descends only through pure calls.
func optimize(a allocator, n *node, log *zap.Logger) {
	if n.kind != nodeCall || !n.fn.pure {
		return
	}
	known := true
	for _, c := range n.args {
		optimize(a, c, log)
		if c.kind != nodeConst {
			known = false
		}
	}
	if !known {
		return
	}
	v := n.eval()
	if ce := log.Check(zap.DebugLevel, "folded constant"); ce != nil {
		ce.Write(zap.String("fn", n.label()), zap.Int("arity", len(n.args)), zap.Float64("value", v))
	}
	for _, c := range n.args {
		free(a, c)
	}
	*n = node{kind: nodeConst, value: v}
}

// label names the function of a call node for diagnostics.
func (n *node) label() string {
	switch {
	case n.name != "":
		return n.name
	case n.op == '-' && len(n.args) == 1:
		return "neg"
	case n.op != 0:
		return string(n.op)
	default:
		return "?"
	}
}
