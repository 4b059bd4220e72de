package tinyexpr

import "errors"

// ErrAllocation is the error returned when a node cannot be allocated, i.e.
// when compiling an expression would exceed the MaxNodes budget.
var ErrAllocation = errors.New("tinyexpr: node allocation failed")

// allocator produces and reclaims AST nodes. Every node in a compiled
// expression came from the allocator stored in the Expr, and each is released
// exactly once, children before parents.
type allocator interface {
	// alloc returns a zeroed node, or nil if no node can be allocated.
	alloc() *node
	// release reclaims a single node. Its children must already have been
	// released.
	release(n *node)
}

// heap allocates from the Go heap with no limit.
type heap struct{}

func (heap) alloc() *node { return new(node) }

func (heap) release(n *node) {
	*n = node{}
}

// budget allocates at most max nodes live at once.
type budget struct {
	live, max int
}

func (b *budget) alloc() *node {
	if b.live >= b.max {
		return nil
	}
	b.live++
	return new(node)
}

func (b *budget) release(n *node) {
	b.live--
	*n = node{}
}

// free releases n and all its descendants to a, children first.
func free(a allocator, n *node) {
	if n == nil {
		return
	}
	for _, c := range n.args {
		free(a, c)
	}
	a.release(n)
}

// count returns the number of nodes in the tree rooted at n.
func count(n *node) int {
	if n == nil {
		return 0
	}
	k := 1
	for _, c := range n.args {
		k += count(c)
	}
	return k
}
