package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/span"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

const NotPushdownName = "not-pushdown"

// pushable reports whether !x can be expressed without the outer negation.
func pushable(v tree.View, x tree.NodeID) bool {
	x = tree.Core(v, x)
	switch v.Kind(x) {
	case tree.BoolLit:
		return true
	case tree.Prefix:
		return tree.OpOf(v, x) == tree.Not
	case tree.Infix:
		op := tree.OpOf(v, x)
		if op.IsLogical() {
			return true
		}
		return op.IsRelational() && len(v.Kids(x)) == 2 && !tree.HasIncDec(v, v.Kids(x)...)
	}
	return false
}

// Negate builds the logical negation of x, pushing it through double
// negations, boolean literals, "&&"/"||" and comparisons.
func Negate(e *tree.Editor, v tree.View, x tree.NodeID) tree.NodeID {
	x = tree.Core(v, x)
	n := *v.Node(x)
	switch n.Kind {
	case tree.BoolLit:
		return e.Bool(n.Text != "true")
	case tree.Prefix:
		if n.Op == tree.Not {
			return simplify(e, v, n.Kids[0])
		}
	case tree.Infix:
		if n.Op.IsLogical() {
			kids := v.Kids(x)
			operands := make([]tree.NodeID, len(kids))
			for i, k := range kids {
				operands[i] = Negate(e, v, k)
			}
			return e.Infix(n.Op.Flip(), operands...)
		}
		if pushable(v, x) {
			l, r := v.Kids(x)[0], v.Kids(x)[1]
			return e.Infix(n.Op.Negated(), e.Clone(l), e.Clone(r))
		}
	}
	return e.Not(e.Clone(x))
}

// simplify returns a copy of x with a leading negation pushed down.
func simplify(e *tree.Editor, v tree.View, x tree.NodeID) tree.NodeID {
	core := tree.Core(v, x)
	if v.Kind(core) == tree.Prefix && tree.OpOf(v, core) == tree.Not {
		return Negate(e, v, tree.Kid(v, core, 0))
	}
	return e.Clone(x)
}

// DetectNotPushdown matches a negation whose operand is a literal, another
// negation, a conjunction, a disjunction or a side-effect free comparison.
func DetectNotPushdown(c *Context, id tree.NodeID) *Rewrite {
	v := c.View
	if v.Kind(id) != tree.Prefix || tree.OpOf(v, id) != tree.Not {
		return nil
	}
	operand := tree.Kid(v, id, 0)
	if !pushable(v, operand) {
		return nil
	}
	return &Rewrite{
		Rule:    NotPushdownName,
		Message: "push the negation into its operand",
		Node:    id,
		Span:    span.Of(c.Index, id),
		Apply: func(e *tree.Editor) error {
			return e.Replace(id, Negate(e, e.Tree(), operand))
		},
	}
}
