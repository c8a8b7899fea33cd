package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

const IfReturnName = "if-return"

// DetectIfReturn matches an else-less if returning a value, followed by
// another return: if (c) return a; return b;  =>  return c ? a : b;
func DetectIfReturn(c *Context, id tree.NodeID) *Rewrite {
	v := c.View
	if v.Kind(id) != tree.If || len(v.Kids(id)) != 2 {
		return nil
	}
	block, stmts, idx, ok := c.siblings(id)
	if !ok || idx+1 >= len(stmts) {
		return nil
	}
	cond := v.Kids(id)[0]
	then, next := statement(v, v.Kids(id)[1]), stmts[idx+1]
	if v.Kind(then) != tree.Return || v.Kind(next) != tree.Return {
		return nil
	}
	if isConditional(v, evaluated(v, then), evaluated(v, next)) {
		return nil
	}
	u, ok := unify(v, cond, then, next)
	if !ok {
		return nil
	}
	return &Rewrite{
		Rule:    IfReturnName,
		Message: "return a conditional expression",
		Node:    id,
		Span:    c.stmtSpan(block, idx, idx+1),
		Apply: func(e *tree.Editor) error {
			return e.ReplaceStmts(id, next, u.build(e, cond))
		},
	}
}
