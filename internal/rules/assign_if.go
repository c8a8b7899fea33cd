package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/check"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

const AssignIfName = "assign-if"

// assignIf is an else-less if whose only statement assigns a variable,
// together with its neighbors in the enclosing block.
type assignIf struct {
	*Context
	id, cond tree.NodeID
	block    tree.NodeID
	stmts    []tree.NodeID
	idx      int

	name  string
	op    tree.Op
	value tree.NodeID // right-hand side inside the if
}

// neighbor returns the assignment to the same variable at stmts[i].
func (a *assignIf) neighbor(i int) (asg tree.NodeID, op tree.Op, value tree.NodeID, ok bool) {
	if i < 0 || i >= len(a.stmts) {
		return tree.None, tree.NoOp, tree.None, false
	}
	if a.View.Kind(a.stmts[i]) != tree.ExprStmt {
		return tree.None, tree.NoOp, tree.None, false
	}
	asg, name, op, value, ok := assignment(a.View, a.stmts[i])
	if !ok || name != a.name {
		return tree.None, tree.NoOp, tree.None, false
	}
	return asg, op, value, true
}

// declaration returns the fragment declaring the variable at stmts[i] when a
// value computed from exprs may be folded into it.
func (a *assignIf) declaration(i int, exprs ...tree.NodeID) (tree.NodeID, bool) {
	if i < 0 || i >= len(a.stmts) {
		return tree.None, false
	}
	frag, err := check.FoldableDecl(a.View, a.stmts[i], a.name, exprs...)
	if err != nil {
		return tree.None, false
	}
	if init := tree.FragmentInit(a.View, frag); init != tree.None && !tree.Pure(a.View, init) {
		return tree.None, false
	}
	return frag, true
}

// assignment returns the assignment inside the if.
func (a *assignIf) assignment() tree.NodeID {
	return check.Assignment(a.View, a.View.Kids(a.id)[1])
}

func isConditional(v tree.View, ids ...tree.NodeID) bool {
	for _, id := range ids {
		if v.Kind(tree.Core(v, id)) == tree.Conditional {
			return true
		}
	}
	return false
}

// thenValue builds the value the variable holds after the if when the
// condition holds and the variable held prior before it.
func (a *assignIf) thenValue(e *tree.Editor, prior tree.NodeID) tree.NodeID {
	if a.op == tree.Assign {
		return e.Clone(a.value)
	}
	return e.Infix(a.op.Infix(), e.Clone(prior), e.Clone(a.value))
}

func (a *assignIf) selectValue(e *tree.Editor, prior tree.NodeID) tree.NodeID {
	return conditional(e, e.Tree(), a.cond, a.thenValue(e, prior), prior)
}

// replace rewrites stmts[from..to] into a single assignment of value, or
// folds value into frag when frag is set.
func (a *assignIf) replace(from, to int, frag tree.NodeID, value func(*tree.Editor) tree.NodeID) func(*tree.Editor) error {
	first, last := a.stmts[from], a.stmts[to]
	name := a.name
	return func(e *tree.Editor) error {
		val := value(e)
		if frag != tree.None {
			if err := e.Replace(frag, e.Frag(name, val)); err != nil {
				return err
			}
			return e.ReplaceStmts(first, last)
		}
		return e.ReplaceStmts(first, last, e.Expr(e.Assign(tree.Assign, e.Name(name), val)))
	}
}

func (a *assignIf) rewrite(from, to int, message string, apply func(*tree.Editor) error) *Rewrite {
	return &Rewrite{
		Rule:    AssignIfName,
		Message: message,
		Node:    a.id,
		Span:    a.stmtSpan(a.block, from, to),
		Apply:   apply,
	}
}

// DetectAssignIf folds an else-less conditional assignment with the
// assignments or the declaration around it:
//
//	x = p; if (c) x = a; x += n;  =>  x = (c ? a : p) + n;
//	x = p; if (c) x = a;          =>  x = c ? a : p;
//	if (c) x = a; x = n;          =>  x = n;
//	int x = d; if (c) x += a;     =>  int x = c ? d + a : d;
func DetectAssignIf(c *Context, id tree.NodeID) *Rewrite {
	v := c.View
	if v.Kind(id) != tree.If || len(v.Kids(id)) != 2 {
		return nil
	}
	block, stmts, idx, ok := c.siblings(id)
	if !ok {
		return nil
	}
	then := statement(v, v.Kids(id)[1])
	if v.Kind(then) != tree.ExprStmt {
		return nil
	}
	_, name, op, value, ok := assignment(v, then)
	if !ok {
		return nil
	}
	cond := v.Kids(id)[0]
	if isConditional(v, value) || check.DependsOn(v, name, cond, value) || writes(v, cond) {
		return nil
	}
	a := &assignIf{
		Context: c, id: id, cond: cond,
		block: block, stmts: stmts, idx: idx,
		name: name, op: op, value: value,
	}
	for _, detect := range []func() *Rewrite{a.surrounded, a.preceded, a.followed, a.declared} {
		if rw := detect(); rw != nil {
			return rw
		}
	}
	return nil
}

// prior returns the value p of a preceding plain assignment x = p that may
// be moved after the condition.
func (a *assignIf) prior() (tree.NodeID, bool) {
	_, op, p, ok := a.neighbor(a.idx - 1)
	if !ok || op != tree.Assign {
		return tree.None, false
	}
	core := tree.Core(a.View, p)
	if isConditional(a.View, core) || a.View.Kind(core) == tree.Assignment || !tree.Pure(a.View, p) {
		return tree.None, false
	}
	return p, true
}

// surrounded handles x = p; if (c) x op= a; x op2= n;
func (a *assignIf) surrounded() *Rewrite {
	p, ok := a.prior()
	if !ok {
		return nil
	}
	asg, op2, n, ok := a.neighbor(a.idx + 1)
	if !ok || isConditional(a.View, n) || check.DependsOn(a.View, a.name, n) {
		return nil
	}
	if !check.Compatible(a.View, asg, a.assignment()) {
		return nil
	}
	from, to := a.idx-1, a.idx+1
	if op2 == tree.Assign {
		if !tree.Pure(a.View, a.cond, a.value) {
			return nil
		}
		frag, fold := a.declaration(a.idx-2, n)
		if fold {
			from = a.idx - 2
		}
		return a.rewrite(from, to, "drop assignments overwritten before use",
			a.replace(a.idx-1, to, frag, func(e *tree.Editor) tree.NodeID { return e.Clone(n) }))
	}
	frag, fold := a.declaration(a.idx-2, a.cond, p, a.value, n)
	if fold {
		from = a.idx - 2
	}
	return a.rewrite(from, to, "merge the conditional assignment with its neighbors",
		a.replace(a.idx-1, to, frag, func(e *tree.Editor) tree.NodeID {
			return e.Infix(op2.Infix(), a.selectValue(e, p), e.Clone(n))
		}))
}

// preceded handles x = p; if (c) x op= a;
func (a *assignIf) preceded() *Rewrite {
	p, ok := a.prior()
	if !ok {
		return nil
	}
	if a.op == tree.Assign && tree.Equal(a.View, p, a.value) {
		return nil
	}
	from := a.idx - 1
	frag, fold := a.declaration(a.idx-2, a.cond, p, a.value)
	if fold {
		from = a.idx - 2
	}
	return a.rewrite(from, a.idx, "merge the conditional assignment with the preceding one",
		a.replace(a.idx-1, a.idx, frag, func(e *tree.Editor) tree.NodeID {
			return a.selectValue(e, p)
		}))
}

// followed handles if (c) x op= a; x = n;
func (a *assignIf) followed() *Rewrite {
	_, op2, n, ok := a.neighbor(a.idx + 1)
	if !ok || op2 != tree.Assign || isConditional(a.View, n) || check.DependsOn(a.View, a.name, n) {
		return nil
	}
	if !tree.Pure(a.View, a.cond, a.value) || tree.Equal(a.View, a.value, n) {
		return nil
	}
	if frag, fold := a.declaration(a.idx-1, n); fold {
		return a.rewrite(a.idx-1, a.idx+1, "initialize the declaration with the final value",
			a.replace(a.idx, a.idx+1, frag, func(e *tree.Editor) tree.NodeID { return e.Clone(n) }))
	}
	id := a.id
	return a.rewrite(a.idx, a.idx+1, "drop an assignment overwritten before use", func(e *tree.Editor) error {
		return e.RemoveStmt(id)
	})
}

// declared handles int x = d; if (c) x op= a;
func (a *assignIf) declared() *Rewrite {
	if a.idx == 0 {
		return nil
	}
	frag, ok := a.declaration(a.idx-1, a.cond, a.value)
	if !ok {
		return nil
	}
	d := tree.FragmentInit(a.View, frag)
	if d == tree.None || isConditional(a.View, d) {
		return nil
	}
	return a.rewrite(a.idx-1, a.idx, "initialize the declaration with a conditional expression",
		a.replace(a.idx, a.idx, frag, func(e *tree.Editor) tree.NodeID {
			return a.selectValue(e, d)
		}))
}
