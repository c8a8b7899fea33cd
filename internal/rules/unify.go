package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/check"
	"github.com/RonGatenio/Spartanizer/internal/diff"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

// unification is a pair of statements of the same kind that differ in a
// single expression and can be merged into one statement selecting the
// differing expression with a condition.
type unification struct {
	s1, s2 tree.NodeID
	d      diff.Record
}

func statement(v tree.View, id tree.NodeID) tree.NodeID {
	if v.Kind(id) == tree.Block {
		return tree.Single(v, id)
	}
	return id
}

// within reports whether target lies in the subtree at id.
func within(v tree.View, id, target tree.NodeID) bool {
	found := false
	tree.Walk(v, id, func(n tree.NodeID) bool {
		if n == target {
			found = true
		}
		return !found
	})
	return found
}

// evaluated returns the expression a statement evaluates.
func evaluated(v tree.View, stmt tree.NodeID) tree.NodeID {
	return tree.Core(v, tree.Kid(v, stmt, 0))
}

// selected returns the expression whose value is the whole outcome of the
// statement: the returned value or the value of a plain assignment.
func selected(v tree.View, stmt tree.NodeID) tree.NodeID {
	top := evaluated(v, stmt)
	if v.Kind(stmt) == tree.Return {
		return top
	}
	if v.Kind(top) == tree.Assignment && tree.OpOf(v, top) == tree.Assign {
		if _, ok := tree.SimpleName(v, tree.Kid(v, top, 0)); ok {
			return tree.Core(v, tree.Kid(v, top, 1))
		}
	}
	return tree.None
}

// path returns the nodes from top down to target, both included, or nil
// when target is not inside top.
func path(v tree.View, top, target tree.NodeID) []tree.NodeID {
	if top == target {
		return []tree.NodeID{top}
	}
	for _, kid := range v.Kids(top) {
		if p := path(v, kid, target); p != nil {
			return append([]tree.NodeID{top}, p...)
		}
	}
	return nil
}

// nested reports whether a conditional encloses target within top or is
// target itself, so that selecting target would nest conditionals.
func nested(v tree.View, top, target tree.NodeID) bool {
	for _, id := range path(v, top, target) {
		if v.Kind(id) == tree.Conditional {
			return true
		}
	}
	return false
}

// contextWrites reports whether evaluating top outside of the skipped
// subtree may change state the condition reads. Assignments and calls that
// enclose skip run after it and do not count.
func contextWrites(v tree.View, top, skip tree.NodeID) bool {
	enclosing := make(map[tree.NodeID]bool)
	for _, id := range path(v, top, skip) {
		enclosing[id] = true
	}
	found := false
	tree.Walk(v, top, func(id tree.NodeID) bool {
		if id == skip || found {
			return false
		}
		switch {
		case enclosing[id] && (v.Kind(id) == tree.Assignment || v.Kind(id) == tree.Call):
			return true
		case v.Kind(id) == tree.Assignment, v.Kind(id) == tree.Call, tree.IsIncDec(v, id):
			found = true
		}
		return !found
	})
	return found
}

// assignsTo reports whether target is inside the left-hand side of some
// assignment of stmt.
func assignsTo(v tree.View, stmt, target tree.NodeID) bool {
	found := false
	tree.Walk(v, stmt, func(id tree.NodeID) bool {
		if v.Kind(id) == tree.Assignment && within(v, tree.Kid(v, id, 0), target) {
			found = true
		}
		return !found
	})
	return found
}

// unify decides whether s1 and s2 can be merged under cond.
func unify(v tree.View, cond, s1, s2 tree.NodeID) (unification, bool) {
	s1, s2 = statement(v, s1), statement(v, s2)
	k := v.Kind(s1)
	if k != v.Kind(s2) || (k != tree.ExprStmt && k != tree.Return) {
		return unification{}, false
	}
	d, ok := diff.Find(v, s1, s2)
	if !ok {
		return unification{}, false
	}
	if err := check.Collapsible(v, d); err != nil {
		return unification{}, false
	}
	if nested(v, evaluated(v, s1), d.A) || nested(v, evaluated(v, s2), d.B) {
		return unification{}, false
	}
	if !v.Kind(d.A).IsExpression() || !v.Kind(d.B).IsExpression() {
		return unification{}, false
	}
	if v.Kind(d.A) == tree.Assignment || v.Kind(d.B) == tree.Assignment {
		return unification{}, false
	}
	if assignsTo(v, s1, d.A) || assignsTo(v, s2, d.B) {
		return unification{}, false
	}
	if k == tree.ExprStmt && d.A == evaluated(v, s1) {
		return unification{}, false
	}
	if d.A != selected(v, s1) {
		// the condition now runs after part of the statement
		if !tree.Pure(v, cond) || contextWrites(v, evaluated(v, s1), d.A) || contextWrites(v, evaluated(v, s2), d.B) {
			return unification{}, false
		}
	}
	return unification{s1: s1, s2: s2, d: d}, true
}

// build creates the merged statement.
func (u unification) build(e *tree.Editor, cond tree.NodeID) tree.NodeID {
	v := e.Tree()
	sel := conditional(e, v, cond, u.d.A, u.d.B)
	return copyReplacing(e, v, u.s1, u.d.A, sel)
}

// value creates the merged value of a plain assignment statement.
func (u unification) value(e *tree.Editor, cond tree.NodeID) tree.NodeID {
	v := e.Tree()
	sel := conditional(e, v, cond, u.d.A, u.d.B)
	return copyReplacing(e, v, tree.Kid(v, evaluated(v, u.s1), 1), u.d.A, sel)
}
