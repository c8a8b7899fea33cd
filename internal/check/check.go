// Package check decides whether a located difference is safe to collapse
// into a conditional expression.
package check

import (
	"errors"
	"fmt"

	"github.com/RonGatenio/Spartanizer/internal/diff"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

// ErrUnsafeCollapse is the root of every rejection reported by this package.
var ErrUnsafeCollapse = errors.New("unsafe collapse")

var (
	ErrConditional    = fmt.Errorf("%w: difference is already a conditional", ErrUnsafeCollapse)
	ErrSideEffect     = fmt.Errorf("%w: difference contains an increment or decrement", ErrUnsafeCollapse)
	ErrIdentical      = fmt.Errorf("%w: both sides are identical", ErrUnsafeCollapse)
	ErrKindMismatch   = fmt.Errorf("%w: difference pairs nodes of different kinds", ErrUnsafeCollapse)
	ErrNotLast        = fmt.Errorf("%w: variable is not the last fragment of its declaration", ErrUnsafeCollapse)
	ErrDependsOnDecl  = fmt.Errorf("%w: expression refers to a variable of the declaration", ErrUnsafeCollapse)
	ErrNotDeclaration = fmt.Errorf("%w: statement does not declare the variable", ErrUnsafeCollapse)
)

// Collapsible reports whether the two sides of r may become the branches of
// a conditional expression. It returns nil or one of the sentinel errors.
func Collapsible(v tree.View, r diff.Record) error {
	if !diff.Valid(v, r) {
		return ErrKindMismatch
	}
	a, b := tree.Core(v, r.A), tree.Core(v, r.B)
	if v.Kind(a) == tree.Conditional || v.Kind(b) == tree.Conditional {
		return ErrConditional
	}
	if tree.HasIncDec(v, a, b) {
		return ErrSideEffect
	}
	if tree.Equal(v, a, b) {
		return ErrIdentical
	}
	return nil
}

// DependsOn reports whether name is used anywhere in exprs.
func DependsOn(v tree.View, name string, exprs ...tree.NodeID) bool {
	return tree.Occurrences(v, name, exprs...) > 0
}

// CompatibleOps reports whether two assignment operators can be merged:
// they are equal or one of them is a plain "=".
func CompatibleOps(o1, o2 tree.Op) bool {
	return o1 == o2 || o1 == tree.Assign || o2 == tree.Assign
}

// Compatible reports whether two assignments write the same simple variable
// with mergeable operators.
func Compatible(v tree.View, a1, a2 tree.NodeID) bool {
	a1, a2 = tree.Core(v, a1), tree.Core(v, a2)
	if v.Kind(a1) != tree.Assignment || v.Kind(a2) != tree.Assignment {
		return false
	}
	n1, ok1 := tree.SimpleName(v, tree.Kid(v, a1, 0))
	n2, ok2 := tree.SimpleName(v, tree.Kid(v, a2, 0))
	if !ok1 || !ok2 || n1 != n2 {
		return false
	}
	return CompatibleOps(tree.OpOf(v, a1), tree.OpOf(v, a2))
}

// FoldableDecl returns the fragment of decl declaring name when the value
// of exprs may be folded into it. The variable must be the last fragment of
// its statement and exprs may not mention any variable that statement
// declares.
func FoldableDecl(v tree.View, decl tree.NodeID, name string, exprs ...tree.NodeID) (tree.NodeID, error) {
	if v.Kind(decl) != tree.VarDecl {
		return tree.None, ErrNotDeclaration
	}
	frags := v.Kids(decl)
	frag := tree.None
	for i, f := range frags {
		if tree.FragmentName(v, f) != name {
			continue
		}
		if i != len(frags)-1 {
			return tree.None, ErrNotLast
		}
		frag = f
	}
	if frag == tree.None {
		return tree.None, ErrNotDeclaration
	}
	for _, f := range frags {
		if DependsOn(v, tree.FragmentName(v, f), exprs...) {
			return tree.None, ErrDependsOnDecl
		}
	}
	return frag, nil
}

// Assignment returns the assignment carried by an expression statement
// (possibly wrapped in a single-statement block), or tree.None.
func Assignment(v tree.View, stmt tree.NodeID) tree.NodeID {
	if v.Kind(stmt) == tree.Block {
		stmt = tree.Single(v, stmt)
	}
	if v.Kind(stmt) != tree.ExprStmt {
		return tree.None
	}
	e := tree.Core(v, tree.Kid(v, stmt, 0))
	if v.Kind(e) != tree.Assignment {
		return tree.None
	}
	return e
}
