package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/check"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

const DeclarationAssignmentName = "declaration-assignment"

// DetectDeclarationAssignment fuses a declaration with the assignment that
// immediately follows it:
//
//	int x; x = e;        =>  int x = e;
//	int x = d; x += e;   =>  int x = d + e;
func DetectDeclarationAssignment(c *Context, id tree.NodeID) *Rewrite {
	v := c.View
	if v.Kind(id) != tree.VarDecl {
		return nil
	}
	block, stmts, idx, ok := c.siblings(id)
	if !ok || idx+1 >= len(stmts) {
		return nil
	}
	next := stmts[idx+1]
	if v.Kind(next) != tree.ExprStmt {
		return nil
	}
	_, name, op, value, ok := assignment(v, next)
	if !ok {
		return nil
	}
	frag, err := check.FoldableDecl(v, id, name, value)
	if err != nil {
		return nil
	}
	init := tree.FragmentInit(v, frag)
	switch {
	case init == tree.None && op == tree.Assign:
	case init != tree.None && op.IsCompound():
	default:
		return nil
	}
	return &Rewrite{
		Rule:    DeclarationAssignmentName,
		Message: "initialize the variable where it is declared",
		Node:    id,
		Span:    c.stmtSpan(block, idx, idx+1),
		Apply: func(e *tree.Editor) error {
			newInit := e.Clone(value)
			if init != tree.None {
				newInit = e.Infix(op.Infix(), e.Clone(init), newInit)
			}
			if err := e.Replace(frag, e.Frag(name, newInit)); err != nil {
				return err
			}
			return e.RemoveStmt(next)
		},
	}
}
