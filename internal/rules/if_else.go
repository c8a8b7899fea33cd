package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/check"
	"github.com/RonGatenio/Spartanizer/internal/diff"
	"github.com/RonGatenio/Spartanizer/internal/span"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

const IfElseTernaryName = "if-else-ternary"

// DetectIfElseTernary matches an if/else whose branches differ in a single
// expression:
//
//	if (c) x = 1; else x = 2;        =>  x = c ? 1 : 2;
//	int x; if (c) x = 1; else x = 2; =>  int x = c ? 1 : 2;
//	if (c) return true; else return false;  =>  return c;
//
// Branches holding several statements qualify when only their first
// statements differ; the common tail follows the merged statement.
func DetectIfElseTernary(c *Context, id tree.NodeID) *Rewrite {
	v := c.View
	if v.Kind(id) != tree.If || len(v.Kids(id)) != 3 {
		return nil
	}
	cond, then, els := v.Kids(id)[0], v.Kids(id)[1], v.Kids(id)[2]
	as, bs := branch(v, then), branch(v, els)
	if len(as) == 0 || len(bs) == 0 {
		return nil
	}
	if len(as) == 1 && len(bs) == 1 {
		return detectSingleBranches(c, id, cond, as[0], bs[0])
	}
	return detectBranchLists(c, id, cond, as, bs)
}

// branch lists the statements of an if branch without entering nested
// blocks, which keep their own scope.
func branch(v tree.View, id tree.NodeID) []tree.NodeID {
	if v.Kind(id) != tree.Block {
		return []tree.NodeID{id}
	}
	var out []tree.NodeID
	for _, k := range v.Kids(id) {
		if v.Kind(k) != tree.Empty {
			out = append(out, k)
		}
	}
	return out
}

func detectSingleBranches(c *Context, id, cond, s1, s2 tree.NodeID) *Rewrite {
	v := c.View
	u, ok := unify(v, cond, s1, s2)
	if !ok {
		return nil
	}
	if rw := detectDeclarationFold(c, id, cond, u); rw != nil {
		return rw
	}
	return &Rewrite{
		Rule:    IfElseTernaryName,
		Message: "merge both branches into a conditional expression",
		Node:    id,
		Span:    span.Of(c.Index, id),
		Apply: func(e *tree.Editor) error {
			return e.Replace(id, u.build(e, cond))
		},
	}
}

// detectDeclarationFold folds the merged assignment into the declaration
// of its variable when that declaration immediately precedes the if.
func detectDeclarationFold(c *Context, id, cond tree.NodeID, u unification) *Rewrite {
	v := c.View
	if v.Kind(u.s1) != tree.ExprStmt || selected(v, u.s1) == tree.None {
		return nil
	}
	_, name, _, val1, ok := assignment(v, u.s1)
	if !ok {
		return nil
	}
	_, _, _, val2, _ := assignment(v, u.s2)
	block, stmts, idx, ok := c.siblings(id)
	if !ok || idx == 0 {
		return nil
	}
	decl := stmts[idx-1]
	frag, err := check.FoldableDecl(v, decl, name, cond, val1, val2)
	if err != nil {
		return nil
	}
	if init := tree.FragmentInit(v, frag); init != tree.None && !tree.Pure(v, init) {
		return nil
	}
	return &Rewrite{
		Rule:    IfElseTernaryName,
		Message: "initialize the declaration with a conditional expression",
		Node:    id,
		Span:    c.stmtSpan(block, idx-1, idx),
		Apply: func(e *tree.Editor) error {
			init := u.value(e, cond)
			if err := e.Replace(frag, e.Frag(name, init)); err != nil {
				return err
			}
			return e.RemoveStmt(id)
		},
	}
}

func detectBranchLists(c *Context, id, cond tree.NodeID, as, bs []tree.NodeID) *Rewrite {
	v := c.View
	rs, ok := diff.List(v, as, bs)
	if !ok || len(rs) != 1 || rs[0].A != as[0] {
		return nil
	}
	u, ok := unify(v, cond, as[0], bs[0])
	if !ok {
		return nil
	}
	tail := as[1:]
	for _, s := range tail {
		// hoisting would move the declaration into the enclosing scope
		if v.Kind(s) == tree.VarDecl {
			return nil
		}
	}
	return &Rewrite{
		Rule:    IfElseTernaryName,
		Message: "merge the differing first statements and hoist the common tail",
		Node:    id,
		Span:    span.Of(c.Index, id),
		Apply: func(e *tree.Editor) error {
			stmts := append([]tree.NodeID{u.build(e, cond)}, tail...)
			if p, _, ok := e.Index().Parent(id); ok && e.Tree().Kind(p) == tree.Block {
				return e.ReplaceStmts(id, id, stmts...)
			}
			return e.Replace(id, e.Block(stmts...))
		},
	}
}
