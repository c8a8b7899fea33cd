package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/span"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

const BlockDeclarationsName = "block-declarations"

// DetectBlockDeclarations matches a nested block that only declares
// variables with side-effect free initializers. Nothing outside the block
// can observe them.
func DetectBlockDeclarations(c *Context, id tree.NodeID) *Rewrite {
	v := c.View
	if v.Kind(id) != tree.Block {
		return nil
	}
	if _, _, _, ok := c.siblings(id); !ok {
		return nil
	}
	decls := 0
	for _, s := range tree.Statements(v, id) {
		if v.Kind(s) != tree.VarDecl {
			return nil
		}
		for _, f := range v.Kids(s) {
			if init := tree.FragmentInit(v, f); init != tree.None && !tree.Pure(v, init) {
				return nil
			}
		}
		decls++
	}
	if decls == 0 {
		return nil
	}
	return &Rewrite{
		Rule:    BlockDeclarationsName,
		Message: "remove a block that only declares unused variables",
		Node:    id,
		Span:    span.Of(c.Index, id),
		Apply: func(e *tree.Editor) error {
			return e.RemoveStmt(id)
		},
	}
}
