package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/span"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

const IfEmptyElseName = "if-empty-else"

// DetectIfEmptyElse matches an else branch holding no statement, such as
// `else {}`, `else ;` or nested empty blocks.
func DetectIfEmptyElse(c *Context, id tree.NodeID) *Rewrite {
	v := c.View
	if v.Kind(id) != tree.If || len(v.Kids(id)) != 3 {
		return nil
	}
	els := v.Kids(id)[2]
	if len(tree.Statements(v, els)) != 0 {
		return nil
	}
	return &Rewrite{
		Rule:    IfEmptyElseName,
		Message: "remove the empty else branch",
		Node:    id,
		Span:    span.Of(c.Index, id),
		Apply: func(e *tree.Editor) error {
			return e.Truncate(id, 2, els)
		},
	}
}
