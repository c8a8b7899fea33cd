// Package rules holds the rewrite detectors. Each Detect function inspects a
// single node and, when its pattern matches, returns a Rewrite whose Apply
// performs the edit. Detection never mutates the tree.
package rules

import (
	"github.com/RonGatenio/Spartanizer/internal/check"
	"github.com/RonGatenio/Spartanizer/internal/span"
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

// Context is the read-only state shared by the detectors of one pass.
type Context struct {
	View  tree.View
	Index *tree.Index
}

func NewContext(t *tree.Tree) *Context {
	return &Context{View: t, Index: tree.NewIndex(t)}
}

// Rewrite is a detected opportunity. Every value the edit needs is captured
// at detection time.
type Rewrite struct {
	Rule    string
	Message string
	Node    tree.NodeID // node the rule matched on
	Span    span.Span
	Apply   func(*tree.Editor) error
}

// siblings locates id inside its enclosing block.
func (c *Context) siblings(id tree.NodeID) (block tree.NodeID, stmts []tree.NodeID, idx int, ok bool) {
	p, slot, ok := c.Index.Parent(id)
	if !ok || c.View.Kind(p) != tree.Block {
		return tree.None, nil, -1, false
	}
	return p, c.View.Kids(p), slot, true
}

func (c *Context) stmtSpan(block tree.NodeID, from, to int) span.Span {
	return span.New(c.Index, block, from, to)
}

// copyReplacing deep-copies id, substituting with for the node at target.
func copyReplacing(e *tree.Editor, v tree.View, id, target, with tree.NodeID) tree.NodeID {
	if id == target {
		return with
	}
	n := v.Node(id)
	kids := make([]tree.NodeID, len(n.Kids))
	for i, k := range n.Kids {
		kids[i] = copyReplacing(e, v, k, target, with)
	}
	n = v.Node(id)
	return e.At(e.Add(n.Kind, n.Op, n.Text, kids...), n.Pos)
}

// conditional builds c ? a : b from copies of its parts. Boolean literal
// branches collapse into the condition or its negation.
func conditional(e *tree.Editor, v tree.View, c, a, b tree.NodeID) tree.NodeID {
	switch {
	case tree.IsBool(v, a, true) && tree.IsBool(v, b, false):
		return e.Clone(tree.Core(v, c))
	case tree.IsBool(v, a, false) && tree.IsBool(v, b, true):
		return Negate(e, v, c)
	}
	return e.Cond(e.Clone(c), e.Clone(a), e.Clone(b))
}

// writes reports whether evaluating exprs may assign a variable.
func writes(v tree.View, exprs ...tree.NodeID) bool {
	found := false
	for _, x := range exprs {
		tree.Walk(v, x, func(id tree.NodeID) bool {
			if v.Kind(id) == tree.Assignment || tree.IsIncDec(v, id) {
				found = true
			}
			return !found
		})
	}
	return found
}

// assignment returns target name, operator and value of the assignment
// carried by stmt when its target is a simple name.
func assignment(v tree.View, stmt tree.NodeID) (asg tree.NodeID, name string, op tree.Op, value tree.NodeID, ok bool) {
	if asg = check.Assignment(v, stmt); asg == tree.None {
		return
	}
	if name, ok = tree.SimpleName(v, tree.Kid(v, asg, 0)); !ok {
		return
	}
	return asg, name, tree.OpOf(v, asg), tree.Kid(v, asg, 1), true
}
