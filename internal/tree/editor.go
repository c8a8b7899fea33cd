package tree

import (
	"errors"
	"fmt"
)

// ErrMalformedEdit is returned when an edit's preconditions no longer hold,
// typically because an earlier edit in the same pass moved its target.
var ErrMalformedEdit = errors.New("malformed edit")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedEdit, fmt.Sprintf(format, args...))
}

// Editor is the only mutation capability of a tree. It keeps the parent
// index current so that edits can locate their targets by NodeID even after
// sibling edits shifted statement positions.
type Editor struct {
	Builder
}

// NewEditor returns an editor for t. ix must have been computed for t.
func NewEditor(t *Tree, ix *Index) *Editor {
	return &Editor{Builder: Builder{t: t, ix: ix}}
}

// Index returns the index maintained by the editor.
func (e *Editor) Index() *Index { return e.ix }

func (e *Editor) locate(id NodeID) (NodeID, int, error) {
	p, slot, ok := e.ix.Parent(id)
	if !ok {
		return None, -1, malformed("node %d is detached", id)
	}
	if Kid(e.t, p, slot) != id {
		return None, -1, malformed("node %d is not at slot %d of %d", id, slot, p)
	}
	return p, slot, nil
}

func (e *Editor) setKids(id NodeID, kids []NodeID) {
	n := e.t.Node(id)
	for _, k := range n.Kids {
		if p, _, ok := e.ix.Parent(k); ok && p == id {
			e.ix.clear(k)
		}
	}
	n.Kids = kids
	for i, k := range kids {
		e.ix.set(k, id, i)
	}
}

// Replace puts with in the place of old. Replacing the root is allowed.
func (e *Editor) Replace(old, with NodeID) error {
	if e.t.Node(with) == nil {
		return malformed("replacement %d does not exist", with)
	}
	if old == e.t.root {
		e.ix.clear(old)
		e.t.root = with
		e.ix.root = with
		e.ix.clear(with)
		return nil
	}
	p, slot, err := e.locate(old)
	if err != nil {
		return err
	}
	return e.ReplaceKid(p, slot, old, with)
}

// ReplaceKid sets the slot-th child of parent to with, provided it is
// currently expect.
func (e *Editor) ReplaceKid(parent NodeID, slot int, expect, with NodeID) error {
	n := e.t.Node(parent)
	if n == nil || slot < 0 || slot >= len(n.Kids) {
		return malformed("no slot %d in node %d", slot, parent)
	}
	if n.Kids[slot] != expect {
		return malformed("slot %d of node %d holds %d, want %d", slot, parent, n.Kids[slot], expect)
	}
	kids := make([]NodeID, len(n.Kids))
	copy(kids, n.Kids)
	kids[slot] = with
	e.setKids(parent, kids)
	return nil
}

// ReplaceStmts replaces the contiguous run of statements first..last
// (inclusive, both children of the same block) with stmts.
func (e *Editor) ReplaceStmts(first, last NodeID, stmts ...NodeID) error {
	p, from, err := e.locate(first)
	if err != nil {
		return err
	}
	q, to, err := e.locate(last)
	if err != nil {
		return err
	}
	if p != q || to < from {
		return malformed("statements %d..%d are not a run", first, last)
	}
	if e.t.Kind(p) != Block {
		return malformed("parent %d of statements is a %s", p, e.t.Kind(p))
	}
	old := e.t.Kids(p)
	kids := make([]NodeID, 0, len(old)-(to-from+1)+len(stmts))
	kids = append(kids, old[:from]...)
	kids = append(kids, stmts...)
	kids = append(kids, old[to+1:]...)
	e.setKids(p, kids)
	return nil
}

// RemoveStmt deletes a statement from its enclosing block.
func (e *Editor) RemoveStmt(id NodeID) error {
	return e.ReplaceStmts(id, id)
}

// SetKids replaces every child of id.
func (e *Editor) SetKids(id NodeID, kids ...NodeID) error {
	if e.t.Node(id) == nil {
		return malformed("node %d does not exist", id)
	}
	cp := make([]NodeID, len(kids))
	copy(cp, kids)
	e.setKids(id, cp)
	return nil
}

// Clone deep-copies the subtree at id. The copy is detached.
func (e *Editor) Clone(id NodeID) NodeID {
	n := e.t.Node(id)
	if n == nil {
		return None
	}
	kids := make([]NodeID, len(n.Kids))
	for i, k := range n.Kids {
		kids[i] = e.Clone(k)
	}
	// n may be invalidated by the appends above
	src := *e.t.Node(id)
	src.Kids = kids
	c := e.t.add(src)
	for i, k := range kids {
		e.ix.set(k, c, i)
	}
	return c
}

// Truncate drops the kids of parent from slot on, provided the kid at slot
// is currently expect.
func (e *Editor) Truncate(parent NodeID, slot int, expect NodeID) error {
	if Kid(e.t, parent, slot) != expect || expect == None {
		return malformed("slot %d of node %d does not hold %d", slot, parent, expect)
	}
	kids := make([]NodeID, slot)
	copy(kids, e.t.Kids(parent))
	e.setKids(parent, kids)
	return nil
}
