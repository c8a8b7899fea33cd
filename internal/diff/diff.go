// Package diff locates where two candidate subtrees structurally differ.
package diff

import (
	"github.com/RonGatenio/Spartanizer/internal/tree"
)

// Record is a pair of corresponding nodes, one from each side.
type Record struct {
	A, B tree.NodeID
}

func (r Record) IsZero() bool { return r.A == tree.None && r.B == tree.None }

// unwrap replaces a block holding a single real statement by that statement.
func unwrap(v tree.View, id tree.NodeID) tree.NodeID {
	if v.Kind(id) == tree.Block {
		if s := tree.Single(v, id); s != tree.None {
			return s
		}
	}
	return id
}

func blank(v tree.View, id tree.NodeID) bool {
	switch v.Kind(id) {
	case tree.Invalid, tree.Empty:
		return true
	case tree.Block:
		return len(tree.Statements(v, id)) == 0
	}
	return false
}

// Find returns the single smallest pair of positions at which a and b
// differ. ok is false when the two subtrees are equal.
//
// When more than one child differs, or the nodes themselves disagree in
// kind, operator, text or arity, the pair (a, b) itself is the difference.
func Find(v tree.View, a, b tree.NodeID) (r Record, ok bool) {
	a, b = unwrap(v, a), unwrap(v, b)
	if blank(v, a) && blank(v, b) {
		return Record{}, false
	}
	a, b = tree.Core(v, a), tree.Core(v, b)
	na, nb := v.Node(a), v.Node(b)
	if na == nil || nb == nil {
		return Record{A: a, B: b}, true
	}
	if na.Kind != nb.Kind || na.Op != nb.Op || na.Text != nb.Text || len(na.Kids) != len(nb.Kids) {
		return Record{A: a, B: b}, true
	}
	at := -1
	for i := range na.Kids {
		if tree.Equal(v, na.Kids[i], nb.Kids[i]) {
			continue
		}
		if at >= 0 {
			return Record{A: a, B: b}, true
		}
		at = i
	}
	if at < 0 {
		return Record{}, false
	}
	return Find(v, na.Kids[at], nb.Kids[at])
}

// List compares two statement lists position by position and returns the
// differing pairs. ok is false when the lists differ in length.
func List(v tree.View, as, bs []tree.NodeID) (rs []Record, ok bool) {
	if len(as) != len(bs) {
		return nil, false
	}
	for i := range as {
		if !tree.Equal(v, as[i], bs[i]) {
			rs = append(rs, Record{A: as[i], B: bs[i]})
		}
	}
	return rs, true
}

// Valid reports whether r is a usable difference: both sides exist and are
// either two expressions or two statements of the same kind. Callers treat
// an invalid record as no difference found.
func Valid(v tree.View, r Record) bool {
	ka, kb := v.Kind(r.A), v.Kind(r.B)
	if ka == tree.Invalid || kb == tree.Invalid {
		return false
	}
	if ka.IsExpression() && kb.IsExpression() {
		return true
	}
	return ka == kb
}
