// Package span tracks which portions of a tree a rewrite touches and keeps
// the rewrites of a single pass from stepping on each other.
package span

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"

	"github.com/RonGatenio/Spartanizer/internal/tree"
)

// Pos is one child position: the Index-th kid of Parent.
type Pos struct {
	Parent tree.NodeID
	Index  int
}

// Span is the contiguous run of kids From..To (inclusive) of Parent,
// together with the chain of positions leading from the root to Parent.
// A span whose Parent is tree.None covers the whole tree.
type Span struct {
	Parent   tree.NodeID
	From, To int
	path     []Pos
}

// Whole is the span covering the entire tree.
var Whole = Span{Parent: tree.None}

// New returns the span of kids from..to of parent.
func New(ix *tree.Index, parent tree.NodeID, from, to int) Span {
	if from > to {
		from, to = to, from
	}
	parents, slots := ix.Ancestors(parent)
	path := make([]Pos, len(parents))
	for i := range parents {
		path[i] = Pos{Parent: parents[i], Index: slots[i]}
	}
	return Span{Parent: parent, From: from, To: to, path: path}
}

// Of returns the span of the single node id. The root yields Whole.
func Of(ix *tree.Index, id tree.NodeID) Span {
	p, slot, ok := ix.Parent(id)
	if !ok {
		return Whole
	}
	return New(ix, p, slot, slot)
}

func (s Span) IsWhole() bool { return s.Parent == tree.None }

// Depth is the number of positions between the root and Parent.
func (s Span) Depth() int { return len(s.path) }

func (s Span) String() string {
	if s.IsWhole() {
		return "*"
	}
	return fmt.Sprintf("%d[%d:%d]", s.Parent, s.From, s.To)
}

// Positions returns the kid positions covered directly by s.
func (s Span) Positions() *set.Set[Pos] {
	out := set.New[Pos](s.To - s.From + 1)
	for i := s.From; i <= s.To; i++ {
		out.Insert(Pos{Parent: s.Parent, Index: i})
	}
	return out
}

func (s Span) covers(p Pos) bool {
	return p.Parent == s.Parent && p.Index >= s.From && p.Index <= s.To
}

// Subsumes reports whether a fully contains b.
func Subsumes(a, b Span) bool {
	if a.IsWhole() {
		return true
	}
	if b.IsWhole() {
		return false
	}
	if a.Parent == b.Parent {
		return a.From <= b.From && b.To <= a.To
	}
	for _, p := range b.path {
		if a.covers(p) {
			return true
		}
	}
	return false
}

// Overlaps reports whether a and b share any node.
func Overlaps(a, b Span) bool {
	if a.Parent == b.Parent && !a.IsWhole() {
		if a.Positions().Intersect(b.Positions()).Size() > 0 {
			return true
		}
	}
	return Subsumes(a, b) || Subsumes(b, a)
}

// anchor returns the parent at depth d of s and the range s occupies there.
func (s Span) anchor(d int) (tree.NodeID, int, int) {
	if d < len(s.path) {
		p := s.path[d]
		return p.Parent, p.Index, p.Index
	}
	return s.Parent, s.From, s.To
}

// Merge returns the smallest span containing both a and b, rooted at their
// lowest common parent.
func Merge(a, b Span) Span {
	if a.IsWhole() || b.IsWhole() {
		return Whole
	}
	common := -1
	for d := 0; d <= len(a.path) && d <= len(b.path); d++ {
		pa, _, _ := a.anchor(d)
		pb, _, _ := b.anchor(d)
		if pa != pb {
			break
		}
		common = d
	}
	if common < 0 {
		return Whole
	}
	p, af, at := a.anchor(common)
	_, bf, bt := b.anchor(common)
	path := make([]Pos, common)
	copy(path, a.path[:common])
	return Span{Parent: p, From: min(af, bf), To: max(at, bt), path: path}
}
