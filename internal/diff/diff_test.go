package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RonGatenio/Spartanizer/internal/tree"
)

func TestFind(t *testing.T) {
	t.Parallel()
	b := tree.NewBuilder()
	v := b.Tree()

	// x = 1; / x = 2;
	one, two := b.Num("1"), b.Num("2")
	r, ok := Find(v, b.Expr(b.Assign(tree.Assign, b.Name("x"), one)), b.Expr(b.Assign(tree.Assign, b.Name("x"), two)))
	require.True(t, ok)
	assert.Equal(t, Record{A: one, B: two}, r)

	// f(a, b) / f(a, c) reached through a single-statement block
	bn, cn := b.Name("b"), b.Name("c")
	r, ok = Find(v,
		b.Block(b.Expr(b.Call("f", b.Name("a"), bn))),
		b.Block(b.Empty(), b.Expr(b.Call("f", b.Name("a"), cn))))
	require.True(t, ok)
	assert.Equal(t, Record{A: bn, B: cn}, r)

	// two differing children: the pair itself
	l, rr := b.Call("f", b.Num("1"), b.Num("2")), b.Call("f", b.Num("3"), b.Num("4"))
	r, ok = Find(v, b.Expr(l), b.Expr(rr))
	require.True(t, ok)
	assert.Equal(t, Record{A: l, B: rr}, r)

	// operator mismatch stops at the operator node
	p, q := b.Infix(tree.Add, b.Name("a"), b.Name("b")), b.Infix(tree.Sub, b.Name("a"), b.Name("b"))
	r, ok = Find(v, b.Return(p), b.Return(q))
	require.True(t, ok)
	assert.Equal(t, Record{A: p, B: q}, r)

	// parentheses are not a difference
	_, ok = Find(v, b.Return(b.Paren(b.Name("a"))), b.Return(b.Name("a")))
	assert.False(t, ok)

	// empty against empty
	_, ok = Find(v, b.Block(), b.Empty())
	assert.False(t, ok)
}

func TestValid(t *testing.T) {
	t.Parallel()
	b := tree.NewBuilder()
	v := b.Tree()

	r, ok := Find(v, b.Expr(b.Assign(tree.Assign, b.Name("x"), b.Num("1"))), b.Return(b.Num("1")))
	require.True(t, ok)
	assert.False(t, Valid(v, r), "statement kinds differ")

	r, ok = Find(v, b.Return(b.Infix(tree.Add, b.Name("a"), b.Num("1"))), b.Return(b.Name("z")))
	require.True(t, ok)
	assert.True(t, Valid(v, r), "any two expressions")

	assert.False(t, Valid(v, Record{A: b.Name("a")}))
}

func TestList(t *testing.T) {
	t.Parallel()
	b := tree.NewBuilder()
	v := b.Tree()

	a1, b1 := b.Expr(b.Call("f", b.Num("1"))), b.Expr(b.Call("f", b.Num("2")))
	a2, b2 := b.Expr(b.Call("g")), b.Expr(b.Call("g"))
	a3, b3 := b.Return(b.Name("x")), b.Return(b.Name("y"))

	rs, ok := List(v, []tree.NodeID{a1, a2, a3}, []tree.NodeID{b1, b2, b3})
	require.True(t, ok)
	assert.Equal(t, []Record{{A: a1, B: b1}, {A: a3, B: b3}}, rs)

	_, ok = List(v, []tree.NodeID{a1}, []tree.NodeID{b1, b2})
	assert.False(t, ok)
}
