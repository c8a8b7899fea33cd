package tree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	a, one, two := b.Name("a"), b.Num("1"), b.Num("2")

	tests := []struct {
		name string
		id   NodeID
		want string
	}{
		{"declaration", b.Decl("int", b.Frag("x", b.Cond(a, one, two))), "int x = a ? 1 : 2;"},
		{"nested infix keeps grouping", b.Infix(Mul, b.Infix(Add, b.Name("p"), b.Name("q")), b.Name("r")), "(p + q) * r"},
		{"right operand of same precedence", b.Infix(Sub, b.Name("p"), b.Infix(Sub, b.Name("q"), b.Name("r"))), "p - (q - r)"},
		{"negated disjunction", b.Not(b.Infix(LOr, b.Name("p"), b.Name("q"))), "!(p || q)"},
		{"if else", b.If(a, b.Expr(b.Call("f")), b.Block()), "if (a) f(); else {}"},
		{"return nothing", b.Return(None), "return;"},
		{"assignment", b.Expr(b.Assign(AddAssign, b.Name("x"), b.Num("3"))), "x += 3;"},
		{"string literal", b.Str("s"), `"s"`},
		{"double negative", b.Prefix(Neg, b.Prefix(Neg, b.Name("y"))), "- -y"},
		{"explicit paren", b.Paren(b.Name("y")), "(y)"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Render(b.Tree(), tt.id))
		})
	}
}

func TestEqualIgnoresParens(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	x := b.Infix(Add, b.Name("a"), b.Num("1"))
	y := b.Paren(b.Paren(b.Infix(Add, b.Paren(b.Name("a")), b.Num("1"))))
	z := b.Infix(Add, b.Name("a"), b.Num("2"))

	v := b.Tree()
	assert.True(t, Equal(v, x, y))
	assert.False(t, Equal(v, x, z))
	assert.False(t, Equal(v, x, b.Infix(Sub, b.Name("a"), b.Num("1"))))
}

func TestStatementsAndSingle(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	f := b.Expr(b.Call("f"))
	nested := b.Block(b.Empty(), b.Block(b.Block(), f, b.Empty()))
	g := b.Expr(b.Call("g"))
	v := b.Tree()

	assert.Equal(t, []NodeID{f}, Statements(v, nested))
	assert.Equal(t, f, Single(v, nested))
	assert.Equal(t, None, Single(v, b.Block(f, g)))
	assert.Empty(t, Statements(v, b.Block(b.Empty(), b.Block())))
}

func TestPureAndOccurrences(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	v := b.Tree()

	assert.True(t, Pure(v, b.Infix(Add, b.Name("a"), b.Not(b.Name("b")))))
	assert.False(t, Pure(v, b.Call("f")))
	assert.False(t, Pure(v, b.Infix(Add, b.Name("a"), b.Postfix(Inc, b.Name("i")))))
	assert.False(t, Pure(v, b.Paren(b.Assign(Assign, b.Name("a"), b.Num("1")))))

	e := b.Infix(Mul, b.Name("x"), b.Call("g", b.Name("x"), b.Name("y")))
	assert.Equal(t, 2, Occurrences(v, "x", e))
	assert.Equal(t, 0, Occurrences(v, "g", e))
	names := Names(v, e)
	assert.True(t, names.Contains("y"))
	assert.Equal(t, 2, names.Size())
}

func TestOpHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Add, AddAssign.Infix())
	assert.Equal(t, UShr, UShrAssign.Infix())
	assert.Equal(t, NoOp, Assign.Infix())
	assert.Equal(t, Lss, Geq.Negated())
	assert.Equal(t, Neq, Eql.Negated())
	assert.Equal(t, LOr, LAnd.Flip())

	op, ok := ParseOp(Prefix, "-")
	require.True(t, ok)
	assert.Equal(t, Neg, op)
	op, ok = ParseOp(Infix, "-")
	require.True(t, ok)
	assert.Equal(t, Sub, op)
	_, ok = ParseOp(Assignment, "==")
	assert.False(t, ok)
}

func TestIndexAncestors(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	x := b.Name("x")
	s := b.Expr(x)
	inner := b.Block(b.Empty(), s)
	root := b.Block(b.Expr(b.Call("f")), inner)
	tr := b.Build(root)

	ix := NewIndex(tr)
	p, slot, ok := ix.Parent(s)
	require.True(t, ok)
	assert.Equal(t, inner, p)
	assert.Equal(t, 1, slot)

	parents, slots := ix.Ancestors(x)
	assert.Equal(t, []NodeID{root, inner, s}, parents)
	assert.Equal(t, []int{1, 1, 0}, slots)

	_, _, ok = ix.Parent(root)
	assert.False(t, ok)
	assert.True(t, ix.Attached(x))
	assert.Equal(t, 7, Size(tr))
}

func TestEditor(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	s1 := b.Expr(b.Call("f"))
	s2 := b.Expr(b.Call("g"))
	s3 := b.Expr(b.Call("h"))
	root := b.Block(s1, s2, s3)
	tr := b.Build(root)
	ed := NewEditor(tr, NewIndex(tr))

	require.NoError(t, ed.RemoveStmt(s1))
	// s3 shifted from slot 2 to slot 1 and must still be found by id
	repl := ed.Return(ed.Clone(Kid(tr, s3, 0)))
	require.NoError(t, ed.ReplaceStmts(s3, s3, repl))
	assert.Equal(t, "{ g(); return h(); }", Render(tr, tr.Root()))

	err := ed.RemoveStmt(s1)
	assert.True(t, errors.Is(err, ErrMalformedEdit))

	err = ed.ReplaceStmts(repl, s2)
	assert.True(t, errors.Is(err, ErrMalformedEdit), "reversed run")

	err = ed.ReplaceKid(root, 0, repl, s1)
	assert.True(t, errors.Is(err, ErrMalformedEdit), "stale expectation")

	ix := NewIndex(tr)
	p, _, ok := ix.Parent(Kid(tr, repl, 0))
	require.True(t, ok)
	assert.Equal(t, repl, p)
}
