package treeio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RonGatenio/Spartanizer/internal/tree"
)

const sample = `
block:
  - decl: {type: int, vars: [a, {x: 0}]}
  - if:
      cond: {infix: {op: "&&", operands: [a, {not: b}]}}
      then: {expr: {assign: {target: x, op: "+=", value: 1}}}
      else:
        block:
          - expr: {call: {func: log, args: ["done", 2.5, null]}}
          - empty: ~
  - return: {cond: {if: true, then: {postfix: {op: "++", operand: x}}, else: {prefix: {op: "-", operand: {paren: x}}}}}
`

func TestDecode(t *testing.T) {
	t.Parallel()
	tr, err := Decode([]byte(sample))
	require.NoError(t, err)

	want := `{ int a, x = 0; if (a && !b) x += 1; else { log("done", 2.5, null); ; } return true ? x++ : -(x); }`
	assert.Equal(t, want, tree.Render(tr, tr.Root()))

	decl := tree.Kid(tr, tr.Root(), 0)
	assert.Equal(t, tree.Pos{Line: 3, Column: 5}, tree.PosOf(tr, decl))
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown statement", "loop: {}"},
		{"two keys", "{expr: a, return: b}"},
		{"missing cond", "if: {then: {return: a}}"},
		{"bad operator", `expr: {infix: {op: "=", operands: [a, b]}}`},
		{"single operand", `expr: {infix: {op: "+", operands: [a]}}`},
		{"unknown field", "expr: {assign: {target: x, value: 1, extra: 2}}"},
		{"empty", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBadDocument), "got %v", err)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()
	tr, err := Decode([]byte(sample))
	require.NoError(t, err)

	data, err := Encode(tr)
	require.NoError(t, err)

	again, err := Decode(data)
	require.NoError(t, err, "%s", data)
	assert.Equal(t, tree.Render(tr, tr.Root()), tree.Render(again, again.Root()))
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	b := tree.NewBuilder()
	tr := b.Build(b.Block(b.Return(b.Str("s"))))

	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, Save(path, tr))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, `{ return "s"; }`, tree.Render(got, got.Root()))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
