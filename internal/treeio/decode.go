// Package treeio reads and writes tree documents: a YAML rendering of the
// syntax-tree model.
//
// A document holds one statement. Statements are single-key mappings:
//
//	block: [stmt, ...]
//	if:    {cond: expr, then: stmt, else: stmt}
//	return: expr          (null for a bare return)
//	expr:  expr
//	decl:  {type: int, vars: [a, {x: expr}]}
//	empty: null
//
// Expressions are scalars or single-key mappings. Plain scalars are names,
// numbers or booleans, quoted scalars are strings and null is the null
// literal:
//
//	assign:  {target: x, op: "+=", value: expr}   (op defaults to "=")
//	cond:    {if: expr, then: expr, else: expr}
//	not:     expr
//	prefix:  {op: "-", operand: expr}
//	postfix: {op: "++", operand: expr}
//	infix:   {op: "&&", operands: [expr, expr, ...]}
//	call:    {func: f, args: [expr, ...]}
//	paren:   expr
package treeio

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RonGatenio/Spartanizer/internal/tree"
)

// ErrBadDocument reports a document that does not describe a tree.
var ErrBadDocument = errors.New("bad tree document")

type decoder struct {
	b *tree.Builder
}

func badNode(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d column %d: %s", ErrBadDocument, n.Line, n.Column, fmt.Sprintf(format, args...))
}

// Decode parses a tree document.
func Decode(data []byte) (*tree.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrBadDocument)
	}
	d := decoder{b: tree.NewBuilder()}
	root, err := d.stmt(doc.Content[0])
	if err != nil {
		return nil, err
	}
	return d.b.Build(root), nil
}

// Load reads and decodes the tree document at path.
func Load(path string) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (d decoder) at(id tree.NodeID, n *yaml.Node) tree.NodeID {
	return d.b.At(id, tree.Pos{Line: n.Line, Column: n.Column})
}

// single splits a one-key mapping into its key and value.
func single(n *yaml.Node) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, badNode(n, "expected a mapping with exactly one key")
	}
	return n.Content[0].Value, n.Content[1], nil
}

// fields indexes the keys of a mapping, rejecting unknown ones.
func fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, badNode(n, "expected a mapping")
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		known := false
		for _, a := range allowed {
			if a == key {
				known = true
				break
			}
		}
		if !known {
			return nil, badNode(n.Content[i], "unknown field %q", key)
		}
		out[key] = n.Content[i+1]
	}
	return out, nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func (d decoder) stmt(n *yaml.Node) (tree.NodeID, error) {
	if n.Kind == yaml.SequenceNode {
		return d.block(n, n)
	}
	key, val, err := single(n)
	if err != nil {
		return tree.None, err
	}
	switch key {
	case "block":
		return d.block(n, val)
	case "if":
		return d.ifStmt(n, val)
	case "return":
		if isNull(val) {
			return d.at(d.b.Return(tree.None), n), nil
		}
		e, err := d.expr(val)
		if err != nil {
			return tree.None, err
		}
		return d.at(d.b.Return(e), n), nil
	case "expr":
		e, err := d.expr(val)
		if err != nil {
			return tree.None, err
		}
		return d.at(d.b.Expr(e), n), nil
	case "decl":
		return d.decl(n, val)
	case "empty":
		return d.at(d.b.Empty(), n), nil
	default:
		return tree.None, badNode(n, "unknown statement %q", key)
	}
}

func (d decoder) block(n, list *yaml.Node) (tree.NodeID, error) {
	if isNull(list) {
		return d.at(d.b.Block(), n), nil
	}
	if list.Kind != yaml.SequenceNode {
		return tree.None, badNode(list, "block expects a sequence")
	}
	stmts := make([]tree.NodeID, 0, len(list.Content))
	for _, c := range list.Content {
		s, err := d.stmt(c)
		if err != nil {
			return tree.None, err
		}
		stmts = append(stmts, s)
	}
	return d.at(d.b.Block(stmts...), n), nil
}

func (d decoder) ifStmt(n, val *yaml.Node) (tree.NodeID, error) {
	f, err := fields(val, "cond", "then", "else")
	if err != nil {
		return tree.None, err
	}
	if f["cond"] == nil || f["then"] == nil {
		return tree.None, badNode(val, "if needs cond and then")
	}
	c, err := d.expr(f["cond"])
	if err != nil {
		return tree.None, err
	}
	then, err := d.stmt(f["then"])
	if err != nil {
		return tree.None, err
	}
	els := tree.None
	if e := f["else"]; e != nil {
		if els, err = d.stmt(e); err != nil {
			return tree.None, err
		}
	}
	return d.at(d.b.If(c, then, els), n), nil
}

func (d decoder) decl(n, val *yaml.Node) (tree.NodeID, error) {
	f, err := fields(val, "type", "vars")
	if err != nil {
		return tree.None, err
	}
	typ, vars := f["type"], f["vars"]
	if typ == nil || typ.Kind != yaml.ScalarNode || vars == nil || vars.Kind != yaml.SequenceNode || len(vars.Content) == 0 {
		return tree.None, badNode(val, "decl needs a type and a non-empty vars sequence")
	}
	frags := make([]tree.NodeID, 0, len(vars.Content))
	for _, v := range vars.Content {
		var frag tree.NodeID
		switch v.Kind {
		case yaml.ScalarNode:
			frag = d.b.Frag(v.Value, tree.None)
		case yaml.MappingNode:
			name, init, err := single(v)
			if err != nil {
				return tree.None, err
			}
			e, err := d.expr(init)
			if err != nil {
				return tree.None, err
			}
			frag = d.b.Frag(name, e)
		default:
			return tree.None, badNode(v, "bad variable")
		}
		frags = append(frags, d.at(frag, v))
	}
	return d.at(d.b.Decl(typ.Value, frags...), n), nil
}

func (d decoder) scalar(n *yaml.Node) (tree.NodeID, error) {
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		return d.at(d.b.Str(n.Value), n), nil
	}
	switch n.Tag {
	case "!!null":
		return d.at(d.b.Null(), n), nil
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			return tree.None, badNode(n, "%v", err)
		}
		return d.at(d.b.Bool(v), n), nil
	case "!!int", "!!float":
		return d.at(d.b.Num(n.Value), n), nil
	case "!!str":
		if n.Value == "" {
			return tree.None, badNode(n, "empty name")
		}
		return d.at(d.b.Name(n.Value), n), nil
	default:
		return tree.None, badNode(n, "unsupported scalar %s", n.Tag)
	}
}

func (d decoder) exprs(n *yaml.Node) ([]tree.NodeID, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, badNode(n, "expected a sequence of expressions")
	}
	out := make([]tree.NodeID, 0, len(n.Content))
	for _, c := range n.Content {
		e, err := d.expr(c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d decoder) op(k tree.Kind, n *yaml.Node, def tree.Op) (tree.Op, error) {
	if n == nil {
		if def == tree.NoOp {
			return tree.NoOp, fmt.Errorf("%w: missing operator", ErrBadDocument)
		}
		return def, nil
	}
	op, ok := tree.ParseOp(k, n.Value)
	if !ok {
		return tree.NoOp, badNode(n, "bad %s operator %q", k, n.Value)
	}
	return op, nil
}

func (d decoder) expr(n *yaml.Node) (tree.NodeID, error) {
	if n.Kind == yaml.ScalarNode {
		return d.scalar(n)
	}
	key, val, err := single(n)
	if err != nil {
		return tree.None, err
	}
	switch key {
	case "null":
		return d.at(d.b.Null(), n), nil
	case "not", "paren":
		x, err := d.expr(val)
		if err != nil {
			return tree.None, err
		}
		if key == "not" {
			return d.at(d.b.Not(x), n), nil
		}
		return d.at(d.b.Paren(x), n), nil
	case "assign":
		f, err := fields(val, "target", "op", "value")
		if err != nil {
			return tree.None, err
		}
		if f["target"] == nil || f["value"] == nil {
			return tree.None, badNode(val, "assign needs target and value")
		}
		op, err := d.op(tree.Assignment, f["op"], tree.Assign)
		if err != nil {
			return tree.None, err
		}
		target, err := d.expr(f["target"])
		if err != nil {
			return tree.None, err
		}
		value, err := d.expr(f["value"])
		if err != nil {
			return tree.None, err
		}
		return d.at(d.b.Assign(op, target, value), n), nil
	case "cond":
		f, err := fields(val, "if", "then", "else")
		if err != nil {
			return tree.None, err
		}
		var parts [3]tree.NodeID
		for i, k := range []string{"if", "then", "else"} {
			if f[k] == nil {
				return tree.None, badNode(val, "cond needs %s", k)
			}
			if parts[i], err = d.expr(f[k]); err != nil {
				return tree.None, err
			}
		}
		return d.at(d.b.Cond(parts[0], parts[1], parts[2]), n), nil
	case "prefix", "postfix":
		k := tree.Prefix
		if key == "postfix" {
			k = tree.Postfix
		}
		f, err := fields(val, "op", "operand")
		if err != nil {
			return tree.None, err
		}
		op, err := d.op(k, f["op"], tree.NoOp)
		if err != nil {
			return tree.None, badNode(val, "%v", err)
		}
		if f["operand"] == nil {
			return tree.None, badNode(val, "%s needs an operand", key)
		}
		x, err := d.expr(f["operand"])
		if err != nil {
			return tree.None, err
		}
		return d.at(d.b.Add(k, op, "", x), n), nil
	case "infix":
		f, err := fields(val, "op", "operands")
		if err != nil {
			return tree.None, err
		}
		op, err := d.op(tree.Infix, f["op"], tree.NoOp)
		if err != nil {
			return tree.None, badNode(val, "%v", err)
		}
		xs, err := d.exprs(f["operands"])
		if err != nil {
			return tree.None, err
		}
		if len(xs) < 2 {
			return tree.None, badNode(val, "infix needs at least two operands")
		}
		return d.at(d.b.Infix(op, xs...), n), nil
	case "call":
		f, err := fields(val, "func", "args")
		if err != nil {
			return tree.None, err
		}
		fn := f["func"]
		if fn == nil || fn.Kind != yaml.ScalarNode || fn.Value == "" {
			return tree.None, badNode(val, "call needs a func name")
		}
		args, err := d.exprs(f["args"])
		if err != nil {
			return tree.None, err
		}
		return d.at(d.b.Call(fn.Value, args...), n), nil
	default:
		return tree.None, badNode(n, "unknown expression %q", key)
	}
}
