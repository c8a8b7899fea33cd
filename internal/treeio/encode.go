package treeio

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RonGatenio/Spartanizer/internal/tree"
)

type encoder struct {
	v tree.View
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func pair(key string, val *yaml.Node, style yaml.Style) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Style: style, Content: []*yaml.Node{str(key), val}}
}

func null() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// Encode renders t as a tree document.
func Encode(t tree.View) ([]byte, error) {
	e := encoder{v: t}
	root, err := e.stmt(t.Root())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes t and writes it to path.
func Save(path string, t tree.View) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (e encoder) stmt(id tree.NodeID) (*yaml.Node, error) {
	n := e.v.Node(id)
	if n == nil {
		return nil, fmt.Errorf("%w: missing statement %d", ErrBadDocument, id)
	}
	switch n.Kind {
	case tree.Block:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, k := range n.Kids {
			s, err := e.stmt(k)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, s)
		}
		if len(n.Kids) == 0 {
			seq.Style = yaml.FlowStyle
		}
		return pair("block", seq, 0), nil
	case tree.If:
		m := &yaml.Node{Kind: yaml.MappingNode}
		c, err := e.expr(n.Kids[0])
		if err != nil {
			return nil, err
		}
		then, err := e.stmt(n.Kids[1])
		if err != nil {
			return nil, err
		}
		m.Content = append(m.Content, str("cond"), c, str("then"), then)
		if len(n.Kids) > 2 {
			els, err := e.stmt(n.Kids[2])
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, str("else"), els)
		}
		return pair("if", m, 0), nil
	case tree.Return:
		if len(n.Kids) == 0 {
			return pair("return", null(), 0), nil
		}
		x, err := e.expr(n.Kids[0])
		if err != nil {
			return nil, err
		}
		return pair("return", x, 0), nil
	case tree.ExprStmt:
		x, err := e.expr(n.Kids[0])
		if err != nil {
			return nil, err
		}
		return pair("expr", x, 0), nil
	case tree.VarDecl:
		vars := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, f := range n.Kids {
			name := tree.FragmentName(e.v, f)
			init := tree.FragmentInit(e.v, f)
			if init == tree.None {
				vars.Content = append(vars.Content, str(name))
				continue
			}
			x, err := e.expr(init)
			if err != nil {
				return nil, err
			}
			vars.Content = append(vars.Content, pair(name, x, yaml.FlowStyle))
		}
		m := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle,
			Content: []*yaml.Node{str("type"), str(n.Text), str("vars"), vars}}
		return pair("decl", m, 0), nil
	case tree.Empty:
		return pair("empty", null(), 0), nil
	default:
		return nil, fmt.Errorf("%w: %s in statement position", ErrBadDocument, n.Kind)
	}
}

func (e encoder) exprs(ids []tree.NodeID) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, id := range ids {
		x, err := e.expr(id)
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, x)
	}
	return seq, nil
}

func (e encoder) fields(kv ...any) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for i := 0; i+1 < len(kv); i += 2 {
		var val *yaml.Node
		switch x := kv[i+1].(type) {
		case tree.NodeID:
			var err error
			if val, err = e.expr(x); err != nil {
				return nil, err
			}
		case *yaml.Node:
			val = x
		}
		m.Content = append(m.Content, str(kv[i].(string)), val)
	}
	return m, nil
}

func (e encoder) expr(id tree.NodeID) (*yaml.Node, error) {
	n := e.v.Node(id)
	if n == nil {
		return nil, fmt.Errorf("%w: missing expression %d", ErrBadDocument, id)
	}
	var (
		m   *yaml.Node
		err error
	)
	switch n.Kind {
	case tree.Name:
		return str(n.Text), nil
	case tree.NumberLit:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: n.Text}, nil
	case tree.BoolLit:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: n.Text}, nil
	case tree.StringLit:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: n.Text}, nil
	case tree.NullLit:
		return null(), nil
	case tree.Assignment:
		if n.Op == tree.Assign {
			m, err = e.fields("target", n.Kids[0], "value", n.Kids[1])
		} else {
			m, err = e.fields("target", n.Kids[0], "op", str(n.Op.String()), "value", n.Kids[1])
		}
		return wrap("assign", m, err)
	case tree.Conditional:
		m, err = e.fields("if", n.Kids[0], "then", n.Kids[1], "else", n.Kids[2])
		return wrap("cond", m, err)
	case tree.Prefix:
		if n.Op == tree.Not {
			m, err = e.expr(n.Kids[0])
			return wrap("not", m, err)
		}
		m, err = e.fields("op", str(n.Op.String()), "operand", n.Kids[0])
		return wrap("prefix", m, err)
	case tree.Postfix:
		m, err = e.fields("op", str(n.Op.String()), "operand", n.Kids[0])
		return wrap("postfix", m, err)
	case tree.Infix:
		ops, err := e.exprs(n.Kids)
		if err != nil {
			return nil, err
		}
		m, err = e.fields("op", str(n.Op.String()), "operands", ops)
		return wrap("infix", m, err)
	case tree.Paren:
		m, err = e.expr(n.Kids[0])
		return wrap("paren", m, err)
	case tree.Call:
		if len(n.Kids) == 0 {
			m, err = e.fields("func", str(n.Text))
		} else {
			args, aerr := e.exprs(n.Kids)
			if aerr != nil {
				return nil, aerr
			}
			m, err = e.fields("func", str(n.Text), "args", args)
		}
		return wrap("call", m, err)
	default:
		return nil, fmt.Errorf("%w: %s in expression position", ErrBadDocument, n.Kind)
	}
}

func wrap(key string, val *yaml.Node, err error) (*yaml.Node, error) {
	if err != nil {
		return nil, err
	}
	return pair(key, val, yaml.FlowStyle), nil
}
