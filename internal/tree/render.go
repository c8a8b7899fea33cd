package tree

import (
	"strconv"
	"strings"
)

const (
	precAssign      = 1
	precConditional = 2
	precUnary       = 13
	precPostfix     = 14
	precPrimary     = 15
)

// Render returns a single-line rendering of the subtree at id.
// It is a debug aid for logs, reports and tests, not a source printer.
func Render(v View, id NodeID) string {
	var sb strings.Builder
	r := renderer{v: v, sb: &sb}
	if v.Kind(id).IsExpression() {
		r.expr(id, 0)
	} else {
		r.stmt(id)
	}
	return sb.String()
}

type renderer struct {
	v  View
	sb *strings.Builder
}

func (r renderer) stmt(id NodeID) {
	n := r.v.Node(id)
	if n == nil {
		r.sb.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case Block:
		if len(n.Kids) == 0 {
			r.sb.WriteString("{}")
			return
		}
		r.sb.WriteString("{ ")
		for _, k := range n.Kids {
			r.stmt(k)
			r.sb.WriteByte(' ')
		}
		r.sb.WriteByte('}')
	case If:
		r.sb.WriteString("if (")
		r.expr(n.Kids[0], 0)
		r.sb.WriteString(") ")
		r.stmt(n.Kids[1])
		if len(n.Kids) > 2 {
			r.sb.WriteString(" else ")
			r.stmt(n.Kids[2])
		}
	case Return:
		r.sb.WriteString("return")
		if len(n.Kids) > 0 {
			r.sb.WriteByte(' ')
			r.expr(n.Kids[0], 0)
		}
		r.sb.WriteByte(';')
	case ExprStmt:
		r.expr(n.Kids[0], 0)
		r.sb.WriteByte(';')
	case VarDecl:
		r.sb.WriteString(n.Text)
		r.sb.WriteByte(' ')
		for i, f := range n.Kids {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			r.fragment(f)
		}
		r.sb.WriteByte(';')
	case Fragment:
		r.fragment(id)
	case Empty:
		r.sb.WriteByte(';')
	default:
		r.expr(id, 0)
	}
}

func (r renderer) fragment(id NodeID) {
	r.sb.WriteString(FragmentName(r.v, id))
	if init := FragmentInit(r.v, id); init != None {
		r.sb.WriteString(" = ")
		r.expr(init, precAssign)
	}
}

func precedence(v View, id NodeID) int {
	switch n := v.Node(id); n.Kind {
	case Assignment:
		return precAssign
	case Conditional:
		return precConditional
	case Infix:
		return n.Op.Precedence()
	case Prefix:
		return precUnary
	case Postfix:
		return precPostfix
	default:
		return precPrimary
	}
}

// expr renders id, parenthesizing it when it binds looser than min.
func (r renderer) expr(id NodeID, min int) {
	n := r.v.Node(id)
	if n == nil {
		r.sb.WriteString("<nil>")
		return
	}
	p := precedence(r.v, id)
	if p < min {
		r.sb.WriteByte('(')
		defer r.sb.WriteByte(')')
	}
	switch n.Kind {
	case Assignment:
		r.expr(n.Kids[0], precUnary)
		r.sb.WriteString(" " + n.Op.String() + " ")
		r.expr(n.Kids[1], precAssign)
	case Conditional:
		r.expr(n.Kids[0], precConditional+1)
		r.sb.WriteString(" ? ")
		r.expr(n.Kids[1], precAssign)
		r.sb.WriteString(" : ")
		r.expr(n.Kids[2], precConditional)
	case Infix:
		for i, k := range n.Kids {
			if i > 0 {
				r.sb.WriteString(" " + n.Op.String() + " ")
				r.expr(k, p+1)
				continue
			}
			r.expr(k, p)
		}
	case Prefix:
		r.sb.WriteString(n.Op.String())
		operand := Render(r.v, n.Kids[0])
		if precedence(r.v, n.Kids[0]) < precUnary {
			operand = "(" + operand + ")"
		} else if (n.Op == Neg || n.Op == Plus || n.Op == Inc || n.Op == Dec) &&
			(strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "+")) {
			r.sb.WriteByte(' ')
		}
		r.sb.WriteString(operand)
	case Postfix:
		r.expr(n.Kids[0], precPostfix)
		r.sb.WriteString(n.Op.String())
	case Paren:
		r.sb.WriteByte('(')
		r.expr(n.Kids[0], 0)
		r.sb.WriteByte(')')
	case Call:
		r.sb.WriteString(n.Text)
		r.sb.WriteByte('(')
		for i, k := range n.Kids {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			r.expr(k, precAssign)
		}
		r.sb.WriteByte(')')
	case StringLit:
		r.sb.WriteString(strconv.Quote(n.Text))
	case NullLit:
		r.sb.WriteString("null")
	default:
		r.sb.WriteString(n.Text)
	}
}
