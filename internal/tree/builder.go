package tree

// Builder appends nodes to a tree arena. The zero value is not usable;
// create one with NewBuilder or obtain one through an Editor.
type Builder struct {
	t  *Tree
	ix *Index // maintained when building through an Editor
}

func NewBuilder() *Builder {
	return &Builder{t: New()}
}

// Tree returns the tree under construction.
func (b *Builder) Tree() *Tree { return b.t }

// Build sets root as the tree root and returns the tree.
func (b *Builder) Build(root NodeID) *Tree {
	b.t.SetRoot(root)
	return b.t
}

// Add appends a raw node. Kids are copied.
func (b *Builder) Add(k Kind, op Op, text string, kids ...NodeID) NodeID {
	var cp []NodeID
	if len(kids) > 0 {
		cp = make([]NodeID, len(kids))
		copy(cp, kids)
	}
	id := b.t.add(Node{Kind: k, Op: op, Text: text, Kids: cp})
	if b.ix != nil {
		for i, kid := range cp {
			b.ix.set(kid, id, i)
		}
	}
	return id
}

// At records the document position of id and returns id.
func (b *Builder) At(id NodeID, p Pos) NodeID {
	if n := b.t.Node(id); n != nil {
		n.Pos = p
	}
	return id
}

func (b *Builder) Block(stmts ...NodeID) NodeID { return b.Add(Block, NoOp, "", stmts...) }

// If builds an if statement; els may be None.
func (b *Builder) If(cond, then, els NodeID) NodeID {
	if els == None {
		return b.Add(If, NoOp, "", cond, then)
	}
	return b.Add(If, NoOp, "", cond, then, els)
}

// Return builds a return statement; value may be None.
func (b *Builder) Return(value NodeID) NodeID {
	if value == None {
		return b.Add(Return, NoOp, "")
	}
	return b.Add(Return, NoOp, "", value)
}

func (b *Builder) Expr(e NodeID) NodeID { return b.Add(ExprStmt, NoOp, "", e) }

func (b *Builder) Decl(typ string, frags ...NodeID) NodeID {
	return b.Add(VarDecl, NoOp, typ, frags...)
}

// Frag builds a declaration fragment; init may be None.
func (b *Builder) Frag(name string, init NodeID) NodeID {
	n := b.Name(name)
	if init == None {
		return b.Add(Fragment, NoOp, "", n)
	}
	return b.Add(Fragment, NoOp, "", n, init)
}

func (b *Builder) Empty() NodeID { return b.Add(Empty, NoOp, "") }

func (b *Builder) Assign(op Op, target, value NodeID) NodeID {
	return b.Add(Assignment, op, "", target, value)
}

func (b *Builder) Cond(c, then, els NodeID) NodeID {
	return b.Add(Conditional, NoOp, "", c, then, els)
}

func (b *Builder) Prefix(op Op, x NodeID) NodeID { return b.Add(Prefix, op, "", x) }

func (b *Builder) Postfix(op Op, x NodeID) NodeID { return b.Add(Postfix, op, "", x) }

func (b *Builder) Not(x NodeID) NodeID { return b.Prefix(Not, x) }

// Infix builds an n-ary infix expression. With a single operand the
// operand itself is returned.
func (b *Builder) Infix(op Op, operands ...NodeID) NodeID {
	if len(operands) == 1 {
		return operands[0]
	}
	return b.Add(Infix, op, "", operands...)
}

func (b *Builder) Paren(x NodeID) NodeID { return b.Add(Paren, NoOp, "", x) }

func (b *Builder) Call(fn string, args ...NodeID) NodeID { return b.Add(Call, NoOp, fn, args...) }

func (b *Builder) Name(s string) NodeID { return b.Add(Name, NoOp, s) }

func (b *Builder) Bool(v bool) NodeID {
	if v {
		return b.Add(BoolLit, NoOp, "true")
	}
	return b.Add(BoolLit, NoOp, "false")
}

func (b *Builder) Num(s string) NodeID { return b.Add(NumberLit, NoOp, s) }

func (b *Builder) Str(s string) NodeID { return b.Add(StringLit, NoOp, s) }

func (b *Builder) Null() NodeID { return b.Add(NullLit, NoOp, "null") }
