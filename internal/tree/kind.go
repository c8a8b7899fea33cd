package tree

// Kind identifies the variant of a Node.
type Kind uint8

const (
	Invalid Kind = iota

	// statements
	Block
	If
	Return
	ExprStmt
	VarDecl
	Fragment
	Empty

	// expressions
	Assignment
	Conditional
	Prefix
	Postfix
	Infix
	Paren
	Call
	Name
	BoolLit
	NumberLit
	StringLit
	NullLit
)

var kindNames = [...]string{
	Invalid:     "invalid",
	Block:       "block",
	If:          "if",
	Return:      "return",
	ExprStmt:    "expr",
	VarDecl:     "decl",
	Fragment:    "fragment",
	Empty:       "empty",
	Assignment:  "assign",
	Conditional: "cond",
	Prefix:      "prefix",
	Postfix:     "postfix",
	Infix:       "infix",
	Paren:       "paren",
	Call:        "call",
	Name:        "name",
	BoolLit:     "bool",
	NumberLit:   "number",
	StringLit:   "string",
	NullLit:     "null",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// IsStatement reports whether nodes of this kind appear in statement position.
func (k Kind) IsStatement() bool {
	switch k {
	case Block, If, Return, ExprStmt, VarDecl, Empty:
		return true
	default:
		return false
	}
}

// IsExpression reports whether nodes of this kind appear in expression position.
func (k Kind) IsExpression() bool {
	return k >= Assignment && k <= NullLit
}

// IsLiteral reports whether k is one of the literal kinds.
func (k Kind) IsLiteral() bool {
	return k >= BoolLit && k <= NullLit
}
