package tree

// Op is the operator carried by assignment, prefix, postfix and infix nodes.
type Op uint8

const (
	NoOp Op = iota

	// assignment operators
	Assign
	AddAssign
	SubAssign
	MulAssign
	QuoAssign
	AndAssign
	OrAssign
	XorAssign
	RemAssign
	ShlAssign
	ShrAssign
	UShrAssign

	// infix operators
	LOr
	LAnd
	Or
	Xor
	And
	Eql
	Neq
	Lss
	Gtr
	Leq
	Geq
	Shl
	Shr
	UShr
	Add
	Sub
	Mul
	Quo
	Rem

	// prefix and postfix operators
	Not
	Neg
	Plus
	Complement
	Inc
	Dec
)

var opNames = [...]string{
	NoOp:       "",
	Assign:     "=",
	AddAssign:  "+=",
	SubAssign:  "-=",
	MulAssign:  "*=",
	QuoAssign:  "/=",
	AndAssign:  "&=",
	OrAssign:   "|=",
	XorAssign:  "^=",
	RemAssign:  "%=",
	ShlAssign:  "<<=",
	ShrAssign:  ">>=",
	UShrAssign: ">>>=",
	LOr:        "||",
	LAnd:       "&&",
	Or:         "|",
	Xor:        "^",
	And:        "&",
	Eql:        "==",
	Neq:        "!=",
	Lss:        "<",
	Gtr:        ">",
	Leq:        "<=",
	Geq:        ">=",
	Shl:        "<<",
	Shr:        ">>",
	UShr:       ">>>",
	Add:        "+",
	Sub:        "-",
	Mul:        "*",
	Quo:        "/",
	Rem:        "%",
	Not:        "!",
	Neg:        "-",
	Plus:       "+",
	Complement: "~",
	Inc:        "++",
	Dec:        "--",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "?"
}

// ParseOp resolves the textual operator s for a node of kind k.
// The kind disambiguates "-" and "+" between their infix and prefix forms.
func ParseOp(k Kind, s string) (Op, bool) {
	var lo, hi Op
	switch k {
	case Assignment:
		lo, hi = Assign, UShrAssign
	case Infix:
		lo, hi = LOr, Rem
	case Prefix:
		lo, hi = Not, Dec
	case Postfix:
		lo, hi = Inc, Dec
	default:
		return NoOp, false
	}
	for o := lo; o <= hi; o++ {
		if opNames[o] == s {
			return o, true
		}
	}
	return NoOp, false
}

// IsCompound reports whether o is an assignment operator other than "=".
func (o Op) IsCompound() bool {
	return o > Assign && o <= UShrAssign
}

// Infix returns the binary operator applied by a compound assignment,
// or NoOp when o is not compound.
func (o Op) Infix() Op {
	switch o {
	case AddAssign:
		return Add
	case SubAssign:
		return Sub
	case MulAssign:
		return Mul
	case QuoAssign:
		return Quo
	case AndAssign:
		return And
	case OrAssign:
		return Or
	case XorAssign:
		return Xor
	case RemAssign:
		return Rem
	case ShlAssign:
		return Shl
	case ShrAssign:
		return Shr
	case UShrAssign:
		return UShr
	default:
		return NoOp
	}
}

// IsLogical reports whether o is a short-circuit boolean connective.
func (o Op) IsLogical() bool {
	return o == LOr || o == LAnd
}

// IsRelational reports whether o is an equality or ordering comparison.
func (o Op) IsRelational() bool {
	return o >= Eql && o <= Geq
}

// Flip swaps "&&" and "||" (De Morgan). Other operators are returned unchanged.
func (o Op) Flip() Op {
	switch o {
	case LAnd:
		return LOr
	case LOr:
		return LAnd
	default:
		return o
	}
}

// Negated returns the relational operator computing the negation of o.
func (o Op) Negated() Op {
	switch o {
	case Eql:
		return Neq
	case Neq:
		return Eql
	case Lss:
		return Geq
	case Geq:
		return Lss
	case Gtr:
		return Leq
	case Leq:
		return Gtr
	default:
		return NoOp
	}
}

// Precedence of an infix operator; higher binds tighter.
func (o Op) Precedence() int {
	switch o {
	case LOr:
		return 3
	case LAnd:
		return 4
	case Or:
		return 5
	case Xor:
		return 6
	case And:
		return 7
	case Eql, Neq:
		return 8
	case Lss, Gtr, Leq, Geq:
		return 9
	case Shl, Shr, UShr:
		return 10
	case Add, Sub:
		return 11
	case Mul, Quo, Rem:
		return 12
	default:
		return 0
	}
}
