package tree

import (
	set "github.com/hashicorp/go-set/v3"
)

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(v View, id NodeID, fn func(NodeID) bool) {
	if id == None || v.Node(id) == nil {
		return
	}
	if !fn(id) {
		return
	}
	for _, k := range v.Kids(id) {
		Walk(v, k, fn)
	}
}

// Core strips any number of enclosing parentheses.
func Core(v View, id NodeID) NodeID {
	for v.Kind(id) == Paren {
		id = Kid(v, id, 0)
	}
	return id
}

// Equal reports whether a and b are structurally the same, ignoring
// redundant parentheses.
func Equal(v View, a, b NodeID) bool {
	a, b = Core(v, a), Core(v, b)
	if a == b {
		return true
	}
	na, nb := v.Node(a), v.Node(b)
	if na == nil || nb == nil {
		return false
	}
	if na.Kind != nb.Kind || na.Op != nb.Op || na.Text != nb.Text || len(na.Kids) != len(nb.Kids) {
		return false
	}
	for i := range na.Kids {
		if !Equal(v, na.Kids[i], nb.Kids[i]) {
			return false
		}
	}
	return true
}

// Statements flattens nested blocks and drops empty statements.
func Statements(v View, id NodeID) []NodeID {
	var out []NodeID
	var visit func(NodeID)
	visit = func(id NodeID) {
		switch v.Kind(id) {
		case Invalid, Empty:
		case Block:
			for _, k := range v.Kids(id) {
				visit(k)
			}
		default:
			out = append(out, id)
		}
	}
	visit(id)
	return out
}

// Single returns the only real statement of id, or None.
func Single(v View, id NodeID) NodeID {
	if s := Statements(v, id); len(s) == 1 {
		return s[0]
	}
	return None
}

// Occurrences counts identifier uses of name inside exprs.
func Occurrences(v View, name string, exprs ...NodeID) int {
	n := 0
	for _, e := range exprs {
		Walk(v, e, func(id NodeID) bool {
			if nd := v.Node(id); nd.Kind == Name && nd.Text == name {
				n++
			}
			return true
		})
	}
	return n
}

// Names collects every identifier used inside exprs.
func Names(v View, exprs ...NodeID) *set.Set[string] {
	s := set.New[string](8)
	for _, e := range exprs {
		Walk(v, e, func(id NodeID) bool {
			if nd := v.Node(id); nd.Kind == Name {
				s.Insert(nd.Text)
			}
			return true
		})
	}
	return s
}

// IsIncDec reports whether id is an increment or decrement.
func IsIncDec(v View, id NodeID) bool {
	switch v.Kind(id) {
	case Prefix, Postfix:
		op := OpOf(v, id)
		return op == Inc || op == Dec
	}
	return false
}

// HasIncDec reports whether any increment or decrement occurs in exprs.
func HasIncDec(v View, exprs ...NodeID) bool {
	found := false
	for _, e := range exprs {
		Walk(v, e, func(id NodeID) bool {
			if IsIncDec(v, id) {
				found = true
			}
			return !found
		})
	}
	return found
}

// Pure reports whether evaluating id can neither write state nor call out:
// no calls, assignments, increments or decrements.
func Pure(v View, exprs ...NodeID) bool {
	pure := true
	for _, e := range exprs {
		Walk(v, e, func(id NodeID) bool {
			switch v.Kind(id) {
			case Call, Assignment:
				pure = false
			default:
				if IsIncDec(v, id) {
					pure = false
				}
			}
			return pure
		})
	}
	return pure
}

// Size counts the nodes reachable from the root.
func Size(v View) int {
	n := 0
	Walk(v, v.Root(), func(NodeID) bool {
		n++
		return true
	})
	return n
}

// IsBool reports whether id (parentheses stripped) is the boolean literal val.
func IsBool(v View, id NodeID, val bool) bool {
	id = Core(v, id)
	if v.Kind(id) != BoolLit {
		return false
	}
	return (Text(v, id) == "true") == val
}

// SimpleName returns the identifier of id when it is a plain name.
func SimpleName(v View, id NodeID) (string, bool) {
	id = Core(v, id)
	if v.Kind(id) != Name {
		return "", false
	}
	return Text(v, id), true
}

// FragmentName returns the declared identifier of a fragment.
func FragmentName(v View, frag NodeID) string {
	return Text(v, Kid(v, frag, 0))
}

// FragmentInit returns the initializer of a fragment, or None.
func FragmentInit(v View, frag NodeID) NodeID {
	return Kid(v, frag, 1)
}
