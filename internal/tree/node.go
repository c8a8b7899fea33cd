package tree

// NodeID addresses a node inside a Tree arena.
type NodeID int32

// None is the absent node. Slot 0 of every arena is reserved for it.
const None NodeID = 0

// Pos is the location of a node in the document it was read from.
// The zero value means unknown.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) IsValid() bool { return p.Line > 0 }

// Node is a single arena entry.
//
// Kids layout by kind:
//
//	Block        statements...
//	If           cond, then [, else]
//	Return       [value]
//	ExprStmt     expr
//	VarDecl      fragments...        (Text holds the declared type)
//	Fragment     name [, init]
//	Assignment   target, value       (Op holds the assignment operator)
//	Conditional  cond, then, else
//	Prefix       operand
//	Postfix      operand
//	Infix        operands...         (at least two, same Op between each)
//	Paren        expr
//	Call         args...             (Text holds the callee)
//	Name, literals                   (Text holds the spelling)
type Node struct {
	Kind Kind
	Op   Op
	Text string
	Kids []NodeID
	Pos  Pos
}

// View is read-only access to a tree.
type View interface {
	Root() NodeID
	Node(id NodeID) *Node
	Kind(id NodeID) Kind
	Kids(id NodeID) []NodeID
	Len() int
}

// Tree is an arena of nodes with a designated root.
type Tree struct {
	nodes []Node
	root  NodeID
}

// New returns an empty tree with the reserved None slot.
func New() *Tree {
	return &Tree{nodes: make([]Node, 1, 64)}
}

func (t *Tree) Root() NodeID { return t.root }

// SetRoot designates the root node. Only builders and decoders call it.
func (t *Tree) SetRoot(id NodeID) { t.root = id }

// Node returns the node stored at id, or nil when id is out of range or None.
// The returned pointer must be treated as read-only outside of an Editor.
func (t *Tree) Node(id NodeID) *Node {
	if id <= None || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return Invalid
}

func (t *Tree) Kids(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Kids
	}
	return nil
}

// Len is the arena size, garbage included.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

func (t *Tree) add(n Node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Kid returns the i-th child of id, or None.
func Kid(v View, id NodeID, i int) NodeID {
	kids := v.Kids(id)
	if i < 0 || i >= len(kids) {
		return None
	}
	return kids[i]
}

// Text returns the text of id, or "" when absent.
func Text(v View, id NodeID) string {
	if n := v.Node(id); n != nil {
		return n.Text
	}
	return ""
}

// OpOf returns the operator of id, or NoOp.
func OpOf(v View, id NodeID) Op {
	if n := v.Node(id); n != nil {
		return n.Op
	}
	return NoOp
}

// PosOf returns the document position of id.
func PosOf(v View, id NodeID) Pos {
	if n := v.Node(id); n != nil {
		return n.Pos
	}
	return Pos{}
}

// Clone returns an independent copy of the tree. Kid slices are shared;
// editors never modify them in place.
func (t *Tree) Clone() *Tree {
	nodes := make([]Node, len(t.nodes), cap(t.nodes))
	copy(nodes, t.nodes)
	return &Tree{nodes: nodes, root: t.root}
}
