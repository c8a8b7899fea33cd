package tree

// Index is the parent map of a tree. It is computed from the root and
// must be rebuilt (or maintained by an Editor) after mutations.
type Index struct {
	root   NodeID
	parent []NodeID
	slot   []int32
}

// NewIndex walks every node reachable from the root of v.
func NewIndex(v View) *Index {
	ix := &Index{
		root:   v.Root(),
		parent: make([]NodeID, v.Len()+1),
		slot:   make([]int32, v.Len()+1),
	}
	for i := range ix.slot {
		ix.slot[i] = -1
	}
	if ix.root == None {
		return ix
	}
	stack := []NodeID{ix.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, k := range v.Kids(id) {
			ix.set(k, id, i)
			stack = append(stack, k)
		}
	}
	return ix
}

func (ix *Index) grow(id NodeID) {
	for int(id) >= len(ix.parent) {
		ix.parent = append(ix.parent, None)
		ix.slot = append(ix.slot, -1)
	}
}

func (ix *Index) set(id, parent NodeID, slot int) {
	if id == None {
		return
	}
	ix.grow(id)
	ix.parent[id] = parent
	ix.slot[id] = int32(slot)
}

func (ix *Index) clear(id NodeID) {
	if id <= None || int(id) >= len(ix.parent) {
		return
	}
	ix.parent[id] = None
	ix.slot[id] = -1
}

// Root is the root the index was computed for.
func (ix *Index) Root() NodeID { return ix.root }

// Parent returns the parent of id and the position of id among its kids.
// ok is false for the root and for detached nodes.
func (ix *Index) Parent(id NodeID) (parent NodeID, slot int, ok bool) {
	if id <= None || int(id) >= len(ix.parent) || ix.slot[id] < 0 {
		return None, -1, false
	}
	return ix.parent[id], int(ix.slot[id]), true
}

// Attached reports whether id is reachable from the root.
func (ix *Index) Attached(id NodeID) bool {
	for id != None {
		if id == ix.root {
			return true
		}
		p, _, ok := ix.Parent(id)
		if !ok {
			return false
		}
		id = p
	}
	return false
}

// Ancestors returns the (parent, slot) chain from the root down to id.
// The last element locates id itself.
func (ix *Index) Ancestors(id NodeID) (parents []NodeID, slots []int) {
	for id != ix.root {
		p, s, ok := ix.Parent(id)
		if !ok {
			break
		}
		parents = append(parents, p)
		slots = append(slots, s)
		id = p
	}
	for i, j := 0, len(parents)-1; i < j; i, j = i+1, j-1 {
		parents[i], parents[j] = parents[j], parents[i]
		slots[i], slots[j] = slots[j], slots[i]
	}
	return parents, slots
}
