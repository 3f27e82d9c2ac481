package program

import "github.com/aledsdavies/tracesynth/internal/contract"

// Program is a rooted tree of Nodes: the arena described at package level.
// nodes[id] is nil for ids that have been deleted or never allocated. Every
// live Unknown id also appears in holes; every live non-Unknown id does not
// (§3 invariant).
type Program struct {
	nodes    []*Node
	children [][]NodeID
	parent   []NodeID
	holes    map[NodeID]struct{}
	root     NodeID
}

// New creates a program whose sole node is an open Unknown(start) hole.
func New(start Nonterminal) *Program {
	p := &Program{holes: make(map[NodeID]struct{})}
	root := p.alloc(&Node{IsHole: true, Nonterm: start}, noParent)
	p.root = root
	p.holes[root] = struct{}{}
	return p
}

func (p *Program) alloc(n *Node, parent NodeID) NodeID {
	id := NodeID(len(p.nodes))
	n.ID = id
	p.nodes = append(p.nodes, n)
	p.children = append(p.children, nil)
	p.parent = append(p.parent, parent)
	if parent != noParent {
		p.children[parent] = append(p.children[parent], id)
	}
	return id
}

// Root returns the id of the program's root node.
func (p *Program) Root() NodeID { return p.root }

// Node returns the node at id. Panics if id has been deleted.
func (p *Program) Node(id NodeID) *Node {
	n := p.nodes[id]
	contract.NotNil(n, "node")
	return n
}

// Children returns the child ids of id, in production order.
func (p *Program) Children(id NodeID) []NodeID { return p.children[id] }

// ParentOf returns the parent of id and whether it has one (false for root).
func (p *Program) ParentOf(id NodeID) (NodeID, bool) {
	par := p.parent[id]
	return par, par != noParent
}

// IsHole reports whether id is currently an open Unknown.
func (p *Program) IsHole(id NodeID) bool {
	_, ok := p.holes[id]
	return ok
}

// Holes returns the current set of open Unknown ids, in arena order
// (deterministic, but not meaningful as a tree order — use LeftmostHole for
// that).
func (p *Program) Holes() []NodeID {
	out := make([]NodeID, 0, len(p.holes))
	for id := range p.holes {
		if p.nodes[id] != nil {
			out = append(out, id)
		}
	}
	sortNodeIDs(out)
	return out
}

// Complete reports whether the program has no open holes (§3).
func (p *Program) Complete() bool { return len(p.holes) == 0 }

// LeftmostHole returns the first Unknown encountered in a pre-order walk
// from the root, matching Program.leftmost_unknown in original_source.
func (p *Program) LeftmostHole() (NodeID, bool) {
	return p.leftmostHoleFrom(p.root)
}

func (p *Program) leftmostHoleFrom(id NodeID) (NodeID, bool) {
	if p.nodes[id] == nil {
		return 0, false
	}
	if p.IsHole(id) {
		return id, true
	}
	for _, c := range p.children[id] {
		if found, ok := p.leftmostHoleFrom(c); ok {
			return found, ok
		}
	}
	return 0, false
}

// NodeCount returns the number of live nodes, used against the prog_size
// bound of §4.2.
func (p *Program) NodeCount() int {
	n := 0
	for _, node := range p.nodes {
		if node != nil {
			n++
		}
	}
	return n
}

// Expand replaces the hole at id with a Value node for prod, allocating a
// fresh Unknown child for each of prod's RHS nonterminal slots (§3: "children
// arity matches the production's RHS"). prod must not be a leaf production;
// use ExpandGuard/ExpandStmt for those.
func (p *Program) Expand(id NodeID, prod Production) []NodeID {
	contract.Precondition(p.IsHole(id), "node %d must be a hole to expand", id)
	contract.Precondition(prod != ProdSourceGuard && prod != ProdSourceStmt,
		"Expand cannot be used for leaf production %s", prod)
	contract.Precondition(prod.LHS() == p.nodes[id].Nonterm,
		"production %s does not match hole nonterminal %s", prod, p.nodes[id].Nonterm)

	delete(p.holes, id)
	p.nodes[id] = &Node{ID: id, IsHole: false, Prod: prod}

	childNonterms := prod.ChildNonterms()
	children := make([]NodeID, len(childNonterms))
	for i, nt := range childNonterms {
		cid := p.alloc(&Node{IsHole: true, Nonterm: nt}, id)
		p.holes[cid] = struct{}{}
		children[i] = cid
	}
	return children
}

// ExpandGuard replaces the hole at id (which must be a Guard hole) with a
// concrete SourceGuard leaf.
func (p *Program) ExpandGuard(id NodeID, spec GuardSpec) {
	contract.Precondition(p.IsHole(id), "node %d must be a hole to expand", id)
	contract.Precondition(p.nodes[id].Nonterm == NontermGuard, "node %d is not a Guard hole", id)
	delete(p.holes, id)
	p.nodes[id] = &Node{ID: id, IsHole: false, Prod: ProdSourceGuard, Guard: spec}
}

// ExpandStmt replaces the hole at id (which must be a Stmt hole) with a
// concrete SourceStmt leaf.
func (p *Program) ExpandStmt(id NodeID, text string) {
	contract.Precondition(p.IsHole(id), "node %d must be a hole to expand", id)
	contract.Precondition(p.nodes[id].Nonterm == NontermStmt, "node %d is not a Stmt hole", id)
	delete(p.holes, id)
	p.nodes[id] = &Node{ID: id, IsHole: false, Prod: ProdSourceStmt, Text: text}
}

// Replace substitutes the subtree at old (which must not be the root) with
// the subtree rooted at replacement, taken from another program — used when
// stitching a synthesized slot program back into its sketch.
func (p *Program) Replace(old NodeID, replacement *Program) {
	parentID, hasParent := p.ParentOf(old)
	contract.Precondition(hasParent, "cannot replace the root node in place")

	newRoot := p.appendArena(replacement, noParent)
	p.parent[newRoot] = parentID

	siblings := p.children[parentID]
	for i, c := range siblings {
		if c == old {
			siblings[i] = newRoot
			break
		}
	}
	p.children[parentID] = siblings
	p.deleteSubtree(old)
}

// appendArena copies every live node of src into p, reparenting src's root
// under parent, and returns the new id of src's root.
func (p *Program) appendArena(src *Program, parent NodeID) NodeID {
	remap := make(map[NodeID]NodeID, len(src.nodes))
	var visit func(id NodeID, newParent NodeID) NodeID
	visit = func(id NodeID, newParent NodeID) NodeID {
		n := src.nodes[id]
		nCopy := *n
		newID := p.alloc(&nCopy, newParent)
		remap[id] = newID
		if _, isHole := src.holes[id]; isHole {
			p.holes[newID] = struct{}{}
		}
		for _, c := range src.children[id] {
			visit(c, newID)
		}
		return newID
	}
	return visit(src.root, parent)
}

func (p *Program) deleteSubtree(id NodeID) {
	if p.nodes[id] == nil {
		return
	}
	for _, c := range p.children[id] {
		p.deleteSubtree(c)
	}
	delete(p.holes, id)
	p.nodes[id] = nil
	p.children[id] = nil
}

// Copy returns a structurally independent copy of p: the Node values are
// shared (they are never mutated after creation), but the index tables
// (children/parent/holes) are duplicated so the copy can be expanded
// without affecting p. Mirrors Program.copy() in original_source.
func (p *Program) Copy() *Program {
	out := &Program{
		nodes:    make([]*Node, len(p.nodes)),
		children: make([][]NodeID, len(p.children)),
		parent:   make([]NodeID, len(p.parent)),
		holes:    make(map[NodeID]struct{}, len(p.holes)),
		root:     p.root,
	}
	copy(out.nodes, p.nodes)
	copy(out.parent, p.parent)
	for i, cs := range p.children {
		if cs != nil {
			out.children[i] = append([]NodeID(nil), cs...)
		}
	}
	for id := range p.holes {
		out.holes[id] = struct{}{}
	}
	return out
}

// Subprogram extracts the subtree rooted at id as a standalone Program.
func (p *Program) Subprogram(id NodeID) *Program {
	out := &Program{holes: make(map[NodeID]struct{})}
	newRoot := out.appendArena(&Program{
		nodes: p.nodes, children: p.children, parent: relabelParent(p, id), holes: p.holes, root: id,
	}, noParent)
	out.root = newRoot
	return out
}

// relabelParent returns a parent table identical to p's but with id's parent
// cleared, so appendArena treats id as a root when extracting a subprogram.
func relabelParent(p *Program, id NodeID) []NodeID {
	out := append([]NodeID(nil), p.parent...)
	out[id] = noParent
	return out
}

func sortNodeIDs(ids []NodeID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
