package program

// NodeID indexes into a Program's arena. The zero value is never a valid id
// for anything but the (always-present) root.
type NodeID int32

const noParent NodeID = -1

// BreakText is the sentinel SourceStmt text the enumerator/completer may
// insert to close a loop body that ends short of a guard (§4.2's "implicit
// break"). It never corresponds to a real trace item.
const BreakText = "break;"

// Node is one node of the program DAG: either an open Unknown(nonterminal)
// hole, or a Value(prod, payload) node. Exactly one of the payload fields is
// meaningful, selected by Prod:
//   - ProdSourceStmt: Text holds the statement source text.
//   - ProdSourceGuard: Guard holds the guard spec.
//   - everything else: no payload, only children.
type Node struct {
	ID      NodeID
	IsHole  bool
	Nonterm Nonterminal // meaningful when IsHole
	Prod    Production  // meaningful when !IsHole
	Text    string      // leaf payload for ProdSourceStmt
	Guard   GuardSpec   // leaf payload for ProdSourceGuard
}

// Arity returns the number of children this node must have.
func (n *Node) Arity() int {
	if n.IsHole {
		return 0
	}
	return len(n.Prod.ChildNonterms())
}
