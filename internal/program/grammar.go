// Package program implements the fixed grammar and the Program DAG of §3:
// nonterminals P/S/Guard/Stmt, their productions, and a rooted tree of
// Value/Unknown nodes with a parent map and an open-holes set.
//
// The tree is stored as an arena: a flat, index-addressed node table plus
// parallel children/parent tables, per the Design Notes (§9) preference for
// "nodes in a flat vector; parent/children stored as indices" over
// pointer-linked graphs with shared id tables. Copies share the underlying
// Node values (immutable once built) and only duplicate the index tables,
// mirroring Program.copy() in original_source's program.py.
//
// Grounded on the sealed-interface node-variant style of
// core/planfmt/execution_tree.go and the tagged-union IR of
// runtime/planner/ir.go.
package program

// Nonterminal is one of the grammar's four nonterminals.
type Nonterminal uint8

const (
	NontermP Nonterminal = iota
	NontermS
	NontermGuard
	NontermStmt
)

func (n Nonterminal) String() string {
	switch n {
	case NontermP:
		return "P"
	case NontermS:
		return "S"
	case NontermGuard:
		return "Guard"
	case NontermStmt:
		return "Stmt"
	default:
		return "?"
	}
}

// Production identifies which grammar rule produced a Value node.
type Production uint8

const (
	// ProdSingle: P -> Single(S). One S child.
	ProdSingle Production = iota
	// ProdSeq: P -> Seq(S, P). Two children: S then P.
	ProdSeq
	// ProdIf: S -> If(Guard, P). Two children: Guard then body P.
	ProdIf
	// ProdITE: S -> ITE(Guard, P, P). Three children: Guard, then-P, else-P.
	ProdITE
	// ProdWhile: S -> While(Guard, P). Two children: Guard then body P.
	ProdWhile
	// ProdStmtWrap: S -> Stmt(Stmt). One Stmt child.
	ProdStmtWrap
	// ProdSourceGuard: Guard -> SourceGuard(spec). Leaf; payload is a GuardSpec.
	ProdSourceGuard
	// ProdSourceStmt: Stmt -> SourceStmt(text). Leaf; payload is source text.
	ProdSourceStmt
)

// LHS returns the nonterminal this production expands.
func (p Production) LHS() Nonterminal {
	switch p {
	case ProdSingle, ProdSeq:
		return NontermP
	case ProdIf, ProdITE, ProdWhile, ProdStmtWrap:
		return NontermS
	case ProdSourceGuard:
		return NontermGuard
	case ProdSourceStmt:
		return NontermStmt
	default:
		return NontermP
	}
}

// ChildNonterms returns the nonterminal of each RHS child slot, in order,
// for productions whose children are further grammar symbols (i.e.
// everything but the two leaf productions).
func (p Production) ChildNonterms() []Nonterminal {
	switch p {
	case ProdSingle:
		return []Nonterminal{NontermS}
	case ProdSeq:
		return []Nonterminal{NontermS, NontermP}
	case ProdIf:
		return []Nonterminal{NontermGuard, NontermP}
	case ProdITE:
		return []Nonterminal{NontermGuard, NontermP, NontermP}
	case ProdWhile:
		return []Nonterminal{NontermGuard, NontermP}
	case ProdStmtWrap:
		return []Nonterminal{NontermStmt}
	default:
		return nil
	}
}

func (p Production) String() string {
	switch p {
	case ProdSingle:
		return "Single"
	case ProdSeq:
		return "Seq"
	case ProdIf:
		return "If"
	case ProdITE:
		return "ITE"
	case ProdWhile:
		return "While"
	case ProdStmtWrap:
		return "Stmt"
	case ProdSourceGuard:
		return "SourceGuard"
	case ProdSourceStmt:
		return "SourceStmt"
	default:
		return "?"
	}
}

// Composition is the boolean composition of a multi-guard GuardSpec.
type Composition uint8

const (
	CompNone Composition = iota
	CompAnd
	CompOr
)

func (c Composition) String() string {
	switch c {
	case CompAnd:
		return "&&"
	case CompOr:
		return "||"
	default:
		return ""
	}
}

// GuardSpec is the payload of a SourceGuard leaf: one or two ordered guard
// texts, an optional negation, and (for two guards) the boolean composition.
type GuardSpec struct {
	Guards  []string
	Negated bool
	Comp    Composition
}

// Single reports whether this is a plain, single-guard spec.
func (g GuardSpec) Single() bool { return len(g.Guards) == 1 }
