package program

import (
	"encoding/hex"

	"github.com/aledsdavies/tracesynth/internal/contract"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"
)

// canonNode is the canonical, position-independent encoding of one Node,
// used as the input to CBOR + a content digest — the "canonical printed
// form" the memoization cache of §5 and the per-slot dedup of §4.3 step 4
// key on. Unlike a pretty-printer (the formatter is external, per §1), this
// form only needs to be deterministic, not readable.
//
// Grounded on CanonicalNode/CanonicalPlan in core/planfmt/canonical.go.
type canonNode struct {
	Kind     string      `cbor:"k"`
	Text     string      `cbor:"t,omitempty"`
	Guards   []string    `cbor:"g,omitempty"`
	Negated  bool        `cbor:"n,omitempty"`
	Comp     Composition `cbor:"c,omitempty"`
	Hole     string      `cbor:"h,omitempty"`
	Children []canonNode `cbor:"ch,omitempty"`
}

func (p *Program) canonicalize(id NodeID) canonNode {
	n := p.nodes[id]
	contract.NotNil(n, "node")

	if n.IsHole {
		return canonNode{Kind: "hole", Hole: n.Nonterm.String()}
	}

	out := canonNode{Kind: n.Prod.String()}
	switch n.Prod {
	case ProdSourceStmt:
		out.Text = n.Text
	case ProdSourceGuard:
		out.Guards = n.Guard.Guards
		out.Negated = n.Guard.Negated
		out.Comp = n.Guard.Comp
	default:
		children := p.children[id]
		out.Children = make([]canonNode, len(children))
		for i, c := range children {
			out.Children[i] = p.canonicalize(c)
		}
	}
	return out
}

// CanonicalBytes returns a deterministic CBOR encoding of p, suitable as a
// cache key or equality test; it is not a C-source rendering.
func (p *Program) CanonicalBytes() []byte {
	root := p.canonicalize(p.root)
	b, err := cbor.Marshal(root)
	contract.ExpectNoError(err, "canonical CBOR encode of program")
	return b
}

// Digest returns a hex SHA3-256 content digest of p's canonical form, used
// to key the worker-owned memoization cache of §5 ("a per-worker
// memoization table keyed by a program's canonical printed form").
func (p *Program) Digest() string {
	sum := sha3.Sum256(p.CanonicalBytes())
	return hex.EncodeToString(sum[:])
}
