package program

import (
	"fmt"
	"strings"
)

// Render returns a human-readable, indented C-like rendering of p, for
// reporting and inspection — the recovered source text is produced
// externally by the formatter of §1, so this is a debugging aid, not a
// formatter.
//
// Grounded on the recursive execution-node-to-text walk of
// core/planfmt/formatter/text.go, adapted from
// that file's shell-construct switch to this grammar's If/ITE/While/Seq
// productions.
func (p *Program) Render() string {
	var b strings.Builder
	p.render(&b, p.root, 0)
	return b.String()
}

func (p *Program) render(b *strings.Builder, id NodeID, depth int) {
	n := p.nodes[id]
	indent := strings.Repeat("  ", depth)

	if n.IsHole {
		fmt.Fprintf(b, "%s<%s>\n", indent, n.Nonterm)
		return
	}

	children := p.children[id]
	switch n.Prod {
	case ProdSingle:
		p.render(b, children[0], depth)
	case ProdSeq:
		p.render(b, children[0], depth)
		p.render(b, children[1], depth)
	case ProdStmtWrap:
		p.render(b, children[0], depth)
	case ProdSourceStmt:
		fmt.Fprintf(b, "%s%s\n", indent, n.Text)
	case ProdIf:
		fmt.Fprintf(b, "%sif (%s) {\n", indent, renderGuard(p.nodes[children[0]].Guard))
		p.render(b, children[1], depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
	case ProdITE:
		fmt.Fprintf(b, "%sif (%s) {\n", indent, renderGuard(p.nodes[children[0]].Guard))
		p.render(b, children[1], depth+1)
		fmt.Fprintf(b, "%s} else {\n", indent)
		p.render(b, children[2], depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
	case ProdWhile:
		fmt.Fprintf(b, "%swhile (%s) {\n", indent, renderGuard(p.nodes[children[0]].Guard))
		p.render(b, children[1], depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
	default:
		fmt.Fprintf(b, "%s<?%s>\n", indent, n.Prod)
	}
}

func renderGuard(g GuardSpec) string {
	if g.Single() {
		text := g.Guards[0]
		if g.Negated {
			return "!(" + text + ")"
		}
		return text
	}
	op := " " + g.Comp.String() + " "
	joined := strings.Join(g.Guards, op)
	if g.Negated {
		return "!(" + joined + ")"
	}
	return joined
}
