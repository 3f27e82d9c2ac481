package enumerator

import (
	"strings"

	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// feasible implements §4.2 step 4: every remaining trace_map hole must still
// have a non-empty intersected guard-or-statement across its sub-traces, and
// (when required) the sketch must return on every path.
func feasible(sk *sketch.Sketch) bool {
	for _, subs := range sk.TraceMap {
		if len(intersectedAnyTexts(subs)) == 0 {
			return false
		}
	}
	if sk.HasReturnValue && !returnOnAllPaths(sk, sk.Prog.Root(), true) {
		return false
	}
	return true
}

func intersectedAnyTexts(subs []trace.Subtrace) []string {
	if len(subs) == 0 {
		return nil
	}
	var order []string
	seen := map[string]bool{}
	for _, it := range subs[0] {
		if !seen[it.Source.Text] {
			seen[it.Source.Text] = true
			order = append(order, it.Source.Text)
		}
	}
	for _, sub := range subs[1:] {
		present := map[string]bool{}
		for _, it := range sub {
			present[it.Source.Text] = true
		}
		var kept []string
		for _, t := range order {
			if present[t] {
				kept = append(kept, t)
			}
		}
		order = kept
	}
	return order
}

// returnOnAllPaths implements §4.2's recursive return-on-all-paths check.
// strict governs the ITE-vs-If asymmetry: both ITE branches must be strict,
// an If's/While's body need not be (the path may simply not enter it).
func returnOnAllPaths(sk *sketch.Sketch, id program.NodeID, strict bool) bool {
	p := sk.Prog
	if p.IsHole(id) {
		return holeReturnsOnAllPaths(sk, id)
	}
	n := p.Node(id)
	children := p.Children(id)
	switch n.Prod {
	case program.ProdSingle:
		return returnOnAllPaths(sk, children[0], strict)
	case program.ProdSeq:
		return returnOnAllPaths(sk, children[0], strict) || returnOnAllPaths(sk, children[1], strict)
	case program.ProdStmtWrap:
		return returnOnAllPaths(sk, children[0], strict)
	case program.ProdITE:
		return returnOnAllPaths(sk, children[1], true) && returnOnAllPaths(sk, children[2], true)
	case program.ProdIf:
		return returnOnAllPaths(sk, children[1], false)
	case program.ProdWhile:
		return returnOnAllPaths(sk, children[1], false)
	case program.ProdSourceStmt:
		return isReturnText(n.Text)
	default:
		return false
	}
}

func holeReturnsOnAllPaths(sk *sketch.Sketch, id program.NodeID) bool {
	if subs, ok := sk.StmtMap[id]; ok {
		if len(subs) == 0 {
			return false
		}
		for _, s := range subs {
			if !endsWithReturn(s) {
				return false
			}
		}
		return true
	}
	if subs, ok := sk.TraceMap[id]; ok {
		for _, s := range subs {
			if containsReturn(s) {
				return true
			}
		}
	}
	return false
}

func isReturnText(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "return")
}

func endsWithReturn(s trace.Subtrace) bool {
	if len(s) == 0 {
		return false
	}
	last := s[len(s)-1]
	return last.Source.Kind == trace.Statement && isReturnText(last.Source.Text)
}

func containsReturn(s trace.Subtrace) bool {
	for _, it := range s {
		if it.Source.Kind == trace.Statement && isReturnText(it.Source.Text) {
			return true
		}
	}
	return false
}
