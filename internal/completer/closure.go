package completer

import (
	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// MinVars computes the initial must-have set M of §4.3 step 1: the union of
// every guard's referenced variables (walking the sketch's fixed structure)
// plus, when the sketch requires a return value, the variables read by the
// traces' return statements (retVars).
func MinVars(sk *sketch.Sketch, facts interpreter.VarFacts, retVars []string) map[string]struct{} {
	m := map[string]struct{}{}
	for _, g := range guardTexts(sk.Prog, sk.Prog.Root()) {
		for v := range facts.Used(g) {
			m[v] = struct{}{}
		}
	}
	if sk.HasReturnValue {
		for _, v := range retVars {
			if v != "" {
				m[v] = struct{}{}
			}
		}
	}
	return m
}

// guardTexts walks the fixed (non-hole) structure of p from id, collecting
// every SourceGuard leaf's guard texts.
func guardTexts(p *program.Program, id program.NodeID) []string {
	if p.IsHole(id) {
		return nil
	}
	n := p.Node(id)
	if n.Prod == program.ProdSourceGuard {
		return append([]string(nil), n.Guard.Guards...)
	}
	var out []string
	for _, c := range p.Children(id) {
		out = append(out, guardTexts(p, c)...)
	}
	return out
}

// slotStatementTexts collects every distinct statement text appearing in any
// sub-trace still owed to an open slot (trace_map or stmt_map): the
// candidate set of "statements reachable from any slot" for the dependency
// closure fixed point.
func slotStatementTexts(sk *sketch.Sketch) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(subs []trace.Subtrace) {
		for _, sub := range subs {
			for _, it := range sub.Statements() {
				if it.Source.Text == program.BreakText {
					continue
				}
				if _, ok := seen[it.Source.Text]; !ok {
					seen[it.Source.Text] = struct{}{}
					out = append(out, it.Source.Text)
				}
			}
		}
	}
	for _, subs := range sk.TraceMap {
		add(subs)
	}
	for _, subs := range sk.StmtMap {
		add(subs)
	}
	return out
}

// DependencyClosure extends initial to its fixed point over the candidate
// statement texts (§4.3 step 1): a statement joins the closure, contributing
// used(s) ∪ declared(s), once it touches any variable already in the
// working set. Stops after maxDepth rounds even if not yet stable.
func DependencyClosure(initial map[string]struct{}, texts []string, facts interpreter.VarFacts, maxDepth int) map[string]struct{} {
	working := make(map[string]struct{}, len(initial))
	for v := range initial {
		working[v] = struct{}{}
	}
	for depth := 0; depth < maxDepth; depth++ {
		grew := false
		for _, s := range texts {
			used := facts.Used(s)
			decl := facts.Declared(s)
			if !touches(working, used) && !touches(working, decl) {
				continue
			}
			for v := range used {
				if _, ok := working[v]; !ok {
					working[v] = struct{}{}
					grew = true
				}
			}
			for v := range decl {
				if _, ok := working[v]; !ok {
					working[v] = struct{}{}
					grew = true
				}
			}
		}
		if !grew {
			break
		}
	}
	out := make(map[string]struct{}, len(working)-len(initial))
	for v := range working {
		if _, ok := initial[v]; !ok {
			out[v] = struct{}{}
		}
	}
	return out
}

func touches(working, vars map[string]struct{}) bool {
	for v := range vars {
		if _, ok := working[v]; ok {
			return true
		}
	}
	return false
}

func union(sets ...map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for _, s := range sets {
		for v := range s {
			out[v] = struct{}{}
		}
	}
	return out
}

func diff(a, b map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for v := range a {
		if _, ok := b[v]; !ok {
			out[v] = struct{}{}
		}
	}
	return out
}

func intersects(a, b map[string]struct{}) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for v := range small {
		if _, ok := big[v]; ok {
			return true
		}
	}
	return false
}
