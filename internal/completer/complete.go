// Package completer implements the decompositional completer of §4.3: the
// variable-dependency closure, phantom evaluation, slot reduction, per-slot
// enumerative synthesis (delegated to internal/search), and cartesian-
// product stitching that turns a trace-complete sketch into a verified
// program.
//
// Grounded on the multi-pass build-then-resolve structure of
// runtime/planner/ir_builder.go: compute facts bottom
// up, resolve placeholders against them, then assemble and validate the
// whole.
package completer

import (
	"sort"
	"strings"

	"github.com/aledsdavies/tracesynth/internal/contract"
	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/search"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// Complete runs §4.3 end to end over one trace-complete sketch (trace_map
// empty — see sketch.Sketch.Complete): variable closure (step 1), phantom
// evaluation (step 2), slot reduction (step 3), per-slot enumerative
// synthesis (step 4), and cartesian-product stitching with an end-to-end
// check (steps 5-6). ok is false if no stitched combination passes; the
// caller should move on to the enumerator's next sketch.
func Complete(sk *sketch.Sketch, facts interpreter.VarFacts, traces []*trace.Trace, cfg Config) (*program.Program, bool) {
	contract.Precondition(sk.Complete(), "Complete requires a trace-complete sketch (empty trace_map)")

	initial := MinVars(sk, facts, retVars(traces, facts))
	closure := DependencyClosure(initial, slotStatementTexts(sk), facts, cfg.maxDepth())
	keep := union(initial, closure)

	if !cfg.DisableHeuristicSketchPruning {
		invalid, ok := PhantomEval(sk, facts, traces, initial, closure)
		if !ok {
			return nil, false
		}
		keep = diff(keep, invalid)
	}

	reduced := Reduce(sk, keep, facts)

	slots := reduced.StatementHoles()
	if len(slots) == 0 {
		if checkEndToEnd(reduced.Prog, traces, facts) {
			return reduced.Prog, true
		}
		return nil, false
	}

	scfg := search.Config{
		ReturnOnFirst:       cfg.ReturnOnFirst,
		DisableTracePruning: cfg.DisableTracePruning,
	}

	var allTexts []string
	if cfg.DisableDecomposition {
		allTexts = distinctTexts(flattenSubs(reduced.StmtMap, slots))
	}

	perSlot := make([]slotCandidates, 0, len(slots))
	for _, id := range slots {
		subs := reduced.StmtMap[id]
		texts := allTexts
		if texts == nil {
			texts = distinctTexts(subs)
		}
		results := search.SearchNonterm(program.NontermStmt, texts, subs, facts, scfg, search.NewCache())
		if len(results) == 0 {
			return nil, false
		}
		perSlot = append(perSlot, slotCandidates{id: id, results: results})
	}

	for _, combo := range stitchCombinations(perSlot) {
		candidate := reduced.Prog.Copy()
		for i, sr := range perSlot {
			candidate.Replace(sr.id, combo[i].Prog)
		}
		if checkEndToEnd(candidate, traces, facts) {
			return candidate, true
		}
	}
	return nil, false
}

type slotCandidates struct {
	id      program.NodeID
	results []search.Result
}

// stitchCombinations implements §4.3 step 5: the cartesian product of
// per-slot candidates, ordered by ascending size of the union of pruned
// variables across the combination.
func stitchCombinations(slots []slotCandidates) [][]search.Result {
	if len(slots) == 0 {
		return nil
	}
	combos := [][]search.Result{{}}
	for _, s := range slots {
		var next [][]search.Result
		for _, prefix := range combos {
			for _, r := range s.results {
				combo := append(append([]search.Result(nil), prefix...), r)
				next = append(next, combo)
			}
		}
		combos = next
	}
	sort.SliceStable(combos, func(i, j int) bool {
		return prunedUnionSize(combos[i]) < prunedUnionSize(combos[j])
	})
	return combos
}

func prunedUnionSize(combo []search.Result) int {
	union := map[string]struct{}{}
	for _, r := range combo {
		for v := range r.PrunedVars {
			union[v] = struct{}{}
		}
	}
	return len(union)
}

// checkEndToEnd implements §4.3 step 5's final consistency test plus step
// 6's end-to-end checker: p must be safe and fully consume every trace.
func checkEndToEnd(p *program.Program, traces []*trace.Trace, facts interpreter.VarFacts) bool {
	mode := interpreter.Mode{AllowVarPruning: true}
	for _, tr := range traces {
		res := interpreter.Run(p, tr, facts, mode)
		if !res.Safe || !res.Complete {
			return false
		}
	}
	return true
}

// retVars collects the variables read by the return statements observed in
// traces (RetVal is a value token, not a variable name).
func retVars(traces []*trace.Trace, facts interpreter.VarFacts) []string {
	var out []string
	for _, tr := range traces {
		for _, it := range tr.Items {
			if it.Source.Kind == trace.Statement && strings.HasPrefix(strings.TrimSpace(it.Source.Text), "return") {
				for v := range facts.Used(it.Source.Text) {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

func distinctTexts(subs []trace.Subtrace) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, sub := range subs {
		for _, it := range sub {
			if it.Source.Kind != trace.Statement {
				continue
			}
			if _, ok := seen[it.Source.Text]; !ok {
				seen[it.Source.Text] = struct{}{}
				out = append(out, it.Source.Text)
			}
		}
	}
	sort.Strings(out)
	return out
}

func flattenSubs(stmtMap map[program.NodeID][]trace.Subtrace, slots []program.NodeID) []trace.Subtrace {
	var out []trace.Subtrace
	for _, id := range slots {
		out = append(out, stmtMap[id]...)
	}
	return out
}
