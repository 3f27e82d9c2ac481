// Package interpreter implements the trace-interpreted equivalence/pruning
// oracle of §4.4: a small-step walk over a program tree that advances an
// index into one trace, matching each leaf source statement/guard against
// the first compatible upcoming trace item.
//
// Grounded on the small-step plan-execution loop of
// runtime/executor/plan_runner.go and runtime/executor/executor.go: a
// position cursor advanced one step at a time with explicit, typed
// termination signals rather than exceptions.
package interpreter

import (
	"errors"

	"github.com/aledsdavies/tracesynth/internal/contract"
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// Mode selects the two interpreter behaviors of §4.4.
type Mode struct {
	// AllowUnknown lets the walk encounter an open hole without failing,
	// returning the state as of that point (phantom evaluation, §4.3 step 2).
	AllowUnknown bool
	// AllowVarPruning lets a diverging variable not used by the current
	// statement be dropped from tracking instead of failing the match.
	AllowVarPruning bool
}

// Result is the (safe, complete, pruned_vars) triple of §4.4's Modes.
type Result struct {
	// Safe is false only if a TraceIdxNotFound signal was raised.
	Safe bool
	// Complete is true if the walk consumed every trace item (TraceEnd).
	Complete bool
	PrunedVars map[string]struct{}
}

// Run interprets p against tr under mode, using facts for the tmp-drift and
// pruning-eligibility decisions. p must not contain open holes unless
// mode.AllowUnknown is set. The root may be a P, S or Stmt node, so a
// single-statement slot program can be checked on its own.
func Run(p *program.Program, tr *trace.Trace, facts VarFacts, mode Mode) Result {
	w := &walker{
		tr:     tr,
		state:  trace.State{},
		live:   map[string]struct{}{},
		pruned: map[string]struct{}{},
		facts:  facts,
		mode:   mode,
	}
	var err error
	switch root := p.Root(); {
	case p.IsHole(root):
		err = w.onHole()
	case p.Node(root).Prod.LHS() == program.NontermS:
		err = w.walkS(p, root)
	case p.Node(root).Prod.LHS() == program.NontermStmt:
		err = w.walkStmt(p, root)
	default:
		err = w.walkP(p, root)
	}
	switch {
	case err == nil:
		return Result{Safe: true, Complete: w.idx >= len(tr.Items), PrunedVars: w.pruned}
	case errors.Is(err, errUnknownEncounter):
		return Result{Safe: true, Complete: false, PrunedVars: w.pruned}
	default:
		return Result{Safe: false, Complete: false, PrunedVars: w.pruned}
	}
}

type walker struct {
	tr     *trace.Trace
	idx    int
	state  trace.State
	live   map[string]struct{}
	pruned map[string]struct{}
	facts  VarFacts
	mode   Mode
	brk    bool
}

func (w *walker) walkP(p *program.Program, id program.NodeID) error {
	if p.IsHole(id) {
		return w.onHole()
	}
	n := p.Node(id)
	children := p.Children(id)
	switch n.Prod {
	case program.ProdSingle:
		return w.walkS(p, children[0])
	case program.ProdSeq:
		if err := w.walkS(p, children[0]); err != nil {
			return err
		}
		if w.brk {
			return nil
		}
		return w.walkP(p, children[1])
	default:
		contract.Invariant(false, "node %d has non-P production %s under a P slot", id, n.Prod)
		return nil
	}
}

func (w *walker) walkS(p *program.Program, id program.NodeID) error {
	if p.IsHole(id) {
		return w.onHole()
	}
	n := p.Node(id)
	children := p.Children(id)
	switch n.Prod {
	case program.ProdStmtWrap:
		return w.walkStmt(p, children[0])
	case program.ProdIf:
		g, err := w.walkGuard(p, children[0])
		if err != nil {
			return err
		}
		if g {
			return w.walkP(p, children[1])
		}
		return nil
	case program.ProdITE:
		g, err := w.walkGuard(p, children[0])
		if err != nil {
			return err
		}
		if g {
			return w.walkP(p, children[1])
		}
		return w.walkP(p, children[2])
	case program.ProdWhile:
		for {
			g, err := w.walkGuard(p, children[0])
			if err != nil {
				return err
			}
			if !g {
				return nil
			}
			if err := w.walkP(p, children[1]); err != nil {
				return err
			}
			if w.brk {
				w.brk = false
				return nil
			}
		}
	default:
		contract.Invariant(false, "node %d has non-S production %s under an S slot", id, n.Prod)
		return nil
	}
}

func (w *walker) walkGuard(p *program.Program, id program.NodeID) (bool, error) {
	if p.IsHole(id) {
		return false, w.onHole()
	}
	n := p.Node(id)
	contract.Invariant(n.Prod == program.ProdSourceGuard, "node %d is not a SourceGuard under a Guard slot", id)
	return w.evalGuardSpec(n.Guard)
}

// evalGuardSpec implements §4.4's guard composition: And short-circuits on
// first false, Or on first true.
func (w *walker) evalGuardSpec(spec program.GuardSpec) (bool, error) {
	var result bool
	for i, g := range spec.Guards {
		val, err := w.matchLeaf(g, trace.Guard)
		if err != nil {
			return false, err
		}
		if i == 0 {
			result = val
		} else if spec.Comp == program.CompAnd {
			result = result && val
		} else if spec.Comp == program.CompOr {
			result = result || val
		}
		if spec.Comp == program.CompAnd && !val {
			break
		}
		if spec.Comp == program.CompOr && val {
			break
		}
	}
	if spec.Negated {
		result = !result
	}
	return result, nil
}

func (w *walker) walkStmt(p *program.Program, id program.NodeID) error {
	if p.IsHole(id) {
		return w.onHole()
	}
	n := p.Node(id)
	contract.Invariant(n.Prod == program.ProdSourceStmt, "node %d is not a SourceStmt under a Stmt slot", id)

	if n.Text == program.BreakText {
		if w.idx >= len(w.tr.Items) {
			return errTraceIdxNotFound
		}
		w.brk = true
		return nil
	}
	_, err := w.matchLeaf(n.Text, trace.Statement)
	return err
}

func (w *walker) onHole() error {
	if w.mode.AllowUnknown {
		return errUnknownEncounter
	}
	contract.Invariant(false, "interpreter reached an open hole outside phantom mode")
	return nil
}

// matchLeaf searches forward from w.idx for the first trace item matching
// wantText/wantKind whose pre-state agrees with the carried state, per
// §4.4. It returns the matched item's observed boolean value (meaningful
// only for guards) and advances w.idx past the match.
func (w *walker) matchLeaf(wantText string, wantKind trace.Kind) (bool, error) {
	used := w.facts.Used(wantText)
	written := w.facts.Written(wantText)
	declared := w.facts.Declared(wantText)

	for w.idx < len(w.tr.Items) {
		item := w.tr.Items[w.idx]
		matched, inverted := sourceTextMatches(item.Source, wantText)
		if !matched || item.Source.Kind != wantKind {
			w.idx++
			continue
		}
		if !w.checkPreState(item.PreState, used, written) {
			w.idx++
			continue
		}
		val := false
		if item.Source.Val != nil {
			val = *item.Source.Val
		}
		if inverted {
			val = !val
		}
		w.rebind(item.PostState, declared)
		w.idx++
		return val, nil
	}
	return false, errTraceIdxNotFound
}

// checkPreState reports whether pre agrees with the carried state on every
// tracked (live) variable, applying the tmp-drift allowance and — when
// enabled — pruning a diverging variable the current statement doesn't use
// instead of failing the match.
func (w *walker) checkPreState(pre trace.State, used, written map[string]struct{}) bool {
	for k := range w.live {
		if k == "tmp" {
			readWithoutWrite := contains(used, "tmp") && !contains(written, "tmp")
			if !readWithoutWrite {
				continue // the Tigress scratch var is free to drift otherwise
			}
		}
		want, inPre := pre[k]
		if !inPre {
			continue
		}
		have, tracked := w.state[k]
		if tracked && have != want {
			if w.mode.AllowVarPruning && !contains(used, k) {
				w.pruned[k] = struct{}{}
				delete(w.live, k)
				delete(w.state, k)
				continue
			}
			return false
		}
	}
	return true
}

// rebind extends the live set with declared and refreshes tracked values
// from post, per §4.4: "the carried state is rebound to post_state
// restricted to the previously live keys plus this statement's declared
// variables."
func (w *walker) rebind(post trace.State, declared map[string]struct{}) {
	for d := range declared {
		w.live[d] = struct{}{}
	}
	next := make(trace.State, len(w.live))
	for k := range w.live {
		if v, ok := post[k]; ok {
			next[k] = v
		} else if v, ok := w.state[k]; ok {
			next[k] = v
		}
	}
	w.state = next
}

// sourceTextMatches implements the Tigress-negation special case: "!(g)"
// matches text "g" with inverted polarity, in either direction.
func sourceTextMatches(item trace.Source, want string) (ok bool, inverted bool) {
	if item.Text == want {
		return true, false
	}
	if neg, isNeg := item.TryNegate(); isNeg && neg.Text == want {
		return true, true
	}
	wantSrc := trace.Source{Text: want, Kind: item.Kind}
	if neg, isNeg := wantSrc.TryNegate(); isNeg && neg.Text == item.Text {
		return true, true
	}
	return false, false
}
