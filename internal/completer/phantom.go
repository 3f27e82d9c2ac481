package completer

import (
	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// buildDummyChain expands the hole at id into a Seq/Single chain of
// StmtWrap(SourceStmt(text)) nodes, one per text, the "dummy node carrying
// the statement texts of its sub-traces" of §4.3 step 2. A Stmt hole (the
// kind of slot the enumerator pins to stmt_map) holds one statement, so it
// takes only the first text. An empty texts leaves the hole untouched (the
// phantom walk simply stops there, which Mode.AllowUnknown permits).
func buildDummyChain(p *program.Program, id program.NodeID, texts []string) {
	if len(texts) == 0 {
		return
	}
	if p.Node(id).Nonterm == program.NontermStmt {
		p.ExpandStmt(id, texts[0])
		return
	}
	cur := id
	for i, text := range texts {
		var sHole program.NodeID
		if i == len(texts)-1 {
			ch := p.Expand(cur, program.ProdSingle)
			sHole = ch[0]
		} else {
			ch := p.Expand(cur, program.ProdSeq)
			sHole, cur = ch[0], ch[1]
		}
		stmtHole := p.Expand(sHole, program.ProdStmtWrap)[0]
		p.ExpandStmt(stmtHole, text)
	}
}

// statementTexts returns the non-break statement texts of sub, in order.
func statementTexts(sub trace.Subtrace) []string {
	var out []string
	for _, it := range sub.Statements() {
		if it.Source.Text == program.BreakText {
			continue
		}
		out = append(out, it.Source.Text)
	}
	return out
}

// PhantomEval implements §4.3 step 2: build a dummy completion of sk, walk
// it against every trace (projected onto M* = initial ∪ closure) with
// phantom mode, and report whether the sketch survives. The returned set is
// invalid_vars — every variable the interpreter decided to prune across all
// traces — which the caller must check stays disjoint from initial (the
// *initial* must-have set M).
//
// sk is expected to be trace-complete (§3: trace_map empty) by the time it
// reaches the completer — the open slots this walks are the statement holes
// of stmt_map, each stood in for by a dummy node carrying its own sub-trace's
// statement texts.
func PhantomEval(sk *sketch.Sketch, facts interpreter.VarFacts, traces []*trace.Trace, initial, closure map[string]struct{}) (map[string]struct{}, bool) {
	mstar := union(initial, closure)
	mstar["tmp"] = struct{}{}

	dummy := sk.Prog.Copy()
	for _, hole := range sk.StatementHoles() {
		subs := sk.StmtMap[hole]
		if len(subs) == 0 {
			continue
		}
		buildDummyChain(dummy, hole, statementTexts(subs[0]))
	}

	invalid := map[string]struct{}{}
	mode := interpreter.Mode{AllowUnknown: true, AllowVarPruning: true}
	for _, tr := range traces {
		proj := ProjectTrace(tr, mstar, facts)
		res := interpreter.Run(dummy, proj, facts, mode)
		if !res.Safe {
			return nil, false
		}
		for v := range res.PrunedVars {
			invalid[v] = struct{}{}
		}
	}

	if intersects(invalid, initial) {
		return nil, false
	}
	return invalid, true
}
