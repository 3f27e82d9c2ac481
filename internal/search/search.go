// Package search implements the generic per-slot enumerative searcher of
// §4.3 step 4: BFS over the Stmt/statement-sequence productions only (no
// control-flow productions — a slot's job is to explain a straight-line
// sub-trace), skipping partial programs already seen by canonical form and
// pruning any partial program the trace interpreter fails on every
// sub-trace.
//
// Grounded on the hash-keyed cache pattern of core/types/validation_cache.go,
// applied here to already-seen canonical program text instead of validated
// schema documents.
package search

import (
	"sort"

	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/queue"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// Result is one successful slot program, paired with the variables the
// interpreter pruned while confirming it (§4.3 step 4: "record
// (pruned_vars, program)").
type Result struct {
	Prog       *program.Program
	PrunedVars map[string]struct{}
}

// Cache deduplicates partial programs already explored, keyed by canonical
// digest (program.Program.Digest). The completer passes a fresh Cache to
// each slot search, so no cache is shared between slots (per
// decompositional_deobfuscator clearing self.cache between slots in
// original_source).
type Cache struct {
	seen map[string]struct{}
}

// NewCache returns an empty dedup cache.
func NewCache() *Cache { return &Cache{seen: map[string]struct{}{}} }

func (c *Cache) seenOrMark(p *program.Program) bool {
	d := p.Digest()
	if _, ok := c.seen[d]; ok {
		return true
	}
	c.seen[d] = struct{}{}
	return false
}

// Config controls the ablations §4.3's final paragraph lists for this step.
type Config struct {
	ReturnOnFirst       bool
	DisableTracePruning bool
	SizeBound           int
}

// Search enumerates programs built only from the given statement texts
// (deduplicated) that satisfy every sub in subs end-to-end, per §4.3 step 4.
// The slot is solved as a sequence (NontermP): use SearchNonterm directly
// when a slot is pinned to a single-statement hole instead.
func Search(texts []string, subs []trace.Subtrace, facts interpreter.VarFacts, cfg Config, cache *Cache) []Result {
	return SearchNonterm(program.NontermP, texts, subs, facts, cfg, cache)
}

// SearchNonterm is Search generalized to the hole's actual starting
// nonterminal — a plain statement hole (NontermStmt) searches over single
// candidate texts directly instead of building a fresh sequence around it.
func SearchNonterm(start program.Nonterminal, texts []string, subs []trace.Subtrace, facts interpreter.VarFacts, cfg Config, cache *Cache) []Result {
	uniq := dedupeTexts(texts)
	traces := subsToTraces(subs)

	bound := cfg.SizeBound
	if bound <= 0 {
		bound = 50
	}

	q := queue.New(queue.SizeFirst(func(p *program.Program) int { return p.NodeCount() }))
	q.Push(program.New(start))

	var out []Result
	for q.Len() > 0 {
		p, _ := q.Pop()
		if p.NodeCount() > bound {
			continue
		}
		if cache.seenOrMark(p) {
			continue
		}
		if p.Complete() {
			if pruned, ok := evaluateComplete(p, traces, facts); ok {
				out = append(out, Result{Prog: p, PrunedVars: pruned})
				if cfg.ReturnOnFirst {
					return out
				}
			}
			continue
		}
		if !cfg.DisableTracePruning && failsEverySubtrace(p, traces, facts) {
			continue
		}
		for _, child := range expand(p, uniq) {
			q.Push(child)
		}
	}
	return out
}

// evaluateComplete runs the checker interpreter over every trace with
// pruning enabled; the candidate succeeds only if it is safe (matches) and
// complete (consumes the whole trace) on all of them.
func evaluateComplete(p *program.Program, traces []*trace.Trace, facts interpreter.VarFacts) (map[string]struct{}, bool) {
	pruned := map[string]struct{}{}
	mode := interpreter.Mode{AllowVarPruning: true}
	for _, tr := range traces {
		res := interpreter.Run(p, tr, facts, mode)
		if !res.Safe || !res.Complete {
			return nil, false
		}
		for v := range res.PrunedVars {
			pruned[v] = struct{}{}
		}
	}
	return pruned, true
}

// failsEverySubtrace reports whether the partial program p, evaluated in
// phantom mode, is unsafe against every trace — in which case no completion
// of p can possibly succeed and it is pruned from the worklist.
func failsEverySubtrace(p *program.Program, traces []*trace.Trace, facts interpreter.VarFacts) bool {
	mode := interpreter.Mode{AllowUnknown: true, AllowVarPruning: true}
	for _, tr := range traces {
		if interpreter.Run(p, tr, facts, mode).Safe {
			return false
		}
	}
	return len(traces) > 0
}

func expand(p *program.Program, texts []string) []*program.Program {
	hole, ok := p.LeftmostHole()
	if !ok {
		return nil
	}
	nonterm := p.Node(hole).Nonterm
	var out []*program.Program
	switch nonterm {
	case program.NontermP:
		for _, prod := range []program.Production{program.ProdSingle, program.ProdSeq} {
			c := p.Copy()
			c.Expand(hole, prod)
			out = append(out, c)
		}
	case program.NontermS:
		c := p.Copy()
		c.Expand(hole, program.ProdStmtWrap)
		out = append(out, c)
	case program.NontermStmt:
		for _, text := range texts {
			c := p.Copy()
			stmtHole := hole
			c.ExpandStmt(stmtHole, text)
			out = append(out, c)
		}
	}
	return out
}

func subsToTraces(subs []trace.Subtrace) []*trace.Trace {
	out := make([]*trace.Trace, len(subs))
	for i, s := range subs {
		out[i] = &trace.Trace{Items: []trace.Item(s)}
	}
	return out
}

func dedupeTexts(texts []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range texts {
		if t == program.BreakText {
			continue
		}
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
