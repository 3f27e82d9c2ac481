package enumerator

import (
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/queue"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/stats"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// Enumerator is a pull-based iterator over complete sketches, implementing
// §4.2's worklist loop. Call Next repeatedly until ok is false.
type Enumerator struct {
	cfg      HeuristicConfig
	progSize int
	q        *queue.Queue[*sketch.Sketch]
	stats    *stats.Stats
	stopped  bool
}

// New seeds the worklist with the initial single-hole sketch over subtraces
// (one per input) and the given return-value requirement.
func New(subtraces []trace.Subtrace, hasReturnValue bool, cfg HeuristicConfig, progSize int, st *stats.Stats) *Enumerator {
	q := queue.New(queue.SizeFirst(func(s *sketch.Sketch) int { return s.NodeCount() }))
	q.Push(sketch.New(subtraces, hasReturnValue))
	return &Enumerator{cfg: cfg, progSize: progSize, q: q, stats: st}
}

// Next pops sketches off the worklist, expanding partial ones, until either
// a complete sketch is found (ok=true) or the worklist is exhausted or the
// size bound is reached for good (ok=false). Because the queue orders by
// ascending node count, once one popped sketch exceeds progSize every
// sketch still queued does too, so the enumeration can stop for good.
func (e *Enumerator) Next() (*sketch.Sketch, bool) {
	if e.stopped {
		return nil, false
	}
	for e.q.Len() > 0 {
		s, _ := e.q.Pop()
		if s.NodeCount() > e.progSize {
			e.stopped = true
			return nil, false
		}
		if s.Complete() {
			makeExplicit(s)
			return s, true
		}
		if e.stats != nil {
			e.stats.IncCandidates()
		}
		for _, child := range e.expand(s) {
			if feasible(child) {
				e.q.Push(child)
			} else if e.stats != nil {
				e.stats.IncPruned()
			}
		}
	}
	e.stopped = true
	return nil, false
}

// expand implements §4.2 step 3: it picks the leftmost open trace_map hole
// and proposes every applicable decomposition for it.
func (e *Enumerator) expand(sk *sketch.Sketch) []*sketch.Sketch {
	hole, ok := leftmostImplicitHole(sk)
	if !ok {
		return nil
	}
	subs := sk.TraceMap[hole]

	var out []*sketch.Sketch
	if s, ok := tryStatementHole(sk, hole, subs); ok {
		out = append(out, s)
	}

	for _, combo := range e.guardCombos(subs) {
		switch len(combo) {
		case 1:
			g := combo[0]
			if e.cfg.enabled(RuleITE) {
				if s, ok := tryITE(sk, hole, subs, g); ok {
					out = append(out, s)
				}
			}
			if e.cfg.enabled(RuleWhile) {
				if s, ok := tryWhile(sk, hole, subs, g, false); ok {
					out = append(out, s)
				}
			}
			if e.cfg.enabled(RuleWhileNegated) {
				if s, ok := tryWhile(sk, hole, subs, g, true); ok {
					out = append(out, s)
				}
			}
		case 2:
			g1, g2 := combo[0], combo[1]
			if e.cfg.enabled(RuleWhileConjunction) {
				if s, ok := tryWhileComposite(sk, hole, subs, []string{g1, g2}, program.CompAnd, false); ok {
					out = append(out, s)
				}
			}
			if e.cfg.enabled(RuleWhileConjunctionNegated) {
				if s, ok := tryWhileComposite(sk, hole, subs, []string{g1, g2}, program.CompAnd, true); ok {
					out = append(out, s)
				}
			}
			if e.cfg.enabled(RuleWhileDisjunction) {
				if s, ok := tryWhileComposite(sk, hole, subs, []string{g1, g2}, program.CompOr, false); ok {
					out = append(out, s)
				}
			}
			if e.cfg.enabled(RuleWhileDisjunctionNegated) {
				if s, ok := tryWhileComposite(sk, hole, subs, []string{g1, g2}, program.CompOr, true); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func leftmostImplicitHole(sk *sketch.Sketch) (program.NodeID, bool) {
	return leftmostInSet(sk.Prog, sk.Prog.Root(), sk.TraceMap)
}

func leftmostInSet(p *program.Program, id program.NodeID, set map[program.NodeID][]trace.Subtrace) (program.NodeID, bool) {
	if _, ok := set[id]; ok {
		return id, true
	}
	if p.IsHole(id) {
		return 0, false
	}
	for _, c := range p.Children(id) {
		if found, ok := leftmostInSet(p, c, set); ok {
			return found, true
		}
	}
	return 0, false
}

// makeExplicit is the "make implicit holes explicit" step of §4.2. In this
// implementation stmt_map entries are always attached to a still-open hole
// (never to an already-filled Value node, see sketch.Sketch.SetStatements),
// so there is nothing left to convert; this only runs sk.Validate, which
// checks that trace_map and stmt_map keys are disjoint.
func makeExplicit(sk *sketch.Sketch) {
	sk.Validate()
}
