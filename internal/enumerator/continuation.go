package enumerator

import (
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// expandContinuation expands a P hole into Seq(s, cont) when contSubs still
// owes some sub-trace content, or Single(s) when every entry is already
// exhausted. The grammar has no production for an empty P, so a
// continuation with nothing left to explain must not be left behind as an
// open trace_map hole — feasible (feasibility.go) would reject it as
// unexplainable, when in fact every owning trace is simply done (e.g. it
// already returned upstream). Callers only call SetTraces(contHole, ...)
// when hasCont is true.
func expandContinuation(c *sketch.Sketch, hole program.NodeID, contSubs []trace.Subtrace) (sHole, contHole program.NodeID, hasCont bool) {
	if allEmptySubs(contSubs) {
		return c.Prog.Expand(hole, program.ProdSingle)[0], 0, false
	}
	ch := c.Prog.Expand(hole, program.ProdSeq)
	return ch[0], ch[1], true
}

func allEmptySubs(subs []trace.Subtrace) bool {
	for _, s := range subs {
		if len(s) > 0 {
			return false
		}
	}
	return true
}
