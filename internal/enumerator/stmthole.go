package enumerator

import (
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// tryStatementHole implements §4.2's "always consider the statement-hole
// option". The grammar only lets one S sit before a continuation (P ->
// Seq(S,P)), so a run of several common leading statements is peeled one
// anchor at a time rather than committed in one step: the anchor-statement
// selection of §4.2 (shared with the ITE/While post-branch placement in
// anchor.go) picks the single statement common to every live sub-trace's
// leading run, pins exactly that occurrence to a statement hole, and leaves
// everything after it as a fresh structural hole. The enumerator's worklist
// naturally re-applies this same option to the continuation on a later
// round, so a multi-statement common prefix still gets peeled in full, one
// BFS step per statement — see DESIGN.md for why this is one statement per
// slot rather than the whole common set at once.
func tryStatementHole(sk *sketch.Sketch, hole program.NodeID, subs []trace.Subtrace) (*sketch.Sketch, bool) {
	leading := make([]trace.Subtrace, len(subs))
	for i, s := range subs {
		leading[i] = leadingStatements(s)
	}
	anchor := firstAnchor(leading)
	if anchor == "" {
		return nil, false
	}

	stmtSubs := make([]trace.Subtrace, len(subs))
	rest := make([]trace.Subtrace, len(subs))
	for i, s := range subs {
		before, from := splitAtAnchor(s, anchor)
		if len(before) > 0 {
			// The anchor isn't the immediate next statement on every live
			// sub-trace; a single statement-hole can't represent that
			// disagreement without dropping the leading content some
			// traces still owe.
			return nil, false
		}
		if len(from) == 0 {
			stmtSubs[i] = nil
			rest[i] = nil
			continue
		}
		stmtSubs[i] = from[:1]
		rest[i] = from[1:]
	}

	c := sk.Copy()
	c.Resolve(hole)
	sHole, contHole, hasCont := expandContinuation(c, hole, rest)
	stmtLeafHole := c.Prog.Expand(sHole, program.ProdStmtWrap)[0]
	c.SetStatements(stmtLeafHole, stmtSubs)
	if hasCont {
		c.SetTraces(contHole, rest)
	}
	return c, true
}
