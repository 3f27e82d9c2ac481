package enumerator

import (
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// tryITE implements the ITE/If rule of §4.2. It requires g to occur exactly
// once in every sub-trace (otherwise this is a loop, not a branch); traces
// observing true feed the then-branch, false the else-branch. Whether the
// result is a plain If or a full ITE is decided by whether the else-branch
// actually carries body content (§4.2: "If only one side non-empty: produce
// If; if both: ITE") — not by whether a false observation merely occurred,
// since an ordinary "if with no else" observes the guard false on every
// trace that skips the body, with nothing left for an else-branch to hold.
func tryITE(sk *sketch.Sketch, hole program.NodeID, subs []trace.Subtrace, g string) (*sketch.Sketch, bool) {
	type branch struct {
		isTrue     bool
		body, cont trace.Subtrace
	}
	brs := make([]branch, len(subs))
	remainders := make([]trace.Subtrace, len(subs))
	hasFalse := false

	for i, sub := range subs {
		occ := guardOccurrences(sub, g)
		if len(occ) != 1 {
			return nil, false
		}
		val := derefBool(sub[occ[0]].Source.Val)
		remainders[i] = sub[occ[0]+1:]
		brs[i].isTrue = val
		if !val {
			hasFalse = true
		}
	}

	anchor := firstAnchor(remainders)
	for i := range brs {
		body, cont := splitAtAnchor(remainders[i], anchor)
		brs[i].body, brs[i].cont = body, cont
	}

	var thenSubs, elseSubs []trace.Subtrace
	for _, b := range brs {
		if b.isTrue {
			thenSubs = append(thenSubs, b.body)
		} else {
			elseSubs = append(elseSubs, b.body)
		}
	}
	if len(thenSubs) == 0 || bogus(thenSubs) {
		return nil, false
	}

	elseHasContent := false
	for _, s := range elseSubs {
		if len(s) > 0 {
			elseHasContent = true
			break
		}
	}
	useITE := hasFalse && elseHasContent && !bogus(elseSubs)

	// §4.2's early-return optimization: ITE(g, then; return, else) rewrites
	// to If(g, then; return); else once every then-observing trace already
	// returns inside the then-branch. Such a trace is done and owes nothing
	// further, and the else content can no longer live behind a guard it
	// would never reach once then returns — it becomes the unconditional
	// trailing code instead.
	earlyReturn := useITE && allEndWithReturn(thenSubs)

	var contSubs []trace.Subtrace
	for i, b := range brs {
		if earlyReturn && !b.isTrue {
			contSubs = append(contSubs, remainders[i])
			continue
		}
		if !endsWithReturn(b.body) {
			contSubs = append(contSubs, b.cont)
		}
	}

	c := sk.Copy()
	c.Resolve(hole)
	sHole, contHole, hasCont := expandContinuation(c, hole, contSubs)

	var guardHole, thenHole, elseHole program.NodeID
	switch {
	case earlyReturn:
		ch := c.Prog.Expand(sHole, program.ProdIf)
		guardHole, thenHole = ch[0], ch[1]
	case useITE:
		ch := c.Prog.Expand(sHole, program.ProdITE)
		guardHole, thenHole, elseHole = ch[0], ch[1], ch[2]
	default:
		ch := c.Prog.Expand(sHole, program.ProdIf)
		guardHole, thenHole = ch[0], ch[1]
	}
	c.Prog.ExpandGuard(guardHole, program.GuardSpec{Guards: []string{g}})
	c.SetTraces(thenHole, thenSubs)
	if useITE && !earlyReturn {
		c.SetTraces(elseHole, elseSubs)
	}
	if hasCont {
		c.SetTraces(contHole, contSubs)
	}
	return c, true
}

func allEndWithReturn(subs []trace.Subtrace) bool {
	for _, s := range subs {
		if !endsWithReturn(s) {
			return false
		}
	}
	return true
}
