package enumerator

import (
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// tryWhile implements the single-guard While rule of §4.2. swap tries the
// "negated" variant (F_g/T_g swapped before classification).
func tryWhile(sk *sketch.Sketch, hole program.NodeID, subs []trace.Subtrace, g string, swap bool) (*sketch.Sketch, bool) {
	var bodySubs, contSubs []trace.Subtrace
	allCondA := true
	anyCondB := false

	for _, sub := range subs {
		occ := guardOccurrences(sub, g)
		if len(occ) == 0 {
			contSubs = append(contSubs, sub)
			allCondA = allCondA && endsWithReturn(sub)
			continue
		}

		hasFalse := false
		lastFalseIdx := -1
		firstTrueBeforeFalse := false
		trueCount := 0
		firstFalseSeen := false
		for _, idx := range occ {
			val := derefBool(sub[idx].Source.Val)
			if swap {
				val = !val
			}
			if val {
				trueCount++
				if !firstFalseSeen {
					firstTrueBeforeFalse = true
				}
			} else {
				hasFalse = true
				lastFalseIdx = idx
				firstFalseSeen = true
			}
		}
		if !hasFalse && !endsWithReturn(sub) {
			allCondA = false
		}
		if (trueCount >= 2 && !hasFalse) || firstTrueBeforeFalse {
			anyCondB = true
		}

		for k, idx := range occ {
			val := derefBool(sub[idx].Source.Val)
			if swap {
				val = !val
			}
			if !val {
				continue
			}
			var end int
			if k+1 < len(occ) {
				end = occ[k+1]
			} else {
				end = len(sub)
			}
			seg := sub[idx+1 : end]
			if len(seg) == 0 {
				continue
			}
			if k+1 >= len(occ) {
				withBreak := append(trace.Subtrace{}, seg...)
				withBreak = append(withBreak, trace.Item{Source: trace.Source{Text: program.BreakText, Kind: trace.Statement}})
				bodySubs = append(bodySubs, withBreak)
			} else {
				bodySubs = append(bodySubs, seg)
			}
		}

		if lastFalseIdx >= 0 {
			contSubs = append(contSubs, sub[lastFalseIdx+1:])
		} else {
			contSubs = append(contSubs, trace.Subtrace{})
		}
	}

	if len(bodySubs) == 0 || !(allCondA || anyCondB) {
		return nil, false
	}
	if allBodiesAreOnlyBreak(bodySubs) {
		return nil, false
	}

	c := sk.Copy()
	c.Resolve(hole)
	sHole, contHole, hasCont := expandContinuation(c, hole, contSubs)
	ch := c.Prog.Expand(sHole, program.ProdWhile)
	guardHole, bodyHole := ch[0], ch[1]
	c.Prog.ExpandGuard(guardHole, program.GuardSpec{Guards: []string{g}, Negated: swap})
	c.SetTraces(bodyHole, bodySubs)
	if hasCont {
		c.SetTraces(contHole, contSubs)
	}
	return c, true
}

func allBodiesAreOnlyBreak(subs []trace.Subtrace) bool {
	for _, s := range subs {
		if len(s) != 1 || s[0].Source.Text != program.BreakText {
			return false
		}
	}
	return true
}

// tryWhileComposite implements the While-Conjunction/Disjunction rules of
// §4.2: each loop round evaluates guards in order, short-circuiting per
// comp. Traces whose guard occurrences don't follow the expected per-round
// order are conservatively excluded rather than rejecting the whole rule.
func tryWhileComposite(sk *sketch.Sketch, hole program.NodeID, subs []trace.Subtrace, guards []string, comp program.Composition, swap bool) (*sketch.Sketch, bool) {
	var bodySubs, contSubs []trace.Subtrace
	for _, sub := range subs {
		segs, cont, ok := compositeRoundSegments(sub, guards, comp, swap)
		if !ok {
			contSubs = append(contSubs, sub)
			continue
		}
		bodySubs = append(bodySubs, segs...)
		contSubs = append(contSubs, cont)
	}
	if len(bodySubs) == 0 {
		return nil, false
	}

	c := sk.Copy()
	c.Resolve(hole)
	sHole, contHole, hasCont := expandContinuation(c, hole, contSubs)
	ch := c.Prog.Expand(sHole, program.ProdWhile)
	guardHole, bodyHole := ch[0], ch[1]
	c.Prog.ExpandGuard(guardHole, program.GuardSpec{
		Guards:  append([]string(nil), guards...),
		Comp:    comp,
		Negated: swap,
	})
	c.SetTraces(bodyHole, bodySubs)
	if hasCont {
		c.SetTraces(contHole, contSubs)
	}
	return c, true
}

func compositeRoundSegments(sub trace.Subtrace, guards []string, comp program.Composition, swap bool) ([]trace.Subtrace, trace.Subtrace, bool) {
	var segs []trace.Subtrace
	pos := 0
	for {
		result, end, ok := evalRound(sub, pos, guards, comp, swap)
		if !ok {
			return nil, nil, false
		}
		if !result {
			return segs, sub[end:], true
		}
		bodyEnd := findNextGuardIdx(sub, end, guards)
		if bodyEnd > end {
			segs = append(segs, sub[end:bodyEnd])
		}
		if bodyEnd >= len(sub) {
			return segs, trace.Subtrace{}, true
		}
		pos = bodyEnd
	}
}

func evalRound(sub trace.Subtrace, from int, guards []string, comp program.Composition, swap bool) (result bool, end int, ok bool) {
	pos := from
	for gi, g := range guards {
		idx := nextOccurrence(sub, pos, g)
		if idx == -1 {
			return false, pos, false
		}
		val := derefBool(sub[idx].Source.Val)
		if swap {
			val = !val
		}
		pos = idx + 1
		if gi == 0 {
			result = val
		} else if comp == program.CompAnd {
			result = result && val
		} else if comp == program.CompOr {
			result = result || val
		}
		if comp == program.CompAnd && !val {
			return result, pos, true
		}
		if comp == program.CompOr && val {
			return result, pos, true
		}
	}
	return result, pos, true
}

func nextOccurrence(sub trace.Subtrace, from int, g string) int {
	for i := from; i < len(sub); i++ {
		if sub[i].Source.Kind == trace.Guard && sub[i].Source.Text == g {
			return i
		}
	}
	return -1
}

func findNextGuardIdx(sub trace.Subtrace, from int, guards []string) int {
	set := map[string]bool{}
	for _, g := range guards {
		set[g] = true
	}
	for i := from; i < len(sub); i++ {
		if sub[i].Source.Kind == trace.Guard && set[sub[i].Source.Text] {
			return i
		}
	}
	return len(sub)
}
