package trace

// NegationPolicy controls when the guard-negation canonicalization pass of
// §6 rewrites a guard by its textual negation.
type NegationPolicy struct {
	// NegateInconsistent rewrites g by its negation h only when h also
	// appears (as a guard) somewhere in the trace set — i.e. the two
	// spellings are used inconsistently across the corpus of traces.
	NegateInconsistent bool
	// NegateMatched unconditionally rewrites g by its negation h whenever a
	// textual negation exists, regardless of whether h appears elsewhere.
	NegateMatched bool
}

// CanonicalizeGuardPolarity scans every guard across every trace and, per
// NegationPolicy, replaces occurrences of a guard g by its textual negation
// h (inverting the observed Val), so that a single canonical spelling is
// used for both polarities of the same condition. Traces are not mutated in
// place; new Trace values are returned.
//
// Grounded on trace_extractor.py's negation_map construction in
// original_source.
func CanonicalizeGuardPolarity(traces []*Trace, policy NegationPolicy) []*Trace {
	seenGuardTexts := make(map[string]bool)
	for _, t := range traces {
		for _, item := range t.Items {
			if item.Source.Kind == Guard {
				seenGuardTexts[item.Source.Text] = true
			}
		}
	}

	negationMap := make(map[string]string)
	for _, t := range traces {
		for _, item := range t.Items {
			if item.Source.Kind != Guard {
				continue
			}
			negated, ok := item.Source.TryNegate()
			if !ok {
				continue
			}
			if policy.NegateInconsistent && seenGuardTexts[negated.Text] {
				negationMap[item.Source.Text] = negated.Text
			}
			if policy.NegateMatched {
				negationMap[item.Source.Text] = negated.Text
			}
		}
	}

	if len(negationMap) == 0 {
		return traces
	}

	out := make([]*Trace, len(traces))
	for i, t := range traces {
		items := make([]Item, len(t.Items))
		for j, item := range t.Items {
			newText, rewrite := negationMap[item.Source.Text]
			if item.Source.Kind != Guard || !rewrite {
				items[j] = item
				continue
			}
			src := item.Source
			src.Text = newText
			if src.Val != nil {
				v := !*src.Val
				src.Val = &v
			}
			items[j] = Item{Source: src, PreState: item.PreState, PostState: item.PostState}
		}
		out[i] = &Trace{Items: items, Inputs: t.Inputs, RetVal: t.RetVal}
	}
	return out
}
