package enumerator

import "github.com/aledsdavies/tracesynth/internal/trace"

// intersectedGuardTexts returns the guard texts common to every sub-trace in
// subs, ordered by first occurrence in subs[0] (§4.2: "the candidate ordered
// guard combinations that appear as a prefix-ordered intersection across all
// sub-traces at that hole").
func intersectedGuardTexts(subs []trace.Subtrace) []string {
	if len(subs) == 0 {
		return nil
	}
	var order []string
	seen := map[string]bool{}
	for _, g := range subs[0].Guards() {
		if !seen[g.Text] {
			seen[g.Text] = true
			order = append(order, g.Text)
		}
	}
	for _, sub := range subs[1:] {
		present := map[string]bool{}
		for _, g := range sub.Guards() {
			present[g.Text] = true
		}
		var kept []string
		for _, t := range order {
			if present[t] {
				kept = append(kept, t)
			}
		}
		order = kept
	}
	return order
}

// guardCombos enumerates length-1 and ordered length-2 subsequences of the
// intersected guards, skipping any combination touching a blacklisted guard.
func (e *Enumerator) guardCombos(subs []trace.Subtrace) [][]string {
	var candidates []string
	for _, g := range intersectedGuardTexts(subs) {
		if !e.cfg.blacklisted(g) {
			candidates = append(candidates, g)
		}
	}

	var out [][]string
	for _, g := range candidates {
		out = append(out, []string{g})
	}
	for i := range candidates {
		for j := range candidates {
			if i == j {
				continue
			}
			out = append(out, []string{candidates[i], candidates[j]})
		}
	}
	return out
}

func guardOccurrences(sub trace.Subtrace, guardText string) []int {
	var out []int
	for i, it := range sub {
		if it.Source.Kind == trace.Guard && it.Source.Text == guardText {
			out = append(out, i)
		}
	}
	return out
}

func derefBool(v *bool) bool {
	if v == nil {
		return false
	}
	return *v
}
