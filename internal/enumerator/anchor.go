package enumerator

import "github.com/aledsdavies/tracesynth/internal/trace"

// firstAnchor implements a simplified anchor-statement selection (§4.2):
// among the statement texts common to every non-empty remainder (by set membership,
// not position), return the one appearing earliest in the first non-empty
// remainder's order, or "" for the None anchor ("the ite/loop absorbs the
// rest of each trace"). The full variable-covering-minimal subset and the
// "iterate every anchor as a separate decomposition" behavior are narrowed
// to this single best candidate — a deliberate scope reduction, see
// DESIGN.md.
func firstAnchor(remainders []trace.Subtrace) string {
	counts := map[string]int{}
	var order []string
	seen := map[string]bool{}
	nonEmpty := 0
	for _, r := range remainders {
		if len(r) == 0 {
			continue
		}
		nonEmpty++
		local := map[string]bool{}
		for _, it := range r {
			if it.Source.Kind != trace.Statement {
				continue
			}
			if !local[it.Source.Text] {
				local[it.Source.Text] = true
				if !seen[it.Source.Text] {
					seen[it.Source.Text] = true
					order = append(order, it.Source.Text)
				}
			}
		}
		for t := range local {
			counts[t]++
		}
	}
	if nonEmpty == 0 {
		return ""
	}
	for _, t := range order {
		if counts[t] == nonEmpty {
			return t
		}
	}
	return ""
}

// splitAtAnchor divides sub at the first occurrence of the anchor statement
// text, returning (before, from-anchor-onward). An empty anchor ("None")
// returns the whole subtrace as "before" with no continuation.
func splitAtAnchor(sub trace.Subtrace, anchor string) (before, from trace.Subtrace) {
	if anchor == "" {
		return sub, nil
	}
	for i, it := range sub {
		if it.Source.Kind == trace.Statement && it.Source.Text == anchor {
			return sub[:i], sub[i:]
		}
	}
	return sub, nil
}
