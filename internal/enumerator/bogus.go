package enumerator

import "github.com/aledsdavies/tracesynth/internal/trace"

// bogus implements the bogus-branch detection of §4.2: a branch whose
// sub-traces share no common statement text is considered dead-code
// injected. Reports false for zero or one sub-trace (nothing to compare).
func bogus(subs []trace.Subtrace) bool {
	if len(subs) <= 1 {
		return false
	}
	any := false
	counts := map[string]int{}
	for _, s := range subs {
		seen := map[string]bool{}
		for _, it := range s {
			if it.Source.Kind != trace.Statement {
				continue
			}
			any = true
			if !seen[it.Source.Text] {
				seen[it.Source.Text] = true
				counts[it.Source.Text]++
			}
		}
	}
	if !any {
		return false
	}
	for _, c := range counts {
		if c == len(subs) {
			return false
		}
	}
	return true
}

func leadingStatements(s trace.Subtrace) trace.Subtrace {
	var out trace.Subtrace
	for _, it := range s {
		if it.Source.Kind != trace.Statement {
			break
		}
		out = append(out, it)
	}
	return out
}

