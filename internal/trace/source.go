// Package trace implements the trace model of §3: source lines, execution
// traces, and the guard-negation canonicalization pass of §6. Value tokens
// carried in a trace's state are treated by the rest of the engine as opaque
// strings — the engine never parses or interprets them beyond equality.
//
// Grounded on trace.py's TraceSource/SlimTraceItem/Trace in original_source,
// and on the Value-token style of core/planfmt/plan.go.
package trace

import "strings"

// Kind distinguishes a guard occurrence from a plain statement occurrence.
type Kind uint8

const (
	Statement Kind = iota
	Guard
)

func (k Kind) String() string {
	if k == Guard {
		return "guard"
	}
	return "statement"
}

// Source identifies one occurrence of a source line in a trace (or, with Val
// and Line unset, a bare guard/statement text as mined from the grammar).
// Two sources are "equal up to line/val" (§3) when their Text and Kind agree;
// Equal additionally requires Line and Val to agree wherever both are set.
type Source struct {
	Text string
	Kind Kind
	Val  *bool // guard truth value observed in a trace; nil outside traces
	Line *int  // source line number; nil when not tracked
}

// EqualUpToLineVal compares two sources ignoring Line and Val, per §3.
func (s Source) EqualUpToLineVal(o Source) bool {
	return s.Text == o.Text && s.Kind == o.Kind
}

// Equal compares two sources: text and kind must match, and any Line/Val
// present on both sides must agree. A nil field on either side is permissive
// (treated as "don't care"), matching TraceSource.__eq__ in original_source.
func (s Source) Equal(o Source) bool {
	if s.Text != o.Text || s.Kind != o.Kind {
		return false
	}
	if s.Line != nil && o.Line != nil && *s.Line != *o.Line {
		return false
	}
	if s.Val != nil && o.Val != nil && *s.Val != *o.Val {
		return false
	}
	return true
}

// WithoutLineAndVal returns a copy with Line and Val cleared, used to collect
// the "bare" guard/statement identity for grammar mining and for matching
// traces against grammar productions.
func (s Source) WithoutLineAndVal() Source {
	return Source{Text: s.Text, Kind: s.Kind}
}

// WithVal returns a copy with Val set, used when asserting a guard's
// observed polarity (true_guard/false_guard in the rule catalogue of §4.2).
func (s Source) WithVal(val bool) Source {
	return Source{Text: s.Text, Kind: s.Kind, Val: &val, Line: s.Line}
}

// TryNegate implements the Tigress-negated-guard special case of §4.4/§6: a
// guard written "!(g)" (or "!g") is recognized as the textual negation of
// "g" with inverted polarity. Returns false if s is not a guard or is not
// syntactically negated.
func (s Source) TryNegate() (Source, bool) {
	if s.Kind != Guard || !strings.HasPrefix(s.Text, "!") {
		return Source{}, false
	}
	inner := s.Text[1:]
	if len(inner) > 1 && inner[0] == '(' && inner[len(inner)-1] == ')' {
		inner = inner[1 : len(inner)-1]
	}
	var val *bool
	if s.Val != nil {
		v := !*s.Val
		val = &v
	}
	return Source{Text: inner, Kind: Guard, Val: val, Line: s.Line}, true
}
