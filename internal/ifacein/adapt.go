package ifacein

import (
	"fmt"
	"strconv"

	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// Facts builds an interpreter.VarFacts from a parser payload's three
// per-statement variable-use maps.
func Facts(p *ParserPayload) interpreter.MapFacts {
	return interpreter.MapFacts{
		Uses:   toSets(p.UsedVars),
		Writes: toSets(p.WrittenVars),
		Decls:  toSets(p.DeclaredVars),
	}
}

func toSets(m map[string][]string) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(m))
	for text, vars := range m {
		set := make(map[string]struct{}, len(vars))
		for _, v := range vars {
			set[v] = struct{}{}
		}
		out[text] = set
	}
	return out
}

// BuildTrace fabricates a trace.Trace from one trace-producer payload
// against the parser's per-line source table, per §6: "the parser and
// trace producer together fabricate Trace values." The producer yields one
// state sample per line; this engine's Item carries both a pre- and a
// post-state, so a sample's post-state is taken from whatever state the
// *next* sample observes (the two are the same program point, one step
// apart) — the last sample in a run (typically a return) has no
// successor, so its post-state repeats its pre-state.
func BuildTrace(sources map[string]SourceLinePayload, tp *TracePayload) (*trace.Trace, error) {
	items := make([]trace.Item, 0, len(tp.Samples))
	for i, sample := range tp.Samples {
		line, ok := sources[strconv.Itoa(sample.LineNo)]
		if !ok {
			return nil, fmt.Errorf("trace references unknown source line %d", sample.LineNo)
		}
		pre := stateOf(sample.State)
		post := pre
		if i+1 < len(tp.Samples) {
			post = stateOf(tp.Samples[i+1].State)
		}
		items = append(items, trace.Item{
			Source:    sourceOf(line, sample.GuardVal),
			PreState:  pre,
			PostState: post,
		})
	}
	return &trace.Trace{
		Items:  items,
		Inputs: tp.Input.Args,
		RetVal: tp.RetVal,
	}, nil
}

func stateOf(m map[string]string) trace.State {
	out := make(trace.State, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sourceOf(line SourceLinePayload, guardVal *bool) trace.Source {
	kind := trace.Statement
	var val *bool
	if line.Kind == "guard" {
		kind = trace.Guard
		val = guardVal
	}
	lineNo := line.StartLine
	return trace.Source{Text: line.Text, Kind: kind, Val: val, Line: &lineNo}
}
