package completer

import (
	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// restrictState returns the subset of st whose keys are in vars.
func restrictState(st trace.State, vars map[string]struct{}) trace.State {
	out := make(trace.State, len(vars))
	for k, v := range st {
		if _, ok := vars[k]; ok {
			out[k] = v
		}
	}
	return out
}

// projectItems implements §4.3 step 2's trace projection: drop a statement
// item whose declared variables are all outside vars (it can never affect
// anything the closure tracks), and restrict every surviving item's states
// to vars. Guard items are never dropped — dropping one would erase control
// flow the interpreter still needs to walk.
func projectItems(items []trace.Item, vars map[string]struct{}, facts interpreter.VarFacts) []trace.Item {
	out := make([]trace.Item, 0, len(items))
	for _, it := range items {
		if it.Source.Kind == trace.Statement {
			decl := facts.Declared(it.Source.Text)
			if len(decl) > 0 && !touches(vars, decl) {
				continue
			}
		}
		out = append(out, trace.Item{
			Source:    it.Source,
			PreState:  restrictState(it.PreState, vars),
			PostState: restrictState(it.PostState, vars),
		})
	}
	return out
}

// ProjectTrace projects a full trace onto vars.
func ProjectTrace(tr *trace.Trace, vars map[string]struct{}, facts interpreter.VarFacts) *trace.Trace {
	return &trace.Trace{
		Items:  projectItems(tr.Items, vars, facts),
		Inputs: tr.Inputs,
		RetVal: tr.RetVal,
	}
}

// ProjectSubtrace projects one sub-trace onto vars, for the per-slot
// minimization used by phantom evaluation and per-slot search.
func ProjectSubtrace(sub trace.Subtrace, vars map[string]struct{}, facts interpreter.VarFacts) trace.Subtrace {
	return trace.Subtrace(projectItems(sub, vars, facts))
}
