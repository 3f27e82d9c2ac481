// Package sketch implements the ControlFlowSketch of §3: a program paired
// with two node-id-keyed maps tracking which holes still owe traces
// (trace_map, the "implicit" holes the enumerator still must decompose) and
// which holes are pinned to raw statement text (stmt_map, the "statement"
// holes the completer fills).
//
// Grounded on the weak node-id-keyed map pattern this design calls for
// ("trace_map keying on Unknown identity becomes a map from node-id to
// payload"), following the same id-keyed-side-table idiom
// used by core/planfmt/execution_tree.go's annotation maps.
package sketch

import (
	"github.com/aledsdavies/tracesynth/internal/contract"
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// Sketch is a program together with the per-hole bookkeeping of §3.
type Sketch struct {
	Prog           *program.Program
	TraceMap       map[program.NodeID][]trace.Subtrace
	StmtMap        map[program.NodeID][]trace.Subtrace
	HasReturnValue bool
}

// New returns the initial sketch of §4.2's worklist loop: a single Unknown(P)
// hole whose trace_map entry is the full per-input trace list.
func New(subtraces []trace.Subtrace, hasReturnValue bool) *Sketch {
	p := program.New(program.NontermP)
	return &Sketch{
		Prog:           p,
		TraceMap:       map[program.NodeID][]trace.Subtrace{p.Root(): subtraces},
		StmtMap:        map[program.NodeID][]trace.Subtrace{},
		HasReturnValue: hasReturnValue,
	}
}

// Complete reports whether trace_map is empty (§3: "A complete sketch has no
// entries in trace_map"). Note this is distinct from program.Complete: a
// sketch can be trace-complete while its program still has open statement
// holes pending the completer.
func (s *Sketch) Complete() bool { return len(s.TraceMap) == 0 }

// ImplicitHoles returns the ids with a pending trace_map entry, in
// deterministic (sorted) order.
func (s *Sketch) ImplicitHoles() []program.NodeID {
	return sortedKeys(s.TraceMap)
}

// StatementHoles returns the ids with a pending stmt_map entry, in
// deterministic (sorted) order.
func (s *Sketch) StatementHoles() []program.NodeID {
	return sortedKeys(s.StmtMap)
}

// SetTraces records an implicit (structural) hole's owed sub-traces.
func (s *Sketch) SetTraces(id program.NodeID, subtraces []trace.Subtrace) {
	contract.Precondition(s.Prog.IsHole(id), "node %d must be a hole to own a trace_map entry", id)
	s.TraceMap[id] = subtraces
}

// SetStatements pins a hole to the given statement sub-traces, moving it from
// an implicit hole to a statement hole.
func (s *Sketch) SetStatements(id program.NodeID, subtraces []trace.Subtrace) {
	contract.Precondition(s.Prog.IsHole(id), "node %d must be a hole to own a stmt_map entry", id)
	delete(s.TraceMap, id)
	s.StmtMap[id] = subtraces
}

// Resolve clears any pending map entry for id, called once the hole has been
// expanded into concrete structure (and its children, if any, take on fresh
// entries of their own via SetTraces/SetStatements).
func (s *Sketch) Resolve(id program.NodeID) {
	delete(s.TraceMap, id)
	delete(s.StmtMap, id)
}

// Validate checks the §3 invariant that every Unknown appears in at most one
// of trace_map/stmt_map. It panics (a programmer error, not a recoverable
// outcome) if violated, per §7's classification of invariant breaks.
func (s *Sketch) Validate() {
	for id := range s.TraceMap {
		_, inBoth := s.StmtMap[id]
		contract.Invariant(!inBoth, "node %d present in both trace_map and stmt_map", id)
	}
}

// NodeCount mirrors the priority function of §4.1's default size-first
// policy, and doubles as the prog_size bound check of §4.2 step 1.
func (s *Sketch) NodeCount() int { return s.Prog.NodeCount() }

// Copy returns a structurally independent sketch: the underlying program is
// copied (cheap index-table duplication, per program.Program.Copy), and both
// maps are shallow-copied so mutating the copy's map entries never affects s.
func (s *Sketch) Copy() *Sketch {
	out := &Sketch{
		Prog:           s.Prog.Copy(),
		TraceMap:       make(map[program.NodeID][]trace.Subtrace, len(s.TraceMap)),
		StmtMap:        make(map[program.NodeID][]trace.Subtrace, len(s.StmtMap)),
		HasReturnValue: s.HasReturnValue,
	}
	for id, st := range s.TraceMap {
		out.TraceMap[id] = st
	}
	for id, st := range s.StmtMap {
		out.StmtMap[id] = st
	}
	return out
}

func sortedKeys(m map[program.NodeID][]trace.Subtrace) []program.NodeID {
	out := make([]program.NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
