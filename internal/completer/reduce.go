package completer

import (
	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// Reduce implements §4.3 step 3: a statement slot whose sub-traces project
// to nothing under keep is dropped, and the structure left behind collapses
// — an emptied Seq disappears in favor of its continuation, a one-sided ITE
// demotes to If (negating the guard when it was the "then" side that died),
// and an If/While whose body is now empty drops out entirely.
//
// Reduce builds a fresh sketch rather than mutating old in place: the
// surviving structure is re-expanded into a brand-new Program, so every
// surviving stmt-hole gets a fresh NodeID and out.StmtMap is keyed
// consistently with out.Prog from the start. If the whole program turns out
// to be dead (every slot and branch on it died — a pathological all-dead
// sketch), Reduce gives up and returns old unreduced; the end-to-end checker
// downstream will reject it.
func Reduce(old *sketch.Sketch, keep map[string]struct{}, facts interpreter.VarFacts) *sketch.Sketch {
	dead := deadSlots(old, keep, facts)
	if isDeadP(old, old.Prog.Root(), dead) {
		return old.Copy()
	}

	out := &sketch.Sketch{
		Prog:           program.New(program.NontermP),
		TraceMap:       map[program.NodeID][]trace.Subtrace{},
		StmtMap:        map[program.NodeID][]trace.Subtrace{},
		HasReturnValue: old.HasReturnValue,
	}
	materializeP(old, old.Prog.Root(), dead, out, out.Prog.Root())
	return out
}

// deadSlots reports, for every stmt-hole in old.StmtMap, whether its
// sub-traces all project to nothing once restricted to keep (the step-1/2
// must-have set minus invalid_vars).
func deadSlots(old *sketch.Sketch, keep map[string]struct{}, facts interpreter.VarFacts) map[program.NodeID]bool {
	dead := make(map[program.NodeID]bool, len(old.StmtMap))
	for id, subs := range old.StmtMap {
		allEmpty := true
		for _, s := range subs {
			if len(ProjectSubtrace(s, keep, facts)) > 0 {
				allEmpty = false
				break
			}
		}
		dead[id] = allEmpty
	}
	return dead
}

// isDeadP reports whether the P subtree at id, under the given dead stmt
// holes, reduces to nothing at all.
func isDeadP(old *sketch.Sketch, id program.NodeID, dead map[program.NodeID]bool) bool {
	n := old.Prog.Node(id)
	children := old.Prog.Children(id)
	switch n.Prod {
	case program.ProdSingle:
		return isDeadS(old, children[0], dead)
	case program.ProdSeq:
		return isDeadS(old, children[0], dead) && isDeadP(old, children[1], dead)
	default:
		return false
	}
}

// isDeadS mirrors isDeadP for one S node: a statement wrapper is dead iff
// its stmt hole died; an If/While is dead iff its body died (the whole
// construct drops, per §4.3 step 3); an ITE is dead only if both branches
// died (one surviving branch demotes it to If instead, handled in
// materializeS).
func isDeadS(old *sketch.Sketch, id program.NodeID, dead map[program.NodeID]bool) bool {
	n := old.Prog.Node(id)
	children := old.Prog.Children(id)
	switch n.Prod {
	case program.ProdStmtWrap:
		return dead[children[0]]
	case program.ProdIf, program.ProdWhile:
		return isDeadP(old, children[1], dead)
	case program.ProdITE:
		return isDeadP(old, children[1], dead) && isDeadP(old, children[2], dead)
	default:
		return false
	}
}

// materializeP fills outHole (a live P hole in out.Prog) with the surviving
// reduction of old's subtree at id. Callers must have already established
// (via isDeadP) that this subtree is not wholly dead.
func materializeP(old *sketch.Sketch, id program.NodeID, dead map[program.NodeID]bool, out *sketch.Sketch, outHole program.NodeID) {
	n := old.Prog.Node(id)
	children := old.Prog.Children(id)
	switch n.Prod {
	case program.ProdSingle:
		sHole := out.Prog.Expand(outHole, program.ProdSingle)[0]
		materializeS(old, children[0], dead, out, sHole)
	case program.ProdSeq:
		sChild, pChild := children[0], children[1]
		sDead := isDeadS(old, sChild, dead)
		pDead := isDeadP(old, pChild, dead)
		switch {
		case sDead:
			materializeP(old, pChild, dead, out, outHole)
		case pDead:
			sHole := out.Prog.Expand(outHole, program.ProdSingle)[0]
			materializeS(old, sChild, dead, out, sHole)
		default:
			ch := out.Prog.Expand(outHole, program.ProdSeq)
			materializeS(old, sChild, dead, out, ch[0])
			materializeP(old, pChild, dead, out, ch[1])
		}
	}
}

// materializeS mirrors materializeP for one S hole.
func materializeS(old *sketch.Sketch, id program.NodeID, dead map[program.NodeID]bool, out *sketch.Sketch, outHole program.NodeID) {
	n := old.Prog.Node(id)
	children := old.Prog.Children(id)
	switch n.Prod {
	case program.ProdStmtWrap:
		stmtHole := out.Prog.Expand(outHole, program.ProdStmtWrap)[0]
		out.SetStatements(stmtHole, old.StmtMap[children[0]])
	case program.ProdIf:
		guardID, bodyID := children[0], children[1]
		ch := out.Prog.Expand(outHole, program.ProdIf)
		materializeGuard(old, guardID, out, ch[0], false)
		materializeP(old, bodyID, dead, out, ch[1])
	case program.ProdWhile:
		guardID, bodyID := children[0], children[1]
		ch := out.Prog.Expand(outHole, program.ProdWhile)
		materializeGuard(old, guardID, out, ch[0], false)
		materializeP(old, bodyID, dead, out, ch[1])
	case program.ProdITE:
		guardID, thenID, elseID := children[0], children[1], children[2]
		thenDead := isDeadP(old, thenID, dead)
		elseDead := isDeadP(old, elseID, dead)
		switch {
		case elseDead:
			ch := out.Prog.Expand(outHole, program.ProdIf)
			materializeGuard(old, guardID, out, ch[0], false)
			materializeP(old, thenID, dead, out, ch[1])
		case thenDead:
			ch := out.Prog.Expand(outHole, program.ProdIf)
			materializeGuard(old, guardID, out, ch[0], true)
			materializeP(old, elseID, dead, out, ch[1])
		default:
			ch := out.Prog.Expand(outHole, program.ProdITE)
			materializeGuard(old, guardID, out, ch[0], false)
			materializeP(old, thenID, dead, out, ch[1])
			materializeP(old, elseID, dead, out, ch[2])
		}
	}
}

// materializeGuard copies a SourceGuard leaf across, optionally flipping its
// polarity (used when an ITE demotes to If on its "then" side).
func materializeGuard(old *sketch.Sketch, id program.NodeID, out *sketch.Sketch, outHole program.NodeID, negate bool) {
	spec := old.Prog.Node(id).Guard
	if negate {
		spec = program.GuardSpec{Guards: spec.Guards, Negated: !spec.Negated, Comp: spec.Comp}
	}
	out.Prog.ExpandGuard(outHole, spec)
}
