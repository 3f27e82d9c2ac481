package interpreter

import (
	"testing"

	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func guardItem(text string, val bool, pre, post trace.State) trace.Item {
	return trace.Item{Source: trace.Source{Text: text, Kind: trace.Guard, Val: boolPtr(val)}, PreState: pre, PostState: post}
}

func stmtItem(text string, pre, post trace.State) trace.Item {
	return trace.Item{Source: trace.Source{Text: text, Kind: trace.Statement}, PreState: pre, PostState: post}
}

func buildIfProgram(guardText, bodyText string) *program.Program {
	p := program.New(program.NontermP)
	children := p.Expand(p.Root(), program.ProdSingle)
	sChildren := p.Expand(children[0], program.ProdIf)
	p.ExpandGuard(sChildren[0], program.GuardSpec{Guards: []string{guardText}})
	bodyChildren := p.Expand(sChildren[1], program.ProdSingle)
	stmtChildren := p.Expand(bodyChildren[0], program.ProdStmtWrap)
	p.ExpandStmt(stmtChildren[0], bodyText)
	return p
}

func TestIfTrueBranchTaken(t *testing.T) {
	p := buildIfProgram("x>0", "y=1;")
	tr := &trace.Trace{Items: []trace.Item{
		guardItem("x>0", true, trace.State{}, trace.State{}),
		stmtItem("y=1;", trace.State{}, trace.State{"y": "1"}),
	}}

	res := Run(p, tr, MapFacts{}, Mode{})
	assert.True(t, res.Safe)
	assert.True(t, res.Complete)
}

func TestIfFalseBranchSkipsBody(t *testing.T) {
	p := buildIfProgram("x>0", "y=1;")
	tr := &trace.Trace{Items: []trace.Item{
		guardItem("x>0", false, trace.State{}, trace.State{}),
	}}

	res := Run(p, tr, MapFacts{}, Mode{})
	assert.True(t, res.Safe)
	assert.True(t, res.Complete)
}

func TestWhileLoopsUntilFalse(t *testing.T) {
	p := program.New(program.NontermP)
	children := p.Expand(p.Root(), program.ProdSingle)
	whileChildren := p.Expand(children[0], program.ProdWhile)
	p.ExpandGuard(whileChildren[0], program.GuardSpec{Guards: []string{"n>0"}})
	bodyChildren := p.Expand(whileChildren[1], program.ProdSingle)
	stmtChildren := p.Expand(bodyChildren[0], program.ProdStmtWrap)
	p.ExpandStmt(stmtChildren[0], "n=n-1;")

	tr := &trace.Trace{Items: []trace.Item{
		guardItem("n>0", true, trace.State{"n": "2"}, trace.State{"n": "2"}),
		stmtItem("n=n-1;", trace.State{"n": "2"}, trace.State{"n": "1"}),
		guardItem("n>0", true, trace.State{"n": "1"}, trace.State{"n": "1"}),
		stmtItem("n=n-1;", trace.State{"n": "1"}, trace.State{"n": "0"}),
		guardItem("n>0", false, trace.State{"n": "0"}, trace.State{"n": "0"}),
	}}

	res := Run(p, tr, MapFacts{}, Mode{})
	assert.True(t, res.Safe)
	assert.True(t, res.Complete)
}

func TestTraceIdxNotFoundWhenNoMatchRemains(t *testing.T) {
	p := buildIfProgram("x>0", "y=1;")
	tr := &trace.Trace{Items: []trace.Item{
		guardItem("x>0", true, trace.State{}, trace.State{}),
		stmtItem("z=1;", trace.State{}, trace.State{}), // body text never matches "y=1;"
	}}

	res := Run(p, tr, MapFacts{}, Mode{})
	assert.False(t, res.Safe)
}

func TestUnknownEncounterInPhantomMode(t *testing.T) {
	p := program.New(program.NontermP)
	tr := &trace.Trace{Items: []trace.Item{
		stmtItem("y=1;", trace.State{}, trace.State{}),
	}}

	res := Run(p, tr, MapFacts{}, Mode{AllowUnknown: true})
	assert.True(t, res.Safe)
	assert.False(t, res.Complete)
}

func TestNegatedGuardMatchesInvertedPolarity(t *testing.T) {
	p := buildIfProgram("x<0", "y=1;")
	tr := &trace.Trace{Items: []trace.Item{
		guardItem("!(x<0)", false, trace.State{}, trace.State{}), // !(x<0) false means x<0 true
		stmtItem("y=1;", trace.State{}, trace.State{}),
	}}

	res := Run(p, tr, MapFacts{}, Mode{})
	assert.True(t, res.Safe)
	assert.True(t, res.Complete)
}

func TestConjunctionGuardShortCircuits(t *testing.T) {
	p := program.New(program.NontermP)
	children := p.Expand(p.Root(), program.ProdSingle)
	ifChildren := p.Expand(children[0], program.ProdIf)
	p.ExpandGuard(ifChildren[0], program.GuardSpec{Guards: []string{"i<n", "i<m"}, Comp: program.CompAnd})
	bodyChildren := p.Expand(ifChildren[1], program.ProdSingle)
	stmtChildren := p.Expand(bodyChildren[0], program.ProdStmtWrap)
	p.ExpandStmt(stmtChildren[0], "i=i+1;")

	tr := &trace.Trace{Items: []trace.Item{
		guardItem("i<n", false, trace.State{}, trace.State{}),
		// "i<m" never appears: short-circuit must mean it is never looked for.
	}}

	res := Run(p, tr, MapFacts{}, Mode{})
	assert.True(t, res.Safe)
	assert.True(t, res.Complete)
}

func TestVarPruningIgnoresUnusedDivergence(t *testing.T) {
	p := buildIfProgram("x>0", "y=1;")
	facts := MapFacts{
		Uses: map[string]map[string]struct{}{
			"y=1;": {"y": {}},
		},
		Decls: map[string]map[string]struct{}{
			"x>0": {"z": {}},
		},
	}
	tr := &trace.Trace{Items: []trace.Item{
		guardItem("x>0", true, trace.State{"z": "0"}, trace.State{"z": "0"}),
		stmtItem("y=1;", trace.State{"z": "9"}, trace.State{"y": "1", "z": "9"}),
	}}

	res := Run(p, tr, facts, Mode{AllowVarPruning: true})
	require.True(t, res.Safe)
	assert.True(t, res.Complete)
	assert.Contains(t, res.PrunedVars, "z")
}

func TestTmpScratchVarDriftsUnlessReadWithoutWrite(t *testing.T) {
	p := program.New(program.NontermP)
	children := p.Expand(p.Root(), program.ProdSeq)
	s1 := p.Expand(children[0], program.ProdStmtWrap)
	p.ExpandStmt(s1[0], "tmp=1;")
	s2 := p.Expand(children[1], program.ProdSingle)
	stmt2 := p.Expand(s2[0], program.ProdStmtWrap)
	p.ExpandStmt(stmt2[0], "x=tmp;")

	facts := MapFacts{
		Uses: map[string]map[string]struct{}{
			"x=tmp;": {"tmp": {}},
		},
		Decls: map[string]map[string]struct{}{
			"tmp=1;": {"tmp": {}},
		},
		// "x=tmp;" does not write tmp, so a pre-state divergence on tmp must fail.
	}
	tr := &trace.Trace{Items: []trace.Item{
		stmtItem("tmp=1;", trace.State{}, trace.State{"tmp": "1"}),
		stmtItem("x=tmp;", trace.State{"tmp": "999"}, trace.State{"tmp": "999", "x": "999"}),
	}}

	res := Run(p, tr, facts, Mode{})
	assert.False(t, res.Safe, "tmp read-without-write must not be allowed to drift")
}
