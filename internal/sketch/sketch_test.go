package sketch

import (
	"testing"

	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSketchHasOneImplicitHole(t *testing.T) {
	sub := trace.Subtrace{{Source: trace.Source{Text: "x>0", Kind: trace.Guard}}}
	s := New([]trace.Subtrace{sub}, true)

	assert.False(t, s.Complete())
	require.Len(t, s.ImplicitHoles(), 1)
	assert.Empty(t, s.StatementHoles())
	assert.True(t, s.HasReturnValue)
}

func TestSetStatementsMovesHoleFromTraceToStmtMap(t *testing.T) {
	sub := trace.Subtrace{{Source: trace.Source{Text: "y=1;", Kind: trace.Statement}}}
	s := New([]trace.Subtrace{sub}, false)
	hole := s.ImplicitHoles()[0]

	s.SetStatements(hole, []trace.Subtrace{sub})
	assert.Empty(t, s.ImplicitHoles())
	require.Len(t, s.StatementHoles(), 1)
	assert.True(t, s.Complete(), "trace_map empty means the sketch is trace-complete")
	s.Validate()
}

func TestResolveClearsBothMaps(t *testing.T) {
	sub := trace.Subtrace{{Source: trace.Source{Text: "x>0", Kind: trace.Guard}}}
	s := New([]trace.Subtrace{sub}, false)
	hole := s.ImplicitHoles()[0]

	s.Resolve(hole)
	assert.Empty(t, s.ImplicitHoles())
	assert.Empty(t, s.StatementHoles())
}

func TestCopyIsIndependent(t *testing.T) {
	sub := trace.Subtrace{{Source: trace.Source{Text: "x>0", Kind: trace.Guard}}}
	s := New([]trace.Subtrace{sub}, false)
	hole := s.ImplicitHoles()[0]

	c := s.Copy()
	c.SetStatements(hole, []trace.Subtrace{sub})

	assert.False(t, s.Complete(), "mutating the copy must not affect the original")
	assert.True(t, c.Complete())

	_, origStillHole := s.TraceMap[hole]
	assert.True(t, origStillHole)
}

func TestSetTracesRejectsNonHole(t *testing.T) {
	p := program.New(program.NontermP)
	children := p.Expand(p.Root(), program.ProdSingle)
	s := &Sketch{Prog: p, TraceMap: map[program.NodeID][]trace.Subtrace{}, StmtMap: map[program.NodeID][]trace.Subtrace{}}
	assert.Panics(t, func() { s.SetTraces(p.Root(), nil) }, "root was expanded, no longer a hole")
	_ = children
}
