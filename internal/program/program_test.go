package program

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSingleOpenHole(t *testing.T) {
	p := New(NontermP)
	assert.False(t, p.Complete())
	assert.True(t, p.IsHole(p.Root()))
	assert.Equal(t, 1, p.NodeCount())

	hole, ok := p.LeftmostHole()
	require.True(t, ok)
	assert.Equal(t, p.Root(), hole)
}

func TestExpandSeqThenStmt(t *testing.T) {
	p := New(NontermP)
	children := p.Expand(p.Root(), ProdSeq)
	require.Len(t, children, 2)
	assert.Equal(t, NontermS, p.Node(children[0]).Nonterm)
	assert.Equal(t, NontermP, p.Node(children[1]).Nonterm)
	assert.False(t, p.Complete())

	sChildren := p.Expand(children[0], ProdStmtWrap)
	require.Len(t, sChildren, 1)
	p.ExpandStmt(sChildren[0], "x = 1;")
	assert.False(t, p.Complete(), "second P hole still open")

	p.Expand(children[1], ProdSingle)
	assert.False(t, p.Complete())
}

func TestExpandRejectsNonHole(t *testing.T) {
	p := New(NontermP)
	p.Expand(p.Root(), ProdSingle)
	assert.Panics(t, func() { p.Expand(p.Root(), ProdSingle) })
}

func TestExpandRejectsWrongNonterminal(t *testing.T) {
	p := New(NontermP)
	assert.Panics(t, func() { p.Expand(p.Root(), ProdStmtWrap) })
}

func TestITEFullyExpanded(t *testing.T) {
	p := New(NontermS)
	children := p.Expand(p.Root(), ProdITE)
	require.Len(t, children, 3)

	p.ExpandGuard(children[0], GuardSpec{Guards: []string{"x>0"}})

	thenChildren := p.Expand(children[1], ProdSingle)
	thenStmt := p.Expand(thenChildren[0], ProdStmtWrap)
	p.ExpandStmt(thenStmt[0], "y = 1;")

	elseChildren := p.Expand(children[2], ProdSingle)
	elseStmt := p.Expand(elseChildren[0], ProdStmtWrap)
	p.ExpandStmt(elseStmt[0], "y = 2;")

	assert.True(t, p.Complete())
	_, ok := p.LeftmostHole()
	assert.False(t, ok)
}

func TestCopyIsIndependent(t *testing.T) {
	p := New(NontermP)
	children := p.Expand(p.Root(), ProdSeq)

	q := p.Copy()
	q.Expand(children[0], ProdStmtWrap)

	assert.True(t, p.IsHole(children[0]), "original must be unaffected by mutating the copy")
	assert.False(t, q.IsHole(children[0]))
}

func TestReplaceStitchesSubprogram(t *testing.T) {
	p := New(NontermP)
	children := p.Expand(p.Root(), ProdSeq)
	sHole := children[0]

	replacement := New(NontermS)
	replacement.Expand(replacement.Root(), ProdStmtWrap)
	stmtHole, _ := replacement.LeftmostHole()
	replacement.ExpandStmt(stmtHole, "z = 3;")
	require.True(t, replacement.Complete())

	p.Replace(sHole, replacement)

	hole, ok := p.LeftmostHole()
	require.True(t, ok, "the P hole from ProdSeq's second slot is still open")
	assert.Equal(t, NontermP, p.Node(hole).Nonterm)

	var foundStmt bool
	for _, id := range p.Children(p.Root()) {
		if !p.IsHole(id) && p.Node(id).Prod == ProdStmtWrap {
			foundStmt = true
		}
	}
	assert.True(t, foundStmt, "replaced subtree must be reachable from root")
}

func TestSubprogramExtractsSubtree(t *testing.T) {
	p := New(NontermP)
	children := p.Expand(p.Root(), ProdSeq)
	sHole := children[0]
	sChildren := p.Expand(sHole, ProdStmtWrap)
	p.ExpandStmt(sChildren[0], "w = 9;")

	sub := p.Subprogram(sHole)
	assert.True(t, sub.Complete())
	assert.Equal(t, ProdStmtWrap, sub.Node(sub.Root()).Prod)

	_, hasParent := sub.ParentOf(sub.Root())
	assert.False(t, hasParent, "extracted root must have no parent")
}

func TestDigestIsDeterministicAndContentSensitive(t *testing.T) {
	build := func(stmt string) *Program {
		p := New(NontermP)
		children := p.Expand(p.Root(), ProdSingle)
		sChildren := p.Expand(children[0], ProdStmtWrap)
		p.ExpandStmt(sChildren[0], stmt)
		return p
	}

	a1 := build("x = 1;")
	a2 := build("x = 1;")
	b := build("x = 2;")

	assert.Equal(t, a1.Digest(), a2.Digest(), "structurally identical programs must digest identically")
	assert.NotEqual(t, a1.Digest(), b.Digest(), "differing statement text must change the digest")
}

func TestDigestStableAcrossCopy(t *testing.T) {
	p := New(NontermP)
	children := p.Expand(p.Root(), ProdSingle)
	sChildren := p.Expand(children[0], ProdStmtWrap)
	p.ExpandStmt(sChildren[0], "noop();")

	q := p.Copy()
	assert.Equal(t, p.Digest(), q.Digest())
}

func TestCanonicalizeHolePreservesNonterminal(t *testing.T) {
	p := New(NontermP)
	children := p.Expand(p.Root(), ProdSeq)

	got := p.canonicalize(children[1])
	want := canonNode{Kind: "hole", Hole: "P"}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("canonicalize mismatch (-want +got):\n%s", diff)
	}
}
