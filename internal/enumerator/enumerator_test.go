package enumerator

import (
	"testing"

	"github.com/aledsdavies/tracesynth/internal/stats"
	"github.com/aledsdavies/tracesynth/internal/trace"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func guard(text string, val bool) trace.Item {
	return trace.Item{Source: trace.Source{Text: text, Kind: trace.Guard, Val: boolPtr(val)}}
}

func stmt(text string) trace.Item {
	return trace.Item{Source: trace.Source{Text: text, Kind: trace.Statement}}
}

// firstCompleteRender drains an enumerator's complete sketches up to tries,
// returning the rendering of the first one that exactly matches want. This
// catches structural regressions (e.g. an If wrongly produced as an ITE with
// an empty else) that a bare "some complete sketch exists" check would miss.
func firstCompleteRender(e *Enumerator, want string, tries int) (string, bool) {
	for i := 0; i < tries; i++ {
		s, ok := e.Next()
		if !ok {
			return "", false
		}
		if !s.Complete() {
			continue
		}
		if got := s.Prog.Render(); got == want {
			return got, true
		}
	}
	return "", false
}

// TestPureIf mirrors §8 scenario 1: if (x>0) { y=1; } return y;
func TestPureIf(t *testing.T) {
	trueSub := trace.Subtrace{guard("x>0", true), stmt("y=1;"), stmt("return y;")}
	falseSub := trace.Subtrace{guard("x>0", false), stmt("return y;")}

	// Sketches leave their statement slots open; the completer fills them.
	want := "if (x>0) {\n  <Stmt>\n}\n<Stmt>\n"
	e := New([]trace.Subtrace{trueSub, falseSub}, true, DefaultHeuristicConfig(), 50, stats.New())
	got, found := firstCompleteRender(e, want, 2000)
	require.True(t, found, "enumerator must recover a plain If, not an ITE with an empty else")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recovered structure mismatch (-want +got):\n%s", diff)
	}
}

// TestWhileCountdown mirrors §8 scenario 2: while (n>0) { n=n-1; } return n;
func TestWhileCountdown(t *testing.T) {
	sub := trace.Subtrace{
		guard("n>0", true), stmt("n=n-1;"),
		guard("n>0", true), stmt("n=n-1;"),
		guard("n>0", true), stmt("n=n-1;"),
		guard("n>0", false), stmt("return n;"),
	}

	// Sketches leave their statement slots open; the completer fills them.
	want := "while (n>0) {\n  <Stmt>\n}\n<Stmt>\n"
	e := New([]trace.Subtrace{sub}, true, DefaultHeuristicConfig(), 50, stats.New())
	got, found := firstCompleteRender(e, want, 2000)
	require.True(t, found, "enumerator must recover the While/return structure for a single-trace countdown")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recovered structure mismatch (-want +got):\n%s", diff)
	}
}

func TestIntersectedGuardTextsRequiresAllTraces(t *testing.T) {
	a := trace.Subtrace{guard("x>0", true), guard("y>0", true)}
	b := trace.Subtrace{guard("x>0", false)}
	got := intersectedGuardTexts([]trace.Subtrace{a, b})
	assert.Equal(t, []string{"x>0"}, got)
}

func TestBogusDetectsNoCommonStatement(t *testing.T) {
	a := trace.Subtrace{stmt("y=1;")}
	b := trace.Subtrace{stmt("z=2;")}
	assert.True(t, bogus([]trace.Subtrace{a, b}))
}

func TestBogusAllowsCommonStatement(t *testing.T) {
	a := trace.Subtrace{stmt("y=1;")}
	b := trace.Subtrace{stmt("y=1;")}
	assert.False(t, bogus([]trace.Subtrace{a, b}))
}
