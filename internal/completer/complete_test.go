package completer

import (
	"testing"

	"github.com/aledsdavies/tracesynth/internal/enumerator"
	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/program"
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

// firstComplete drains an enumerator's complete sketches up to a bound,
// attempting completion on each, and returns the first one the completer
// accepts end to end.
func firstComplete(e *enumerator.Enumerator, facts interpreter.VarFacts, traces []*trace.Trace, cfg Config, tries int) (*program.Program, bool) {
	for i := 0; i < tries; i++ {
		sk, ok := e.Next()
		if !ok {
			return nil, false
		}
		if p, ok := Complete(sk, facts, traces, cfg); ok {
			return p, true
		}
	}
	return nil, false
}

// TestPureIfEndToEnd mirrors §8 scenario 1: if (x>0) { y=1; } return y;
func TestPureIfEndToEnd(t *testing.T) {
	trueSub := trace.Subtrace{guard("x>0", true), stmt("y=1;"), stmt("return y;")}
	falseSub := trace.Subtrace{guard("x>0", false), stmt("return y;")}
	subtraces := []trace.Subtrace{trueSub, falseSub}
	traces := []*trace.Trace{
		{Items: []trace.Item(trueSub)},
		{Items: []trace.Item(falseSub)},
	}

	facts := interpreter.MapFacts{
		Uses: map[string]map[string]struct{}{
			"x>0":       {"x": {}},
			"y=1;":      {},
			"return y;": {"y": {}},
		},
		Writes: map[string]map[string]struct{}{
			"y=1;": {"y": {}},
		},
		Decls: map[string]map[string]struct{}{},
	}

	e := enumerator.New(subtraces, true, enumerator.DefaultHeuristicConfig(), 50, stats.New())
	p, ok := firstComplete(e, facts, traces, DefaultConfig(), 5000)
	require.True(t, ok, "completer must recover a program for the pure-if scenario")
	assert.True(t, p.Complete())

	want := "if (x>0) {\n  y=1;\n}\nreturn y;\n"
	if diff := cmp.Diff(want, p.Render()); diff != "" {
		t.Errorf("recovered structure mismatch (-want +got):\n%s", diff)
	}
}

// TestWhileCountdownEndToEnd mirrors §8 scenario 2: while (n>0) { n=n-1; } return n;
func TestWhileCountdownEndToEnd(t *testing.T) {
	sub := trace.Subtrace{
		guard("n>0", true), stmt("n=n-1;"),
		guard("n>0", true), stmt("n=n-1;"),
		guard("n>0", true), stmt("n=n-1;"),
		guard("n>0", false), stmt("return n;"),
	}
	traces := []*trace.Trace{{Items: []trace.Item(sub)}}

	facts := interpreter.MapFacts{
		Uses: map[string]map[string]struct{}{
			"n>0":       {"n": {}},
			"n=n-1;":    {"n": {}},
			"return n;": {"n": {}},
		},
		Writes: map[string]map[string]struct{}{
			"n=n-1;": {"n": {}},
		},
		Decls: map[string]map[string]struct{}{},
	}

	e := enumerator.New([]trace.Subtrace{sub}, true, enumerator.DefaultHeuristicConfig(), 50, stats.New())
	p, ok := firstComplete(e, facts, traces, DefaultConfig(), 5000)
	require.True(t, ok, "completer must recover a program for the while-countdown scenario")
	assert.True(t, p.Complete())

	want := "while (n>0) {\n  n=n-1;\n}\nreturn n;\n"
	if diff := cmp.Diff(want, p.Render()); diff != "" {
		t.Errorf("recovered structure mismatch (-want +got):\n%s", diff)
	}
}
