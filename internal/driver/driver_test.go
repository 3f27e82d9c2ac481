package driver

import (
	"context"
	"testing"
	"time"

	"github.com/aledsdavies/tracesynth/internal/completer"
	"github.com/aledsdavies/tracesynth/internal/config"
	"github.com/aledsdavies/tracesynth/internal/enumerator"
	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/stats"
	"github.com/aledsdavies/tracesynth/internal/trace"
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

func oneWorkerConfig() config.DriverConfig {
	search := config.DefaultSearchConfig()
	search.OverallTimeout = 5 * time.Second
	search.SketchTimeout = 2 * time.Second
	return config.DriverConfig{Workers: []config.WorkerConfig{
		{Heuristics: enumerator.DefaultHeuristicConfig(), Search: search},
	}}
}

// TestRunRacesWorkersToFirstSuccess mirrors §8 scenario 1 through the K-worker
// fan-out instead of calling the completer directly.
func TestRunRacesWorkersToFirstSuccess(t *testing.T) {
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

	cfg := config.DefaultDriverConfig()
	for i := range cfg.Workers {
		cfg.Workers[i].Search.OverallTimeout = 5 * time.Second
		cfg.Workers[i].Search.SketchTimeout = 2 * time.Second
	}

	out := Run(context.Background(), subtraces, true, traces, facts, cfg)
	require.Equal(t, stats.StatusComplete, out.Status)
	assert.NotNil(t, out.Program)
	assert.True(t, out.Program.Complete())
	assert.Len(t, out.Stats, len(cfg.Workers))
}

// TestRunStopsWithoutProgramWhenUnsatisfiable checks that an unsolvable input
// ends within the deadline with no program and a Timeout or Error status.
// With ProgSizeBound 3 the enumerator runs out of sketches at once, so the
// status here is Error.
func TestRunStopsWithoutProgramWhenUnsatisfiable(t *testing.T) {
	sub := trace.Subtrace{guard("bogus_guard_never_matches", true), stmt("return 1;")}
	traces := []*trace.Trace{{Items: []trace.Item(sub)}}
	facts := interpreter.MapFacts{
		Uses:   map[string]map[string]struct{}{},
		Writes: map[string]map[string]struct{}{},
		Decls:  map[string]map[string]struct{}{},
	}

	cfg := oneWorkerConfig()
	cfg.Workers[0].Search.OverallTimeout = 150 * time.Millisecond
	cfg.Workers[0].Search.ProgSizeBound = 3
	cfg.Workers[0].Search.CompleterConfig = completer.DefaultConfig()

	start := time.Now()
	out := Run(context.Background(), []trace.Subtrace{sub}, true, traces, facts, cfg)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second, "driver must respect the overall timeout")
	assert.Contains(t, []stats.Status{stats.StatusTimeout, stats.StatusError}, out.Status)
	assert.Nil(t, out.Program)
}
