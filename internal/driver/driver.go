// Package driver implements the §5 concurrency model: K independent search
// pipelines (internal/enumerator feeding internal/completer) racing to the
// first verified program, each owning a private enumerator and stats (the
// completer creates a fresh internal/search memoization cache for every
// slot it searches), and each configured with a distinct
// enumerator.HeuristicConfig so the fan-out explores different corners of
// the rule catalogue instead of K redundant copies of one search.
//
// Grounded on the goroutine-fan-out-with-WaitGroup idiom of
// runtime/executor/executor.go's LockDownStdStreams (two goroutines, one
// WaitGroup, a single restore/cancel path), generalized here to K workers
// racing under context.WithTimeout/WithCancel with a sync.Once guarding the
// first-success cancellation.
package driver

import (
	"context"
	"sync"
	"time"

	"github.com/aledsdavies/tracesynth/internal/completer"
	"github.com/aledsdavies/tracesynth/internal/config"
	"github.com/aledsdavies/tracesynth/internal/contract"
	"github.com/aledsdavies/tracesynth/internal/enumerator"
	"github.com/aledsdavies/tracesynth/internal/interpreter"
	"github.com/aledsdavies/tracesynth/internal/program"
	"github.com/aledsdavies/tracesynth/internal/sketch"
	"github.com/aledsdavies/tracesynth/internal/stats"
	"github.com/aledsdavies/tracesynth/internal/trace"
)

// Outcome is the terminal result of one Run call (§7: "one of
// {Complete(program), Timeout, Error(message)}").
type Outcome struct {
	Status  stats.Status
	Program *program.Program
	Err     error
	// Worker identifies which DriverConfig.Workers index produced Program,
	// meaningful only when Status is StatusComplete.
	Worker int
	Stats  []stats.Snapshot
}

// Run races cfg.Workers independent pipelines against subtraces/traces,
// returning as soon as one worker verifies a program or the combined
// timeout elapses, whichever comes first. The overall timeout is taken from
// the first worker whose SearchConfig.OverallTimeout is non-zero (§5: all
// workers share one deadline); if none is set there is no deadline.
func Run(ctx context.Context, subtraces []trace.Subtrace, hasReturnValue bool, traces []*trace.Trace, facts interpreter.VarFacts, cfg config.DriverConfig) Outcome {
	contract.Precondition(len(cfg.Workers) > 0, "driver requires at least one worker")

	if d := overallTimeout(cfg); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	ctx, cancelAll := context.WithCancel(ctx)
	defer cancelAll()

	type winner struct {
		prog   *program.Program
		worker int
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		result   winner
		resultOK bool
		allStats = make([]*stats.Stats, len(cfg.Workers))
	)

	for i, wc := range cfg.Workers {
		st := stats.New()
		allStats[i] = st
		wg.Add(1)
		go func(i int, wc config.WorkerConfig, st *stats.Stats) {
			defer wg.Done()
			p, ok := runWorker(ctx, subtraces, hasReturnValue, traces, facts, wc, st)
			if !ok {
				st.Finish(pickStatus(ctx))
				return
			}
			once.Do(func() {
				result = winner{prog: p, worker: i}
				resultOK = true
				cancelAll()
			})
			st.Finish(stats.StatusComplete)
		}(i, wc, st)
	}
	wg.Wait()

	snapshots := make([]stats.Snapshot, len(allStats))
	for i, st := range allStats {
		snapshots[i] = st.Snapshot()
	}

	if resultOK {
		return Outcome{Status: stats.StatusComplete, Program: result.prog, Worker: result.worker, Stats: snapshots}
	}
	if ctx.Err() != nil {
		return Outcome{Status: stats.StatusTimeout, Stats: snapshots}
	}
	return Outcome{Status: stats.StatusError, Err: context.Canceled, Stats: snapshots}
}

func pickStatus(ctx context.Context) stats.Status {
	if ctx.Err() != nil {
		return stats.StatusTimeout
	}
	return stats.StatusError
}

func overallTimeout(cfg config.DriverConfig) time.Duration {
	for _, wc := range cfg.Workers {
		if wc.Search.OverallTimeout > 0 {
			return wc.Search.OverallTimeout
		}
	}
	return 0
}

// runWorker drives one enumerator→completer pipeline to the first verified
// program, checking ctx between sketches so a sibling's success or the
// overall deadline stops it promptly.
func runWorker(ctx context.Context, subtraces []trace.Subtrace, hasReturnValue bool, traces []*trace.Trace, facts interpreter.VarFacts, wc config.WorkerConfig, st *stats.Stats) (*program.Program, bool) {
	e := enumerator.New(subtraces, hasReturnValue, wc.Heuristics, wc.Search.ProgSizeBound, st)

	for {
		select {
		case <-ctx.Done():
			return nil, false
		default:
		}

		sk, ok := e.Next()
		if !ok {
			return nil, false
		}

		sketchCtx := ctx
		var cancelSketch context.CancelFunc
		if wc.Search.SketchTimeout > 0 {
			sketchCtx, cancelSketch = context.WithTimeout(ctx, wc.Search.SketchTimeout)
		}
		p, ok := completeWithin(sketchCtx, sk, facts, traces, wc.Search.CompleterConfig)
		if cancelSketch != nil {
			cancelSketch()
		}
		if ok {
			return p, true
		}
		if ctx.Err() != nil {
			return nil, false
		}
	}
}

// completeWithin runs completer.Complete on its own goroutine so a
// per-sketch timeout can abandon a pathologically slow completion without
// blocking the worker loop past its deadline.
func completeWithin(ctx context.Context, sk *sketch.Sketch, facts interpreter.VarFacts, traces []*trace.Trace, cfg completer.Config) (*program.Program, bool) {
	type res struct {
		p  *program.Program
		ok bool
	}
	done := make(chan res, 1)
	go func() {
		p, ok := completer.Complete(sk, facts, traces, cfg)
		done <- res{p: p, ok: ok}
	}()
	select {
	case r := <-done:
		return r.p, r.ok
	case <-ctx.Done():
		return nil, false
	}
}
