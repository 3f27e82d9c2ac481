// Command tracesynth is the CLI entry point: it reads
// the two §6 JSON payloads (parser interface, trace-producer interface),
// validates and adapts them via internal/ifacein, and drives the §5
// K-worker search to completion, printing the recovered program's rendered
// text or the terminal outcome.
//
// Grounded on the cobra.Command root-command wiring of cli/main.go:
// flags feeding a single RunE, exit code
// carried out through a non-zero return rather than an early os.Exit.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aledsdavies/tracesynth/internal/completer"
	"github.com/aledsdavies/tracesynth/internal/config"
	"github.com/aledsdavies/tracesynth/internal/driver"
	"github.com/aledsdavies/tracesynth/internal/enumerator"
	"github.com/aledsdavies/tracesynth/internal/ifacein"
	"github.com/aledsdavies/tracesynth/internal/stats"
	"github.com/aledsdavies/tracesynth/internal/trace"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
)

var heuristicProfiles = []string{"full", "no-disjunction", "no-conjunction", "ite-only"}

func main() {
	var (
		parserFile    string
		traceFiles    []string
		heuristics    string
		sizeBound     int
		timeout       time.Duration
		sketchTimeout time.Duration
		workers       int
		priority      string
		seed          int64
	)

	rootCmd := &cobra.Command{
		Use:           "tracesynth",
		Short:         "Recover structured control flow from execution traces",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if parserFile == "" {
				return fmt.Errorf("--parser is required")
			}
			if len(traceFiles) == 0 {
				return fmt.Errorf("at least one --trace is required")
			}

			prio, ok := config.ParsePriority(priority)
			if !ok {
				return fmt.Errorf("unknown --priority %q (want \"size\" or \"random\")", priority)
			}

			cfg, err := buildDriverConfig(heuristics, sizeBound, timeout, sketchTimeout, workers, prio, seed)
			if err != nil {
				return err
			}

			ctx, cancel := newCancellableContext()
			defer cancel()

			out, err := run(ctx, parserFile, traceFiles, cfg)
			if err != nil {
				return err
			}
			return report(cmd, out)
		},
	}

	rootCmd.Flags().StringVar(&parserFile, "parser", "", "path to the parser-interface JSON payload")
	rootCmd.Flags().StringArrayVar(&traceFiles, "trace", nil, "path to a trace-producer JSON payload (repeatable)")
	rootCmd.Flags().StringVar(&heuristics, "heuristics", "full", "heuristic rule profile: full, no-disjunction, no-conjunction, ite-only")
	rootCmd.Flags().IntVar(&sizeBound, "size-bound", 50, "maximum program node count explored")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deobfuscation timeout")
	rootCmd.Flags().DurationVar(&sketchTimeout, "sketch-timeout", 5*time.Second, "per-sketch completion timeout")
	rootCmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent search workers")
	rootCmd.Flags().StringVar(&priority, "priority", "size", "queue ordering, size or random (recorded in the search config; the sketch enumerator orders size-first regardless)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (recorded in the search config; not read by the search)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tracesynth:", err)
		os.Exit(1)
	}
}

func newCancellableContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

// buildDriverConfig rejects an unrecognized --heuristics value with a
// fuzzy-matched suggestion, mirroring findClosestMatch's role in
// runtime/planner/planner.go's own CLI error reporting.
func buildDriverConfig(profile string, sizeBound int, timeout, sketchTimeout time.Duration, workers int, prio config.Priority, seed int64) (config.DriverConfig, error) {
	full := config.DefaultDriverConfig()

	var selected []config.WorkerConfig
	switch profile {
	case "", "full":
		selected = full.Workers
	case "no-disjunction":
		selected = full.Workers[1:2]
	case "no-conjunction":
		selected = full.Workers[2:3]
	case "ite-only":
		selected = full.Workers[3:4]
	default:
		suggestion := findClosestMatch(profile, heuristicProfiles)
		if suggestion != "" {
			return config.DriverConfig{}, fmt.Errorf("unknown --heuristics %q, did you mean %q?", profile, suggestion)
		}
		return config.DriverConfig{}, fmt.Errorf("unknown --heuristics %q", profile)
	}

	out := make([]config.WorkerConfig, 0, workers)
	for i := 0; i < max(workers, 1); i++ {
		wc := selected[i%len(selected)]
		wc.Search.ProgSizeBound = sizeBound
		wc.Search.OverallTimeout = timeout
		wc.Search.SketchTimeout = sketchTimeout
		wc.Search.Priority = prio
		wc.Search.Seed = seed
		wc.Search.CompleterConfig = completer.DefaultConfig()
		out = append(out, wc)
	}
	return config.DriverConfig{Workers: out}, nil
}

func findClosestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		return ranks[0].Target
	}
	return ""
}

type result struct {
	outcome driver.Outcome
}

func run(ctx context.Context, parserFile string, traceFiles []string, cfg config.DriverConfig) (*result, error) {
	val, err := ifacein.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("compiling payload schemas: %w", err)
	}

	parserRaw, err := os.ReadFile(parserFile)
	if err != nil {
		return nil, fmt.Errorf("reading parser payload: %w", err)
	}
	parserPayload, err := val.ValidateParser(parserRaw)
	if err != nil {
		return nil, err
	}

	subtraces := make([]trace.Subtrace, 0, len(traceFiles))
	traces := make([]*trace.Trace, 0, len(traceFiles))
	hasReturnValue := false
	for _, tf := range traceFiles {
		raw, err := os.ReadFile(tf)
		if err != nil {
			return nil, fmt.Errorf("reading trace payload %s: %w", tf, err)
		}
		tp, err := val.ValidateTrace(raw)
		if err != nil {
			return nil, err
		}
		tr, err := ifacein.BuildTrace(parserPayload.Sources, tp)
		if err != nil {
			return nil, fmt.Errorf("building trace from %s: %w", tf, err)
		}
		if tr.RetVal != "" {
			hasReturnValue = true
		}
		subtraces = append(subtraces, trace.Subtrace(tr.Items))
		traces = append(traces, tr)
	}

	facts := ifacein.Facts(parserPayload)
	out := driver.Run(ctx, subtraces, hasReturnValue, traces, facts, cfg)
	return &result{outcome: out}, nil
}

func report(cmd *cobra.Command, r *result) error {
	w := cmd.OutOrStdout()
	switch r.outcome.Status {
	case stats.StatusComplete:
		fmt.Fprintln(w, r.outcome.Program.Render())
		fmt.Fprintf(cmd.ErrOrStderr(), "recovered by worker %d\n", r.outcome.Worker)
		return nil
	case stats.StatusTimeout:
		return fmt.Errorf("synthesis timed out")
	default:
		if r.outcome.Err != nil {
			return fmt.Errorf("synthesis failed: %w", r.outcome.Err)
		}
		return fmt.Errorf("synthesis failed")
	}
}
