// Package config holds the plain Go configuration structs driving the
// search: no YAML — every knob is a struct field, populated directly by the
// cmd/tracesynth CLI flags.
//
// Grounded on the enum-based Config/DebugLevel/TelemetryLevel style of
// runtime/executor/executor.go: plain structs of named levels rather than a
// loosely typed options bag.
package config

import (
	"time"

	"github.com/aledsdavies/tracesynth/internal/completer"
	"github.com/aledsdavies/tracesynth/internal/enumerator"
)

// Priority names the §4.1 queue ordering strategy. It is carried in the
// search config; the sketch enumerator orders its queue size-first whatever
// the value.
type Priority int

const (
	PrioritySize Priority = iota
	PriorityRandom
)

func (p Priority) String() string {
	if p == PriorityRandom {
		return "random"
	}
	return "size"
}

// ParsePriority parses the -priority flag value ("size" or "random").
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "", "size":
		return PrioritySize, true
	case "random":
		return PriorityRandom, true
	default:
		return PrioritySize, false
	}
}

// SearchConfig bundles §4.2's size bound with §4.3's completer ablations and
// the timeout pair §5/§7 require (per-sketch synthesis timeout, overall
// deobfuscation timeout that raises SynthesisTimeout).
type SearchConfig struct {
	ProgSizeBound   int
	Priority        Priority
	Seed            int64
	SketchTimeout   time.Duration
	OverallTimeout  time.Duration
	CompleterConfig completer.Config
}

// DefaultSearchConfig mirrors completer.DefaultConfig with the size bound
// and timeouts §6's scenario 6 (the timeout path) exercises.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		ProgSizeBound:  50,
		Priority:       PrioritySize,
		SketchTimeout:  5 * time.Second,
		OverallTimeout: 30 * time.Second,
		CompleterConfig: completer.DefaultConfig(),
	}
}

// WorkerConfig pairs one driver worker's heuristic rule subset with the
// shared search configuration (§5: "K independent search threads... each
// running the same pipeline with a different HeuristicConfig").
type WorkerConfig struct {
	Heuristics enumerator.HeuristicConfig
	Search     SearchConfig
}

// DriverConfig is the top-level configuration of the §5 fan-out: one
// WorkerConfig per worker, run to the first success or the combined
// timeout.
type DriverConfig struct {
	Workers []WorkerConfig
}

// DefaultDriverConfig returns the K=4 default of §5: every worker shares
// DefaultSearchConfig, varying only the enabled heuristic rule subset so
// the fan-out actually explores different parts of the rule catalogue
// rather than four identical copies of the same search.
func DefaultDriverConfig() DriverConfig {
	search := DefaultSearchConfig()
	full := enumerator.DefaultHeuristicConfig()

	noDisjunction := enumerator.DefaultHeuristicConfig()
	noDisjunction.Rules[enumerator.RuleWhileDisjunction] = false
	noDisjunction.Rules[enumerator.RuleWhileDisjunctionNegated] = false

	noConjunction := enumerator.DefaultHeuristicConfig()
	noConjunction.Rules[enumerator.RuleWhileConjunction] = false
	noConjunction.Rules[enumerator.RuleWhileConjunctionNegated] = false

	iteOnly := enumerator.HeuristicConfig{Rules: map[enumerator.Rule]bool{
		enumerator.RuleITE: true,
	}}

	return DriverConfig{Workers: []WorkerConfig{
		{Heuristics: full, Search: search},
		{Heuristics: noDisjunction, Search: search},
		{Heuristics: noConjunction, Search: search},
		{Heuristics: iteOnly, Search: search},
	}}
}
