package completer

// Config holds the ablation toggles of §4.3's final paragraph, plus the
// configurable recursion depth §9 calls out for the variable-dependency
// closure (bounded at 10 in original_source).
type Config struct {
	// MaxClosureDepth bounds the fixed-point iteration of the dependency
	// closure (step 1). Zero uses the default of 10.
	MaxClosureDepth int
	// ReturnOnFirst stops per-slot synthesis (step 4) at the first success
	// instead of enumerating every program for that slot.
	ReturnOnFirst bool
	// DisableTracePruning skips the trace-interpreter prune inside per-slot
	// search (step 4), letting every syntactically valid partial program
	// through to completion.
	DisableTracePruning bool
	// DisableDecomposition gives every slot the union of all slots' candidate
	// statement texts instead of only its own sub-traces' texts. Each slot is
	// still searched separately and the results stitched; there is no single
	// whole-sketch search.
	DisableDecomposition bool
	// DisableHeuristicSketchPruning skips phantom evaluation (step 2)
	// entirely, proceeding straight to slot reduction with no invalid_vars.
	DisableHeuristicSketchPruning bool
}

func (c Config) maxDepth() int {
	if c.MaxClosureDepth <= 0 {
		return 10
	}
	return c.MaxClosureDepth
}

// DefaultConfig returns the non-ablated configuration: every step runs.
func DefaultConfig() Config {
	return Config{MaxClosureDepth: 10}
}
