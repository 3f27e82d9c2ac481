// Package stats implements the run counters of §7: candidates tried,
// sketches pruned, time spent, and the terminal status of a search. Safe for
// concurrent use by the K-worker driver of §5, grounded on the atomic
// counter + snapshot idiom of runtime/executor/executor.go's execution
// telemetry.
package stats

import (
	"sync/atomic"
	"time"
)

// Status is the terminal outcome of one search run (§7: "one of
// {Complete(program), Timeout, Error(message)}").
type Status int32

const (
	StatusRunning Status = iota
	StatusComplete
	StatusTimeout
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusTimeout:
		return "timeout"
	case StatusError:
		return "error"
	default:
		return "running"
	}
}

// Stats accumulates run counters. The zero value is not ready for use; call
// New.
type Stats struct {
	candidatesTried atomic.Int64
	sketchesPruned  atomic.Int64
	status          atomic.Int32
	started         time.Time
	stopped         atomic.Bool
	elapsed         atomic.Int64 // nanoseconds, set once on Finish
}

// New returns a Stats with its clock started.
func New() *Stats {
	return &Stats{started: time.Now()}
}

// IncCandidates records one more candidate program/sketch examined.
func (s *Stats) IncCandidates() { s.candidatesTried.Add(1) }

// IncPruned records one more sketch discarded by the enumerator's
// feasibility check.
func (s *Stats) IncPruned() { s.sketchesPruned.Add(1) }

// Finish records the terminal status and freezes the elapsed-time counter.
// Only the first call has an effect; later calls are no-ops, so a watchdog
// goroutine and the worker that actually finishes can both call Finish
// without a race on which status sticks.
func (s *Stats) Finish(status Status) {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	s.elapsed.Store(int64(time.Since(s.started)))
	s.status.Store(int32(status))
}

// Snapshot is an immutable point-in-time read of Stats, suitable for
// reporting or logging.
type Snapshot struct {
	CandidatesTried int64
	SketchesPruned  int64
	Status          Status
	Elapsed         time.Duration
}

// Snapshot reads the current counters. If Finish has not been called yet,
// Elapsed reflects time-so-far and Status is StatusRunning.
func (s *Stats) Snapshot() Snapshot {
	elapsed := time.Duration(s.elapsed.Load())
	if !s.stopped.Load() {
		elapsed = time.Since(s.started)
	}
	return Snapshot{
		CandidatesTried: s.candidatesTried.Load(),
		SketchesPruned:  s.sketchesPruned.Load(),
		Status:          Status(s.status.Load()),
		Elapsed:         elapsed,
	}
}
