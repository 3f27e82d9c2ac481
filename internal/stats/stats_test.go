package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersAccumulate(t *testing.T) {
	s := New()
	s.IncCandidates()
	s.IncCandidates()
	s.IncPruned()

	snap := s.Snapshot()
	assert.Equal(t, int64(2), snap.CandidatesTried)
	assert.Equal(t, int64(1), snap.SketchesPruned)
	assert.Equal(t, StatusRunning, snap.Status)
}

func TestFinishIsIdempotent(t *testing.T) {
	s := New()
	s.Finish(StatusComplete)
	s.Finish(StatusTimeout) // must not override the first outcome

	assert.Equal(t, StatusComplete, s.Snapshot().Status)
}

func TestConcurrentFinishPicksOneWinner(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	outcomes := []Status{StatusComplete, StatusTimeout, StatusError}
	for _, o := range outcomes {
		wg.Add(1)
		go func(o Status) {
			defer wg.Done()
			s.Finish(o)
		}(o)
	}
	wg.Wait()

	got := s.Snapshot().Status
	assert.Contains(t, outcomes, got)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "complete", StatusComplete.String())
	assert.Equal(t, "timeout", StatusTimeout.String())
	assert.Equal(t, "error", StatusError.String())
}
