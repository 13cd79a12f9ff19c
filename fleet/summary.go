package fleet

import (
	"time"

	"github.com/hupe1980/agentfleet/core"
)

// Summary aggregates a batch of execution results. It is computed fresh per
// orchestrator invocation and never persisted.
type Summary struct {
	Total         int           `json:"total"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	TotalDuration time.Duration `json:"total_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
}

// OK reports whether the batch as a whole succeeded (no failures).
func (s Summary) OK() bool { return s.Failed == 0 }

// Summarize aggregates counts and duration statistics over a result batch.
// An empty batch yields zero durations, not a division by zero.
func Summarize(results []core.ExecutionResult) Summary {
	s := Summary{Total: len(results)}

	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
		s.TotalDuration += r.Duration
	}

	if s.Total > 0 {
		s.AvgDuration = s.TotalDuration / time.Duration(s.Total)
	}

	return s
}
