package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work.
type Job interface {
	// Name identifies the job in logs and the API.
	Name() string

	// Run executes the job.
	Run(ctx context.Context) error

	// Schedule returns the cron expression (with seconds field), e.g.
	// "0 30 17 * * MON-FRI".
	Schedule() string
}

// Result records one job execution.
type Result struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

const historyLimit = 100

// History keeps the most recent results for one job.
type History struct {
	Results []Result
}

func (h *History) add(result Result) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Last returns the most recent result, or ok=false before the first run.
func (h *History) Last() (Result, bool) {
	if len(h.Results) == 0 {
		return Result{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// SuccessRate returns the fraction of retained runs that succeeded.
func (h *History) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	n := 0
	for _, r := range h.Results {
		if r.Success {
			n++
		}
	}
	return float64(n) / float64(len(h.Results))
}
